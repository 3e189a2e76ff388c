package signup

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/atelier/internal/account/domain"
	accountrepo "github.com/smallbiznis/atelier/internal/account/repository"
	"github.com/smallbiznis/atelier/internal/auth/password"
	"github.com/smallbiznis/atelier/internal/clock"
	"github.com/smallbiznis/atelier/internal/config"
	"github.com/smallbiznis/atelier/internal/migration"
	profilerepo "github.com/smallbiznis/atelier/internal/profile/repository"
	referencerepo "github.com/smallbiznis/atelier/internal/reference/repository"
	referencesvc "github.com/smallbiznis/atelier/internal/reference/service"
	"github.com/smallbiznis/atelier/internal/seed"
	"github.com/smallbiznis/atelier/internal/signup/domain"
	teamdomain "github.com/smallbiznis/atelier/internal/team/domain"
	teamrepo "github.com/smallbiznis/atelier/internal/team/repository"
	dbpkg "github.com/smallbiznis/atelier/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, time.March, 14, 10, 30, 0, 0, time.UTC)

type fixture struct {
	db          *gorm.DB
	clock       *clock.FakeClock
	accounts    accountdomain.Repository
	teams       teamdomain.Repository
	provisioner *Provisioner
	service     domain.Service
}

type fixtureOption func(*ProvisionerParams)

func wrapAccounts(wrap func(accountdomain.Repository) accountdomain.Repository) fixtureOption {
	return func(p *ProvisionerParams) { p.Accounts = wrap(p.Accounts) }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	return newFixtureOn(t, db, opts...)
}

// newFixtureOn migrates and seeds db and wires a provisioner on top of it.
func newFixtureOn(t *testing.T, db *gorm.DB, opts ...fixtureOption) *fixture {
	t.Helper()

	require.NoError(t, migration.Run(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	_, err = seed.EnsureReferenceData(context.Background(), db, node)
	require.NoError(t, err)

	settingsCfg := config.DefaultProvisioningConfig()
	settingsCfg.BcryptCost = bcrypt.MinCost
	settings := config.NewStaticProvisioningConfig(settingsCfg)

	log := zaptest.NewLogger(t)
	clk := clock.NewFakeClock(fixedNow)
	refRepo := referencerepo.NewRepository(db)

	params := ProvisionerParams{
		DB:       db,
		Log:      log,
		GenID:    node,
		Clock:    clk,
		Settings: settings,
		Hasher:   password.NewBcryptHasher(settings),
		Accounts: accountrepo.NewRepository(db),
		Teams:    teamrepo.NewRepository(db),
		Profiles: profilerepo.NewRepository(db),
		Resolver: referencesvc.NewResolver(referencesvc.Params{
			DB:       db,
			Log:      log,
			Repo:     refRepo,
			GenID:    node,
			Clock:    clk,
			Settings: settings,
		}),
	}
	for _, opt := range opts {
		opt(&params)
	}

	provisioner := NewProvisioner(params)
	return &fixture{
		db:          db,
		clock:       clk,
		accounts:    params.Accounts,
		teams:       params.Teams,
		provisioner: provisioner,
		service:     NewService(NewValidator(), provisioner, clk),
	}
}

// failOn makes the next statement whose SQL starts with prefix fail.
func (f *fixture) failOn(t *testing.T, prefix string, err error) {
	t.Helper()
	require.NoError(t, f.db.Callback().Raw().Before("gorm:raw").Register("test:fail_"+prefix, func(db *gorm.DB) {
		if strings.HasPrefix(strings.TrimSpace(db.Statement.SQL.String()), prefix) {
			_ = db.AddError(err)
		}
	}))
}

func (f *fixture) count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Table(table).Count(&n).Error)
	return n
}

// requireNothingPersisted checks that no registration rows exist.
func (f *fixture) requireNothingPersisted(t *testing.T) {
	t.Helper()
	for _, table := range []string{"accounts", "teams", "team_members", "profiles", "profile_styles", "profile_statistics"} {
		require.Zero(t, f.count(t, table), table)
	}
}

func brandRequest(email string) domain.Request {
	return domain.Request{
		Email:            email,
		Password:         "Secreto1!",
		FirstName:        "Lucía",
		LastName:         "Gómez",
		AccountKind:      "brand",
		BrandName:        "Café Studio!",
		FoundedYear:      domain.NewFlexInt(2015),
		BrandDescription: "Ropa sostenible",
		BrandStyles:      []string{"Urbano", "Vintage"},
	}
}

func showroomRequest(email, city string) domain.Request {
	return domain.Request{
		Email:          email,
		Password:       "Secreto1!",
		FirstName:      "Ana",
		LastName:       "Ruiz",
		AccountKind:    "showroom",
		ShowroomName:   "Loft X",
		Address:        "Calle Mayor 1",
		City:           city,
		Capacity:       domain.NewFlexInt(20),
		ShowroomStyles: []string{"Minimalista"},
	}
}
