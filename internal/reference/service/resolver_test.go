package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/atelier/internal/clock"
	"github.com/smallbiznis/atelier/internal/config"
	"github.com/smallbiznis/atelier/internal/migration"
	"github.com/smallbiznis/atelier/internal/reference/domain"
	"github.com/smallbiznis/atelier/internal/reference/repository"
	"github.com/smallbiznis/atelier/internal/seed"
	dbpkg "github.com/smallbiznis/atelier/pkg/db"
	"github.com/smallbiznis/atelier/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestResolver(t *testing.T) (*gorm.DB, domain.Resolver) {
	t.Helper()

	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	require.NoError(t, migration.Run(db))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	_, err = seed.EnsureReferenceData(context.Background(), db, node)
	require.NoError(t, err)

	return db, NewResolver(Params{
		DB:       db,
		Repo:     repository.NewRepository(db),
		GenID:    node,
		Clock:    clock.NewFakeClock(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)),
		Settings: config.NewStaticProvisioningConfig(config.DefaultProvisioningConfig()),
	})
}

func TestResolveRole(t *testing.T) {
	_, r := newTestResolver(t)

	res, err := r.Resolve(context.Background(), domain.KindRole, "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", res.Name)
	assert.Equal(t, domain.KindRole, res.Kind)
	assert.NotZero(t, res.ID)

	_, err = r.Resolve(context.Background(), domain.KindRole, "owner")
	assert.ErrorIs(t, err, domain.ErrMissingSeedData)
}

func TestResolveRoleIsCached(t *testing.T) {
	db, r := newTestResolver(t)

	first, err := r.Resolve(context.Background(), domain.KindRole, "member")
	require.NoError(t, err)
	require.NoError(t, db.Exec("DELETE FROM roles WHERE name = ?", "member").Error)

	second, err := r.Resolve(context.Background(), domain.KindRole, "member")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestResolveStyleFallbacks(t *testing.T) {
	db, r := newTestResolver(t)
	ctx := context.Background()

	exact, err := r.Resolve(ctx, domain.KindStyle, "Vintage")
	require.NoError(t, err)
	assert.Equal(t, "Vintage", exact.Name)
	assert.False(t, exact.FellBack)

	fallback, err := r.Resolve(ctx, domain.KindStyle, "Gótico")
	require.NoError(t, err)
	assert.Equal(t, "Casual", fallback.Name)
	assert.True(t, fallback.FellBack)

	require.NoError(t, db.Exec("DELETE FROM styles WHERE name = ?", "Casual").Error)
	first, err := r.Resolve(ctx, domain.KindStyle, "Gótico")
	require.NoError(t, err)
	assert.True(t, first.FellBack)
	assert.Equal(t, "Urbano", first.Name)

	require.NoError(t, db.Exec("DELETE FROM styles").Error)
	_, err = r.Resolve(ctx, domain.KindStyle, "Gótico")
	assert.ErrorIs(t, err, domain.ErrMissingSeedData)
}

func TestResolveCityCreatesOnce(t *testing.T) {
	db, r := newTestResolver(t)
	ctx := context.Background()

	known, err := r.Resolve(ctx, domain.KindCity, "Sevilla")
	require.NoError(t, err)
	assert.False(t, known.Created)

	created, err := r.Resolve(ctx, domain.KindCity, "Málaga")
	require.NoError(t, err)
	assert.True(t, created.Created)

	again, err := r.Resolve(ctx, domain.KindCity, "Málaga")
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, created.ID, again.ID)

	var city domain.City
	require.NoError(t, db.First(&city, "name = ?", "Málaga").Error)
	assert.Equal(t, "España", city.Country)

	_, err = r.Resolve(ctx, domain.KindCity, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestResolveCityInsideRolledBackTransaction(t *testing.T) {
	db, r := newTestResolver(t)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		res, err := r.WithTx(tx).Resolve(ctx, domain.KindCity, "Granada")
		require.NoError(t, err)
		assert.True(t, res.Created)
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	var n int64
	require.NoError(t, db.Model(&domain.City{}).Where("name = ?", "Granada").Count(&n).Error)
	assert.Zero(t, n)

	res, err := r.Resolve(ctx, domain.KindCity, "Granada")
	require.NoError(t, err)
	assert.True(t, res.Created)
}

// A unique violation on the city insert must leave the surrounding
// transaction usable and resolve to the row that won.
func TestResolveCityRecoversFromUniqueViolation(t *testing.T) {
	db, _ := newTestResolver(t)
	ctx := context.Background()

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	// hiddenCities pretends the first lookup misses, as if the competing
	// insert had not yet committed.
	repo := &hiddenCities{Repository: repository.NewRepository(db), hide: 1}
	r := NewResolver(Params{
		DB:       db,
		Repo:     repo,
		GenID:    node,
		Settings: config.NewStaticProvisioningConfig(config.DefaultProvisioningConfig()),
	})

	var madrid domain.City
	require.NoError(t, db.First(&madrid, "name = ?", "Madrid").Error)

	err = db.Transaction(func(tx *gorm.DB) error {
		res, err := r.WithTx(tx).Resolve(ctx, domain.KindCity, "Madrid")
		if err != nil {
			return err
		}
		assert.False(t, res.Created)
		assert.Equal(t, madrid.ID, res.ID)

		// The transaction must still accept statements.
		return tx.Exec("SELECT 1").Error
	})
	require.NoError(t, err)
}

type hiddenCities struct {
	domain.Repository
	hide int
}

func (h *hiddenCities) WithTx(tx *gorm.DB) domain.Repository {
	return &hiddenCities{Repository: h.Repository.WithTx(tx), hide: h.hide}
}

func (h *hiddenCities) FindCityByName(ctx context.Context, name string) (*domain.City, error) {
	if h.hide > 0 {
		h.hide--
		return nil, domain.ErrNotFound
	}
	return h.Repository.FindCityByName(ctx, name)
}

func TestResolveUnknownKind(t *testing.T) {
	_, r := newTestResolver(t)
	_, err := r.Resolve(context.Background(), domain.Kind("country"), "España")
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
}

func TestCatalogListsCitiesInPages(t *testing.T) {
	db, _ := newTestResolver(t)
	catalog := NewCatalog(repository.NewRepository(db))
	ctx := context.Background()

	page, info, err := catalog.ListCities(ctx, pagination.Pagination{PageSize: 3})
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, []string{"Barcelona", "Bilbao", "Madrid"}, cityNames(page))
	assert.True(t, info.HasMore)

	page, info, err = catalog.ListCities(ctx, pagination.Pagination{PageSize: 3, PageToken: info.NextPageToken})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sevilla", "Valencia"}, cityNames(page))
	assert.False(t, info.HasMore)

	styles, err := catalog.ListStyles(ctx)
	require.NoError(t, err)
	assert.Len(t, styles, len(seed.DefaultStyles))
}

func cityNames(cities []domain.City) []string {
	out := make([]string, 0, len(cities))
	for _, c := range cities {
		out = append(out, c.Name)
	}
	return out
}
