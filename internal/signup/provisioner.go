package signup

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/atelier/internal/account/domain"
	"github.com/smallbiznis/atelier/internal/auth/password"
	"github.com/smallbiznis/atelier/internal/clock"
	"github.com/smallbiznis/atelier/internal/config"
	"github.com/smallbiznis/atelier/internal/idgen"
	"github.com/smallbiznis/atelier/internal/observability/logger"
	"github.com/smallbiznis/atelier/internal/observability/metrics"
	profiledomain "github.com/smallbiznis/atelier/internal/profile/domain"
	referencedomain "github.com/smallbiznis/atelier/internal/reference/domain"
	"github.com/smallbiznis/atelier/internal/signup/domain"
	teamdomain "github.com/smallbiznis/atelier/internal/team/domain"
	dbpkg "github.com/smallbiznis/atelier/pkg/db"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	tracerName = "atelier/signup"

	outcomeSuccess = "success"
)

type ProvisionerParams struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    idgen.Generator
	Clock    clock.Clock
	Settings *config.ProvisioningConfigHolder
	Hasher   password.Hasher
	Accounts accountdomain.Repository
	Teams    teamdomain.Repository
	Profiles profiledomain.Repository
	Resolver referencedomain.Resolver
	Metrics  *metrics.Metrics       `optional:"true"`
	Signup   *metrics.SignupMetrics `optional:"true"`
}

type Provisioner struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    idgen.Generator
	clock    clock.Clock
	settings *config.ProvisioningConfigHolder
	hasher   password.Hasher
	accounts accountdomain.Repository
	teams    teamdomain.Repository
	profiles profiledomain.Repository
	resolver referencedomain.Resolver
	metrics  *metrics.Metrics
	signup   *metrics.SignupMetrics
	tracer   trace.Tracer
}

func NewProvisioner(p ProvisionerParams) *Provisioner {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	settings := p.Settings
	if settings == nil {
		settings = config.NewStaticProvisioningConfig(config.DefaultProvisioningConfig())
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	hasher := p.Hasher
	if hasher == nil {
		hasher = password.NewBcryptHasher(settings)
	}
	return &Provisioner{
		db:       p.DB,
		log:      log.Named("signup.provisioner"),
		genID:    p.GenID,
		clock:    clk,
		settings: settings,
		hasher:   hasher,
		accounts: p.Accounts,
		teams:    p.Teams,
		profiles: p.Profiles,
		resolver: p.Resolver,
		metrics:  p.Metrics,
		signup:   p.Signup,
		tracer:   otel.Tracer(tracerName),
	}
}

// Provision creates the account, team, admin membership, profile, style tags
// and statistics of a registration in a single transaction. On error nothing
// is persisted and the error is a *domain.ProvisioningError.
func (p *Provisioner) Provision(ctx context.Context, in domain.Input) (*domain.Result, error) {
	started := time.Now()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.settings.Get().Timeout)
		defer cancel()
	}

	ctx, span := p.tracer.Start(ctx, "signup.provision",
		trace.WithAttributes(attribute.String("account.kind", string(in.Kind))),
	)
	defer span.End()

	result, err := p.provision(ctx, in, span)

	outcome := outcomeSuccess
	if err != nil {
		perr := asProvisioningError(err)
		outcome = string(perr.Kind)
		p.signup.RecordStepFailure(string(perr.Step), perr.Err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(perr.Kind))
		p.logFailure(ctx, in, perr)
	} else {
		if result.CityCreated {
			p.signup.RecordCityCreated()
		}
		span.SetAttributes(attribute.String("account.id", result.AccountID.String()))
	}
	p.metrics.RecordProvision(ctx, string(in.Kind), outcome)
	p.signup.ObserveProvision(outcome, time.Since(started))

	if err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Provisioner) provision(ctx context.Context, in domain.Input, span trace.Span) (*domain.Result, error) {
	if !in.Kind.Valid() || (in.Brand == nil) == (in.Showroom == nil) || (in.Kind == accountdomain.KindBrand) != (in.Brand != nil) {
		return nil, &domain.ProvisioningError{Kind: domain.KindUnknown, Step: domain.StepPrecheck, Err: profiledomain.ErrInvalidVariant}
	}

	// Advisory only. The unique index on accounts.email decides races.
	exists, err := p.accounts.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, classify(domain.StepPrecheck, err)
	}
	if exists {
		return nil, &domain.ProvisioningError{Kind: domain.KindDuplicateEmail, Step: domain.StepPrecheck, Err: domain.ErrDuplicateEmail}
	}

	hashed, err := p.hasher.Hash(in.Password)
	if err != nil {
		return nil, &domain.ProvisioningError{Kind: domain.KindUnknown, Step: domain.StepHash, Err: err}
	}

	settings := p.settings.Get()
	now := p.clock.Now()
	result := &domain.Result{Kind: in.Kind}
	step := domain.StepBegin

	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts := p.accounts.WithTx(tx)
		teams := p.teams.WithTx(tx)
		profiles := p.profiles.WithTx(tx)
		resolver := p.resolver.WithTx(tx)

		step = domain.StepAccount
		account := accountdomain.Account{
			ID:           p.genID.Generate(),
			Email:        in.Email,
			PasswordHash: hashed,
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			Kind:         in.Kind,
			Status:       accountdomain.StatusActive,
			CreatedAt:    now,
		}
		if err := accounts.Insert(ctx, account); err != nil {
			return err
		}
		result.AccountID = account.ID
		span.AddEvent(string(step))

		step = domain.StepTeam
		team := teamdomain.Team{
			ID:        p.genID.Generate(),
			Name:      in.ProfileName(),
			Kind:      string(in.Kind),
			CreatedBy: account.ID,
			CreatedAt: now,
		}
		if err := teams.InsertTeam(ctx, team); err != nil {
			return err
		}
		result.TeamID = team.ID
		span.AddEvent(string(step))

		step = domain.StepMembership
		role, err := resolver.Resolve(ctx, referencedomain.KindRole, settings.AdminRole)
		if err != nil {
			return err
		}
		if err := teams.InsertMembership(ctx, teamdomain.Membership{
			ID:        p.genID.Generate(),
			TeamID:    team.ID,
			AccountID: account.ID,
			RoleID:    role.ID,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		span.AddEvent(string(step))

		step = domain.StepProfile
		profileID := p.genID.Generate()
		slug := profiledomain.Slugify(in.ProfileName(), profileID)
		var profile profiledomain.Profile
		if in.Brand != nil {
			profile = profiledomain.NewBrand(profileID, team.ID, slug, profiledomain.BrandFields{
				Name:        in.Brand.Name,
				Description: in.Brand.Description,
				FoundedYear: in.Brand.FoundedYear,
			}, now)
		} else {
			city, err := resolver.Resolve(ctx, referencedomain.KindCity, in.Showroom.City)
			if err != nil {
				return err
			}
			result.CityCreated = city.Created
			profile = profiledomain.NewShowroom(profileID, team.ID, slug, profiledomain.ShowroomFields{
				Name:        in.Showroom.Name,
				Description: in.Showroom.Description,
				Address:     in.Showroom.Address,
				CityID:      city.ID,
				Capacity:    in.Showroom.Capacity,
			}, now)
		}
		if err := profiles.InsertProfile(ctx, profile); err != nil {
			return err
		}
		result.ProfileID = profile.ID
		result.Slug = slug
		span.AddEvent(string(step))

		step = domain.StepStyles
		labels := in.StyleLabels()
		if len(labels) == 0 {
			labels = []string{settings.DefaultStyle}
		}
		tagged := make(map[snowflake.ID]struct{}, len(labels))
		for _, label := range labels {
			style, err := resolver.Resolve(ctx, referencedomain.KindStyle, label)
			if err != nil {
				return err
			}
			if _, dup := tagged[style.ID]; dup {
				continue
			}
			if err := profiles.InsertStyleTag(ctx, profiledomain.StyleTag{
				ProfileID: profile.ID,
				StyleID:   style.ID,
				CreatedAt: now,
			}); err != nil {
				return err
			}
			tagged[style.ID] = struct{}{}
			result.StyleIDs = append(result.StyleIDs, style.ID)
		}
		span.AddEvent(string(step))

		step = domain.StepStatistics
		if err := profiles.InsertStatistics(ctx, profiledomain.Statistics{
			ID:        p.genID.Generate(),
			ProfileID: profile.ID,
			UpdatedAt: now,
		}); err != nil {
			return err
		}
		span.AddEvent(string(step))

		// Never commit past the caller's deadline.
		step = domain.StepCommit
		return ctx.Err()
	}, dbpkg.TxOptions(p.db))
	if err != nil {
		// database/sql rolls the transaction back when ctx ends, which
		// surfaces as sql.ErrTxDone rather than the context error.
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = errors.Join(ctxErr, err)
		}
		return nil, classify(step, err)
	}

	return result, nil
}

func (p *Provisioner) logFailure(ctx context.Context, in domain.Input, perr *domain.ProvisioningError) {
	log := logger.WithContext(ctx, p.log)
	fields := []zap.Field{
		zap.String("account_kind", string(in.Kind)),
		zap.String("email", logger.MaskEmail(in.Email)),
		zap.String("step", string(perr.Step)),
		zap.String("error_kind", string(perr.Kind)),
		zap.Error(perr.Err),
	}

	switch perr.Kind {
	case domain.KindMissingSeedData:
		log.Error("reference data missing, registration aborted", append(fields, zap.String("alert", "missing_seed_data"))...)
	case domain.KindDuplicateEmail, domain.KindInvalidReference:
		log.Info("registration rejected", fields...)
	default:
		log.Error("registration failed", fields...)
	}
}

// classify maps a failure at step to the provisioning error taxonomy.
func classify(step domain.Step, err error) *domain.ProvisioningError {
	var perr *domain.ProvisioningError
	if errors.As(err, &perr) {
		return perr
	}

	kind := domain.KindUnknown
	switch {
	case errors.Is(err, referencedomain.ErrMissingSeedData):
		kind = domain.KindMissingSeedData
	case errors.Is(err, referencedomain.ErrInvalidReference):
		kind = domain.KindInvalidReference
	case step == domain.StepAccount && dbpkg.IsDuplicateKeyErr(err):
		kind = domain.KindDuplicateEmail
		err = errors.Join(domain.ErrDuplicateEmail, err)
	case dbpkg.IsForeignKeyErr(err):
		kind = domain.KindInvalidReference
	case errors.Is(err, context.Canceled):
		kind = domain.KindUnknown
	case dbpkg.IsUnavailableErr(err):
		kind = domain.KindStorageUnavailable
	}
	return &domain.ProvisioningError{Kind: kind, Step: step, Err: err}
}

func asProvisioningError(err error) *domain.ProvisioningError {
	var perr *domain.ProvisioningError
	if errors.As(err, &perr) {
		return perr
	}
	return &domain.ProvisioningError{Kind: domain.KindUnknown, Err: err}
}

var _ domain.Provisioner = (*Provisioner)(nil)
