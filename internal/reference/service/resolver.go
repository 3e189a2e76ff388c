package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/smallbiznis/atelier/internal/clock"
	"github.com/smallbiznis/atelier/internal/config"
	"github.com/smallbiznis/atelier/internal/idgen"
	"github.com/smallbiznis/atelier/internal/observability/metrics"
	"github.com/smallbiznis/atelier/internal/reference/domain"
	dbpkg "github.com/smallbiznis/atelier/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	cacheTTL             = 10 * time.Minute
	cacheCleanupInterval = 30 * time.Minute

	citySavepoint = "city_insert"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     domain.Repository
	GenID    idgen.Generator
	Clock    clock.Clock
	Settings *config.ProvisioningConfigHolder
	Metrics  *metrics.Metrics       `optional:"true"`
	Signup   *metrics.SignupMetrics `optional:"true"`
}

// cache is shared by every transaction-bound copy of the resolver.
type resolver struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	genID    idgen.Generator
	clock    clock.Clock
	settings *config.ProvisioningConfigHolder
	metrics  *metrics.Metrics
	signup   *metrics.SignupMetrics
	cache    *gocache.Cache
}

func NewResolver(p Params) domain.Resolver {
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
	return &resolver{
		db:       p.DB,
		log:      log.Named("reference.resolver"),
		repo:     p.Repo,
		genID:    p.GenID,
		clock:    clk,
		settings: settings,
		metrics:  p.Metrics,
		signup:   p.Signup,
		cache:    gocache.New(cacheTTL, cacheCleanupInterval),
	}
}

func (r *resolver) WithTx(tx *gorm.DB) domain.Resolver {
	clone := *r
	clone.db = tx
	clone.repo = r.repo.WithTx(tx)
	return &clone
}

func (r *resolver) Resolve(ctx context.Context, kind domain.Kind, name string) (domain.Resolution, error) {
	name = strings.TrimSpace(name)

	var (
		res domain.Resolution
		err error
	)
	switch kind {
	case domain.KindRole:
		res, err = r.resolveRole(ctx, name)
	case domain.KindCity:
		res, err = r.resolveCity(ctx, name)
	case domain.KindStyle:
		res, err = r.resolveStyle(ctx, name)
	default:
		return domain.Resolution{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}

	r.metrics.RecordReferenceResolution(ctx, string(kind), resultLabel(res, err))
	if err != nil {
		return domain.Resolution{}, err
	}
	res.Kind = kind
	return res, nil
}

func (r *resolver) resolveRole(ctx context.Context, name string) (domain.Resolution, error) {
	if res, ok := r.cached(domain.KindRole, name); ok {
		return res, nil
	}

	role, err := r.repo.FindRoleByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Resolution{}, fmt.Errorf("%w: role %q", domain.ErrMissingSeedData, name)
		}
		return domain.Resolution{}, err
	}

	res := domain.Resolution{ID: role.ID, Name: role.Name}
	r.remember(domain.KindRole, name, res)
	return res, nil
}

// resolveStyle falls back to the configured default style and then to the
// first style on record. Only exact matches are cached.
func (r *resolver) resolveStyle(ctx context.Context, name string) (domain.Resolution, error) {
	if name != "" {
		if res, ok := r.cached(domain.KindStyle, name); ok {
			return res, nil
		}
		style, err := r.repo.FindStyleByName(ctx, name)
		switch {
		case err == nil:
			res := domain.Resolution{ID: style.ID, Name: style.Name}
			r.remember(domain.KindStyle, name, res)
			return res, nil
		case !errors.Is(err, domain.ErrNotFound):
			return domain.Resolution{}, err
		}
	}

	fallback := r.settings.Get().DefaultStyle
	if fallback != "" && fallback != name {
		style, err := r.repo.FindStyleByName(ctx, fallback)
		switch {
		case err == nil:
			r.signup.RecordStyleFallback()
			return domain.Resolution{ID: style.ID, Name: style.Name, FellBack: true}, nil
		case !errors.Is(err, domain.ErrNotFound):
			return domain.Resolution{}, err
		}
	}

	style, err := r.repo.FirstStyle(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Resolution{}, fmt.Errorf("%w: styles table is empty", domain.ErrMissingSeedData)
		}
		return domain.Resolution{}, err
	}
	r.signup.RecordStyleFallback()
	return domain.Resolution{ID: style.ID, Name: style.Name, FellBack: true}, nil
}

func (r *resolver) resolveCity(ctx context.Context, name string) (domain.Resolution, error) {
	if name == "" {
		return domain.Resolution{}, fmt.Errorf("%w: empty city name", domain.ErrInvalidReference)
	}

	city, err := r.repo.FindCityByName(ctx, name)
	if err == nil {
		return domain.Resolution{ID: city.ID, Name: city.Name}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Resolution{}, err
	}

	created := domain.City{
		ID:        r.genID.Generate(),
		Name:      name,
		Country:   r.settings.Get().DefaultCountry,
		CreatedAt: r.clock.Now(),
	}
	err = r.insertCity(ctx, created)
	if err == nil {
		return domain.Resolution{ID: created.ID, Name: created.Name, Created: true}, nil
	}
	if !dbpkg.IsDuplicateKeyErr(err) {
		return domain.Resolution{}, err
	}

	// A concurrent registration inserted the same city first.
	r.log.Debug("city insert lost race, re-reading", zap.String("city", name))
	city, err = r.repo.FindCityByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Resolution{}, fmt.Errorf("%w: city %q", domain.ErrInvalidReference, name)
		}
		return domain.Resolution{}, err
	}
	return domain.Resolution{ID: city.ID, Name: city.Name}, nil
}

// insertCity wraps the insert in a savepoint when running inside a
// transaction so a unique violation does not abort the outer transaction.
func (r *resolver) insertCity(ctx context.Context, city domain.City) error {
	if _, inTx := r.db.Statement.ConnPool.(gorm.TxCommitter); !inTx {
		return r.repo.InsertCity(ctx, city)
	}

	tx := r.db.WithContext(ctx)
	if err := tx.SavePoint(citySavepoint).Error; err != nil {
		return err
	}
	if err := r.repo.InsertCity(ctx, city); err != nil {
		if rbErr := tx.RollbackTo(citySavepoint).Error; rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return nil
}

func (r *resolver) cached(kind domain.Kind, name string) (domain.Resolution, bool) {
	v, ok := r.cache.Get(cacheKey(kind, name))
	if !ok {
		return domain.Resolution{}, false
	}
	return v.(domain.Resolution), true
}

func (r *resolver) remember(kind domain.Kind, name string, res domain.Resolution) {
	r.cache.SetDefault(cacheKey(kind, name), res)
}

func cacheKey(kind domain.Kind, name string) string {
	return string(kind) + ":" + name
}

func resultLabel(res domain.Resolution, err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingSeedData):
		return "missing_seed_data"
	case errors.Is(err, domain.ErrInvalidReference):
		return "invalid_reference"
	case err != nil:
		return "error"
	case res.Created:
		return "created"
	case res.FellBack:
		return "fallback"
	default:
		return "found"
	}
}
