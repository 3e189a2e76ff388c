package ratelimit

import (
	"context"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/atelier/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyRegistrationClient = "atelier:ratelimit:registration:"

// RegistrationLimiter bounds registration attempts per client address.
// When Redis is configured and fails, the in-memory window takes over so an
// outage of the limiter never blocks sign-ups.
type RegistrationLimiter struct {
	primary  Backend
	fallback Backend
	settings *config.ProvisioningConfigHolder
	log      *zap.Logger
}

func NewRegistrationLimiter(primary Backend, settings *config.ProvisioningConfigHolder, log *zap.Logger) *RegistrationLimiter {
	if log == nil {
		log = zap.NewNop()
	}
	if settings == nil {
		settings = config.NewStaticProvisioningConfig(config.DefaultProvisioningConfig())
	}
	fallback := NewMemoryWindow()
	if primary == nil {
		primary = fallback
	}
	return &RegistrationLimiter{
		primary:  primary,
		fallback: fallback,
		settings: settings,
		log:      log.Named("ratelimit"),
	}
}

// Allow records one attempt from clientIP and reports whether it is within
// the configured window.
func (l *RegistrationLimiter) Allow(ctx context.Context, clientIP string) (Result, error) {
	limits := l.settings.Get().RateLimit
	key := keyRegistrationClient + strings.TrimSpace(clientIP)

	res, err := l.primary.Hit(ctx, key, limits.Max, limits.Window)
	if err == nil || l.primary == l.fallback {
		return res, err
	}

	l.log.Warn("registration rate limit backend failed, using in-memory window", zap.Error(err))
	return l.fallback.Hit(ctx, key, limits.Max, limits.Window)
}

func newRedisClient(lc fx.Lifecycle, cfg config.Config) *redis.Client {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return client.Close() },
	})
	return client
}

func newBackend(client *redis.Client) Backend {
	if client == nil {
		return nil
	}
	return NewRedisWindow(client)
}
