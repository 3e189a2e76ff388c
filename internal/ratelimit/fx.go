package ratelimit

import "go.uber.org/fx"

var Module = fx.Module("rate.limit",
	fx.Provide(newRedisClient),
	fx.Provide(newBackend),
	fx.Provide(NewRegistrationLimiter),
)
