package auth

import (
	"github.com/smallbiznis/atelier/internal/auth/password"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.password",
	fx.Provide(password.NewBcryptHasher),
)
