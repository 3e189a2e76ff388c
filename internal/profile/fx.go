package profile

import (
	"github.com/smallbiznis/atelier/internal/profile/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("profile.repository",
	fx.Provide(repository.NewRepository),
)
