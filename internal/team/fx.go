package team

import (
	"github.com/smallbiznis/atelier/internal/team/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("team.repository",
	fx.Provide(repository.NewRepository),
)
