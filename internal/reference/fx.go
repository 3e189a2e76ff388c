package reference

import (
	"github.com/smallbiznis/atelier/internal/reference/repository"
	"github.com/smallbiznis/atelier/internal/reference/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reference",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewResolver),
	fx.Provide(service.NewCatalog),
)
