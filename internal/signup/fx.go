package signup

import (
	"github.com/smallbiznis/atelier/internal/signup/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("signup.service",
	fx.Provide(NewValidator),
	fx.Provide(NewProvisioner),
	fx.Provide(func(p *Provisioner) domain.Provisioner { return p }),
	fx.Provide(NewService),
)
