package signup

import (
	"context"

	"github.com/smallbiznis/atelier/internal/clock"
	"github.com/smallbiznis/atelier/internal/signup/domain"
)

type service struct {
	validator   domain.Validator
	provisioner domain.Provisioner
	clock       clock.Clock
}

func NewService(validator domain.Validator, provisioner domain.Provisioner, clk clock.Clock) domain.Service {
	return &service{
		validator:   validator,
		provisioner: provisioner,
		clock:       clk,
	}
}

func (s *service) Signup(ctx context.Context, req domain.Request) (*domain.Result, error) {
	in, err := s.validator.Validate(req, s.clock.Now())
	if err != nil {
		return nil, err
	}
	return s.provisioner.Provision(ctx, in)
}
