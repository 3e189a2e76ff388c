package domain

import (
	"context"
	"time"
)

// Service validates a registration form and provisions it.
type Service interface {
	Signup(ctx context.Context, req Request) (*Result, error)
}

// Validator turns a raw request into a provisionable Input.
type Validator interface {
	Validate(req Request, now time.Time) (Input, error)
}

// Provisioner creates every row of a registration in one transaction.
type Provisioner interface {
	Provision(ctx context.Context, in Input) (*Result, error)
}
