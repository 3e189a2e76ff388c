package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Kind selects which lookup table a name is resolved against.
type Kind string

const (
	KindRole  Kind = "role"
	KindCity  Kind = "city"
	KindStyle Kind = "style"
)

var (
	// ErrMissingSeedData means a lookup table the system depends on is empty
	// or lacks a required row. It is an operator problem, not a user error.
	ErrMissingSeedData = errors.New("missing seed data")
	// ErrInvalidReference means a referenced row could neither be found nor created.
	ErrInvalidReference = errors.New("invalid reference")
	ErrUnknownKind      = errors.New("unknown reference kind")
	ErrNotFound         = errors.New("reference not found")
)

// Resolution is the outcome of resolving a name to a row id.
type Resolution struct {
	Kind Kind
	ID   snowflake.ID
	Name string
	// Created is set when the row was inserted by this resolution.
	Created bool
	// FellBack is set when a style label was replaced by the default or first style.
	FellBack bool
}

// Resolver maps human-readable names to lookup row ids. It must be bound to
// the caller's transaction with WithTx so that rows it creates share that
// transaction's fate.
type Resolver interface {
	WithTx(tx *gorm.DB) Resolver
	Resolve(ctx context.Context, kind Kind, name string) (Resolution, error)
}
