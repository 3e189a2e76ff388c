package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRequest means the body could not be decoded at all.
	ErrMalformedRequest = errors.New("malformed registration request")
	ErrDuplicateEmail   = errors.New("email already registered")
)

const (
	MessageDuplicateEmail   = "this email is already registered"
	MessageInvalidReference = "invalid reference data"
	MessageFailed           = "registration failed, please try again later"
	MessageMalformed        = "invalid request body"
)

// ValidationError reports the first rule a request broke.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// ErrorKind classifies a failed provisioning transaction.
type ErrorKind string

const (
	KindDuplicateEmail     ErrorKind = "duplicate_email"
	KindInvalidReference   ErrorKind = "invalid_reference"
	KindMissingSeedData    ErrorKind = "missing_seed_data"
	KindStorageUnavailable ErrorKind = "storage_unavailable"
	KindUnknown            ErrorKind = "unknown"
)

// Step names the point of the registration the failure happened at.
type Step string

const (
	StepPrecheck   Step = "precheck"
	StepHash       Step = "hash_password"
	StepBegin      Step = "begin"
	StepAccount    Step = "account"
	StepTeam       Step = "team"
	StepMembership Step = "membership"
	StepProfile    Step = "profile"
	StepStyles     Step = "styles"
	StepStatistics Step = "statistics"
	StepCommit     Step = "commit"
)

// ProvisioningError is returned by the provisioner for every failure after
// validation. Nothing has been persisted when it is returned.
type ProvisioningError struct {
	Kind ErrorKind
	Step Step
	Err  error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provision %s (%s): %v", e.Step, e.Kind, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// UserMessage is the text safe to show the client.
func (e *ProvisioningError) UserMessage() string {
	switch e.Kind {
	case KindDuplicateEmail:
		return MessageDuplicateEmail
	case KindInvalidReference:
		return MessageInvalidReference
	default:
		return MessageFailed
	}
}

// IsKind reports whether err is a ProvisioningError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var perr *ProvisioningError
	return errors.As(err, &perr) && perr.Kind == kind
}
