package services

import "fmt"

// ValidationError covers missing or malformed intake fields. User
// correctable, mapped to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError covers operations rejected by current order state, such as
// re-paying a settled order. Mapped to 400.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NotFoundError covers lookups of unknown orders. Mapped to 404.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// SignatureError is terminal: a payment proof that does not verify is
// never retried and never partially trusted. Mapped to 400.
type SignatureError struct{}

func (e *SignatureError) Error() string { return "invalid payment signature" }

// ConfigError means a secret required for payment correctness is absent.
// Unlike notification config, this must fail loudly. Mapped to 500.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// PersistenceError wraps a data-store failure with the failing operation
// so operators can tell which write broke. Mapped to 500.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
