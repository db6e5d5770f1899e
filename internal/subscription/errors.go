package subscription

import (
	"errors"
	"fmt"
)

// Confirm failures that are the caller's fault.
var (
	// ErrMissingToken reports an empty or whitespace-only confirmation token.
	ErrMissingToken = errors.New("confirmation token is missing")
	// ErrUnknownToken reports a well-formed token with no matching row. An
	// absent token is treated as a client error, not a lookup miss.
	ErrUnknownToken = errors.New("no subscription matches the confirmation token")
)

// ValidationError reports malformed subscriber input. Always
// client-attributable; handlers map it to a 400 response.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Op tags an infrastructure failure with the step that produced it.
type Op string

const (
	OpBeginTx           Op = "begin transaction"
	OpFindSubscriber    Op = "find subscriber"
	OpInsertSubscriber  Op = "insert subscriber"
	OpGenerateToken     Op = "generate confirmation token"
	OpStoreToken        Op = "store confirmation token"
	OpCommitTx          Op = "commit transaction"
	OpSendEmail         Op = "send confirmation email"
	OpFindToken         Op = "look up confirmation token"
	OpConfirmSubscriber Op = "confirm subscriber"
)

// InfrastructureError wraps an internal failure with the operation that
// produced it. The original cause is preserved for logging; handlers map
// every variant to a uniform 500 response with no internal detail.
type InfrastructureError struct {
	Op    Op
	Cause error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *InfrastructureError) Unwrap() error { return e.Cause }

func infraErr(op Op, cause error) error {
	return &InfrastructureError{Op: op, Cause: cause}
}

// IsClientError reports whether err should surface as a 4xx response.
func IsClientError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v) ||
		errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrUnknownToken)
}
