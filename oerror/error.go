package oerror

import (
	"errors"
	"fmt"
)

// Kind classifies a MovementError.
type Kind uint8

const (
	// KindInternal is used for invariant violations that should never happen at runtime.
	KindInternal Kind = iota
	// KindConfiguration is used when a hull cannot be simulated until its setup is fixed, for
	// example when no collider is attached or the collider type is not supported.
	KindConfiguration
	// KindTransientStuck is used when the unstuck procedure ran out of attempts. It is retried
	// on the next tick.
	KindTransientStuck
)

// String ...
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindTransientStuck:
		return "transient stuck"
	default:
		return "internal"
	}
}

// MovementError is an error raised by the movement engine.
type MovementError struct {
	Kind Kind
	Err  string
}

// New returns an internal MovementError with the formatted message.
func New(format string, args ...any) *MovementError {
	return &MovementError{Kind: KindInternal, Err: fmt.Sprintf(format, args...)}
}

// Configuration returns a MovementError of KindConfiguration.
func Configuration(format string, args ...any) *MovementError {
	return &MovementError{Kind: KindConfiguration, Err: fmt.Sprintf(format, args...)}
}

// Stuck returns a MovementError of KindTransientStuck.
func Stuck(format string, args ...any) *MovementError {
	return &MovementError{Kind: KindTransientStuck, Err: fmt.Sprintf(format, args...)}
}

func (e *MovementError) Error() string {
	return e.Err
}

// IsKind reports whether any error in err's chain is a MovementError of the kind passed.
func IsKind(err error, kind Kind) bool {
	var merr *MovementError
	if errors.As(err, &merr) {
		return merr.Kind == kind
	}
	return false
}
