// internal/model/errors.go
package model

import "errors"

// Entity-level errors are recoverable: the operation that returns one leaves
// the receiver untouched.
var (
	ErrTooManyStages       = errors.New("pulse train stage limit reached")
	ErrIndexOutOfRange     = errors.New("index out of range")
	ErrInvalidPeriod       = errors.New("train period must be positive")
	ErrInvalidDuration     = errors.New("duration must not be negative")
	ErrAmplitudeOutOfRange = errors.New("amplitude exceeds output mode limit")
	ErrInvalidTarget       = errors.New("invalid trigger target train")
	ErrInvalidOutputMode   = errors.New("invalid output mode")
)

// Decode errors. A failed decode never produces a partially built program.
var (
	ErrInvalidDirection = errors.New("invalid trigger direction")
	ErrMalformedRecord  = errors.New("malformed program record")
)
