// internal/model/trigger.go
package model

import "fmt"

// CancelTarget is the sentinel train target meaning "no train bound"
const CancelTarget = -1

// TriggerDirection represents the input edge a trigger reacts to
type TriggerDirection int

const (
	TriggerRising  TriggerDirection = 0
	TriggerFalling TriggerDirection = 1
)

// ParseTriggerDirection converts a wire integer into a TriggerDirection
func ParseTriggerDirection(value int) (TriggerDirection, error) {
	switch TriggerDirection(value) {
	case TriggerRising, TriggerFalling:
		return TriggerDirection(value), nil
	default:
		return TriggerRising, fmt.Errorf("%w: %d", ErrInvalidDirection, value)
	}
}

// String returns the direction name
func (d TriggerDirection) String() string {
	switch d {
	case TriggerRising:
		return "RISING"
	case TriggerFalling:
		return "FALLING"
	default:
		return fmt.Sprintf("TriggerDirection(%d)", int(d))
	}
}

// Trigger binds a trigger input to a pulse train
type Trigger struct {
	ID          int              `json:"id"`
	Direction   TriggerDirection `json:"direction"`
	TargetTrain int              `json:"target_train"`
}

// NewTrigger creates an unbound, rising-edge trigger
func NewTrigger(id int) Trigger {
	return Trigger{
		ID:          id,
		Direction:   TriggerRising,
		TargetTrain: CancelTarget,
	}
}

// IsBound reports whether the trigger targets a train
func (t Trigger) IsBound() bool {
	return t.TargetTrain != CancelTarget
}

// Validate checks id, direction and target
func (t Trigger) Validate() error {
	if t.ID < 0 || t.ID >= NumTriggers {
		return fmt.Errorf("trigger %d: %w", t.ID, ErrIndexOutOfRange)
	}
	if _, err := ParseTriggerDirection(int(t.Direction)); err != nil {
		return fmt.Errorf("trigger %d: %w", t.ID, err)
	}
	if t.TargetTrain != CancelTarget && (t.TargetTrain < 0 || t.TargetTrain >= MaxPulseTrains) {
		return fmt.Errorf("trigger %d target %d: %w", t.ID, t.TargetTrain, ErrInvalidTarget)
	}
	return nil
}

// Encode returns the "R" binding command without a trailing newline:
// R<id>,<target_train>,<direction>
func (t Trigger) Encode() string {
	return fmt.Sprintf("R%d,%d,%d", t.ID, t.TargetTrain, int(t.Direction))
}
