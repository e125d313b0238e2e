// internal/model/output_mode.go
package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Device-wide constants
const (
	NumOutputs     = 2
	NumTriggers    = 2
	MaxPulseTrains = 100
	MaxStages      = 10
)

// DurationScalingFactor converts seconds to the microseconds the device expects
var DurationScalingFactor = decimal.NewFromInt(1_000_000)

// OutputMode represents the electrical mode of one output channel
type OutputMode int

const (
	OutputModeVoltage      OutputMode = 0
	OutputModeCurrent      OutputMode = 1
	OutputModeDisconnected OutputMode = 2
	OutputModeGrounded     OutputMode = 3
)

// DefaultOutputMode is used for every channel that carries no signal
const DefaultOutputMode = OutputModeGrounded

// ModeLimits describes units and bounds of an output mode
type ModeLimits struct {
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	MaxMagnitude  decimal.Decimal `json:"max_magnitude"`
	ScalingFactor decimal.Decimal `json:"scaling_factor"`
	Step          decimal.Decimal `json:"step"`
}

var modeCatalogue = map[OutputMode]ModeLimits{
	OutputModeVoltage: {
		Name:          "Voltage",
		Unit:          "V",
		MaxMagnitude:  decimal.RequireFromString("15"),
		ScalingFactor: decimal.NewFromInt(1_000), // mV
		Step:          decimal.RequireFromString("0.001"),
	},
	OutputModeCurrent: {
		Name:          "Current",
		Unit:          "A",
		MaxMagnitude:  decimal.RequireFromString("0.00333"),
		ScalingFactor: decimal.NewFromInt(1_000_000), // µA
		Step:          decimal.RequireFromString("0.000001"),
	},
	OutputModeDisconnected: {
		Name:          "Disconnected",
		MaxMagnitude:  decimal.Zero,
		ScalingFactor: decimal.Zero,
		Step:          decimal.Zero,
	},
	OutputModeGrounded: {
		Name:          "Grounded (OFF)",
		MaxMagnitude:  decimal.Zero,
		ScalingFactor: decimal.Zero,
		Step:          decimal.Zero,
	},
}

// OutputModes lists every mode in wire order
func OutputModes() []OutputMode {
	return []OutputMode{OutputModeVoltage, OutputModeCurrent, OutputModeDisconnected, OutputModeGrounded}
}

// ParseOutputMode converts a wire integer into an OutputMode
func ParseOutputMode(value int) (OutputMode, error) {
	mode := OutputMode(value)
	if !mode.IsValid() {
		return DefaultOutputMode, fmt.Errorf("%w: %d", ErrInvalidOutputMode, value)
	}
	return mode, nil
}

// IsValid reports whether the mode is one of the four catalogued variants
func (m OutputMode) IsValid() bool {
	_, ok := modeCatalogue[m]
	return ok
}

// String returns the operator-facing name
func (m OutputMode) String() string {
	if limits, ok := modeCatalogue[m]; ok {
		return limits.Name
	}
	return fmt.Sprintf("OutputMode(%d)", int(m))
}

// Limits returns the catalogue entry for a mode. Unknown modes get the
// Grounded entry, which allows no signal at all.
func Limits(mode OutputMode) ModeLimits {
	if limits, ok := modeCatalogue[mode]; ok {
		return limits
	}
	return modeCatalogue[OutputModeGrounded]
}

// MaxDeviceUnits returns the largest amplitude magnitude, in device integer
// units, accepted on a channel in the given mode
func MaxDeviceUnits(mode OutputMode) int {
	limits := Limits(mode)
	return int(limits.MaxMagnitude.Mul(limits.ScalingFactor).IntPart())
}

// ToDeviceUnits converts an SI amplitude to device integer units, truncating
// toward zero
func ToDeviceUnits(mode OutputMode, value decimal.Decimal) int {
	return int(value.Mul(Limits(mode).ScalingFactor).Truncate(0).IntPart())
}

// FromDeviceUnits converts device integer units back to an SI amplitude.
// Modes without a signal always report zero.
func FromDeviceUnits(mode OutputMode, units int) decimal.Decimal {
	scale := Limits(mode).ScalingFactor
	if scale.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(units)).Div(scale)
}

// SecondsToMicros converts seconds to integer microseconds, truncating
func SecondsToMicros(seconds float64) int {
	return int(decimal.NewFromFloat(seconds).Mul(DurationScalingFactor).Truncate(0).IntPart())
}

// MicrosToSeconds converts integer microseconds to seconds
func MicrosToSeconds(micros int) float64 {
	return decimal.NewFromInt(int64(micros)).Div(DurationScalingFactor).InexactFloat64()
}
