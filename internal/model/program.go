// internal/model/program.go
package model

import (
	"fmt"
	"strings"
)

// StimulationProgram is the full device state: a fixed address space of
// pulse trains (ids 0-99) and the two hardware triggers. It holds no
// transport; the session controller binds programs to a connection.
type StimulationProgram struct {
	triggers    [NumTriggers]Trigger
	pulseTrains [MaxPulseTrains]*PulseTrain
}

// NewStimulationProgram creates a program with every train grounded and
// empty and every trigger unbound
func NewStimulationProgram() *StimulationProgram {
	p := &StimulationProgram{}
	for i := range p.triggers {
		p.triggers[i] = NewTrigger(i)
	}
	for i := range p.pulseTrains {
		p.pulseTrains[i] = NewPulseTrain(i)
	}
	return p
}

// Train returns the train with the given id for in-place mutation
func (p *StimulationProgram) Train(id int) (*PulseTrain, error) {
	if id < 0 || id >= MaxPulseTrains {
		return nil, fmt.Errorf("pulse train %d: %w", id, ErrIndexOutOfRange)
	}
	return p.pulseTrains[id], nil
}

// Trains returns every train in id order
func (p *StimulationProgram) Trains() []*PulseTrain {
	out := make([]*PulseTrain, MaxPulseTrains)
	copy(out, p.pulseTrains[:])
	return out
}

// ReplaceTrain installs a train at its own id
func (p *StimulationProgram) ReplaceTrain(train *PulseTrain) error {
	if train == nil || train.ID() < 0 || train.ID() >= MaxPulseTrains {
		return fmt.Errorf("replace train: %w", ErrIndexOutOfRange)
	}
	p.pulseTrains[train.ID()] = train
	return nil
}

// Trigger returns a copy of the trigger with the given id
func (p *StimulationProgram) Trigger(id int) (Trigger, error) {
	if id < 0 || id >= NumTriggers {
		return Trigger{}, fmt.Errorf("trigger %d: %w", id, ErrIndexOutOfRange)
	}
	return p.triggers[id], nil
}

// Triggers returns copies of both triggers
func (p *StimulationProgram) Triggers() []Trigger {
	out := make([]Trigger, NumTriggers)
	copy(out, p.triggers[:])
	return out
}

// SetTrigger replaces the trigger at t.ID after validation
func (p *StimulationProgram) SetTrigger(t Trigger) error {
	if err := t.Validate(); err != nil {
		return err
	}
	p.triggers[t.ID] = t
	return nil
}

// EncodeTrain returns the "S" command of one train
func (p *StimulationProgram) EncodeTrain(id int) (string, error) {
	train, err := p.Train(id)
	if err != nil {
		return "", err
	}
	return train.Encode(), nil
}

// EncodeTriggers returns both trigger bindings joined by newlines
func (p *StimulationProgram) EncodeTriggers() string {
	lines := make([]string, 0, NumTriggers)
	for _, t := range p.triggers {
		lines = append(lines, t.Encode())
	}
	return strings.Join(lines, "\n")
}

// Clone returns a deep copy of the program
func (p *StimulationProgram) Clone() *StimulationProgram {
	clone := &StimulationProgram{triggers: p.triggers}
	for i, train := range p.pulseTrains {
		clone.pulseTrains[i] = train.Clone()
	}
	return clone
}
