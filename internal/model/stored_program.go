// internal/model/stored_program.go
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProgramMode names one of the program instances a session keeps
type ProgramMode string

const (
	ProgramModeFull   ProgramMode = "full"
	ProgramModeSimple ProgramMode = "simple"
)

// ProgramModes lists every mode
func ProgramModes() []ProgramMode {
	return []ProgramMode{ProgramModeFull, ProgramModeSimple}
}

// ParseProgramMode validates a mode name
func ParseProgramMode(value string) (ProgramMode, error) {
	switch ProgramMode(value) {
	case ProgramModeFull, ProgramModeSimple:
		return ProgramMode(value), nil
	default:
		return "", fmt.Errorf("unknown program mode %q", value)
	}
}

// StoredProgram represents a named program in the library
type StoredProgram struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	Name        string        `json:"name" db:"name"`
	Mode        ProgramMode   `json:"mode" db:"mode"`
	Description string        `json:"description" db:"description"`
	Record      ProgramRecord `json:"record" db:"record"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// NewStoredProgram snapshots a program under a new id
func NewStoredProgram(name string, mode ProgramMode, program *StimulationProgram) *StoredProgram {
	now := time.Now()
	return &StoredProgram{
		ID:        uuid.New(),
		Name:      name,
		Mode:      mode,
		Record:    program.Serialize(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Program decodes the stored record into a fresh program
func (s *StoredProgram) Program() (*StimulationProgram, error) {
	return DeserializeProgram(s.Record)
}
