// internal/repository/interfaces.go
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"stimjim-service/internal/model"
)

// ErrNotFound is returned when no stored program matches
var ErrNotFound = errors.New("stored program not found")

// ErrDuplicateName is returned when a program name is already taken
var ErrDuplicateName = errors.New("stored program name already exists")

// ProgramRepository defines program library data access operations
type ProgramRepository interface {
	Create(ctx context.Context, program *model.StoredProgram) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.StoredProgram, error)
	GetByName(ctx context.Context, name string) (*model.StoredProgram, error)
	List(ctx context.Context, filter *ProgramFilter) ([]*model.StoredProgram, int, error)
	Update(ctx context.Context, program *model.StoredProgram) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProgramFilter represents program listing filters
type ProgramFilter struct {
	Mode       *model.ProgramMode `json:"mode,omitempty"`
	SearchTerm *string            `json:"search_term,omitempty"`
	Page       int                `json:"page"`
	PerPage    int                `json:"per_page"`
}

// normalize fills in paging defaults
func (f *ProgramFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}
}
