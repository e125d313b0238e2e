// internal/service/program_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stimjim-service/internal/model"
	"stimjim-service/internal/repository"
	"stimjim-service/internal/utils"
)

// ErrLibraryDisabled is returned when no program repository is configured
var ErrLibraryDisabled = errors.New("program library is disabled")

// ProgramService stores and recalls named programs
type ProgramService struct {
	repo       repository.ProgramRepository
	stimulator *StimulatorService
	logger     *utils.ServiceLogger
}

// SaveProgramRequest represents a request to store the current program
type SaveProgramRequest struct {
	Name        string            `json:"name" binding:"required"`
	Mode        model.ProgramMode `json:"mode" binding:"required"`
	Description string            `json:"description"`
	Overwrite   bool              `json:"overwrite"`
}

// NewProgramService creates a program service. repo may be nil when the
// database is disabled.
func NewProgramService(repo repository.ProgramRepository, stimulator *StimulatorService, logger *zap.Logger) *ProgramService {
	return &ProgramService{
		repo:       repo,
		stimulator: stimulator,
		logger:     utils.NewServiceLogger(logger, "program-service"),
	}
}

// Enabled reports whether a repository is configured
func (ps *ProgramService) Enabled() bool {
	return ps.repo != nil
}

// Save stores the controller's current program of a mode under a name
func (ps *ProgramService) Save(ctx context.Context, req *SaveProgramRequest) (*model.StoredProgram, error) {
	if !ps.Enabled() {
		return nil, ErrLibraryDisabled
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("program name is required")
	}

	program, err := ps.stimulator.Program(req.Mode)
	if err != nil {
		return nil, err
	}

	if req.Overwrite {
		existing, err := ps.repo.GetByName(ctx, name)
		if err == nil {
			existing.Mode = req.Mode
			existing.Description = req.Description
			existing.Record = program.Serialize()
			if err := ps.repo.Update(ctx, existing); err != nil {
				return nil, err
			}
			ps.logger.Info("Program overwritten", zap.String("name", name))
			return existing, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	stored := model.NewStoredProgram(name, req.Mode, program)
	stored.Description = req.Description
	if err := ps.repo.Create(ctx, stored); err != nil {
		return nil, err
	}

	ps.logger.Info("Program saved",
		zap.String("id", stored.ID.String()),
		zap.String("name", name),
		zap.String("mode", string(req.Mode)),
	)
	return stored, nil
}

// Get returns a stored program
func (ps *ProgramService) Get(ctx context.Context, id uuid.UUID) (*model.StoredProgram, error) {
	if !ps.Enabled() {
		return nil, ErrLibraryDisabled
	}
	return ps.repo.GetByID(ctx, id)
}

// List returns stored programs
func (ps *ProgramService) List(ctx context.Context, filter *repository.ProgramFilter) ([]*model.StoredProgram, int, error) {
	if !ps.Enabled() {
		return nil, 0, ErrLibraryDisabled
	}
	return ps.repo.List(ctx, filter)
}

// Load installs a stored program into a mode of the controller. The stored
// mode is used when mode is empty. With push set the program is sent to
// the device afterwards.
func (ps *ProgramService) Load(ctx context.Context, id uuid.UUID, mode model.ProgramMode, push bool) (*model.StoredProgram, error) {
	stored, err := ps.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if mode == "" {
		mode = stored.Mode
	}
	if err := ps.stimulator.LoadProgram(mode, stored.Record); err != nil {
		return nil, err
	}

	if push {
		if _, err := ps.stimulator.PushProgram(ctx, mode); err != nil {
			return stored, err
		}
	}

	ps.logger.Info("Program recalled", zap.String("name", stored.Name), zap.String("mode", string(mode)))
	return stored, nil
}

// Delete removes a stored program
func (ps *ProgramService) Delete(ctx context.Context, id uuid.UUID) error {
	if !ps.Enabled() {
		return ErrLibraryDisabled
	}
	return ps.repo.Delete(ctx, id)
}
