// internal/repository/program_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"stimjim-service/internal/database"
	"stimjim-service/internal/model"
	"stimjim-service/internal/utils"
)

const programColumns = `id, name, mode, description, record, created_at, updated_at`

// programRepository implements ProgramRepository on PostgreSQL
type programRepository struct {
	db     *database.DB
	logger *utils.ServiceLogger
}

// NewProgramRepository creates a new program repository
func NewProgramRepository(db *database.DB, logger *zap.Logger) ProgramRepository {
	return &programRepository{
		db:     db,
		logger: utils.NewServiceLogger(logger, "program-repository"),
	}
}

// Create stores a new program
func (r *programRepository) Create(ctx context.Context, program *model.StoredProgram) error {
	query := `
		INSERT INTO stimulation_programs (id, name, mode, description, record, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	start := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		program.ID, program.Name, program.Mode, program.Description,
		program.Record, program.CreatedAt, program.UpdatedAt,
	)
	r.logger.LogDatabaseQuery("insert stimulation_programs", time.Since(start), err)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateName, program.Name)
		}
		return fmt.Errorf("failed to create program: %w", err)
	}

	r.logger.Info("Program stored", zap.String("id", program.ID.String()), zap.String("name", program.Name))
	return nil
}

// GetByID retrieves a program by its UUID
func (r *programRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.StoredProgram, error) {
	query := `SELECT ` + programColumns + ` FROM stimulation_programs WHERE id = $1`

	program, err := scanProgram(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %s", ErrNotFound, id)
		}
		r.logger.Error("Failed to get program by ID", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("failed to get program: %w", err)
	}

	return program, nil
}

// GetByName retrieves a program by its unique name
func (r *programRepository) GetByName(ctx context.Context, name string) (*model.StoredProgram, error) {
	query := `SELECT ` + programColumns + ` FROM stimulation_programs WHERE name = $1`

	program, err := scanProgram(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: name %s", ErrNotFound, name)
		}
		r.logger.Error("Failed to get program by name", zap.Error(err), zap.String("name", name))
		return nil, fmt.Errorf("failed to get program: %w", err)
	}

	return program, nil
}

// List retrieves programs with filtering and pagination
func (r *programRepository) List(ctx context.Context, filter *ProgramFilter) ([]*model.StoredProgram, int, error) {
	if filter == nil {
		filter = &ProgramFilter{}
	}
	filter.normalize()

	whereConditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if filter.Mode != nil {
		whereConditions = append(whereConditions, fmt.Sprintf("mode = $%d", argIndex))
		args = append(args, *filter.Mode)
		argIndex++
	}

	if filter.SearchTerm != nil {
		whereConditions = append(whereConditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+*filter.SearchTerm+"%")
		argIndex++
	}

	whereClause := ""
	if len(whereConditions) > 0 {
		whereClause = "WHERE " + strings.Join(whereConditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM stimulation_programs %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count programs: %w", err)
	}

	offset := (filter.Page - 1) * filter.PerPage
	query := fmt.Sprintf(`SELECT %s FROM stimulation_programs %s ORDER BY updated_at DESC LIMIT $%d OFFSET $%d`,
		programColumns, whereClause, argIndex, argIndex+1)
	args = append(args, filter.PerPage, offset)

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, args...)
	r.logger.LogDatabaseQuery("list stimulation_programs", time.Since(start), err)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list programs: %w", err)
	}
	defer rows.Close()

	programs := []*model.StoredProgram{}
	for rows.Next() {
		program, err := scanProgram(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan program: %w", err)
		}
		programs = append(programs, program)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate programs: %w", err)
	}

	return programs, total, nil
}

// Update overwrites name, description and record of an existing program
func (r *programRepository) Update(ctx context.Context, program *model.StoredProgram) error {
	query := `
		UPDATE stimulation_programs SET
			name = $2, mode = $3, description = $4, record = $5, updated_at = $6
		WHERE id = $1
	`

	program.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		program.ID, program.Name, program.Mode, program.Description, program.Record, program.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateName, program.Name)
		}
		r.logger.Error("Failed to update program", zap.Error(err), zap.String("id", program.ID.String()))
		return fmt.Errorf("failed to update program: %w", err)
	}

	return expectOneRow(result, program.ID)
}

// Delete removes a program
func (r *programRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stimulation_programs WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete program", zap.Error(err), zap.String("id", id.String()))
		return fmt.Errorf("failed to delete program: %w", err)
	}

	if err := expectOneRow(result, id); err != nil {
		return err
	}

	r.logger.Info("Program deleted", zap.String("id", id.String()))
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProgram(row rowScanner) (*model.StoredProgram, error) {
	program := &model.StoredProgram{}
	err := row.Scan(
		&program.ID, &program.Name, &program.Mode, &program.Description,
		&program.Record, &program.CreatedAt, &program.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return program, nil
}

func expectOneRow(result sql.Result, id uuid.UUID) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
