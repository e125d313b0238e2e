package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stimjim-service/internal/database"
	"stimjim-service/internal/model"
)

func newMockRepository(t *testing.T) (ProgramRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return NewProgramRepository(database.Wrap(sqlDB, zap.NewNop()), zap.NewNop()), mock
}

func programRow(t *testing.T, id uuid.UUID, name string) *sqlmock.Rows {
	t.Helper()

	record, err := model.NewStimulationProgram().Serialize().Value()
	require.NoError(t, err)

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{"id", "name", "mode", "description", "record", "created_at", "updated_at"}).
		AddRow(id.String(), name, "full", "", record, now, now)
}

func TestProgramRepositoryCreate(t *testing.T) {
	repo, mock := newMockRepository(t)
	stored := model.NewStoredProgram("baseline", model.ProgramModeFull, model.NewStimulationProgram())

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO stimulation_programs")).
		WithArgs(stored.ID, "baseline", model.ProgramModeFull, "", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), stored))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepositoryCreateDuplicate(t *testing.T) {
	repo, mock := newMockRepository(t)
	stored := model.NewStoredProgram("baseline", model.ProgramModeFull, model.NewStimulationProgram())

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO stimulation_programs")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), stored)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestProgramRepositoryGetByID(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM stimulation_programs WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(programRow(t, id, "baseline"))

	stored, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, stored.ID)
	assert.Equal(t, model.ProgramModeFull, stored.Mode)
	assert.Len(t, stored.Record.PulseTrains, model.MaxPulseTrains)

	program, err := stored.Program()
	require.NoError(t, err)
	assert.Equal(t, model.NewStimulationProgram().EncodeTriggers(), program.EncodeTriggers())
}

func TestProgramRepositoryGetByNameNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM stimulation_programs WHERE name = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByName(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProgramRepositoryList(t *testing.T) {
	repo, mock := newMockRepository(t)
	mode := model.ProgramModeFull
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM stimulation_programs WHERE mode = $1")).
		WithArgs(mode).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $2 OFFSET $3")).
		WithArgs(mode, 20, 0).
		WillReturnRows(programRow(t, id, "baseline"))

	programs, total, err := repo.List(context.Background(), &ProgramFilter{Mode: &mode})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, programs, 1)
	assert.Equal(t, "baseline", programs[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepositoryUpdateAndDelete(t *testing.T) {
	repo, mock := newMockRepository(t)
	stored := model.NewStoredProgram("baseline", model.ProgramModeSimple, model.NewStimulationProgram())

	mock.ExpectExec(regexp.QuoteMeta("UPDATE stimulation_programs SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), stored))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM stimulation_programs")).
		WithArgs(stored.ID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), stored.ID), ErrNotFound)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM stimulation_programs")).
		WithArgs(stored.ID).
		WillReturnError(errors.New("connection reset"))
	err := repo.Delete(context.Background(), stored.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
