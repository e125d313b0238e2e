package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stimjim-service/internal/model"
	"stimjim-service/internal/repository"
)

// emptyRepository answers lookups with ErrNotFound; the other methods are
// never reached by these tests
type emptyRepository struct {
	repository.ProgramRepository
}

func (emptyRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.StoredProgram, error) {
	return nil, repository.ErrNotFound
}

func (emptyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return repository.ErrNotFound
}

func (emptyRepository) List(ctx context.Context, filter *repository.ProgramFilter) ([]*model.StoredProgram, int, error) {
	return []*model.StoredProgram{}, 0, nil
}

func TestLibraryDisabled(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/library", map[string]string{"name": "baseline", "mode": "full"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/library", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLibraryRequests(t *testing.T) {
	env := newTestEnv(t, emptyRepository{})

	t.Run("invalid id", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/library/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown program", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/library/"+uuid.New().String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = env.do(t, http.MethodPost, "/api/v1/library/"+uuid.New().String()+"/load", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = env.do(t, http.MethodDelete, "/api/v1/library/"+uuid.New().String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid mode", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/library", map[string]string{"name": "baseline", "mode": "expert"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = env.do(t, http.MethodGet, "/api/v1/library?mode=expert", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty listing", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/library?page=2&per_page=5", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var page struct {
			Programs   []model.StoredProgram `json:"programs"`
			Pagination PaginationResult      `json:"pagination"`
		}
		decodeData(t, w, &page)
		assert.Empty(t, page.Programs)
		assert.Equal(t, PaginationResult{Page: 2, PerPage: 5}, page.Pagination)
	})
}
