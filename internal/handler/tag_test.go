package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couplemap/couplemap/internal/api"
	"github.com/couplemap/couplemap/internal/domain"
	"github.com/couplemap/couplemap/internal/handler"
)

func TestListTags_200(t *testing.T) {
	tags := &mockTagServicer{
		suggestions: func(_ context.Context, coupleID uuid.UUID, prefix string, limit int) ([]domain.TagCount, error) {
			assert.Equal(t, testCoupleID, coupleID)
			assert.Equal(t, "ca", prefix)
			assert.Equal(t, 5, limit)
			return []domain.TagCount{{Tag: "#cafe", Count: 3}, {Tag: "#camp", Count: 1}}, nil
		},
	}
	h := newHTTPHandler(handler.Services{Tags: tags})

	rec := do(t, h, http.MethodGet, "/api/tags?q=ca&limit=5", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[[]api.TagSuggestion](t, rec)
	assert.Equal(t, []api.TagSuggestion{{Tag: "#cafe", Count: 3}, {Tag: "#camp", Count: 1}}, resp)
}

func TestListTags_NoQuery(t *testing.T) {
	tags := &mockTagServicer{
		suggestions: func(_ context.Context, _ uuid.UUID, prefix string, limit int) ([]domain.TagCount, error) {
			assert.Empty(t, prefix)
			assert.Zero(t, limit)
			return []domain.TagCount{}, nil
		},
	}
	h := newHTTPHandler(handler.Services{Tags: tags})

	rec := do(t, h, http.MethodGet, "/api/tags", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
