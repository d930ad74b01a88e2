package removemodel

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"ifc-api/internal/common/errors"
	"ifc-api/internal/common/logger"
	"ifc-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mocks
// ==========================

type MockService struct {
	mock.Mock
}

func (m *MockService) Execute(ctx context.Context, input *Input) (*Output, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Output), args.Error(1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Remove(id string) error {
	return m.Called(id).Error(0)
}

// ==========================
// Helpers
// ==========================

func createTestHandler(t *testing.T, s ModelRemover) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{Store: s, Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)
	return h
}

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.Handle(Route, h)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, path, nil))
	return rec
}

// ==========================
// Tests
// ==========================

func TestHandler_NewHandler(t *testing.T) {
	h, err := NewHandler(HandlerOptions{})
	assert.Nil(t, h)
	assert.ErrorContains(t, err, "store is required")

	h, err = NewHandler(HandlerOptions{Store: store.New(nil)})
	require.NoError(t, err)
	assert.NotNil(t, h.logger)
	assert.NotNil(t, h.service)
	assert.Equal(t, Route, h.GetRoute())
}

func TestHandler_RemovesModelAndBackingFile(t *testing.T) {
	s := store.New(nil)
	backing := filepath.Join(t.TempDir(), "model.ifc")
	require.NoError(t, os.WriteFile(backing, []byte("ISO-10303-21;"), 0o600))
	id := s.Create(nil, "model.ifc", backing)

	h := createTestHandler(t, s)
	rec := serve(h, "/remove-model/"+id)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Model removed successfully"}`, rec.Body.String())
	assert.Equal(t, 0, s.Len())
	assert.NoFileExists(t, backing)

	rec = serve(h, "/remove-model/"+id)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Model not found","code":"MODEL_NOT_FOUND"}`, rec.Body.String())
}

func TestHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		removeErr  error
		wantStatus int
		wantCode   errors.ErrorCode
		wantDetail string
	}{
		{
			name:       "absent model",
			removeErr:  fmt.Errorf("%w: m-1", store.ErrModelNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   errors.ErrCodeModelNotFound,
			wantDetail: "Model not found",
		},
		{
			name:       "backing file not removable",
			removeErr:  &fs.PathError{Op: "remove", Path: "/scratch/ifc-1.ifc", Err: fs.ErrPermission},
			wantStatus: http.StatusInternalServerError,
			wantCode:   errors.ErrCodeModelRemoveFailed,
			wantDetail: "Error removing model: remove /scratch/ifc-1.ifc: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := &MockStore{}
			ms.On("Remove", "m-1").Return(tt.removeErr)

			rec := serve(createTestHandler(t, ms), "/remove-model/m-1")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"detail":%q,"code":%q}`, tt.wantDetail, tt.wantCode), rec.Body.String())
			ms.AssertExpectations(t)
		})
	}
}

func TestHandler_DelegatesToService(t *testing.T) {
	h := createTestHandler(t, store.New(nil))
	ms := &MockService{}
	ms.On("Execute", mock.Anything, &Input{ModelID: "abc"}).Return(&Output{Message: "Model removed successfully"}, nil)
	h.service = ms

	rec := serve(h, "/remove-model/abc")

	assert.Equal(t, http.StatusOK, rec.Code)
	ms.AssertExpectations(t)
}
