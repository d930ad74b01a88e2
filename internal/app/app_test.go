package app

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"ifc-api/internal/common/config"
	"ifc-api/internal/common/logger"
	"ifc-api/internal/testutil"
	"ifc-api/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.ShutdownTimeout = 1000
	cfg.Server.MaxUploadBytes = 1 << 20
	cfg.Storage.ScratchDir = t.TempDir()
	cfg.Engine.ParseWorkers = 1
	cfg.Engine.ParseTimeout = 5000
	return cfg
}

func TestNew_RequiresConfig(t *testing.T) {
	a, err := New(Options{})
	assert.Nil(t, a)
	assert.EqualError(t, err, "config is required")
}

func TestNew_RejectsInvalidRegistry(t *testing.T) {
	a, err := New(Options{
		Config:   testConfig(t),
		Registry: &registry.EndpointRegistry{},
		Logger:   logger.NewTestLogger(t),
	})
	assert.Nil(t, a)
	assert.ErrorContains(t, err, "invalid endpoint registry")
}

func TestNew_RegistersEveryRoute(t *testing.T) {
	a, err := New(Options{Config: testConfig(t), Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/models", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodDelete, "/remove-model/missing", http.StatusNotFound},
		{http.MethodPost, "/get-element-by-guid", http.StatusUnprocessableEntity},
		{http.MethodGet, "/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			a.Server.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, bytes.NewReader([]byte(`{}`))))
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestNew_ReadyFailsWhenScratchDirIsAFile(t *testing.T) {
	cfg := testConfig(t)
	file := filepath.Join(cfg.Storage.ScratchDir, "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	cfg.Storage.ScratchDir = file

	a, err := New(Options{Config: cfg, Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	a.Server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "is not a directory")
}

func TestClose_PurgesModels(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(Options{Config: cfg, Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "sample-house.ifc")
	require.NoError(t, err)
	_, err = part.Write([]byte(testutil.SampleIFC))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload-ifc", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	a.Server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, 1, a.Store.Len())

	require.NoError(t, a.Close())
	assert.Zero(t, a.Store.Len())
	entries, err := os.ReadDir(cfg.Storage.ScratchDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
