package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/workoutbot/internal/observability"
	"github.com/example/workoutbot/internal/store"
	"github.com/example/workoutbot/pkg/models"
)

type brokenStore struct{ store.Store }

func (brokenStore) Get(context.Context, string) (*models.UserRecord, error) {
	return nil, errors.New("connection refused")
}

func TestHealthz(t *testing.T) {
	st, err := store.OpenFile(filepath.Join(t.TempDir(), "workouts.json"), true)
	require.NoError(t, err)

	router := NewRouter("file", st)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "file", body["backend"])
}

func TestHealthzUnavailable(t *testing.T) {
	router := NewRouter("postgres", brokenStore{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestMetrics(t *testing.T) {
	observability.RecordCommand("telegram", "workouts", nil)

	router := NewRouter("file", brokenStore{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "workoutbot_commands_handled_total"))
}
