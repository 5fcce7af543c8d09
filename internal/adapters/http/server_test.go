package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/crossflow/internal/cache"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type translatorFunc func(ctx context.Context, definition []byte, config map[string]string) ([]byte, error)

func (f translatorFunc) Translate(ctx context.Context, definition []byte, config map[string]string) ([]byte, error) {
	return f(ctx, definition, config)
}

func TestGetHealth(t *testing.T) {
	s := NewServer(nil)
	handler := s.Handler()

	req, _ := http.NewRequest("GET", "/healthz", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "ok", resp["status"])
}

func TestGetInfo(t *testing.T) {
	s := NewServer(nil, WithVersion("1.2.3"))
	handler := s.Handler()

	req, _ := http.NewRequest("GET", "/info", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "crossflow-http", resp["app"])
	assert.Equal(t, "1.2.3", resp["version"])
}

func TestPostConvert(t *testing.T) {
	translator := translatorFunc(func(_ context.Context, definition []byte, config map[string]string) ([]byte, error) {
		return []byte("artifact for " + config["user.name"]), nil
	})
	s := NewServer(translator)
	handler := s.Handler()

	body, _ := json.Marshal(ConvertRequest{
		Definition: "<workflow-app/>",
		Properties: map[string]string{"user.name": "demo"},
	})
	req, _ := http.NewRequest("POST", "/convert", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp ConvertResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "artifact for demo", resp.Artifact)
	assert.False(t, resp.Cached)
}

func TestPostConvert_MissingDefinition(t *testing.T) {
	s := NewServer(nil)
	handler := s.Handler()

	req, _ := http.NewRequest("POST", "/convert", bytes.NewReader([]byte(`{}`)))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPostConvert_TranslationError(t *testing.T) {
	translator := translatorFunc(func(_ context.Context, _ []byte, _ map[string]string) ([]byte, error) {
		return nil, fmt.Errorf("node %q has no transitions", "broken")
	})
	s := NewServer(translator)
	handler := s.Handler()

	body, _ := json.Marshal(ConvertRequest{Definition: "<workflow-app/>"})
	req, _ := http.NewRequest("POST", "/convert", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "broken")
}

func TestPostConvert_CacheHit(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store := cache.NewFromClient(backend.NewClient(&backend.Options{Addr: mr.Addr()}))

	calls := 0
	translator := translatorFunc(func(_ context.Context, _ []byte, _ map[string]string) ([]byte, error) {
		calls++
		return []byte("rendered once"), nil
	})
	s := NewServer(translator, WithCache(store))
	handler := s.Handler()

	post := func() ConvertResponse {
		body, _ := json.Marshal(ConvertRequest{Definition: "<workflow-app/>"})
		req, _ := http.NewRequest("POST", "/convert", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp ConvertResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		return resp
	}

	first := post()
	assert.False(t, first.Cached)

	second := post()
	assert.True(t, second.Cached)
	assert.Equal(t, first.Artifact, second.Artifact)
	assert.Equal(t, 1, calls, "second request must be served from cache")
}
