package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/cep-lookup/internal/history"
	"github.com/i474232898/cep-lookup/internal/lookup"
	"github.com/i474232898/cep-lookup/internal/store"
)

type stubAddresses struct {
	err   error
	calls []string
}

func (s *stubAddresses) Resolve(_ context.Context, code string) (lookup.AddressRecord, error) {
	s.calls = append(s.calls, code)
	if s.err != nil {
		return lookup.AddressRecord{}, s.err
	}
	if code == "00000000" {
		return lookup.AddressRecord{}, lookup.ErrNotFound
	}
	return lookup.AddressRecord{PostalCode: code, City: "São Paulo", State: "SP"}, nil
}

type testEnv struct {
	app   *fiber.App
	kv    *store.MemoryStore
	addrs *stubAddresses
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	kv := store.NewMemoryStore()
	hist := history.NewStore(kv, "")
	addrs := &stubAddresses{}
	session := lookup.NewSession(hist, addrs, nil, nil)
	require.NoError(t, session.Mount(context.Background()))

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, session, hist)
	return &testEnv{app: app, kv: kv, addrs: addrs}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestSearch_ValidatesInput(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{`{"cep": ""}`, `{"cep": "123"}`, `{"cep": "abcdefgh"}`, `{"cep": "013100001"}`} {
		status, out := env.do(t, http.MethodPost, "/api/v1/search", body)
		assert.Equal(t, http.StatusBadRequest, status, body)
		assert.Equal(t, true, out["error"])
	}
	assert.Empty(t, env.addrs.calls, "invalid input never reaches the lookup")

	status, _ := env.do(t, http.MethodPost, "/api/v1/search/history/12ab", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSearch_NormalizesAndRecordsHistory(t *testing.T) {
	env := newTestEnv(t)

	status, out := env.do(t, http.MethodPost, "/api/v1/search", `{"cep": "01310-000"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"01310000"}, out["history"])
	assert.Equal(t, "São Paulo", out["address"].(map[string]any)["city"])
	assert.Equal(t, []string{"01310000"}, env.addrs.calls)

	status, out = env.do(t, http.MethodGet, "/api/v1/search", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"01310000"}, out["history"])
}

func TestSearch_ErrorMapping(t *testing.T) {
	env := newTestEnv(t)

	status, out := env.do(t, http.MethodPost, "/api/v1/search", `{"cep": "00000000"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "postal code not found", out["message"])

	env.addrs.err = errors.Join(lookup.ErrLookupFailed, errors.New("dial tcp"))
	status, out = env.do(t, http.MethodPost, "/api/v1/search", `{"cep": "01310000"}`)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "failed to look up postal code", out["message"])

	_, out = env.do(t, http.MethodGet, "/api/v1/history", "")
	assert.Equal(t, []any{}, out["history"])
}

func TestHistorySurface_ClearIsSeenByOtherSurfaceOnReload(t *testing.T) {
	env := newTestEnv(t)

	_, _ = env.do(t, http.MethodPost, "/api/v1/search", `{"cep": "01310000"}`)
	_, _ = env.do(t, http.MethodPost, "/api/v1/search", `{"cep": "20040002"}`)

	status, out := env.do(t, http.MethodGet, "/api/v1/history", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"01310000", "20040002"}, out["history"])

	status, out = env.do(t, http.MethodDelete, "/api/v1/history", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, out["history"])

	_, out = env.do(t, http.MethodGet, "/api/v1/search", "")
	assert.Equal(t, []any{"01310000", "20040002"}, out["history"], "search surface keeps its copy")

	_, out = env.do(t, http.MethodPost, "/api/v1/search/reload", "")
	assert.Equal(t, []any{}, out["history"])
}

func TestSearchSurface_ReplayAndClear(t *testing.T) {
	env := newTestEnv(t)

	_, _ = env.do(t, http.MethodPost, "/api/v1/search", `{"cep": "01310000"}`)
	status, out := env.do(t, http.MethodPost, "/api/v1/search/history/01310000", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"01310000"}, out["history"])
	assert.Len(t, env.addrs.calls, 2)

	status, out = env.do(t, http.MethodDelete, "/api/v1/search/history", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, out["history"])

	_, ok, err := env.kv.Get(context.Background(), history.DefaultKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHistorySurface_CorruptValue(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.kv.Set(context.Background(), history.DefaultKey, "oops"))

	status, out := env.do(t, http.MethodGet, "/api/v1/history", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, out["history"])
	assert.NotEmpty(t, out["diagnostic"])
}
