package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/i474232898/cep-lookup/internal/config"
)

func TestNewServer_HealthAndSearch(t *testing.T) {
	viacep := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"cep":"01310-000","logradouro":"Avenida Paulista","localidade":"São Paulo","uf":"SP"}`))
	}))
	defer viacep.Close()

	cfg := config.Defaults()
	cfg.StorageDriver = "memory"
	cfg.AddressAPIBaseURL = viacep.URL
	cfg.WeatherProviders = nil

	ctx := context.Background()
	a, err := newApp(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.session.Mount(ctx))

	srv := newServer(a)

	resp, err := srv.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "cep-lookup", health["service"])

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(`{"cep":"01310-000"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = srv.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = srv.Test(httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"history":["01310000"]}`, string(body))

	resp, err = srv.Test(httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"error":true`)
}

func TestServe_StopsOnCancel(t *testing.T) {
	setupCLI(t)
	t.Setenv("PORT", "0")
	t.Setenv("MAINTENANCE_INTERVAL", "1m")
	t.Cleanup(func() { rootCmd.SetContext(context.Background()) })

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	rootCmd.SetArgs([]string{"serve"})
	errCh := make(chan error, 1)
	go func() { errCh <- rootCmd.ExecuteContext(ctx) }()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("serve did not shut down")
	}
}
