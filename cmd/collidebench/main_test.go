package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akmonengine/narrowphase"
	"github.com/akmonengine/narrowphase/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScene(t *testing.T) {
	a, err := newScene(42, 4)
	require.NoError(t, err)
	b, err := newScene(42, 4)
	require.NoError(t, err)

	pa, pb := a.pairs(50, 0.5), b.pairs(50, 0.5)
	require.Len(t, pa, 50)
	for i := range pa {
		assert.Equal(t, pa[i].A.Transform, pb[i].A.Transform, "pair %d", i)
		assert.Equal(t, pa[i].A.Shape.Type(), pb[i].A.Shape.Type(), "pair %d", i)
		assert.Equal(t, 0.5, pa[i].MaxDistance)
		for _, c := range pa[i].A.Transform.Position {
			assert.LessOrEqual(t, c, 2.0)
			assert.GreaterOrEqual(t, c, -2.0)
		}
	}

	e := narrowphase.Default()
	for i, p := range pa {
		assert.True(t, e.Supports(p.A.Shape.Type(), p.B.Shape.Type()), "pair %d", i)
	}
	results, err := e.DistanceBatch(context.Background(), pa, 3)
	require.NoError(t, err)
	assert.Len(t, results, len(pa))
}

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := narrowphase.DefaultConfig()
	cfg.Metrics = metrics.NewRecorder(reg)
	e, err := narrowphase.New(cfg)
	require.NoError(t, err)

	s, err := newScene(1, 4)
	require.NoError(t, err)
	_, err = e.DistanceBatch(context.Background(), s.pairs(20, 0.5), 2)
	require.NoError(t, err)

	server := httptest.NewServer(newRouter(reg))
	defer server.Close()

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{"/healthz", http.StatusOK, "ok"},
		{"/metrics", http.StatusOK, "narrowphase_queries_total"},
		{"/missing", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(server.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)

			body := new(strings.Builder)
			_, err = body.ReadFrom(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, body.String(), tt.contains)
		})
	}
}

func TestLoadEnv(t *testing.T) {
	t.Run("env file fills unset flags", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bench.env")
		require.NoError(t, os.WriteFile(path, []byte("COLLIDEBENCH_LISTEN=127.0.0.1:9191\nCOLLIDEBENCH_CONFIG=bench.yaml\n"), 0o600))
		// godotenv never overrides variables that are already set
		for _, key := range []string{"COLLIDEBENCH_LISTEN", "COLLIDEBENCH_CONFIG"} {
			t.Setenv(key, "")
			require.NoError(t, os.Unsetenv(key))
		}

		cmd := newRootCommand()
		require.NoError(t, cmd.Flags().Parse([]string{"--config", "flag.yaml"}))
		opts := options{envFile: path, configPath: "flag.yaml"}
		require.NoError(t, loadEnv(cmd, &opts))
		assert.Equal(t, "127.0.0.1:9191", opts.listen)
		assert.Equal(t, "flag.yaml", opts.configPath)
	})

	t.Run("missing env file", func(t *testing.T) {
		opts := options{envFile: filepath.Join(t.TempDir(), "absent.env")}
		assert.NoError(t, loadEnv(newRootCommand(), &opts))
	})
}

func TestRunWithoutServer(t *testing.T) {
	err := run(context.Background(), options{pairs: 30, rounds: 2, workers: 2, seed: 3, spread: 4, maxDistance: 0.5})
	assert.NoError(t, err)
}
