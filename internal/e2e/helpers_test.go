package e2e

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"paperd/internal/backend"
	"paperd/internal/httpapi"
	"paperd/internal/manager"
	"paperd/internal/paper"
	"paperd/internal/registry"
)

// createTempModelsDir creates a temporary directory populated with empty .gguf files
// and returns the directory path and the list of model IDs (filenames).
func createTempModelsDir(t *testing.T, names ...string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte(""), 0o644); err != nil {
			t.Fatalf("write temp model %s: %v", p, err)
		}
	}
	return dir, names
}

// serverConfig configures the handle behind a test server.
type serverConfig struct {
	Factory       backend.Factory
	MaxQueueDepth int
	MaxWait       time.Duration
	Paper         paper.Options
}

func mockFactory(opts backend.MockOptions) backend.Factory {
	return func() (backend.TextGenerationBackend, error) { return backend.NewMock(opts), nil }
}

// newServerForDir wires registry, handle, assistant and manager behind an
// httptest server. The backend is built lazily on the first request.
func newServerForDir(t *testing.T, modelsDir string, cfg serverConfig) (*httptest.Server, *manager.Manager) {
	t.Helper()
	reg, err := registry.LoadDir(modelsDir)
	if err != nil {
		t.Fatalf("scan models: %v", err)
	}
	if cfg.Factory == nil {
		cfg.Factory = mockFactory(backend.MockOptions{})
	}
	h := backend.NewHandle(backend.HandleConfig{
		Kind:          backend.KindMock,
		Model:         "mock",
		Factory:       cfg.Factory,
		MaxQueueDepth: cfg.MaxQueueDepth,
		MaxWait:       cfg.MaxWait,
		Logger:        zerolog.Nop(),
	})
	mgr, err := manager.New(manager.ManagerConfig{
		Handle:    h,
		Assistant: paper.NewAssistant(h, cfg.Paper),
		Registry:  reg,
		Logger:    zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(srv.Close)
	return srv, mgr
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
