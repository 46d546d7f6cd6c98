package blackbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// findFreePort picks an available TCP port on localhost.
func findFreePort(t *testing.T) (int, func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil { t.Fatalf("listen: %v", err) }
	addr := ln.Addr().String()
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil { t.Fatalf("split: %v", err) }
	cleanup := func(){ _ = ln.Close() }
	var port int
	fmt.Sscanf(portStr, "%d", &port)
	return port, cleanup
}

func projectRootFromThisFile(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok { t.Fatal("runtime.Caller failed") }
	// this file: <root>/tests/blackbox/blackbox_test.go
	bbDir := filepath.Dir(thisFile)
	root := filepath.Dir(filepath.Dir(bbDir))
	return root
}

func buildBinary(t *testing.T) string {
	t.Helper()
	root := projectRootFromThisFile(t)
	outDir := t.TempDir()
	binPath := filepath.Join(outDir, "paperd")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/paperd")
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("go build failed: %v\n%s", err, string(out))
	}
	return binPath
}

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

type serverProc struct {
	cmd  *exec.Cmd
	base string // http base URL, e.g. http://127.0.0.1:18080
}

func startServer(t *testing.T, bin string, modelsDir string, port int) *serverProc {
	t.Helper()
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	cmd := exec.Command(bin, "serve", "--addr", addr, "--backend", "mock", "--log-format", "json")
	cmd.Env = append(os.Environ(), "PAPERD_MODELS_DIR="+modelsDir, "PAPERD_BACKEND_URL=")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	// Wait for readyz (mock backend loads eagerly)
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(base + "/readyz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK { break }
		}
		if time.Now().After(deadline) {
			_ = cmd.Process.Kill()
			t.Fatalf("server did not become ready in time")
		}
		time.Sleep(50 * time.Millisecond)
	}
	sp := &serverProc{cmd: cmd, base: base}
	t.Cleanup(func(){ _ = cmd.Process.Kill() })
	return sp
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil { t.Fatalf("new req: %v", err) }
	resp, err := http.DefaultClient.Do(req)
	if err != nil { t.Fatalf("do: %v", err) }
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func postJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil { t.Fatalf("new req: %v", err) }
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil { t.Fatalf("do: %v", err) }
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func TestBlackbox_Flow(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	// Build server binary
	bin := buildBinary(t)
	modelsDir, models := createTempModelsDir(t, "alpha.gguf", "beta.gguf")
	// Reserve a free port, then release listener before starting the server
	port, release := findFreePort(t)
	release()
	sp := startServer(t, bin, modelsDir, port)

	// /healthz
	resp, body := get(t, sp.base+"/healthz")
	if resp.StatusCode != http.StatusOK { t.Fatalf("/healthz %d %s", resp.StatusCode, string(body)) }

	// /models
	resp, body = get(t, sp.base+"/models")
	if resp.StatusCode != http.StatusOK { t.Fatalf("/models %d %s", resp.StatusCode, string(body)) }
	var ml struct{ Models []struct{ ID string `json:"id"` } `json:"models"` }
	if err := json.Unmarshal(body, &ml); err != nil { t.Fatalf("/models json: %v", err) }
	if len(ml.Models) != len(models) || ml.Models[0].ID != models[0] {
		t.Fatalf("/models unexpected: %+v", ml.Models)
	}

	// /status
	resp, body = get(t, sp.base+"/status")
	if resp.StatusCode != http.StatusOK { t.Fatalf("/status %d %s", resp.StatusCode, string(body)) }
	if !strings.Contains(string(body), `"state":"ready"`) { t.Fatalf("/status not ready: %s", string(body)) }

	// /v1/outline
	resp, body = postJSON(t, sp.base+"/v1/outline", []byte(`{"topic":"Deep Learning in Healthcare","keywords":"medical imaging"}`))
	if resp.StatusCode != http.StatusOK { t.Fatalf("/v1/outline %d %s", resp.StatusCode, string(body)) }
	var tr struct{ ID, Kind, Text string }
	if err := json.Unmarshal(body, &tr); err != nil { t.Fatalf("/v1/outline json: %v", err) }
	if tr.Kind != "outline" || tr.ID == "" || !strings.Contains(tr.Text, "generated for this prompt") {
		t.Fatalf("/v1/outline unexpected: %+v", tr)
	}

	// validation
	resp, body = postJSON(t, sp.base+"/v1/abstract", []byte(`{"topic":"x"}`))
	if resp.StatusCode != http.StatusBadRequest { t.Fatalf("/v1/abstract expected 400, got %d %s", resp.StatusCode, string(body)) }
	if !strings.Contains(string(body), "key_points") { t.Fatalf("missing field not reported: %s", string(body)) }

	// /v1/paper as a text download
	resp, body = postJSON(t, sp.base+"/v1/paper?format=text", []byte(`{"topic":"Robotics","title":"Learning to Grasp"}`))
	if resp.StatusCode != http.StatusOK { t.Fatalf("/v1/paper %d %s", resp.StatusCode, string(body)) }
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "research_paper.txt") {
		t.Fatalf("content-disposition=%q", cd)
	}
	for _, name := range []string{"Introduction", "Literature Review", "Methodology", "Results and Discussion", "Conclusion"} {
		if !strings.Contains(string(body), "## "+name+"\n") { t.Fatalf("paper missing section %s", name) }
	}

	// /metrics
	resp, body = get(t, sp.base+"/metrics")
	if resp.StatusCode != http.StatusOK { t.Fatalf("/metrics %d", resp.StatusCode) }
	if !strings.Contains(string(body), "paperd_http_requests_total") { t.Fatalf("/metrics missing request counter") }
}

func TestBlackbox_PaperCLI(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	bin := buildBinary(t)
	out := filepath.Join(t.TempDir(), "paper.txt")
	cmd := exec.Command(bin, "paper", "--backend", "mock", "--topic", "Robotics", "--out", out)
	cmd.Env = append(os.Environ(), "PAPERD_MODELS_DIR="+t.TempDir())
	if b, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("paper: %v\n%s", err, string(b))
	}
	b, err := os.ReadFile(out)
	if err != nil { t.Fatalf("read output: %v", err) }
	if !strings.HasPrefix(string(b), "\n\n## Introduction\n") { t.Fatalf("unexpected paper: %q", string(b)) }
}
