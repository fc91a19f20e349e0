package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func writeGlobalConfig(t *testing.T, home, body string) {
	t.Helper()
	dir := filepath.Join(home, ".config", "reelwatch")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPlayPlainReportsOnStop(t *testing.T) {
	isolate(t)

	out, logs, err := executeCommand(rootCmd, "play", "r1", "--kind", "reel", "--duration", "10s", "--for", "600ms", "--plain")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !strings.Contains(out, "Session stopped.") || !strings.Contains(out, "reports: 1") {
		t.Errorf("unexpected output %q", out)
	}
	if !strings.Contains(logs, `"msg":"watch report"`) || !strings.Contains(logs, `"watched_seconds":1`) {
		t.Errorf("expected the final report to be logged, got:\n%s", logs)
	}
}

func TestPlayOverHTTP(t *testing.T) {
	home := isolate(t)

	var mu sync.Mutex
	var paths []string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		paths = append(paths, r.URL.Path)
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"updatedScore": 3}`))
	}))
	defer srv.Close()

	writeGlobalConfig(t, home, `{"transport": "http", "api_base_url": "`+srv.URL+`"}`)

	_, logs, err := executeCommand(rootCmd, "play", "v9", "--for", "600ms", "--plain")
	if err != nil {
		t.Fatalf("play: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(paths) != 1 || paths[0] != "/videos/v9/watch" {
		t.Fatalf("unexpected requests %v", paths)
	}
	if body["watchedSeconds"] != float64(1) {
		t.Errorf("watchedSeconds = %v, want 1", body["watchedSeconds"])
	}
	if id, _ := body["deviceId"].(string); id == "" {
		t.Error("expected a device id in the report")
	}
	if !strings.Contains(logs, "score updated") {
		t.Errorf("expected the returned score to be logged:\n%s", logs)
	}
}

func TestPlayTrackingDisabled(t *testing.T) {
	home := isolate(t)
	writeGlobalConfig(t, home, `{"tracking_enabled": false}`)

	out, _, err := executeCommand(rootCmd, "play", "r1", "--for", "50ms", "--plain")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !strings.Contains(out, "reports: 0") {
		t.Errorf("disabled tracking should not report, got %q", out)
	}
}

func TestPlayRejectsUnknownKind(t *testing.T) {
	isolate(t)

	_, _, err := executeCommand(rootCmd, "play", "x", "--kind", "podcast", "--plain", "--for", "1ms")
	if err == nil || !strings.Contains(err.Error(), "unknown kind") {
		t.Fatalf("expected unknown kind error, got %v", err)
	}
}

func TestPlayPlainNeedsLength(t *testing.T) {
	isolate(t)

	_, _, err := executeCommand(rootCmd, "play", "x", "--plain")
	if err == nil || !strings.Contains(err.Error(), "--for or --duration") {
		t.Fatalf("expected length error, got %v", err)
	}
}

func TestPlayHTTPWithoutURLFails(t *testing.T) {
	home := isolate(t)
	writeGlobalConfig(t, home, `{"transport": "http"}`)

	_, _, err := executeCommand(rootCmd, "play", "x", "--plain", "--for", "1ms")
	if err == nil || !strings.Contains(err.Error(), "api_base_url") {
		t.Fatalf("expected config error, got %v", err)
	}
}
