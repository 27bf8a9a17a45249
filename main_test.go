package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/platepush/game/config"
	"github.com/wricardo/mcp-training/platepush/game/session"
	"github.com/wricardo/mcp-training/platepush/settings"
	"github.com/wricardo/mcp-training/platepush/transport/mcp"
)

const testLevel = `{
  "name": "Easy Start",
  "description": "One crate, one plate",
  "layout": ["######", "#@$-.#", "######"],
  "messages": {"welcome": "Push right.", "solved": "Done."}
}`

// testSettings returns settings rooted in a temp dir holding one level
func testSettings(t *testing.T) *settings.Settings {
	t.Helper()
	dir := t.TempDir()
	configDir := filepath.Join(dir, "configs")
	if err := os.Mkdir(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "easy.json"), []byte(testLevel), 0644); err != nil {
		t.Fatal(err)
	}

	return &settings.Settings{
		Host:            "localhost",
		Port:            8080,
		ConfigDir:       configDir,
		SessionStore:    settings.StoreFile,
		SessionsDir:     filepath.Join(dir, "sessions"),
		SessionDB:       filepath.Join(dir, "sessions.db"),
		SessionTTL:      time.Hour,
		CleanupInterval: time.Hour,
		SyncInterval:    time.Hour,
	}
}

func TestConstants(t *testing.T) {
	if Version != "1.0.0" {
		t.Errorf("Expected version 1.0.0, got %s", Version)
	}
	if AppName != "Plate Push Server" {
		t.Errorf("Expected app name Plate Push Server, got %s", AppName)
	}
}

func TestParseFlags(t *testing.T) {
	s := &settings.Settings{Host: "0.0.0.0", Port: 7000, ConfigDir: "levels", NgrokDomain: "example.ngrok.app"}

	tests := []struct {
		name      string
		args      []string
		wantPort  int
		wantHost  string
		wantMode  string
		wantNgrok bool
	}{
		{name: "settings defaults", args: nil, wantPort: 7000, wantHost: "0.0.0.0", wantMode: "server"},
		{name: "flag overrides", args: []string{"-port", "9090", "-host", "127.0.0.1"}, wantPort: 9090, wantHost: "127.0.0.1", wantMode: "server"},
		{name: "mode argument", args: []string{"-port", "9090", "stdio-mcp"}, wantPort: 9090, wantHost: "0.0.0.0", wantMode: "stdio-mcp"},
		{name: "ngrok", args: []string{"-ngrok"}, wantPort: 7000, wantHost: "0.0.0.0", wantMode: "server", wantNgrok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseFlags(s, tt.args)
			if err != nil {
				t.Fatalf("parseFlags failed: %v", err)
			}
			if opts.port != tt.wantPort || opts.host != tt.wantHost {
				t.Errorf("Expected %s:%d, got %s:%d", tt.wantHost, tt.wantPort, opts.host, opts.port)
			}
			if opts.mode != tt.wantMode {
				t.Errorf("Expected mode %s, got %s", tt.wantMode, opts.mode)
			}
			if opts.ngrokEnabled != tt.wantNgrok {
				t.Errorf("Expected ngrok %v, got %v", tt.wantNgrok, opts.ngrokEnabled)
			}
			if opts.configDir != "levels" || opts.ngrokDomain != "example.ngrok.app" {
				t.Errorf("Settings values not carried into options: %+v", opts)
			}
		})
	}
}

func TestParseFlags_Invalid(t *testing.T) {
	s := &settings.Settings{Port: 8080}

	if _, err := parseFlags(s, []string{"-port", "abc"}); err == nil {
		t.Error("Expected error for non-numeric port")
	}
}

func TestInitializeServices(t *testing.T) {
	for _, store := range []string{settings.StoreFile, settings.StoreSQLite} {
		t.Run(store, func(t *testing.T) {
			cfg := testSettings(t)
			cfg.SessionStore = store

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			gameService, closeStore, err := initializeServices(ctx, cfg)
			if err != nil {
				t.Fatalf("Failed to initialize services: %v", err)
			}
			defer closeStore()

			info, err := gameService.CreateSession(ctx, "")
			if err != nil {
				t.Fatalf("CreateSession failed: %v", err)
			}
			result, err := gameService.Move(ctx, info.ID, "right", false)
			if err != nil {
				t.Fatalf("Move failed: %v", err)
			}
			if !result.Success {
				t.Error("Expected the first push to succeed")
			}
		})
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	cfg := testSettings(t)
	cfg.ConfigDir = "/non/existent/path"

	if _, _, err := initializeServices(context.Background(), cfg); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestPruneOrphans(t *testing.T) {
	cfg := testSettings(t)
	configManager, err := config.NewManager(cfg.ConfigDir)
	if err != nil {
		t.Fatal(err)
	}
	persistence, err := session.NewFilePersistence(cfg.SessionsDir, configManager)
	if err != nil {
		t.Fatal(err)
	}
	manager := session.NewManagerWithPersistence(persistence)

	level, err := configManager.LoadConfig("easy")
	if err != nil {
		t.Fatal(err)
	}
	kept, _ := manager.Create("", level)
	gone, _ := manager.Create("", level)

	if pruned := pruneOrphans(manager, persistence); pruned != 0 {
		t.Errorf("Expected nothing pruned, got %d", pruned)
	}

	if err := persistence.Delete(gone.ID); err != nil {
		t.Fatal(err)
	}
	if pruned := pruneOrphans(manager, persistence); pruned != 1 {
		t.Errorf("Expected 1 pruned, got %d", pruned)
	}
	if !manager.Exists(kept.ID) || manager.Exists(gone.ID) {
		t.Error("Expected only the deleted session to leave memory")
	}

	if pruned := pruneOrphans(manager, nil); pruned != 0 {
		t.Errorf("Expected no pruning without a store, got %d", pruned)
	}
}

func TestProbeAPI(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("Expected /health probe, got %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()

	if !probeAPI(healthy.URL) {
		t.Error("Expected healthy server to be usable")
	}
	if probeAPI(broken.URL) {
		t.Error("Expected 5xx server to be rejected")
	}
	if probeAPI("http://127.0.0.1:1") {
		t.Error("Expected unreachable server to be rejected")
	}
}

func TestMCPHandler(t *testing.T) {
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	router := newRouter(api, mcp.NewClient("http://localhost:8080"))

	t.Run("tools/list", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`
		req := httptest.NewRequest("POST", "/mcp", strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		var resp struct {
			Result struct {
				Tools []struct {
					Name string `json:"name"`
				} `json:"tools"`
			} `json:"result"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Invalid JSON-RPC response: %v", err)
		}
		names := map[string]bool{}
		for _, tool := range resp.Result.Tools {
			names[tool.Name] = true
		}
		for _, want := range []string{"move", "bulk_move", "describe_cell"} {
			if !names[want] {
				t.Errorf("Expected tool %s in list, got %v", want, names)
			}
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/mcp", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", w.Code)
		}
	})

	t.Run("api mounted at root", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/sessions", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusTeapot {
			t.Errorf("Expected request to reach the API handler, got %d", w.Code)
		}
	})
}
