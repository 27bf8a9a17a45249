package session

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/platepush/game/config"
	"github.com/wricardo/mcp-training/platepush/game/engine"
	"github.com/wricardo/mcp-training/platepush/game/service"
)

// persistenceFactories builds each store against a fresh temp location
func persistenceFactories(t *testing.T, configManager *config.Manager) map[string]SessionPersistence {
	t.Helper()

	fileStore, err := NewFilePersistence(filepath.Join(t.TempDir(), "sessions"), configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	sqliteStore, err := NewSQLitePersistence(filepath.Join(t.TempDir(), "sessions.db"), configManager)
	if err != nil {
		t.Fatalf("Failed to create sqlite persistence: %v", err)
	}
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]SessionPersistence{
		"file":   fileStore,
		"sqlite": sqliteStore,
	}
}

func newConfigManager(t *testing.T) *config.Manager {
	t.Helper()
	configManager, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	return configManager
}

func TestPersistence(t *testing.T) {
	configManager := newConfigManager(t)

	for name, persistence := range persistenceFactories(t, configManager) {
		t.Run(name, func(t *testing.T) {
			manager := NewManager()
			session, err := manager.Create("test1", configManager.GetDefault())
			if err != nil {
				t.Fatalf("Failed to create session: %v", err)
			}

			t.Run("save and load replays moves", func(t *testing.T) {
				for _, dir := range []string{"up", "left", "left", "down", "down"} {
					if _, err := session.Engine.Move(dir); err != nil {
						t.Fatalf("Move failed: %v", err)
					}
				}

				if err := persistence.Save(session); err != nil {
					t.Fatalf("Failed to save session: %v", err)
				}
				if !persistence.Exists("test1") {
					t.Fatal("Session should exist after save")
				}

				loaded, err := persistence.Load("test1")
				if err != nil {
					t.Fatalf("Failed to load session: %v", err)
				}

				want, got := session.Engine.GetState(), loaded.Engine.GetState()
				if !reflect.DeepEqual(got.Grid, want.Grid) {
					t.Errorf("Expected grid %v, got %v", want.Grid, got.Grid)
				}
				if got.PlayerPos != want.PlayerPos {
					t.Errorf("Expected player at %v, got %v", want.PlayerPos, got.PlayerPos)
				}
				if got.TotalMoves != want.TotalMoves || got.CurrentMovesCount != want.CurrentMovesCount {
					t.Errorf("Expected %d/%d moves, got %d/%d", want.TotalMoves, want.CurrentMovesCount, got.TotalMoves, got.CurrentMovesCount)
				}
				if loaded.Config.Name != session.Config.Name {
					t.Errorf("Expected config %q, got %q", session.Config.Name, loaded.Config.Name)
				}
				if !loaded.CreatedAt.Equal(session.CreatedAt) {
					t.Errorf("Expected created at %v, got %v", session.CreatedAt, loaded.CreatedAt)
				}
			})

			t.Run("reset segment survives", func(t *testing.T) {
				session.Engine.Reset()
				session.Engine.Move("up")
				if err := persistence.Save(session); err != nil {
					t.Fatalf("Failed to save session: %v", err)
				}

				loaded, err := persistence.Load("test1")
				if err != nil {
					t.Fatalf("Failed to load session: %v", err)
				}
				got := loaded.Engine.GetState()
				if got.CurrentMovesCount != 1 || got.TotalMoves != 6 {
					t.Errorf("Expected 1 current / 6 total moves, got %d/%d", got.CurrentMovesCount, got.TotalMoves)
				}
				if got.PlayerPos != session.Engine.GetPlayerPosition() {
					t.Errorf("Expected player at %v, got %v", session.Engine.GetPlayerPosition(), got.PlayerPos)
				}
			})

			t.Run("list and delete", func(t *testing.T) {
				other := &service.Session{
					ID:             "test2",
					Engine:         session.Engine,
					Config:         session.Config,
					CreatedAt:      time.Now(),
					LastAccessedAt: time.Now(),
				}
				if err := persistence.Save(other); err != nil {
					t.Fatalf("Failed to save session: %v", err)
				}

				ids, err := persistence.ListAll()
				if err != nil {
					t.Fatalf("ListAll failed: %v", err)
				}
				sort.Strings(ids)
				if !reflect.DeepEqual(ids, []string{"test1", "test2"}) {
					t.Errorf("Expected [test1 test2], got %v", ids)
				}

				if err := persistence.Delete("test2"); err != nil {
					t.Fatalf("Delete failed: %v", err)
				}
				if persistence.Exists("test2") {
					t.Error("Session should not exist after delete")
				}
				if err := persistence.Delete("test2"); !errors.Is(err, ErrSessionNotFound) {
					t.Errorf("Expected ErrSessionNotFound, got %v", err)
				}
			})

			t.Run("error cases", func(t *testing.T) {
				if _, err := persistence.Load("missing"); !errors.Is(err, ErrSessionNotFound) {
					t.Errorf("Expected ErrSessionNotFound, got %v", err)
				}
				if err := persistence.Save(nil); err == nil {
					t.Error("Expected error saving nil session")
				}
			})
		})
	}
}

func TestFilePersistenceFileStructure(t *testing.T) {
	configManager := newConfigManager(t)
	dir := t.TempDir()
	persistence, err := NewFilePersistence(dir, configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	manager := NewManagerWithPersistence(persistence)
	if _, err := manager.Create("file1", configManager.GetDefault()); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "file1.json"))
	if err != nil {
		t.Fatalf("Expected session file: %v", err)
	}
	for _, field := range []string{`"config_name": "classic"`, `"move_history"`, `"current_moves"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("Expected %s in session file:\n%s", field, data)
		}
	}
	if strings.Contains(string(data), `"grid"`) {
		t.Error("Board state must not be persisted")
	}
}

func TestManagerWithPersistence(t *testing.T) {
	configManager := newConfigManager(t)

	for name, persistence := range persistenceFactories(t, configManager) {
		t.Run(name, func(t *testing.T) {
			manager := NewManagerWithPersistence(persistence)

			session, err := manager.Create("auto1", configManager.GetDefault())
			if err != nil {
				t.Fatalf("Failed to create session: %v", err)
			}
			if !persistence.Exists("auto1") {
				t.Fatal("Expected create to auto-save")
			}

			session.Engine.Move("up")
			if err := manager.Save("auto1"); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			// A second manager over the same store sees the session lazily
			fresh := NewManagerWithPersistence(persistence)
			loaded, err := fresh.Get("auto1")
			if err != nil {
				t.Fatalf("Expected session to load from persistence: %v", err)
			}
			if loaded.Engine.GetPlayerPosition() != session.Engine.GetPlayerPosition() {
				t.Errorf("Expected replayed position %v, got %v", session.Engine.GetPlayerPosition(), loaded.Engine.GetPlayerPosition())
			}

			// And eagerly on startup
			eager := NewManagerWithPersistence(persistence)
			if err := eager.LoadPersistedSessions(); err != nil {
				t.Fatalf("LoadPersistedSessions failed: %v", err)
			}
			if eager.Count() != 1 {
				t.Errorf("Expected 1 loaded session, got %d", eager.Count())
			}

			if err := eager.SaveAllSessions(); err != nil {
				t.Errorf("SaveAllSessions failed: %v", err)
			}

			if err := manager.Delete("auto1"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if persistence.Exists("auto1") {
				t.Error("Expected delete to remove the persisted session")
			}
		})
	}
}

func TestManagerWithPersistence_BuiltinLevel(t *testing.T) {
	// No level files, so the default is the built-in level
	configManager, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}

	for name, persistence := range persistenceFactories(t, configManager) {
		t.Run(name, func(t *testing.T) {
			manager := NewManagerWithPersistence(persistence)

			session, err := manager.Create("", configManager.GetDefault())
			if err != nil {
				t.Fatalf("Failed to create session: %v", err)
			}
			if _, err := session.Engine.Move("up"); err != nil {
				t.Fatalf("Move failed: %v", err)
			}
			if err := manager.Save(session.ID); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			fresh := NewManagerWithPersistence(persistence)
			loaded, err := fresh.Get(session.ID)
			if err != nil {
				t.Fatalf("Expected built-in level session to restore: %v", err)
			}
			if loaded.Config.Name != engine.DefaultGameConfig().Name {
				t.Errorf("Expected level %q, got %q", engine.DefaultGameConfig().Name, loaded.Config.Name)
			}
			if loaded.Engine.GetPlayerPosition() != session.Engine.GetPlayerPosition() {
				t.Errorf("Expected replayed position %v, got %v", session.Engine.GetPlayerPosition(), loaded.Engine.GetPlayerPosition())
			}

			eager := NewManagerWithPersistence(persistence)
			if err := eager.LoadPersistedSessions(); err != nil {
				t.Fatalf("LoadPersistedSessions failed: %v", err)
			}
			if eager.Count() != 1 {
				t.Errorf("Expected 1 loaded session, got %d", eager.Count())
			}
		})
	}
}
