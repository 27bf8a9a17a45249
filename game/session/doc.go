// Package session provides session management for the plate push game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management and expiration
//   - Pluggable persistence (JSON files or SQLite)
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each session owns its own engine instance and tracks creation and last
// access times.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookups are
// case-insensitive.
//
// Persistence:
//
// Boards are never serialized. A persisted session stores the level's config
// ID, the cumulative move history and the moves since the last reset; loading
// builds a fresh board from the level and replays those moves.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", configManager)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//
//	sess, err := manager.Create("", level)
//	if err != nil {
//		log.Fatal(err)
//	}
//	sess, err = manager.Get(sess.ID)
package session
