// Package service provides the business logic layer for the plate push game.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration lookup with suggestions for unknown names
//   - Single and bulk move processing with compact traces and events
//   - Paginated move history
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages level configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine and board. Blocked moves
// are reported in results, never as errors; errors are reserved for unknown
// sessions, unknown configs and unparseable directions.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "easy")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "right", false)
package service
