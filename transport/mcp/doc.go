// Package mcp exposes the plate push game to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call becomes a request to the REST
// API, and the JSON reply is rendered as compact text an agent can read.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state, move, bulk_move, reset_game, move_history
//   - list_configs, game_instructions, describe_cell
//
// The server binary mounts the MCP server on /mcp over HTTP, or runs it over
// stdio with an internal HTTP API when none is reachable.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
