// Package websocket pushes live board updates to viewers of a session.
//
// A single Hub owns every connection. Clients attach to one session via the
// server's /ws?session=<id> endpoint and receive:
//   - "connected" once, carrying the client's ID
//   - "state_update" with the full GameState after each move or reset
//   - "game_events" with the move, push, plate and solved events of a move
//
// Viewers are read-only: incoming frames only keep the connection alive.
// Each frame holds exactly one JSON Message.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	hub.BroadcastToSession(sessionID, state)
//
// Concurrency:
//
// Client bookkeeping lives on the Run goroutine. Broadcast calls are safe
// from any goroutine and never block; when the queue is full the message is
// dropped, and a client whose buffer is full is disconnected.
package websocket
