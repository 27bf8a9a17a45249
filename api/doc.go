// Package api provides the HTTP REST API for the plate push game.
//
// Endpoints:
//
// Session Management:
//   - POST   /api/sessions            create a session ({"config_id": "classic"}, body optional)
//   - GET    /api/sessions            list sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/unified    multi-session view (?sessionIds=a,b or ?configName=classic)
//   - GET    /api/sessions/{id}       session info with game state
//   - DELETE /api/sessions/{id}       delete a session
//
// Game Operations:
//   - GET  /api/sessions/{id}/state      current game state
//   - POST /api/sessions/{id}/move       {"direction": "up", "reset": false}
//   - POST /api/sessions/{id}/bulk-move  {"moves": ["up", "left"], "reset": false}
//   - POST /api/sessions/{id}/reset      reload the level; history is kept
//   - GET  /api/sessions/{id}/history    ?page=1&limit=20&order=desc
//
// Configuration:
//   - GET  /api/configs         list levels
//   - GET  /api/configs/{name}  level definition (.json suffix optional)
//   - POST /api/configs         save a level ({"config_id": "...", "name": "...", "layout": [...]})
//
// Other:
//   - GET /health
//   - GET /ws?session={id}  WebSocket live updates, see package websocket
//
// Errors are returned as JSON:
//
//	{"error": "session not found: ab12", "code": 404}
//
// Unknown sessions and levels map to 404, bad directions and invalid levels
// to 400. A blocked move is not an error: it returns 200 with success false
// and attempted_to naming the blocking cell.
//
// Move responses carry a step {idx, dir, from, to, pushed, pressed_plates}
// on success and attempted_to {x, y, tile_char, tile_type, reason} when
// blocked. Bulk moves stop early and say why in stop_reason_code
// (blocked_wall, blocked_edge, invalid_direction, solved). They also return
// per-step traces, the pushes and plates deltas, and decision aids.
package api
