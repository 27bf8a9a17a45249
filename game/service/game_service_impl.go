package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/platepush/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given display name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	// Fallback: return as-is or "default"
	if configName == "" {
		return "default"
	}
	if configName == engine.DefaultGameConfig().Name {
		return engine.BuiltinConfigID
	}
	return configName
}

// getSession looks a session up and refreshes its access time. Callers hold s.mu.
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// persist saves a session after a state change; failures are logged only
func (s *gameServiceImpl) persist(sessionID, action string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("Warning: Failed to persist session %s after %s: %v", sessionID, action, err)
	}
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID, // Return the config_id, not the display name
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	config := s.configs.GetDefault()
	if configName != "" {
		var err error
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				return nil, s.configNotFound(configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.sessionInfo(session, strings.TrimSuffix(configName, ".json")), nil
}

// configNotFound builds a helpful error listing close matches and all IDs
func (s *gameServiceImpl) configNotFound(configName string) error {
	var hint strings.Builder
	if suggestions := s.configs.Suggest(configName); len(suggestions) > 0 {
		fmt.Fprintf(&hint, " Did you mean: %s?", strings.Join(suggestions, ", "))
	}

	availableConfigs, err := s.configs.ListConfigs()
	if err == nil && len(availableConfigs) > 0 {
		configIDs := make([]string, 0, len(availableConfigs))
		for _, cfg := range availableConfigs {
			configIDs = append(configIDs, cfg.ConfigID)
		}
		fmt.Fprintf(&hint, " Available configs: %v", configIDs)
	} else {
		hint.WriteString(" Use /api/configs to list available configurations")
	}

	return fmt.Errorf("%w: '%s'.%s", ErrConfigNotFound, configName, hint.String())
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return s.sessionInfo(sess, ""), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, ""))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return err
	}
	return nil
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	events := []GameEvent{}

	if reset {
		sess.Engine.Reset()
		events = append(events, newEvent(EventReset, "Game reset to initial state", sess.Engine.GetPlayerPosition()))
	}

	report, err := sess.Engine.Move(direction)
	if err != nil {
		if reset {
			s.persist(sessionID, "reset")
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidMove, err)
	}
	state := sess.Engine.GetState()

	result := &MoveResult{
		Success:   report.Success,
		GameState: state,
		Message:   state.Message,
		Events:    append(events, reportEvents(report)...),
		Report:    report,
	}

	if report.Success {
		step := stepFromReport(1, report, state)
		result.Step = &step
	} else {
		result.AttemptedTo = attemptFromReport(sess.Engine, report)
	}

	s.persist(sessionID, "move")

	return result, nil
}

// BulkMove executes moves in sequence, stopping at the first blocked move,
// the first invalid direction, or once the level is solved
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, newEvent(EventReset, "Game reset to initial state", sess.Engine.GetPlayerPosition()))
	}

	// Capture start snapshot after any reset
	start := sess.Engine.GetState()
	result.StartPos = start.PlayerPos
	startPushes, startPlates := start.TotalPushes, start.PressedPlates

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, move := range moves {
		if sess.Engine.IsGameOver() {
			result.StoppedReason = "level already solved"
			result.StopReasonCode = StopSolved
			result.StoppedOnMove = i + 1
			break
		}

		report, err := sess.Engine.Move(move)
		if err != nil {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d invalid: %v", i+1, err)
			result.StopReasonCode = StopInvalidDirection
			result.StoppedOnMove = i + 1
			break
		}

		if !report.Success {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, report.Direction)
			result.StoppedOnMove = i + 1
			if report.Rejection == "edge" {
				result.StopReasonCode = StopBlockedEdge
			} else {
				result.StopReasonCode = StopBlockedWall
			}
			result.AttemptedTo = attemptFromReport(sess.Engine, report)
			break
		}

		result.MovesExecuted++
		result.Events = append(result.Events, reportEvents(report)...)
		result.Steps = append(result.Steps, stepFromReport(i+1, report, sess.Engine.GetState()))
	}

	end := sess.Engine.GetState()
	result.GameState = end
	result.EndPos = end.PlayerPos
	result.PushesDelta = end.TotalPushes - startPushes
	result.PlatesDelta = end.PressedPlates - startPlates
	result.GameOver = end.GameOver
	result.Solved = end.Solved
	result.Message = end.Message
	if end.Solved && result.StopReasonCode == "" {
		result.StopReasonCode = StopSolved
	}

	// Decision aids
	result.PossibleMoves = sess.Engine.GetPossibleMoves()
	result.LocalView3x3 = end.LocalView3x3

	s.persist(sessionID, "bulk moves")

	return result, nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.Reset()
	s.persist(sessionID, "reset")

	return state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return sess.Engine.GetState(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	config, err := s.configs.LoadConfig(configName)
	if errors.Is(err, ErrConfigNotFound) {
		return nil, s.configNotFound(configName)
	}
	return config, err
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func newEvent(eventType, message string, pos engine.Position) GameEvent {
	return GameEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now(),
		Position:  pos,
	}
}

// reportEvents turns a successful move report into events, in the order the
// board applied them
func reportEvents(report *engine.MoveReport) []GameEvent {
	if !report.Success {
		return nil
	}

	events := []GameEvent{
		newEvent(EventMove, fmt.Sprintf("Moved %s to %s", report.Direction, report.To), report.To),
	}
	for _, p := range report.Pushed {
		events = append(events, newEvent(EventPush,
			fmt.Sprintf("Pushed %s from %s to %s", p.Kind, p.From, p.To), p.To))
	}
	for _, c := range report.PlateChanges {
		if c.Pressed {
			events = append(events, newEvent(EventPlatePressed, fmt.Sprintf("Plate at %s pressed", c.Position), c.Position))
		} else {
			events = append(events, newEvent(EventPlateReleased, fmt.Sprintf("Plate at %s released", c.Position), c.Position))
		}
	}
	if report.Solved {
		events = append(events, newEvent(EventSolved, "All plates pressed!", report.To))
	}
	return events
}

func stepFromReport(idx int, report *engine.MoveReport, state *engine.GameState) StepInfo {
	return StepInfo{
		Idx:           idx,
		Dir:           report.Direction,
		From:          report.From,
		To:            report.To,
		Pushed:        len(report.Pushed),
		PressedPlates: state.PressedPlates,
		Success:       report.Success,
		Solved:        report.Solved,
	}
}

// attemptFromReport describes the blocking cell, or nil when the move was
// refused without reaching the board
func attemptFromReport(eng *engine.GameEngine, report *engine.MoveReport) *AttemptInfo {
	if report.BlockedAt == nil {
		return nil
	}

	at := *report.BlockedAt
	info := &AttemptInfo{X: at.X, Y: at.Y, Reason: report.Rejection, TileType: "edge"}
	if c, ok := eng.CellAt(at.X, at.Y); ok {
		info.TileChar = string(c)
		info.TileType = engine.DescribeChar(c)
	}
	return info
}
