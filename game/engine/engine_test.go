package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/wricardo/mcp-training/platepush/game/board"
)

func createTestConfig(layout ...string) *GameConfig {
	if len(layout) == 0 {
		layout = []string{
			"#######",
			"#@$-.-#",
			"#######",
		}
	}
	return &GameConfig{
		Name:        "Engine Test Config",
		Description: "Configuration for engine integration tests",
		Layout:      layout,
		Messages: GameMessages{
			Welcome:       "Welcome to engine test!",
			Solved:        "Solved!",
			Moved:         "Moved %s",
			Pushed:        "Pushed %d %s",
			BlockedWall:   "Wall!",
			BlockedEdge:   "Edge!",
			PlatePressed:  "Pressed %d/%d",
			PlateReleased: "Released",
			AlreadySolved: "Already solved",
		},
	}
}

func mustEngine(t *testing.T, config *GameConfig) *GameEngine {
	t.Helper()
	e, err := NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return e
}

func mustMove(t *testing.T, e *GameEngine, direction string) *MoveReport {
	t.Helper()
	report, err := e.Move(direction)
	if err != nil {
		t.Fatalf("Move(%q) returned error: %v", direction, err)
	}
	return report
}

func TestNewEngine(t *testing.T) {
	config := createTestConfig()
	engine := mustEngine(t, config)

	state := engine.GetState()
	if !reflect.DeepEqual(state.Grid, config.Layout) {
		t.Errorf("Expected grid %v, got %v", config.Layout, state.Grid)
	}
	if state.PlayerPos != (Position{X: 1, Y: 1}) {
		t.Errorf("Expected player at (1,1), got %v", state.PlayerPos)
	}
	if state.Width != 7 || state.Height != 3 {
		t.Errorf("Expected 7x3 board, got %dx%d", state.Width, state.Height)
	}
	if engine.GetTotalPlates() != 1 || engine.GetPressedPlates() != 0 {
		t.Errorf("Expected 0/1 plates pressed, got %d/%d", engine.GetPressedPlates(), engine.GetTotalPlates())
	}
	if engine.IsGameOver() || engine.IsSolved() {
		t.Error("Expected a fresh game to be in progress")
	}
	if state.Message != config.Messages.Welcome {
		t.Errorf("Expected welcome message, got %q", state.Message)
	}
	if state.ConfigName != config.Name {
		t.Errorf("Expected config name %q, got %q", config.Name, state.ConfigName)
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := createTestConfig()
	config.Name = ""

	if _, err := NewEngine(config); err == nil {
		t.Error("Expected error for invalid config")
	}
	if _, err := NewEngine(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestNewEngineWithDefaults(t *testing.T) {
	engine := NewEngineWithDefaults()

	state := engine.GetState()
	if !reflect.DeepEqual(state.Grid, DefaultGameConfig().Layout) {
		t.Errorf("Expected default layout, got %v", state.Grid)
	}
	if state.TotalPlates != 2 {
		t.Errorf("Expected 2 plates, got %d", state.TotalPlates)
	}
}

func TestEngine_PushAndSolve(t *testing.T) {
	engine := mustEngine(t, createTestConfig())

	report := mustMove(t, engine, "right")
	if !report.Success {
		t.Fatal("Expected first push to succeed")
	}
	if report.To != (Position{X: 2, Y: 1}) {
		t.Errorf("Expected actor at (2,1), got %v", report.To)
	}
	want := []PushedPiece{{Kind: Crate, From: Position{X: 2, Y: 1}, To: Position{X: 3, Y: 1}}}
	if !reflect.DeepEqual(report.Pushed, want) {
		t.Errorf("Expected pushed %v, got %v", want, report.Pushed)
	}
	if engine.GetState().Message != "Pushed 1 right" {
		t.Errorf("Unexpected message %q", engine.GetState().Message)
	}
	if engine.GetState().Grid[1] != "#-@$.-#" {
		t.Errorf("Unexpected row %q", engine.GetState().Grid[1])
	}

	report = mustMove(t, engine, "right")
	if !report.Solved || !engine.IsSolved() || !engine.IsGameOver() {
		t.Fatal("Expected level to be solved once the crate covers the plate")
	}
	if len(report.PlateChanges) != 1 || !report.PlateChanges[0].Pressed {
		t.Errorf("Expected one pressed plate change, got %v", report.PlateChanges)
	}
	if engine.GetState().Grid[1] != "#--@*-#" {
		t.Errorf("Unexpected row %q", engine.GetState().Grid[1])
	}
	if engine.GetState().Message != "Solved!" {
		t.Errorf("Expected solved message, got %q", engine.GetState().Message)
	}
	if engine.GetState().TotalPushes != 2 {
		t.Errorf("Expected 2 pushes, got %d", engine.GetState().TotalPushes)
	}
}

func TestEngine_AlreadySolved(t *testing.T) {
	engine := mustEngine(t, createTestConfig())
	mustMove(t, engine, "right")
	mustMove(t, engine, "right")

	before := append([]string(nil), engine.GetState().Grid...)
	report := mustMove(t, engine, "left")
	if report.Success {
		t.Error("Expected moves to be refused after the level is solved")
	}
	if !report.Solved {
		t.Error("Expected report to carry the solved flag")
	}
	if !reflect.DeepEqual(before, engine.GetState().Grid) {
		t.Error("Board changed after the level was solved")
	}
	if engine.GetState().Message != "Already solved" {
		t.Errorf("Unexpected message %q", engine.GetState().Message)
	}
	if engine.GetState().TotalMoves != 2 {
		t.Errorf("Refused moves must not be recorded, got %d moves", engine.GetState().TotalMoves)
	}
}

func TestEngine_Blocked(t *testing.T) {
	tests := []struct {
		name      string
		layout    []string
		moves     []string
		rejection string
		blockedAt Position
		message   string
	}{
		{
			name:      "wall next to actor",
			layout:    []string{"#######", "#@$-.-#", "#######"},
			moves:     []string{"left"},
			rejection: "immovable",
			blockedAt: Position{X: 0, Y: 1},
			message:   "Wall!",
		},
		{
			name:      "crate against wall",
			layout:    []string{"#####", "#.@$#", "#####"},
			moves:     []string{"right"},
			rejection: "immovable",
			blockedAt: Position{X: 4, Y: 1},
			message:   "Wall!",
		},
		{
			name:      "actor at edge",
			layout:    []string{"@$-."},
			moves:     []string{"up"},
			rejection: "edge",
			blockedAt: Position{X: 0, Y: -1},
			message:   "Edge!",
		},
		{
			name:      "chain reaches edge",
			layout:    []string{".-@$$"},
			moves:     []string{"right"},
			rejection: "edge",
			blockedAt: Position{X: 5, Y: 0},
			message:   "Edge!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := mustEngine(t, createTestConfig(tt.layout...))
			before := append([]string(nil), engine.GetState().Grid...)

			var report *MoveReport
			for _, m := range tt.moves {
				report = mustMove(t, engine, m)
			}

			if report.Success {
				t.Fatal("Expected move to be blocked")
			}
			if report.Rejection != tt.rejection {
				t.Errorf("Expected rejection %q, got %q", tt.rejection, report.Rejection)
			}
			if report.BlockedAt == nil || *report.BlockedAt != tt.blockedAt {
				t.Errorf("Expected blocked at %v, got %v", tt.blockedAt, report.BlockedAt)
			}
			if report.From != report.To {
				t.Errorf("Blocked move changed actor position: %v -> %v", report.From, report.To)
			}
			if !reflect.DeepEqual(before, engine.GetState().Grid) {
				t.Errorf("Blocked move changed the grid: %v", engine.GetState().Grid)
			}
			if engine.GetState().Message != tt.message {
				t.Errorf("Expected message %q, got %q", tt.message, engine.GetState().Message)
			}

			last := engine.GetLastMove()
			if last == nil || last.Success {
				t.Error("Expected blocked move to be recorded as a failure")
			}
		})
	}
}

func TestEngine_InvalidDirection(t *testing.T) {
	engine := mustEngine(t, createTestConfig())

	_, err := engine.Move("sideways")
	if !errors.Is(err, board.ErrInvalidDirection) {
		t.Errorf("Expected ErrInvalidDirection, got %v", err)
	}
	if len(engine.GetMoveHistory()) != 0 {
		t.Error("Invalid directions must not be recorded")
	}
}

func TestEngine_DirectionAliases(t *testing.T) {
	engine := mustEngine(t, createTestConfig())

	report := mustMove(t, engine, "E")
	if !report.Success || report.Direction != "right" {
		t.Errorf("Expected alias E to move right, got %+v", report)
	}
	if engine.GetLastMove().Action != "right" {
		t.Errorf("Expected history to record canonical name, got %q", engine.GetLastMove().Action)
	}
}

func TestEngine_CanMove(t *testing.T) {
	engine := mustEngine(t, createTestConfig())

	tests := []struct {
		direction string
		want      bool
	}{
		{"right", true},
		{"left", false},
		{"up", false},
		{"down", false},
		{"diagonal", false},
	}
	for _, tt := range tests {
		if got := engine.CanMove(tt.direction); got != tt.want {
			t.Errorf("CanMove(%q) = %v, want %v", tt.direction, got, tt.want)
		}
	}

	if moves := engine.GetPossibleMoves(); !reflect.DeepEqual(moves, []string{"right"}) {
		t.Errorf("Expected only right to be possible, got %v", moves)
	}
}

func TestEngine_PlatePressedAndReleased(t *testing.T) {
	engine := mustEngine(t, createTestConfig(
		"#####",
		"#-@-#",
		"#-*-#",
		"#---#",
		"#-.-#",
		"#####",
	))
	if engine.GetPressedPlates() != 1 {
		t.Fatalf("Expected starting crate to press its plate, got %d", engine.GetPressedPlates())
	}

	// Pushing the crate off its plate puts the actor on it, so it stays down
	report := mustMove(t, engine, "down")
	if len(report.PlateChanges) != 0 {
		t.Errorf("Expected no plate changes, got %v", report.PlateChanges)
	}
	if engine.GetState().Grid[2] != "#-+-#" {
		t.Errorf("Expected actor on plate, got %q", engine.GetState().Grid[2])
	}

	report = mustMove(t, engine, "left")
	want := []PlateChange{{Position: Position{X: 2, Y: 2}, Pressed: false}}
	if !reflect.DeepEqual(report.PlateChanges, want) {
		t.Errorf("Expected %v, got %v", want, report.PlateChanges)
	}
	if engine.GetState().Message != "Released" {
		t.Errorf("Expected release message, got %q", engine.GetState().Message)
	}
	if engine.GetPressedPlates() != 0 {
		t.Errorf("Expected 0 pressed plates, got %d", engine.GetPressedPlates())
	}
}

func TestEngine_ActorPressesPlate(t *testing.T) {
	engine := mustEngine(t, createTestConfig("#####", "#@-.#", "#####"))

	mustMove(t, engine, "right")
	report := mustMove(t, engine, "right")

	if !report.Solved {
		t.Error("Expected the actor standing on the only plate to solve the level")
	}
	if engine.GetState().Grid[1] != "#--+#" {
		t.Errorf("Expected actor-on-plate glyph, got %q", engine.GetState().Grid[1])
	}
}

func TestEngine_Reset(t *testing.T) {
	config := createTestConfig()
	engine := mustEngine(t, config)

	mustMove(t, engine, "right")
	mustMove(t, engine, "left")

	state := engine.Reset()
	if !reflect.DeepEqual(state.Grid, config.Layout) {
		t.Errorf("Expected reset grid to match layout, got %v", state.Grid)
	}
	if state.TotalMoves != 2 || len(state.MoveHistory) != 2 {
		t.Errorf("Expected cumulative history to survive reset, got %d/%d", state.TotalMoves, len(state.MoveHistory))
	}
	if state.CurrentMovesCount != 0 || len(state.CurrentMoves) != 0 {
		t.Errorf("Expected current moves to be cleared, got %d", state.CurrentMovesCount)
	}
	if state.TotalPushes != 0 {
		t.Errorf("Expected pushes to be cleared, got %d", state.TotalPushes)
	}

	mustMove(t, engine, "right")
	if last := engine.GetLastMove(); last.MoveNumber != 3 {
		t.Errorf("Expected move numbering to continue at 3, got %d", last.MoveNumber)
	}
}

func TestEngine_Restore(t *testing.T) {
	config := DefaultGameConfig()
	original := mustEngine(t, config)

	for _, m := range []string{"up", "up", "left", "down", "down", "up"} {
		mustMove(t, original, m)
	}
	want := original.GetState()

	restored := mustEngine(t, config)
	if err := restored.Restore(want.MoveHistory, want.CurrentMoves); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	got := restored.GetState()
	if !reflect.DeepEqual(got.Grid, want.Grid) {
		t.Errorf("Expected grid %v, got %v", want.Grid, got.Grid)
	}
	if got.PlayerPos != want.PlayerPos {
		t.Errorf("Expected player at %v, got %v", want.PlayerPos, got.PlayerPos)
	}
	if got.TotalMoves != want.TotalMoves || got.CurrentMovesCount != want.CurrentMovesCount {
		t.Errorf("Expected move counts %d/%d, got %d/%d",
			want.TotalMoves, want.CurrentMovesCount, got.TotalMoves, got.CurrentMovesCount)
	}
	if got.TotalPushes != want.TotalPushes {
		t.Errorf("Expected %d pushes, got %d", want.TotalPushes, got.TotalPushes)
	}
}

func TestEngine_Restore_BlockedReplay(t *testing.T) {
	engine := mustEngine(t, createTestConfig())

	current := []MoveHistoryEntry{{Action: "left", Success: true, MoveNumber: 1}}
	if err := engine.Restore(current, current); err == nil {
		t.Error("Expected error when a successful move cannot be replayed")
	}
}

func TestEngine_LocalView(t *testing.T) {
	engine := mustEngine(t, createTestConfig())

	want := []string{"###", "#@$", "###"}
	if got := engine.GetLocalView(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected local view %v, got %v", want, got)
	}

	edge := mustEngine(t, createTestConfig("@$-."))
	want = []string{"###", "#@$", "###"}
	if got := edge.GetLocalView(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected off-board cells as walls %v, got %v", want, got)
	}
}

func TestEngine_LevelMessages(t *testing.T) {
	config := createTestConfig("######", "#+$-.#", "######")
	config.Messages.Pushed = ""
	config.Messages.PlateReleased = "100% released"
	engine := mustEngine(t, config)

	mustMove(t, engine, "right")
	if got := engine.GetState().Message; got != "100% released" {
		t.Errorf("Expected release message verbatim, got %q", got)
	}

	mustMove(t, engine, "left")
	if got := engine.GetState().Message; got != "Pressed 1/2" {
		t.Errorf("Expected formatted press message, got %q", got)
	}

	plainConfig := createTestConfig("#####", "#@-.#", "#####")
	plainConfig.Messages.Moved = "You step."
	plain := mustEngine(t, plainConfig)
	mustMove(t, plain, "right")
	if got := plain.GetState().Message; got != "You step." {
		t.Errorf("Expected verb-less move message verbatim, got %q", got)
	}
}

func TestEngine_CratesDisplaced(t *testing.T) {
	engine := mustEngine(t, createTestConfig())
	actor := engine.actor

	mustMove(t, engine, "right")
	if got := engine.GetState().CratesDisplaced; got != 1 {
		t.Errorf("Expected 1 displaced crate, got %d", got)
	}

	engine.Reset()
	if got := engine.GetState().CratesDisplaced; got != 0 {
		t.Errorf("Expected no displaced crates after reset, got %d", got)
	}
	if actor.Active() || !engine.actor.Active() {
		t.Error("Expected reset to release the old generation and keep the new one live")
	}
}

func TestEngine_InstallFailureKeepsLevel(t *testing.T) {
	engine := mustEngine(t, createTestConfig())
	mustMove(t, engine, "right")
	state, actor := engine.GetState(), engine.actor

	broken, err := BuildLevel(createTestConfig().Layout)
	if err != nil {
		t.Fatal(err)
	}
	broken.Cells[1][0] = broken.Cells[0][0]

	if err := engine.install(broken); !errors.Is(err, board.ErrDuplicateEntity) {
		t.Fatalf("Expected ErrDuplicateEntity, got %v", err)
	}
	if engine.GetState() != state || engine.actor != actor || !actor.Active() {
		t.Fatal("Expected the previous generation to stay live")
	}
	if engine.GetPlayerPosition() != (Position{X: 2, Y: 1}) {
		t.Errorf("Expected actor to stay at (2,1), got %v", engine.GetPlayerPosition())
	}

	report := mustMove(t, engine, "right")
	if !report.Success || !report.Solved {
		t.Errorf("Expected the kept level to remain playable, got %+v", report)
	}
}

func TestEngine_ConfigManagement(t *testing.T) {
	engine := mustEngine(t, createTestConfig())
	mustMove(t, engine, "right")

	next := createTestConfig("#####", "#@-.#", "#####")
	next.Name = "Next"
	if err := engine.SetConfig(next); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	if engine.GetConfig() != next {
		t.Error("Expected new config to be active")
	}
	if engine.GetState().ConfigName != "Next" || engine.GetState().TotalMoves != 0 {
		t.Errorf("Expected fresh state for new config, got %+v", engine.GetState())
	}

	bad := createTestConfig("#####")
	if err := engine.SetConfig(bad); err == nil {
		t.Error("Expected error for invalid config")
	}
	if engine.GetConfig() != next {
		t.Error("Invalid config must not replace the active one")
	}
}

func TestEngine_MoveHistory(t *testing.T) {
	engine := mustEngine(t, createTestConfig())
	if engine.GetLastMove() != nil {
		t.Error("Expected no last move initially")
	}

	mustMove(t, engine, "left")
	mustMove(t, engine, "right")

	history := engine.GetMoveHistory()
	if len(history) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(history))
	}
	if history[0].Success || !history[1].Success {
		t.Errorf("Unexpected success flags: %v, %v", history[0].Success, history[1].Success)
	}
	if history[1].Pushed != 1 {
		t.Errorf("Expected second move to push 1 crate, got %d", history[1].Pushed)
	}
	for i, entry := range history {
		if entry.MoveNumber != i+1 {
			t.Errorf("Entry %d has move number %d", i, entry.MoveNumber)
		}
	}
}

func TestEngine_CellAt(t *testing.T) {
	engine := mustEngine(t, createTestConfig())

	if c, ok := engine.CellAt(2, 1); !ok || c != CrateChar {
		t.Errorf("Expected crate at (2,1), got %q ok=%v", c, ok)
	}
	if _, ok := engine.CellAt(7, 1); ok {
		t.Error("Expected (7,1) to be off the board")
	}
}

func TestFindNearestFreePlate(t *testing.T) {
	engine := NewEngineWithDefaults()

	pos, distance, found := FindNearestFreePlate(engine.GetState())
	if !found {
		t.Fatal("Expected a free plate")
	}
	// Actor at (3,3); plates at (1,4) and (5,4) are equally far, first wins
	if pos != (Position{X: 1, Y: 4}) || distance != 3 {
		t.Errorf("Expected (1,4) at distance 3, got %v at %d", pos, distance)
	}
}
