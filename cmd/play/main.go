// Command play is a terminal client that drives a level in-process.
//
// Arrow keys, WASD or hjkl move the actor; r resets; q or Esc quits.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/mcp-training/platepush/game/config"
	"github.com/wricardo/mcp-training/platepush/game/engine"
)

var (
	configDir = flag.String("config-dir", "configs", "Directory containing level configurations")
	level     = flag.String("level", "", "Level to play (defaults to the configured default)")
)

// Game couples a terminal screen with one engine
type Game struct {
	screen tcell.Screen
	eng    *engine.GameEngine
	status string
}

// NewGame starts a game on an already initialized screen
func NewGame(screen tcell.Screen, eng *engine.GameEngine) *Game {
	return &Game{
		screen: screen,
		eng:    eng,
		status: eng.GetState().Message,
	}
}

var (
	wallStyle  = tcell.StyleDefault.Foreground(tcell.ColorGray).Background(tcell.ColorGray)
	actorStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	crateStyle = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	plateStyle = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	doneStyle  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	textStyle  = tcell.StyleDefault
)

// cellStyle picks how one layout character is drawn
func cellStyle(c byte) (rune, tcell.Style) {
	switch c {
	case engine.WallChar:
		return '█', wallStyle
	case engine.ActorChar:
		return '@', actorStyle
	case engine.ActorOnPlate:
		return '+', actorStyle.Background(tcell.ColorNavy)
	case engine.CrateChar:
		return '$', crateStyle
	case engine.CrateOnPlate:
		return '*', doneStyle
	case engine.PlateChar:
		return '.', plateStyle
	}
	return ' ', textStyle
}

func (g *Game) drawText(x, y int, text string, style tcell.Style) {
	for _, r := range text {
		g.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (g *Game) draw() {
	g.screen.Clear()
	state := g.eng.GetState()

	for y, row := range state.Grid {
		for x := 0; x < len(row); x++ {
			r, style := cellStyle(row[x])
			g.screen.SetContent(x, y, r, nil, style)
		}
	}

	line := state.Height + 1
	g.drawText(0, line, g.summary(), textStyle)
	if g.status != "" {
		style := textStyle
		if state.Solved {
			style = doneStyle
		}
		g.drawText(0, line+1, g.status, style)
	}
	g.drawText(0, line+3, "arrows/wasd/hjkl move • r reset • q quit", textStyle.Dim(true))

	g.screen.Show()
}

func (g *Game) summary() string {
	state := g.eng.GetState()
	return fmt.Sprintf("%s • Plates: %d/%d • Moves: %d • Pushes: %d",
		state.ConfigName, state.PressedPlates, state.TotalPlates, state.CurrentMovesCount, state.TotalPushes)
}

// keyDirection maps a key press to a move direction
func keyDirection(key tcell.Key, ch rune) string {
	switch key {
	case tcell.KeyUp:
		return "up"
	case tcell.KeyDown:
		return "down"
	case tcell.KeyLeft:
		return "left"
	case tcell.KeyRight:
		return "right"
	case tcell.KeyRune:
		switch ch {
		case 'w', 'k':
			return "up"
		case 's', 'j':
			return "down"
		case 'a', 'h':
			return "left"
		case 'd', 'l':
			return "right"
		}
	}
	return ""
}

// handleKey applies one key press and reports whether to keep running
func (g *Game) handleKey(key tcell.Key, ch rune) bool {
	if key == tcell.KeyEscape || key == tcell.KeyCtrlC || (key == tcell.KeyRune && ch == 'q') {
		return false
	}

	if key == tcell.KeyRune && ch == 'r' {
		g.status = g.eng.Reset().Message
		return true
	}

	dir := keyDirection(key, ch)
	if dir == "" {
		return true
	}

	report, err := g.eng.Move(dir)
	if err != nil {
		g.status = err.Error()
		return true
	}
	g.status = g.eng.GetState().Message
	if report.Solved {
		g.status += " Press r to play again or q to quit."
	}
	return true
}

func (g *Game) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return g.handleKey(ev.Key(), ev.Rune())
	case *tcell.EventResize:
		g.screen.Sync()
	}
	return true
}

func (g *Game) run() {
	g.draw()
	for {
		ev := g.screen.PollEvent()
		if ev == nil {
			return
		}
		if !g.handleInput(ev) {
			return
		}
		g.draw()
	}
}

// loadLevel resolves the level from the config directory, falling back to
// the built-in level when the directory is missing.
func loadLevel(dir, name string) (*engine.GameConfig, error) {
	manager, err := config.NewManager(dir)
	if err != nil {
		log.Printf("Using built-in level: %v", err)
		return engine.DefaultGameConfig(), nil
	}
	if name == "" {
		return manager.GetDefault(), nil
	}
	return manager.LoadConfig(name)
}

func main() {
	flag.Parse()

	cfg, err := loadLevel(*configDir, *level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load level: %v\n", err)
		os.Exit(1)
	}

	eng, err := engine.NewEngine(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid level: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	NewGame(screen, eng).run()
}
