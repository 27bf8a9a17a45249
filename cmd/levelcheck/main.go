// Command levelcheck inspects level configuration files.
//
//	levelcheck validate [--dir configs] [file.json ...]
//	levelcheck analyze  [--dir configs] [file.json ...]
//	levelcheck render   --dir configs <level> [move ...]
//
// validate exits non-zero when any level is unplayable.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/platepush/game/board"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func dirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "dir",
		Aliases: []string{"d"},
		Value:   "configs",
		Usage:   "directory containing level JSON files",
		Sources: cli.EnvVars("CONFIG_DIR"),
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "levelcheck",
		Usage: "validate, analyze and render plate push levels",
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "check levels for errors and likely design mistakes",
				ArgsUsage: "[file.json ...]",
				Flags:     []cli.Flag{dirFlag()},
				Action:    runValidate,
			},
			{
				Name:      "analyze",
				Usage:     "print heuristics about each level",
				ArgsUsage: "[file.json ...]",
				Flags:     []cli.Flag{dirFlag()},
				Action:    runAnalyze,
			},
			{
				Name:      "render",
				Usage:     "play a move sequence and print the board after each move",
				ArgsUsage: "<level> [move ...]",
				Flags:     []cli.Flag{dirFlag()},
				Action:    runRender,
			},
		},
	}
}

// levelFiles returns the files named on the command line, or every level in --dir
func levelFiles(cmd *cli.Command) ([]string, error) {
	if cmd.Args().Len() > 0 {
		return cmd.Args().Slice(), nil
	}
	files, err := filepath.Glob(filepath.Join(cmd.String("dir"), "*.json"))
	if err != nil {
		return nil, fmt.Errorf("finding config files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no level files in %s", cmd.String("dir"))
	}
	return files, nil
}

func output(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	files, err := levelFiles(cmd)
	if err != nil {
		return err
	}
	w := output(cmd)

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)
		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, e := range result.Errors {
				fmt.Fprintln(w, "  ❌ "+e)
			}
		}
		for _, warning := range result.Warnings {
			fmt.Fprintln(w, "  ⚠️  "+warning)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if !allValid {
		return cli.Exit("❌ Some configurations have errors", 1)
	}
	fmt.Fprintln(w, "✅ All configurations are valid!")
	return nil
}

func runAnalyze(ctx context.Context, cmd *cli.Command) error {
	files, err := levelFiles(cmd)
	if err != nil {
		return err
	}
	w := output(cmd)

	for _, file := range files {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", filepath.Base(file))
		if err := analyzeConfig(w, file); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
		}
	}
	return nil
}

func runRender(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return cli.Exit("render needs a level name", 2)
	}
	level := cmd.Args().First()
	path := level
	if !strings.HasSuffix(level, ".json") {
		path = filepath.Join(cmd.String("dir"), level+".json")
	}

	moves := cmd.Args().Tail()
	for _, move := range moves {
		if _, err := board.ParseDirection(move); err != nil {
			return cli.Exit(err.Error(), 2)
		}
	}
	return renderMoves(output(cmd), path, moves)
}
