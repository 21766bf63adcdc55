package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/partitura/internal"
	"github.com/starford/partitura/internal/midi"
	pkgconfig "github.com/starford/partitura/pkg/config"
)

// loadConfig reads the config file over the defaults. A missing file is only
// an error when the path was given explicitly.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	path := cmd.String("config")
	found, err := pkgconfig.LoadOptional(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found && cmd.IsSet("config") {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.ServeMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

func main() {
	defaults := midi.DefaultOptions()

	cmd := &cli.Command{
		Name:   "partitura",
		Usage:  "Local-first MusicXML score library with search, measure views and MIDI export",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, SSE stream and library watcher",
				Action: serve,
			},
			{
				Name:      "import",
				Usage:     "Import a MusicXML file and print its summary and diagnostics as JSON",
				ArgsUsage: "<file>",
				Action:    importFile,
			},
			{
				Name:      "midi",
				Usage:     "Render a MusicXML file as a Standard MIDI File",
				ArgsUsage: "<file>",
				Action:    renderMIDI,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (default: input name with .mid)",
					},
					&cli.IntFlag{
						Name:  "ticks",
						Usage: "Ticks per quarter note",
						Value: int64(defaults.TicksPerQuarter),
					},
					&cli.FloatFlag{
						Name:  "tempo",
						Usage: "Tempo in quarter notes per minute when the score has no metronome mark",
						Value: defaults.Tempo,
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
