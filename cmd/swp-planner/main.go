// cmd/swp-planner/main.go
//
// This is the entry point for the SWP planner.
//
// Commands:
//   swp-planner [tui]                          interactive estimate form
//   swp-planner estimate --scenario acme.yaml  headless estimate
//   swp-planner serve --addr :8080             JSON estimate endpoint
//   swp-planner init                           write .swp/config.yaml

package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/kingrea/swp-planner/internal/calculator"
	"github.com/kingrea/swp-planner/internal/config"
	"github.com/kingrea/swp-planner/internal/logbook"
	"github.com/kingrea/swp-planner/internal/logging"
	"github.com/kingrea/swp-planner/internal/server"
	"github.com/kingrea/swp-planner/internal/summary"
	"github.com/kingrea/swp-planner/internal/tui"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "swp-planner",
		Usage:   "Estimate cost, timeline and staffing for an SWP implementation",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"SWP_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "project-dir",
				Usage:   "Directory holding .swp/ (defaults to the working directory)",
				EnvVars: []string{"SWP_PROJECT_DIR"},
			},
		},
		Commands: []*cli.Command{
			tuiCommand(),
			estimateCommand(),
			serveCommand(),
			initCommand(),
		},
		Action: runTUI,
	}
}

// =============================================================================
// TUI COMMAND
// =============================================================================

func tuiCommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Open the interactive estimate form (default)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "scenario",
				Aliases: []string{"s"},
				Usage:   "Scenario file to start from",
			},
		},
		Action: runTUI,
	}
}

func runTUI(c *cli.Context) error {
	dir, err := projectDir(c)
	if err != nil {
		return err
	}
	if err := config.InitProjectDir(dir); err != nil {
		return fmt.Errorf("initializing %s: %w", config.ProjectDirName, err)
	}
	cfg, err := config.NewConfig(dir)
	if err != nil {
		return err
	}
	lb, err := logbook.New(cfg.LogPath())
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}

	session := calculator.NewSession(cfg.SessionOptions()...)
	if name := c.String("scenario"); name != "" {
		sc, err := cfg.LoadScenario(name)
		if err != nil {
			return err
		}
		session.Apply(sc)
		lb.Info("Scenario loaded · %s", name)
	}

	p := tea.NewProgram(
		tui.NewApp(cfg, tui.WithSession(session), tui.WithLogbook(lb)),
		tea.WithAltScreen(),
	)
	_, err = p.Run()
	return err
}

// =============================================================================
// ESTIMATE COMMAND
// =============================================================================

func estimateCommand() *cli.Command {
	return &cli.Command{
		Name:  "estimate",
		Usage: "Estimate a scenario file (.yaml, .yml, .toml or .json)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "scenario",
				Aliases:  []string{"s"},
				Usage:    "Path to the scenario file",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format (text, json)",
			},
			&cli.BoolFlag{
				Name:  "copy",
				Usage: "Also copy the text summary to the clipboard",
			},
		},
		Action: runEstimate,
	}
}

func runEstimate(c *cli.Context) error {
	log, err := newLogger(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	sc, err := cfg.LoadScenario(c.String("scenario"))
	if err != nil {
		return err
	}
	snap := calculator.Estimate(sc)
	text := summary.Text(snap.Results, snap.Assumptions.Currency, snap.Inputs.ClientName)
	log.Debug().
		Str("scenario", c.String("scenario")).
		Int64("total_cost", snap.Results.TotalCost).
		Int("weeks", snap.Results.TotalWeeks).
		Msg("estimate computed")

	if err := writeEstimate(c.App.Writer, c.String("format"), snap, text); err != nil {
		return err
	}
	if c.Bool("copy") {
		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("copying summary: %w", err)
		}
		log.Info().Msg("summary copied to clipboard")
	}
	return nil
}

func writeEstimate(w io.Writer, format string, snap calculator.Snapshot, text string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		_, err := fmt.Fprintln(w, text)
		return err
	case "json":
		data, err := json.MarshalIndent(server.EstimateResponse{Snapshot: snap, Summary: text}, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding estimate: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}
}

// =============================================================================
// SERVE COMMAND
// =============================================================================

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve POST /estimate over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   ":8080",
				Usage:   "Listen address",
				EnvVars: []string{"SWP_ADDR"},
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	log, err := newLogger(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.Serve(ctx, c.String("addr"), server.NewHandler(cfg.BaseScenario(), log)); err != nil {
		return fmt.Errorf("serving: %w", err)
	}
	log.Info().Msg("estimate server stopped")
	return nil
}

// =============================================================================
// INIT COMMAND
// =============================================================================

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create .swp/config.yaml with the default rate card",
		Action: func(c *cli.Context) error {
			dir, err := projectDir(c)
			if err != nil {
				return err
			}
			if err := config.InitProjectDir(dir); err != nil {
				return fmt.Errorf("initializing %s: %w", config.ProjectDirName, err)
			}
			cfg, err := config.NewConfig(dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Wrote %s\n", cfg.ProjectConfigPath())
			return nil
		},
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func projectDir(c *cli.Context) (string, error) {
	dir := c.String("project-dir")
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting working directory: %w", err)
		}
		return cwd, nil
	}
	return filepath.Abs(dir)
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	dir, err := projectDir(c)
	if err != nil {
		return nil, err
	}
	return config.NewConfig(dir)
}

func newLogger(c *cli.Context) (zerolog.Logger, error) {
	log, err := logging.New(c.String("log-level"), c.App.ErrWriter)
	if err != nil {
		return zerolog.Nop(), err
	}
	return log, nil
}
