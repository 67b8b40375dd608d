package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/config"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/logging"
)

// app holds the global flags and what PersistentPreRunE derives from them.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time

	configPath   string
	logLevel     string
	logFormat    string
	logFile      string
	sourceFormat string
	recipeName   string

	cfg     config.Config
	logger  *slog.Logger
	logOut  io.Writer
	logSink *os.File
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{stdin: stdin, stdout: stdout, stderr: stderr, now: time.Now}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coauthors",
		Short: "Coauthor graph renderer, exporter and terminal viewer",
		Long: `coauthors builds a coauthor graph from a publication list and lays it out
with a force-directed simulation.

Sources are JSON, YAML, JSONL or SQLite files holding persons, publications
and the original authors the graph is centered on. Recipes filter the
publications by type, year, venue and link strength; the builtin recipes are
listed by 'coauthors recipes'.

Examples:
  # Render to PNG and SVG at once
  coauthors render pubs.json -o graph.png -o graph.svg

  # Re-render whenever the source changes
  coauthors render pubs.yaml -o graph.png --watch

  # Explore the graph in the terminal
  coauthors view pubs.db --recipe recent`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/coauthors/config.yml)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: text or json (overrides config)")
	flags.StringVar(&a.logFile, "log-file", "", "Append logs to this file instead of stderr")
	flags.StringVarP(&a.sourceFormat, "input-format", "i", "", "Source format: json, yaml, jsonl or sqlite (default from extension)")
	flags.StringVarP(&a.recipeName, "recipe", "r", "", "Filter recipe (default all)")

	cmd.AddCommand(
		a.renderCmd(),
		a.exportCmd(),
		a.reportCmd(),
		a.viewCmd(),
		a.importCmd(),
		a.recipesCmd(),
		a.workerCmd(),
	)
	return cmd
}

// setup loads the config and builds the logger. Flags override the file.
func (a *app) setup() error {
	cfg, err := config.Load(config.ExpandTilde(a.configPath))
	if err != nil {
		return withCode(ExitConfigError, err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}

	var sink io.Writer = a.stderr
	if a.logFile != "" {
		path := config.ExpandTilde(a.logFile)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return withCode(ExitConfigError, fmt.Errorf("creating log dir: %w", err))
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return withCode(ExitConfigError, fmt.Errorf("opening log file: %w", err))
		}
		a.logSink, sink = f, f
	}
	logger, err := logging.New(sink, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		a.close()
		return withCode(ExitConfigError, err)
	}
	a.cfg, a.logger, a.logOut = cfg, logger, sink
	return nil
}

// close releases the log file, if any.
func (a *app) close() error {
	if a.logSink == nil {
		return nil
	}
	err := a.logSink.Close()
	a.logSink = nil
	return err
}
