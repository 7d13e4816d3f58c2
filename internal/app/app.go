// Package app provides the top-level command dispatch for ctexplorer. It
// wires the services from configuration and runs one command per invocation,
// writing its JSON result to the configured output.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/alanyoungcy/ctexplorer/internal/config"
)

// App is the root application object. It owns the configuration, logger, and
// the wired dependencies.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	deps   *Dependencies
	in     io.Reader
	out    io.Writer
}

// New creates a new App from the given configuration and logger. Commands
// reading "-" as input read from in; results are written to out.
func New(cfg *config.Config, logger *slog.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
		deps:   Wire(cfg, logger),
		in:     in,
		out:    out,
	}
}

// command runs one subcommand with its own flag arguments.
type command func(a *App, ctx context.Context, args []string) (any, error)

var commands = map[string]command{
	"condition":  (*App).conditionCmd,
	"collection": (*App).collectionCmd,
	"position":   (*App).positionCmd,
	"classify":   (*App).classifyCmd,
	"split":      (*App).splitCmd,
	"merge":      (*App).mergeCmd,
	"redeem":     (*App).redeemCmd,
}

// Commands lists the available command names in sorted order.
func Commands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run dispatches args[0] as a command with the remaining arguments as its
// flags, and writes the result as indented JSON.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("app: missing command (one of: %s)", strings.Join(Commands(), ", "))
	}
	name := strings.ToLower(args[0])
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("app: unknown command %q (one of: %s)", args[0], strings.Join(Commands(), ", "))
	}

	runID := uuid.New().String()
	logger := a.logger.With(slog.String("run_id", runID), slog.String("command", name))
	logger.DebugContext(ctx, "running command")

	result, err := cmd(a, ctx, args[1:])
	if err != nil {
		logger.DebugContext(ctx, "command failed", slog.String("error", err.Error()))
		return fmt.Errorf("app: %s: %w", name, err)
	}

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("app: %s: write result: %w", name, err)
	}
	logger.DebugContext(ctx, "command finished")
	return nil
}
