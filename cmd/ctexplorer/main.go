// Command ctexplorer derives Conditional Tokens identifiers and previews
// split, merge and redeem operations. It loads configuration, validates it,
// and runs a single command, printing the result as JSON on stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alanyoungcy/ctexplorer/internal/app"
	"github.com/alanyoungcy/ctexplorer/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (defaults only when empty)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: ctexplorer [-config file] <command> [flags]\n\ncommands: %s\n",
			strings.Join(app.Commands(), ", "))
		flag.PrintDefaults()
	}
	flag.Parse()

	// Logs go to stderr; stdout carries command results.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg, logger, os.Stdin, os.Stdout)
	if err := application.Run(ctx, flag.Args()); err != nil {
		logger.Error("command failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
