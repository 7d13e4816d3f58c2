package app

import (
	"log/slog"

	"github.com/alanyoungcy/ctexplorer/internal/config"
	"github.com/alanyoungcy/ctexplorer/internal/preview"
	"github.com/alanyoungcy/ctexplorer/internal/service"
)

// Dependencies bundles everything the commands need. It is constructed by
// Wire.
type Dependencies struct {
	Tokens    *service.TokenRegistry
	Positions *service.PositionService
}

// Wire constructs the services from the given configuration.
func Wire(cfg *config.Config, logger *slog.Logger) *Dependencies {
	tokens := service.NewTokenRegistry(cfg.DomainTokens())
	positions := service.NewPositionService(tokens, service.PositionServiceConfig{
		Formatter: preview.Formatter{
			ShortIDHead: cfg.Display.ShortIDHead,
			ShortIDTail: cfg.Display.ShortIDTail,
		},
		PayoutScale:      cfg.Redeem.PayoutScale,
		SplitConcurrency: cfg.Split.Concurrency,
	}, logger)

	logger.Debug("wire: dependencies ready",
		slog.Int("tokens", tokens.Len()),
	)

	return &Dependencies{
		Tokens:    tokens,
		Positions: positions,
	}
}
