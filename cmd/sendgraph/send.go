package main

import (
	"context"
	"log/slog"

	"github.com/hazz-dev/okgraph/internal/alert"
	"github.com/hazz-dev/okgraph/internal/config"
	"github.com/hazz-dev/okgraph/internal/graph"
)

func executeSend(ctx context.Context, cfg *config.Config, ac alert.Context, transport alert.Transport, logger *slog.Logger) {
	opts := graph.Options{
		BaseURL:  cfg.Graph.URL,
		Interval: cfg.Graph.Interval,
		Width:    cfg.Graph.Width,
		Height:   cfg.Graph.Height,
	}
	fetcher := graph.NewFetcher(cfg.Graph.Timeout.Duration, logger)
	composer := alert.New(cfg.From, opts, fetcher, transport, logger)

	logger.Debug("notification event",
		"type", ac.NotificationType,
		"state", ac.ServiceState,
		"host", ac.HostAlias,
		"service", ac.ServiceDescription,
		"metric", ac.GraphiteMetric,
	)
	composer.Notify(ctx, ac)
}
