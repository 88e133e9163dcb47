// Package alert composes and sends HTML notification emails for Icinga
// service events, optionally embedding a Graphite graph of the metric.
package alert

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hazz-dev/okgraph/internal/graph"
)

// GraphFetcher renders graphs. *graph.Fetcher satisfies it.
type GraphFetcher interface {
	Fetch(ctx context.Context, req *graph.Request) ([]byte, error)
}

// Composer builds alert emails and hands them to a Transport.
type Composer struct {
	from      string
	graphOpts graph.Options
	fetcher   GraphFetcher
	transport Transport
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Composer. fetcher may be nil to never embed graphs. Pass
// nil logger to use the default logger.
func New(from string, graphOpts graph.Options, fetcher GraphFetcher, transport Transport, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		from:      from,
		graphOpts: graphOpts,
		fetcher:   fetcher,
		transport: transport,
		logger:    logger,
		now:       time.Now,
	}
}

// GraphRequest derives the render request for ac, or nil when the service
// has no metric. Unparseable thresholds are logged and left off the graph.
func (c *Composer) GraphRequest(ac Context) *graph.Request {
	if ac.GraphiteMetric == "" {
		return nil
	}
	warn, err := graph.ParseThreshold(ac.WarnThreshold)
	if err != nil {
		c.logger.Warn("ignoring warn threshold", "error", err)
	}
	crit, err := graph.ParseThreshold(ac.CritThreshold)
	if err != nil {
		c.logger.Warn("ignoring crit threshold", "error", err)
	}
	return graph.Build(c.graphOpts, ac.GraphiteMetric, warn, crit)
}

// fetchGraph fetches the graph for ac. Any failure degrades to no graph.
func (c *Composer) fetchGraph(ctx context.Context, ac Context) []byte {
	req := c.GraphRequest(ac)
	if req == nil || c.fetcher == nil {
		return nil
	}
	if c.graphOpts.BaseURL == "" {
		c.logger.Warn("metric configured but no graph url, sending without graph", "metric", ac.GraphiteMetric)
		return nil
	}
	img, err := c.fetcher.Fetch(ctx, req)
	if err != nil {
		c.logger.Warn("graph unavailable, sending without graph", "metric", ac.GraphiteMetric, "error", err)
		return nil
	}
	return img
}

// Compose builds the email for ac.
func (c *Composer) Compose(ctx context.Context, ac Context) (Message, error) {
	img := c.fetchGraph(ctx, ac)

	color := HighlightColor(ac.NotificationType, ac.ServiceState)
	body, err := RenderBody(ac, color, img != nil)
	if err != nil {
		return Message{}, err
	}

	return Message{
		From:    c.from,
		To:      append([]string(nil), ac.ContactEmails...),
		Subject: ac.Subject(),
		HTML:    body,
		Graph:   img,
		Date:    c.now(),
	}, nil
}

// Notify composes and sends the email for ac. Failures are logged and not
// returned: the monitoring system does not act on the outcome.
func (c *Composer) Notify(ctx context.Context, ac Context) {
	size, err := c.notify(ctx, ac)
	if err != nil {
		c.logger.Error("sending mail failed",
			"service", ac.ServiceDescription,
			"host", ac.HostAlias,
			"error", err,
		)
		return
	}
	c.logger.Info("mail sent",
		"service", ac.ServiceDescription,
		"host", ac.HostAlias,
		"recipients", len(ac.ContactEmails),
		"size", humanize.Bytes(uint64(size)),
	)
}

func (c *Composer) notify(ctx context.Context, ac Context) (int64, error) {
	if len(ac.ContactEmails) == 0 {
		return 0, fmt.Errorf("no contact email for event")
	}
	m, err := c.Compose(ctx, ac)
	if err != nil {
		return 0, err
	}
	msg, err := m.Build()
	if err != nil {
		return 0, err
	}
	size, err := msg.WriteTo(io.Discard)
	if err != nil {
		return 0, fmt.Errorf("encoding message: %w", err)
	}
	c.logger.Debug("mail composed",
		"subject", m.Subject,
		"from", m.From,
		"receivers", m.To,
		"graph", m.Graph != nil,
		"size", humanize.Bytes(uint64(size)),
	)
	return size, c.transport.Send(ctx, msg)
}
