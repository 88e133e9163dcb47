// Command sendgraph is an Icinga notification command. It reads the event
// from the ICINGA_* environment and mails an HTML alert, embedding a
// Graphite graph with threshold lines when the service defines a metric.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hazz-dev/okgraph/internal/alert"
	"github.com/hazz-dev/okgraph/internal/config"
	"github.com/hazz-dev/okgraph/internal/version"
)

func main() {
	// The monitoring system ignores this exit status; non-zero only flags
	// invocation errors in its logs.
	if err := rootCmd(os.LookupEnv).Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	configFile string
	baseURL    string
	interval   string
	width      int
	from       string
	smtpHost   string
	smtpPort   int
	dryRun     bool
	verbose    bool
}

func rootCmd(lookup func(string) (string, bool)) *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:          "sendgraph",
		Short:        "Mail an Icinga service notification with an embedded Graphite graph",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			logOut := cmd.OutOrStdout()
			var transport alert.Transport = alert.NewSMTPTransport(cfg.SMTP)
			if opts.dryRun {
				transport = alert.WriterTransport{W: cmd.OutOrStdout()}
				logOut = cmd.ErrOrStderr()
			}
			logger := newLogger(logOut, opts.verbose)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			executeSend(ctx, cfg, alert.ContextFromEnv(lookup), transport, logger)
			return nil
		},
	}

	f := root.Flags()
	f.StringVar(&opts.configFile, "config", "", "optional YAML config file")
	f.StringVarP(&opts.baseURL, "url", "u", "", "Graphite base URL, e.g. http://localhost:14770")
	f.StringVarP(&opts.interval, "interval", "i", "6hours", "graph interval to display")
	f.IntVarP(&opts.width, "width", "W", 800, "graph width in pixels")
	f.StringVarP(&opts.from, "from_email", "f", "", "from email address")
	f.StringVar(&opts.smtpHost, "smtp-host", "", "SMTP relay host (default localhost)")
	f.IntVar(&opts.smtpPort, "smtp-port", 0, "SMTP relay port (default 25)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "write the message to stdout instead of sending it")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug details")

	root.AddCommand(versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String("sendgraph"))
		},
	}
}

// loadConfig reads the optional config file and applies explicitly set
// flags over it.
func loadConfig(cmd *cobra.Command, opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	f := cmd.Flags()
	if f.Changed("url") {
		cfg.Graph.URL = opts.baseURL
	}
	if f.Changed("interval") {
		cfg.Graph.Interval = opts.interval
	}
	if f.Changed("width") {
		cfg.Graph.Width = opts.width
	}
	if f.Changed("from_email") {
		cfg.From = opts.from
	}
	if f.Changed("smtp-host") {
		cfg.SMTP.Host = opts.smtpHost
	}
	if f.Changed("smtp-port") {
		cfg.SMTP.Port = opts.smtpPort
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})).With("cmd", "sendgraph")
}
