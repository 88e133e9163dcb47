// Command check_okcomputer_health is a Nagios/Icinga plugin that polls an
// okcomputer health page and exits OK, CRITICAL or UNKNOWN.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazz-dev/okgraph/internal/config"
	"github.com/hazz-dev/okgraph/internal/plugin"
	"github.com/hazz-dev/okgraph/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the plugin and returns its exit code. Usage errors and help
// exit UNKNOWN, as the monitoring system expects from a misconfigured check.
func run(args []string, stdout, stderr io.Writer) int {
	status := plugin.StatusUnknown
	cmd := rootCmd(&status)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stdout, "UNKNOWN: %v\n", err)
		return plugin.StatusUnknown.ExitCode()
	}
	return status.ExitCode()
}

func rootCmd(status *plugin.Status) *cobra.Command {
	page := config.DefaultHealthPage()
	var (
		exclude     []string
		headers     []string
		verbose     bool
		showVersion bool
	)

	root := &cobra.Command{
		Use:           "check_okcomputer_health",
		Short:         "Poll an okcomputer health page and report a plugin status",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), version.String(cmd.Name()))
				*status = plugin.StatusOK
				return nil
			}
			page.Exclude = append([]string{config.DefaultExclude}, exclude...)
			h, err := parseHeaders(headers)
			if err != nil {
				return err
			}
			page.Headers = h
			if err := page.Validate(); err != nil {
				return err
			}

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			*status = executeCheck(cmd, page, logger)
			return nil
		},
	}

	f := root.Flags()
	f.StringVarP(&page.Hostname, "hostname", "H", page.Hostname, "health page host")
	f.IntVarP(&page.Port, "port", "p", page.Port, "health page port")
	f.BoolVarP(&page.TLS, "ssl", "S", false, "check via https")
	f.StringVarP(&page.Path, "url", "u", page.Path, "health page path")
	f.StringArrayVarP(&exclude, "exclude", "e", nil, "check name to exclude (repeatable, \"stub\" is always excluded)")
	f.DurationVarP(&page.Timeout, "timeout", "t", time.Duration(0), "request timeout (0 waits indefinitely)")
	f.StringArrayVar(&headers, "header", nil, "extra request header as \"Key: Value\" (repeatable)")
	f.BoolVarP(&verbose, "verbose", "v", false, "log debug details to stderr")
	f.BoolVar(&showVersion, "version", false, "print version and exit")

	return root
}

func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		k, v, ok := strings.Cut(h, ":")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid header %q (want \"Key: Value\")", h)
		}
		headers[k] = strings.TrimSpace(v)
	}
	return headers, nil
}
