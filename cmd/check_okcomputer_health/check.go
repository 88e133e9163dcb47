package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hazz-dev/okgraph/internal/checker"
	"github.com/hazz-dev/okgraph/internal/config"
	"github.com/hazz-dev/okgraph/internal/plugin"
)

func executeCheck(cmd *cobra.Command, page config.HealthPage, logger *slog.Logger) plugin.Status {
	return runCheck(cmd.Context(), cmd.OutOrStdout(), checker.New(page, logger))
}

// runCheck performs one check and prints its status line.
func runCheck(ctx context.Context, out io.Writer, c checker.Checker) plugin.Status {
	if ctx == nil {
		ctx = context.Background()
	}
	result := c.Check(ctx)
	fmt.Fprintln(out, result.Line())
	return result.Status
}
