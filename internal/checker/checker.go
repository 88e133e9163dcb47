// Package checker polls an okcomputer-style health page and folds the
// named checks it reports into a single monitoring-plugin result.
package checker

import (
	"context"

	"github.com/hazz-dev/okgraph/internal/plugin"
)

// Checker performs a single plugin check.
type Checker interface {
	Check(ctx context.Context) plugin.Result
}
