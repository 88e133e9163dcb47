package checker

import (
	"fmt"
	"strings"

	"github.com/hazz-dev/okgraph/internal/plugin"
)

// CheckResult is one named check outcome from a health page.
type CheckResult struct {
	Name    string
	Message string
	Success bool
}

// String renders the check the way it appears in the plugin output,
// e.g. "cache : {message: timeout, success: False}".
func (c CheckResult) String() string {
	return fmt.Sprintf("%s : {message: %s, success: %s}", c.Name, c.Message, pyBool(c.Success))
}

// pyBool keeps the True/False spelling existing service definitions match on.
func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// Report holds every check from one poll in document order.
type Report struct {
	Checks []CheckResult
}

// Failing returns the checks whose success is false, in document order.
func (r Report) Failing() []CheckResult {
	var failing []CheckResult
	for _, c := range r.Checks {
		if !c.Success {
			failing = append(failing, c)
		}
	}
	return failing
}

// OK reports whether no check is failing.
func (r Report) OK() bool {
	return len(r.Failing()) == 0
}

// Aggregate folds a report into a plugin result. Any failing check is
// CRITICAL; the health page format carries no severity, so there is no
// WARNING outcome.
func Aggregate(r Report) plugin.Result {
	failing := r.Failing()
	if len(failing) == 0 {
		return plugin.OK("All checks pass")
	}

	var b strings.Builder
	b.WriteString("The following checks are failing")
	for _, c := range failing {
		b.WriteString(", ")
		b.WriteString(c.String())
	}
	return plugin.Critical(b.String())
}
