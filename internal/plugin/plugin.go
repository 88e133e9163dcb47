// Package plugin models the result of a monitoring plugin run: a status
// that maps to the Nagios exit code convention plus one line of output.
package plugin

import "fmt"

// Status is a monitoring-plugin service state.
type Status int

const (
	StatusOK       Status = 0
	StatusWarning  Status = 1
	StatusCritical Status = 2
	StatusUnknown  Status = 3
)

// ExitCode returns the process exit code for s.
func (s Status) ExitCode() int {
	if s < StatusOK || s > StatusUnknown {
		return int(StatusUnknown)
	}
	return int(s)
}

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "WARNING"
	case StatusCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Result is the outcome of a single plugin run.
type Result struct {
	Status  Status
	Message string
}

// Line renders the result as the single stdout line a monitoring system reads.
func (r Result) Line() string {
	return r.Status.String() + ": " + r.Message
}

func OK(msg string) Result {
	return Result{Status: StatusOK, Message: msg}
}

func Critical(msg string) Result {
	return Result{Status: StatusCritical, Message: msg}
}

// Unknown builds an UNKNOWN result with a formatted reason.
func Unknown(format string, args ...any) Result {
	return Result{Status: StatusUnknown, Message: fmt.Sprintf(format, args...)}
}
