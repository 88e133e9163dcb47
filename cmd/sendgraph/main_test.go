package main

import (
	"bytes"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hazz-dev/okgraph/internal/alert"
	"github.com/hazz-dev/okgraph/internal/fakes"
)

func icingaEnv(extra map[string]string) func(string) (string, bool) {
	env := map[string]string{
		alert.EnvNotificationType:   "PROBLEM",
		alert.EnvServiceState:       "CRITICAL",
		alert.EnvHostAlias:          "localhost",
		alert.EnvHostAddress:        "127.0.0.1",
		alert.EnvServiceDescription: "s_dn_test",
		alert.EnvDateTime:           "Mon Oct 19 15:04:05 UTC 2026",
		alert.EnvActionURL:          "https://myrunbook/link",
		alert.EnvServiceOutput:      "CRITICAL: count is 7",
		alert.EnvServiceDuration:    "0d 0h 5m 0s",
		alert.EnvContactEmail:       "ops@example.com oncall@example.com",
	}
	for k, v := range extra {
		env[k] = v
	}
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

// closedPort returns an address nothing listens on.
func closedPort(t *testing.T) (string, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	host, port, _ := net.SplitHostPort(ln.Addr().String())
	ln.Close()
	return host, port
}

func execute(t *testing.T, lookup func(string) (string, bool), args ...string) (string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := rootCmd(lookup)
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return stdout.String(), stderr.String()
}

func TestSendgraph_DryRunWithGraph(t *testing.T) {
	g := &fakes.Graphite{}
	srv := httptest.NewServer(g.Handler())
	defer srv.Close()

	lookup := icingaEnv(map[string]string{
		alert.EnvGraphiteMetric: "maxSeries(stats.gauges.count.*)",
		alert.EnvWarnThreshold:  "1",
		alert.EnvCritThreshold:  "5",
	})
	out, _ := execute(t, lookup,
		"--dry-run",
		"-u", srv.URL,
		"-i", "2hours",
		"-W", "600",
		"-f", "icinga@example.com",
	)

	for _, want := range []string{
		"MAIL FROM: icinga@example.com",
		"RCPT TO: ops@example.com, oncall@example.com",
		"Subject: PROBLEM CRITICAL localhost/s_dn_test",
		"content-id: <graph>",
	} {
		if !strings.Contains(out, want) && !strings.Contains(strings.ToLower(out), want) {
			t.Errorf("expected %q in output", want)
		}
	}

	queries := g.Queries()
	if len(queries) != 1 {
		t.Fatalf("expected 1 render request, got %d", len(queries))
	}
	if got := queries[0].Get("from"); got != "-2hours" {
		t.Errorf("expected from=-2hours, got %q", got)
	}
	if got := queries[0].Get("width"); got != "600" {
		t.Errorf("expected width=600, got %q", got)
	}
	if got := len(queries[0]["target"]); got != 3 {
		t.Errorf("expected metric plus two thresholds, got %d targets", got)
	}
}

func TestSendgraph_DryRunWithoutMetric(t *testing.T) {
	out, _ := execute(t, icingaEnv(nil), "--dry-run", "-f", "icinga@example.com")
	if strings.Contains(strings.ToLower(out), "content-id") {
		t.Error("expected text-only mail without metric")
	}
	if !strings.Contains(out, "Subject: PROBLEM CRITICAL localhost/s_dn_test") {
		t.Errorf("expected subject in output, got:\n%s", out)
	}
}

func TestSendgraph_GraphFailureStillSends(t *testing.T) {
	g := &fakes.Graphite{Status: http.StatusBadGateway}
	srv := httptest.NewServer(g.Handler())
	defer srv.Close()

	lookup := icingaEnv(map[string]string{alert.EnvGraphiteMetric: "stats.errors"})
	out, logs := execute(t, lookup, "--dry-run", "-u", srv.URL, "-f", "icinga@example.com")
	if !strings.Contains(out, "MAIL FROM: icinga@example.com") {
		t.Error("expected mail to be produced despite graph failure")
	}
	if strings.Contains(strings.ToLower(out), "content-id") {
		t.Error("expected no embedded graph")
	}
	if !strings.Contains(logs, "graph unavailable") {
		t.Errorf("expected graph failure to be logged, got %q", logs)
	}
}

func TestSendgraph_TransportFailureDoesNotFail(t *testing.T) {
	// Nothing listens on the relay port; Execute must still succeed.
	_, port := closedPort(t)
	var stdout, stderr bytes.Buffer
	cmd := rootCmd(icingaEnv(nil))
	cmd.SetArgs([]string{"-f", "icinga@example.com", "--smtp-host", "127.0.0.1", "--smtp-port", port})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("expected no error on transport failure, got %v", err)
	}
	if !strings.Contains(stdout.String(), "sending mail failed") {
		t.Errorf("expected transport failure to be logged, got %q", stdout.String())
	}
}

func TestSendgraph_ConfigFile(t *testing.T) {
	g := &fakes.Graphite{}
	srv := httptest.NewServer(g.Handler())
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "sendgraph.yml")
	content := "from: \"cfg@example.com\"\ngraph:\n  url: \"" + srv.URL + "\"\n  interval: \"1hours\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	lookup := icingaEnv(map[string]string{alert.EnvGraphiteMetric: "stats.errors"})
	out, _ := execute(t, lookup, "--dry-run", "--config", path, "-W", "320")
	if !strings.Contains(out, "MAIL FROM: cfg@example.com") {
		t.Errorf("expected sender from config file, got:\n%s", out)
	}
	queries := g.Queries()
	if len(queries) != 1 {
		t.Fatalf("expected 1 render request, got %d", len(queries))
	}
	if queries[0].Get("from") != "-1hours" {
		t.Errorf("expected interval from config, got %q", queries[0].Get("from"))
	}
	if queries[0].Get("width") != "320" {
		t.Errorf("expected width flag to override config, got %q", queries[0].Get("width"))
	}
}

func TestSendgraph_InvalidConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := rootCmd(icingaEnv(nil))
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yml")})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestSendgraph_Version(t *testing.T) {
	out, _ := execute(t, icingaEnv(nil), "version")
	if !strings.HasPrefix(out, "sendgraph ") {
		t.Errorf("unexpected version output %q", out)
	}
}
