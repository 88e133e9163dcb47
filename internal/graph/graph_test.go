package graph_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"

	"github.com/hazz-dev/okgraph/internal/fakes"
	"github.com/hazz-dev/okgraph/internal/graph"
)

func floatPtr(v float64) *float64 {
	return &v
}

func defaultOptions() graph.Options {
	return graph.Options{BaseURL: "http://graphite.example.com:14770", Interval: "6hours", Width: 800}
}

func TestBuild_NoMetric(t *testing.T) {
	if req := graph.Build(defaultOptions(), "", floatPtr(1), floatPtr(5)); req != nil {
		t.Errorf("expected nil request without metric, got %+v", req)
	}
}

func TestBuild_NoThresholds(t *testing.T) {
	req := graph.Build(defaultOptions(), "maxSeries(stats.gauges.count.*)", nil, nil)
	if req == nil {
		t.Fatal("expected request")
	}
	if len(req.Thresholds) != 0 {
		t.Errorf("expected no thresholds, got %v", req.Thresholds)
	}

	u, err := url.Parse(req.URL())
	if err != nil {
		t.Fatalf("parsing URL: %v", err)
	}
	if u.Path != "/render" {
		t.Errorf("expected /render path, got %q", u.Path)
	}
	q := u.Query()
	if got := q["target"]; !reflect.DeepEqual(got, []string{"maxSeries(stats.gauges.count.*)"}) {
		t.Errorf("unexpected targets %v", got)
	}
	checks := map[string]string{
		"lineMode": "connected",
		"from":     "-6hours",
		"width":    "800",
		"bgcolor":  "FFFFFF",
		"fgcolor":  "000000",
	}
	for k, want := range checks {
		if got := q.Get(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
	if q.Has("height") {
		t.Error("height should be omitted when zero")
	}
}

func TestBuild_Thresholds(t *testing.T) {
	req := graph.Build(defaultOptions(), "stats.errors", floatPtr(1), floatPtr(5.5))

	want := []graph.Threshold{
		{Value: 1, Label: "warn = 1", Color: "yellow"},
		{Value: 5.5, Label: "crit = 5.5", Color: "red"},
	}
	if !reflect.DeepEqual(req.Thresholds, want) {
		t.Errorf("unexpected thresholds\n got: %+v\nwant: %+v", req.Thresholds, want)
	}

	u, _ := url.Parse(req.URL())
	targets := u.Query()["target"]
	wantTargets := []string{
		"stats.errors",
		"threshold(1,'warn = 1','yellow')",
		"threshold(5.5,'crit = 5.5','red')",
	}
	if !reflect.DeepEqual(targets, wantTargets) {
		t.Errorf("unexpected targets\n got: %v\nwant: %v", targets, wantTargets)
	}
}

func TestBuild_CritOnly(t *testing.T) {
	req := graph.Build(defaultOptions(), "stats.errors", nil, floatPtr(10))
	if len(req.Thresholds) != 1 || req.Thresholds[0].Label != "crit = 10" {
		t.Errorf("expected a single crit overlay, got %+v", req.Thresholds)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	a := graph.Build(defaultOptions(), "stats.errors", floatPtr(1), floatPtr(5))
	b := graph.Build(defaultOptions(), "stats.errors", floatPtr(1), floatPtr(5))
	if !reflect.DeepEqual(a, b) {
		t.Errorf("requests differ: %+v vs %+v", a, b)
	}
	if a.URL() != b.URL() {
		t.Errorf("URLs differ:\n%s\n%s", a.URL(), b.URL())
	}
}

func TestBuild_HeightAndTrailingSlash(t *testing.T) {
	opts := defaultOptions()
	opts.BaseURL += "/"
	opts.Height = 250
	u, err := url.Parse(graph.Build(opts, "m", nil, nil).URL())
	if err != nil {
		t.Fatal(err)
	}
	if u.Path != "/render" {
		t.Errorf("expected /render path, got %q", u.Path)
	}
	if u.Query().Get("height") != "250" {
		t.Errorf("expected height 250, got %q", u.Query().Get("height"))
	}
}

func TestParseThreshold(t *testing.T) {
	v, err := graph.ParseThreshold("")
	if err != nil || v != nil {
		t.Errorf("empty threshold: got %v, %v", v, err)
	}
	v, err = graph.ParseThreshold(" 2.5 ")
	if err != nil || v == nil || *v != 2.5 {
		t.Errorf("2.5 threshold: got %v, %v", v, err)
	}
	if _, err := graph.ParseThreshold("lots"); err == nil {
		t.Error("expected error for non-numeric threshold")
	}
}

func TestFetcher_Success(t *testing.T) {
	g := &fakes.Graphite{}
	srv := httptest.NewServer(g.Handler())
	defer srv.Close()

	opts := defaultOptions()
	opts.BaseURL = srv.URL
	req := graph.Build(opts, "stats.errors", floatPtr(1), nil)

	img, err := graph.NewFetcher(0, nil).Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !bytes.Equal(img, fakes.PNG) {
		t.Error("unexpected image bytes")
	}

	queries := g.Queries()
	if len(queries) != 1 {
		t.Fatalf("expected 1 render request, got %d", len(queries))
	}
	if got := queries[0]["target"]; len(got) != 2 {
		t.Errorf("expected metric and warn targets, got %v", got)
	}
}

func TestFetcher_ServerError(t *testing.T) {
	g := &fakes.Graphite{Status: http.StatusInternalServerError}
	srv := httptest.NewServer(g.Handler())
	defer srv.Close()

	opts := defaultOptions()
	opts.BaseURL = srv.URL
	_, err := graph.NewFetcher(0, nil).Fetch(context.Background(), graph.Build(opts, "m", nil, nil))
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestFetcher_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	opts := defaultOptions()
	opts.BaseURL = srv.URL
	_, err := graph.NewFetcher(0, nil).Fetch(context.Background(), graph.Build(opts, "m", nil, nil))
	if !errors.Is(err, graph.ErrEmptyImage) {
		t.Errorf("expected ErrEmptyImage, got %v", err)
	}
}

func TestFetcher_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	opts := defaultOptions()
	opts.BaseURL = srv.URL
	srv.Close()

	_, err := graph.NewFetcher(0, nil).Fetch(context.Background(), graph.Build(opts, "m", nil, nil))
	if err == nil {
		t.Fatal("expected error for closed server")
	}
}
