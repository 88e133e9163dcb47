// Package graph builds Graphite render requests for alert emails and
// fetches the resulting image.
package graph

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Overlay colors and labels for threshold lines.
const (
	WarnColor = "yellow"
	CritColor = "red"
)

// Threshold is a horizontal reference line drawn on the graph.
type Threshold struct {
	Value float64
	Label string
	Color string
}

func (t Threshold) target() string {
	return fmt.Sprintf("threshold(%s,'%s','%s')", formatValue(t.Value), t.Label, t.Color)
}

// Options are the caller-supplied render settings. They are independent of
// the check's own evaluation window.
type Options struct {
	BaseURL  string
	Interval string
	Width    int
	// Height of zero lets Graphite pick its default.
	Height int
}

// Request describes one render call.
type Request struct {
	BaseURL    string
	Metric     string
	Interval   string
	Width      int
	Height     int
	Thresholds []Threshold
}

// Build returns the render request for metric, or nil when no metric is
// configured. warn and crit are optional.
func Build(opts Options, metric string, warn, crit *float64) *Request {
	if metric == "" {
		return nil
	}
	req := &Request{
		BaseURL:  strings.TrimRight(opts.BaseURL, "/"),
		Metric:   metric,
		Interval: opts.Interval,
		Width:    opts.Width,
		Height:   opts.Height,
	}
	if warn != nil {
		req.Thresholds = append(req.Thresholds, Threshold{
			Value: *warn,
			Label: "warn = " + formatValue(*warn),
			Color: WarnColor,
		})
	}
	if crit != nil {
		req.Thresholds = append(req.Thresholds, Threshold{
			Value: *crit,
			Label: "crit = " + formatValue(*crit),
			Color: CritColor,
		})
	}
	return req
}

// URL renders the request as a Graphite /render URL. The result is
// deterministic for equal requests.
func (r *Request) URL() string {
	q := url.Values{}
	q.Set("lineMode", "connected")
	q.Set("from", "-"+r.Interval)
	q.Set("width", strconv.Itoa(r.Width))
	if r.Height > 0 {
		q.Set("height", strconv.Itoa(r.Height))
	}
	q.Set("bgcolor", "FFFFFF")
	q.Set("fgcolor", "000000")
	q.Add("target", r.Metric)
	for _, t := range r.Thresholds {
		q.Add("target", t.target())
	}
	return r.BaseURL + "/render?" + q.Encode()
}

// ParseThreshold parses an optional numeric threshold. An empty string
// means no threshold.
func ParseThreshold(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid threshold %q: %w", s, err)
	}
	return &v, nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
