// Package fakes provides in-process stand-ins for the HTTP services the
// plugins talk to: an okcomputer health page and a Graphite render API.
package fakes

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/go-chi/chi/v5"
)

// PNG is a minimal valid 1x1 PNG image.
var PNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// HealthPage serves a fixed health document at Path.
type HealthPage struct {
	Path   string
	Status int
	Body   string

	mu      sync.Mutex
	headers http.Header
}

// Handler returns a router serving the page. Other paths return 404.
func (p *HealthPage) Handler() http.Handler {
	r := chi.NewRouter()
	path := p.Path
	if path == "" {
		path = "/health_checks"
	}
	r.Get(path, func(w http.ResponseWriter, req *http.Request) {
		p.mu.Lock()
		p.headers = req.Header.Clone()
		p.mu.Unlock()

		status := p.Status
		if status == 0 {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(p.Body))
	})
	return r
}

// LastHeaders returns the headers of the most recent request, or nil.
func (p *HealthPage) LastHeaders() http.Header {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.headers
}

// Graphite serves /render and records the query of every request.
type Graphite struct {
	Status int
	Image  []byte

	mu      sync.Mutex
	queries []url.Values
}

// Handler returns the render router.
func (g *Graphite) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/render", func(w http.ResponseWriter, req *http.Request) {
		g.mu.Lock()
		g.queries = append(g.queries, req.URL.Query())
		g.mu.Unlock()

		status := g.Status
		if status == 0 {
			status = http.StatusOK
		}
		img := g.Image
		if img == nil {
			img = PNG
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(status)
		if status == http.StatusOK {
			w.Write(img)
		}
	})
	return r
}

// Queries returns the recorded render queries in arrival order.
func (g *Graphite) Queries() []url.Values {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]url.Values, len(g.queries))
	copy(out, g.queries)
	return out
}
