// Package http serves liveness, readiness, build info and the loaded rule table
package http

import (
	"context"
	"net/http"
	"time"

	"speakertag/internal/core/speakerpack"
	"speakertag/internal/core/version"
	"speakertag/internal/modkit/httpkit"

	"golang.org/x/sync/errgroup"
)

// probeTimeout bounds every readiness ping
const probeTimeout = 2 * time.Second

// Deps are the handler dependencies. PG and CH are pinged when they implement Ping.
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any // required
	CH          any // optional
	Pack        *speakerpack.Pack
}

type handlers struct {
	deps Deps
	now  func() time.Time
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d, now: time.Now}

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/patterns", h.patterns)
}

// @Summary Liveness
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	now := h.now().UTC()
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(now.Sub(h.deps.StartedAt).Seconds()),
		Now:     now.Format(time.RFC3339),
	}, nil
}

type probe struct {
	name     string
	seam     any
	required bool
}

func (p probe) run(ctx context.Context) ReadyCheck {
	c := ReadyCheck{Name: p.name}
	pinger, ok := p.seam.(interface{ Ping(context.Context) error })
	switch {
	case p.seam == nil:
		c.Status = StatusSkipped
	case !ok:
		c.Status = StatusUnknown
	default:
		if err := pinger.Ping(ctx); err != nil {
			c.Status, c.Error = StatusFail, err.Error()
		} else {
			c.Status = StatusOK
		}
	}
	return c
}

// @Summary Readiness with dependency pings
// @Description fail when postgres is down, degraded when postgres cannot be checked or clickhouse is down
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	probes := []probe{
		{name: "pg", seam: h.deps.PG, required: true},
		{name: "ch", seam: h.deps.CH},
	}
	checks := make([]ReadyCheck, len(probes))
	var g errgroup.Group
	for i, p := range probes {
		g.Go(func() error {
			checks[i] = p.run(ctx)
			return nil
		})
	}
	_ = g.Wait()

	overall := StatusOK
	for i, c := range checks {
		switch {
		case probes[i].required && c.Status == StatusFail:
			return ReadyResponse{Status: StatusFail, Checks: checks, Now: h.stamp()}, nil
		case probes[i].required && c.Status != StatusOK,
			c.Status == StatusFail,
			c.Status == StatusUnknown:
			overall = StatusDegraded
		}
	}
	return ReadyResponse{Status: overall, Checks: checks, Now: h.stamp()}, nil
}

func (h *handlers) stamp() string { return h.now().UTC().Format(time.RFC3339) }

// @Summary Build info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(h.deps.ServiceName), nil
}

// @Summary Loaded speaker rule table
// @Tags Meta
// @Produce json
// @Success 200 {object} PatternsResponse
// @Router /meta/patterns [get]
func (h *handlers) patterns(_ *http.Request) (any, error) {
	return summarize(h.deps.Pack), nil
}

func summarize(p *speakerpack.Pack) PatternsResponse {
	out := PatternsResponse{Titles: []string{}, Rules: []RuleSummary{}}
	if p == nil {
		return out
	}
	out.Version = p.Version
	out.IgnoreCase = p.IgnoreCase
	out.BoostWindow = p.Boost.Window
	out.BoostAmount = p.Boost.Amount
	out.BoostCap = p.Boost.Cap
	out.Titles = append(out.Titles, p.Titles...)
	out.Indicators = len(p.Indicators)
	for _, r := range p.Rules {
		out.Rules = append(out.Rules, RuleSummary{ID: r.ID, Kind: string(r.Kind), Weight: r.Weight, Pattern: r.Template})
	}
	return out
}
