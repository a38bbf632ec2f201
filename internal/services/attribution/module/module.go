// Package module implements the attribution module
package module

import (
	"context"
	"net/http"

	"speakertag/internal/core/engine"
	"speakertag/internal/core/speakerpack"
	"speakertag/internal/modkit"
	"speakertag/internal/modkit/httpkit"
	"speakertag/internal/platform/observe"
	"speakertag/internal/services/attribution/domain"
	"speakertag/internal/services/attribution/repo"
	"speakertag/internal/services/attribution/service"
	"speakertag/internal/services/attribution/sink"
)

// Ports exposed by the attribution module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	pack  *speakerpack.Pack
	ports Ports
}

// New constructs the attribution module. Dependencies arrive through modkit.WithPorts(domain.Ports)
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("attribution")}, opts...)...)

	ports, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("attribution module: expected WithPorts(attribution/domain.Ports)")
	}
	if ports.Transcripts == nil {
		panic("attribution module: Ports missing Transcripts")
	}

	cfg := FromConfig(deps.Cfg).merge(overrides)
	pack, err := LoadPack(cfg.PatternsFile)
	if err != nil {
		panic(err)
	}
	mode, err := engine.ParseMode(cfg.Mode)
	if err != nil {
		panic(err)
	}

	svcOpts := []service.Option{service.WithMetrics(observe.DefaultMetrics())}
	if deps.CH != nil {
		chs := sink.NewClickHouse(deps.CH)
		if err := chs.EnsureTable(context.Background()); err != nil {
			deps.Log.Warn().Err(err).Msg("attribution_runs table unavailable; run summaries may be dropped")
		}
		svcOpts = append(svcOpts, service.WithSink(chs))
	}

	svc, err := service.New(pack, ports, deps.PG, repo.NewPG(), service.Config{
		Mode:                mode,
		ContextWindow:       cfg.ContextWindow,
		MaxSegmentLength:    cfg.MaxSegmentLength,
		SentenceSplitLength: cfg.SentenceSplitLength,
		AutoTagThreshold:    cfg.AutoTagThreshold,
		DecayBase:           cfg.DecayBase,
		DecayStep:           cfg.DecayStep,
		DecayFloor:          cfg.DecayFloor,
		Workers:             cfg.Workers,
	}, svcOpts...)
	if err != nil {
		panic(err)
	}

	return &Module{deps: deps, pack: pack, ports: Ports{Runner: svc}}
}

// LoadPack reads the rule table from path, or the embedded table when path is empty
func LoadPack(path string) (*speakerpack.Pack, error) {
	if path == "" {
		return speakerpack.Load()
	}
	return speakerpack.LoadFile(path)
}

// Pack returns the loaded rule table
func (m *Module) Pack() *speakerpack.Pack { return m.pack }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "attribution" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// Middlewares satisfies modkit.Module
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return nil }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
