// Package module mounts the meta endpoints under /meta
package module

import (
	"time"

	"speakertag/internal/core/speakerpack"
	modkit "speakertag/internal/modkit"
	"speakertag/internal/modkit/httpkit"
	str "speakertag/internal/platform/strings"

	metahttp "speakertag/internal/services/api/meta/http"
)

// ServiceName is reported by health and version
const ServiceName = "speakertag-api"

// Module serves /meta
type Module struct {
	deps      modkit.Deps
	b         modkit.Built
	pack      *speakerpack.Pack
	startedAt time.Time
}

// New constructs a meta module. pack may be nil, in which case /patterns reports an empty table
func New(deps modkit.Deps, pack *speakerpack.Pack, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	return &Module{deps: deps, b: b, pack: pack, startedAt: time.Now()}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	// nil seams stay untyped nils so the probes report them as skipped
	d := metahttp.Deps{ServiceName: ServiceName, StartedAt: m.startedAt, Pack: m.pack}
	if m.deps.PG != nil {
		d.PG = m.deps.PG
	}
	if m.deps.CH != nil {
		d.CH = m.deps.CH
	}
	m.b.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, d) })
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.b.Name, "meta") }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
