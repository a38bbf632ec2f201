// Package module mounts the transcript routes using modkit
package module

import (
	"speakertag/internal/modkit"
	"speakertag/internal/modkit/httpkit"
	thttp "speakertag/internal/services/api/transcripts/http"
	tmod "speakertag/internal/services/transcripts/module"
)

// Module implements modkit.Module for transcript browsing and tagging
type Module struct {
	b     modkit.Built
	ports tmod.Ports
}

// New constructs the module. Ports arrive through modkit.WithPorts(transcripts/module.Ports)
func New(_ modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("transcripts-api")}, opts...)...)

	ports, ok := b.Ports.(tmod.Ports)
	if !ok || ports.Reader == nil || ports.Writer == nil {
		panic("transcripts api: expected WithPorts(transcripts/module.Ports) with Reader and Writer")
	}
	return &Module{b: b, ports: ports}
}

// MountRoutes registers every transcript and speaker route
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) {
		thttp.Register(rr, m.ports.Reader, m.ports.Writer)
	})
}

// Ports returns the transcript ports the routes run against
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return m.b.Name }
