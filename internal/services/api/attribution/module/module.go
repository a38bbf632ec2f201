// Package module mounts the attribution routes using modkit
package module

import (
	"speakertag/internal/modkit"
	"speakertag/internal/modkit/httpkit"
	ahttp "speakertag/internal/services/api/attribution/http"
	amod "speakertag/internal/services/attribution/module"
)

// Module implements modkit.Module for attribution runs and reports
type Module struct {
	b     modkit.Built
	ports amod.Ports
}

// New constructs the module. Ports arrive through modkit.WithPorts(attribution/module.Ports)
func New(_ modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("attribution-api")}, opts...)...)

	ports, ok := b.Ports.(amod.Ports)
	if !ok || ports.Runner == nil {
		panic("attribution api: expected WithPorts(attribution/module.Ports) with Runner")
	}
	return &Module{b: b, ports: ports}
}

// MountRoutes registers the run, segment and report routes
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) {
		ahttp.Register(rr, m.ports.Runner)
	})
}

// Ports returns the attribution ports
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return m.b.Name }
