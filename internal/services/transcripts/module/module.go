// Package module implements the transcripts service module
package module

import (
	"speakertag/internal/modkit"
	"speakertag/internal/modkit/httpkit"
	"speakertag/internal/modkit/repokit"
	"speakertag/internal/services/transcripts/domain"
	"speakertag/internal/services/transcripts/repo"
	"speakertag/internal/services/transcripts/service"
)

// Ports exposed by the transcripts module
type Ports struct {
	Reader domain.ReaderPort
	Writer domain.WriterPort
}

// Module implements the transcripts service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new transcripts module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	svc := service.New(repokit.TxRunner(deps.PG), repo.NewPG(), service.Config{
		PageSize:    opts.PageSize,
		MaxPageSize: opts.MaxPageSize,
	})

	return &Module{deps: deps, ports: Ports{Reader: svc, Writer: svc}}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "transcripts" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
