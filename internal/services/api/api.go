// Package api provides the HTTP API for the application
package api

import (
	"speakertag/internal/platform/config"
	"speakertag/internal/platform/logger"
	phttp "speakertag/internal/platform/net/http"
	"speakertag/internal/platform/observe"
	"speakertag/internal/platform/store"

	"speakertag/internal/modkit"
	"speakertag/internal/modkit/httpkit"
	"speakertag/internal/modkit/module"
	"speakertag/internal/modkit/swaggerkit"

	attrapi "speakertag/internal/services/api/attribution/module"
	metamod "speakertag/internal/services/api/meta/module"
	transcriptsapi "speakertag/internal/services/api/transcripts/module"

	attrdom "speakertag/internal/services/attribution/domain"
	attrmod "speakertag/internal/services/attribution/module"
	tmod "speakertag/internal/services/transcripts/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         logger.Logger
	Attribution    attrmod.Options // overrides on top of CORE_ATTRIBUTION_
	AllowedOrigins []string
	EnableSwagger  bool
	EnableProfiler bool
	EnableMetrics  bool
}

// Mount builds the service modules and mounts the API onto the given router
func Mount(r phttp.Router, opt Options) {
	deps := modkit.DepsFrom(opt.Store, opt.Logger, opt.Config)

	// service modules own the ports the api modules run against
	transcripts := tmod.New(deps)
	tports := module.MustPortsOf[tmod.Ports](transcripts)

	attribution := attrmod.New(deps, opt.Attribution, modkit.WithPorts(attrdom.Ports{
		Transcripts: tports.Reader,
	}))
	aports := module.MustPortsOf[attrmod.Ports](attribution)

	mods := []module.Module{
		metamod.New(deps, attribution.Pack()),
		transcripts,
		attribution,
		transcriptsapi.New(deps, modkit.WithPorts(tports)),
		attrapi.New(deps, modkit.WithPorts(aports)),
	}

	swaggerkit.Mount(r, swaggerkit.Options{
		Enabled:     opt.EnableSwagger,
		TitleSuffix: opt.Config.Prefix("CORE_API_").MayString("DOCS_TITLE_SUFFIX", ""),
	})
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
	if opt.EnableMetrics {
		r.Handle("/metrics", observe.Handler())
	}

	stack := httpkit.CommonStack(httpkit.StackOptions{AllowedOrigins: opt.AllowedOrigins})
	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		for _, m := range mods {
			// register each module's ports under its own name for cross-module lookups
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
}
