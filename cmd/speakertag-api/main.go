// Command speakertag-api serves the transcript tagging API
package main

import (
	"context"

	"speakertag/internal/core/version"
	"speakertag/internal/platform/bootstrap"
	"speakertag/internal/platform/config"
	phttp "speakertag/internal/platform/net/http"
	"speakertag/internal/platform/observe"

	"speakertag/internal/services/api"
)

const service = "speakertag-api"

func main() {
	l := bootstrap.Env(service)

	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	ctx, stop := bootstrap.SignalContext()
	defer stop()

	st, err := bootstrap.OpenStore(ctx, root, service)
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer bootstrap.CloseStore(st)

	metricsOn := apiCfg.MayBool("ENABLE_METRICS", true)
	if metricsOn {
		shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
			ServiceName:    service,
			ServiceVersion: version.Info(service).Version,
		})
		if err != nil {
			l.Fatal().Err(err).Msg("metrics provider")
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	srv := phttp.NewServer(apiCfg)
	api.Mount(srv.Router(), api.Options{
		Config:         root,
		Store:          st,
		Logger:         *l,
		AllowedOrigins: apiCfg.MayCSV("ALLOWED_ORIGINS", nil),
		EnableSwagger:  apiCfg.MayBool("ENABLE_SWAGGER", true),
		EnableProfiler: apiCfg.MayBool("ENABLE_PROFILER", false),
		EnableMetrics:  metricsOn,
	})

	if err := srv.Run(ctx); err != nil {
		l.Fatal().Err(err).Msg("http server stopped")
	}
}
