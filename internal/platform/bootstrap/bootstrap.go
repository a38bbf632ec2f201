// Package bootstrap holds the start-up steps every command shares
package bootstrap

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"speakertag/internal/platform/config"
	"speakertag/internal/platform/logger"
	"speakertag/internal/platform/store"
)

// Env loads .env files when present, then initializes the root logger for service.
// LOG_SERVICE still wins over service
func Env(service string, files ...string) *logger.Logger {
	err := godotenv.Load(files...)

	opt := logger.FromEnv()
	if opt.Service == "" {
		opt.Service = service
	}
	logger.Init(opt)
	l := logger.Get()

	switch {
	case err == nil:
		l.Debug().Msg("loaded .env")
	case errors.Is(err, fs.ErrNotExist):
		l.Debug().Msg("no .env file, using the process environment")
	default:
		l.Warn().Err(err).Msg("could not read .env, using the process environment")
	}
	return l
}

// SignalContext is cancelled on SIGINT or SIGTERM
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// OpenStore opens the store configured under SERVICE_PGSQL_ and SERVICE_CLICKHOUSE_
func OpenStore(ctx context.Context, root config.Conf, app string) (*store.Store, error) {
	return store.Open(ctx, store.FromEnv(root, app), store.WithLogger(*logger.Named("store")))
}

// CloseStore closes st and logs any failure
func CloseStore(st *store.Store) {
	if st == nil {
		return
	}
	if err := st.Close(context.Background()); err != nil {
		logger.Get().Error().Err(err).Msg("failed to close store")
	}
}
