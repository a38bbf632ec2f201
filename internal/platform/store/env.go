package store

import (
	"time"

	"speakertag/internal/platform/config"
)

// Config selects and tunes the backends Open connects
type Config struct {
	AppName string
	PG      PGConfig
	CH      CHConfig
}

// PGConfig tunes the postgres pool, its query log and the boot ping
type PGConfig struct {
	Enabled   bool
	URL       string
	MaxConns  int32
	LogSQL    bool
	SlowQuery time.Duration // zero disables slow query warnings

	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// CHConfig points at the clickhouse run history sink
type CHConfig struct {
	Enabled bool
	URL     string
}

// FromEnv reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_* under root.
// Postgres is always on and SERVICE_PGSQL_URL is required. Clickhouse is opt in.
func FromEnv(root config.Conf, appName string) Config {
	pg := root.Prefix("SERVICE_PGSQL_")
	ch := root.Prefix("SERVICE_CLICKHOUSE_")

	return Config{
		AppName: appName,
		PG: PGConfig{
			Enabled:        true,
			URL:            pg.MustString("URL"),
			MaxConns:       int32(pg.MayInt("MAX_CONNS", 4)),
			LogSQL:         pg.MayBool("LOG_SQL", false),
			SlowQuery:      pg.MayDuration("SLOW", 500*time.Millisecond),
			ConnectRetries: pg.MayInt("CONNECT_RETRIES", 20),
			PingTimeout:    pg.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
		CH: CHConfig{
			Enabled: ch.MayBool("ENABLED", false),
			URL:     ch.MayString("URL", ""),
		},
	}
}

// WithPGURL returns a copy of c pointed at another postgres, with clickhouse off
func (c Config) WithPGURL(url string) Config {
	c.PG.URL = url
	c.CH = CHConfig{}
	return c
}
