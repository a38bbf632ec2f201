// Package modkit provides module wiring and core deps
package modkit

import (
	"speakertag/internal/modkit/repokit"
	"speakertag/internal/platform/config"
	"speakertag/internal/platform/logger"
	"speakertag/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// DepsFrom wires deps from an opened store. A nil store leaves both backends nil
func DepsFrom(st *store.Store, log logger.Logger, cfg config.Conf) Deps {
	d := Deps{Log: log, Cfg: cfg}
	if st != nil {
		d.PG = st.PG
		d.CH = st.CH
	}
	return d
}
