package ch

import (
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"speakertag/internal/core/version"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// clientInfo names this binary in clickhouse's system.query_log
func clientInfo(b version.BuildInfo) clickhouse.ClientInfo {
	host, _ := os.Hostname()
	commit := b.Commit
	if commit == "" || commit == "none" {
		commit = vcsRevision()
	}
	return clickhouse.ClientInfo{Products: []struct{ Name, Version string }{
		{Name: orUnknown(b.Service), Version: orUnknown(b.Version)},
		{Name: "go", Version: runtime.Version()},
		{Name: "commit", Version: orUnknown(commit)},
		{Name: "host", Version: orUnknown(host)},
	}}
}

func vcsRevision() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return ""
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
