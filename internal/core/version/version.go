// Package version reports build and rule pack versions
package version

// PackVersion is the speaker rule pack schema the binary understands
const PackVersion = 1

// BuildInfo holds version information about a binary
type BuildInfo struct {
	Service     string `json:"service"`
	Version     string `json:"version"`
	Commit      string `json:"commit"`
	Date        string `json:"date"`
	PackVersion int    `json:"pack_version"`
}

// Info returns the build information for service. version, commit and date are set with
// -ldflags "-X 'speakertag/internal/core/version.version=v0.1.0' -X ...commit=abcd -X ...date=2026-01-02"
func Info(service string) BuildInfo {
	if service == "" {
		service = "speakertag"
	}
	return BuildInfo{
		Service:     service,
		Version:     version,
		Commit:      commit,
		Date:        date,
		PackVersion: PackVersion,
	}
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
