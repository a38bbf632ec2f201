// Package domain defines the snapshot format moved between transcript databases
package domain

import (
	"context"
	"strings"
	"time"

	perr "speakertag/internal/platform/errors"
)

// Snapshot is a full, portable copy of a transcript database
type Snapshot struct {
	ExportedAt  time.Time    `json:"exported_at"`
	Source      string       `json:"source"`
	Transcripts []Transcript `json:"transcripts"`
	Speakers    []Speaker    `json:"speakers"`
}

// Transcript is one session with its lines
type Transcript struct {
	Filename   string     `json:"filename"`
	Date       *string    `json:"date"`
	TotalLines int        `json:"total_lines"`
	CreatedAt  *time.Time `json:"created_at"`
	Lines      []Line     `json:"lines"`
}

// Line is one stored line with its tag, if any
type Line struct {
	LineNumber int        `json:"line_number"`
	Text       string     `json:"text"`
	Speaker    *string    `json:"speaker"`
	TaggedAt   *time.Time `json:"tagged_at"`
	TaggedBy   *string    `json:"tagged_by"`
}

// Tagged reports whether the line carries a speaker
func (l Line) Tagged() bool { return l.Speaker != nil && *l.Speaker != "" }

// Speaker is one known speaker name
type Speaker struct {
	Name      string     `json:"name"`
	CreatedAt *time.Time `json:"created_at"`
}

// Mode selects how a snapshot is applied
type Mode string

const (
	// ModeMerge creates missing transcripts and fills tags the target lacks
	ModeMerge Mode = "merge"
	// ModeReplace clears the target first
	ModeReplace Mode = "replace"
	// ModeTagsOnly copies differing tags onto existing transcripts only
	ModeTagsOnly Mode = "tags_only"
)

// ParseMode accepts merge, replace or tags_only; empty means merge
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeMerge, nil
	case ModeMerge, ModeReplace, ModeTagsOnly:
		return m, nil
	}
	return "", perr.WithField(perr.InvalidArgf("unknown sync mode %q (want merge, replace or tags_only)", s), "mode")
}

// ImportStats counts what an import changed
type ImportStats struct {
	Transcripts int `json:"transcripts"`
	Lines       int `json:"lines"`
	TagsUpdated int `json:"tags_updated"`
}

// Comparison contrasts two databases by transcript filename
type Comparison struct {
	OnlyA    []string  `json:"only_a"`
	OnlyB    []string  `json:"only_b"`
	Both     int       `json:"both"`
	TagDiffs []TagDiff `json:"tag_diffs"`
}

// TagDiff is a shared transcript whose tagged-line counts differ
type TagDiff struct {
	Filename string `json:"filename"`
	A        int    `json:"a"`
	B        int    `json:"b"`
}

// Exporter produces snapshots
type Exporter interface {
	Export(ctx context.Context, source string) (Snapshot, error)
}

// Importer applies snapshots
type Importer interface {
	Import(ctx context.Context, snap Snapshot, mode Mode) (ImportStats, error)
}

// Counter reports tagged-line counts per transcript filename
type Counter interface {
	TaggedCounts(ctx context.Context) (map[string]int, error)
}
