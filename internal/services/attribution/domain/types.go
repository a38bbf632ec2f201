// Package domain defines the types and ports of the attribution service
package domain

import (
	"time"

	"speakertag/internal/core/quality"
)

// RunInput selects a transcript and how to attribute it
type RunInput struct {
	TranscriptID int64  `json:"-"`
	Mode         string `json:"mode" validate:"omitempty,attribution_mode"`
	DryRun       bool   `json:"dry_run"`
}

// RunResult summarizes one attribution run
type RunResult struct {
	RunID        string        `json:"run_id"`
	TranscriptID int64         `json:"transcript_id"`
	Mode         string        `json:"mode"`
	DryRun       bool          `json:"dry_run"`
	Stats        quality.Stats `json:"stats"`
	Committed    int           `json:"committed"`
	Duration     time.Duration `json:"-"`
	DurationMS   int64         `json:"duration_ms"`
}

// Segment is one persisted unit assignment
type Segment struct {
	TranscriptID int64     `json:"transcript_id"`
	UnitID       int64     `json:"unit_id"`
	LineNumber   int       `json:"line_number"`
	SubIndex     int       `json:"sub_index"`
	CharStart    int       `json:"char_start"`
	CharEnd      int       `json:"char_end"`
	Text         string    `json:"text"`
	Speaker      string    `json:"speaker"`
	Confidence   float64   `json:"confidence"`
	Provenance   string    `json:"provenance"`
	Pattern      *string   `json:"pattern,omitempty"`
	RunID        string    `json:"run_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// RunRecord is the row the analytics sink stores per run
type RunRecord struct {
	RunID          string
	TranscriptID   int64
	Mode           string
	DryRun         bool
	TotalUnits     int
	Assigned       int
	UniqueSpeakers int
	AvgConfidence  float64
	Tier           string
	Committed      int
	DurationMS     int64
	StartedAt      time.Time
}
