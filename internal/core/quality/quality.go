// Package quality summarizes an assignment stream and grades the run for operators.
// Grades are advisory; nothing here blocks processing
package quality

import (
	"math"
	"sort"

	"speakertag/internal/core/assign"
)

// Level is the granularity the assignments were made at
type Level string

const (
	LevelLine    Level = "line"
	LevelSegment Level = "segment"
)

// Tier is the overall grade of a run
type Tier string

const (
	TierExcellent Tier = "excellent"
	TierReview    Tier = "review"
	TierLow       Tier = "low"
)

// Stats is the aggregate view of one run
type Stats struct {
	Level           Level          `json:"level"`
	TotalUnits      int            `json:"total_units"`
	Assigned        int            `json:"assigned"`
	Unknown         int            `json:"unknown"`
	AssignedPct     float64        `json:"assigned_pct"`
	UnknownPct      float64        `json:"unknown_pct"`
	UniqueSpeakers  int            `json:"unique_speakers"`
	AvgConfidence   float64        `json:"avg_confidence"`
	Distribution    map[string]int `json:"distribution"`
	TotalLines      int            `json:"total_lines"`
	AvgUnitsPerLine float64        `json:"avg_units_per_line"`
	Fresh           int            `json:"fresh"`
	Carried         int            `json:"carried"`
	Expired         int            `json:"expired"`
	Tier            Tier           `json:"tier"`
}

// SpeakerCount is one row of the distribution
type SpeakerCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Compute aggregates the assignments of one run
func Compute(level Level, as []assign.Assignment) Stats {
	st := Stats{
		Level:        level,
		TotalUnits:   len(as),
		Distribution: make(map[string]int),
	}
	lines := make(map[int]struct{})
	speakers := make(map[string]struct{})
	var sum float64
	for _, a := range as {
		lines[a.Line] = struct{}{}
		st.Distribution[a.Speaker]++
		sum += a.Confidence
		if a.Known() {
			st.Assigned++
			speakers[a.Speaker] = struct{}{}
		} else {
			st.Unknown++
		}
		switch a.Provenance {
		case assign.Fresh:
			st.Fresh++
		case assign.Carried:
			st.Carried++
		case assign.Expired:
			st.Expired++
		}
	}
	st.UniqueSpeakers = len(speakers)
	st.TotalLines = len(lines)
	if st.TotalUnits > 0 {
		st.AssignedPct = pct(st.Assigned, st.TotalUnits)
		st.UnknownPct = pct(st.Unknown, st.TotalUnits)
		st.AvgConfidence = sum / float64(st.TotalUnits)
	}
	if st.TotalLines > 0 {
		st.AvgUnitsPerLine = float64(st.TotalUnits) / float64(st.TotalLines)
	}
	st.Tier = Classify(level, st.AssignedPct, st.AvgConfidence)
	return st
}

// Classify grades coverage (percent) and mean confidence for the given level
func Classify(level Level, coverage, avg float64) Tier {
	excellentAt := 80.0
	if level == LevelSegment {
		excellentAt = 75.0
	}
	switch {
	case coverage > excellentAt && avg > 0.7:
		return TierExcellent
	case coverage > 60:
		return TierReview
	default:
		return TierLow
	}
}

// Top returns the n most frequent speakers, UNKNOWN included, by count then name
func (s Stats) Top(n int) []SpeakerCount {
	out := make([]SpeakerCount, 0, len(s.Distribution))
	for name, c := range s.Distribution {
		out = append(out, SpeakerCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func pct(n, total int) float64 {
	return math.Round(float64(n)/float64(total)*10000) / 100
}
