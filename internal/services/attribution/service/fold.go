package service

import (
	"strconv"

	"speakertag/internal/core/engine"
	pstrings "speakertag/internal/platform/strings"
	"speakertag/internal/services/attribution/domain"
	tdom "speakertag/internal/services/transcripts/domain"
)

// lineNumber maps the engine's 1-based line index to the stored line number
func lineNumber(lines []tdom.Line, idx int) int {
	if idx >= 1 && idx <= len(lines) {
		return lines[idx-1].LineNumber
	}
	return idx
}

// Segments flattens a result into rows for line_segments
func Segments(transcriptID int64, runID string, res engine.Result, lines []tdom.Line) []domain.Segment {
	out := make([]domain.Segment, len(res.Assignments))
	for i, a := range res.Assignments {
		u := res.Units[i]
		out[i] = domain.Segment{
			TranscriptID: transcriptID,
			UnitID:       a.UnitID,
			LineNumber:   lineNumber(lines, a.Line),
			SubIndex:     a.SubIndex,
			CharStart:    u.CharStart,
			CharEnd:      u.CharEnd,
			Text:         u.Text,
			Speaker:      a.Speaker,
			Confidence:   a.Confidence,
			Provenance:   string(a.Provenance),
			Pattern:      pstrings.Ptr(a.Pattern),
			RunID:        runID,
		}
	}
	return out
}

// LineTags picks the line tags a run may commit. Line mode commits each confident assignment.
// Segment mode commits a line only when all of its units agree
func LineTags(res engine.Result, lines []tdom.Line) []tdom.LineTag {
	var out []tdom.LineTag
	if res.Config.Mode == engine.ModeLine {
		for _, a := range res.Committable() {
			out = append(out, tdom.LineTag{LineNumber: lineNumber(lines, a.Line), Speaker: a.Speaker, Confidence: a.Confidence})
		}
		return out
	}
	for _, t := range res.LineTags() {
		out = append(out, tdom.LineTag{LineNumber: lineNumber(lines, t.Line), Speaker: t.Speaker, Confidence: t.Confidence})
	}
	return out
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
