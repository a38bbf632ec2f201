package quality

import (
	"fmt"
	"io"
	"strings"
)

const (
	ruleHeavy = "================================================================================"
	ruleLight = "--------------------------------------------------------------------------------"
	topN      = 10
)

var tierNotes = map[Tier]string{
	TierExcellent: "EXCELLENT - high coverage and confidence",
	TierReview:    "GOOD - review the UNKNOWN units",
	TierLow:       "LOW - manual review recommended",
}

// WriteReport writes the plain-text operator report for s
func WriteReport(w io.Writer, s Stats) error {
	unit := "Units"
	if s.Level == LevelLine {
		unit = "Lines"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\nSPEAKER TAGGING REPORT (%s level)\n%s\n\n", ruleHeavy, s.Level, ruleHeavy)
	fmt.Fprintf(&b, "STATISTICS\n%s\n", ruleLight)
	fmt.Fprintf(&b, "%-21s%d\n", "Total "+unit+":", s.TotalUnits)
	if s.Level == LevelSegment {
		fmt.Fprintf(&b, "%-21s%d\n", "Original Lines:", s.TotalLines)
		fmt.Fprintf(&b, "%-21s%.2f\n", "Units per Line:", s.AvgUnitsPerLine)
	}
	fmt.Fprintf(&b, "%-21s%d (%.1f%%)\n", "Assigned "+unit+":", s.Assigned, s.AssignedPct)
	fmt.Fprintf(&b, "%-21s%d (%.1f%%)\n", "Unknown "+unit+":", s.Unknown, s.UnknownPct)
	fmt.Fprintf(&b, "%-21s%d\n", "Unique Speakers:", s.UniqueSpeakers)
	fmt.Fprintf(&b, "%-21s%.2f\n", "Average Confidence:", s.AvgConfidence)
	fmt.Fprintf(&b, "%-21s%d fresh / %d carried / %d expired\n", "Provenance:", s.Fresh, s.Carried, s.Expired)

	fmt.Fprintf(&b, "\nTOP SPEAKERS\n%s\n", ruleLight)
	for _, sc := range s.Top(topN) {
		fmt.Fprintf(&b, "  %s %5d\n", padRight(sc.Name, 40), sc.Count)
	}
	fmt.Fprintf(&b, "\nQUALITY: %s\n%s\n", tierNotes[s.Tier], ruleHeavy)

	_, err := io.WriteString(w, b.String())
	return err
}

// padRight pads by runes so Cyrillic names line up
func padRight(s string, n int) string {
	c := len([]rune(s))
	if c >= n {
		return s
	}
	return s + strings.Repeat(" ", n-c)
}
