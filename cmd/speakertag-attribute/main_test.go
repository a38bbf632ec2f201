package main

import (
	"bytes"
	"strings"
	"testing"

	"speakertag/internal/core/quality"
	"speakertag/internal/services/attribution/domain"
)

func TestIDList(t *testing.T) {
	var l idList
	for _, v := range []string{"3", "7, 9", ""} {
		if err := l.Set(v); err != nil {
			t.Fatalf("Set(%q): %v", v, err)
		}
	}
	if l.String() != "3,7,9" {
		t.Fatalf("ids %s", l.String())
	}
	for _, bad := range []string{"x", "0", "4,-1"} {
		if err := new(idList).Set(bad); err == nil {
			t.Fatalf("Set(%q) accepted", bad)
		}
	}
}

func TestPrintResults(t *testing.T) {
	rs := []domain.RunResult{
		{RunID: "r1", TranscriptID: 3, Mode: "segment", Committed: 40, DurationMS: 12,
			Stats: quality.Stats{TotalUnits: 50, AssignedPct: 80, UniqueSpeakers: 4, Tier: "good"}},
		{RunID: "r2", TranscriptID: 7, Mode: "line", DryRun: true},
	}
	var b bytes.Buffer
	if err := printResults(&b, rs, false); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	for _, want := range []string{
		"transcript 3 [segment, r1]: 50 units, 80.0% assigned, 4 speakers, tier good, 40 committed in 12ms",
		"transcript 7 [line, r2]",
		"0 dry run",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}
}
