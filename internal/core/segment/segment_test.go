package segment

import (
	"strings"
	"testing"
	"unicode/utf8"

	"speakertag/internal/core/speakerpack"
)

func mustSegmenter(t *testing.T, opts Options) *Segmenter {
	t.Helper()
	p, err := speakerpack.Load()
	if err != nil {
		t.Fatalf("load pack: %v", err)
	}
	return New(p.Indicators, opts)
}

type span struct {
	text       string
	start, end int
}

func TestSplit_ChangePoints(t *testing.T) {
	s := mustSegmenter(t, Options{})
	cases := []struct {
		name string
		line string
		want []span
	}{
		{
			name: "two speakers",
			line: "За. Бат сайд, асуулт байна. Дорж сайд хариулна. Баярлалаа.",
			want: []span{
				{"За.", 0, 3},
				{"Бат сайд, асуулт байна.", 4, 27},
				{"Дорж сайд хариулна. Баярлалаа.", 28, 58},
			},
		},
		{
			name: "no indicator keeps the line whole",
			line: "  хуралдаан үргэлжилж байна  ",
			want: []span{{"хуралдаан үргэлжилж байна", 2, 27}},
		},
		{
			name: "indicator mid line",
			line: "Баярлалаа. Болд гишүүн асуулт асууна. Тийм.",
			want: []span{
				{"Баярлалаа.", 0, 10},
				{"Болд гишүүн асуулт асууна. Тийм.", 11, 43},
			},
		},
		{
			name: "blank line",
			line: "   ",
			want: nil,
		},
	}
	for _, tc := range cases {
		got := s.Split(4, tc.line)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %d units %+v, want %d", tc.name, len(got), got, len(tc.want))
		}
		for i, w := range tc.want {
			u := got[i]
			if u.Text != w.text || u.CharStart != w.start || u.CharEnd != w.end {
				t.Fatalf("%s: unit[%d] = %+v, want %+v", tc.name, i, u, w)
			}
			if u.Line != 4 || u.SubIndex != i || u.Split {
				t.Fatalf("%s: unit[%d] bookkeeping = %+v", tc.name, i, u)
			}
			if strings.Join(strings.Fields(substr(tc.line, u.CharStart, u.CharEnd)), " ") != u.Text {
				t.Fatalf("%s: offsets [%d,%d) do not cover %q", tc.name, u.CharStart, u.CharEnd, u.Text)
			}
		}
	}
}

func TestSplit_LongLineBySentences(t *testing.T) {
	s := mustSegmenter(t, Options{MaxSegmentLength: 500, SentenceSplitLength: 300})
	sentence := strings.Repeat("ш", 98) + ". "
	line := strings.Repeat(sentence, 9)

	got := s.Split(1, line)
	if len(got) < 3 {
		t.Fatalf("got %d units, want >= 3", len(got))
	}
	for i, u := range got {
		if !u.Split {
			t.Fatalf("unit[%d] should be marked as sentence split", i)
		}
		if u.Len() > 300 {
			t.Fatalf("unit[%d] has %d runes, want <= 300", i, u.Len())
		}
		if u.CharEnd-u.CharStart != u.Len() {
			t.Fatalf("unit[%d] offsets [%d,%d) disagree with length %d", i, u.CharStart, u.CharEnd, u.Len())
		}
	}
	if got[1].CharStart != 300 || got[2].CharStart != 600 {
		t.Fatalf("offsets = %d,%d want 300,600", got[1].CharStart, got[2].CharStart)
	}
}

func TestSplit_MixedIndicatorAndSentences(t *testing.T) {
	s := mustSegmenter(t, Options{})
	line := "За. Бат сайд. " + strings.Repeat(strings.Repeat("ш", 98)+". ", 6)

	got := s.Split(1, line)
	wantLens := []int{3, 209, 299, 99}
	if len(got) != len(wantLens) {
		t.Fatalf("got %d units, want %d", len(got), len(wantLens))
	}
	for i, n := range wantLens {
		if got[i].Len() != n || got[i].SubIndex != i {
			t.Fatalf("unit[%d] len=%d sub=%d, want len=%d", i, got[i].Len(), got[i].SubIndex, n)
		}
	}
	if got[0].Split || !got[1].Split {
		t.Fatalf("split flags = %v,%v", got[0].Split, got[1].Split)
	}
	if got[1].CharStart != 4 || got[3].CharEnd != 613 {
		t.Fatalf("offsets = %d..%d", got[1].CharStart, got[3].CharEnd)
	}
}

func TestSplit_NoSentenceBoundary(t *testing.T) {
	s := mustSegmenter(t, Options{})
	line := strings.Repeat("ш", 700)
	got := s.Split(1, line)
	if len(got) != 1 || got[0].Len() != 700 {
		t.Fatalf("oversized unit without boundaries should stay whole, got %d units", len(got))
	}
}

func TestTranscript_GlobalIDs(t *testing.T) {
	s := mustSegmenter(t, Options{})
	lines := []string{
		"За. Бат сайд, асуулт байна. Дорж сайд хариулна.",
		"хуралдаан үргэлжилж байна",
		"Болд гишүүн асууя",
	}
	units := s.Transcript(lines)
	if len(units) != 5 {
		t.Fatalf("got %d units %+v", len(units), units)
	}
	for i, u := range units {
		if u.ID != int64(i+1) {
			t.Fatalf("unit[%d].ID = %d", i, u.ID)
		}
	}
	if units[3].Line != 2 || units[3].SubIndex != 0 || units[4].Line != 3 {
		t.Fatalf("line bookkeeping wrong: %+v", units)
	}
}

func TestWhole(t *testing.T) {
	units := Whole([]string{"нэг", "хоёр"})
	if len(units) != 2 || units[1].ID != 2 || units[1].Line != 2 || units[1].CharEnd != 4 {
		t.Fatalf("Whole = %+v", units)
	}
}

func substr(s string, start, end int) string {
	r := []rune(s)
	if end > len(r) {
		end = len(r)
	}
	return string(r[start:end])
}

func TestUnitLen(t *testing.T) {
	u := Unit{Text: "Бат"}
	if u.Len() != utf8.RuneCountInString("Бат") || u.Len() != 3 {
		t.Fatalf("Len = %d", u.Len())
	}
}
