// Package segment splits transcript lines into attribution units.
// A line is cut at every strong speaker-change indicator; pieces that are still too long are
// cut again at sentence ends. Offsets are rune offsets into the parent line
package segment

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Unit is the atomic span of text that receives one speaker assignment
type Unit struct {
	ID        int64  `json:"unit_id"`
	Line      int    `json:"line"`
	SubIndex  int    `json:"sub_index"`
	Text      string `json:"text"`
	CharStart int    `json:"char_start"`
	CharEnd   int    `json:"char_end"`
	// Split marks units produced by sentence splitting; they are never rescanned
	Split bool `json:"sentence_split,omitempty"`
}

// Len is the unit length in runes
func (u Unit) Len() int { return utf8.RuneCountInString(u.Text) }

// Options bounds unit sizes in runes
type Options struct {
	// MaxSegmentLength is the size above which a piece is split by sentences
	MaxSegmentLength int
	// SentenceSplitLength caps the accumulated sentences per sub-unit
	SentenceSplitLength int
}

// DefaultOptions returns the standard size bounds
func DefaultOptions() Options {
	return Options{MaxSegmentLength: 500, SentenceSplitLength: 300}
}

var sentenceEnd = regexp.MustCompile(`[.?!…]+\s+`)

// Segmenter is immutable and safe for concurrent use
type Segmenter struct {
	indicators []*regexp.Regexp
	opts       Options
}

// New builds a Segmenter from change-point indicators. Zero options take the defaults
func New(indicators []*regexp.Regexp, opts Options) *Segmenter {
	def := DefaultOptions()
	if opts.MaxSegmentLength <= 0 {
		opts.MaxSegmentLength = def.MaxSegmentLength
	}
	if opts.SentenceSplitLength <= 0 {
		opts.SentenceSplitLength = def.SentenceSplitLength
	}
	return &Segmenter{indicators: indicators, opts: opts}
}

// Options returns the effective size bounds
func (s *Segmenter) Options() Options { return s.opts }

// Transcript segments every line and numbers units 1.. in discovery order
func (s *Segmenter) Transcript(lines []string) []Unit {
	out := make([]Unit, 0, len(lines))
	for i, l := range lines {
		out = append(out, s.Split(i+1, l)...)
	}
	for i := range out {
		out[i].ID = int64(i + 1)
	}
	return out
}

// Whole wraps each line as exactly one unit, for line-level attribution
func Whole(lines []string) []Unit {
	out := make([]Unit, len(lines))
	for i, l := range lines {
		out[i] = Unit{
			ID:      int64(i + 1),
			Line:    i + 1,
			Text:    l,
			CharEnd: utf8.RuneCountInString(l),
		}
	}
	return out
}

// ChangePoints returns the sorted, deduplicated byte offsets where an indicator matches,
// bracketed by 0 and len(line)
func (s *Segmenter) ChangePoints(line string) []int {
	seen := map[int]struct{}{0: {}, len(line): {}}
	for _, re := range s.indicators {
		for _, loc := range re.FindAllStringIndex(line, -1) {
			seen[loc[0]] = struct{}{}
		}
	}
	points := make([]int, 0, len(seen))
	for p := range seen {
		points = append(points, p)
	}
	sort.Ints(points)
	return points
}

// Split segments one line. Unit IDs are left zero; Transcript assigns them
func (s *Segmenter) Split(lineNo int, line string) []Unit {
	var out []Unit
	emit := func(start, end int, split bool) {
		out = append(out, Unit{
			Line:      lineNo,
			SubIndex:  len(out),
			Text:      line[start:end],
			CharStart: utf8.RuneCountInString(line[:start]),
			CharEnd:   utf8.RuneCountInString(line[:end]),
			Split:     split,
		})
	}

	points := s.ChangePoints(line)
	for i := 0; i+1 < len(points); i++ {
		start, end, ok := trim(line, points[i], points[i+1])
		if !ok {
			continue
		}
		if utf8.RuneCountInString(line[start:end]) <= s.opts.MaxSegmentLength {
			emit(start, end, false)
			continue
		}
		for _, sp := range sentences(line, start, end, s.opts.SentenceSplitLength) {
			emit(sp[0], sp[1], true)
		}
	}
	return out
}

// sentences groups the sentences of line[start:end] into spans of at most limit runes.
// A single sentence longer than limit stays whole
func sentences(line string, start, end, limit int) [][2]int {
	text := line[start:end]
	var pieces [][2]int
	prev := 0
	for _, d := range sentenceEnd.FindAllStringIndex(text, -1) {
		pieces = append(pieces, [2]int{start + prev, start + d[1]})
		prev = d[1]
	}
	if prev < len(text) {
		pieces = append(pieces, [2]int{start + prev, end})
	}

	var out [][2]int
	flush := func(a, b int) {
		if a, b, ok := trim(line, a, b); ok {
			out = append(out, [2]int{a, b})
		}
	}
	curStart, curEnd, curLen := 0, 0, 0
	for _, p := range pieces {
		n := utf8.RuneCountInString(line[p[0]:p[1]])
		if curLen > 0 && curLen+n > limit {
			flush(curStart, curEnd)
			curStart, curEnd, curLen = p[0], p[1], n
			continue
		}
		if curLen == 0 {
			curStart = p[0]
		}
		curEnd = p[1]
		curLen += n
	}
	if curLen > 0 {
		flush(curStart, curEnd)
	}
	return out
}

// trim narrows [start,end) of s past surrounding whitespace; ok is false when nothing is left
func trim(s string, start, end int) (int, int, bool) {
	sub := s[start:end]
	left := strings.TrimLeftFunc(sub, unicode.IsSpace)
	start += len(sub) - len(left)
	end = start + len(strings.TrimRightFunc(left, unicode.IsSpace))
	return start, end, end > start
}
