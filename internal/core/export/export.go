// Package export renders attribution results and stored tagged lines as txt, json, jsonl, csv and srt
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"speakertag/internal/core/assign"
	"speakertag/internal/core/engine"
	perr "speakertag/internal/platform/errors"
)

// Format is an output encoding
type Format string

const (
	FormatTXT   Format = "txt"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
	FormatSRT   Format = "srt"
)

// ParseFormat accepts a known format name, case-insensitively; empty means txt
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "":
		return FormatTXT, nil
	case FormatTXT, FormatJSON, FormatJSONL, FormatCSV, FormatSRT:
		return f, nil
	}
	return "", perr.WithField(perr.InvalidArgf("invalid format %q", s), "format")
}

// ContentType is the HTTP media type for f
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json; charset=utf-8"
	case FormatJSONL:
		return "application/x-ndjson; charset=utf-8"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Record is one attributed unit in export form
type Record struct {
	UnitID     int64   `json:"unit_id"`
	Line       int     `json:"line"`
	SubIndex   int     `json:"sub_index"`
	CharStart  int     `json:"char_start"`
	CharEnd    int     `json:"char_end"`
	Speaker    string  `json:"speaker"`
	Confidence float64 `json:"confidence"`
	Provenance string  `json:"provenance"`
	Pattern    string  `json:"pattern,omitempty"`
	Text       string  `json:"text"`
}

// Records flattens an engine result, one record per unit
func Records(r engine.Result) []Record {
	out := make([]Record, len(r.Units))
	for i, u := range r.Units {
		a := r.Assignments[i]
		out[i] = Record{
			UnitID:     u.ID,
			Line:       u.Line,
			SubIndex:   u.SubIndex,
			CharStart:  u.CharStart,
			CharEnd:    u.CharEnd,
			Speaker:    a.Speaker,
			Confidence: a.Confidence,
			Provenance: string(a.Provenance),
			Pattern:    a.Pattern,
			Text:       u.Text,
		}
	}
	return out
}

var recordHeader = []string{
	"unit_id", "line", "sub_index", "char_start", "char_end",
	"speaker", "confidence", "provenance", "pattern", "text",
}

// WriteRecords encodes records as f. segmented switches the txt layout to
// per-line blocks with "--- Original Line N ---" separators
func WriteRecords(w io.Writer, f Format, recs []Record, segmented bool) error {
	switch f {
	case FormatTXT:
		return writeRecordsTXT(w, recs, segmented)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if recs == nil {
			recs = []Record{}
		}
		return enc.Encode(recs)
	case FormatJSONL:
		enc := json.NewEncoder(w)
		for _, r := range recs {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(recordHeader); err != nil {
			return err
		}
		for _, r := range recs {
			row := []string{
				strconv.FormatInt(r.UnitID, 10),
				strconv.Itoa(r.Line),
				strconv.Itoa(r.SubIndex),
				strconv.Itoa(r.CharStart),
				strconv.Itoa(r.CharEnd),
				r.Speaker,
				strconv.FormatFloat(r.Confidence, 'f', 2, 64),
				r.Provenance,
				r.Pattern,
				r.Text,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}
	return perr.InvalidArgf("format %q is not supported for attribution records", f)
}

func writeRecordsTXT(w io.Writer, recs []Record, segmented bool) error {
	var b strings.Builder
	speaker, line := "", -1
	for _, r := range recs {
		fresh := false
		if segmented && r.Line != line {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "--- Original Line %d ---\n", r.Line)
			line, speaker, fresh = r.Line, "", true
		}
		if r.Speaker != speaker {
			if b.Len() > 0 && !fresh {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "[%s]\n", r.Speaker)
			speaker = r.Speaker
		}
		b.WriteString(r.Text)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Line is a stored transcript line in export form
type Line struct {
	ID         int64      `json:"id"`
	LineNumber int        `json:"line_number"`
	Text       string     `json:"text"`
	Speaker    *string    `json:"speaker"`
	TaggedAt   *time.Time `json:"tagged_at"`
	TaggedBy   *string    `json:"tagged_by"`
}

// SpeakerOr returns the line's speaker or UNKNOWN
func (l Line) SpeakerOr() string {
	if l.Speaker == nil || *l.Speaker == "" {
		return assign.Unknown
	}
	return *l.Speaker
}

// Document is a stored transcript with its lines; Transcript is encoded as-is in json
type Document struct {
	Transcript any    `json:"transcript"`
	Lines      []Line `json:"lines"`
}

// srtSlot is the fixed subtitle duration per line
const srtSlot = 5 * time.Second

// WriteLines encodes a stored transcript as f
func WriteLines(w io.Writer, f Format, doc Document) error {
	switch f {
	case FormatTXT:
		var b strings.Builder
		for i, l := range doc.Lines {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "[%s]: %s", l.SpeakerOr(), l.Text)
		}
		_, err := io.WriteString(w, b.String())
		return err
	case FormatJSON:
		if doc.Lines == nil {
			doc.Lines = []Line{}
		}
		return json.NewEncoder(w).Encode(doc)
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"Line Number", "Speaker", "Text"}); err != nil {
			return err
		}
		for _, l := range doc.Lines {
			if err := cw.Write([]string{strconv.Itoa(l.LineNumber), l.SpeakerOr(), l.Text}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case FormatSRT:
		var b strings.Builder
		for i, l := range doc.Lines {
			start := time.Duration(i) * srtSlot
			fmt.Fprintf(&b, "%d\n%s --> %s\n%s: %s\n\n", i+1, srtTime(start), srtTime(start+srtSlot), l.SpeakerOr(), l.Text)
		}
		_, err := io.WriteString(w, strings.TrimSuffix(b.String(), "\n"))
		return err
	}
	return perr.InvalidArgf("format %q is not supported for transcripts", f)
}

func srtTime(d time.Duration) string {
	s := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d,000", s/3600, (s%3600)/60, s%60)
}
