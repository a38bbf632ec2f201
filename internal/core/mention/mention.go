// Package mention finds candidate speaker references inside attribution unit text
package mention

import (
	"unicode/utf8"

	"speakertag/internal/core/speakerpack"
)

// Mention is one rule match naming a candidate speaker.
// Position is a rune offset from the start of the unit text
type Mention struct {
	UnitID     int64   `json:"unit_id"`
	Pattern    string  `json:"pattern"`
	Name       string  `json:"speaker_name"`
	Title      string  `json:"speaker_title"`
	FullName   string  `json:"full_name"`
	Number     string  `json:"number,omitempty"`
	Position   int     `json:"char_position"`
	Confidence float64 `json:"confidence"`
}

// Detector holds the compiled rules; it is immutable and safe to share between goroutines.
// Registry state lives in a Pass
type Detector struct {
	p *speakerpack.Pack
}

// New creates a Detector over pack p
func New(p *speakerpack.Pack) *Detector { return &Detector{p: p} }

// Pack returns the rule pack the detector runs
func (d *Detector) Pack() *speakerpack.Pack { return d.p }

// NewPass starts a detection pass over one transcript with an empty registry
func (d *Detector) NewPass() *Pass {
	return &Pass{d: d, reg: NewRegistry()}
}

// Detect scans text with a throwaway registry
func (d *Detector) Detect(text string) []Mention {
	return d.NewPass().Detect(text)
}

// Pass is one transcript's detection run. Units must be fed in transcript order
// so that microphone assignments are seen before the extension requests that refer to them.
// A Pass is not safe for concurrent use
type Pass struct {
	d   *Detector
	reg *Registry
}

// Registry exposes the pass's microphone registry
func (ps *Pass) Registry() *Registry { return ps.reg }

// Detect returns every mention in text, rules in pack order and matches left to right within a rule.
// Register rules update the registry as they match; resolve rules drop numbers the registry has not seen
func (ps *Pass) Detect(text string) []Mention {
	if text == "" {
		return nil
	}
	var out []Mention
	for _, r := range ps.d.p.Rules {
		for _, loc := range r.Expr.FindAllStringSubmatchIndex(text, -1) {
			name, title, number := r.Groups(text, loc)

			switch r.Kind {
			case speakerpack.KindRegister:
				if name == "" {
					continue
				}
				ps.reg.Assign(number, name)
			case speakerpack.KindResolve:
				occupant, ok := ps.reg.Occupant(number)
				if !ok {
					continue
				}
				name, title = occupant, ""
			default:
				if name == "" {
					continue
				}
			}

			pos := utf8.RuneCountInString(text[:loc[0]])
			out = append(out, Mention{
				Pattern:    r.ID,
				Name:       name,
				Title:      title,
				FullName:   FullName(name, title),
				Number:     number,
				Position:   pos,
				Confidence: ps.d.p.Score(r, pos),
			})
		}
	}
	return out
}

// FullName joins a name and an optional title
func FullName(name, title string) string {
	switch {
	case title == "":
		return name
	case name == "":
		return title
	}
	return name + " " + title
}
