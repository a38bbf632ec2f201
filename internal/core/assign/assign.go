// Package assign turns per-unit mentions into one speaker assignment per unit.
// It is a forward-only reducer: Step folds one unit into an immutable State
package assign

import (
	"speakertag/internal/core/mention"
	"speakertag/internal/core/segment"
)

// Unknown is the speaker of a unit nobody could be attributed to
const Unknown = "UNKNOWN"

// Provenance says how an assignment was reached
type Provenance string

const (
	// Fresh means the unit carried its own mention
	Fresh Provenance = "fresh"
	// Carried means the previous speaker was kept within the context window
	Carried Provenance = "carried"
	// Expired means no speaker could be carried
	Expired Provenance = "expired"
)

// Profile holds the carry-over window and decay constants
type Profile struct {
	Name   string  `json:"name"`
	Window int     `json:"context_window"`
	Base   float64 `json:"decay_base"`
	Step   float64 `json:"decay_step"`
	Floor  float64 `json:"decay_floor"`
}

var (
	// LineProfile is tuned for whole-line units
	LineProfile = Profile{Name: "line", Window: 20, Base: 0.8, Step: 0.05, Floor: 0.3}
	// SegmentProfile is tuned for sub-line segments
	SegmentProfile = Profile{Name: "segment", Window: 10, Base: 0.85, Step: 0.08, Floor: 0.3}
)

// Carry is the confidence of a carried assignment since units after the last fresh one
func (p Profile) Carry(since int) float64 {
	c := p.Base - float64(since)*p.Step
	if c < p.Floor {
		return p.Floor
	}
	return c
}

// State is the reducer state between units. The zero value has no speaker
type State struct {
	Speaker string
	Since   int
}

// HasSpeaker reports whether a speaker has been seen yet
func (s State) HasSpeaker() bool { return s.Speaker != "" }

// Assignment is the engine output for one unit
type Assignment struct {
	UnitID     int64      `json:"unit_id"`
	Line       int        `json:"line"`
	SubIndex   int        `json:"sub_index"`
	Speaker    string     `json:"speaker"`
	Confidence float64    `json:"confidence"`
	Provenance Provenance `json:"provenance"`
	Pattern    string     `json:"pattern,omitempty"`
	// Since is the unit distance from the last fresh detection at the time of assignment
	Since int `json:"since"`
}

// Known reports whether the unit was attributed to a speaker
func (a Assignment) Known() bool { return a.Speaker != Unknown }

// Best picks the strongest mention: highest confidence, then earliest position, then detection order
func Best(ms []mention.Mention) (mention.Mention, bool) {
	if len(ms) == 0 {
		return mention.Mention{}, false
	}
	best := ms[0]
	for _, m := range ms[1:] {
		if m.Confidence > best.Confidence ||
			(m.Confidence == best.Confidence && m.Position < best.Position) {
			best = m
		}
	}
	return best, true
}

// Step assigns unit u given its mentions and returns the next state
func Step(p Profile, s State, u segment.Unit, ms []mention.Mention) (State, Assignment) {
	a := Assignment{UnitID: u.ID, Line: u.Line, SubIndex: u.SubIndex}

	if m, ok := Best(ms); ok {
		a.Speaker = m.FullName
		a.Confidence = m.Confidence
		a.Provenance = Fresh
		a.Pattern = m.Pattern
		return State{Speaker: m.FullName}, a
	}

	a.Since = s.Since
	if s.HasSpeaker() && s.Since < p.Window {
		a.Speaker = s.Speaker
		a.Confidence = p.Carry(s.Since)
		a.Provenance = Carried
	} else {
		a.Speaker = Unknown
		a.Provenance = Expired
	}
	return State{Speaker: s.Speaker, Since: s.Since + 1}, a
}

// Run folds Step over units in order. mentions[i] belongs to units[i]
func Run(p Profile, units []segment.Unit, mentions [][]mention.Mention) []Assignment {
	out := make([]Assignment, len(units))
	var s State
	for i, u := range units {
		var ms []mention.Mention
		if i < len(mentions) {
			ms = mentions[i]
		}
		s, out[i] = Step(p, s, u, ms)
	}
	return out
}
