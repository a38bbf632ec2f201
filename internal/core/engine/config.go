package engine

import (
	"strings"

	"speakertag/internal/core/assign"
	"speakertag/internal/core/quality"
	"speakertag/internal/core/segment"
	perr "speakertag/internal/platform/errors"
)

// Mode selects the attribution granularity
type Mode string

const (
	// ModeLine attributes whole lines
	ModeLine Mode = "line"
	// ModeSegment splits compound lines first and attributes segments
	ModeSegment Mode = "segment"
)

// ParseMode accepts "line" or "segment", case-insensitively; empty means segment
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSegment:
		return ModeSegment, nil
	case ModeLine:
		return ModeLine, nil
	}
	return "", perr.InvalidArgf("unknown attribution mode %q (want line or segment)", s)
}

// DefaultAutoTagThreshold is the confidence at or above which callers may persist an assignment
const DefaultAutoTagThreshold = 0.7

// Config is the engine boundary configuration. Zero decay fields take the mode's profile
type Config struct {
	Mode                Mode    `json:"mode"`
	ContextWindow       int     `json:"context_window"`
	MaxSegmentLength    int     `json:"max_segment_length"`
	SentenceSplitLength int     `json:"sentence_split_length"`
	AutoTagThreshold    float64 `json:"auto_tag_threshold"`
	DecayBase           float64 `json:"decay_base,omitempty"`
	DecayStep           float64 `json:"decay_step,omitempty"`
	DecayFloor          float64 `json:"decay_floor,omitempty"`
}

// DefaultConfig returns the defaults for m
func DefaultConfig(m Mode) Config {
	seg := segment.DefaultOptions()
	c := Config{
		Mode:                m,
		MaxSegmentLength:    seg.MaxSegmentLength,
		SentenceSplitLength: seg.SentenceSplitLength,
		AutoTagThreshold:    DefaultAutoTagThreshold,
	}
	c.ContextWindow = c.baseProfile().Window
	return c
}

func (c Config) baseProfile() assign.Profile {
	if c.Mode == ModeLine {
		return assign.LineProfile
	}
	return assign.SegmentProfile
}

// Profile is the assigner profile for c
func (c Config) Profile() assign.Profile {
	p := c.baseProfile()
	p.Window = c.ContextWindow
	if c.DecayBase > 0 {
		p.Base = c.DecayBase
	}
	if c.DecayStep > 0 {
		p.Step = c.DecayStep
	}
	if c.DecayFloor > 0 {
		p.Floor = c.DecayFloor
	}
	return p
}

// Level is the quality level matching the mode
func (c Config) Level() quality.Level {
	if c.Mode == ModeLine {
		return quality.LevelLine
	}
	return quality.LevelSegment
}

// Validate rejects configurations the engine cannot run with
func (c Config) Validate() error {
	if c.Mode != ModeLine && c.Mode != ModeSegment {
		return perr.WithField(perr.InvalidArgf("unknown mode %q", c.Mode), "mode")
	}
	if c.ContextWindow < 0 {
		return perr.WithField(perr.InvalidArgf("context window must be >= 0, got %d", c.ContextWindow), "context_window")
	}
	if c.Mode == ModeSegment {
		if c.MaxSegmentLength <= 0 {
			return perr.WithField(perr.InvalidArgf("max segment length must be > 0, got %d", c.MaxSegmentLength), "max_segment_length")
		}
		if c.SentenceSplitLength <= 0 || c.SentenceSplitLength > c.MaxSegmentLength {
			return perr.WithField(perr.InvalidArgf("sentence split length must be in (0,%d], got %d",
				c.MaxSegmentLength, c.SentenceSplitLength), "sentence_split_length")
		}
	}
	if c.AutoTagThreshold < 0 || c.AutoTagThreshold > 1 {
		return perr.WithField(perr.InvalidArgf("auto-tag threshold must be in [0,1], got %v", c.AutoTagThreshold), "auto_tag_threshold")
	}
	p := c.Profile()
	if p.Base > 1 || p.Step < 0 || p.Floor < 0 || p.Floor > p.Base {
		return perr.WithField(perr.InvalidArgf("decay profile out of range: base=%v step=%v floor=%v",
			p.Base, p.Step, p.Floor), "decay")
	}
	return nil
}
