package module

import (
	"speakertag/internal/platform/config"
)

// Options holds configuration settings for the attribution module
type Options struct {
	Mode                string
	ContextWindow       *int // nil keeps the mode default; 0 disables carry-over
	MaxSegmentLength    int
	SentenceSplitLength int
	AutoTagThreshold    float64
	DecayBase           float64
	DecayStep           float64
	DecayFloor          float64
	Workers             int
	PatternsFile        string
}

// FromConfig reads CORE_ATTRIBUTION_ settings. Zero values keep the engine defaults of the chosen mode
func FromConfig(cfg config.Conf) Options {
	af := cfg.Prefix("CORE_ATTRIBUTION_")
	return Options{
		Mode:                af.MayEnum("MODE", "segment", "line", "segment"),
		ContextWindow:       af.OptInt("CONTEXT_WINDOW"),
		MaxSegmentLength:    af.MayInt("MAX_SEGMENT_LENGTH", 0),
		SentenceSplitLength: af.MayInt("SENTENCE_SPLIT_LENGTH", 0),
		AutoTagThreshold:    af.MayFloat64("AUTO_TAG_THRESHOLD", 0),
		DecayBase:           af.MayFloat64("DECAY_BASE", 0),
		DecayStep:           af.MayFloat64("DECAY_STEP", 0),
		DecayFloor:          af.MayFloat64("DECAY_FLOOR", 0),
		Workers:             af.MayInt("WORKERS", 2),
		PatternsFile:        af.MayString("PATTERNS_FILE", ""),
	}
}

// merge lets set overrides win over configured values
func (o Options) merge(over Options) Options {
	if over.Mode != "" {
		o.Mode = over.Mode
	}
	if over.ContextWindow != nil {
		o.ContextWindow = over.ContextWindow
	}
	if over.MaxSegmentLength != 0 {
		o.MaxSegmentLength = over.MaxSegmentLength
	}
	if over.SentenceSplitLength != 0 {
		o.SentenceSplitLength = over.SentenceSplitLength
	}
	if over.AutoTagThreshold != 0 {
		o.AutoTagThreshold = over.AutoTagThreshold
	}
	if over.DecayBase != 0 {
		o.DecayBase = over.DecayBase
	}
	if over.DecayStep != 0 {
		o.DecayStep = over.DecayStep
	}
	if over.DecayFloor != 0 {
		o.DecayFloor = over.DecayFloor
	}
	if over.Workers != 0 {
		o.Workers = over.Workers
	}
	if over.PatternsFile != "" {
		o.PatternsFile = over.PatternsFile
	}
	return o
}
