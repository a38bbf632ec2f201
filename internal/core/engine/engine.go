// Package engine runs the attribution pipeline for one transcript:
// segmentation, a single detection pass, and the context-window assigner
package engine

import (
	"context"
	"time"

	"speakertag/internal/core/assign"
	"speakertag/internal/core/mention"
	"speakertag/internal/core/quality"
	"speakertag/internal/core/segment"
	"speakertag/internal/core/speakerpack"
	perr "speakertag/internal/platform/errors"
	"speakertag/internal/platform/observe"
)

// cancelEvery is how many units run between cooperative cancellation checks
const cancelEvery = 256

// Engine is immutable after New and safe for concurrent Runs
type Engine struct {
	cfg     Config
	prof    assign.Profile
	det     *mention.Detector
	seg     *segment.Segmenter
	metrics *observe.Metrics
	now     func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithMetrics records every run on m
func WithMetrics(m *observe.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New validates cfg and builds an engine over pack p. A carried confidence may not start
// above the pack's confidence cap
func New(p *speakerpack.Pack, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if base := cfg.Profile().Base; base > p.Boost.Cap {
		return nil, perr.WithField(perr.InvalidArgf("decay base %v exceeds the confidence cap %v", base, p.Boost.Cap), "decay_base")
	}
	e := &Engine{
		cfg:  cfg,
		prof: cfg.Profile(),
		det:  mention.New(p),
		seg: segment.New(p.Indicators, segment.Options{
			MaxSegmentLength:    cfg.MaxSegmentLength,
			SentenceSplitLength: cfg.SentenceSplitLength,
		}),
		now: time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Config returns the validated configuration
func (e *Engine) Config() Config { return e.cfg }

// Detector exposes the mention detector
func (e *Engine) Detector() *mention.Detector { return e.det }

// Result is the full output of one run. Mentions[i] belongs to Units[i] and Assignments[i]
type Result struct {
	Config      Config              `json:"config"`
	Units       []segment.Unit      `json:"units"`
	Mentions    [][]mention.Mention `json:"mentions"`
	Assignments []assign.Assignment `json:"assignments"`
	Stats       quality.Stats       `json:"stats"`
	Seats       []mention.Seat      `json:"seats"`
	Duration    time.Duration       `json:"duration"`
}

// Units builds the attribution units for lines under the engine mode
func (e *Engine) Units(lines []string) []segment.Unit {
	if e.cfg.Mode == ModeLine {
		return segment.Whole(lines)
	}
	return e.seg.Transcript(lines)
}

// Run attributes one transcript. lines are trimmed, non-blank and in order.
// The only error is ctx's, checked between units
func (e *Engine) Run(ctx context.Context, lines []string) (Result, error) {
	start := e.now()
	units := e.Units(lines)

	pass := e.det.NewPass()
	mentions := make([][]mention.Mention, len(units))
	for i, u := range units {
		if i%cancelEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		ms := pass.Detect(u.Text)
		for j := range ms {
			ms[j].UnitID = u.ID
		}
		mentions[i] = ms
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	as := assign.Run(e.prof, units, mentions)

	res := Result{
		Config:      e.cfg,
		Units:       units,
		Mentions:    mentions,
		Assignments: as,
		Stats:       quality.Compute(e.cfg.Level(), as),
		Seats:       pass.Registry().Seats(),
		Duration:    e.now().Sub(start),
	}
	e.record(ctx, res)
	return res, nil
}

func (e *Engine) record(ctx context.Context, r Result) {
	if e.metrics == nil {
		return
	}
	byRule := make(map[string]int)
	for _, ms := range r.Mentions {
		for _, m := range ms {
			byRule[m.Pattern]++
		}
	}
	e.metrics.RecordRun(ctx, observe.RunSummary{
		Mode:     string(e.cfg.Mode),
		Duration: r.Duration,
		Units: map[string]int{
			string(assign.Fresh):   r.Stats.Fresh,
			string(assign.Carried): r.Stats.Carried,
			string(assign.Expired): r.Stats.Expired,
		},
		Mentions: byRule,
	})
}

// Committable returns the assignments a caller may persist without review
func (r Result) Committable() []assign.Assignment {
	var out []assign.Assignment
	for _, a := range r.Assignments {
		if a.Known() && a.Confidence >= r.Config.AutoTagThreshold {
			out = append(out, a)
		}
	}
	return out
}

// LineTag is a whole-line speaker verdict derived from unit assignments
type LineTag struct {
	Line       int     `json:"line"`
	Speaker    string  `json:"speaker"`
	Confidence float64 `json:"confidence"`
}

// LineTags folds assignments back to lines. A line gets a tag only when all of its units
// name the same known speaker and the weakest of them meets the auto-tag threshold
func (r Result) LineTags() []LineTag {
	var out []LineTag
	for i := 0; i < len(r.Assignments); {
		j := i
		line := r.Assignments[i].Line
		speaker := r.Assignments[i].Speaker
		minConf := r.Assignments[i].Confidence
		agree := r.Assignments[i].Known()
		for j < len(r.Assignments) && r.Assignments[j].Line == line {
			a := r.Assignments[j]
			if a.Speaker != speaker || !a.Known() {
				agree = false
			}
			if a.Confidence < minConf {
				minConf = a.Confidence
			}
			j++
		}
		if agree && minConf >= r.Config.AutoTagThreshold {
			out = append(out, LineTag{Line: line, Speaker: speaker, Confidence: minConf})
		}
		i = j
	}
	return out
}
