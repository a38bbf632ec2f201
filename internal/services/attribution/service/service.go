// Package service runs the attribution engine against stored transcripts
package service

import (
	"context"
	"io"
	"time"

	"speakertag/internal/core/engine"
	"speakertag/internal/core/quality"
	"speakertag/internal/core/speakerpack"
	"speakertag/internal/modkit/repokit"
	perr "speakertag/internal/platform/errors"
	"speakertag/internal/platform/logger"
	"speakertag/internal/platform/observe"
	"speakertag/internal/services/attribution/domain"
	"speakertag/internal/services/attribution/repo"
	"speakertag/internal/services/attribution/sink"
	tdom "speakertag/internal/services/transcripts/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// TaggedBy marks line tags committed by the engine
const TaggedBy = "speakertag"

// Config selects the default mode and overrides the engine defaults. Zero fields, and a nil
// ContextWindow, keep the mode's default
type Config struct {
	Mode                engine.Mode
	ContextWindow       *int
	MaxSegmentLength    int
	SentenceSplitLength int
	AutoTagThreshold    float64
	DecayBase           float64
	DecayStep           float64
	DecayFloor          float64
	Workers             int
}

// EngineConfig is the engine configuration for mode m under c
func (c Config) EngineConfig(m engine.Mode) engine.Config {
	ec := engine.DefaultConfig(m)
	if c.ContextWindow != nil {
		ec.ContextWindow = *c.ContextWindow
	}
	if c.MaxSegmentLength > 0 {
		ec.MaxSegmentLength = c.MaxSegmentLength
	}
	if c.SentenceSplitLength > 0 {
		ec.SentenceSplitLength = c.SentenceSplitLength
	}
	if c.AutoTagThreshold > 0 {
		ec.AutoTagThreshold = c.AutoTagThreshold
	}
	ec.DecayBase, ec.DecayStep, ec.DecayFloor = c.DecayBase, c.DecayStep, c.DecayFloor
	return ec
}

// Option configures a Service
type Option func(*Service)

// WithSink ships run summaries to s
func WithSink(s sink.Sink) Option { return func(x *Service) { x.sink = s } }

// WithMetrics records runs and commits on m
func WithMetrics(m *observe.Metrics) Option { return func(x *Service) { x.metrics = m } }

// Service implements domain.RunnerPort
type Service struct {
	transcripts tdom.ReaderPort
	db          repokit.TxRunner
	binder      repokit.Binder[repo.Storage]
	engines     map[engine.Mode]*engine.Engine
	cfg         Config
	sink        sink.Sink
	metrics     *observe.Metrics

	newID func() string
	now   func() time.Time
}

var _ domain.RunnerPort = (*Service)(nil)

// New builds one engine per mode over pack. An invalid override is an InvalidArgument error
func New(pack *speakerpack.Pack, ports domain.Ports, db repokit.TxRunner, binder repokit.Binder[repo.Storage], cfg Config, opts ...Option) (*Service, error) {
	if pack == nil || ports.Transcripts == nil || db == nil || binder == nil {
		panic("attribution.Service requires a pack, a transcript reader, a TxRunner and a binder")
	}
	if cfg.Mode == "" {
		cfg.Mode = engine.ModeSegment
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	s := &Service{
		transcripts: ports.Transcripts,
		db:          db,
		binder:      binder,
		cfg:         cfg,
		sink:        sink.Nop{},
		newID:       func() string { return uuid.NewString() },
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}

	s.engines = make(map[engine.Mode]*engine.Engine, 2)
	for _, m := range []engine.Mode{engine.ModeLine, engine.ModeSegment} {
		e, err := engine.New(pack, cfg.EngineConfig(m), engine.WithMetrics(s.metrics))
		if err != nil {
			return nil, err
		}
		s.engines[m] = e
	}
	return s, nil
}

func (s *Service) engineFor(mode string) (*engine.Engine, error) {
	if mode == "" {
		return s.engines[s.cfg.Mode], nil
	}
	m, err := engine.ParseMode(mode)
	if err != nil {
		return nil, perr.WithField(err, "mode")
	}
	return s.engines[m], nil
}

func (s *Service) run(ctx context.Context, mode string, texts []string) (engine.Result, error) {
	e, err := s.engineFor(mode)
	if err != nil {
		return engine.Result{}, err
	}
	return e.Run(ctx, texts)
}

// attribute loads the transcript lines and runs a fresh engine pass over them
func (s *Service) attribute(ctx context.Context, transcriptID int64, mode string) (engine.Result, []tdom.Line, error) {
	if _, err := s.engineFor(mode); err != nil {
		return engine.Result{}, nil, err
	}
	lines, err := s.transcripts.AllLines(ctx, transcriptID)
	if err != nil {
		return engine.Result{}, nil, err
	}
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
	}
	res, err := s.run(ctx, mode, texts)
	if err != nil {
		return engine.Result{}, nil, err
	}
	return res, lines, nil
}

// Run attributes one transcript. Unless DryRun is set, one transaction holds the transcript lease,
// replaces its stored segments and commits confident line tags to lines that have no speaker yet
func (s *Service) Run(ctx context.Context, in domain.RunInput) (domain.RunResult, error) {
	started := s.now()
	runID := s.newID()
	ctx = logger.WithRun(ctx, in.TranscriptID, runID)
	log := logger.C(ctx)

	res, lines, err := s.attribute(ctx, in.TranscriptID, in.Mode)
	if err != nil {
		return domain.RunResult{}, err
	}

	out := domain.RunResult{
		RunID:        runID,
		TranscriptID: in.TranscriptID,
		Mode:         string(res.Config.Mode),
		DryRun:       in.DryRun,
		Stats:        res.Stats,
	}

	if !in.DryRun {
		segs := Segments(in.TranscriptID, runID, res, lines)
		tags := LineTags(res, lines)
		var committed int
		err := repokit.InTx(ctx, s.db, s.binder, func(st repo.Storage) error {
			if err := st.Lease(ctx, in.TranscriptID); err != nil {
				if repo.IsRunHeld(err) {
					return err
				}
				return perr.FromPostgres(err, "claim transcript")
			}
			if err := st.Replace(ctx, in.TranscriptID, segs); err != nil {
				return perr.FromPostgres(err, "store segments")
			}
			n, err := st.CommitTags(ctx, in.TranscriptID, tags, TaggedBy, s.now())
			if err != nil {
				return perr.FromPostgres(err, "commit tags")
			}
			committed = n
			return nil
		})
		if err != nil {
			return domain.RunResult{}, err
		}
		out.Committed = committed
		s.metrics.RecordCommitted(ctx, committed)
	}

	out.Duration = s.now().Sub(started)
	out.DurationMS = out.Duration.Milliseconds()

	if err := s.sink.Record(ctx, record(out, started)); err != nil {
		log.Warn().Err(err).Msg("attribution sink write failed")
	}
	log.Info().
		Str("mode", out.Mode).
		Bool("dry_run", out.DryRun).
		Int("units", out.Stats.TotalUnits).
		Float64("coverage", out.Stats.AssignedPct).
		Int("committed", out.Committed).
		Str("tier", string(out.Stats.Tier)).
		Dur("took", out.Duration).
		Msg("attribution run")
	return out, nil
}

// RunAll attributes transcripts concurrently with at most Workers in flight.
// Results keep the order of ids; an empty ids list means every stored transcript
func (s *Service) RunAll(ctx context.Context, ids []int64, mode string, dryRun bool) ([]domain.RunResult, error) {
	if len(ids) == 0 {
		ts, err := s.transcripts.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, t := range ts {
			ids = append(ids, t.ID)
		}
	}
	if _, err := s.engineFor(mode); err != nil {
		return nil, err
	}

	out := make([]domain.RunResult, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, id := range ids {
		g.Go(func() error {
			r, err := s.Run(gctx, domain.RunInput{TranscriptID: id, Mode: mode, DryRun: dryRun})
			if err != nil {
				return perr.WithOp(err, "transcript "+itoa(id))
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Segments returns the stored unit assignments of a transcript
func (s *Service) Segments(ctx context.Context, transcriptID int64) ([]domain.Segment, error) {
	if _, err := s.transcripts.Get(ctx, transcriptID); err != nil {
		return nil, err
	}
	segs, err := s.binder.Bind(s.db).List(ctx, transcriptID)
	if err != nil {
		return nil, perr.FromPostgres(err, "list segments")
	}
	if segs == nil {
		segs = []domain.Segment{}
	}
	return segs, nil
}

// Report runs a dry pass and writes the operator quality report
func (s *Service) Report(ctx context.Context, w io.Writer, transcriptID int64, mode string) error {
	if _, err := s.engineFor(mode); err != nil {
		return err
	}
	texts, err := s.transcripts.Texts(ctx, transcriptID)
	if err != nil {
		return err
	}
	res, err := s.run(ctx, mode, texts)
	if err != nil {
		return err
	}
	return quality.WriteReport(w, res.Stats)
}

func record(r domain.RunResult, started time.Time) domain.RunRecord {
	return domain.RunRecord{
		RunID:          r.RunID,
		TranscriptID:   r.TranscriptID,
		Mode:           r.Mode,
		DryRun:         r.DryRun,
		TotalUnits:     r.Stats.TotalUnits,
		Assigned:       r.Stats.Assigned,
		UniqueSpeakers: r.Stats.UniqueSpeakers,
		AvgConfidence:  r.Stats.AvgConfidence,
		Tier:           string(r.Stats.Tier),
		Committed:      r.Committed,
		DurationMS:     r.DurationMS,
		StartedAt:      started,
	}
}
