// Package service moves transcripts and tags between databases through JSON snapshots
package service

import (
	"context"
	"slices"
	"time"

	"speakertag/internal/modkit/repokit"
	perr "speakertag/internal/platform/errors"
	"speakertag/internal/services/sync/domain"
	"speakertag/internal/services/sync/repo"
)

// Service exports and imports snapshots of one database
type Service struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Storage]
	now    func() time.Time
}

var (
	_ domain.Exporter = (*Service)(nil)
	_ domain.Importer = (*Service)(nil)
	_ domain.Counter  = (*Service)(nil)
)

// New constructs the sync service over one database
func New(db repokit.TxRunner, binder repokit.Binder[repo.Storage]) *Service {
	if db == nil {
		panic("sync.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("sync.Service requires a non nil Repo binder")
	}
	return &Service{db: db, binder: binder, now: func() time.Time { return time.Now().UTC() }}
}

// Export reads every transcript, line and speaker. source labels the snapshot
func (s *Service) Export(ctx context.Context, source string) (domain.Snapshot, error) {
	r := s.binder.Bind(s.db)
	snap := domain.Snapshot{ExportedAt: s.now(), Source: source}

	rows, err := r.Transcripts(ctx)
	if err != nil {
		return domain.Snapshot{}, perr.FromPostgres(err, "export transcripts")
	}
	snap.Transcripts = make([]domain.Transcript, 0, len(rows))
	for _, row := range rows {
		t := row.Transcript
		if t.Lines, err = r.Lines(ctx, row.ID); err != nil {
			return domain.Snapshot{}, perr.FromPostgresf(err, "export lines of %s", t.Filename)
		}
		if t.Lines == nil {
			t.Lines = []domain.Line{}
		}
		snap.Transcripts = append(snap.Transcripts, t)
	}
	if snap.Speakers, err = r.Speakers(ctx); err != nil {
		return domain.Snapshot{}, perr.FromPostgres(err, "export speakers")
	}
	if snap.Speakers == nil {
		snap.Speakers = []domain.Speaker{}
	}
	return snap, nil
}

// Import applies snap in one transaction
func (s *Service) Import(ctx context.Context, snap domain.Snapshot, mode domain.Mode) (domain.ImportStats, error) {
	var st domain.ImportStats
	err := repokit.InTx(ctx, s.db, s.binder, func(r repo.Storage) error {
		if mode == domain.ModeReplace {
			if err := r.Clear(ctx); err != nil {
				return perr.FromPostgres(err, "clear target")
			}
		}
		for _, sp := range snap.Speakers {
			if err := r.InsertSpeaker(ctx, sp); err != nil {
				return perr.FromPostgresf(err, "import speaker %q", sp.Name)
			}
		}
		for _, t := range snap.Transcripts {
			if err := s.importOne(ctx, r, t, mode, &st); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.ImportStats{}, err
	}
	return st, nil
}

func (s *Service) importOne(ctx context.Context, r repo.Storage, t domain.Transcript, mode domain.Mode, st *domain.ImportStats) error {
	id, exists, err := r.TranscriptID(ctx, t.Filename)
	if err != nil {
		return perr.FromPostgresf(err, "lookup %s", t.Filename)
	}

	switch {
	case mode == domain.ModeTagsOnly:
		if !exists {
			return nil
		}
		n, err := r.OverwriteTags(ctx, id, tagged(t.Lines), s.now())
		if err != nil {
			return perr.FromPostgresf(err, "sync tags of %s", t.Filename)
		}
		st.TagsUpdated += n

	case exists:
		if mode != domain.ModeMerge {
			return nil
		}
		n, err := r.FillTags(ctx, id, tagged(t.Lines))
		if err != nil {
			return perr.FromPostgresf(err, "merge tags of %s", t.Filename)
		}
		st.TagsUpdated += n

	default:
		id, err := r.InsertTranscript(ctx, t)
		if err != nil {
			return perr.FromPostgresf(err, "import %s", t.Filename)
		}
		n, err := r.InsertLines(ctx, id, t.Lines)
		if err != nil {
			return perr.FromPostgresf(err, "import lines of %s", t.Filename)
		}
		st.Transcripts++
		st.Lines += n
	}
	return nil
}

func tagged(lines []domain.Line) []domain.Line {
	out := make([]domain.Line, 0, len(lines))
	for _, l := range lines {
		if l.Tagged() {
			out = append(out, l)
		}
	}
	return out
}

// TaggedCounts reports tagged lines per transcript filename
func (s *Service) TaggedCounts(ctx context.Context) (map[string]int, error) {
	m, err := s.binder.Bind(s.db).TaggedCounts(ctx)
	if err != nil {
		return nil, perr.FromPostgres(err, "count tags")
	}
	return m, nil
}

// Compare contrasts two databases by filename and tagged-line counts
func Compare(ctx context.Context, a, b domain.Counter) (domain.Comparison, error) {
	ca, err := a.TaggedCounts(ctx)
	if err != nil {
		return domain.Comparison{}, err
	}
	cb, err := b.TaggedCounts(ctx)
	if err != nil {
		return domain.Comparison{}, err
	}
	return Diff(ca, cb), nil
}

// Diff compares tagged-line counts keyed by filename. Lists are sorted
func Diff(a, b map[string]int) domain.Comparison {
	out := domain.Comparison{OnlyA: []string{}, OnlyB: []string{}, TagDiffs: []domain.TagDiff{}}
	for name, na := range a {
		nb, ok := b[name]
		if !ok {
			out.OnlyA = append(out.OnlyA, name)
			continue
		}
		out.Both++
		if na != nb {
			out.TagDiffs = append(out.TagDiffs, domain.TagDiff{Filename: name, A: na, B: nb})
		}
	}
	for name := range b {
		if _, ok := a[name]; !ok {
			out.OnlyB = append(out.OnlyB, name)
		}
	}
	slices.Sort(out.OnlyA)
	slices.Sort(out.OnlyB)
	slices.SortFunc(out.TagDiffs, func(x, y domain.TagDiff) int {
		switch {
		case x.Filename < y.Filename:
			return -1
		case x.Filename > y.Filename:
			return 1
		}
		return 0
	})
	return out
}
