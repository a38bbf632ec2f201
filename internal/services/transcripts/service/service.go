// Package service contains the transcript store workflows: loading, paging, tagging and auto-commit
package service

import (
	"context"
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"speakertag/internal/core/normalize"
	"speakertag/internal/modkit/repokit"
	perr "speakertag/internal/platform/errors"
	"speakertag/internal/services/transcripts/domain"
	"speakertag/internal/services/transcripts/repo"
)

// Config bounds line paging
type Config struct {
	PageSize    int
	MaxPageSize int
}

const maxSpeakerLen = 255

// Service implements domain.ReaderPort and domain.WriterPort
type Service struct {
	Repo   repo.Storage
	binder repokit.Binder[repo.Storage]
	db     repokit.TxRunner
	cfg    Config
	now    func() time.Time
}

var (
	_ domain.ReaderPort = (*Service)(nil)
	_ domain.WriterPort = (*Service)(nil)
)

// New constructs the transcript service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Storage], cfg Config) *Service {
	if db == nil {
		panic("transcripts.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("transcripts.Service requires a non nil Repo binder")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.MaxPageSize < cfg.PageSize {
		cfg.MaxPageSize = max(cfg.PageSize, 500)
	}
	return &Service{
		Repo:   binder.Bind(db),
		binder: binder,
		db:     db,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// List returns all transcripts, newest session first
func (s *Service) List(ctx context.Context) ([]domain.Transcript, error) {
	ts, err := s.Repo.List(ctx)
	if err != nil {
		return nil, perr.FromPostgres(err, "list transcripts")
	}
	if ts == nil {
		ts = []domain.Transcript{}
	}
	return ts, nil
}

// Get returns one transcript
func (s *Service) Get(ctx context.Context, id int64) (domain.Transcript, error) {
	t, err := s.Repo.Get(ctx, id)
	if err != nil {
		return domain.Transcript{}, notFound(err, "transcript %d", id)
	}
	return t, nil
}

// Texts is the ordered line text of a transcript, as the attribution engine consumes it
func (s *Service) Texts(ctx context.Context, id int64) ([]string, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	xs, err := s.Repo.Texts(ctx, id)
	if err != nil {
		return nil, perr.FromPostgres(err, "read transcript text")
	}
	return xs, nil
}

// AllLines returns every line of a transcript in order
func (s *Service) AllLines(ctx context.Context, id int64) ([]domain.Line, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	ls, err := s.Repo.AllLines(ctx, id)
	if err != nil {
		return nil, perr.FromPostgres(err, "read transcript lines")
	}
	return ls, nil
}

// Lines returns one page of lines, optionally filtered by a case-insensitive substring
func (s *Service) Lines(ctx context.Context, in domain.ListLinesInput) (domain.LinePage, error) {
	if _, err := s.Get(ctx, in.TranscriptID); err != nil {
		return domain.LinePage{}, err
	}
	page := max(in.Page, 1)
	per := in.PerPage
	if per <= 0 {
		per = s.cfg.PageSize
	}
	per = min(per, s.cfg.MaxPageSize)
	search := strings.TrimSpace(in.Search)

	total, err := s.Repo.CountLines(ctx, in.TranscriptID, search)
	if err != nil {
		return domain.LinePage{}, perr.FromPostgres(err, "count lines")
	}
	lines, err := s.Repo.PageLines(ctx, in.TranscriptID, search, per, (page-1)*per)
	if err != nil {
		return domain.LinePage{}, perr.FromPostgres(err, "page lines")
	}
	if lines == nil {
		lines = []domain.Line{}
	}
	return domain.LinePage{
		Lines: lines,
		Pagination: domain.Pagination{
			Page:    page,
			PerPage: per,
			Total:   total,
			Pages:   domain.Pages(total, per),
		},
	}, nil
}

// Speakers counts tagged lines per speaker in one transcript
func (s *Service) Speakers(ctx context.Context, id int64) ([]domain.SpeakerCount, error) {
	xs, err := s.Repo.Speakers(ctx, id)
	if err != nil {
		return nil, perr.FromPostgres(err, "speakers")
	}
	if xs == nil {
		xs = []domain.SpeakerCount{}
	}
	return xs, nil
}

// AllSpeakers counts tagged lines per speaker across all transcripts
func (s *Service) AllSpeakers(ctx context.Context) ([]domain.SpeakerCount, error) {
	xs, err := s.Repo.AllSpeakers(ctx)
	if err != nil {
		return nil, perr.FromPostgres(err, "all speakers")
	}
	if xs == nil {
		xs = []domain.SpeakerCount{}
	}
	return xs, nil
}

// Stats reports tagging progress. progress is a percentage rounded to 2 decimals
func (s *Service) Stats(ctx context.Context, id int64) (domain.Stats, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return domain.Stats{}, err
	}
	total, err := s.Repo.CountLines(ctx, id, "")
	if err != nil {
		return domain.Stats{}, perr.FromPostgres(err, "count lines")
	}
	tagged, err := s.Repo.CountTagged(ctx, id)
	if err != nil {
		return domain.Stats{}, perr.FromPostgres(err, "count tagged")
	}
	speakers, err := s.Speakers(ctx, id)
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.Stats{
		TotalLines:    total,
		TaggedLines:   tagged,
		UntaggedLines: total - tagged,
		Progress:      progress(tagged, total),
		Speakers:      speakers,
	}, nil
}

func progress(tagged, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(tagged)/float64(total)*100*100) / 100
}

// Import creates a transcript with its lines numbered from 1. Lines are normalized and blanks dropped.
// An existing filename is a conflict
func (s *Service) Import(ctx context.Context, in domain.ImportInput) (domain.Transcript, error) {
	name := strings.TrimSpace(in.Filename)
	if name == "" {
		return domain.Transcript{}, perr.WithField(perr.InvalidArgf("filename is required"), "filename")
	}
	lines := make([]string, 0, len(in.Lines))
	for _, l := range in.Lines {
		if n := normalize.Line(l); n != "" {
			lines = append(lines, n)
		}
	}

	var out domain.Transcript
	err := repokit.InTx(ctx, s.db, s.binder, func(r repo.Storage) error {
		if _, exists, err := r.IDByFilename(ctx, name); err != nil {
			return perr.FromPostgres(err, "lookup transcript")
		} else if exists {
			return perr.WithField(perr.Conflictf("transcript %q already exists", name), "filename")
		}
		t, err := r.InsertTranscript(ctx, name, in.Date, len(lines))
		if err != nil {
			return perr.FromPostgres(err, "insert transcript")
		}
		if err := r.InsertLines(ctx, t.ID, lines); err != nil {
			return perr.FromPostgres(err, "insert lines")
		}
		out = t
		return nil
	})
	return out, err
}

// TagLine sets or clears one line's speaker
func (s *Service) TagLine(ctx context.Context, in domain.TagInput) (domain.Line, error) {
	speaker, err := cleanSpeaker(in.Speaker)
	if err != nil {
		return domain.Line{}, err
	}
	var out domain.Line
	err = repokit.InTx(ctx, s.db, s.binder, func(r repo.Storage) error {
		l, err := r.Line(ctx, in.LineID)
		if err != nil {
			return notFound(err, "line %d", in.LineID)
		}
		if l.TranscriptID != in.TranscriptID {
			return perr.WithField(perr.InvalidArgf("line %d does not belong to transcript %d", in.LineID, in.TranscriptID), "line_id")
		}
		updated, err := s.apply(ctx, r, []int64{in.LineID}, speaker, in.TaggedBy)
		if err != nil {
			return err
		}
		out = updated[0]
		return nil
	})
	return out, err
}

// BulkTag applies one speaker to many lines atomically. Every id must be a line of the transcript
func (s *Service) BulkTag(ctx context.Context, in domain.BulkTagInput) (domain.BulkResult, error) {
	if len(in.LineIDs) == 0 {
		return domain.BulkResult{}, perr.WithField(perr.InvalidArgf("no line ids provided"), "line_ids")
	}
	speaker, err := cleanSpeaker(in.Speaker)
	if err != nil {
		return domain.BulkResult{}, err
	}
	ids := slices.Clone(in.LineIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	var out domain.BulkResult
	err = repokit.InTx(ctx, s.db, s.binder, func(r repo.Storage) error {
		found, err := r.LinesByIDs(ctx, in.TranscriptID, ids)
		if err != nil {
			return perr.FromPostgres(err, "lookup lines")
		}
		if len(found) != len(ids) {
			return perr.WithField(perr.InvalidArgf("some lines not found or belong to a different transcript"), "line_ids")
		}
		updated, err := s.apply(ctx, r, ids, speaker, in.TaggedBy)
		if err != nil {
			return err
		}
		slices.SortFunc(updated, func(a, b domain.Line) int { return a.LineNumber - b.LineNumber })
		out = domain.BulkResult{Updated: len(updated), Lines: updated}
		return nil
	})
	return out, err
}

// apply writes or clears the speaker on ids inside a transaction
func (s *Service) apply(ctx context.Context, r repo.Storage, ids []int64, speaker, taggedBy string) ([]domain.Line, error) {
	var (
		sp, by *string
		at     *time.Time
	)
	if speaker != "" {
		by0 := strings.TrimSpace(taggedBy)
		if by0 == "" {
			by0 = domain.DefaultTaggedBy
		}
		now := s.now()
		sp, by, at = &speaker, &by0, &now
		if err := r.UpsertSpeaker(ctx, speaker); err != nil {
			return nil, perr.FromPostgres(err, "upsert speaker")
		}
	}
	updated, err := r.SetSpeaker(ctx, ids, sp, by, at)
	if err != nil {
		return nil, perr.FromPostgres(err, "set speaker")
	}
	if len(updated) != len(ids) {
		return nil, perr.NotFoundf("expected %d lines, updated %d", len(ids), len(updated))
	}
	return updated, nil
}

// CommitTags records machine tags on lines that have no speaker yet. Manual tags are never overwritten.
// It returns the number of lines tagged
func (s *Service) CommitTags(ctx context.Context, transcriptID int64, tags []domain.LineTag, taggedBy string) (int, error) {
	if len(tags) == 0 {
		return 0, nil
	}
	if strings.TrimSpace(taggedBy) == "" {
		taggedBy = "speakertag"
	}
	var n int
	err := repokit.InTx(ctx, s.db, s.binder, func(r repo.Storage) error {
		seen := make(map[string]struct{})
		for _, t := range tags {
			if _, ok := seen[t.Speaker]; ok {
				continue
			}
			seen[t.Speaker] = struct{}{}
			if err := r.UpsertSpeaker(ctx, t.Speaker); err != nil {
				return perr.FromPostgres(err, "upsert speaker")
			}
		}
		var err error
		n, err = r.FillSpeakers(ctx, transcriptID, tags, taggedBy, s.now())
		if err != nil {
			return perr.FromPostgres(err, "commit tags")
		}
		return nil
	})
	return n, err
}

func cleanSpeaker(s string) (string, error) {
	s = normalize.Line(s)
	if utf8.RuneCountInString(s) > maxSpeakerLen {
		return "", perr.WithField(perr.InvalidArgf("speaker must be at most %d characters", maxSpeakerLen), "speaker")
	}
	return s, nil
}

func notFound(err error, format string, a ...any) error {
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return perr.NotFoundf(format+" not found", a...)
	}
	return perr.FromPostgresf(err, format, a...)
}
