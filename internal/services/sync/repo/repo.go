// Package repo reads and writes whole transcript databases for sync
package repo

import (
	"context"
	"time"

	"speakertag/internal/modkit/repokit"
	"speakertag/internal/platform/store"
	"speakertag/internal/services/sync/domain"
)

// TranscriptRow is a transcript with its local id
type TranscriptRow struct {
	ID int64
	domain.Transcript
}

// Storage is the sync repository contract
type Storage interface {
	Transcripts(ctx context.Context) ([]TranscriptRow, error)
	Lines(ctx context.Context, transcriptID int64) ([]domain.Line, error)
	Speakers(ctx context.Context) ([]domain.Speaker, error)
	TaggedCounts(ctx context.Context) (map[string]int, error)

	Clear(ctx context.Context) error
	InsertSpeaker(ctx context.Context, sp domain.Speaker) error
	TranscriptID(ctx context.Context, filename string) (int64, bool, error)
	InsertTranscript(ctx context.Context, t domain.Transcript) (int64, error)
	InsertLines(ctx context.Context, transcriptID int64, lines []domain.Line) (int, error)
	// FillTags sets tags only on lines with no speaker
	FillTags(ctx context.Context, transcriptID int64, lines []domain.Line) (int, error)
	// OverwriteTags sets tags where the stored speaker differs
	OverwriteTags(ctx context.Context, transcriptID int64, lines []domain.Line, now time.Time) (int, error)
}

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

func (s *pg) Transcripts(ctx context.Context) ([]TranscriptRow, error) {
	return store.Many(ctx, s.q, func(r store.Row) (TranscriptRow, error) {
		var t TranscriptRow
		err := r.Scan(&t.ID, &t.Filename, &t.Date, &t.TotalLines, &t.CreatedAt)
		return t, err
	}, `SELECT id, filename, to_char(date, 'YYYY-MM-DD'), total_lines, created_at FROM transcripts ORDER BY id`)
}

func (s *pg) Lines(ctx context.Context, transcriptID int64) ([]domain.Line, error) {
	return store.Many(ctx, s.q, func(r store.Row) (domain.Line, error) {
		var l domain.Line
		err := r.Scan(&l.LineNumber, &l.Text, &l.Speaker, &l.TaggedAt, &l.TaggedBy)
		return l, err
	}, `
		SELECT line_number, text, speaker, tagged_at, tagged_by
		FROM transcript_lines WHERE transcript_id = $1 ORDER BY line_number`, transcriptID)
}

func (s *pg) Speakers(ctx context.Context) ([]domain.Speaker, error) {
	return store.Many(ctx, s.q, func(r store.Row) (domain.Speaker, error) {
		var sp domain.Speaker
		err := r.Scan(&sp.Name, &sp.CreatedAt)
		return sp, err
	}, `SELECT name, created_at FROM speakers ORDER BY name`)
}

func (s *pg) TaggedCounts(ctx context.Context) (map[string]int, error) {
	type row struct {
		name string
		n    int
	}
	rows, err := store.Many(ctx, s.q, func(r store.Row) (row, error) {
		var x row
		err := r.Scan(&x.name, &x.n)
		return x, err
	}, `
		SELECT t.filename, count(l.speaker)::int
		FROM transcripts t LEFT JOIN transcript_lines l ON l.transcript_id = t.id
		GROUP BY t.filename`)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, x := range rows {
		out[x.name] = x.n
	}
	return out, nil
}

func (s *pg) Clear(ctx context.Context) error {
	_, err := s.q.Exec(ctx, `TRUNCATE line_segments, transcript_lines, transcripts, speakers RESTART IDENTITY`)
	return err
}

func (s *pg) InsertSpeaker(ctx context.Context, sp domain.Speaker) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO speakers (name, created_at) VALUES ($1, coalesce($2, now()))
		ON CONFLICT (name) DO NOTHING`, sp.Name, sp.CreatedAt)
	return err
}

func (s *pg) TranscriptID(ctx context.Context, filename string) (int64, bool, error) {
	ids, err := store.Many(ctx, s.q, func(r store.Row) (int64, error) {
		var id int64
		return id, r.Scan(&id)
	}, `SELECT id FROM transcripts WHERE filename = $1`, filename)
	if err != nil || len(ids) == 0 {
		return 0, false, err
	}
	return ids[0], true, nil
}

func (s *pg) InsertTranscript(ctx context.Context, t domain.Transcript) (int64, error) {
	return store.Scalar[int64](ctx, s.q, `
		INSERT INTO transcripts (filename, date, total_lines, created_at)
		VALUES ($1, $2::date, $3, coalesce($4, now()))
		RETURNING id`, t.Filename, t.Date, t.TotalLines, t.CreatedAt)
}

// columns splits lines into parallel arrays for unnest
func columns(lines []domain.Line) (nums []int32, texts []string, speakers []*string, ats []*time.Time, bys []*string) {
	for _, l := range lines {
		nums = append(nums, int32(l.LineNumber))
		texts = append(texts, l.Text)
		speakers = append(speakers, l.Speaker)
		ats = append(ats, l.TaggedAt)
		bys = append(bys, l.TaggedBy)
	}
	return
}

func (s *pg) InsertLines(ctx context.Context, transcriptID int64, lines []domain.Line) (int, error) {
	if len(lines) == 0 {
		return 0, nil
	}
	nums, texts, speakers, ats, bys := columns(lines)
	tag, err := s.q.Exec(ctx, `
		INSERT INTO transcript_lines (transcript_id, line_number, text, speaker, tagged_at, tagged_by)
		SELECT $1, u.* FROM unnest($2::int[], $3::text[], $4::text[], $5::timestamptz[], $6::text[]) AS u`,
		transcriptID, nums, texts, speakers, ats, bys)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *pg) FillTags(ctx context.Context, transcriptID int64, lines []domain.Line) (int, error) {
	if len(lines) == 0 {
		return 0, nil
	}
	nums, _, speakers, ats, bys := columns(lines)
	tag, err := s.q.Exec(ctx, `
		UPDATE transcript_lines l
		SET speaker = v.speaker, tagged_at = v.tagged_at, tagged_by = v.tagged_by
		FROM unnest($2::int[], $3::text[], $4::timestamptz[], $5::text[]) AS v(line_number, speaker, tagged_at, tagged_by)
		WHERE l.transcript_id = $1 AND l.line_number = v.line_number AND l.speaker IS NULL`,
		transcriptID, nums, speakers, ats, bys)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *pg) OverwriteTags(ctx context.Context, transcriptID int64, lines []domain.Line, now time.Time) (int, error) {
	if len(lines) == 0 {
		return 0, nil
	}
	nums, _, speakers, ats, bys := columns(lines)
	tag, err := s.q.Exec(ctx, `
		UPDATE transcript_lines l
		SET speaker = v.speaker,
		    tagged_at = coalesce(v.tagged_at, $6),
		    tagged_by = coalesce(v.tagged_by, 'sync')
		FROM unnest($2::int[], $3::text[], $4::timestamptz[], $5::text[]) AS v(line_number, speaker, tagged_at, tagged_by)
		WHERE l.transcript_id = $1 AND l.line_number = v.line_number
		  AND l.speaker IS DISTINCT FROM v.speaker`,
		transcriptID, nums, speakers, ats, bys, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
