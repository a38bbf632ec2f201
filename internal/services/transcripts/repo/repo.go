// Package repo provides postgres access for transcripts, lines and speakers
package repo

import (
	"context"
	_ "embed"
	"strings"
	"time"

	"speakertag/internal/modkit/repokit"
	"speakertag/internal/platform/store"
	"speakertag/internal/services/transcripts/domain"
)

//go:embed schema.sql
var schema string

// Schema returns the DDL for the transcript store
func Schema() string { return schema }

// EnsureSchema applies the DDL idempotently
func EnsureSchema(ctx context.Context, q repokit.Queryer) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := q.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Storage is the transcript repository contract
type Storage interface {
	List(ctx context.Context) ([]domain.Transcript, error)
	Get(ctx context.Context, id int64) (domain.Transcript, error)
	IDByFilename(ctx context.Context, filename string) (int64, bool, error)
	Texts(ctx context.Context, id int64) ([]string, error)
	AllLines(ctx context.Context, id int64) ([]domain.Line, error)
	CountLines(ctx context.Context, id int64, search string) (int, error)
	PageLines(ctx context.Context, id int64, search string, limit, offset int) ([]domain.Line, error)
	Line(ctx context.Context, lineID int64) (domain.Line, error)
	LinesByIDs(ctx context.Context, transcriptID int64, ids []int64) ([]domain.Line, error)
	Speakers(ctx context.Context, id int64) ([]domain.SpeakerCount, error)
	AllSpeakers(ctx context.Context) ([]domain.SpeakerCount, error)
	CountTagged(ctx context.Context, id int64) (int, error)

	InsertTranscript(ctx context.Context, filename string, date *time.Time, total int) (domain.Transcript, error)
	InsertLines(ctx context.Context, transcriptID int64, lines []string) error
	SetSpeaker(ctx context.Context, lineIDs []int64, speaker, taggedBy *string, at *time.Time) ([]domain.Line, error)
	FillSpeakers(ctx context.Context, transcriptID int64, tags []domain.LineTag, taggedBy string, at time.Time) (int, error)
	UpsertSpeaker(ctx context.Context, name string) error
}

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

const transcriptCols = `
	t.id, t.filename, to_char(t.date, 'YYYY-MM-DD'), t.total_lines,
	(SELECT count(*) FROM transcript_lines l WHERE l.transcript_id = t.id AND l.speaker IS NOT NULL),
	t.created_at`

func scanTranscript(r store.Row) (domain.Transcript, error) {
	var t domain.Transcript
	err := r.Scan(&t.ID, &t.Filename, &t.Date, &t.TotalLines, &t.TaggedLines, &t.CreatedAt)
	return t, err
}

const lineCols = `id, transcript_id, line_number, text, speaker, tagged_at, tagged_by`

func scanLine(r store.Row) (domain.Line, error) {
	var l domain.Line
	err := r.Scan(&l.ID, &l.TranscriptID, &l.LineNumber, &l.Text, &l.Speaker, &l.TaggedAt, &l.TaggedBy)
	return l, err
}

func scanSpeaker(r store.Row) (domain.SpeakerCount, error) {
	var s domain.SpeakerCount
	err := r.Scan(&s.Name, &s.Count)
	return s, err
}

func (s *pg) List(ctx context.Context) ([]domain.Transcript, error) {
	return store.Many(ctx, s.q, scanTranscript,
		`SELECT`+transcriptCols+` FROM transcripts t ORDER BY t.date DESC NULLS LAST, t.id DESC`)
}

func (s *pg) Get(ctx context.Context, id int64) (domain.Transcript, error) {
	return store.One(ctx, s.q, scanTranscript, `SELECT`+transcriptCols+` FROM transcripts t WHERE t.id = $1`, id)
}

func (s *pg) IDByFilename(ctx context.Context, filename string) (int64, bool, error) {
	ids, err := store.Many(ctx, s.q, func(r store.Row) (int64, error) {
		var id int64
		return id, r.Scan(&id)
	}, `SELECT id FROM transcripts WHERE filename = $1`, filename)
	if err != nil || len(ids) == 0 {
		return 0, false, err
	}
	return ids[0], true, nil
}

func (s *pg) Texts(ctx context.Context, id int64) ([]string, error) {
	return store.Many(ctx, s.q, func(r store.Row) (string, error) {
		var t string
		return t, r.Scan(&t)
	}, `SELECT text FROM transcript_lines WHERE transcript_id = $1 ORDER BY line_number`, id)
}

func (s *pg) AllLines(ctx context.Context, id int64) ([]domain.Line, error) {
	return store.Many(ctx, s.q, scanLine,
		`SELECT `+lineCols+` FROM transcript_lines WHERE transcript_id = $1 ORDER BY line_number`, id)
}

// searchPattern turns a user search into an ILIKE pattern with wildcards escaped
func searchPattern(search string) string {
	if search == "" {
		return ""
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(search) + "%"
}

func (s *pg) CountLines(ctx context.Context, id int64, search string) (int, error) {
	return store.Scalar[int](ctx, s.q,
		`SELECT count(*)::int FROM transcript_lines WHERE transcript_id = $1 AND ($2 = '' OR text ILIKE $2)`,
		id, searchPattern(search))
}

func (s *pg) PageLines(ctx context.Context, id int64, search string, limit, offset int) ([]domain.Line, error) {
	return store.Many(ctx, s.q, scanLine, `
		SELECT `+lineCols+` FROM transcript_lines
		WHERE transcript_id = $1 AND ($2 = '' OR text ILIKE $2)
		ORDER BY line_number
		LIMIT $3 OFFSET $4`,
		id, searchPattern(search), limit, offset)
}

func (s *pg) Line(ctx context.Context, lineID int64) (domain.Line, error) {
	return store.One(ctx, s.q, scanLine, `SELECT `+lineCols+` FROM transcript_lines WHERE id = $1`, lineID)
}

func (s *pg) LinesByIDs(ctx context.Context, transcriptID int64, ids []int64) ([]domain.Line, error) {
	return store.Many(ctx, s.q, scanLine, `
		SELECT `+lineCols+` FROM transcript_lines
		WHERE transcript_id = $1 AND id = ANY($2)
		ORDER BY line_number`, transcriptID, ids)
}

func (s *pg) Speakers(ctx context.Context, id int64) ([]domain.SpeakerCount, error) {
	return store.Many(ctx, s.q, scanSpeaker, `
		SELECT speaker, count(*)::int FROM transcript_lines
		WHERE transcript_id = $1 AND speaker IS NOT NULL
		GROUP BY speaker ORDER BY count(*) DESC, speaker`, id)
}

func (s *pg) AllSpeakers(ctx context.Context) ([]domain.SpeakerCount, error) {
	return store.Many(ctx, s.q, scanSpeaker, `
		SELECT speaker, count(*)::int FROM transcript_lines
		WHERE speaker IS NOT NULL
		GROUP BY speaker ORDER BY count(*) DESC, speaker`)
}

func (s *pg) CountTagged(ctx context.Context, id int64) (int, error) {
	return store.Scalar[int](ctx, s.q,
		`SELECT count(*)::int FROM transcript_lines WHERE transcript_id = $1 AND speaker IS NOT NULL`, id)
}

func (s *pg) InsertTranscript(ctx context.Context, filename string, date *time.Time, total int) (domain.Transcript, error) {
	return store.One(ctx, s.q, func(r store.Row) (domain.Transcript, error) {
		var t domain.Transcript
		err := r.Scan(&t.ID, &t.Filename, &t.Date, &t.TotalLines, &t.CreatedAt)
		return t, err
	}, `
		INSERT INTO transcripts (filename, date, total_lines) VALUES ($1, $2, $3)
		RETURNING id, filename, to_char(date, 'YYYY-MM-DD'), total_lines, created_at`,
		filename, date, total)
}

// InsertLines numbers lines from 1 in one statement per call
func (s *pg) InsertLines(ctx context.Context, transcriptID int64, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	_, err := s.q.Exec(ctx, `
		INSERT INTO transcript_lines (transcript_id, line_number, text)
		SELECT $1, n::int, t FROM unnest($2::text[]) WITH ORDINALITY AS u(t, n)`,
		transcriptID, lines)
	return err
}

func (s *pg) SetSpeaker(ctx context.Context, lineIDs []int64, speaker, taggedBy *string, at *time.Time) ([]domain.Line, error) {
	return store.Many(ctx, s.q, scanLine, `
		UPDATE transcript_lines SET speaker = $2, tagged_by = $3, tagged_at = $4
		WHERE id = ANY($1)
		RETURNING `+lineCols, lineIDs, speaker, taggedBy, at)
}

// FillSpeakers tags lines by number only where no speaker is set yet
func (s *pg) FillSpeakers(ctx context.Context, transcriptID int64, tags []domain.LineTag, taggedBy string, at time.Time) (int, error) {
	if len(tags) == 0 {
		return 0, nil
	}
	nums := make([]int32, len(tags))
	names := make([]string, len(tags))
	for i, t := range tags {
		nums[i] = int32(t.LineNumber)
		names[i] = t.Speaker
	}
	tag, err := s.q.Exec(ctx, `
		UPDATE transcript_lines l SET speaker = v.speaker, tagged_by = $4, tagged_at = $5
		FROM unnest($2::int[], $3::text[]) AS v(line_number, speaker)
		WHERE l.transcript_id = $1 AND l.line_number = v.line_number AND l.speaker IS NULL`,
		transcriptID, nums, names, taggedBy, at)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *pg) UpsertSpeaker(ctx context.Context, name string) error {
	_, err := s.q.Exec(ctx, `INSERT INTO speakers (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	return err
}
