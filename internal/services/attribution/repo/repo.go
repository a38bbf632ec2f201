// Package repo persists per-unit attribution results in line_segments
package repo

import (
	"context"
	"time"

	"speakertag/internal/modkit/repokit"
	"speakertag/internal/platform/store"
	"speakertag/internal/services/attribution/domain"
	tdom "speakertag/internal/services/transcripts/domain"
)

// Storage is the segment repository contract
type Storage interface {
	// Replace drops the transcript's previous segments and writes segs
	Replace(ctx context.Context, transcriptID int64, segs []domain.Segment) error
	List(ctx context.Context, transcriptID int64) ([]domain.Segment, error)
	// Lease claims the transcript until the surrounding transaction ends
	Lease(ctx context.Context, transcriptID int64) error
	// CommitTags tags lines that have no speaker yet and returns how many it tagged
	CommitTags(ctx context.Context, transcriptID int64, tags []tdom.LineTag, taggedBy string, at time.Time) (int, error)
}

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

func (s *pg) Replace(ctx context.Context, transcriptID int64, segs []domain.Segment) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM line_segments WHERE transcript_id = $1`, transcriptID); err != nil {
		return err
	}
	if len(segs) == 0 {
		return nil
	}

	n := len(segs)
	var (
		unitIDs    = make([]int64, n)
		lines      = make([]int32, n)
		subs       = make([]int32, n)
		starts     = make([]int32, n)
		ends       = make([]int32, n)
		texts      = make([]string, n)
		speakers   = make([]string, n)
		confs      = make([]float64, n)
		provenance = make([]string, n)
		patterns   = make([]*string, n)
	)
	for i, sg := range segs {
		unitIDs[i] = sg.UnitID
		lines[i] = int32(sg.LineNumber)
		subs[i] = int32(sg.SubIndex)
		starts[i] = int32(sg.CharStart)
		ends[i] = int32(sg.CharEnd)
		texts[i] = sg.Text
		speakers[i] = sg.Speaker
		confs[i] = sg.Confidence
		provenance[i] = sg.Provenance
		patterns[i] = sg.Pattern
	}

	_, err := s.q.Exec(ctx, `
		INSERT INTO line_segments
			(transcript_id, unit_id, line_number, sub_index, char_start, char_end,
			 text, speaker, confidence, provenance, pattern, run_id)
		SELECT $1, u.*, $12::uuid FROM unnest(
			$2::bigint[], $3::int[], $4::int[], $5::int[], $6::int[],
			$7::text[], $8::text[], $9::float8[], $10::text[], $11::text[]
		) AS u`,
		transcriptID, unitIDs, lines, subs, starts, ends,
		texts, speakers, confs, provenance, patterns, segs[0].RunID)
	return err
}

func (s *pg) List(ctx context.Context, transcriptID int64) ([]domain.Segment, error) {
	return store.Many(ctx, s.q, func(r store.Row) (domain.Segment, error) {
		var sg domain.Segment
		err := r.Scan(&sg.TranscriptID, &sg.UnitID, &sg.LineNumber, &sg.SubIndex, &sg.CharStart, &sg.CharEnd,
			&sg.Text, &sg.Speaker, &sg.Confidence, &sg.Provenance, &sg.Pattern, &sg.RunID, &sg.CreatedAt)
		return sg, err
	}, `
		SELECT transcript_id, unit_id, line_number, sub_index, char_start, char_end,
		       text, speaker, confidence, provenance, pattern, run_id::text, created_at
		FROM line_segments
		WHERE transcript_id = $1
		ORDER BY unit_id`, transcriptID)
}
