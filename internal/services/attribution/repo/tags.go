package repo

import (
	"context"
	"time"

	tdom "speakertag/internal/services/transcripts/domain"
	trepo "speakertag/internal/services/transcripts/repo"
)

// CommitTags fills lines of the transcript that have no speaker yet, on the same connection as
// the segment write, recording each speaker name first. It returns the lines tagged
func (s *pg) CommitTags(ctx context.Context, transcriptID int64, tags []tdom.LineTag, taggedBy string, at time.Time) (int, error) {
	if len(tags) == 0 {
		return 0, nil
	}
	lines := trepo.NewPG().Bind(s.q)
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if _, ok := seen[t.Speaker]; ok {
			continue
		}
		seen[t.Speaker] = struct{}{}
		if err := lines.UpsertSpeaker(ctx, t.Speaker); err != nil {
			return 0, err
		}
	}
	return lines.FillSpeakers(ctx, transcriptID, tags, taggedBy, at)
}
