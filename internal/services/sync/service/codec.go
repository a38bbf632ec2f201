package service

import (
	"encoding/json"
	"io"

	perr "speakertag/internal/platform/errors"
	"speakertag/internal/services/sync/domain"
)

// WriteSnapshot writes snap as indented JSON with non-ASCII text kept readable
func WriteSnapshot(w io.Writer, snap domain.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// ReadSnapshot decodes a snapshot. A document with no transcripts key is rejected
func ReadSnapshot(r io.Reader) (domain.Snapshot, error) {
	var snap struct {
		domain.Snapshot
		Transcripts *[]domain.Transcript `json:"transcripts"`
	}
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return domain.Snapshot{}, perr.Wrap(err, perr.ErrorCodeJSON, "decode snapshot")
	}
	if snap.Transcripts == nil {
		return domain.Snapshot{}, perr.WithField(perr.InvalidArgf("snapshot has no transcripts"), "transcripts")
	}
	out := snap.Snapshot
	out.Transcripts = *snap.Transcripts
	return out, nil
}
