// Package http exposes transcript browsing, manual tagging and export over HTTP
package http

import (
	"bytes"
	stdhttp "net/http"
	"path/filepath"
	"strings"

	"speakertag/internal/core/export"
	"speakertag/internal/core/roster"
	"speakertag/internal/modkit/httpkit"
	perr "speakertag/internal/platform/errors"
	"speakertag/internal/services/transcripts/domain"
)

const (
	defaultSuggestLimit = 10
	maxSuggestLimit     = 50
)

// Register mounts the transcript and speaker routes
func Register(r httpkit.Router, reader domain.ReaderPort, writer domain.WriterPort) {
	h := &handlers{reader: reader, writer: writer}

	httpkit.Get(r, "/transcripts", h.list)
	httpkit.Get(r, "/transcripts/{id}", h.get)
	httpkit.Get(r, "/transcripts/{id}/lines", h.lines)
	// bulk before {lineID} so the static segment wins
	httpkit.PatchJSON(r, "/transcripts/{id}/lines/bulk", h.bulkTag)
	httpkit.PatchJSON(r, "/transcripts/{id}/lines/{lineID}", h.tagLine)
	httpkit.Get(r, "/transcripts/{id}/speakers", h.speakers)
	httpkit.Get(r, "/transcripts/{id}/stats", h.stats)
	httpkit.Get(r, "/transcripts/{id}/export", h.export)

	httpkit.Get(r, "/speakers", h.allSpeakers)
	httpkit.Get(r, "/speakers/suggest", h.suggest)
}

type handlers struct {
	reader domain.ReaderPort
	writer domain.WriterPort
}

// @Summary List transcripts with tagged line counts, newest session first
// @Tags Transcripts
// @Produce json
// @Success 200 {array} domain.Transcript
// @Router /transcripts [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	return h.reader.List(r.Context())
}

// @Summary Get one transcript
// @Tags Transcripts
// @Param id path int true "Transcript ID"
// @Success 200 {object} domain.Transcript
// @Router /transcripts/{id} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	id, err := httpkit.PathID(r, "id")
	if err != nil {
		return nil, err
	}
	return h.reader.Get(r.Context(), id)
}

// @Summary Page through lines, optionally filtered by a case-insensitive substring
// @Tags Transcripts
// @Param id path int true "Transcript ID"
// @Param page query int false "1-based page"
// @Param per_page query int false "Lines per page"
// @Param search query string false "Substring filter"
// @Success 200 {object} domain.LinePage
// @Router /transcripts/{id}/lines [get]
func (h *handlers) lines(r *stdhttp.Request) (any, error) {
	id, err := httpkit.PathID(r, "id")
	if err != nil {
		return nil, err
	}
	page, err := httpkit.QueryInt(r, "page", 1)
	if err != nil {
		return nil, err
	}
	perPage, err := httpkit.QueryInt(r, "per_page", 0)
	if err != nil {
		return nil, err
	}
	return h.reader.Lines(r.Context(), domain.ListLinesInput{
		TranscriptID: id,
		Page:         page,
		PerPage:      perPage,
		Search:       httpkit.Query(r, "search"),
	})
}

// @Summary Set or clear the speaker of one line. An empty speaker clears the tag
// @Tags Tagging
// @Accept json
// @Param id path int true "Transcript ID"
// @Param lineID path int true "Line ID"
// @Param payload body domain.TagInput true "Tag"
// @Success 200 {object} domain.Line
// @Router /transcripts/{id}/lines/{lineID} [patch]
func (h *handlers) tagLine(r *stdhttp.Request, in domain.TagInput) (any, error) {
	id, err := httpkit.PathID(r, "id")
	if err != nil {
		return nil, err
	}
	lineID, err := httpkit.PathID(r, "lineID")
	if err != nil {
		return nil, err
	}
	in.TranscriptID, in.LineID = id, lineID
	return h.writer.TagLine(r.Context(), in)
}

// @Summary Apply one speaker to many lines, all or nothing
// @Tags Tagging
// @Accept json
// @Param id path int true "Transcript ID"
// @Param payload body domain.BulkTagInput true "Tag"
// @Success 200 {object} domain.BulkResult
// @Router /transcripts/{id}/lines/bulk [patch]
func (h *handlers) bulkTag(r *stdhttp.Request, in domain.BulkTagInput) (any, error) {
	id, err := httpkit.PathID(r, "id")
	if err != nil {
		return nil, err
	}
	in.TranscriptID = id
	return h.writer.BulkTag(r.Context(), in)
}

// @Summary Speakers tagged in one transcript with line counts
// @Tags Speakers
// @Param id path int true "Transcript ID"
// @Success 200 {array} domain.SpeakerCount
// @Router /transcripts/{id}/speakers [get]
func (h *handlers) speakers(r *stdhttp.Request) (any, error) {
	id, err := httpkit.PathID(r, "id")
	if err != nil {
		return nil, err
	}
	return h.reader.Speakers(r.Context(), id)
}

// @Summary Tagging progress
// @Tags Transcripts
// @Param id path int true "Transcript ID"
// @Success 200 {object} domain.Stats
// @Router /transcripts/{id}/stats [get]
func (h *handlers) stats(r *stdhttp.Request) (any, error) {
	id, err := httpkit.PathID(r, "id")
	if err != nil {
		return nil, err
	}
	return h.reader.Stats(r.Context(), id)
}

// @Summary Export tagged lines as txt, json, srt or csv
// @Tags Transcripts
// @Param id path int true "Transcript ID"
// @Param format query string false "txt (default), json, srt or csv"
// @Router /transcripts/{id}/export [get]
func (h *handlers) export(r *stdhttp.Request) (any, error) {
	id, err := httpkit.PathID(r, "id")
	if err != nil {
		return nil, err
	}
	f, err := export.ParseFormat(httpkit.Query(r, "format"))
	if err != nil {
		return nil, err
	}
	if f == export.FormatJSONL {
		return nil, perr.WithField(perr.InvalidArgf("jsonl is only available for attribution output"), "format")
	}

	t, err := h.reader.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	lines, err := h.reader.AllLines(r.Context(), id)
	if err != nil {
		return nil, err
	}

	doc := export.Document{Transcript: t, Lines: make([]export.Line, 0, len(lines))}
	for _, l := range lines {
		doc.Lines = append(doc.Lines, export.Line{
			ID:         l.ID,
			LineNumber: l.LineNumber,
			Text:       l.Text,
			Speaker:    l.Speaker,
			TaggedAt:   l.TaggedAt,
			TaggedBy:   l.TaggedBy,
		})
	}

	var buf bytes.Buffer
	if err := export.WriteLines(&buf, f, doc); err != nil {
		return nil, err
	}
	return httpkit.Attachment{
		Filename:    exportName(t.Filename, f),
		ContentType: f.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}

func exportName(filename string, f export.Format) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_tagged." + string(f)
}

// @Summary Speakers across all transcripts with line counts
// @Tags Speakers
// @Success 200 {array} domain.SpeakerCount
// @Router /speakers [get]
func (h *handlers) allSpeakers(r *stdhttp.Request) (any, error) {
	return h.reader.AllSpeakers(r.Context())
}

// @Summary Suggest known speaker spellings for a partial name
// @Tags Speakers
// @Param q query string true "Typed name"
// @Param limit query int false "At most 50, default 10"
// @Success 200 {array} roster.Suggestion
// @Router /speakers/suggest [get]
func (h *handlers) suggest(r *stdhttp.Request) (any, error) {
	q := httpkit.Query(r, "q")
	if q == "" {
		return nil, perr.WithField(perr.InvalidArgf("q is required"), "q")
	}
	limit, err := httpkit.QueryInt(r, "limit", defaultSuggestLimit)
	if err != nil {
		return nil, err
	}
	if limit < 1 || limit > maxSuggestLimit {
		return nil, perr.WithField(perr.InvalidArgf("limit must be between 1 and %d", maxSuggestLimit), "limit")
	}

	known, err := h.reader.AllSpeakers(r.Context())
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(known))
	for _, s := range known {
		names = append(names, s.Name)
	}
	return roster.New(names).Suggest(q, limit), nil
}
