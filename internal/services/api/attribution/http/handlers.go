// Package http exposes attribution runs over HTTP
package http

import (
	"bytes"
	"fmt"
	stdhttp "net/http"

	"speakertag/internal/modkit/httpkit"
	"speakertag/internal/services/attribution/domain"
)

// Register mounts the attribution routes
func Register(r httpkit.Router, runner domain.RunnerPort) {
	h := &handlers{runner: runner}

	httpkit.PostJSON(r, "/transcripts/{id}/attribution", h.run)
	httpkit.Get(r, "/transcripts/{id}/attribution/report", h.report)
	httpkit.Get(r, "/transcripts/{id}/segments", h.segments)
}

type handlers struct {
	runner domain.RunnerPort
}

// @Summary Attribute speakers to every line of a transcript and commit the confident ones
// @Tags Attribution
// @Accept json
// @Param id path int true "Transcript ID"
// @Param payload body domain.RunInput true "Run options, {} for defaults"
// @Success 200 {object} domain.RunResult
// @Router /transcripts/{id}/attribution [post]
func (h *handlers) run(r *stdhttp.Request, in domain.RunInput) (any, error) {
	id, err := httpkit.PathID(r, "id")
	if err != nil {
		return nil, err
	}
	in.TranscriptID = id
	return h.runner.Run(r.Context(), in)
}

// @Summary Quality report of a dry run, as plain text
// @Tags Attribution
// @Param id path int true "Transcript ID"
// @Param mode query string false "line or segment"
// @Produce plain
// @Router /transcripts/{id}/attribution/report [get]
func (h *handlers) report(r *stdhttp.Request) (any, error) {
	id, err := httpkit.PathID(r, "id")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := h.runner.Report(r.Context(), &buf, id, httpkit.Query(r, "mode")); err != nil {
		return nil, err
	}
	return httpkit.Attachment{
		Filename:    fmt.Sprintf("transcript_%d_report.txt", id),
		ContentType: "text/plain; charset=utf-8",
		Body:        buf.Bytes(),
		Inline:      true,
	}, nil
}

// @Summary Segments persisted by the last segment mode run
// @Tags Attribution
// @Param id path int true "Transcript ID"
// @Success 200 {array} domain.Segment
// @Router /transcripts/{id}/segments [get]
func (h *handlers) segments(r *stdhttp.Request) (any, error) {
	id, err := httpkit.PathID(r, "id")
	if err != nil {
		return nil, err
	}
	return h.runner.Segments(r.Context(), id)
}
