package domain

import (
	"context"
	"io"

	tdom "speakertag/internal/services/transcripts/domain"
)

// RunnerPort runs the engine against stored transcripts
type RunnerPort interface {
	Run(ctx context.Context, in RunInput) (RunResult, error)
	// RunAll attributes the given transcripts, or every transcript when ids is empty
	RunAll(ctx context.Context, ids []int64, mode string, dryRun bool) ([]RunResult, error)
	Segments(ctx context.Context, transcriptID int64) ([]Segment, error)
	// Report writes the quality report of a dry run
	Report(ctx context.Context, w io.Writer, transcriptID int64, mode string) error
}

// Ports are dependencies injected into the attribution module
type Ports struct {
	Transcripts tdom.ReaderPort // required
}
