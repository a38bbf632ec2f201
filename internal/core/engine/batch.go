package engine

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Document is one transcript in a batch
type Document struct {
	ID    string
	Lines []string
}

// BatchResult pairs a document with its result
type BatchResult struct {
	ID     string
	Result Result
}

// RunBatch attributes independent transcripts in parallel, each with its own detection pass.
// Results keep the input order. workers <= 0 means one goroutine per document
func (e *Engine) RunBatch(ctx context.Context, docs []Document, workers int) ([]BatchResult, error) {
	out := make([]BatchResult, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, d := range docs {
		g.Go(func() error {
			res, err := e.Run(gctx, d.Lines)
			if err != nil {
				return err
			}
			out[i] = BatchResult{ID: d.ID, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
