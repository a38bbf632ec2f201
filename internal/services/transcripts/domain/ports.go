package domain

import "context"

// ReaderPort reads transcripts, lines and tagging statistics
type ReaderPort interface {
	List(ctx context.Context) ([]Transcript, error)
	Get(ctx context.Context, id int64) (Transcript, error)
	Texts(ctx context.Context, id int64) ([]string, error)
	AllLines(ctx context.Context, id int64) ([]Line, error)
	Lines(ctx context.Context, in ListLinesInput) (LinePage, error)
	Speakers(ctx context.Context, id int64) ([]SpeakerCount, error)
	AllSpeakers(ctx context.Context) ([]SpeakerCount, error)
	Stats(ctx context.Context, id int64) (Stats, error)
}

// WriterPort loads transcripts and records speaker tags
type WriterPort interface {
	Import(ctx context.Context, in ImportInput) (Transcript, error)
	TagLine(ctx context.Context, in TagInput) (Line, error)
	BulkTag(ctx context.Context, in BulkTagInput) (BulkResult, error)
	CommitTags(ctx context.Context, transcriptID int64, tags []LineTag, taggedBy string) (int, error)
}
