package domain

import "time"

// ImportInput creates a transcript from already-normalized lines
type ImportInput struct {
	Filename string     `json:"filename" validate:"required,max=255"`
	Date     *time.Time `json:"date,omitempty"`
	Lines    []string   `json:"lines"`
}

// ListLinesInput selects a page of lines. Zero Page and PerPage take the defaults
type ListLinesInput struct {
	TranscriptID int64  `json:"-"`
	Page         int    `json:"page" validate:"omitempty,min=1" example:"1"`
	PerPage      int    `json:"per_page" validate:"omitempty,min=1" example:"100"`
	Search       string `json:"search,omitempty" example:"сайд"`
}

// TagInput sets or clears the speaker of one line. An empty speaker clears the tag
type TagInput struct {
	TranscriptID int64  `json:"-"`
	LineID       int64  `json:"-"`
	Speaker      string `json:"speaker" validate:"speaker" example:"Бат сайд"`
	TaggedBy     string `json:"tagged_by,omitempty" validate:"omitempty,max=100" example:"web_user"`
}

// BulkTagInput applies one speaker to many lines of a transcript
type BulkTagInput struct {
	TranscriptID int64   `json:"-"`
	LineIDs      []int64 `json:"line_ids" example:"1201,1202"`
	Speaker      string  `json:"speaker" validate:"speaker" example:"Бат сайд"`
	TaggedBy     string  `json:"tagged_by,omitempty" validate:"omitempty,max=100" example:"web_user"`
}
