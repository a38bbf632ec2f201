// Package domain holds the transcript store types and ports
package domain

import "time"

// UnknownSpeaker is what exports print for an untagged line
const UnknownSpeaker = "UNKNOWN"

// DefaultTaggedBy is recorded when a tag request names no tagger
const DefaultTaggedBy = "web_user"

// Transcript is one loaded session file
type Transcript struct {
	ID          int64     `json:"id" example:"7"`
	Filename    string    `json:"filename" example:"2024-05-14_plenary.txt"`
	Date        *string   `json:"date" example:"2024-05-14"`
	TotalLines  int       `json:"total_lines" example:"1820"`
	TaggedLines int       `json:"tagged_lines" example:"944"`
	CreatedAt   time.Time `json:"created_at"`
}

// Line is one stored transcript line. Speaker, TaggedAt and TaggedBy are nil when untagged
type Line struct {
	ID           int64      `json:"id" example:"1201"`
	TranscriptID int64      `json:"transcript_id" example:"7"`
	LineNumber   int        `json:"line_number" example:"12"`
	Text         string     `json:"text"`
	Speaker      *string    `json:"speaker" example:"Бат сайд"`
	TaggedAt     *time.Time `json:"tagged_at"`
	TaggedBy     *string    `json:"tagged_by" example:"web_user"`
}

// SpeakerCount is a speaker and the number of lines tagged with it
type SpeakerCount struct {
	Name  string `json:"name" example:"Бат сайд"`
	Count int    `json:"count" example:"31"`
}

// Stats is the tagging progress of one transcript
type Stats struct {
	TotalLines    int            `json:"total_lines" example:"1820"`
	TaggedLines   int            `json:"tagged_lines" example:"944"`
	UntaggedLines int            `json:"untagged_lines" example:"876"`
	Progress      float64        `json:"progress" example:"51.87"`
	Speakers      []SpeakerCount `json:"speakers"`
}

// Pagination describes one page of a line listing
type Pagination struct {
	Page    int `json:"page" example:"1"`
	PerPage int `json:"per_page" example:"100"`
	Total   int `json:"total" example:"1820"`
	Pages   int `json:"pages" example:"19"`
}

// LinePage is a page of lines
type LinePage struct {
	Lines      []Line     `json:"lines"`
	Pagination Pagination `json:"pagination"`
}

// BulkResult reports a bulk tag
type BulkResult struct {
	Updated int    `json:"updated" example:"3"`
	Lines   []Line `json:"lines"`
}

// LineTag is a machine-produced speaker for a line number
type LineTag struct {
	LineNumber int     `json:"line_number"`
	Speaker    string  `json:"speaker"`
	Confidence float64 `json:"confidence"`
}

// Pages is the page count for total items at perPage, at least 0
func Pages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
