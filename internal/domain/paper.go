package domain

import "time"

// Paper is a core entity describing one record fetched from a source.
// ID is the stable deduplication key: two papers with the same ID are the
// same logical paper no matter which category query produced them.
type Paper struct {
	ID          string
	Title       string
	Abstract    string
	URL         string
	Authors     []string
	Categories  []string
	PublishedAt time.Time
	UpdatedAt   time.Time
}

// Verdict is the classifier's relevance decision for one paper.
// Err is set when the classification call itself failed; such papers are
// treated as not relevant.
type Verdict struct {
	PaperID  string
	Relevant bool
	Err      error
}

// ClassifiedPaper pairs a paper with its verdict.
type ClassifiedPaper struct {
	Paper   Paper
	Verdict Verdict
}

// ProcessingStatus enumerates pipeline milestones.
type ProcessingStatus string

const (
	StatusFetched   ProcessingStatus = "fetched"
	StatusRelevant  ProcessingStatus = "relevant"
	StatusRejected  ProcessingStatus = "rejected"
	StatusPublished ProcessingStatus = "published"
)

// ProcessedPaper persisted to Postgres for cross-run deduplication and audit.
type ProcessedPaper struct {
	Paper     Paper
	Status    ProcessingStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
