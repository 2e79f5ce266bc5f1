package models

import (
	"time"

	"github.com/uptrace/bun"
)

// DocumentStatus tracks a spreadsheet through the ingestion state machine.
type DocumentStatus string

const (
	DocumentPending    DocumentStatus = "pending"
	DocumentProcessing DocumentStatus = "processing"
	DocumentProcessed  DocumentStatus = "processed"
	DocumentError      DocumentStatus = "error"
)

// Document is one uploaded spreadsheet and the outcome of processing it.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID         int64          `bun:"id,pk,autoincrement" json:"id"`
	Title      string         `bun:"title,notnull" json:"title"`
	StoredName string         `bun:"stored_name,notnull" json:"stored_name"`
	FilePath   string         `bun:"file_path,notnull" json:"file_path"`
	Status     DocumentStatus `bun:"status,notnull,default:'pending'" json:"status"`
	Result     *IngestResult  `bun:"result,type:jsonb" json:"result,omitempty"`

	UploadedAt          time.Time  `bun:"uploaded_at,notnull,default:current_timestamp" json:"uploaded_at"`
	ProcessingStartedAt *time.Time `bun:"processing_started_at" json:"processing_started_at,omitempty"`
	ProcessingEndedAt   *time.Time `bun:"processing_ended_at" json:"processing_ended_at,omitempty"`
}

// IngestResult summarizes a finished (or failed) ingestion run. On failure
// only Error and Trace are set; Trace keeps the tail of the stack for
// diagnostics.
type IngestResult struct {
	ProcessedCount int    `json:"processed_count"`
	SkippedCount   int    `json:"skipped_count"`
	TriplesCount   int    `json:"triples_count"`
	Message        string `json:"message,omitempty"`
	Error          string `json:"error,omitempty"`
	Trace          string `json:"trace,omitempty"`
}

// KBStats reports aggregate knowledge-base counts.
type KBStats struct {
	Entities      int64            `json:"entities"`
	Relationships int64            `json:"relationships"`
	Documents     int64            `json:"documents"`
	ByEntityType  map[string]int64 `json:"by_entity_type,omitempty"`
	ByRelation    map[string]int64 `json:"by_relation,omitempty"`
}
