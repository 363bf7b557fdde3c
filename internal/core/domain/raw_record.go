package domain

import (
	"time"

	"github.com/google/uuid"
)

// RawRecord is one fetched source document as the collector stored it.
// The normalizer only reads it.
type RawRecord struct {
	ID        int64
	SourceTag string
	FetchedAt *time.Time
	URL       *string
	Payload   string
	Checksum  string
}

// SkippedRecord marks a raw record that could not be normalized as it stands.
// It stays out of the backlog until its checksum changes or the schema
// version moves past SchemaVersion.
type SkippedRecord struct {
	RawID         int64
	Checksum      string
	Reason        string
	SchemaVersion int
	RunID         uuid.UUID
}
