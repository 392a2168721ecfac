// Package store persists the history of evidence checks.
//
// Every check the service runs (NuGet, Maven, Gradle and the compatible
// versions fallback) is appended as a [Record]. The CLI lists recent records
// with `devflow history`.
//
// Backends:
//   - [MemoryStore]: bounded in-process history, the default
//   - [MongoStore]: shared history in a MongoDB collection
//   - [NullStore]: history disabled
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/devflow/pkg/evidence"
)

// Kind identifies which check produced a record.
type Kind string

const (
	KindNuGet    Kind = "nuget"
	KindMaven    Kind = "maven"
	KindGradle   Kind = "gradle"
	KindFallback Kind = "fallback"
)

// DefaultLimit is the number of records returned by Recent when limit <= 0.
const DefaultLimit = 20

// Record is one stored check.
type Record struct {
	ID        string                     `json:"id" bson:"_id"`
	Kind      Kind                       `json:"kind" bson:"kind"`
	Query     Query                      `json:"query" bson:"query"`
	Report    *evidence.Report           `json:"report,omitempty" bson:"report,omitempty"`
	Fallback  *evidence.FallbackVersions `json:"fallback,omitempty" bson:"fallback,omitempty"`
	CreatedAt time.Time                  `json:"created_at" bson:"created_at"`
}

// Query is the input of a check.
type Query struct {
	Package        string `json:"package" bson:"package"`
	CurrentVersion string `json:"current_version,omitempty" bson:"current_version,omitempty"`
	Target         string `json:"target" bson:"target"`
}

// NewRecord creates a record with a fresh id and the current UTC time.
func NewRecord(kind Kind, q Query) *Record {
	return &Record{
		ID:        uuid.NewString(),
		Kind:      kind,
		Query:     q,
		CreatedAt: time.Now().UTC(),
	}
}

// Store is the interface for history backends.
type Store interface {
	// Add appends a record.
	Add(ctx context.Context, rec *Record) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)

	// Close releases backend resources.
	Close() error
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
