// Package store supplies the corpus passages the verifier corroborates
// against: document sections and dated journal entries.
package store

import (
	"context"

	"github.com/pverdier/veracite/internal/model"
)

// Searcher is the retrieval collaborator consumed by the verification
// pipeline. Both methods may return an empty slice or an error; callers
// treat either as "no corroboration found".
type Searcher interface {
	SearchRelevantSections(ctx context.Context, query string, limit int) ([]model.Section, error)
	SearchRelevantJournal(ctx context.Context, query string, limit int) ([]model.JournalEntry, error)
}

// Repository extends Searcher with direct lookups and writes, used by the
// API layer (explicit context by ID) and the ingest command.
type Repository interface {
	Searcher

	GetSection(ctx context.Context, id string) (model.Section, error)
	GetJournalEntry(ctx context.Context, id string) (model.JournalEntry, error)

	AddSection(ctx context.Context, s model.Section) (string, error)
	AddJournalEntry(ctx context.Context, e model.JournalEntry) (string, error)

	Close() error
}
