// Package repository holds the published ranking snapshot and serves reads
// from it.
package repository

import (
	"context"

	"github.com/okian/bookpop/internal/domain/scoring"
)

// Entry represents a ranking row with its 1-based position.
type Entry struct {
	Rank       int
	ItemID     string
	Title      string
	Author     string
	NumRatings int
	AvgRating  float64
	Score      float64
}

// Store provides read access to the current ranking and a way to replace it.
type Store interface {
	// Publish makes scorer the current ranking and returns its snapshot.
	Publish(ctx context.Context, scorer *scoring.Scorer) *Snapshot

	// Current returns the published snapshot or ErrNotReady.
	Current(ctx context.Context) (*Snapshot, error)

	// TopN returns the top-N entries ordered by score desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Recommend returns the entries served to userID and whether the user is
	// registered.
	Recommend(ctx context.Context, userID string, n int) ([]Entry, bool, error)

	// Rank returns the entry of one book. Returns ErrNotFound if it is not ranked.
	Rank(ctx context.Context, itemID string) (Entry, error)

	// Count returns the number of ranked books.
	Count(ctx context.Context) int
}
