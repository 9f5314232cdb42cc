package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/bookpop/internal/domain/scoring"
	"github.com/okian/bookpop/pkg/metrics"
)

// Snapshot represents one immutable, published ranking.
type Snapshot struct {
	ID      string
	BuiltAt time.Time
	Scorer  *scoring.Scorer
}

// SnapshotStore serves reads from the latest published Snapshot. Publishing
// swaps a single pointer, so readers see either the old or the new ranking
// in full and never take a lock.
type SnapshotStore struct {
	snapshot atomic.Pointer[Snapshot]
	now      func() time.Time
}

var _ Store = (*SnapshotStore)(nil)

// NewSnapshotStore constructs an empty store with configuration options.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{now: time.Now}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Publish implements Store.Publish.
func (s *SnapshotStore) Publish(_ context.Context, scorer *scoring.Scorer) *Snapshot {
	snap := &Snapshot{
		ID:      uuid.NewString(),
		BuiltAt: s.now(),
		Scorer:  scorer,
	}
	s.snapshot.Store(snap)

	metrics.UpdateRankedItems(scorer.Len())
	metrics.IncrementSnapshotCount()
	metrics.UpdateSnapshotLastUnix(float64(snap.BuiltAt.Unix()))
	return snap
}

// Current implements Store.Current.
func (s *SnapshotStore) Current(_ context.Context) (*Snapshot, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		metrics.RecordErrorByComponent("repository", "not_ready")
		return nil, ErrNotReady
	}
	return snap, nil
}

// TopN implements Store.TopN.
func (s *SnapshotStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	snap, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := snap.Scorer.TopN(n)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, err
	}
	return toEntries(rows), nil
}

// Recommend implements Store.Recommend.
func (s *SnapshotStore) Recommend(ctx context.Context, userID string, n int) ([]Entry, bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	snap, err := s.Current(ctx)
	if err != nil {
		return nil, false, err
	}
	known := snap.Scorer.IsKnownUser(userID)
	rows, err := snap.Scorer.RecommendForUser(userID, n)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, known, err
	}
	return toEntries(rows), known, nil
}

// Rank implements Store.Rank.
func (s *SnapshotStore) Rank(ctx context.Context, itemID string) (Entry, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return Entry{}, err
	}
	row, rank, err := snap.Scorer.Lookup(itemID)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, err
	}
	return toEntry(row, rank), nil
}

// Count implements Store.Count.
func (s *SnapshotStore) Count(_ context.Context) int {
	snap := s.snapshot.Load()
	if snap == nil {
		return 0
	}
	return snap.Scorer.Len()
}

func toEntries(rows []scoring.Row) []Entry {
	out := make([]Entry, len(rows))
	for i, row := range rows {
		out[i] = toEntry(row, i+1)
	}
	return out
}

func toEntry(row scoring.Row, rank int) Entry {
	return Entry{
		Rank:       rank,
		ItemID:     row.ItemID,
		Title:      row.Title,
		Author:     row.Author,
		NumRatings: row.NumRatings,
		AvgRating:  row.AvgRating,
		Score:      row.Score,
	}
}
