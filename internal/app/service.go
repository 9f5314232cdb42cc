// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/bookpop/internal/adapters/repository"
	"github.com/okian/bookpop/internal/adapters/source"
	"github.com/okian/bookpop/internal/domain/scoring"
	"github.com/okian/bookpop/internal/domain/types"
	"github.com/okian/bookpop/pkg/logger"
	"github.com/okian/bookpop/pkg/metrics"
)

// Service builds the popularity ranking from a source and serves queries
// from the latest published snapshot.
type Service struct {
	mu sync.RWMutex
	// reloadMu serializes builds. Readers never take it.
	reloadMu sync.Mutex

	// Core components
	src   source.Source
	store repository.Store

	// Configuration
	mMin     float64
	tieBreak scoring.TieBreak

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets the source the ranking is built from.
func WithSource(src source.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.src = src
		}
	}
}

// WithMMin sets the smoothing strength. Invalid values are rejected by Start.
func WithMMin(m float64) Option {
	return func(s *Service) {
		s.mMin = m
	}
}

// WithTieBreak sets how equal scores are ordered.
func WithTieBreak(t scoring.TieBreak) Option {
	return func(s *Service) {
		s.tieBreak = t
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore sets the snapshot store. A fresh store is used by default.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		mMin:     scoring.DefaultMMin,
		tieBreak: scoring.TieBreakFirstSeen,
		logger:   nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewSnapshotStore()
	}

	return s
}

// Start builds and publishes the first ranking. Calling it again after a
// successful start is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting popularity service...",
		logger.Float64("mMin", s.mMin),
		logger.String("tieBreak", s.tieBreak.String()),
	)

	snap, err := s.rebuild(ctx, s.logger)
	if err != nil {
		return err
	}

	s.started = true
	s.logger.Info(ctx, "popularity service started",
		logger.String("snapshot", snap.ID),
		logger.Int("items", snap.Scorer.Len()),
	)

	return nil
}

// Reload rebuilds the ranking from the source. The new snapshot replaces the
// current one only when the build succeeds; on failure the previous ranking
// keeps serving.
func (s *Service) Reload(ctx context.Context) (*repository.Snapshot, error) {
	return s.rebuild(ctx, s.currentLogger())
}

func (s *Service) rebuild(ctx context.Context, log logger.Logger) (*repository.Snapshot, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	if s.src == nil {
		metrics.RecordRankingBuild("failure")
		return nil, ErrNoSource
	}

	loadStart := time.Now()
	ds, err := source.Load(ctx, s.src)
	loadTime := time.Since(loadStart)
	metrics.RecordSourceLoadDuration(float64(loadTime.Microseconds()) / 1000)
	if err != nil {
		metrics.RecordRankingBuild("failure")
		metrics.RecordErrorByComponent("service", "data_load")
		log.Error(ctx, "failed to load ranking inputs", logger.Error(err))
		return nil, fmt.Errorf("load ranking inputs: %w", err)
	}

	buildStart := time.Now()
	scorer, err := scoring.New(ds,
		scoring.WithMMin(s.mMin),
		scoring.WithTieBreak(s.tieBreak),
	)
	buildTime := time.Since(buildStart)
	metrics.RecordRankingBuildDuration(float64(buildTime.Microseconds()) / 1000)
	if err != nil {
		metrics.RecordRankingBuild("failure")
		metrics.RecordErrorByComponent("service", "build")
		log.Error(ctx, "failed to build ranking", logger.Error(err))
		return nil, fmt.Errorf("build ranking: %w", err)
	}

	table := scorer.Summary()
	metrics.RecordRankingBuild("success")
	metrics.UpdateRatingsRetained(table.RatingsRetained)
	metrics.UpdateRatingsDiscarded(table.RatingsDiscarded)
	metrics.UpdateGlobalMean(table.GlobalMean)
	metrics.UpdateKnownUsers(scorer.KnownUsers())

	snap := s.store.Publish(ctx, scorer)
	log.Info(ctx, "ranking published",
		logger.String("snapshot", snap.ID),
		logger.Int("ratings", len(ds.Ratings)),
		logger.Int("retained", table.RatingsRetained),
		logger.Int("discarded", table.RatingsDiscarded),
		logger.Int("itemsRated", table.ItemsRated),
		logger.Int("items", scorer.Len()),
		logger.Float64("globalMean", table.GlobalMean),
		logger.Duration("load", loadTime),
		logger.Duration("build", buildTime),
	)

	return snap, nil
}

// TopN returns the top N books of the current ranking.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	entries, err := s.store.TopN(ctx, n)
	if err != nil {
		return nil, err
	}
	metrics.RecordQuery("top", false)

	return toAPIEntries(entries), nil
}

// RecommendForUser returns the books recommended to userID and whether the
// user is registered. Every user currently receives the global top N.
func (s *Service) RecommendForUser(ctx context.Context, userID string, n int) ([]types.Entry, bool, error) {
	entries, known, err := s.store.Recommend(ctx, userID, n)
	if err != nil {
		return nil, known, err
	}
	metrics.RecordQuery("recommend", known)

	s.currentLogger().Debug(ctx, "served recommendation",
		logger.String("user", userID),
		logger.Bool("known", known),
		logger.Int("count", len(entries)),
	)

	return toAPIEntries(entries), known, nil
}

// Rank returns the rank and row of a given book.
func (s *Service) Rank(ctx context.Context, itemID string) (types.Entry, error) {
	entry, err := s.store.Rank(ctx, itemID)
	if err != nil {
		return types.Entry{}, err
	}

	return toAPIEntry(entry), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) types.Stats {
	stats := types.Stats{
		MMin:     s.mMin,
		TieBreak: s.tieBreak.String(),
	}

	snap, err := s.store.Current(ctx)
	if err != nil {
		return stats
	}

	table := snap.Scorer.Summary()
	stats.Ready = true
	stats.SnapshotID = snap.ID
	stats.BuiltAt = snap.BuiltAt
	stats.Items = snap.Scorer.Len()
	stats.GlobalMean = table.GlobalMean
	stats.MMin = table.MMin
	stats.RatingsRetained = table.RatingsRetained
	stats.RatingsDiscarded = table.RatingsDiscarded
	stats.KnownUsers = snap.Scorer.KnownUsers()

	return stats
}

// Started reports whether Start has completed successfully.
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// currentLogger returns the configured logger or the global one.
func (s *Service) currentLogger() logger.Logger {
	s.mu.RLock()
	l := s.logger
	s.mu.RUnlock()
	if l == nil {
		return logger.Get()
	}
	return l
}

func toAPIEntries(entries []repository.Entry) []types.Entry {
	out := make([]types.Entry, len(entries))
	for i, entry := range entries {
		out[i] = toAPIEntry(entry)
	}
	return out
}

func toAPIEntry(entry repository.Entry) types.Entry {
	return types.Entry{
		Rank:       entry.Rank,
		ItemID:     entry.ItemID,
		Title:      entry.Title,
		Author:     entry.Author,
		NumRatings: entry.NumRatings,
		AvgRating:  entry.AvgRating,
		Score:      entry.Score,
	}
}
