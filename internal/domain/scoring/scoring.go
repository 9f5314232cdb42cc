// Package scoring ranks books by a Bayesian-smoothed average rating.
//
// Every book is treated as if it had m_min extra ratings at the global mean:
//
//	score = v/(v+m)*R + m/(v+m)*C
//
// where v is the book's rating count, R its average rating and C the mean of
// all retained ratings. The ranking table is computed once in New and never
// changes afterwards, so a Scorer is safe for concurrent readers.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/bookpop/internal/domain/model"
)

// Row is one ranked book.
type Row struct {
	ItemID     string
	Title      string
	Author     string
	NumRatings int
	AvgRating  float64
	Score      float64
}

// Table is the frozen ranking produced by a build.
type Table struct {
	Rows             []Row
	GlobalMean       float64
	MMin             float64
	ItemsRated       int // distinct item ids with at least one positive rating
	RatingsRetained  int
	RatingsDiscarded int
}

// Scorer holds the ranking table and the known-user set.
type Scorer struct {
	mMin     float64
	tieBreak TieBreak

	table Table
	index map[string]int
	users map[int64]struct{}
}

// New builds the ranking table for ds. It fails with ErrEmptyDataset when no
// positive rating remains and with ErrInvalidArgument for a bad m_min.
func New(ds model.Dataset, opts ...Option) (*Scorer, error) {
	s := &Scorer{
		mMin:     DefaultMMin,
		tieBreak: TieBreakFirstSeen,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if math.IsNaN(s.mMin) || math.IsInf(s.mMin, 0) || s.mMin < 0 {
		return nil, fmt.Errorf("%w: m_min must be a finite value >= 0, got %v", ErrInvalidArgument, s.mMin)
	}

	table, err := build(ds.Ratings, ds.Books, s.mMin, s.tieBreak)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(table.Rows))
	for i, row := range table.Rows {
		index[row.ItemID] = i
	}
	users := make(map[int64]struct{}, len(ds.Users))
	for _, id := range ds.Users {
		users[id] = struct{}{}
	}

	s.table = table
	s.index = index
	s.users = users
	return s, nil
}

// BayesianScore blends an item's average with the global mean, weighted by
// its rating count v against the m virtual ratings of the prior.
func BayesianScore(v int, avg, globalMean, m float64) float64 {
	n := float64(v)
	return (n/(n+m))*avg + (m/(n+m))*globalMean
}

// aggregate accumulates the positive ratings of one item.
type aggregate struct {
	count int
	sum   float64
}

func build(ratings []model.Rating, books []model.Book, mMin float64, tieBreak TieBreak) (Table, error) {
	order := make([]string, 0)
	groups := make(map[string]*aggregate)
	var (
		retained  int
		discarded int
		grandSum  float64
	)

	for _, r := range ratings {
		if !(r.Rating > 0) {
			discarded++
			continue
		}
		g, ok := groups[r.ItemID]
		if !ok {
			g = &aggregate{}
			groups[r.ItemID] = g
			order = append(order, r.ItemID)
		}
		g.count++
		g.sum += r.Rating
		grandSum += r.Rating
		retained++
	}

	if retained == 0 {
		return Table{}, fmt.Errorf("%w: %d ratings read, none above zero", ErrEmptyDataset, discarded)
	}
	globalMean := grandSum / float64(retained)

	// First complete metadata row per item wins.
	meta := make(map[string]model.Book, len(books))
	for _, b := range books {
		if !b.Complete() {
			continue
		}
		if _, seen := meta[b.ItemID]; !seen {
			meta[b.ItemID] = b
		}
	}

	rows := make([]Row, 0, len(order))
	for _, id := range order {
		b, ok := meta[id]
		if !ok {
			continue
		}
		g := groups[id]
		avg := g.sum / float64(g.count)
		rows = append(rows, Row{
			ItemID:     id,
			Title:      b.Title,
			Author:     b.Author,
			NumRatings: g.count,
			AvgRating:  avg,
			Score:      BayesianScore(g.count, avg, globalMean, mMin),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		if tieBreak == TieBreakItemID {
			return rows[i].ItemID < rows[j].ItemID
		}
		return false
	})

	return Table{
		Rows:             rows,
		GlobalMean:       globalMean,
		MMin:             mMin,
		ItemsRated:       len(order),
		RatingsRetained:  retained,
		RatingsDiscarded: discarded,
	}, nil
}

// TopN returns the first min(n, Len()) rows in rank order.
func (s *Scorer) TopN(n int) ([]Row, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: n must be >= 1, got %d", ErrInvalidArgument, n)
	}
	if n > len(s.table.Rows) {
		n = len(s.table.Rows)
	}
	out := make([]Row, n)
	copy(out, s.table.Rows[:n])
	return out, nil
}

// RecommendForUser returns the global ranking for every user. Known and
// unknown users take separate branches that produce the same rows; the model
// is popularity only.
func (s *Scorer) RecommendForUser(userID string, n int) ([]Row, error) {
	if !s.IsKnownUser(userID) {
		return s.TopN(n)
	}
	return s.TopN(n)
}

// IsKnownUser reports whether userID parses as an integer present in the
// registered-user set.
func (s *Scorer) IsKnownUser(userID string) bool {
	id, err := strconv.ParseInt(strings.TrimSpace(userID), 10, 64)
	if err != nil {
		return false
	}
	_, ok := s.users[id]
	return ok
}

// Lookup returns the row for itemID with its 1-based position.
func (s *Scorer) Lookup(itemID string) (Row, int, error) {
	i, ok := s.index[itemID]
	if !ok {
		return Row{}, 0, fmt.Errorf("%w: %s", ErrNotFound, itemID)
	}
	return s.table.Rows[i], i + 1, nil
}

// Len returns the number of ranked rows.
func (s *Scorer) Len() int {
	return len(s.table.Rows)
}

// KnownUsers returns the size of the registered-user set.
func (s *Scorer) KnownUsers() int {
	return len(s.users)
}

// Table returns a copy of the ranking table.
func (s *Scorer) Table() Table {
	t := s.table
	t.Rows = make([]Row, len(s.table.Rows))
	copy(t.Rows, s.table.Rows)
	return t
}

// Summary returns the table aggregates without the rows.
func (s *Scorer) Summary() Table {
	t := s.table
	t.Rows = nil
	return t
}
