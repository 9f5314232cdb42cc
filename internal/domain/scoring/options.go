package scoring

import (
	"fmt"
	"strings"
)

// DefaultMMin is the number of virtual ratings at the global mean that every
// book starts with.
const DefaultMMin = 50

// TieBreak selects how rows with equal scores are ordered.
type TieBreak int

const (
	// TieBreakFirstSeen keeps equal scores in the order their item_id first
	// appeared in the ratings.
	TieBreakFirstSeen TieBreak = iota
	// TieBreakItemID orders equal scores by item_id ascending.
	TieBreakItemID
)

// String returns the config spelling of t.
func (t TieBreak) String() string {
	switch t {
	case TieBreakItemID:
		return "item_id"
	default:
		return "first_seen"
	}
}

// ParseTieBreak maps a config value onto a TieBreak.
func ParseTieBreak(s string) (TieBreak, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first_seen":
		return TieBreakFirstSeen, nil
	case "item_id":
		return TieBreakItemID, nil
	default:
		return TieBreakFirstSeen, fmt.Errorf("%w: unknown tie break %q", ErrInvalidArgument, s)
	}
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithMMin sets the smoothing constant. Negative or NaN values make New fail
// with ErrInvalidArgument.
func WithMMin(m float64) Option {
	return func(s *Scorer) {
		s.mMin = m
	}
}

// WithTieBreak sets the ordering of equal scores.
func WithTieBreak(t TieBreak) Option {
	return func(s *Scorer) {
		s.tieBreak = t
	}
}
