package scoring

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrEmptyDataset is returned when no positive rating survives filtering,
	// which leaves the global mean undefined.
	ErrEmptyDataset = errors.New("empty dataset: no positive ratings")
	// ErrInvalidArgument flags a parameter outside its domain (n < 1, m_min < 0).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound is returned by Lookup for an item missing from the ranking.
	ErrNotFound = errors.New("book not found")
)
