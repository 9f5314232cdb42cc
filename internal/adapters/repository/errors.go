package repository

import (
	"errors"

	"github.com/okian/bookpop/internal/domain/scoring"
)

// Sentinel kinds for ranking store errors.
var (
	ErrNotReady = errors.New("ranking not built yet")
	// ErrNotFound aliases the scoring kind so callers can match either.
	ErrNotFound = scoring.ErrNotFound
)
