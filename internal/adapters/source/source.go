// Package source loads the ratings, book metadata and registered users that
// feed a ranking build.
package source

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/bookpop/internal/domain/model"
	"golang.org/x/sync/errgroup"
)

// Table names used in errors and metrics.
const (
	TableRatings = "ratings"
	TableBooks   = "books"
	TableUsers   = "users"
)

// Source reads the three input tables.
type Source interface {
	Ratings(ctx context.Context) ([]model.Rating, error)
	Books(ctx context.Context) ([]model.Book, error)
	Users(ctx context.Context) ([]int64, error)
}

// Load reads all tables of src concurrently. The first failure cancels the
// remaining reads and is returned as is.
func Load(ctx context.Context, src Source) (model.Dataset, error) {
	var ds model.Dataset
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ratings, err := src.Ratings(gctx)
		ds.Ratings = ratings
		return err
	})
	g.Go(func() error {
		books, err := src.Books(gctx)
		ds.Books = books
		return err
	})
	g.Go(func() error {
		users, err := src.Users(gctx)
		ds.Users = users
		return err
	})

	if err := g.Wait(); err != nil {
		return model.Dataset{}, err
	}
	return ds, nil
}

func parseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: user_id %q is not an integer", ErrBadValue, raw)
	}
	return id, nil
}

func parseRating(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: rating %q is not numeric", ErrBadValue, raw)
	}
	return v, nil
}
