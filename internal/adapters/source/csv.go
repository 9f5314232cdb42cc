package source

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/okian/bookpop/internal/domain/model"
)

// ctxCheckEvery bounds how many records are read between cancellation checks.
const ctxCheckEvery = 4096

// columnAliases maps each logical column onto the header spellings accepted
// for it. The Book-Crossing dump uses the dashed names.
var columnAliases = map[string][]string{
	"item_id": {"item_id", "isbn"},
	"user_id": {"user_id", "user-id"},
	"rating":  {"rating", "book-rating", "book_rating"},
	"title":   {"title", "book-title", "book_title"},
	"author":  {"author", "book-author", "book_author"},
}

// CSVOption applies a configuration option to the CSV source.
type CSVOption func(*CSV)

// WithDelimiter sets the field separator (default ',').
func WithDelimiter(r rune) CSVOption {
	return func(c *CSV) {
		if r != 0 {
			c.comma = r
		}
	}
}

// WithLazyQuotes toggles tolerance for stray quotes inside unquoted fields.
func WithLazyQuotes(lazy bool) CSVOption {
	return func(c *CSV) {
		c.lazyQuotes = lazy
	}
}

// CSV reads the three tables from flat files with a header row.
type CSV struct {
	ratingsPath string
	booksPath   string
	usersPath   string
	comma       rune
	lazyQuotes  bool
}

// NewCSV creates a CSV source over the given files.
func NewCSV(ratingsPath, booksPath, usersPath string, opts ...CSVOption) *CSV {
	c := &CSV{
		ratingsPath: ratingsPath,
		booksPath:   booksPath,
		usersPath:   usersPath,
		comma:       ',',
		lazyQuotes:  true,
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Ratings implements Source.Ratings.
func (c *CSV) Ratings(ctx context.Context) ([]model.Rating, error) {
	var out []model.Rating
	err := c.read(ctx, TableRatings, c.ratingsPath, []string{"item_id", "user_id", "rating"},
		func(rec []string, col map[string]int) error {
			userID, err := parseUserID(field(rec, col["user_id"]))
			if err != nil {
				return err
			}
			rating, err := parseRating(field(rec, col["rating"]))
			if err != nil {
				return err
			}
			out = append(out, model.Rating{ItemID: field(rec, col["item_id"]), UserID: userID, Rating: rating})
			return nil
		})
	return out, err
}

// Books implements Source.Books.
func (c *CSV) Books(ctx context.Context) ([]model.Book, error) {
	var out []model.Book
	err := c.read(ctx, TableBooks, c.booksPath, []string{"item_id", "title", "author"},
		func(rec []string, col map[string]int) error {
			out = append(out, model.Book{
				ItemID: field(rec, col["item_id"]),
				Title:  field(rec, col["title"]),
				Author: field(rec, col["author"]),
			})
			return nil
		})
	return out, err
}

// Users implements Source.Users.
func (c *CSV) Users(ctx context.Context) ([]int64, error) {
	var out []int64
	err := c.read(ctx, TableUsers, c.usersPath, []string{"user_id"},
		func(rec []string, col map[string]int) error {
			id, err := parseUserID(field(rec, col["user_id"]))
			if err != nil {
				return err
			}
			out = append(out, id)
			return nil
		})
	return out, err
}

// read streams path record by record, resolving required columns from the
// header before handing each record to fn.
func (c *CSV) read(ctx context.Context, table, path string, required []string, fn func(rec []string, col map[string]int) error) error {
	fail := func(line int, err error) error {
		return &LoadError{Table: table, Path: path, Line: line, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return fail(0, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(bufio.NewReader(f))
	r.Comma = c.comma
	r.LazyQuotes = c.lazyQuotes
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return fail(1, fmt.Errorf("%w: empty file, no header", ErrMissingColumn))
	}
	if err != nil {
		return fail(1, err)
	}
	col, err := resolveColumns(header, required)
	if err != nil {
		return fail(1, err)
	}

	for line := 2; ; line++ {
		if line%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fail(line, err)
		}
		if err := fn(rec, col); err != nil {
			return fail(line, err)
		}
	}
}

// resolveColumns maps every required logical column to its header index.
func resolveColumns(header, required []string) (map[string]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		// A leading BOM keeps the reader from seeing the opening quote.
		name := strings.Trim(strings.TrimPrefix(h, "\ufeff"), "\" \t")
		name = strings.ToLower(name)
		if _, dup := byName[name]; !dup {
			byName[name] = i
		}
	}

	col := make(map[string]int, len(required))
	for _, want := range required {
		found := false
		for _, alias := range columnAliases[want] {
			if i, ok := byName[alias]; ok {
				col[want] = i
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, want)
		}
	}
	return col, nil
}

// field returns rec[i] or "" for short records.
func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return rec[i]
}
