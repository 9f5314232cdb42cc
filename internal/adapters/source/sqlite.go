package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/bookpop/internal/domain/model"
	_ "modernc.org/sqlite"
)

// schema is the table layout read by SQLite and written by WriteDataset.
const schema = `
CREATE TABLE IF NOT EXISTS ratings (
    item_id TEXT NOT NULL,
    user_id INTEGER NOT NULL,
    rating  REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ratings_item ON ratings(item_id);

CREATE TABLE IF NOT EXISTS books (
    item_id TEXT NOT NULL,
    title   TEXT,
    author  TEXT
);

CREATE TABLE IF NOT EXISTS users (
    user_id INTEGER NOT NULL
);
`

// SQLite reads the three tables from a SQLite database file.
type SQLite struct {
	conn *sql.DB
	path string
}

// OpenSQLite opens the database at path. The file must already exist; use
// CreateSQLite to start a new one.
func OpenSQLite(path string) (*SQLite, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &LoadError{Table: "database", Path: path, Err: err}
	}
	return open(path)
}

// CreateSQLite creates or opens the database at path and ensures the schema.
func CreateSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	s, err := open(path)
	if err != nil {
		return nil, err
	}
	if _, err := s.conn.Exec(schema); err != nil {
		_ = s.conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

func open(path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &LoadError{Table: "database", Path: path, Err: err}
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, &LoadError{Table: "database", Path: path, Err: fmt.Errorf("setting journal mode: %w", err)}
	}
	return &SQLite{conn: conn, path: path}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.path
}

// Ratings implements Source.Ratings.
func (s *SQLite) Ratings(ctx context.Context) ([]model.Rating, error) {
	var out []model.Rating
	err := s.query(ctx, TableRatings, "SELECT item_id, user_id, rating FROM ratings ORDER BY rowid",
		func(rows *sql.Rows) error {
			var item, user, rating sql.NullString
			if err := rows.Scan(&item, &user, &rating); err != nil {
				return err
			}
			userID, err := parseUserID(user.String)
			if err != nil {
				return err
			}
			v, err := parseRating(rating.String)
			if err != nil {
				return err
			}
			out = append(out, model.Rating{ItemID: item.String, UserID: userID, Rating: v})
			return nil
		})
	return out, err
}

// Books implements Source.Books.
func (s *SQLite) Books(ctx context.Context) ([]model.Book, error) {
	var out []model.Book
	err := s.query(ctx, TableBooks, "SELECT item_id, title, author FROM books ORDER BY rowid",
		func(rows *sql.Rows) error {
			var item, title, author sql.NullString
			if err := rows.Scan(&item, &title, &author); err != nil {
				return err
			}
			out = append(out, model.Book{ItemID: item.String, Title: title.String, Author: author.String})
			return nil
		})
	return out, err
}

// Users implements Source.Users.
func (s *SQLite) Users(ctx context.Context) ([]int64, error) {
	var out []int64
	err := s.query(ctx, TableUsers, "SELECT user_id FROM users ORDER BY rowid",
		func(rows *sql.Rows) error {
			var user sql.NullString
			if err := rows.Scan(&user); err != nil {
				return err
			}
			id, err := parseUserID(user.String)
			if err != nil {
				return err
			}
			out = append(out, id)
			return nil
		})
	return out, err
}

func (s *SQLite) query(ctx context.Context, table, q string, scan func(*sql.Rows) error) error {
	rows, err := s.conn.QueryContext(ctx, q)
	if err != nil {
		return &LoadError{Table: table, Path: s.path, Err: err}
	}
	defer func() { _ = rows.Close() }()

	for line := 1; rows.Next(); line++ {
		if err := scan(rows); err != nil {
			return &LoadError{Table: table, Path: s.path, Line: line, Err: err}
		}
	}
	if err := rows.Err(); err != nil {
		return &LoadError{Table: table, Path: s.path, Err: err}
	}
	return nil
}

// WriteDataset replaces the contents of all three tables with ds in a single
// transaction.
func (s *SQLite) WriteDataset(ctx context.Context, ds model.Dataset) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{TableRatings, TableBooks, TableUsers} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if err := insertAll(ctx, tx, "INSERT INTO ratings (item_id, user_id, rating) VALUES (?, ?, ?)", len(ds.Ratings),
		func(stmt *sql.Stmt, i int) error {
			r := ds.Ratings[i]
			_, err := stmt.ExecContext(ctx, r.ItemID, r.UserID, r.Rating)
			return err
		}); err != nil {
		return fmt.Errorf("inserting ratings: %w", err)
	}

	if err := insertAll(ctx, tx, "INSERT INTO books (item_id, title, author) VALUES (?, ?, ?)", len(ds.Books),
		func(stmt *sql.Stmt, i int) error {
			b := ds.Books[i]
			_, err := stmt.ExecContext(ctx, b.ItemID, nullable(b.Title), nullable(b.Author))
			return err
		}); err != nil {
		return fmt.Errorf("inserting books: %w", err)
	}

	if err := insertAll(ctx, tx, "INSERT INTO users (user_id) VALUES (?)", len(ds.Users),
		func(stmt *sql.Stmt, i int) error {
			_, err := stmt.ExecContext(ctx, ds.Users[i])
			return err
		}); err != nil {
		return fmt.Errorf("inserting users: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing dataset: %w", err)
	}
	return nil
}

func insertAll(ctx context.Context, tx *sql.Tx, q string, n int, exec func(*sql.Stmt, int) error) error {
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i := 0; i < n; i++ {
		if err := exec(stmt, i); err != nil {
			return err
		}
	}
	return nil
}

// nullable stores missing metadata as NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
