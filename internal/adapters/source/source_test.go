package source_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/bookpop/internal/adapters/source"
	"github.com/okian/bookpop/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	ratingsCSV = "item_id,user_id,rating\nA,1,10\nA,2,8\nB,3,5\nC,4,0\n"
	booksCSV   = "item_id,title,author,year\nA,Title A,Auth A,2001\nB,Title B,Auth B,1999\nC,,Auth C,2010\n"
	usersCSV   = "user_id,location\n1,nyc\n2,\"paris, france\"\n3,rome\n"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCSV_Load(t *testing.T) {
	Convey("Given CSV files following the column contract", t, func() {
		dir := t.TempDir()
		src := source.NewCSV(
			writeFile(t, dir, "ratings.csv", ratingsCSV),
			writeFile(t, dir, "books.csv", booksCSV),
			writeFile(t, dir, "users.csv", usersCSV),
		)

		Convey("When loading the dataset", func() {
			ds, err := source.Load(context.Background(), src)

			Convey("Then every table should be read in file order", func() {
				So(err, ShouldBeNil)
				So(ds.Ratings, ShouldResemble, []model.Rating{
					{ItemID: "A", UserID: 1, Rating: 10},
					{ItemID: "A", UserID: 2, Rating: 8},
					{ItemID: "B", UserID: 3, Rating: 5},
					{ItemID: "C", UserID: 4, Rating: 0},
				})
				So(len(ds.Books), ShouldEqual, 3)
				So(ds.Books[0], ShouldResemble, model.Book{ItemID: "A", Title: "Title A", Author: "Auth A"})
				So(ds.Books[2].Complete(), ShouldBeFalse)
				So(ds.Users, ShouldResemble, []int64{1, 2, 3})
			})
		})
	})

	Convey("Given Book-Crossing style files", t, func() {
		dir := t.TempDir()
		src := source.NewCSV(
			writeFile(t, dir, "Ratings.csv", "\ufeff\"User-ID\";\"ISBN\";\"Book-Rating\"\n\"276725\";\"034545104X\";\"0\"\n\"276726\";\"0155061224\";\"5\"\n"),
			writeFile(t, dir, "Books.csv", "\"ISBN\";\"Book-Title\";\"Book-Author\";\"Publisher\"\n\"0155061224\";\"Rites of Passage\";\"Judith Rae\";\"Heinle\"\n"),
			writeFile(t, dir, "Users.csv", "\"User-ID\";\"Location\";\"Age\"\n\"276725\";\"tyler, texas, usa\";NULL\n"),
			source.WithDelimiter(';'),
		)

		Convey("When loading with the dashed header names and ';' delimiter", func() {
			ds, err := source.Load(context.Background(), src)

			Convey("Then the aliases should resolve to the logical columns", func() {
				So(err, ShouldBeNil)
				So(ds.Ratings, ShouldResemble, []model.Rating{
					{ItemID: "034545104X", UserID: 276725, Rating: 0},
					{ItemID: "0155061224", UserID: 276726, Rating: 5},
				})
				So(ds.Books, ShouldResemble, []model.Book{{ItemID: "0155061224", Title: "Rites of Passage", Author: "Judith Rae"}})
				So(ds.Users, ShouldResemble, []int64{276725})
			})
		})
	})
}

func TestCSV_Errors(t *testing.T) {
	Convey("Given malformed inputs", t, func() {
		dir := t.TempDir()
		books := writeFile(t, dir, "books.csv", booksCSV)
		users := writeFile(t, dir, "users.csv", usersCSV)
		ctx := context.Background()

		Convey("When the ratings file does not exist", func() {
			src := source.NewCSV(filepath.Join(dir, "missing.csv"), books, users)
			_, err := source.Load(ctx, src)

			Convey("Then it should be a data load error wrapping the os error", func() {
				So(errors.Is(err, source.ErrDataLoad), ShouldBeTrue)
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
				var le *source.LoadError
				So(errors.As(err, &le), ShouldBeTrue)
				So(le.Table, ShouldEqual, source.TableRatings)
			})
		})

		Convey("When a required column is missing", func() {
			ratings := writeFile(t, dir, "ratings.csv", "item_id,user_id\nA,1\n")
			_, err := source.Load(ctx, source.NewCSV(ratings, books, users))

			Convey("Then it should report the missing column", func() {
				So(errors.Is(err, source.ErrDataLoad), ShouldBeTrue)
				So(errors.Is(err, source.ErrMissingColumn), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "rating")
			})
		})

		Convey("When user_id is not an integer", func() {
			ratings := writeFile(t, dir, "ratings.csv", "item_id,user_id,rating\nA,1,5\nB,bob,7\n")
			_, err := source.Load(ctx, source.NewCSV(ratings, books, users))

			Convey("Then it should fail on that line", func() {
				So(errors.Is(err, source.ErrDataLoad), ShouldBeTrue)
				So(errors.Is(err, source.ErrBadValue), ShouldBeTrue)
				var le *source.LoadError
				So(errors.As(err, &le), ShouldBeTrue)
				So(le.Line, ShouldEqual, 3)
			})
		})

		Convey("When a rating is not numeric", func() {
			ratings := writeFile(t, dir, "ratings.csv", "item_id,user_id,rating\nA,1,great\n")
			_, err := source.Load(ctx, source.NewCSV(ratings, books, users))

			Convey("Then it should be a data load error", func() {
				So(errors.Is(err, source.ErrBadValue), ShouldBeTrue)
			})
		})

		Convey("When a rating is NaN", func() {
			ratings := writeFile(t, dir, "ratings.csv", "item_id,user_id,rating\nA,1,NaN\n")
			_, err := source.Load(ctx, source.NewCSV(ratings, books, users))

			Convey("Then it should be rejected as non-numeric", func() {
				So(errors.Is(err, source.ErrBadValue), ShouldBeTrue)
			})
		})

		Convey("When the users file has a non-integer id", func() {
			ratings := writeFile(t, dir, "ratings.csv", ratingsCSV)
			badUsers := writeFile(t, dir, "bad-users.csv", "user_id\n1\nx\n")
			_, err := source.Load(ctx, source.NewCSV(ratings, books, badUsers))

			Convey("Then it should be a data load error for the users table", func() {
				var le *source.LoadError
				So(errors.As(err, &le), ShouldBeTrue)
				So(le.Table, ShouldEqual, source.TableUsers)
			})
		})

		Convey("When a file is empty", func() {
			ratings := writeFile(t, dir, "ratings.csv", "")
			_, err := source.Load(ctx, source.NewCSV(ratings, books, users))

			Convey("Then the missing header should be reported", func() {
				So(errors.Is(err, source.ErrMissingColumn), ShouldBeTrue)
			})
		})
	})
}

func TestSQLite(t *testing.T) {
	Convey("Given a SQLite database written from a dataset", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "data", "bookpop.db")
		ds := model.Dataset{
			Ratings: []model.Rating{
				{ItemID: "A", UserID: 1, Rating: 10},
				{ItemID: "B", UserID: 2, Rating: 7.5},
				{ItemID: "A", UserID: 3, Rating: 0},
			},
			Books: []model.Book{
				{ItemID: "A", Title: "Title A", Author: "Auth A"},
				{ItemID: "B", Title: "Title B"},
			},
			Users: []int64{1, 2, 3},
		}

		db, err := source.CreateSQLite(path)
		So(err, ShouldBeNil)
		So(db.WriteDataset(ctx, ds), ShouldBeNil)
		So(db.Close(), ShouldBeNil)

		Convey("When reopening and loading it", func() {
			src, err := source.OpenSQLite(path)
			So(err, ShouldBeNil)
			defer func() { _ = src.Close() }()
			loaded, err := source.Load(ctx, src)

			Convey("Then the dataset should round-trip in insertion order", func() {
				So(err, ShouldBeNil)
				So(loaded, ShouldResemble, ds)
				So(src.Path(), ShouldEqual, path)
			})
		})

		Convey("When writing a second dataset", func() {
			db, err := source.CreateSQLite(path)
			So(err, ShouldBeNil)
			defer func() { _ = db.Close() }()
			next := model.Dataset{
				Ratings: []model.Rating{{ItemID: "Z", UserID: 9, Rating: 4}},
				Books:   []model.Book{{ItemID: "Z", Title: "Z", Author: "Y"}},
				Users:   []int64{9},
			}
			So(db.WriteDataset(ctx, next), ShouldBeNil)
			loaded, err := source.Load(ctx, db)

			Convey("Then it should replace the previous contents", func() {
				So(err, ShouldBeNil)
				So(loaded, ShouldResemble, next)
			})
		})
	})

	Convey("Given SQLite files that do not match the schema", t, func() {
		ctx := context.Background()
		dir := t.TempDir()

		Convey("When the file does not exist", func() {
			_, err := source.OpenSQLite(filepath.Join(dir, "nope.db"))

			Convey("Then it should be a data load error", func() {
				So(errors.Is(err, source.ErrDataLoad), ShouldBeTrue)
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
			})
		})

		Convey("When the tables are missing", func() {
			path := filepath.Join(dir, "empty.db")
			So(os.WriteFile(path, nil, 0o600), ShouldBeNil)
			src, err := source.OpenSQLite(path)
			So(err, ShouldBeNil)
			defer func() { _ = src.Close() }()
			_, err = source.Load(ctx, src)

			Convey("Then loading should fail with a data load error", func() {
				So(errors.Is(err, source.ErrDataLoad), ShouldBeTrue)
			})
		})
	})
}
