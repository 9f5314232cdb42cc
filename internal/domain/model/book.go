// Package model contains domain models passed between layers.
package model

// Rating is a single user's rating of a book. Only ratings above zero take
// part in scoring; zero means "implicit interaction" in the Book-Crossing data.
type Rating struct {
	ItemID string  // book identifier (ISBN)
	UserID int64   // rater identifier
	Rating float64 // explicit rating, 1..10 when positive
}

// Book carries the display metadata joined onto the ranking.
// An empty Title or Author is treated as missing.
type Book struct {
	ItemID string
	Title  string
	Author string
}

// Complete reports whether both title and author are present.
func (b Book) Complete() bool {
	return b.Title != "" && b.Author != ""
}

// Dataset bundles the three inputs of a ranking build.
type Dataset struct {
	Ratings []Rating
	Books   []Book
	Users   []int64
}
