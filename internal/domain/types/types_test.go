package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/bookpop/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntryJSON(t *testing.T) {
	Convey("Given a ranked entry", t, func() {
		entry := types.Entry{
			Rank:       1,
			ItemID:     "0439136350",
			Title:      "Harry Potter and the Prisoner of Azkaban",
			Author:     "J. K. Rowling",
			NumRatings: 2,
			AvgRating:  9,
			Score:      8.5,
		}

		Convey("When encoding it as JSON", func() {
			raw, err := json.Marshal(entry)
			So(err, ShouldBeNil)

			var fields map[string]any
			So(json.Unmarshal(raw, &fields), ShouldBeNil)

			Convey("Then it should use the display column names", func() {
				So(fields, ShouldContainKey, "rank")
				So(fields, ShouldContainKey, "item_id")
				So(fields, ShouldContainKey, "title")
				So(fields, ShouldContainKey, "author")
				So(fields, ShouldContainKey, "num_ratings")
				So(fields, ShouldContainKey, "avg_rating")
				So(fields, ShouldContainKey, "score")
				So(fields["num_ratings"], ShouldEqual, float64(2))
			})
		})

		Convey("When the entry is the zero value", func() {
			var zero types.Entry

			Convey("Then every field should be empty", func() {
				So(zero.Rank, ShouldEqual, 0)
				So(zero.ItemID, ShouldEqual, "")
				So(zero.Score, ShouldEqual, 0.0)
			})
		})
	})
}

func TestStatsJSON(t *testing.T) {
	Convey("Given stats of a service that has not built a ranking", t, func() {
		raw, err := json.Marshal(types.Stats{MMin: 50, TieBreak: "first_seen"})
		So(err, ShouldBeNil)

		var fields map[string]any
		So(json.Unmarshal(raw, &fields), ShouldBeNil)

		Convey("Then the snapshot fields should be omitted", func() {
			So(fields["ready"], ShouldEqual, false)
			So(fields, ShouldNotContainKey, "snapshot_id")
			So(fields, ShouldNotContainKey, "built_at")
			So(fields["m_min"], ShouldEqual, float64(50))
		})
	})
}
