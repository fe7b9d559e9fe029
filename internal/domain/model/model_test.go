package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/okian/lotus-ledger/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestNewGame(t *testing.T) {
	convey.Convey("Given creation fields with only the required players", t, func() {
		f := model.Fields{Player1: model.Some(12), Player2: model.Some(7)}

		convey.Convey("When building a game", func() {
			g := model.NewGame(f)

			convey.Convey("Then the optional players start at the default score", func() {
				convey.So(g.Player1, convey.ShouldEqual, uint8(12))
				convey.So(g.Player2, convey.ShouldEqual, uint8(7))
				convey.So(g.Player3, convey.ShouldEqual, model.DefaultScore)
				convey.So(g.Player4, convey.ShouldEqual, model.DefaultScore)
				convey.So(g.ID.IsZero(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given creation fields with every player", t, func() {
		f := model.Fields{
			Player1: model.Some(0),
			Player2: model.Some(255),
			Player3: model.Some(1),
			Player4: model.Some(2),
		}

		convey.Convey("Then every supplied value is kept", func() {
			g := model.NewGame(f)
			convey.So(g.Player1, convey.ShouldEqual, uint8(0))
			convey.So(g.Player2, convey.ShouldEqual, uint8(255))
			convey.So(g.Player3, convey.ShouldEqual, uint8(1))
			convey.So(g.Player4, convey.ShouldEqual, uint8(2))
		})
	})
}

func TestFieldsDecode(t *testing.T) {
	convey.Convey("Given JSON payloads", t, func() {
		convey.Convey("When optional keys are absent", func() {
			var f model.Fields
			err := json.Unmarshal([]byte(`{"player1":40,"player2":40}`), &f)

			convey.Convey("Then only the supplied slots are set", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(f.Player1, convey.ShouldResemble, model.Some(40))
				convey.So(f.Player3.Set, convey.ShouldBeFalse)
				convey.So(f.Player3.Null, convey.ShouldBeFalse)
				convey.So(f.ValidateCreate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When an optional key is null", func() {
			var f model.Fields
			err := json.Unmarshal([]byte(`{"player1":1,"player2":2,"player4":null}`), &f)

			convey.Convey("Then the slot is marked null but not set", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(f.Player4.Null, convey.ShouldBeTrue)
				convey.So(f.Player4.Set, convey.ShouldBeFalse)
				convey.So(f.Changes(), convey.ShouldNotContainKey, "player4")
			})
		})

		convey.Convey("When a value is out of range", func() {
			var f model.Fields
			err := json.Unmarshal([]byte(`{"player1":256,"player2":2}`), &f)

			convey.Convey("Then decoding fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When a value is negative or not a number", func() {
			var f model.Fields
			convey.So(json.Unmarshal([]byte(`{"player1":-1}`), &f), convey.ShouldNotBeNil)
			convey.So(json.Unmarshal([]byte(`{"player1":"ten"}`), &f), convey.ShouldNotBeNil)
			convey.So(json.Unmarshal([]byte(`{"player1":1.5}`), &f), convey.ShouldNotBeNil)
		})

		convey.Convey("When a required player is missing", func() {
			var f model.Fields
			err := json.Unmarshal([]byte(`{"player2":3}`), &f)

			convey.Convey("Then create validation reports it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(f.ValidateCreate(), convey.ShouldEqual, model.ErrMissingPlayer1)
			})
		})
	})
}

func TestGameApply(t *testing.T) {
	convey.Convey("Given a stored game", t, func() {
		g := model.Game{Player1: 40, Player2: 40, Player3: 30, Player4: 15}

		convey.Convey("When applying a partial change", func() {
			g.Apply(model.Fields{Player1: model.Some(35)})

			convey.Convey("Then only the supplied slot changes", func() {
				convey.So(g, convey.ShouldResemble, model.Game{Player1: 35, Player2: 40, Player3: 30, Player4: 15})
			})
		})

		convey.Convey("When applying empty fields", func() {
			f := model.Fields{}
			g.Apply(f)

			convey.Convey("Then nothing changes", func() {
				convey.So(f.Empty(), convey.ShouldBeTrue)
				convey.So(len(f.Changes()), convey.ShouldEqual, 0)
				convey.So(g.Player3, convey.ShouldEqual, uint8(30))
			})
		})
	})
}

func TestGameJSON(t *testing.T) {
	convey.Convey("Given a game with an id", t, func() {
		g := model.DefaultGame()
		g.ID = model.NewID()

		convey.Convey("When encoding to JSON", func() {
			b, err := json.Marshal(g)
			convey.So(err, convey.ShouldBeNil)

			var out map[string]any
			convey.So(json.Unmarshal(b, &out), convey.ShouldBeNil)

			convey.Convey("Then the id is a hex string under _id", func() {
				convey.So(out["_id"], convey.ShouldEqual, g.Hex())
				convey.So(out["player3"], convey.ShouldEqual, float64(40))
			})
		})
	})
}

func TestParseID(t *testing.T) {
	convey.Convey("Given identifiers", t, func() {
		id := model.NewID()

		convey.Convey("Then a valid hex round-trips", func() {
			got, err := model.ParseID(id.Hex())
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldEqual, id)
		})

		convey.Convey("Then malformed input is rejected", func() {
			_, err := model.ParseID("not-an-id")
			convey.So(err, convey.ShouldEqual, model.ErrInvalidID)
			_, err = model.ParseID("")
			convey.So(err, convey.ShouldEqual, model.ErrInvalidID)
		})
	})
}

func TestPageWindow(t *testing.T) {
	convey.Convey("Given a listing of 5 records", t, func() {
		const total = 5

		cases := []struct {
			page       model.Page
			start, end int
		}{
			{model.AllPages(), 0, 5},
			{model.Page{Offset: 2, Limit: model.NoLimit}, 2, 5},
			{model.Page{Offset: 1, Limit: 2}, 1, 3},
			{model.Page{Offset: 4, Limit: 10}, 4, 5},
			{model.Page{Offset: 9, Limit: 1}, 5, 5},
			{model.Page{Offset: 0, Limit: 0}, 0, 0},
		}

		convey.Convey("Then each window has length min(limit, max(0, total-offset))", func() {
			for _, c := range cases {
				start, end := c.page.Window(total)
				convey.So(start, convey.ShouldEqual, c.start)
				convey.So(end, convey.ShouldEqual, c.end)
			}
		})
	})
}
