package session_test

import (
	"testing"

	"github.com/okian/pitwall/internal/domain/session"
	. "github.com/smartystreets/goconvey/convey"
)

func TestIsQualifying(t *testing.T) {
	Convey("Given run descriptions", t, func() {
		Convey("Qualifying, practice and test sessions classify as qualifying-like", func() {
			So(session.IsQualifying("Qualifying 2"), ShouldBeTrue)
			So(session.IsQualifying("Morning Practice"), ShouldBeTrue)
			So(session.IsQualifying("Test Session"), ShouldBeTrue)
			So(session.IsQualifying("QUAL 1"), ShouldBeTrue)
		})

		Convey("Races classify as race even when they mention qualifying", func() {
			So(session.IsQualifying("Feature Race"), ShouldBeFalse)
			So(session.IsQualifying("Qualifying Race"), ShouldBeFalse)
			So(session.IsQualifying("Race 2"), ShouldBeFalse)
		})

		Convey("Anything else defaults to race", func() {
			So(session.IsQualifying("Lunch Break"), ShouldBeFalse)
			So(session.IsQualifying(""), ShouldBeFalse)
		})
	})
}

func TestSelector(t *testing.T) {
	Convey("Given a fresh selector", t, func() {
		var s session.Selector
		So(s.Qualifying(), ShouldBeFalse)

		Convey("When a qualifying run is announced", func() {
			swapped := s.Observe("Qualifying 2")

			Convey("Then the mode swaps to qualifying", func() {
				So(swapped, ShouldBeTrue)
				So(s.Qualifying(), ShouldBeTrue)
			})

			Convey("And a second qualifying run does not swap again", func() {
				So(s.Observe("Qualifying 3"), ShouldBeFalse)
				So(s.Qualifying(), ShouldBeTrue)
			})

			Convey("And a race run swaps back", func() {
				So(s.Observe("Feature Race"), ShouldBeTrue)
				So(s.Qualifying(), ShouldBeFalse)
			})
		})

		Convey("When the selector resets", func() {
			s.Observe("Qualifying 1")
			s.Reset()

			So(s.Qualifying(), ShouldBeFalse)
		})
	})
}
