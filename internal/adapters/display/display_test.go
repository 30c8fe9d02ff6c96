package display_test

import (
	"testing"

	"github.com/okian/pitwall/internal/adapters/display"
	"github.com/okian/pitwall/internal/app"
	"github.com/okian/pitwall/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestLogDisplay(t *testing.T) {
	Convey("Given a log display", t, func() {
		d := display.NewLog()

		Convey("Then it satisfies the display surface", func() {
			var _ app.Display = d
			So(d, ShouldNotBeNil)
		})

		Convey("When values are pushed", func() {
			So(func() {
				d.ShowRun("Feature Race")
				d.ShowFlag("Green")
				d.ShowLaps("5", "45")
				d.ShowClock("00:10:00", "00:50:00", "14:00:00")
				d.ShowLeaders("Car A, Car B", "GT3: Car A, Car B")
				d.ShowNotice("track is hot")
				d.ShowError("timing system offline")
				d.ShowVersion("relay 2.4.1")
			}, ShouldNotPanic)
		})

		Convey("When the server clock goes away", func() {
			So(func() {
				d.UseLocalClock(true)
				d.ShowClock("", "", "")
				d.UseLocalClock(false)
			}, ShouldNotPanic)
		})
	})
}
