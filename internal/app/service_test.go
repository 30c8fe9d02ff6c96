package app_test

import (
	"context"
	"testing"

	"github.com/okian/pitwall/internal/app"
	"github.com/okian/pitwall/internal/domain/message"
	"github.com/okian/pitwall/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakeDisplay records every push so tests can assert on update counts.
type fakeDisplay struct {
	leaders    []string
	flags      []string
	notices    []string
	errs       []string
	localClock []bool
	runHistory []string
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{}
}

func (d *fakeDisplay) ShowRun(desc string)          { d.runHistory = append(d.runHistory, desc) }
func (d *fakeDisplay) ShowFlag(f string)            { d.flags = append(d.flags, f) }
func (d *fakeDisplay) ShowLaps(_, _ string)         {}
func (d *fakeDisplay) ShowClock(_, _, _ string)     {}
func (d *fakeDisplay) ShowLeaders(o, _ string)      { d.leaders = append(d.leaders, o) }
func (d *fakeDisplay) ShowNotice(t string)          { d.notices = append(d.notices, t) }
func (d *fakeDisplay) ShowError(t string)           { d.errs = append(d.errs, t) }
func (d *fakeDisplay) ShowVersion(string)           {}
func (d *fakeDisplay) UseLocalClock(on bool)        { d.localClock = append(d.localClock, on) }

// feed decodes raw frames and applies them in order.
func feed(svc *app.Service, frames ...string) {
	ctx := context.Background()
	for _, f := range frames {
		m, err := message.Decode([]byte(f))
		So(err, ShouldBeNil)
		svc.Apply(ctx, m)
	}
}

func TestService_EndToEnd(t *testing.T) {
	Convey("Given a service fed the canonical GT3 sequence", t, func() {
		d := newFakeDisplay()
		svc := app.New(app.WithDisplay(d))

		feed(svc,
			`["$C","1","GT3"]`,
			`["$A","101","7","1001","Car","A","USA","1"]`,
			`["$A","102","8","1002","Car","B","USA","1"]`,
			`["$G",1,"101",5,"00:00:50.000"]`,
			`["$G",2,"102",5,"00:00:51.000"]`,
		)

		Convey("Then the snapshot carries the derived leader strings", func() {
			snap := svc.Snapshot()
			So(snap.OverallLeaders, ShouldEqual, "Car A, Car B")
			So(snap.ClassLeaders, ShouldEqual, "GT3: Car A, Car B")
			So(snap.Laps, ShouldEqual, "5")
		})

		Convey("And replaying the last update pushes nothing new", func() {
			pushes := len(d.leaders)
			feed(svc, `["$G",2,"102",5,"00:00:51.000"]`)
			So(len(d.leaders), ShouldEqual, pushes)
		})
	})
}

func TestService_ModeSwap(t *testing.T) {
	Convey("Given a service in race mode with race standings", t, func() {
		d := newFakeDisplay()
		svc := app.New(app.WithDisplay(d))

		feed(svc,
			`["$A","101","7","1001","Car","A","USA",""]`,
			`["$A","102","8","1002","Car","B","USA",""]`,
			`["$G",1,"101",5,"00:00:50.000"]`,
		)
		So(svc.Snapshot().OverallLeaders, ShouldEqual, "Car A")

		Convey("When a qualifying run is announced", func() {
			feed(svc, `["$B",3,"Qualifying 2"]`)

			Convey("Then the qualifying tracker is on display", func() {
				snap := svc.Snapshot()
				So(snap.Qualifying, ShouldBeTrue)
				So(snap.OverallLeaders, ShouldEqual, "")
			})

			Convey("And race updates no longer touch the visible string", func() {
				feed(svc, `["$G",1,"102",6,"00:00:49.000"]`)
				So(svc.Snapshot().OverallLeaders, ShouldEqual, "")
			})

			Convey("And qualifying updates do", func() {
				feed(svc, `["$H",1,"102",3,"00:01:02.000"]`)
				So(svc.Snapshot().OverallLeaders, ShouldEqual, "Car B")
			})

			Convey("And swapping back shows the retained race standings", func() {
				feed(svc, `["$B",4,"Feature Race"]`)
				So(svc.Snapshot().OverallLeaders, ShouldEqual, "Car A")
			})
		})
	})
}

func TestService_QualifyingUntimedRows(t *testing.T) {
	Convey("Given qualifying on display", t, func() {
		d := newFakeDisplay()
		svc := app.New(app.WithDisplay(d))

		feed(svc,
			`["$B",3,"Qualifying 1"]`,
			`["$A","101","7","1001","Car","A","USA",""]`,
			`["$A","102","8","1002","Car","B","USA",""]`,
			`["$H",1,"101",3,"00:01:02.000"]`,
		)

		Convey("When P2 has no time on the board", func() {
			feed(svc, `["$H",2,"102",0,"00:00:00.000"]`)

			Convey("Then only the timed car is listed", func() {
				So(svc.Snapshot().OverallLeaders, ShouldEqual, "Car A")
			})
		})

		Convey("When P2 has a best lap but a zeroed time", func() {
			feed(svc, `["$H",2,"102",2,"00:00:00.000"]`)
			So(svc.Snapshot().OverallLeaders, ShouldEqual, "Car A")
		})
	})
}

func TestService_Reset(t *testing.T) {
	Convey("Given a service with a full session state", t, func() {
		d := newFakeDisplay()
		svc := app.New(app.WithDisplay(d))

		feed(svc,
			`["$C","1","GT3"]`,
			`["$A","101","7","1001","Car","A","USA","1"]`,
			`["$G",1,"101",5,"00:00:50.000"]`,
			`["$F",10,"00:12:00","14:00:00","00:30:00","Green"]`,
			`[":M","lunch at noon"]`,
		)

		Convey("When a session reset arrives", func() {
			feed(svc, `["$I","14:01:00","24 Aug 26"]`)

			Convey("Then derived state behaves as if nothing was received", func() {
				snap := svc.Snapshot()
				So(snap.OverallLeaders, ShouldEqual, "")
				So(snap.ClassLeaders, ShouldEqual, "")
				So(snap.Flag, ShouldEqual, "")
				So(snap.Message, ShouldEqual, "")
				So(snap.TimeOfDay, ShouldEqual, "14:01:00")
			})

			Convey("And a position after the reset resolves against an empty registry", func() {
				feed(svc, `["$G",1,"101",1,"00:00:55.000"]`)
				So(svc.Snapshot().OverallLeaders, ShouldEqual, "")
			})
		})
	})
}

func TestService_FlagAndClock(t *testing.T) {
	Convey("Given a service", t, func() {
		d := newFakeDisplay()
		svc := app.New(app.WithDisplay(d))

		Convey("When the finish flag flies", func() {
			feed(svc, `["$F",0,"00:00:00","15:00:00","01:00:00","Finish"]`)

			Convey("Then it is shown as Checkered", func() {
				So(svc.Snapshot().Flag, ShouldEqual, "Checkered")
			})
		})

		Convey("When laps-to-go is the not-applicable sentinel", func() {
			feed(svc, `["$F",9999,"00:12:00","15:00:00","01:00:00","Green"]`)

			snap := svc.Snapshot()
			So(snap.LapsToGo, ShouldEqual, "")
			So(snap.TimeRemaining, ShouldEqual, "00:12:00")
		})

		Convey("When the same flag repeats", func() {
			feed(svc,
				`["$F",10,"00:12:00","15:00:00","01:00:00","Green"]`,
				`["$F",9,"00:11:00","15:01:00","01:01:00","Green"]`,
			)

			Convey("Then the flag is pushed once", func() {
				So(d.flags, ShouldResemble, []string{"Green"})
			})
		})
	})
}

func TestService_BannersAndControl(t *testing.T) {
	Convey("Given a service", t, func() {
		d := newFakeDisplay()
		var pushedOptions []string
		svc := app.New(
			app.WithDisplay(d),
			app.WithOptionsSink(func(o string) { pushedOptions = append(pushedOptions, o) }),
		)

		Convey("Server errors surface verbatim and clear on empty", func() {
			feed(svc, `[":E","timing system offline"]`)
			So(svc.Snapshot().Error, ShouldEqual, "timing system offline")

			feed(svc, `[":E",""]`)
			So(svc.Snapshot().Error, ShouldEqual, "")
		})

		Convey("Notices surface on the message banner", func() {
			feed(svc, `[":M","track is hot"]`)
			So(svc.Snapshot().Message, ShouldEqual, "track is hot")
		})

		Convey("Version strings are recorded", func() {
			feed(svc, `[":V","relay 2.4.1"]`)
			So(svc.Snapshot().ServerVersion, ShouldEqual, "relay 2.4.1")
		})

		Convey("Options overrides reach the sink", func() {
			feed(svc, `[":OPT","classonly"]`)
			So(pushedOptions, ShouldResemble, []string{"classonly"})
		})

		Convey("A server timezone is used when no override is set", func() {
			feed(svc, `[":TZ","America/New_York"]`)
			So(svc.Snapshot().Timezone, ShouldEqual, "America/New_York")
		})
	})

	Convey("Given a service with a timezone override", t, func() {
		svc := app.New(app.WithTimezone("Europe/Berlin"))
		feed(svc, `[":TZ","America/New_York"]`)
		So(svc.Snapshot().Timezone, ShouldEqual, "Europe/Berlin")
	})
}

func TestService_LateRegistration(t *testing.T) {
	Convey("Given positions that reference unregistered cars", t, func() {
		d := newFakeDisplay()
		svc := app.New(app.WithDisplay(d))

		feed(svc, `["$G",1,"101",5,"00:00:50.000"]`)
		So(svc.Snapshot().OverallLeaders, ShouldEqual, "")

		Convey("When the registration lands and a later update arrives", func() {
			feed(svc,
				`["$A","101","7","1001","Car","A","USA",""]`,
				`["$G",1,"101",6,"00:00:49.000"]`,
			)

			Convey("Then the name is picked up", func() {
				So(svc.Snapshot().OverallLeaders, ShouldEqual, "Car A")
			})
		})
	})
}

func TestService_Connectivity(t *testing.T) {
	Convey("Given a service", t, func() {
		d := newFakeDisplay()
		svc := app.New(app.WithDisplay(d))

		Convey("When the transport connects and drops", func() {
			svc.SetConnected(true)
			svc.SetConnected(false)

			Convey("Then the local clock fallback follows inversely", func() {
				So(d.localClock, ShouldResemble, []bool{false, true})
				So(svc.Snapshot().Connected, ShouldBeFalse)
			})
		})
	})
}
