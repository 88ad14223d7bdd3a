package player

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClockPlayback(t *testing.T) {
	Convey("Given a clock playback", t, func() {
		p := NewClockPlayback()

		Convey("A pending ready callback fires on load", func() {
			fired := false
			p.OnReady(func() { fired = true })
			So(fired, ShouldBeFalse)

			p.Load("http://files/5.flac")
			So(fired, ShouldBeTrue)
			So(p.CurrentURL(), ShouldEqual, "http://files/5.flac")
			So(p.CurrentTime(), ShouldEqual, 0)
		})

		Convey("OnReady fires immediately once loaded", func() {
			p.Load("http://files/5.flac")

			fired := false
			p.OnReady(func() { fired = true })
			So(fired, ShouldBeTrue)
		})

		Convey("Time advances only while playing", func() {
			p.Load("http://files/5.flac")
			p.Play()
			time.Sleep(30 * time.Millisecond)
			p.Pause()

			paused := p.CurrentTime()
			So(paused, ShouldBeGreaterThan, 0)

			time.Sleep(30 * time.Millisecond)
			So(p.CurrentTime(), ShouldEqual, paused)
		})

		Convey("Seek repositions the clock and is always accepted", func() {
			p.Load("http://files/5.flac")
			So(p.Seek(42, 0), ShouldBeTrue)
			So(p.CurrentTime(), ShouldEqual, 42)
		})
	})
}
