package model

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func ptr(v float64) *float64 { return &v }

func TestTrackProgress(t *testing.T) {
	Convey("Remaining needs both ends of the range", t, func() {
		So(TrackProgress{}.Remaining(), ShouldBeNil)
		So(TrackProgress{Value: ptr(30)}.Remaining(), ShouldBeNil)
		So(TrackProgress{Total: ptr(180)}.Remaining(), ShouldBeNil)

		remaining := TrackProgress{Value: ptr(30), Total: ptr(180)}.Remaining()
		So(remaining, ShouldNotBeNil)
		So(*remaining, ShouldEqual, 150)
	})

	Convey("Seconds truncates and tolerates unknown progress", t, func() {
		So(TrackProgress{}.Seconds(), ShouldEqual, 0)
		So(TrackProgress{Value: ptr(42.9)}.Seconds(), ShouldEqual, 42)
	})
}

func TestQuality(t *testing.T) {
	Convey("Each quality maps to its file extension", t, func() {
		So(QualityStandard.Extension(), ShouldEqual, ExtensionMP3)
		So(QualityHighFidelity.Extension(), ShouldEqual, ExtensionFLAC)
	})

	Convey("Parsing falls back to high fidelity", t, func() {
		So(ParseQuality("STANDARD"), ShouldEqual, QualityStandard)
		So(ParseQuality("HIGH_FIDELITY"), ShouldEqual, QualityHighFidelity)
		So(ParseQuality("whatever"), ShouldEqual, QualityHighFidelity)
		So(ParseQuality(""), ShouldEqual, QualityHighFidelity)
	})
}

func TestTrackFileLookup(t *testing.T) {
	track := Track{
		ID: 5, Name: "Song A", Artist: 1,
		Files: []TrackFile{
			{ID: 51, Extension: ExtensionMP3},
			{ID: 52, Extension: ExtensionFLAC},
		},
	}

	Convey("Files are found by extension", t, func() {
		mp3 := track.FileByExtension(ExtensionMP3)
		So(mp3, ShouldNotBeNil)
		So(mp3.ID, ShouldEqual, 51)

		flac := track.FileByExtension(ExtensionFLAC)
		So(flac.ID, ShouldEqual, 52)

		So((&Track{}).FileByExtension(ExtensionMP3), ShouldBeNil)
	})
}
