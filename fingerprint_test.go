package agent

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFingerprintNonIdleIsZero(t *testing.T) {
	Convey("Given a Detecting minimap", t, func() {
		m := Minimap{State: MinimapDetecting}

		Convey("Fingerprint is zero", func() {
			So(Fingerprint(m), ShouldEqual, MinimapFingerprint(0))
		})
	})
}

func TestFingerprintIsStableAndDistinct(t *testing.T) {
	Convey("Given two identical Idle minimaps", t, func() {
		m1 := Minimap{
			State: MinimapIdle, Bbox: Rect{X: 1, Y: 2, W: 3, H: 4},
			TopLeftAnchor: Point{X: 1, Y: 1}, TopLeftAnchorPixel: Pixel{R: 10, G: 20, B: 30},
			BottomRightAnchor: Point{X: 9, Y: 9}, BottomRightAnchorPixel: Pixel{R: 40, G: 50, B: 60},
		}
		m2 := m1

		Convey("Their fingerprints are equal", func() {
			So(Fingerprint(m1), ShouldEqual, Fingerprint(m2))
		})
	})

	Convey("Given two Idle minimaps differing only in Bbox", t, func() {
		m1 := Minimap{State: MinimapIdle, Bbox: Rect{X: 1, Y: 2, W: 3, H: 4}}
		m2 := Minimap{State: MinimapIdle, Bbox: Rect{X: 5, Y: 6, W: 7, H: 8}}

		Convey("Their fingerprints differ", func() {
			So(Fingerprint(m1), ShouldNotEqual, Fingerprint(m2))
		})
	})

	Convey("Given two Idle minimaps differing only in anchor pixels", t, func() {
		m1 := Minimap{State: MinimapIdle, TopLeftAnchorPixel: Pixel{R: 1, G: 1, B: 1}}
		m2 := Minimap{State: MinimapIdle, TopLeftAnchorPixel: Pixel{R: 2, G: 2, B: 2}}

		Convey("Their fingerprints differ", func() {
			So(Fingerprint(m1), ShouldNotEqual, Fingerprint(m2))
		})
	})

	Convey("Given two Idle minimaps differing only in anchor points", t, func() {
		m1 := Minimap{State: MinimapIdle, TopLeftAnchor: Point{X: 1, Y: 1}}
		m2 := Minimap{State: MinimapIdle, TopLeftAnchor: Point{X: 2, Y: 2}}

		Convey("Their fingerprints differ", func() {
			So(Fingerprint(m1), ShouldNotEqual, Fingerprint(m2))
		})
	})
}
