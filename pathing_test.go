package agent

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBuildPlatformGraphReachability(t *testing.T) {
	Convey("Given platforms with overlapping xs and a jump-sized gap", t, func() {
		platforms := []Platform{
			{Xs: Range{Start: 0, End: 50}, Y: 0},
			{Xs: Range{Start: 10, End: 60}, Y: 7},
		}
		g := BuildPlatformGraph(platforms, Thresholds{DoubleJump: 25, Jump: 7, GrapplingMax: 41})
		Convey("They are reachable via the overlapping-xs/vertical-gap rule", func() {
			So(g.edges[0], ShouldContain, 1)
		})
	})

	Convey("Given platforms with disjoint xs within double-jump range", t, func() {
		platforms := []Platform{
			{Xs: Range{Start: 0, End: 50}, Y: 0},
			{Xs: Range{Start: 70, End: 90}, Y: 3},
		}
		g := BuildPlatformGraph(platforms, Thresholds{DoubleJump: 25, Jump: 7, GrapplingMax: 41})
		Convey("They are reachable via the disjoint-xs/double-jump rule", func() {
			So(g.edges[0], ShouldContain, 1)
		})
	})

	Convey("Given platforms too far apart under either rule", t, func() {
		platforms := []Platform{
			{Xs: Range{Start: 0, End: 50}, Y: 0},
			{Xs: Range{Start: 200, End: 250}, Y: 100},
		}
		g := BuildPlatformGraph(platforms, Thresholds{DoubleJump: 25, Jump: 7, GrapplingMax: 41})
		Convey("No edge is created", func() {
			So(g.edges[0], ShouldNotContain, 1)
		})
	})
}

func TestFindPointsWith(t *testing.T) {
	Convey("Given a chain of three reachable platforms", t, func() {
		platforms := []Platform{
			{Xs: Range{Start: 0, End: 20}, Y: 0},
			{Xs: Range{Start: 15, End: 35}, Y: 7},
			{Xs: Range{Start: 30, End: 50}, Y: 14},
		}
		g := BuildPlatformGraph(platforms, Thresholds{DoubleJump: 25, Jump: 7, GrapplingMax: 41})

		Convey("FindPointsWith returns a path whose leg endpoints lie on their platforms", func() {
			legs, ok := FindPointsWith(g, Point{X: 5, Y: 0}, Point{X: 40, Y: 14})
			So(ok, ShouldBeTrue)
			So(len(legs), ShouldBeGreaterThan, 0)
			last := legs[len(legs)-1]
			So(last, ShouldResemble, Point{X: 40, Y: 14})
			for _, leg := range legs[:len(legs)-1] {
				So(leg.Y, ShouldBeIn, []int{platforms[1].Y, platforms[2].Y})
			}
		})
	})

	Convey("Given two platforms with no reachability edge", t, func() {
		platforms := []Platform{
			{Xs: Range{Start: 0, End: 20}, Y: 0},
			{Xs: Range{Start: 500, End: 520}, Y: 500},
		}
		g := BuildPlatformGraph(platforms, Thresholds{DoubleJump: 25, Jump: 7, GrapplingMax: 41})

		Convey("FindPointsWith reports unreachable", func() {
			_, ok := FindPointsWith(g, Point{X: 5, Y: 0}, Point{X: 510, Y: 500})
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given a destination on the same platform as the origin", t, func() {
		platforms := []Platform{{Xs: Range{Start: 0, End: 50}, Y: 0}}
		g := BuildPlatformGraph(platforms, Thresholds{DoubleJump: 25, Jump: 7, GrapplingMax: 41})

		Convey("FindPointsWith returns a single-leg direct path", func() {
			legs, ok := FindPointsWith(g, Point{X: 5, Y: 0}, Point{X: 40, Y: 0})
			So(ok, ShouldBeTrue)
			So(legs, ShouldResemble, []Point{{X: 40, Y: 0}})
		})
	})
}

