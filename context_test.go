package agent

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFoldContextualCapsRecursion(t *testing.T) {
	Convey("Given a step function that always returns Immediate", t, func() {
		calls := 0
		step := func(c int) ControlFlow[int] {
			calls++
			return Immediate(c + 1)
		}

		Convey("FoldContextual terminates at MaxFoldDepth iterations", func() {
			result := FoldContextual(0, step)
			So(calls, ShouldEqual, MaxFoldDepth)
			So(result, ShouldEqual, MaxFoldDepth)
		})
	})

	Convey("Given a step function that returns Next right away", t, func() {
		calls := 0
		step := func(c int) ControlFlow[int] {
			calls++
			return Next(c + 1)
		}

		Convey("FoldContextual returns after exactly one call", func() {
			result := FoldContextual(0, step)
			So(calls, ShouldEqual, 1)
			So(result, ShouldEqual, 1)
		})
	})

	Convey("Given a step function that goes Immediate a few times then Next", t, func() {
		step := func(c int) ControlFlow[int] {
			if c < 3 {
				return Immediate(c + 1)
			}
			return Next(c)
		}

		Convey("FoldContextual returns the settled value", func() {
			result := FoldContextual(0, step)
			So(result, ShouldEqual, 3)
		})
	})
}
