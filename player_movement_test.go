package agent

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// newMovingTestState builds a minimal PlayerPersistent + Moving pair for
// exercising updateMovingDispatch's boundary decisions (§4.5.5, §8).
func newMovingTestState(pos, dest Point) (*PlayerPersistent, Player) {
	state := NewPlayerPersistent(PlayerConfigSnapshot{})
	state.LastKnownPos = &pos
	state.NormalAction = &QueuedAction{ID: 1, Action: PlayerAction{Kind: ActionMove, Move: MoveAction{Dest: dest}}}
	player := Player{Kind: PlayerMovingState, Moving: Moving{Pos: pos, Dest: dest}}
	return state, player
}

func TestMovingDispatchBoundaries(t *testing.T) {
	Convey("Given |dx|=25 exactly (DOUBLE_JUMP inclusive)", t, func() {
		state, player := newMovingTestState(Point{X: 0, Y: 0}, Point{X: 25, Y: 0})
		ctx, _, _ := newTestContext()
		Convey("The dispatcher selects DoubleJumping", func() {
			next := updateMovingDispatch(player, ctx, state)
			So(next.Kind, ShouldEqual, PlayerDoubleJumpingState)
		})
	})

	Convey("Given |dy|=7 exactly with dy>0 (JUMP inclusive)", t, func() {
		state, player := newMovingTestState(Point{X: 0, Y: 0}, Point{X: 0, Y: 7})
		ctx, _, _ := newTestContext()
		Convey("The dispatcher selects Jumping", func() {
			next := updateMovingDispatch(player, ctx, state)
			So(next.Kind, ShouldEqual, PlayerJumpingState)
		})
	})

	Convey("Given |dy|=10 exactly with dy>0 (UP_JUMP inclusive)", t, func() {
		state, player := newMovingTestState(Point{X: 0, Y: 0}, Point{X: 0, Y: 10})
		ctx, _, _ := newTestContext()
		Convey("The dispatcher selects UpJumping", func() {
			next := updateMovingDispatch(player, ctx, state)
			So(next.Kind, ShouldEqual, PlayerUpJumpingState)
		})
	})

	Convey("Given |dy|=26 with dy>0 and grappling enabled (GRAPPLING inclusive)", t, func() {
		state, player := newMovingTestState(Point{X: 0, Y: 0}, Point{X: 0, Y: 26})
		ctx, _, _ := newTestContext()
		Convey("The dispatcher selects Grappling", func() {
			next := updateMovingDispatch(player, ctx, state)
			So(next.Kind, ShouldEqual, PlayerGrapplingState)
		})
	})

	Convey("Given |dy|=26 with dy>0 and grappling disabled", t, func() {
		state, player := newMovingTestState(Point{X: 0, Y: 0}, Point{X: 0, Y: 26})
		state.Config.DisableGrappling = true
		ctx, _, _ := newTestContext()
		Convey("The dispatcher falls through to UpJumping instead", func() {
			next := updateMovingDispatch(player, ctx, state)
			So(next.Kind, ShouldEqual, PlayerUpJumpingState)
		})
	})

	Convey("Given the destination is already reached with no intermediates", t, func() {
		state, player := newMovingTestState(Point{X: 10, Y: 10}, Point{X: 10, Y: 10})
		ctx, _, _ := newTestContext()
		Convey("The dispatcher completes the action and returns to Idle", func() {
			next := updateMovingDispatch(player, ctx, state)
			So(next.Kind, ShouldEqual, PlayerIdle)
			So(state.NormalAction, ShouldBeNil)
		})
	})
}

func TestRepeatAbortGuard(t *testing.T) {
	Convey("Given a normal action repeatedly re-entering DoubleJumping beyond its cap", t, func() {
		state, player := newMovingTestState(Point{X: 0, Y: 0}, Point{X: 30, Y: 0})
		ctx, _, _ := newTestContext()

		for i := 0; i < repeatAbortHorizontal; i++ {
			next := updateMovingDispatch(player, ctx, state)
			So(next.Kind, ShouldEqual, PlayerDoubleJumpingState)
		}

		Convey("The next entry past the cap aborts the action back to Idle", func() {
			next := updateMovingDispatch(player, ctx, state)
			So(next.Kind, ShouldEqual, PlayerIdle)
			So(state.NormalAction, ShouldBeNil)
		})
	})

	Convey("Given an auto-mob action repeatedly re-entering DoubleJumping beyond its relaxed cap", t, func() {
		state := NewPlayerPersistent(PlayerConfigSnapshot{})
		pos := Point{X: 0, Y: 120}
		dest := Point{X: 30, Y: 120}
		state.LastKnownPos = &pos
		state.NormalAction = &QueuedAction{ID: 1, Action: PlayerAction{Kind: ActionAutoMob, AutoMob: AutoMobAction{Dest: dest}}}
		player := Player{Kind: PlayerMovingState, Moving: Moving{Pos: pos, Dest: dest}}
		ctx, _, _ := newTestContext()

		for i := 0; i < repeatAbortHorizontalAutoMob; i++ {
			next := updateMovingDispatch(player, ctx, state)
			So(next.Kind, ShouldEqual, PlayerDoubleJumpingState)
		}

		Convey("Exceeding the cap clears the action and records an ignore range", func() {
			next := updateMovingDispatch(player, ctx, state)
			So(next.Kind, ShouldEqual, PlayerIdle)
			So(state.NormalAction, ShouldBeNil)
			ranges := state.AutoMob.ignoreXs[120]
			So(len(ranges), ShouldEqual, 1)
			So(ranges[0].Xs.Contains(30), ShouldBeTrue)
		})
	})
}

func TestCanSkipIntermediate(t *testing.T) {
	Convey("Given a small dx and dy within JUMP", t, func() {
		Convey("canSkipIntermediate allows the skip", func() {
			So(canSkipIntermediate(5, 3, MovementNone), ShouldBeTrue)
		})
	})

	Convey("Given dx at or beyond DOUBLE_JUMP", t, func() {
		Convey("canSkipIntermediate refuses regardless of dy", func() {
			So(canSkipIntermediate(25, 0, MovementNone), ShouldBeFalse)
		})
	})

	Convey("Given a large dy already traversed by a Falling episode", t, func() {
		Convey("canSkipIntermediate allows the skip", func() {
			So(canSkipIntermediate(5, 20, MovementFalling), ShouldBeTrue)
		})
	})

	Convey("Given a large dy not traversed by Falling/UpJumping", t, func() {
		Convey("canSkipIntermediate refuses", func() {
			So(canSkipIntermediate(5, 20, MovementAdjusting), ShouldBeFalse)
		})
	})
}
