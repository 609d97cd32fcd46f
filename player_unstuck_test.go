package agent

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestUnstuckingAbortsWhenMinimapNotIdle(t *testing.T) {
	Convey("Given a fresh Unstucking entry while the minimap isn't Idle", t, func() {
		state := NewPlayerPersistent(PlayerConfigSnapshot{})
		player := Player{Kind: PlayerUnstuckingState}
		ctx, _, _ := newTestContext()
		ctx.Minimap = Minimap{State: MinimapDetecting}

		Convey("It aborts straight back to Detecting without transitioning", func() {
			next := updateUnstucking(player, ctx, state)
			So(next.Kind, ShouldEqual, PlayerDetecting)
			So(state.UnstuckTransitionedCount, ShouldEqual, 0)
		})
	})
}

func TestUnstuckingNonGambaDirectionByXThreshold(t *testing.T) {
	Convey("Given a fresh Unstucking entry with the minimap Idle and x below threshold", t, func() {
		state := NewPlayerPersistent(PlayerConfigSnapshot{JumpKey: KeyJump})
		pos := Point{X: 5, Y: 30}
		state.LastKnownPos = &pos
		player := Player{Kind: PlayerUnstuckingState}
		ctx, _, keys := newTestContext()
		ctx.Minimap = Minimap{State: MinimapIdle}

		Convey("It holds Right and jumps", func() {
			next := updateUnstucking(player, ctx, state)
			So(next.Kind, ShouldEqual, PlayerUnstuckingState)
			So(state.UnstuckTransitionedCount, ShouldEqual, 1)
			So(keys.down, ShouldResemble, []KeyKind{KeyRight})
			So(keys.sent, ShouldResemble, []KeyKind{KeyJump})
		})
	})

	Convey("Given a fresh Unstucking entry with x at or above threshold", t, func() {
		state := NewPlayerPersistent(PlayerConfigSnapshot{JumpKey: KeyJump})
		pos := Point{X: 15, Y: 30}
		state.LastKnownPos = &pos
		player := Player{Kind: PlayerUnstuckingState}
		ctx, _, keys := newTestContext()
		ctx.Minimap = Minimap{State: MinimapIdle}

		Convey("It holds Left and jumps", func() {
			updateUnstucking(player, ctx, state)
			So(keys.down, ShouldResemble, []KeyKind{KeyLeft})
		})
	})
}

func TestUnstuckingNonGambaBelowYFloorDoesNothingHorizontal(t *testing.T) {
	Convey("Given pos.Y at or below the y floor", t, func() {
		state := NewPlayerPersistent(PlayerConfigSnapshot{JumpKey: KeyJump})
		pos := Point{X: 5, Y: unstuckYFloor}
		state.LastKnownPos = &pos
		player := Player{Kind: PlayerUnstuckingState}
		ctx, _, keys := newTestContext()
		ctx.Minimap = Minimap{State: MinimapIdle}

		Convey("No direction key is held", func() {
			updateUnstucking(player, ctx, state)
			So(keys.down, ShouldBeEmpty)
		})
	})
}

func TestUnstuckingTimeoutReleasesKeysAndReturnsToDetecting(t *testing.T) {
	Convey("Given an Unstucking attempt whose timeout has elapsed", t, func() {
		state := NewPlayerPersistent(PlayerConfigSnapshot{})
		player := Player{
			Kind:           PlayerUnstuckingState,
			UnstuckTimeout: Timeout{Started: true, Current: unstuckTimeoutTicks, Total: unstuckTimeoutTicks},
		}
		ctx, _, keys := newTestContext()
		ctx.Minimap = Minimap{State: MinimapIdle}

		Convey("It releases Left/Right and bumps UnstuckCount, returning to Detecting", func() {
			next := updateUnstucking(player, ctx, state)
			So(next.Kind, ShouldEqual, PlayerDetecting)
			So(keys.up, ShouldResemble, []KeyKind{KeyLeft, KeyRight})
			So(state.UnstuckCount, ShouldEqual, 1)
		})
	})
}

func TestUnstuckingEscalatesToGambaAfterThreshold(t *testing.T) {
	Convey("Given UnstuckTransitionedCount already at the gamba threshold", t, func() {
		state := NewPlayerPersistent(PlayerConfigSnapshot{JumpKey: KeyJump})
		state.UnstuckTransitionedCount = unstuckGambaThreshold - 1
		pos := Point{X: 5, Y: 30}
		state.LastKnownPos = &pos
		player := Player{Kind: PlayerUnstuckingState}
		ctx, _, keys := newTestContext()
		ctx.Minimap = Minimap{State: MinimapIdle}

		Convey("It presses Esc and a random direction instead of the deterministic one", func() {
			updateUnstucking(player, ctx, state)
			So(state.UnstuckTransitionedCount, ShouldEqual, unstuckGambaThreshold)
			So(keys.sent, ShouldContain, KeyEsc)
			directionHeld := len(keys.down) == 1 && (keys.down[0] == KeyLeft || keys.down[0] == KeyRight)
			So(directionHeld, ShouldBeTrue)
		})
	})
}
