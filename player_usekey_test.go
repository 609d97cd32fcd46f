package agent

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func newUseKeyTestState(action KeyAction) (*PlayerPersistent, Player) {
	state := NewPlayerPersistent(PlayerConfigSnapshot{Class: "Warrior", JumpKey: KeyJump})
	state.NormalAction = &QueuedAction{ID: 1, Action: PlayerAction{Kind: ActionKey, Key: action}}
	player := Player{Kind: PlayerUseKeyState, UseKey: newUseKeyState(action)}
	return state, player
}

func TestUseKeyDirectionPrecondition(t *testing.T) {
	Convey("Given an action requiring DirectionLeft while facing right", t, func() {
		state, player := newUseKeyTestState(KeyAction{Key: KeyInteract, Count: 1, Direction: DirectionLeft})
		state.LastKnownDirection = DirectionRight
		ctx, _, keys := newTestContext()

		Convey("It presses and releases Left over changingDirectionTicks ticks", func() {
			const changingDirectionTicks = 3
			for i := 0; i < changingDirectionTicks; i++ {
				player = updateUseKey(player, ctx, state)
			}
			So(keys.down, ShouldResemble, []KeyKind{KeyLeft})
			So(keys.up, ShouldResemble, []KeyKind{KeyLeft})
			So(state.LastKnownDirection, ShouldEqual, DirectionLeft)
		})
	})
}

func TestUseKeyWithStationaryPrecondition(t *testing.T) {
	Convey("Given an action requiring WithStationary while the player is moving", t, func() {
		state, player := newUseKeyTestState(KeyAction{Key: KeyInteract, Count: 1, With: WithStationary})
		state.IsStationary = false
		ctx, _, keys := newTestContext()

		Convey("It blocks until stationary and never sends the key", func() {
			next := updateUseKey(player, ctx, state)
			So(next.Kind, ShouldEqual, PlayerUseKeyState)
			So(keys.sent, ShouldBeEmpty)
		})
	})
}

func TestUseKeyWithDoubleJumpPrecondition(t *testing.T) {
	Convey("Given an action requiring WithDoubleJump while not stationary", t, func() {
		state, player := newUseKeyTestState(KeyAction{Key: KeyInteract, Count: 1, With: WithDoubleJump})
		state.IsStationary = false
		pos := Point{X: 3, Y: 4}
		state.LastKnownPos = &pos
		ctx, _, _ := newTestContext()

		Convey("It forces a DoubleJumping detour first", func() {
			next := updateUseKey(player, ctx, state)
			So(next.Kind, ShouldEqual, PlayerDoubleJumpingState)
			So(next.DoubleJumpForced, ShouldBeTrue)
		})
	})
}

func TestUseKeyWaitBeforeStalls(t *testing.T) {
	Convey("Given an action with a wait_before_use", t, func() {
		action := KeyAction{Key: KeyInteract, Count: 1}
		state := NewPlayerPersistent(PlayerConfigSnapshot{})
		state.NormalAction = &QueuedAction{ID: 1, Action: PlayerAction{Kind: ActionKey, Key: action}}
		u := newUseKeyState(action)
		u.Action.WaitBeforeUseTicks = 2
		player := Player{Kind: PlayerUseKeyState, UseKey: u}
		ctx, _, keys := newTestContext()

		Convey("It stalls wait_before ticks before using the key", func() {
			next := updateUseKey(player, ctx, state)
			So(next.Kind, ShouldEqual, PlayerStallingState)
			So(keys.sent, ShouldBeEmpty)

			// One tick starts the stall timeout, wait_before ticks count it
			// up, and the next tick times out back into UseKey.
			next = updateStalling(next, ctx, state)
			next = updateStalling(next, ctx, state)
			next = updateStalling(next, ctx, state)
			next = updateStalling(next, ctx, state)
			So(next.Kind, ShouldEqual, PlayerUseKeyState)
			So(next.UseKey.Stage, ShouldEqual, UseKeyUsing)
		})
	})
}

func TestUseKeyLinkModeNoneSendsOnce(t *testing.T) {
	Convey("Given LinkNone", t, func() {
		action := KeyAction{Key: KeyInteract, Count: 1, LinkMode: LinkNone}
		state, _ := newUseKeyTestState(action)
		player := Player{Kind: PlayerUseKeyState, UseKey: UseKeyState{Action: action, Stage: UseKeyUsing}}
		ctx, _, keys := newTestContext()

		Convey("It sends the key and advances to Postcondition", func() {
			next := updateUseKey(player, ctx, state)
			So(keys.sent, ShouldResemble, []KeyKind{KeyInteract})
			So(next.UseKey.Stage, ShouldEqual, UseKeyPostcondition)
		})
	})
}

func TestUseKeyLinkModeBeforeSequencesLinkThenKey(t *testing.T) {
	Convey("Given LinkBefore with a link key", t, func() {
		action := KeyAction{Key: KeyInteract, Count: 1, LinkMode: LinkBefore, LinkKey: KeyJump}
		state, _ := newUseKeyTestState(action)
		player := Player{Kind: PlayerUseKeyState, UseKey: UseKeyState{Action: action, Stage: UseKeyUsing}}
		ctx, _, keys := newTestContext()

		Convey("It sends the link key first, then the main key after the link delay", func() {
			player = updateUseKey(player, ctx, state)
			So(keys.sent, ShouldResemble, []KeyKind{KeyJump})
			So(player.Kind, ShouldEqual, PlayerUseKeyState)

			player = updateUseKey(player, ctx, state)
			So(keys.sent, ShouldResemble, []KeyKind{KeyJump, KeyInteract})
			So(player.UseKey.Stage, ShouldEqual, UseKeyPostcondition)
		})
	})
}

func TestUseKeyLinkModeAtTheSameSendsBoth(t *testing.T) {
	Convey("Given LinkAtTheSame", t, func() {
		action := KeyAction{Key: KeyInteract, Count: 1, LinkMode: LinkAtTheSame, LinkKey: KeyJump}
		state, _ := newUseKeyTestState(action)
		player := Player{Kind: PlayerUseKeyState, UseKey: UseKeyState{Action: action, Stage: UseKeyUsing}}
		ctx, _, keys := newTestContext()

		Convey("It sends both keys in one tick and advances to Postcondition", func() {
			next := updateUseKey(player, ctx, state)
			So(keys.sent, ShouldResemble, []KeyKind{KeyJump, KeyInteract})
			So(next.UseKey.Stage, ShouldEqual, UseKeyPostcondition)
		})
	})
}

func TestUseKeyRepetitionCompletesAction(t *testing.T) {
	Convey("Given an action with Count=2 reaching its last repetition", t, func() {
		action := KeyAction{Key: KeyInteract, Count: 2}
		state, _ := newUseKeyTestState(action)
		u := UseKeyState{Action: action, Stage: UseKeyPostcondition, Repetition: 1}
		player := Player{Kind: PlayerUseKeyState, UseKey: u}
		ctx, _, _ := newTestContext()

		Convey("It clears the action and returns to Idle", func() {
			next := updateUseKey(player, ctx, state)
			So(next.Kind, ShouldEqual, PlayerIdle)
			So(state.NormalAction, ShouldBeNil)
		})
	})

	Convey("Given an action with Count=2 on its first repetition", t, func() {
		action := KeyAction{Key: KeyInteract, Count: 2}
		state, _ := newUseKeyTestState(action)
		u := UseKeyState{Action: action, Stage: UseKeyPostcondition, Repetition: 0}
		player := Player{Kind: PlayerUseKeyState, UseKey: u}
		ctx, _, _ := newTestContext()

		Convey("It loops back to Using for the next repetition", func() {
			next := updateUseKey(player, ctx, state)
			So(next.Kind, ShouldEqual, PlayerUseKeyState)
			So(next.UseKey.Stage, ShouldEqual, UseKeyUsing)
			So(next.UseKey.Repetition, ShouldEqual, 1)
		})
	})
}

func TestClassLinkAfterTicks(t *testing.T) {
	Convey("classLinkAfterTicks returns the class-specific wait", t, func() {
		So(classLinkAfterTicks("Cadena"), ShouldEqual, 4)
		So(classLinkAfterTicks("Blaster"), ShouldEqual, 8)
		So(classLinkAfterTicks("Ark"), ShouldEqual, 10)
		So(classLinkAfterTicks("Warrior"), ShouldEqual, 5)
	})
}
