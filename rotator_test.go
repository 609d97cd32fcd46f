package agent

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRotatorExactlyOneActionPerTick(t *testing.T) {
	Convey("Given a rotator with a pending normal action and no priorities", t, func() {
		r := NewRotator(RotationMode{Kind: RotationStartToEnd}, []PlayerAction{
			{Kind: ActionKey, Key: KeyAction{Key: KeyJump, Count: 1}},
			{Kind: ActionKey, Key: KeyAction{Key: KeyInteract, Count: 1}},
		}, nil)
		ctx, _, _ := newTestContext()
		state := NewPlayerPersistent(PlayerConfigSnapshot{})

		Convey("Rotate assigns exactly one action to the Player's normal slot", func() {
			r.Rotate(ctx, state)
			So(state.NormalAction, ShouldNotBeNil)
			So(state.PriorityAction, ShouldBeNil)
		})

		Convey("Rotate does not overwrite an already-pending normal action", func() {
			r.Rotate(ctx, state)
			first := state.NormalAction
			r.Rotate(ctx, state)
			So(state.NormalAction, ShouldEqual, first)
		})
	})
}

func TestRotatorStartToEndCycling(t *testing.T) {
	Convey("Given three normal actions in StartToEnd mode", t, func() {
		actions := []PlayerAction{
			{Kind: ActionKey, Key: KeyAction{Key: KeyJump}},
			{Kind: ActionKey, Key: KeyAction{Key: KeyInteract}},
			{Kind: ActionKey, Key: KeyAction{Key: KeyEsc}},
		}
		r := NewRotator(RotationMode{Kind: RotationStartToEnd}, actions, nil)

		Convey("cycleForward wraps back to the first action after the last", func() {
			a0, _ := r.cycleForward()
			a1, _ := r.cycleForward()
			a2, _ := r.cycleForward()
			a3, _ := r.cycleForward()
			So(a0.Key.Key, ShouldEqual, KeyJump)
			So(a1.Key.Key, ShouldEqual, KeyInteract)
			So(a2.Key.Key, ShouldEqual, KeyEsc)
			So(a3.Key.Key, ShouldEqual, KeyJump)
		})
	})
}

func TestRotatorAutoMobbingNoMobs(t *testing.T) {
	Convey("Given AutoMobbing mode and the detector reports no mobs", t, func() {
		r := NewRotator(RotationMode{Kind: RotationAutoMobbing, AutoMob: AutoMobbingParams{Key: KeyJump}}, nil, nil)
		ctx, det, _ := newTestContext()
		det.mobs = nil
		state := NewPlayerPersistent(PlayerConfigSnapshot{})

		Convey("Rotate assigns nothing", func() {
			r.Rotate(ctx, state)
			So(state.NormalAction, ShouldBeNil)
		})
	})
}

func TestRotatorAutoMobbingWithMobs(t *testing.T) {
	Convey("Given AutoMobbing mode and the detector reports a mob", t, func() {
		r := NewRotator(RotationMode{Kind: RotationAutoMobbing, AutoMob: AutoMobbingParams{Key: KeyJump}}, nil, nil)
		ctx, det, _ := newTestContext()
		det.mobs = []Rect{{X: 10, Y: 20, W: 4, H: 4}}
		state := NewPlayerPersistent(PlayerConfigSnapshot{})

		Convey("Rotate assigns an AutoMob action targeting the mob's bottom center", func() {
			r.Rotate(ctx, state)
			So(state.NormalAction, ShouldNotBeNil)
			So(state.NormalAction.Action.Kind, ShouldEqual, ActionAutoMob)
			So(state.NormalAction.Action.AutoMob.Dest, ShouldResemble, Rect{X: 10, Y: 20, W: 4, H: 4}.BottomCenter())
		})
	})
}

func TestRotatorPriorityPreemptsNormal(t *testing.T) {
	Convey("Given an Erda-off-cooldown priority and a pending normal action", t, func() {
		priorities := []*PriorityEntry{
			{Trigger: PriorityErdaShowerOffCooldown, Action: PlayerAction{Kind: ActionKey, Key: KeyAction{Key: KeyJump}}},
		}
		r := NewRotator(RotationMode{Kind: RotationStartToEnd}, []PlayerAction{{Kind: ActionKey, Key: KeyAction{Key: KeyInteract}}}, priorities)
		ctx, _, _ := newTestContext()
		ctx.Skills[SkillErdaShower] = Skill{State: SkillIdle}
		state := NewPlayerPersistent(PlayerConfigSnapshot{})
		state.NormalAction = &QueuedAction{ID: 1, Action: PlayerAction{Kind: ActionKey, Key: KeyAction{Key: KeyInteract}}}

		Convey("Rotate fills the priority slot while leaving normal untouched", func() {
			r.Rotate(ctx, state)
			So(state.PriorityAction, ShouldNotBeNil)
			So(state.PriorityAction.Action.Key.Key, ShouldEqual, KeyJump)
			So(state.NormalAction, ShouldNotBeNil)
		})
	})
}
