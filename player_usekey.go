package agent

import "math/rand"

// UseKeyStage enumerates the UseKey sub-FSM's three stages (§4.5.8).
type UseKeyStage int

const (
	UseKeyPrecondition UseKeyStage = iota
	UseKeyUsing
	UseKeyPostcondition
)

// UseKeyState is the payload carried by Player when Kind==PlayerUseKeyState.
type UseKeyState struct {
	Action KeyAction
	Stage  UseKeyStage

	ChangingDirectionTicks uint32
	WaitTimeout            Timeout
	WaitTicks              uint32

	Repetition int

	UseTimeout Timeout
}

func newUseKeyState(action KeyAction) UseKeyState {
	wantBefore := randomizedWait(action.WaitBeforeUseTicks, action.WaitBeforeUseRandRange)
	wantAfter := randomizedWait(action.WaitAfterUseTicks, action.WaitAfterUseRandRange)
	action.WaitBeforeUseTicks = wantBefore
	action.WaitAfterUseTicks = wantAfter
	return UseKeyState{Action: action, Stage: UseKeyPrecondition}
}

// randomizedWait implements §4.5.8's "randomize wait_before/after uniformly
// in [base-range, base+range] on action construction".
func randomizedWait(base, rng uint32) uint32 {
	if rng == 0 {
		return base
	}
	lo := int64(base) - int64(rng)
	if lo < 0 {
		lo = 0
	}
	hi := int64(base) + int64(rng)
	return uint32(lo + rand.Int63n(hi-lo+1))
}

// classLinkAfterTicks returns the class-specific wait before an After-mode
// link key fires (§4.5.8).
func classLinkAfterTicks(class string) uint32 {
	switch class {
	case "Cadena":
		return 4
	case "Blaster":
		return 8
	case "Ark":
		return 10
	default:
		return 5
	}
}

func updateUseKey(current Player, ctx *Context, state *PlayerPersistent) Player {
	u := current.UseKey
	switch u.Stage {
	case UseKeyPrecondition:
		return updateUseKeyPrecondition(current, u, ctx, state)
	case UseKeyUsing:
		return updateUseKeyUsing(current, u, ctx, state)
	default:
		return updateUseKeyPostcondition(current, u, ctx, state)
	}
}

func updateUseKeyPrecondition(current Player, u UseKeyState, ctx *Context, state *PlayerPersistent) Player {
	if u.Action.Direction != DirectionAny && state.LastKnownDirection != u.Action.Direction {
		return driveChangingDirection(current, u, ctx, state)
	}

	switch u.Action.With {
	case WithStationary:
		if !state.IsStationary {
			return current
		}
	case WithDoubleJump:
		if !state.IsStationary {
			pos := requirePos(state)
			return Player{Kind: PlayerDoubleJumpingState, Moving: Moving{Pos: pos, Dest: pos}, DoubleJumpForced: true, DoubleJumpRequireStationary: false}
		}
	}

	if u.Action.WaitBeforeUseTicks > 0 {
		next := current
		next.UseKey.Stage = UseKeyUsing
		return Player{
			Kind:         PlayerStallingState,
			StallTimeout: Timeout{},
			StallMax:     u.Action.WaitBeforeUseTicks,
			StallReturn:  &next,
		}
	}

	u.Stage = UseKeyUsing
	return Player{Kind: PlayerUseKeyState, UseKey: u}
}

// driveChangingDirection runs the <=3-tick press-then-release used to
// enforce an ActionKeyDirection precondition (§4.5.8).
func driveChangingDirection(current Player, u UseKeyState, ctx *Context, state *PlayerPersistent) Player {
	const changingDirectionTicks = 3
	key := KeyLeft
	if u.Action.Direction == DirectionRight {
		key = KeyRight
	}
	if u.ChangingDirectionTicks == 0 {
		ctx.Keys.SendDown(key)
	}
	u.ChangingDirectionTicks++
	if u.ChangingDirectionTicks >= changingDirectionTicks {
		ctx.Keys.SendUp(key)
		state.LastKnownDirection = u.Action.Direction
		u.ChangingDirectionTicks = 0
	}
	return Player{Kind: PlayerUseKeyState, UseKey: u}
}

func updateUseKeyUsing(current Player, u UseKeyState, ctx *Context, state *PlayerPersistent) Player {
	switch u.Action.LinkMode {
	case LinkNone:
		return UpdateWithTimeout(u.UseTimeout, 1,
			func(t Timeout) Player {
				u.UseTimeout = t
				ctx.Keys.Send(u.Action.Key)
				return advanceToPostcondition(u)
			},
			func(t Timeout) Player { return advanceToPostcondition(u) },
			func(t Timeout) Player { u.UseTimeout = t; return Player{Kind: PlayerUseKeyState, UseKey: u} },
		)
	case LinkBefore:
		return UpdateWithTimeout(u.UseTimeout, 2,
			func(t Timeout) Player {
				u.UseTimeout = t
				ctx.Keys.Send(u.Action.LinkKey)
				return Player{Kind: PlayerUseKeyState, UseKey: u}
			},
			func(t Timeout) Player { return advanceToPostcondition(u) },
			func(t Timeout) Player {
				u.UseTimeout = t
				ctx.Keys.Send(u.Action.Key)
				return advanceToPostcondition(u)
			},
		)
	case LinkAtTheSame:
		ctx.Keys.Send(u.Action.LinkKey)
		ctx.Keys.Send(u.Action.Key)
		return advanceToPostcondition(u)
	case LinkAfter:
		delay := classLinkAfterTicks(state.Config.Class)
		return UpdateWithTimeout(u.UseTimeout, delay,
			func(t Timeout) Player {
				u.UseTimeout = t
				ctx.Keys.Send(u.Action.Key)
				if state.Config.Class == "Blaster" && u.Action.LinkKey != state.Config.JumpKey {
					ctx.Keys.Send(state.Config.JumpKey)
				}
				return Player{Kind: PlayerUseKeyState, UseKey: u}
			},
			func(t Timeout) Player {
				ctx.Keys.Send(u.Action.LinkKey)
				return advanceToPostcondition(u)
			},
			func(t Timeout) Player { u.UseTimeout = t; return Player{Kind: PlayerUseKeyState, UseKey: u} },
		)
	case LinkAlong:
		return UpdateWithTimeout(u.UseTimeout, 4,
			func(t Timeout) Player {
				u.UseTimeout = t
				ctx.Keys.SendDown(u.Action.LinkKey)
				return Player{Kind: PlayerUseKeyState, UseKey: u}
			},
			func(t Timeout) Player {
				ctx.Keys.SendUp(u.Action.LinkKey)
				return advanceToPostcondition(u)
			},
			func(t Timeout) Player {
				u.UseTimeout = t
				if t.Total == 2 {
					ctx.Keys.Send(u.Action.Key)
				}
				if t.Total >= 4 {
					ctx.Keys.SendUp(u.Action.LinkKey)
					return advanceToPostcondition(u)
				}
				return Player{Kind: PlayerUseKeyState, UseKey: u}
			},
		)
	default:
		return advanceToPostcondition(u)
	}
}

func advanceToPostcondition(u UseKeyState) Player {
	u.Stage = UseKeyPostcondition
	u.UseTimeout = Timeout{}
	return Player{Kind: PlayerUseKeyState, UseKey: u}
}

func updateUseKeyPostcondition(current Player, u UseKeyState, ctx *Context, state *PlayerPersistent) Player {
	if u.Action.WaitAfterUseTicks > 0 {
		next := current
		next.UseKey.Repetition++
		next.UseKey.Stage = UseKeyUsing
		next.UseKey.UseTimeout = Timeout{}
		if next.UseKey.Repetition >= next.UseKey.Action.Count {
			reconcileAutoMobReachableY(state)
			return completeAction(state)
		}
		return Player{
			Kind:         PlayerStallingState,
			StallTimeout: Timeout{},
			StallMax:     u.Action.WaitAfterUseTicks,
			StallReturn:  &next,
		}
	}

	u.Repetition++
	if u.Repetition >= u.Action.Count {
		reconcileAutoMobReachableY(state)
		return completeAction(state)
	}
	u.Stage = UseKeyUsing
	u.UseTimeout = Timeout{}
	return Player{Kind: PlayerUseKeyState, UseKey: u}
}

// updateStalling runs the shared Stalling(Timeout,max) helper used by
// UseKey's wait_before/wait_after (§4.5.8) and CashShopThenExit's dwell
// stages (§4.5.10): it waits out Max ticks then re-enters the saved
// StallReturn state.
func updateStalling(current Player, ctx *Context, state *PlayerPersistent) Player {
	return UpdateWithTimeout(current.StallTimeout, current.StallMax,
		func(t Timeout) Player {
			current.StallTimeout = t
			return current
		},
		func(t Timeout) Player {
			if current.StallReturn != nil {
				return *current.StallReturn
			}
			return Player{Kind: PlayerIdle}
		},
		func(t Timeout) Player {
			current.StallTimeout = t
			return current
		},
	)
}
