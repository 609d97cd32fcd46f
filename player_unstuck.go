package agent

import "math/rand"

// unstuckTimeoutTicks bounds one Unstucking attempt before releasing
// arrows and retrying detection (§4.5.11). The source doesn't name an
// exact figure; kept as a tunable constant per §9's guidance to treat
// under-specified magic numbers as policy parameters.
const unstuckTimeoutTicks = 60

// unstuckYFloor is the "pos.y <= 18" threshold below which a non-gamba
// attempt does nothing horizontal this tick (§4.5.11).
const unstuckYFloor = 18

// unstuckXThreshold is the fixed x comparison used to pick Left/Right in
// a non-gamba attempt (§4.5.11).
const unstuckXThreshold = 10

// updateUnstucking is Unstucking's Contextual.update (§4.5.11).
func updateUnstucking(current Player, ctx *Context, state *PlayerPersistent) Player {
	if current.UnstuckTimeout.Total == 0 && !current.UnstuckTimeout.Started {
		if ctx.Minimap.State != MinimapIdle || !ctx.Minimap.PartiallyOverlapping {
			if ctx.Minimap.State != MinimapIdle {
				return Player{Kind: PlayerDetecting}
			}
		}
		state.UnstuckTransitionedCount++
	}

	gamba := state.UnstuckTransitionedCount >= unstuckGambaThreshold

	return UpdateWithTimeout(current.UnstuckTimeout, unstuckTimeoutTicks,
		func(t Timeout) Player {
			current.UnstuckTimeout = t
			if !gamba {
				ctx.Detector.DetectEscSettings()
			}
			driveUnstuckAttempt(ctx, state, gamba, true)
			return current
		},
		func(t Timeout) Player {
			releaseUnstuckKeys(ctx)
			state.UnstuckCount++
			return Player{Kind: PlayerDetecting}
		},
		func(t Timeout) Player {
			current.UnstuckTimeout = t
			driveUnstuckAttempt(ctx, state, gamba, false)
			return current
		},
	)
}

func driveUnstuckAttempt(ctx *Context, state *PlayerPersistent, gamba, firstTick bool) {
	pos := requirePos(state)

	if gamba {
		if firstTick {
			ctx.Keys.Send(KeyEsc)
		}
		if rand.Intn(2) == 0 {
			ctx.Keys.SendDown(KeyLeft)
		} else {
			ctx.Keys.SendDown(KeyRight)
		}
		ctx.Keys.Send(jumpKeyFor(state.Config))
		return
	}

	if pos.Y <= unstuckYFloor {
		return
	}
	if pos.X < unstuckXThreshold {
		ctx.Keys.SendDown(KeyRight)
	} else {
		ctx.Keys.SendDown(KeyLeft)
	}
	ctx.Keys.Send(jumpKeyFor(state.Config))
}

func releaseUnstuckKeys(ctx *Context) {
	ctx.Keys.SendUp(KeyLeft)
	ctx.Keys.SendUp(KeyRight)
}
