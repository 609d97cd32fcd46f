package agent

// updateMovingDispatch implements §4.5.5: decide which movement sub-state
// to enter from the Moving payload, or hand off to action completion when
// the destination has been reached.
func updateMovingDispatch(current Player, ctx *Context, state *PlayerPersistent) Player {
	m := current.Moving
	pos := requirePos(state)
	m.Pos = pos

	action, isPriority := state.activeAction()
	autoMobOnly := action != nil && action.Action.Kind == ActionAutoMob && !isPriority && state.PriorityAction == nil

	dx := m.Dest.X - pos.X
	dy := m.Dest.Y - pos.Y

	doubleJumpThreshold := thresholdDoubleJump
	fallingThreshold := thresholdFalling
	if autoMobOnly {
		doubleJumpThreshold = thresholdDoubleJumpAutoMob
		fallingThreshold = thresholdFallingRelaxed
	}

	if autoMobOnly && m.IsIntermediate() && canSkipIntermediate(dx, dy, state.LastMovement) {
		return Player{Kind: PlayerMovingState, Moving: m.PopIntermediate()}
	}

	switch {
	case abs(dx) >= doubleJumpThreshold:
		return enterMovement(state, MovementDoubleJumping, autoMobOnly, func() Player {
			return Player{Kind: PlayerDoubleJumpingState, Moving: m, DoubleJumpForced: false}
		})
	case abs(dx) >= thresholdAdjustingMedium || (m.Exact && abs(dx) >= thresholdAdjustingShort):
		return enterMovement(state, MovementAdjusting, autoMobOnly, func() Player {
			return Player{Kind: PlayerAdjustingState, Moving: m}
		})
	case dy > 0 && abs(dy) >= thresholdGrapplingMin && !state.Config.DisableGrappling:
		return enterMovement(state, MovementGrappling, autoMobOnly, func() Player {
			return Player{Kind: PlayerGrapplingState, Moving: m}
		})
	case dy > 0 && abs(dy) >= thresholdUpJump:
		return enterMovement(state, MovementUpJumping, autoMobOnly, func() Player {
			return Player{Kind: PlayerUpJumpingState, Moving: m}
		})
	case dy > 0 && abs(dy) >= thresholdJump:
		return enterMovement(state, MovementJumping, autoMobOnly, func() Player {
			return Player{Kind: PlayerJumpingState, Moving: m}
		})
	case dy < 0 && abs(dy) >= fallingThreshold:
		return enterMovement(state, MovementFalling, autoMobOnly, func() Player {
			return Player{Kind: PlayerFallingState, Moving: m, FallingAnchor: pos}
		})
	default:
		if m.IsIntermediate() {
			return Player{Kind: PlayerMovingState, Moving: m.PopIntermediate()}
		}
		return completeAction(state)
	}
}

// canSkipIntermediate allows auto-mob to skip a waypoint already
// satisfied by the trajectory of the last movement (§4.5.5): permitted
// iff |dx| < DOUBLE_JUMP and dy is within JUMP or was already traversed
// (a Falling/UpJumping episode en route covers the y change).
func canSkipIntermediate(dx, dy int, last MovementKind) bool {
	if abs(dx) >= thresholdDoubleJump {
		return false
	}
	if abs(dy) <= thresholdJump {
		return true
	}
	return last == MovementFalling || last == MovementUpJumping
}

// enterMovement applies the repeat-abort guard (§4.5.6) before allowing
// entry into movement sub-state `kind`; on exceeding the cap it aborts the
// action (and for auto-mob, records an ignore range) and returns to Idle
// instead of entering the movement state at all.
func enterMovement(state *PlayerPersistent, kind MovementKind, autoMob bool, enter func() Player) Player {
	repeats := state.movementRepeatMap(state.PriorityAction != nil)
	repeats[kind]++

	cap := repeatAbortCap(kind, autoMob)
	if repeats[kind] <= cap {
		state.LastMovement = kind
		return enter()
	}

	repeats[kind] = 0
	if autoMob {
		if action, _ := state.activeAction(); action != nil && action.Action.Kind == ActionAutoMob {
			recordIgnoreRange(state, action.Action.AutoMob.Dest)
		}
	}
	state.clearActiveAction()
	return Player{Kind: PlayerIdle}
}

func repeatAbortCap(kind MovementKind, autoMob bool) int {
	horizontal := kind == MovementAdjusting || kind == MovementDoubleJumping
	if horizontal {
		if autoMob {
			return repeatAbortHorizontalAutoMob
		}
		return repeatAbortHorizontal
	}
	if autoMob {
		return repeatAbortVerticalAutoMob
	}
	return repeatAbortVertical
}

// completeAction hands off to action completion (§4.5.5 step 7 "else"):
// auto-mob bookkeeping is reconciled, the action slot is cleared, and the
// FSM returns to Idle so the Rotator/UseKey can pick up the next step.
func completeAction(state *PlayerPersistent) Player {
	reconcileAutoMobReachableY(state)
	state.clearActiveAction()
	state.LastMovement = MovementNone
	return Player{Kind: PlayerIdle}
}

// --- Adjusting (§4.5.7) ---

const adjustingTimeoutTicks = moveTimeoutTicks

func updateAdjusting(current Player, ctx *Context, state *PlayerPersistent) Player {
	m := current.Moving
	pos := requirePos(state)
	dx := m.Dest.X - pos.X
	dy := m.Dest.Y - pos.Y

	if !m.Timeout.Started &&
		state.LastMovement != MovementFalling &&
		abs(dx) >= thresholdAdjustingMedium &&
		dy < 0 && abs(dy) >= 8 &&
		!m.IsIntermediate() &&
		state.IsStationary {
		return Player{Kind: PlayerFallingState, Moving: m, FallingAnchor: pos}
	}

	return UpdateWithTimeout(m.Timeout, adjustingTimeoutTicks,
		func(t Timeout) Player {
			m.Timeout = t
			adjustKeys(ctx, dx)
			return Player{Kind: PlayerAdjustingState, Moving: m}
		},
		func(t Timeout) Player {
			m.Timeout = t
			m.Completed = abs(dx) < thresholdAdjustingShort
			releaseHorizontalKeys(ctx)
			return Player{Kind: PlayerMovingState, Moving: m}
		},
		func(t Timeout) Player {
			m.Timeout = t
			if abs(dx) < thresholdAdjustingShort {
				releaseHorizontalKeys(ctx)
				m.Completed = true
				return Player{Kind: PlayerMovingState, Moving: m}
			}
			adjustKeys(ctx, dx)
			return Player{Kind: PlayerAdjustingState, Moving: m}
		},
	)
}

func adjustKeys(ctx *Context, dx int) {
	if dx > 0 {
		ctx.Keys.SendDown(KeyRight)
		ctx.Keys.SendUp(KeyLeft)
	} else if dx < 0 {
		ctx.Keys.SendDown(KeyLeft)
		ctx.Keys.SendUp(KeyRight)
	}
}

func releaseHorizontalKeys(ctx *Context) {
	ctx.Keys.SendUp(KeyLeft)
	ctx.Keys.SendUp(KeyRight)
}

// --- DoubleJumping (§4.5.7) ---

const doubleJumpTimeoutTicks = moveTimeoutTicks

func updateDoubleJumping(current Player, ctx *Context, state *PlayerPersistent) Player {
	m := current.Moving
	pos := requirePos(state)
	dx := m.Dest.X - pos.X
	dy := m.Dest.Y - pos.Y

	if current.DoubleJumpRequireStationary && !state.IsStationary {
		return current
	}

	if !m.Timeout.Started &&
		!current.DoubleJumpForced &&
		abs(dx) >= thresholdAdjustingMedium &&
		dy < 0 && abs(dy) >= 8 &&
		!m.IsIntermediate() &&
		state.IsStationary {
		return Player{Kind: PlayerFallingState, Moving: m, FallingAnchor: pos, FallingTimeoutOnComplete: true}
	}

	return UpdateWithTimeout(m.Timeout, doubleJumpTimeoutTicks,
		func(t Timeout) Player {
			m.Timeout = t
			ctx.Keys.Send(jumpKeyFor(state.Config))
			return Player{Kind: PlayerDoubleJumpingState, Moving: m, DoubleJumpForced: current.DoubleJumpForced}
		},
		func(t Timeout) Player {
			m.Timeout = t
			if !current.DoubleJumpForced && abs(dx) <= 4 && dy > 0 && !state.Config.DisableGrappling {
				return Player{Kind: PlayerGrapplingState, Moving: m}
			}
			return Player{Kind: PlayerMovingState, Moving: m}
		},
		func(t Timeout) Player {
			m.Timeout = t
			if current.DoubleJumpForced || abs(dx) < thresholdDoubleJump {
				if !current.DoubleJumpForced && abs(dx) <= 4 && dy > 0 && !state.Config.DisableGrappling {
					return Player{Kind: PlayerGrapplingState, Moving: m}
				}
				return Player{Kind: PlayerMovingState, Moving: m}
			}
			ctx.Keys.Send(jumpKeyFor(state.Config))
			return Player{Kind: PlayerDoubleJumpingState, Moving: m, DoubleJumpForced: current.DoubleJumpForced}
		},
	)
}

func jumpKeyFor(cfg PlayerConfigSnapshot) KeyKind {
	if cfg.TeleportKey != KeyNone {
		return cfg.TeleportKey
	}
	return cfg.JumpKey
}

// --- Grappling (§4.5.7) ---

const grapplingTimeoutTicks = 50
const grapplingTimeoutAutoMobTicks = 15
const grapplingReachTolerance = 3

func updateGrappling(current Player, ctx *Context, state *PlayerPersistent) Player {
	m := current.Moving
	if !m.Timeout.Started {
		ctx.Keys.SendDown(state.Config.GrappleKey)
	}
	pos := requirePos(state)
	dy := m.Dest.Y - pos.Y

	max := uint32(grapplingTimeoutTicks)
	if dy <= 0 || abs(dy) <= grapplingReachTolerance {
		max = 0 // force immediate timeout path below on next update
	}

	return UpdateWithTimeout(m.Timeout, max,
		func(t Timeout) Player {
			m.Timeout = t
			return Player{Kind: PlayerGrapplingState, Moving: m}
		},
		func(t Timeout) Player {
			m.Timeout = t
			ctx.Keys.SendUp(state.Config.GrappleKey)
			return Player{Kind: PlayerMovingState, Moving: m}
		},
		func(t Timeout) Player {
			m.Timeout = t
			return Player{Kind: PlayerGrapplingState, Moving: m}
		},
	)
}

// --- Jumping (§4.5.7) ---

func updateJumping(current Player, ctx *Context, state *PlayerPersistent) Player {
	m := current.Moving
	return UpdateWithTimeout(m.Timeout, moveTimeoutTicks,
		func(t Timeout) Player {
			m.Timeout = t
			ctx.Keys.Send(state.Config.JumpKey)
			return Player{Kind: PlayerJumpingState, Moving: m}
		},
		func(t Timeout) Player {
			m.Timeout = t
			return Player{Kind: PlayerMovingState, Moving: m}
		},
		func(t Timeout) Player {
			m.Timeout = t
			return Player{Kind: PlayerJumpingState, Moving: m}
		},
	)
}

// --- UpJumping (§4.5.7) ---

const upJumpPressDelayTicks = 7
const upJumpStopTicks = 5

func updateUpJumping(current Player, ctx *Context, state *PlayerPersistent) Player {
	m := current.Moving
	pos := requirePos(state)

	for _, portal := range ctx.Minimap.Portals {
		if portal.Contains(pos) {
			return completeAction(state)
		}
	}

	dy := m.Dest.Y - pos.Y
	if m.Completed && m.IsIntermediate() && pos.Y >= m.Dest.Y {
		return Player{Kind: PlayerMovingState, Moving: m}
	}

	return UpdateWithTimeout(m.Timeout, upJumpStopTicks,
		func(t Timeout) Player {
			m.Timeout = t
			ctx.Keys.SendDown(KeyUp)
			if state.Config.UpJumpKey == KeyUp {
				// up-jump key is Up itself (e.g. Demon Slayer)
			} else {
				ctx.Keys.Send(state.Config.UpJumpKey)
			}
			return Player{Kind: PlayerUpJumpingState, Moving: m}
		},
		func(t Timeout) Player {
			m.Timeout = t
			ctx.Keys.SendUp(KeyUp)
			if abs(dy) > 5 {
				m.Completed = true
			}
			return Player{Kind: PlayerMovingState, Moving: m}
		},
		func(t Timeout) Player {
			m.Timeout = t
			if t.Total == upJumpPressDelayTicks && abs(dy) <= 5 {
				ctx.Keys.Send(state.Config.JumpKey)
			}
			return Player{Kind: PlayerUpJumpingState, Moving: m}
		},
	)
}

// --- Falling (§4.5.7) ---

const fallingReleaseDownTick = 3
const fallingTeleportMaxDy = 14

func updateFalling(current Player, ctx *Context, state *PlayerPersistent) Player {
	m := current.Moving
	pos := requirePos(state)

	if !state.IsStationary && !m.Timeout.Started {
		return current
	}

	if pos.Y < current.FallingAnchor.Y && current.FallingTimeoutOnComplete {
		// Completed (§4.5.7): if timeout_on_complete is set this Falling
		// episode exists only to peel off a pre-fall guard, so it forces
		// an immediate timeout here rather than waiting out moveTimeoutTicks,
		// letting Moving re-dispatch into DoubleJumping the same tick.
		ctx.Keys.SendUp(KeyDown)
		return Player{Kind: PlayerMovingState, Moving: m}
	}

	return UpdateWithTimeout(m.Timeout, moveTimeoutTicks,
		func(t Timeout) Player {
			m.Timeout = t
			ctx.Keys.SendDown(KeyDown)
			dy := m.Dest.Y - pos.Y
			if abs(dy) <= fallingTeleportMaxDy && state.Config.TeleportKey != KeyNone {
				ctx.Keys.Send(state.Config.TeleportKey)
			} else {
				ctx.Keys.Send(state.Config.JumpKey)
			}
			return Player{Kind: PlayerFallingState, Moving: m, FallingAnchor: current.FallingAnchor, FallingTimeoutOnComplete: current.FallingTimeoutOnComplete}
		},
		func(t Timeout) Player {
			m.Timeout = t
			ctx.Keys.SendUp(KeyDown)
			return Player{Kind: PlayerMovingState, Moving: m}
		},
		func(t Timeout) Player {
			m.Timeout = t
			if t.Total == fallingReleaseDownTick {
				ctx.Keys.SendUp(KeyDown)
			}
			return Player{Kind: PlayerFallingState, Moving: m, FallingAnchor: current.FallingAnchor, FallingTimeoutOnComplete: current.FallingTimeoutOnComplete}
		},
	)
}
