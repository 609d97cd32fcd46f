package agent

import "time"

// BuffKind enumerates every presence-detected buff (§4.4), grounded
// verbatim on original_source/backend/src/buff.rs.
type BuffKind int

const (
	BuffRune BuffKind = iota
	BuffSayramElixir
	BuffAureliaElixir
	BuffExpCouponX3
	BuffBonusExpCoupon
	BuffLegionWealth
	BuffLegionLuck
	BuffWealthAcquisitionPotion
	BuffExpAccumulationPotion
	BuffExtremeRedPotion
	BuffExtremeBluePotion
	BuffExtremeGreenPotion
	BuffExtremeGoldPotion

	BuffKindCount
)

// buffFailMaxCount is BUFF_FAIL_MAX_COUNT in the source: the number of
// consecutive misses a non-rune buff tolerates before it's considered gone.
const buffFailMaxCount = 5

// buffRepeatDelay is the 5000ms repeat-task delay named in §4.4.
const buffRepeatDelay = 5000 * time.Millisecond

// Buff is the current-tick value for one buff slot in Context.Buffs.
type Buff int

const (
	BuffNone Buff = iota
	BuffHas
)

// BuffPersistent is the side-state owned by the loop for one BuffKind
// slot: the detection task and the fail-count hysteresis counters.
type BuffPersistent struct {
	Kind         BuffKind
	task         *Task[bool]
	FailCount    uint32
	MaxFailCount uint32
}

// NewBuffPersistent constructs persistent state for kind, applying the
// rune-specific max_fail_count=1 override (§4.4).
func NewBuffPersistent(kind BuffKind) *BuffPersistent {
	max := uint32(buffFailMaxCount)
	if kind == BuffRune {
		max = 1
	}
	return &BuffPersistent{Kind: kind, MaxFailCount: max}
}

// UpdateBuff is Buff's Contextual.update (§4.4). While the player is in
// CashShopThenExit the buff is frozen and simply carried forward, matching
// buff.rs's update() guard.
func UpdateBuff(current Buff, ctx *Context, state *BuffPersistent) ControlFlow[Buff] {
	if ctx.Player.Kind == PlayerCashShopThenExitState {
		return Next(current)
	}
	return Next(updateBuffDetection(current, ctx.Detector, state))
}

func updateBuffDetection(current Buff, detector Detector, state *BuffPersistent) Buff {
	kind := state.Kind
	update := UpdateTaskRepeatable(buffRepeatDelay, &state.task, func() bool {
		return detector.DetectPlayerBuff(kind)
	})
	hasBuff, done := update.Done()
	if !done {
		return current
	}
	if current == BuffHas && !hasBuff {
		state.FailCount++
	} else {
		state.FailCount = 0
	}
	switch current {
	case BuffNone:
		if hasBuff {
			return BuffHas
		}
		return BuffNone
	default: // BuffHas
		if state.FailCount >= state.MaxFailCount {
			return BuffNone
		}
		return BuffHas
	}
}
