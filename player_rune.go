package agent

import "time"

// SolvingRuneStage enumerates §4.5.9's progression.
type SolvingRuneStage int

const (
	RuneInteracting SolvingRuneStage = iota
	RuneDetectingArrows
	RunePressingArrows
	RuneValidating
)

const (
	runeArrowDetectRepeatDelay = 1000 * time.Millisecond
	runeArrowPressSpacingTicks = 10
	runeValidateTimeoutTicks   = 375
	runeGlobalSolveTimeoutTicks = 185
)

// SolvingRuneState is the payload carried by Player when
// Kind==PlayerSolvingRuneState.
type SolvingRuneState struct {
	Stage SolvingRuneStage

	arrowsTask *Task[runeArrowResult]
	Arrows     [4]KeyKind
	ArrowIndex int

	PressTimeout  Timeout
	GlobalTimeout Timeout
	ValidateTimeout Timeout
}

type runeArrowResult struct {
	arrows [4]KeyKind
	ok     bool
}

func newSolvingRuneState() SolvingRuneState {
	return SolvingRuneState{Stage: RuneInteracting}
}

// updateSolvingRune is SolvingRune's Contextual.update (§4.5.9).
func updateSolvingRune(current Player, ctx *Context, state *PlayerPersistent) Player {
	r := current.Rune

	if r.GlobalTimeout.Total >= runeGlobalSolveTimeoutTicks {
		return completeAction(state)
	}
	r.GlobalTimeout.Total++
	r.GlobalTimeout.Started = true

	switch r.Stage {
	case RuneInteracting:
		ctx.Keys.Send(state.Config.InteractKey)
		r.Stage = RuneDetectingArrows
		current.Rune = r
		return current

	case RuneDetectingArrows:
		update := UpdateTaskRepeatable(runeArrowDetectRepeatDelay, &r.arrowsTask, func() runeArrowResult {
			arrows, ok := ctx.Detector.DetectRuneArrows()
			return runeArrowResult{arrows: arrows, ok: ok}
		})
		result, done := update.Done()
		if !done {
			current.Rune = r
			return current
		}
		if !result.ok {
			current.Rune = r
			return current
		}
		r.Arrows = result.arrows
		r.Stage = RunePressingArrows
		current.Rune = r
		return current

	case RunePressingArrows:
		return UpdateWithTimeout(r.PressTimeout, runeArrowPressSpacingTicks,
			func(t Timeout) Player {
				r.PressTimeout = t
				ctx.Keys.Send(r.Arrows[r.ArrowIndex])
				current.Rune = r
				return current
			},
			func(t Timeout) Player {
				r.ArrowIndex++
				r.PressTimeout = Timeout{}
				if r.ArrowIndex >= len(r.Arrows) {
					r.Stage = RuneValidating
					r.ValidateTimeout = Timeout{}
				}
				current.Rune = r
				return current
			},
			func(t Timeout) Player {
				r.PressTimeout = t
				current.Rune = r
				return current
			},
		)

	default: // RuneValidating
		return UpdateWithTimeout(r.ValidateTimeout, runeValidateTimeoutTicks,
			func(t Timeout) Player {
				r.ValidateTimeout = t
				current.Rune = r
				return current
			},
			func(t Timeout) Player {
				if ctx.Detector.DetectPlayerRuneBuff() {
					state.RuneFailedCount = 0
					return completeAction(state)
				}
				state.RuneFailedCount++
				if state.RuneFailedCount >= RuneFailedMaxCount {
					state.RuneCashShop = true
				}
				return completeAction(state)
			},
			func(t Timeout) Player {
				r.ValidateTimeout = t
				current.Rune = r
				return current
			},
		)
	}
}
