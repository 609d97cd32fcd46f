package agent

// Context is the per-tick, read-mostly snapshot shared by all four FSMs
// (§3). It is constructed once at startup and only its contents mutate;
// Minimap/Player/Skills/Buffs hold each FSM's *current* variant, committed
// by the previous tick's fold.
type Context struct {
	Minimap Minimap
	Player  Player
	Skills  [SkillKindCount]Skill
	Buffs   [BuffKindCount]Buff

	Detector Detector
	Keys     KeySender
	Halting  bool
}

// ControlFlow is the two-variant result every Contextual update returns
// (§3): Next commits C for the following tick, Immediate re-enters update
// with C within the same tick.
type ControlFlow[C any] struct {
	value     C
	immediate bool
}

func Next[C any](c C) ControlFlow[C] { return ControlFlow[C]{value: c} }

func Immediate[C any](c C) ControlFlow[C] { return ControlFlow[C]{value: c, immediate: true} }

// MaxFoldDepth bounds ControlFlow::Immediate re-entrancy per tick (§3: "an
// implementer must cap recursion depth, e.g. 16").
const MaxFoldDepth = 16

// FoldContextual repeatedly invokes step, starting from initial, until it
// returns Next or MaxFoldDepth iterations have been spent — whichever
// comes first, guaranteeing the fold always terminates even if a caller's
// step never yields Next (§4.1 "capped ... to prevent live-locks").
func FoldContextual[C any](initial C, step func(C) ControlFlow[C]) C {
	cur := initial
	for i := 0; i < MaxFoldDepth; i++ {
		cf := step(cur)
		if !cf.immediate {
			return cf.value
		}
		cur = cf.value
	}
	return cur
}
