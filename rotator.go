package agent

import "time"

// RotationModeKind selects how normal actions are cycled (§4.6).
type RotationModeKind int

const (
	RotationStartToEnd RotationModeKind = iota
	RotationStartToEndThenReverse
	RotationAutoMobbing
)

// AutoMobbingParams configures RotationAutoMobbing (§4.6).
type AutoMobbingParams struct {
	Key         KeyKind
	Count       int
	WaitBefore  uint32
	WaitAfter   uint32
	Bound       Rect
}

// RotationMode is the active normal-action selection strategy.
type RotationMode struct {
	Kind    RotationModeKind
	AutoMob AutoMobbingParams
}

// PriorityTriggerKind enumerates §4.6's priority-action trigger families.
type PriorityTriggerKind int

const (
	PriorityErdaShowerOffCooldown PriorityTriggerKind = iota
	PriorityEveryMillis
	PriorityLinked
	PriorityRuneSolving
)

// PriorityEntry is one scheduled priority action plus its trigger.
type PriorityEntry struct {
	Trigger       PriorityTriggerKind
	Action        PlayerAction
	EveryMillis   int64
	QueueToFront  bool
	lastFiredAt   time.Time
}

// Rotator builds a flat action list from presets + periodic config
// actions + per-buff re-use actions, and selects one action per tick for
// the Player FSM (§4.6, §8 "exactly one action per tick").
type Rotator struct {
	Mode         RotationMode
	Normal       []PlayerAction
	cursor       int
	reverse      bool
	Priorities   []*PriorityEntry
	ResetOnErda  bool
}

// NewRotator builds a Rotator over normalActions, grounded on the request
// handler's "update configuration ... rebuilds the rotator" rule (§4.7).
func NewRotator(mode RotationMode, normalActions []PlayerAction, priorities []*PriorityEntry) *Rotator {
	return &Rotator{Mode: mode, Normal: normalActions, Priorities: priorities}
}

// Rotate picks at most one action and assigns it to state's normal or
// priority slot (§4.6, §4.7 "only one action is pushed to Player per
// tick"). Called once per tick when ctx.Halting is false (§4.1 step 4).
func (r *Rotator) Rotate(ctx *Context, state *PlayerPersistent) {
	if entry := r.nextPriority(ctx, state); entry != nil {
		if entry.Trigger == PriorityErdaShowerOffCooldown && r.ResetOnErda {
			r.cursor = 0
			r.reverse = false
		}
		state.PriorityAction = &QueuedAction{ID: state.allocActionID(), Action: entry.Action}
		return
	}

	if state.NormalAction != nil {
		return
	}
	action, ok := r.nextNormal(ctx)
	if !ok {
		return
	}
	state.NormalAction = &QueuedAction{ID: state.allocActionID(), Action: action}
}

func (r *Rotator) nextPriority(ctx *Context, state *PlayerPersistent) *PriorityEntry {
	for _, p := range r.Priorities {
		if r.priorityFires(p, ctx) {
			return p
		}
	}
	// Rune solving only fires when no priority action is already active
	// (§4.6); unlike the other triggers above it has no cooldown of its
	// own, so without this guard it would re-fire and clobber an
	// in-flight priority action every tick the rune is still present.
	if state.PriorityAction == nil && ctx.Minimap.State == MinimapIdle && ctx.Minimap.Rune != nil {
		return &PriorityEntry{Trigger: PriorityRuneSolving, Action: PlayerAction{Kind: ActionSolveRune}}
	}
	return nil
}

func (r *Rotator) priorityFires(p *PriorityEntry, ctx *Context) bool {
	switch p.Trigger {
	case PriorityErdaShowerOffCooldown:
		return ctx.Skills[SkillErdaShower].State == SkillIdle
	case PriorityEveryMillis:
		if time.Since(p.lastFiredAt) >= time.Duration(p.EveryMillis)*time.Millisecond {
			p.lastFiredAt = time.Now()
			return true
		}
		return false
	case PriorityLinked:
		return false // attaches to the previous action's own trigger, never fires standalone
	default:
		return false
	}
}

func (r *Rotator) nextNormal(ctx *Context) (PlayerAction, bool) {
	switch r.Mode.Kind {
	case RotationAutoMobbing:
		mobs := ctx.Detector.DetectMobs(r.Mode.AutoMob.Bound)
		if len(mobs) == 0 {
			return PlayerAction{}, false
		}
		target := mobs[0].BottomCenter()
		return PlayerAction{Kind: ActionAutoMob, AutoMob: AutoMobAction{
			Dest:       target,
			Key:        r.Mode.AutoMob.Key,
			WaitBefore: r.Mode.AutoMob.WaitBefore,
			WaitAfter:  r.Mode.AutoMob.WaitAfter,
		}}, true
	case RotationStartToEndThenReverse:
		return r.cycleWithReverse()
	default: // RotationStartToEnd
		return r.cycleForward()
	}
}

func (r *Rotator) cycleForward() (PlayerAction, bool) {
	if len(r.Normal) == 0 {
		return PlayerAction{}, false
	}
	a := r.Normal[r.cursor]
	r.cursor = (r.cursor + 1) % len(r.Normal)
	return a, true
}

func (r *Rotator) cycleWithReverse() (PlayerAction, bool) {
	n := len(r.Normal)
	if n == 0 {
		return PlayerAction{}, false
	}
	a := r.Normal[r.cursor]
	if !r.reverse {
		r.cursor++
		if r.cursor >= n {
			r.cursor = n - 2
			if r.cursor < 0 {
				r.cursor = 0
			}
			r.reverse = true
		}
	} else {
		r.cursor--
		if r.cursor < 0 {
			r.cursor = 1
			if r.cursor >= n {
				r.cursor = 0
			}
			r.reverse = false
		}
	}
	return a, true
}

// ConfigBuffs builds per-buff re-use priority actions from buff kinds the
// configuration enables, grounded on original_source's config_buffs
// helper (§4.6 "per-buff re-use actions").
func ConfigBuffs(kinds []BuffKind, key func(BuffKind) KeyKind) []*PriorityEntry {
	entries := make([]*PriorityEntry, 0, len(kinds))
	for _, k := range kinds {
		k := k
		entries = append(entries, &PriorityEntry{
			Trigger: PriorityEveryMillis,
			Action:  PlayerAction{Kind: ActionKey, Key: KeyAction{Key: key(k), Count: 1}},
		})
	}
	return entries
}

// ConfigActions builds the periodic feed-pet x3 / potion actions named in
// §2's ambient config section, grounded on original_source's
// config_actions helper.
func ConfigActions(feedPetKey KeyKind, potionKey KeyKind, potionEveryMillis int64) []*PriorityEntry {
	entries := make([]*PriorityEntry, 0, 4)
	for i := 0; i < 3; i++ {
		entries = append(entries, &PriorityEntry{
			Trigger: PriorityEveryMillis,
			EveryMillis: 60 * 60 * 1000,
			Action:      PlayerAction{Kind: ActionKey, Key: KeyAction{Key: feedPetKey, Count: 1}},
		})
	}
	if potionEveryMillis > 0 {
		entries = append(entries, &PriorityEntry{
			Trigger:     PriorityEveryMillis,
			EveryMillis: potionEveryMillis,
			Action:      PlayerAction{Kind: ActionKey, Key: KeyAction{Key: potionKey, Count: 1}},
		})
	}
	return entries
}
