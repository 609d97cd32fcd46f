package agent

import "time"

// MovementKind enumerates the movement sub-states tracked as
// last_movement and keyed into the repeat-abort counters (§3, §4.5.6).
type MovementKind int

const (
	MovementNone MovementKind = iota
	MovementAdjusting
	MovementDoubleJumping
	MovementFalling
	MovementGrappling
	MovementUpJumping
	MovementJumping
)

// ActionKeyDirection is the direction precondition a UseKey action can
// enforce (§4.5.8).
type ActionKeyDirection int

const (
	DirectionAny ActionKeyDirection = iota
	DirectionLeft
	DirectionRight
)

// ActionKeyWith is the "with" precondition a UseKey action can enforce
// (§4.5.8).
type ActionKeyWith int

const (
	WithAny ActionKeyWith = iota
	WithStationary
	WithDoubleJump
)

// LinkKeyMode selects how a UseKey action's link key is sequenced
// relative to the main key (§4.5.8).
type LinkKeyMode int

const (
	LinkNone LinkKeyMode = iota
	LinkBefore
	LinkAtTheSame
	LinkAfter
	LinkAlong
)

// PlayerActionKind discriminates the PlayerAction union the Rotator feeds
// to the Player FSM (§4.6).
type PlayerActionKind int

const (
	ActionMove PlayerActionKind = iota
	ActionKey
	ActionAutoMob
	ActionSolveRune
)

// PlayerAction is one normal/priority action slot's payload.
type PlayerAction struct {
	Kind    PlayerActionKind
	Move    MoveAction
	Key     KeyAction
	AutoMob AutoMobAction
}

type MoveAction struct {
	Dest  Point
	Exact bool
}

type KeyAction struct {
	Key       KeyKind
	Count     int
	Direction ActionKeyDirection
	With      ActionKeyWith

	LinkMode LinkKeyMode
	LinkKey  KeyKind

	WaitBeforeUseTicks     uint32
	WaitBeforeUseRandRange uint32
	WaitAfterUseTicks      uint32
	WaitAfterUseRandRange  uint32
}

type AutoMobAction struct {
	Dest       Point
	Key        KeyKind
	WaitBefore uint32
	WaitAfter  uint32
}

// QueuedAction pairs an action with a monotonic id so repeat-abort
// bookkeeping and rotator cursor resets can tell one dispatch from the
// next (§3 "normal_action, priority_action, each Option<(id, PlayerAction)>").
type QueuedAction struct {
	ID     uint64
	Action PlayerAction
}

// Intermediate is one waypoint in a Moving payload's optional pathing
// sequence (§3).
type Intermediate struct {
	Point Point
	Exact bool
}

// Moving is the shared payload carried by every movement sub-state
// (§3, §4.5.7).
type Moving struct {
	Pos           Point
	Dest          Point
	Exact         bool
	Completed     bool
	Timeout       Timeout
	Intermediates []Intermediate
}

// IsIntermediate reports whether more waypoints remain after Dest.
func (m Moving) IsIntermediate() bool { return len(m.Intermediates) > 0 }

// PopIntermediate advances to the next waypoint, if any.
func (m Moving) PopIntermediate() Moving {
	if len(m.Intermediates) == 0 {
		return m
	}
	next := m.Intermediates[0]
	m.Dest = next.Point
	m.Exact = next.Exact
	m.Intermediates = m.Intermediates[1:]
	m.Completed = false
	return m
}

// PlayerStateKind tags the active Player variant (§4.5.1).
type PlayerStateKind int

const (
	PlayerDetecting PlayerStateKind = iota
	PlayerIdle
	PlayerUseKeyState
	PlayerMovingState
	PlayerAdjustingState
	PlayerDoubleJumpingState
	PlayerGrapplingState
	PlayerJumpingState
	PlayerUpJumpingState
	PlayerFallingState
	PlayerUnstuckingState
	PlayerStallingState
	PlayerSolvingRuneState
	PlayerCashShopThenExitState
)

// Player is the current-tick tagged-union value in Context.Player. Only
// the fields relevant to Kind are populated; this keeps the common case
// (Idle/Detecting, no payload) cheap per the §9 "large union variants"
// note, at the cost of carrying unused zero-value fields for the rarer
// states — acceptable for a 30 Hz tick budget.
type Player struct {
	Kind PlayerStateKind

	Moving Moving

	DoubleJumpForced            bool
	DoubleJumpRequireStationary bool

	FallingAnchor            Point
	FallingTimeoutOnComplete bool

	UseKey UseKeyState

	UnstuckTimeout     Timeout
	UnstuckHasSettings bool

	StallTimeout Timeout
	StallMax     uint32
	StallReturn  *Player

	Rune SolvingRuneState

	CashShop      Timeout
	CashShopStage CashShopStage
}

// CashShopStage enumerates §4.5.10's stages.
type CashShopStage int

const (
	CashShopEntering CashShopStage = iota
	CashShopEntered
	CashShopExitting
	CashShopExitted
	CashShopStalling
)

const (
	// Movement thresholds, §4.5.4.
	thresholdAdjustingShort      = 1
	thresholdAdjustingMedium     = 3
	thresholdDoubleJump          = 25
	thresholdDoubleJumpAutoMob   = 15
	thresholdJump                = 7
	thresholdUpJump              = 10
	thresholdGrapplingMin        = 26
	thresholdGrapplingMax        = 41
	thresholdFalling             = 4
	thresholdFallingRelaxed      = 8
	moveTimeoutTicks             = 5

	// Repeat-abort caps, §4.5.6.
	repeatAbortHorizontal        = 20
	repeatAbortHorizontalAutoMob = 4
	repeatAbortVertical          = 8
	repeatAbortVerticalAutoMob   = 3

	// Position-stationary threshold, §4.5.2.
	stationaryTicks = 5

	// RuneFailedMaxCount resolves open question #2 (§9): the body-text
	// value of 2, kept as a named tunable rather than the conflicting
	// header constant of 8.
	RuneFailedMaxCount = 2

	// unstuckGambaThreshold is the consecutive-Unstucking-entries count
	// that engages gamba mode (§4.5.11, glossary).
	unstuckGambaThreshold = 3

	// solidifiedReachableYCount / solidifiedIgnoreXCount are "solidified"
	// thresholds from §4.5.12/glossary.
	solidifiedReachableYCount = 4
	solidifiedIgnoreXCount    = 3
)

// PlayerConfigSnapshot is the per-config data the Player FSM consults —
// key bindings, class-specific link-key ticks, pathing flags (§3).
type PlayerConfigSnapshot struct {
	Class             string
	DisableGrappling  bool
	InteractKey       KeyKind
	CashShopKey       KeyKind
	JumpKey           KeyKind
	UpJumpKey         KeyKind
	TeleportKey       KeyKind
	GrappleKey        KeyKind
	UseKeyRedoPrecondition bool // resolves open question #1 (§9)
}

// PlayerPersistent is the Player FSM's side-state (§3).
type PlayerPersistent struct {
	LastKnownPos *Point

	PositionTimeout Timeout
	IsStationary    bool

	LastKnownDirection ActionKeyDirection
	LastMovement       MovementKind

	NormalAction   *QueuedAction
	PriorityAction *QueuedAction
	nextActionID   uint64

	UnstuckCount             int
	UnstuckTransitionedCount int

	AutoMob PlayerAutoMobState

	RuneFailedCount  int
	RuneCashShop     bool
	runeSolveTimeout Timeout

	NormalMovementRepeat   map[MovementKind]int
	PriorityMovementRepeat map[MovementKind]int

	Config PlayerConfigSnapshot

	healthTask *Task[healthResult]
	isDeadTask *Task[bool]

	resetToIdleNextUpdate bool
	ignorePosUpdate       bool
}

type healthResult struct {
	current, max uint32
	ok           bool
}

// NewPlayerPersistent builds fresh persistent state, as the config-update
// request handler does when it resets the Player while preserving the
// configuration snapshot (§4.7).
func NewPlayerPersistent(cfg PlayerConfigSnapshot) *PlayerPersistent {
	return &PlayerPersistent{
		Config:                 cfg,
		NormalMovementRepeat:   make(map[MovementKind]int),
		PriorityMovementRepeat: make(map[MovementKind]int),
		AutoMob:                newPlayerAutoMobState(),
	}
}

// UpdatePlayer is Player's Contextual.update, implementing the per-tick
// entry sequence of §4.5.2.
func UpdatePlayer(current Player, ctx *Context, state *PlayerPersistent) ControlFlow[Player] {
	if state.RuneCashShop {
		ctx.Keys.SendUp(KeyLeft)
		ctx.Keys.SendUp(KeyRight)
		return Next(Player{Kind: PlayerCashShopThenExitState, CashShopStage: CashShopEntering})
	}

	if !state.ignorePosUpdate {
		refreshPlayerPosition(ctx, state)
	}

	positionKnown := state.LastKnownPos != nil
	if !positionKnown {
		if next, handled := updateNonPositional(current, ctx, state); handled {
			return Next(next)
		}
		if !ctx.Halting && ctx.Minimap.State == MinimapIdle && !ctx.Minimap.PartiallyOverlapping {
			return Next(Player{Kind: PlayerUnstuckingState})
		}
		return Next(Player{Kind: PlayerDetecting})
	}

	if state.resetToIdleNextUpdate {
		state.resetToIdleNextUpdate = false
		current = Player{Kind: PlayerIdle}
	}

	if next, handled := updateNonPositional(current, ctx, state); handled {
		return finishPlayerTick(next, current)
	}
	next := updatePositional(current, ctx, state)
	return finishPlayerTick(next, current)
}

// finishPlayerTick chooses Immediate vs Next via use_immediate_control_flow
// (§4.5.2 step 6): a state transition (Kind changed) re-enters immediately
// so the new state gets to act within the same tick, matching how e.g. a
// Moving->Adjusting transition should start pressing a key on the tick it
// is decided rather than waiting a full cycle. Unchanged Kind commits for
// next tick.
func finishPlayerTick(next, prev Player) ControlFlow[Player] {
	if next.Kind != prev.Kind {
		return Immediate(next)
	}
	return Next(next)
}

func refreshPlayerPosition(ctx *Context, state *PlayerPersistent) {
	rect, found := ctx.Detector.DetectPlayer(ctx.Minimap.Bbox)
	if !found {
		state.LastKnownPos = nil
		return
	}
	state.UnstuckTransitionedCount = 0
	pos := toBottomLeft(rect, ctx.Minimap.Bbox.H)
	prev := state.LastKnownPos
	state.LastKnownPos = &pos
	if prev != nil && *prev == pos {
		state.PositionTimeout = UpdateMovingAxisTimeout(0, 0, state.PositionTimeout, stationaryTicks)
	} else {
		state.PositionTimeout = Timeout{}
	}
	state.IsStationary = state.PositionTimeout.Total >= stationaryTicks

	updatePlayerHealth(ctx, state)
	updatePlayerIsDead(ctx, state)
}

// toBottomLeft converts a raw top-left detector rect to the bottom-left
// convention every Player/action position uses (§4.5.3).
func toBottomLeft(r Rect, minimapHeight int) Point {
	c := r.Center()
	return Point{X: c.X, Y: minimapHeight - r.Bottom()}
}

func updatePlayerHealth(ctx *Context, state *PlayerPersistent) {
	UpdateTaskRepeatable(1000*time.Millisecond, &state.healthTask, func() healthResult {
		bar, ok := ctx.Detector.DetectPlayerHealthBar()
		if !ok {
			return healthResult{}
		}
		cur, max, ok := ctx.Detector.DetectPlayerCurrentMaxHealthBars(bar)
		if !ok {
			return healthResult{}
		}
		c, m := ctx.Detector.DetectPlayerHealth(cur, max)
		return healthResult{current: c, max: m, ok: true}
	})
}

func updatePlayerIsDead(ctx *Context, state *PlayerPersistent) {
	UpdateTaskRepeatable(1000*time.Millisecond, &state.isDeadTask, func() bool {
		return ctx.Detector.DetectPlayerIsDead()
	})
}

// updateNonPositional dispatches to the non-positional sub-states named
// in §4.5.2 step 3/5: UseKey, Unstucking, Stalling, SolvingRune,
// CashShopThenExit. Returns handled=false when current isn't one of these
// so the caller falls through to the positional dispatch.
func updateNonPositional(current Player, ctx *Context, state *PlayerPersistent) (Player, bool) {
	switch current.Kind {
	case PlayerUseKeyState:
		return updateUseKey(current, ctx, state), true
	case PlayerUnstuckingState:
		return updateUnstucking(current, ctx, state), true
	case PlayerStallingState:
		return updateStalling(current, ctx, state), true
	case PlayerSolvingRuneState:
		return updateSolvingRune(current, ctx, state), true
	case PlayerCashShopThenExitState:
		return updateCashShopThenExit(current, ctx, state), true
	default:
		return Player{}, false
	}
}

// updatePositional dispatches Detecting/Idle/Moving and the six movement
// sub-states.
func updatePositional(current Player, ctx *Context, state *PlayerPersistent) Player {
	switch current.Kind {
	case PlayerDetecting:
		return Player{Kind: PlayerIdle}
	case PlayerIdle:
		return dispatchNextAction(current, ctx, state)
	case PlayerMovingState:
		return updateMovingDispatch(current, ctx, state)
	case PlayerAdjustingState:
		return updateAdjusting(current, ctx, state)
	case PlayerDoubleJumpingState:
		return updateDoubleJumping(current, ctx, state)
	case PlayerGrapplingState:
		return updateGrappling(current, ctx, state)
	case PlayerJumpingState:
		return updateJumping(current, ctx, state)
	case PlayerUpJumpingState:
		return updateUpJumping(current, ctx, state)
	case PlayerFallingState:
		return updateFalling(current, ctx, state)
	default:
		return Player{Kind: PlayerIdle}
	}
}

func (s *PlayerPersistent) allocActionID() uint64 {
	s.nextActionID++
	return s.nextActionID
}

// activeAction returns the priority action if set (it preempts normal
// while normal stays queued), else the normal action (§3, glossary).
func (s *PlayerPersistent) activeAction() (*QueuedAction, bool) {
	if s.PriorityAction != nil {
		return s.PriorityAction, true
	}
	if s.NormalAction != nil {
		return s.NormalAction, false
	}
	return nil, false
}

// clearActiveAction clears whichever slot produced the currently active
// action (used by the repeat-abort guard and action completion).
func (s *PlayerPersistent) clearActiveAction() {
	if s.PriorityAction != nil {
		s.PriorityAction = nil
		return
	}
	s.NormalAction = nil
}

// movementRepeatMap returns the per-action-slot repeat-abort counter map
// (§4.5.6).
func (s *PlayerPersistent) movementRepeatMap(priority bool) map[MovementKind]int {
	if priority {
		return s.PriorityMovementRepeat
	}
	return s.NormalMovementRepeat
}

func dispatchNextAction(current Player, ctx *Context, state *PlayerPersistent) Player {
	action, isPriority := state.activeAction()
	if action == nil {
		return current
	}
	switch action.Action.Kind {
	case ActionMove:
		pos := requirePos(state)
		dest := action.Action.Move.Dest
		return Player{Kind: PlayerMovingState, Moving: buildMovingTo(ctx.Minimap.Platforms, pos, dest, action.Action.Move.Exact)}
	case ActionAutoMob:
		if playerAutoMobTargetIgnored(state, action.Action.AutoMob.Dest) {
			state.clearActiveAction()
			return current
		}
		pos := requirePos(state)
		state.AutoMob.SolidifyPlatformYs(ctx.Minimap.Platforms, pos.Y)
		dest := action.Action.AutoMob.Dest
		reachableY := state.AutoMob.ChooseReachableY(dest.Y)
		state.AutoMob.ReachableY = &reachableY
		dest.Y = reachableY
		return Player{Kind: PlayerMovingState, Moving: buildMovingTo(ctx.Minimap.Platforms, pos, dest, false)}
	case ActionKey:
		return Player{Kind: PlayerUseKeyState, UseKey: newUseKeyState(action.Action.Key)}
	case ActionSolveRune:
		return Player{Kind: PlayerSolvingRuneState, Rune: newSolvingRuneState()}
	default:
		_ = isPriority
		return current
	}
}

func requirePos(state *PlayerPersistent) Point {
	if state.LastKnownPos != nil {
		return *state.LastKnownPos
	}
	return Point{}
}
