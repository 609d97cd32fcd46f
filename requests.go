package agent

import "errors"

// ErrRequestQueueFull is returned by Bus.Send when the bounded channel is
// at capacity (§4.7, §5 "producers observe a send error and must retry").
var ErrRequestQueueFull = errors.New("agent: request queue full")

// RequestKind enumerates the typed requests named in §4.7.
type RequestKind int

const (
	RequestToggleHalt RequestKind = iota
	RequestRedetectMinimap
	RequestCreateMinimap
	RequestUpdateMinimap
	RequestDeleteMinimap
	RequestUpdateConfiguration
	RequestUpdateSettings
	RequestReadGameState
	RequestReadMinimapFrame
	RequestReadPlatformsBound
)

// Request is one typed request plus a reply channel, sized to carry the
// payload for every RequestKind without an interface box on the hot path.
type Request struct {
	Kind RequestKind

	Halt bool

	Minimap           MinimapSnapshot
	Configuration     Configuration
	Settings          Settings
	NormalActions     []PlayerAction
	Priorities        []*PriorityEntry

	Reply chan Response
}

// Response carries the typed result of a Request back to the caller.
type Response struct {
	OK bool

	GameState      GameStateSnapshot
	MinimapFrame    []byte
	PlatformsBound  Rect
	Fingerprint     MinimapFingerprint
}

// GameStateSnapshot is the read-only view §4.7's "read current game
// state" request returns.
type GameStateSnapshot struct {
	PlayerKind   PlayerStateKind
	MinimapState MinimapState
	Halting      bool
}

// MinimapSnapshot is the persisted-shape payload for create/update
// minimap requests (§3, §6.5): an id plus the platform list the graph is
// rebuilt from.
type MinimapSnapshot struct {
	ID        int64
	Name      string
	Platforms []Platform
}

// Settings is the process-level settings surface updatable via the
// request bus (distinct from the per-character Configuration), e.g.
// capture backend selection (§6.5, SPEC_FULL §2).
type Settings struct {
	CaptureBackend string
	TickRateHz     float64
}

// Bus is the bounded multi-producer/single-consumer request channel
// from UI to the tick loop (§4.7). The tick loop is the sole consumer;
// any number of producers may call Send, but a send on a full channel
// fails immediately rather than blocking (§5 back-pressure).
type Bus struct {
	ch chan Request
}

// NewBus constructs a Bus with the given bounded capacity.
func NewBus(capacity int) *Bus {
	return &Bus{ch: make(chan Request, capacity)}
}

// Send enqueues req, or returns ErrRequestQueueFull if the channel is at
// capacity.
func (b *Bus) Send(req Request) error {
	select {
	case b.ch <- req:
		return nil
	default:
		return ErrRequestQueueFull
	}
}

// DrainOne pulls at most one pending request and returns it, matching
// §4.1 step 5 "drain at most one request from the request channel and
// dispatch". Returns ok=false if the channel was empty.
func (b *Bus) DrainOne() (Request, bool) {
	select {
	case req := <-b.ch:
		return req, true
	default:
		return Request{}, false
	}
}

// Engine bundles everything the tick loop needs to dispatch a drained
// Request against (§4.7): the live Context, Player persistent state, and
// the active Rotator, all of which a configuration update may replace.
type Engine struct {
	Ctx     *Context
	Player  *PlayerPersistent
	Rotator *Rotator
	Minimap *MinimapPersistent
}

// Dispatch applies req to e, sending req.Reply (if non-nil) exactly once.
// A request whose reply channel has no reader (UI restarted mid-flight)
// never blocks the tick loop: the send uses a non-blocking select, per §7
// "the tick loop never crashes on a closed reply channel".
func (e *Engine) Dispatch(req Request) {
	resp := Response{OK: true}

	switch req.Kind {
	case RequestToggleHalt:
		e.Ctx.Halting = req.Halt

	case RequestRedetectMinimap:
		e.Ctx.Minimap = Minimap{State: MinimapDetecting}

	case RequestCreateMinimap, RequestUpdateMinimap:
		e.Ctx.Minimap.RebuildPlatforms(req.Minimap.Platforms)

	case RequestDeleteMinimap:
		e.Ctx.Minimap = Minimap{State: MinimapDetecting}

	case RequestUpdateConfiguration:
		// Resets Player persistent state, preserving only the
		// configuration snapshot, and rebuilds the rotator (§4.7).
		cfg := req.Configuration.ToPlayerSnapshot()
		*e.Player = *NewPlayerPersistent(cfg)
		e.Rotator = NewRotator(req.Configuration.Mode, req.NormalActions, req.Priorities)

	case RequestUpdateSettings:
		// Process-level settings (capture backend, tick rate) are applied
		// by cmd/mapleagent's wiring layer, not the core engine; the core
		// only acknowledges receipt here.

	case RequestReadGameState:
		resp.GameState = GameStateSnapshot{
			PlayerKind:   e.Ctx.Player.Kind,
			MinimapState: e.Ctx.Minimap.State,
			Halting:      e.Ctx.Halting,
		}

	case RequestReadMinimapFrame:
		resp.PlatformsBound = e.Ctx.Minimap.PlatformsBound

	case RequestReadPlatformsBound:
		resp.PlatformsBound = e.Ctx.Minimap.PlatformsBound
		resp.Fingerprint = Fingerprint(e.Ctx.Minimap)

	default:
		resp.OK = false
	}

	if req.Reply != nil {
		select {
		case req.Reply <- resp:
		default:
		}
	}
}
