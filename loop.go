package agent

import "time"

// TickRate is the fixed cadence named in §4.1 (≈33.33ms per tick).
const TickRate = 30

var tickInterval = time.Second / TickRate

// Capture is the screen-capture producer boundary (§6.3); the core only
// ever holds this interface. internal/capture supplies one backend.
type Capture interface {
	Grab() (Frame, bool)
}

// Frame is a captured BGRA image (§6.3).
type Frame struct {
	Width  int
	Height int
	Pixels []byte
}

// DetectorFactory binds a Detector view to one captured Frame, caching
// any derived grayscale lazily (§4.1 step 2).
type DetectorFactory func(Frame) Detector

// Loop owns the engine's per-tick wiring (§4.1, §5): capture -> detector
// view -> fold Minimap/Player/Skills/Buffs in order -> rotate -> drain
// one request -> sleep to cadence.
type Loop struct {
	Capture      Capture
	NewDetector  DetectorFactory
	Keys         KeySender
	Bus          *Bus

	Engine *Engine

	MinimapPersistent *MinimapPersistent
	SkillPersistent   [SkillKindCount]*SkillPersistent
	BuffPersistent    [BuffKindCount]*BuffPersistent

	Logger *Logger
}

// Run blocks, executing ticks at TickRate until stop is closed.
func (l *Loop) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		default:
		}

		start := time.Now()
		l.tick()
		elapsed := time.Since(start)

		if elapsed > tickInterval {
			if l.Logger != nil {
				l.Logger.Warn("tick overrun: %s", elapsed)
			}
			continue
		}

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

func (l *Loop) tick() {
	frame, ok := l.Capture.Grab()
	if !ok {
		return
	}
	l.Engine.Ctx.Detector = l.NewDetector(frame)
	l.Engine.Ctx.Keys = l.Keys

	l.Engine.Ctx.Minimap = FoldContextual(l.Engine.Ctx.Minimap, func(c Minimap) ControlFlow[Minimap] {
		return UpdateMinimap(c, l.Engine.Ctx, l.MinimapPersistent)
	})

	l.Engine.Ctx.Player = FoldContextual(l.Engine.Ctx.Player, func(c Player) ControlFlow[Player] {
		return UpdatePlayer(c, l.Engine.Ctx, l.Engine.Player)
	})

	for i := range l.Engine.Ctx.Skills {
		i := i
		l.Engine.Ctx.Skills[i] = FoldContextual(l.Engine.Ctx.Skills[i], func(c Skill) ControlFlow[Skill] {
			return UpdateSkill(c, l.Engine.Ctx, l.SkillPersistent[i])
		})
	}

	for i := range l.Engine.Ctx.Buffs {
		i := i
		l.Engine.Ctx.Buffs[i] = FoldContextual(l.Engine.Ctx.Buffs[i], func(c Buff) ControlFlow[Buff] {
			return UpdateBuff(c, l.Engine.Ctx, l.BuffPersistent[i])
		})
	}

	if !l.Engine.Ctx.Halting {
		l.Engine.Rotator.Rotate(l.Engine.Ctx, l.Engine.Player)
	}

	if req, ok := l.Bus.DrainOne(); ok {
		l.Engine.Dispatch(req)
	}
}
