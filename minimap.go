package agent

import "time"

const (
	minimapDetectRepeatDelay = 2000 * time.Millisecond
	minimapSubTaskRepeatDelay = 1000 * time.Millisecond
	minimapWhitenessThreshold = 160
	minimapAnchorTolerance    = 45
	minimapRuneFailHysteresis = 3
	minimapMaxPortals         = 16
)

// MinimapState enumerates the Minimap FSM's two states (§4.2).
type MinimapState int

const (
	MinimapDetecting MinimapState = iota
	MinimapIdle
)

// Minimap is the current-tick value in Context.Minimap.
type Minimap struct {
	State MinimapState

	Bbox                   Rect
	PartiallyOverlapping   bool
	TopLeftAnchor          Point
	TopLeftAnchorPixel     Pixel
	BottomRightAnchor      Point
	BottomRightAnchorPixel Pixel

	Rune           *Point
	Portals        []Rect
	HasGuildie     bool
	HasStranger    bool
	HasFriend      bool
	HasEliteBoss   bool

	Platforms      []Platform
	PlatformsBound Rect
}

// MinimapPersistent holds every sub-task plus the rune-fail hysteresis
// counter (§4.2).
type MinimapPersistent struct {
	detectTask *Task[minimapDetectResult]
	runeTask   *Task[bool]
	runeMisses int

	portalsTask *Task[[]Rect]
	guildieTask *Task[bool]
	strangerTask *Task[bool]
	friendTask   *Task[bool]
	eliteTask    *Task[bool]

	notifiedRune  bool
	notifiedBoss  bool
	notifiedOther bool

	Thresholds Thresholds
}

func NewMinimapPersistent(t Thresholds) *MinimapPersistent {
	return &MinimapPersistent{Thresholds: t}
}

type minimapDetectResult struct {
	bbox Rect
	ok   bool
}

// UpdateMinimap is Minimap's Contextual.update (§4.2).
func UpdateMinimap(current Minimap, ctx *Context, state *MinimapPersistent) ControlFlow[Minimap] {
	if current.State == MinimapDetecting {
		return Next(updateMinimapDetecting(current, ctx.Detector, state))
	}
	return Next(updateMinimapIdle(current, ctx, state))
}

func updateMinimapDetecting(current Minimap, detector Detector, state *MinimapPersistent) Minimap {
	update := UpdateTaskRepeatable(minimapDetectRepeatDelay, &state.detectTask, func() minimapDetectResult {
		bbox, ok := detector.DetectMinimap(minimapWhitenessThreshold)
		return minimapDetectResult{bbox: bbox, ok: ok}
	})
	result, done := update.Done()
	if !done || !result.ok {
		return current
	}

	tl := sampleAnchor(detector, result.bbox, result.bbox.X, result.bbox.Y, 1, 1)
	br := sampleAnchor(detector, result.bbox, result.bbox.Right()-1, result.bbox.Bottom()-1, -1, -1)

	return Minimap{
		State:                  MinimapIdle,
		Bbox:                   result.bbox,
		TopLeftAnchor:          tl.point,
		TopLeftAnchorPixel:     tl.pixel,
		BottomRightAnchor:      br.point,
		BottomRightAnchorPixel: br.pixel,
	}
}

type anchorSample struct {
	point Point
	pixel Pixel
}

// sampleAnchor walks the diagonal from (startX,startY) in direction
// (dx,dy) until a pixel clears the whiteness threshold, persisting both
// the coordinate and its pixel value (§4.2).
func sampleAnchor(detector Detector, bound Rect, startX, startY, dx, dy int) anchorSample {
	x, y := startX, startY
	for {
		p := Point{X: x, Y: y}
		if pixel, ok := detector.AnchorPixel(p); ok {
			if pixel.Whiteness(minimapWhitenessThreshold) {
				return anchorSample{point: p, pixel: pixel}
			}
		}
		x += dx
		y += dy
		if x < bound.X || x >= bound.Right() || y < bound.Y || y >= bound.Bottom() {
			return anchorSample{point: Point{X: startX, Y: startY}}
		}
	}
}

func updateMinimapIdle(current Minimap, ctx *Context, state *MinimapPersistent) Minimap {
	detector := ctx.Detector
	tlPixel, tlOk := detector.AnchorPixel(current.TopLeftAnchor)
	brPixel, brOk := detector.AnchorPixel(current.BottomRightAnchor)

	tlMatch := tlOk && tlPixel.ToleranceMatch(current.TopLeftAnchorPixel, minimapAnchorTolerance)
	brMatch := brOk && brPixel.ToleranceMatch(current.BottomRightAnchorPixel, minimapAnchorTolerance)

	if !tlMatch && !brMatch {
		return Minimap{State: MinimapDetecting}
	}

	next := current
	next.PartiallyOverlapping = tlMatch != brMatch

	updateMinimapRune(&next, detector, state)
	updateMinimapPortals(&next, detector, state)
	updateMinimapOtherPlayers(&next, detector, state)
	updateMinimapEliteBoss(&next, detector, state)

	if next.Platforms == nil && current.Platforms != nil {
		next.Platforms = current.Platforms
		next.PlatformsBound = current.PlatformsBound
	}

	notifyOnce(&state.notifiedRune, next.Rune != nil, ctx.Halting)
	notifyOnce(&state.notifiedBoss, next.HasEliteBoss, ctx.Halting)
	notifyOnce(&state.notifiedOther, next.HasGuildie || next.HasStranger || next.HasFriend, ctx.Halting)

	return next
}

// notifyOnce tracks a latched bool so a notification fires exactly once
// per new appearance (§4.2 "schedule a notification exactly once per new
// rune/boss/other-player appearance when not halting"). The actual
// notification transport (tray/UI) is external; this only maintains the
// edge-trigger bookkeeping the core owns.
func notifyOnce(latched *bool, present, halting bool) {
	if halting {
		return
	}
	if present && !*latched {
		*latched = true
		return
	}
	if !present {
		*latched = false
	}
}

func updateMinimapRune(m *Minimap, detector Detector, state *MinimapPersistent) {
	update := UpdateTaskRepeatable(minimapSubTaskRepeatDelay, &state.runeTask, func() bool {
		_, ok := detector.DetectMinimapRune(m.Bbox)
		return ok
	})
	found, done := update.Done()
	if !done {
		return
	}
	if found {
		state.runeMisses = 0
		rect, ok := detector.DetectMinimapRune(m.Bbox)
		if ok {
			p := rect.Center()
			m.Rune = &p
		}
		return
	}
	state.runeMisses++
	if state.runeMisses >= minimapRuneFailHysteresis {
		m.Rune = nil
	}
}

func updateMinimapPortals(m *Minimap, detector Detector, state *MinimapPersistent) {
	update := UpdateTaskRepeatable(minimapSubTaskRepeatDelay, &state.portalsTask, func() []Rect {
		portals := detector.DetectMinimapPortals(m.Bbox)
		if len(portals) > minimapMaxPortals {
			portals = portals[:minimapMaxPortals]
		}
		return portals
	})
	if portals, done := update.Done(); done {
		m.Portals = portals
	}
}

func updateMinimapOtherPlayers(m *Minimap, detector Detector, state *MinimapPersistent) {
	if v, done := UpdateTaskRepeatable(minimapSubTaskRepeatDelay, &state.guildieTask, func() bool {
		return detector.DetectPlayerKind(m.Bbox, PlayerKindGuildie)
	}).Done(); done {
		m.HasGuildie = v
	}
	if v, done := UpdateTaskRepeatable(minimapSubTaskRepeatDelay, &state.strangerTask, func() bool {
		return detector.DetectPlayerKind(m.Bbox, PlayerKindStranger)
	}).Done(); done {
		m.HasStranger = v
	}
	if v, done := UpdateTaskRepeatable(minimapSubTaskRepeatDelay, &state.friendTask, func() bool {
		return detector.DetectPlayerKind(m.Bbox, PlayerKindFriend)
	}).Done(); done {
		m.HasFriend = v
	}
}

func updateMinimapEliteBoss(m *Minimap, detector Detector, state *MinimapPersistent) {
	if v, done := UpdateTaskRepeatable(minimapSubTaskRepeatDelay, &state.eliteTask, func() bool {
		return detector.DetectEliteBossBar()
	}).Done(); done {
		m.HasEliteBoss = v
	}
}

// RebuildPlatforms derives Platforms/PlatformsBound from raw platform
// segments, rebuilding the graph (§3 "rebuilt whenever minimap data is
// swapped"). Called by the request handler on create/update/delete
// minimap requests (§4.7).
func (m *Minimap) RebuildPlatforms(platforms []Platform) {
	m.Platforms = platforms
	if len(platforms) == 0 {
		m.PlatformsBound = Rect{}
		return
	}
	minX, minY := platforms[0].Xs.Start, platforms[0].Y
	maxX, maxY := platforms[0].Xs.End, platforms[0].Y
	for _, p := range platforms[1:] {
		if p.Xs.Start < minX {
			minX = p.Xs.Start
		}
		if p.Xs.End > maxX {
			maxX = p.Xs.End
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	m.PlatformsBound = Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
