package agent

// KeyKind enumerates the keys the Detector can report for rune arrows and
// the KeySender can inject. Only the subset referenced by the core FSMs is
// named; a concrete backend may support more.
type KeyKind int

const (
	KeyNone KeyKind = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyJump
	KeyInteract
	KeyCashShop
	KeyEsc
	KeyEnter
	KeyYesNo
	KeyTeleport
	KeyUpJump
	KeyGrapple
)

// PlayerKind distinguishes the three other-player presence detections the
// Minimap FSM tracks (§3, §6).
type PlayerKind int

const (
	PlayerKindGuildie PlayerKind = iota
	PlayerKindStranger
	PlayerKindFriend
)

// Detector is the opaque set of named queries over one captured frame
// (§6.1). The core treats every method as a pure, side-effect-free read;
// implementations (internal/visiondetect) own template matching, ONNX
// inference and OCR.
type Detector interface {
	DetectMinimap(borderThreshold int) (Rect, bool)
	DetectPlayer(within Rect) (Rect, bool)
	DetectMinimapRune(within Rect) (Rect, bool)
	DetectMinimapPortals(within Rect) []Rect
	DetectPlayerInCashShop() bool
	DetectPlayerHealthBar() (Rect, bool)
	DetectPlayerCurrentMaxHealthBars(within Rect) (Rect, Rect, bool)
	DetectPlayerHealth(current, max Rect) (uint32, uint32)
	DetectPlayerIsDead() bool
	DetectPlayerRuneBuff() bool
	DetectPlayerBuff(kind BuffKind) bool
	DetectRuneArrows() ([4]KeyKind, bool)
	DetectErdaShower() (Rect, bool)
	DetectEscSettings() bool
	DetectPlayerKind(within Rect, kind PlayerKind) bool
	DetectEliteBossBar() bool
	DetectMobs(within Rect) []Rect

	// AnchorPixel samples the BGR pixel at p in the current frame. Used by
	// Minimap/Skill Idle comparisons (§4.2, §4.3).
	AnchorPixel(p Point) (Pixel, bool)

	// TemplateMatch returns the best match score in [0,1] for name within
	// the search region (skill icons, rune detection fallback, …).
	TemplateMatch(name string, within Rect) (score float64, centroid Point, ok bool)
}

// Pixel is a BGR sample, matching the detector's native channel order.
type Pixel struct {
	B, G, R uint8
}

// Whiteness reports whether every channel is at least threshold, the
// minimap anchor-pixel test from §4.2.
func (p Pixel) Whiteness(threshold uint8) bool {
	return p.B >= threshold && p.G >= threshold && p.R >= threshold
}

// ToleranceMatch reports whether the average per-channel absolute
// difference between p and other is at most tolerance (§4.2 anchor
// comparison, §4.3 skill anchor match; ANCHOR_ACCEPTABLE_ERROR_RANGE=45).
func (p Pixel) ToleranceMatch(other Pixel, tolerance int) bool {
	db := absInt(int(p.B) - int(other.B))
	dg := absInt(int(p.G) - int(other.G))
	dr := absInt(int(p.R) - int(other.R))
	avg := (db + dg + dr) / 3
	return avg <= tolerance
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
