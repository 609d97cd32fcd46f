package agent

// fakeDetector is a hand-written Detector fake for FSM tests (§8): no
// gocv/robotgo-backed integration test runs the real toolchain, matching
// SPEC_FULL §2's test-tooling section.
type fakeDetector struct {
	playerRect  Rect
	playerFound bool

	minimapRect Rect
	minimapFound bool

	anchorPixels map[Point]Pixel

	templateScore    float64
	templateCentroid Point
	templateOK       bool

	mobs []Rect

	runeArrows   [4]KeyKind
	runeArrowsOK bool

	runeBuff   bool
	inCashShop bool
	isDead     bool

	sawBuff bool

	erdaRect  Rect
	erdaFound bool
}

func newFakeDetector() *fakeDetector {
	return &fakeDetector{anchorPixels: make(map[Point]Pixel)}
}

func (f *fakeDetector) DetectMinimap(borderThreshold int) (Rect, bool) { return f.minimapRect, f.minimapFound }
func (f *fakeDetector) DetectPlayer(within Rect) (Rect, bool)          { return f.playerRect, f.playerFound }
func (f *fakeDetector) DetectMinimapRune(within Rect) (Rect, bool)     { return Rect{}, false }
func (f *fakeDetector) DetectMinimapPortals(within Rect) []Rect        { return nil }
func (f *fakeDetector) DetectPlayerInCashShop() bool                   { return f.inCashShop }
func (f *fakeDetector) DetectPlayerHealthBar() (Rect, bool)            { return Rect{}, false }
func (f *fakeDetector) DetectPlayerCurrentMaxHealthBars(within Rect) (Rect, Rect, bool) {
	return Rect{}, Rect{}, false
}
func (f *fakeDetector) DetectPlayerHealth(current, max Rect) (uint32, uint32) { return 0, 0 }
func (f *fakeDetector) DetectPlayerIsDead() bool                              { return f.isDead }
func (f *fakeDetector) DetectPlayerRuneBuff() bool                            { return f.runeBuff }
func (f *fakeDetector) DetectPlayerBuff(kind BuffKind) bool                   { return f.sawBuff }
func (f *fakeDetector) DetectRuneArrows() ([4]KeyKind, bool)                  { return f.runeArrows, f.runeArrowsOK }
func (f *fakeDetector) DetectErdaShower() (Rect, bool)                        { return f.erdaRect, f.erdaFound }
func (f *fakeDetector) DetectEscSettings() bool                               { return false }
func (f *fakeDetector) DetectPlayerKind(within Rect, kind PlayerKind) bool    { return false }
func (f *fakeDetector) DetectEliteBossBar() bool                             { return false }
func (f *fakeDetector) DetectMobs(within Rect) []Rect                        { return f.mobs }

func (f *fakeDetector) AnchorPixel(p Point) (Pixel, bool) {
	px, ok := f.anchorPixels[p]
	return px, ok
}

func (f *fakeDetector) TemplateMatch(name string, within Rect) (float64, Point, bool) {
	return f.templateScore, f.templateCentroid, f.templateOK
}

// fakeKeySender records every call for assertion; Send/SendUp/SendDown
// never error.
type fakeKeySender struct {
	sent     []KeyKind
	down     []KeyKind
	up       []KeyKind
	clicked  int
}

func (f *fakeKeySender) Send(k KeyKind) error     { f.sent = append(f.sent, k); return nil }
func (f *fakeKeySender) SendUp(k KeyKind) error   { f.up = append(f.up, k); return nil }
func (f *fakeKeySender) SendDown(k KeyKind) error { f.down = append(f.down, k); return nil }
func (f *fakeKeySender) SendClickToFocus() error  { f.clicked++; return nil }

func newTestContext() (*Context, *fakeDetector, *fakeKeySender) {
	det := newFakeDetector()
	keys := &fakeKeySender{}
	ctx := &Context{Detector: det, Keys: keys}
	return ctx, det, keys
}
