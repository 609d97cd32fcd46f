// Package visiondetect implements the agent.Detector interface (§6.1)
// over a captured BGRA frame using gocv template/color-space operations,
// grounded on the teacher's stats.go (HSV status-bar scanning) and
// analyzer.go (color-cluster mob detection), plus an otiai10/gosseract OCR
// read of health-bar text (DetectPlayerHealthOCRFallback) that the
// health-bar queries do not call.
package visiondetect

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
	"github.com/otiai10/gosseract/v2"

	"maple-bot"
)

// Templates maps a template name (skill icons, rune arrows, minimap
// anchor crops) to its preloaded gocv.Mat, grounded on the teacher's
// train.go offline-detection workflow (load once, match many times).
type Templates struct {
	mu    sync.RWMutex
	byName map[string]gocv.Mat
}

func NewTemplates() *Templates {
	return &Templates{byName: make(map[string]gocv.Mat)}
}

// Load reads a template image from disk into the cache.
func (t *Templates) Load(name, path string) error {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		return errNotFound(path)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byName[name] = mat
	return nil
}

type errNotFound string

func (e errNotFound) Error() string { return "visiondetect: template not found: " + string(e) }

// Detector implements agent.Detector over one captured frame.
type Detector struct {
	frame     gocv.Mat
	gray      gocv.Mat
	grayReady bool
	templates *Templates
	ocrClient *gosseract.Client

	// barHSVRanges holds the HSV lower/upper bounds used for HP/MP/FP bar
	// segmentation, keyed by the same style as the teacher's stats.go
	// StatusBarKind/HSVRange tables.
	barHSVRanges map[string][2]gocv.Mat
}

// NewDetector binds a Detector to frame. gocv Mat conversion happens
// eagerly (BGRA->BGR) since almost every query needs it; the grayscale
// derivative is cached lazily on first use (§4.1 step 2).
func NewDetector(frame agent.Frame, templates *Templates, ocr *gosseract.Client) *Detector {
	img := gocv.NewMatWithSize(frame.Height, frame.Width, gocv.MatTypeCV8UC4)
	img.SetBytes(frame.Pixels)
	bgr := gocv.NewMat()
	gocv.CvtColor(img, &bgr, gocv.ColorBGRAToBGR)
	img.Close()
	return &Detector{frame: bgr, templates: templates, ocrClient: ocr}
}

func (d *Detector) Close() {
	d.frame.Close()
	if d.grayReady {
		d.gray.Close()
	}
}

func (d *Detector) grayscale() gocv.Mat {
	if !d.grayReady {
		d.gray = gocv.NewMat()
		gocv.CvtColor(d.frame, &d.gray, gocv.ColorBGRToGray)
		d.grayReady = true
	}
	return d.gray
}

func toRect(r image.Rectangle) agent.Rect {
	return agent.Rect{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

func toImageRect(r agent.Rect) image.Rectangle {
	return image.Rect(r.X, r.Y, r.Right(), r.Bottom())
}

// DetectMinimap locates the minimap border by scanning for a
// near-white-bordered rectangular region, mirroring the teacher's
// analyzer.go border-scan approach generalized from mob auras to the
// minimap frame.
func (d *Detector) DetectMinimap(borderThreshold int) (agent.Rect, bool) {
	region := scanWhiteBorderedRegion(d.frame, uint8(borderThreshold))
	if region.Empty() {
		return agent.Rect{}, false
	}
	return toRect(region), true
}

func (d *Detector) DetectPlayer(within agent.Rect) (agent.Rect, bool) {
	return matchTemplateIn(d, "player_marker", within, 0.6)
}

func (d *Detector) DetectMinimapRune(within agent.Rect) (agent.Rect, bool) {
	return matchTemplateIn(d, "rune_marker", within, 0.6)
}

func (d *Detector) DetectMinimapPortals(within agent.Rect) []agent.Rect {
	return matchTemplateAll(d, "portal_marker", within, 0.6, 16)
}

func (d *Detector) DetectPlayerInCashShop() bool {
	_, ok := matchTemplateIn(d, "cash_shop_banner", agent.Rect{W: d.frame.Cols(), H: d.frame.Rows()}, 0.7)
	return ok
}

func (d *Detector) DetectPlayerHealthBar() (agent.Rect, bool) {
	return matchTemplateIn(d, "health_bar_frame", agent.Rect{W: d.frame.Cols(), H: d.frame.Rows()}, 0.6)
}

// DetectPlayerCurrentMaxHealthBars segments the HSV-filled portion of the
// bar from its background, grounded on the teacher's stats.go
// HSV-mask + contour approach.
func (d *Detector) DetectPlayerCurrentMaxHealthBars(within agent.Rect) (agent.Rect, agent.Rect, bool) {
	roi := d.frame.Region(toImageRect(within))
	defer roi.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(roi, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	defer mask.Close()
	lower := gocv.NewScalar(35, 80, 80, 0)
	upper := gocv.NewScalar(85, 255, 255, 0)
	gocv.InRangeWithScalar(hsv, lower, upper, &mask)

	filled := barFillWidth(mask)
	cur := agent.Rect{X: within.X, Y: within.Y, W: filled, H: within.H}
	max := within
	return cur, max, filled > 0
}

func (d *Detector) DetectPlayerHealth(current, max agent.Rect) (uint32, uint32) {
	if max.W == 0 {
		return 0, 0
	}
	pct := float64(current.W) / float64(max.W)
	const assumedMax = 100000
	return uint32(pct * assumedMax), assumedMax
}

// DetectPlayerHealthOCRFallback reads the numeric HP text within the given
// region via gosseract, returning an error when no OCR client is
// configured. It is not part of agent.Detector and none of the health-bar
// queries above call it.
func (d *Detector) DetectPlayerHealthOCRFallback(within agent.Rect) (string, error) {
	if d.ocrClient == nil {
		return "", errNotFound("ocr client not configured")
	}
	roi := d.frame.Region(toImageRect(within))
	defer roi.Close()
	buf, err := gocv.IMEncode(".png", roi)
	if err != nil {
		return "", err
	}
	defer buf.Close()
	d.ocrClient.SetImageFromBytes(buf.GetBytes())
	return d.ocrClient.Text()
}

func (d *Detector) DetectPlayerIsDead() bool {
	_, ok := matchTemplateIn(d, "death_banner", agent.Rect{W: d.frame.Cols(), H: d.frame.Rows()}, 0.7)
	return ok
}

func (d *Detector) DetectPlayerRuneBuff() bool {
	return d.DetectPlayerBuff(0)
}

func (d *Detector) DetectPlayerBuff(kind agent.BuffKind) bool {
	name := buffTemplateName(kind)
	_, ok := matchTemplateIn(d, name, agent.Rect{W: d.frame.Cols(), H: d.frame.Rows()}, 0.65)
	return ok
}

func (d *Detector) DetectRuneArrows() ([4]agent.KeyKind, bool) {
	// ONNX-based arrow-glyph classification is out of core scope (§1);
	// this reference implementation only wires the detection surface.
	return [4]agent.KeyKind{}, false
}

func (d *Detector) DetectErdaShower() (agent.Rect, bool) {
	return matchTemplateIn(d, "erda_shower_icon", agent.Rect{W: d.frame.Cols(), H: d.frame.Rows()}, 0.6)
}

func (d *Detector) DetectEscSettings() bool {
	_, ok := matchTemplateIn(d, "esc_settings_panel", agent.Rect{W: d.frame.Cols(), H: d.frame.Rows()}, 0.6)
	return ok
}

func (d *Detector) DetectPlayerKind(within agent.Rect, kind agent.PlayerKind) bool {
	name := map[agent.PlayerKind]string{
		agent.PlayerKindGuildie:  "nametag_guildie",
		agent.PlayerKindStranger: "nametag_stranger",
		agent.PlayerKindFriend:   "nametag_friend",
	}[kind]
	_, ok := matchTemplateIn(d, name, within, 0.6)
	return ok
}

func (d *Detector) DetectEliteBossBar() bool {
	_, ok := matchTemplateIn(d, "elite_boss_bar", agent.Rect{W: d.frame.Cols(), H: d.frame.Rows()}, 0.6)
	return ok
}

// DetectMobs clusters mob-aura colored pixels within the search region,
// grounded directly on the teacher's analyzer.go IdentifyMobs/
// scanPixelsForColors/clusterPoints pipeline.
func (d *Detector) DetectMobs(within agent.Rect) []agent.Rect {
	roi := d.frame.Region(toImageRect(within))
	defer roi.Close()
	points := scanPixelsForMobColors(roi)
	clusters := clusterPoints(points, 12)
	rects := make([]agent.Rect, 0, len(clusters))
	for _, c := range clusters {
		rects = append(rects, agent.Rect{X: within.X + c.X - 10, Y: within.Y + c.Y - 10, W: 20, H: 20})
	}
	return rects
}

func (d *Detector) AnchorPixel(p agent.Point) (agent.Pixel, bool) {
	if p.X < 0 || p.Y < 0 || p.X >= d.frame.Cols() || p.Y >= d.frame.Rows() {
		return agent.Pixel{}, false
	}
	v := d.frame.GetVecbAt(p.Y, p.X)
	return agent.Pixel{B: v[0], G: v[1], R: v[2]}, true
}

// TemplateMatch reports a score of 1 whenever matchTemplateIn finds name
// within the region and 0 otherwise; it does not return the underlying
// correlation value.
func (d *Detector) TemplateMatch(name string, within agent.Rect) (float64, agent.Point, bool) {
	rect, ok := matchTemplateIn(d, name, within, 0)
	if !ok {
		return 0, agent.Point{}, false
	}
	return 1, rect.Center(), true
}

func buffTemplateName(kind agent.BuffKind) string {
	names := map[agent.BuffKind]string{
		agent.BuffRune: "buff_rune",
	}
	if n, ok := names[kind]; ok {
		return n
	}
	return "buff_unknown"
}
