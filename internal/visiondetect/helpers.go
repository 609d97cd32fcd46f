package visiondetect

import (
	"image"

	"gocv.io/x/gocv"

	"maple-bot"
)

// scanWhiteBorderedRegion finds the largest rectangular contour whose
// border pixels all clear threshold, the minimap-frame heuristic named in
// §4.2 ("whiteness >= 160 on all channels").
func scanWhiteBorderedRegion(frame gocv.Mat, threshold uint8) image.Rectangle {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(gray, &mask, float32(threshold), 255, gocv.ThresholdBinary)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var best image.Rectangle
	bestArea := 0
	for i := 0; i < contours.Size(); i++ {
		r := gocv.BoundingRect(contours.At(i))
		area := r.Dx() * r.Dy()
		if area > bestArea {
			bestArea = area
			best = r
		}
	}
	return best
}

// matchTemplateIn runs gocv.MatchTemplate for name within the region and
// returns the best match location as a Rect, or ok=false below minScore.
func matchTemplateIn(d *Detector, name string, within agent.Rect, minScore float64) (agent.Rect, bool) {
	if d.templates == nil {
		return agent.Rect{}, false
	}
	d.templates.mu.RLock()
	tmpl, ok := d.templates.byName[name]
	d.templates.mu.RUnlock()
	if !ok || tmpl.Empty() {
		return agent.Rect{}, false
	}

	roi := d.frame.Region(toImageRect(within))
	defer roi.Close()
	if roi.Cols() < tmpl.Cols() || roi.Rows() < tmpl.Rows() {
		return agent.Rect{}, false
	}

	result := gocv.NewMat()
	defer result.Close()
	gocv.MatchTemplate(roi, tmpl, &result, gocv.TmCcoeffNormed, gocv.NewMat())

	_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)
	if float64(maxVal) < minScore {
		return agent.Rect{}, false
	}
	return agent.Rect{
		X: within.X + maxLoc.X,
		Y: within.Y + maxLoc.Y,
		W: tmpl.Cols(),
		H: tmpl.Rows(),
	}, true
}

// matchTemplateAll returns up to limit non-overlapping matches above
// minScore, used for portal detection (≤16, §6.1).
func matchTemplateAll(d *Detector, name string, within agent.Rect, minScore float64, limit int) []agent.Rect {
	var out []agent.Rect
	remaining := within
	for len(out) < limit {
		r, ok := matchTemplateIn(d, name, remaining, minScore)
		if !ok {
			break
		}
		out = append(out, r)
		remaining.X = r.Right()
		remaining.W = within.Right() - remaining.X
		if remaining.W <= 0 {
			break
		}
	}
	return out
}

// barFillWidth counts the left-to-right run of non-zero mask columns,
// i.e. the filled portion of an HSV-segmented status bar.
func barFillWidth(mask gocv.Mat) int {
	cols := mask.Cols()
	rows := mask.Rows()
	if rows == 0 {
		return 0
	}
	width := 0
	for x := 0; x < cols; x++ {
		filled := false
		for y := 0; y < rows; y++ {
			if mask.GetUCharAt(y, x) > 0 {
				filled = true
				break
			}
		}
		if !filled {
			break
		}
		width++
	}
	return width
}

// mobColorRanges are the BGR mob-aura colors scanned for, grounded on the
// teacher's data.go MobType/Color table.
var mobColorRanges = []agent.Pixel{
	{B: 40, G: 40, R: 220},  // red aura
	{B: 220, G: 40, R: 40},  // blue aura
	{B: 40, G: 220, R: 220}, // yellow aura
}

const mobColorTolerance = 30

// scanPixelsForMobColors mirrors the teacher's analyzer.go
// scanPixelsForColors: a dense per-pixel scan matching against a known
// color table with tolerance.
func scanPixelsForMobColors(roi gocv.Mat) []image.Point {
	var points []image.Point
	rows, cols := roi.Rows(), roi.Cols()
	for y := 0; y < rows; y += 2 {
		for x := 0; x < cols; x += 2 {
			v := roi.GetVecbAt(y, x)
			px := agent.Pixel{B: v[0], G: v[1], R: v[2]}
			for _, target := range mobColorRanges {
				if px.ToleranceMatch(target, mobColorTolerance) {
					points = append(points, image.Pt(x, y))
					break
				}
			}
		}
	}
	return points
}

// clusterPoints is the teacher's ClusterByDistance two-pass X-then-Y
// clustering (data.go PointCloud), reduced here to cluster centroids.
func clusterPoints(points []image.Point, maxDist int) []image.Point {
	if len(points) == 0 {
		return nil
	}
	used := make([]bool, len(points))
	var centroids []image.Point
	for i, p := range points {
		if used[i] {
			continue
		}
		sumX, sumY, n := p.X, p.Y, 1
		used[i] = true
		for j := i + 1; j < len(points); j++ {
			if used[j] {
				continue
			}
			q := points[j]
			if abs(p.X-q.X) <= maxDist && abs(p.Y-q.Y) <= maxDist {
				sumX += q.X
				sumY += q.Y
				n++
				used[j] = true
			}
		}
		centroids = append(centroids, image.Pt(sumX/n, sumY/n))
	}
	return centroids
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
