package agent

// Point is an integer 2D coordinate. Player and action positions use the
// bottom-left convention described in §4.5.3: x is the bbox center, y is
// minimap height minus the detector's bottom-right y.
type Point struct {
	X int
	Y int
}

// Sub returns the signed distance p-other, i.e. (dx, dy) = p - other.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Rect is a top-left, width/height rectangle as returned by the raw
// detector. Player-facing code converts to bottom-left Points before
// storing them in persistent state.
type Rect struct {
	X int
	Y int
	W int
	H int
}

func (r Rect) Right() int  { return r.X + r.W }
func (r Rect) Bottom() int { return r.Y + r.H }

func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

func (r Rect) BottomCenter() Point {
	return Point{X: r.X + r.W/2, Y: r.Bottom()}
}

// Contains reports whether p lies within r, inclusive of the top-left
// corner and exclusive of the bottom-right one.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Grow returns r expanded by n pixels on every side.
func (r Rect) Grow(n int) Rect {
	return Rect{X: r.X - n, Y: r.Y - n, W: r.W + 2*n, H: r.H + 2*n}
}

// Range is a half-open integer interval [Start, End).
type Range struct {
	Start int
	End   int
}

func (r Range) Contains(v int) bool {
	return v >= r.Start && v < r.End
}

// Overlaps reports whether r and other share any integer point.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Width is End-Start.
func (r Range) Width() int { return r.End - r.Start }
