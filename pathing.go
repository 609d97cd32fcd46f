package agent

import "container/heap"

// Platform is a horizontal stand-on-able segment [Xs.Start, Xs.End) at a
// fixed y, in bottom-left coordinates (§3).
type Platform struct {
	Xs Range
	Y  int
}

// Thresholds bundles the three movement-capability thresholds platform
// reachability is evaluated under (§3).
type Thresholds struct {
	DoubleJump    int
	Jump          int
	GrapplingMax  int
}

// PlatformGraph is the set of platforms plus the reachability edges
// derived from Thresholds (§3). Rebuilt whenever minimap data is swapped.
type PlatformGraph struct {
	Platforms []Platform
	edges     map[int][]int // platform index -> reachable platform indices
}

// BuildPlatformGraph derives reachability edges between every pair of
// platforms under t. Two platforms are reachable if:
//   - their xs overlap and the vertical gap is <= Jump (upward) or
//     <= GrapplingMax (grapple up); or
//   - their xs are disjoint with horizontal gap <= DoubleJump and
//     vertical delta <= Jump.
func BuildPlatformGraph(platforms []Platform, t Thresholds) *PlatformGraph {
	g := &PlatformGraph{Platforms: platforms, edges: make(map[int][]int, len(platforms))}
	for i, a := range platforms {
		for j, b := range platforms {
			if i == j {
				continue
			}
			if platformsReachable(a, b, t) {
				g.edges[i] = append(g.edges[i], j)
			}
		}
	}
	return g
}

func platformsReachable(a, b Platform, t Thresholds) bool {
	dy := b.Y - a.Y
	if a.Xs.Overlaps(b.Xs) {
		if dy > 0 && dy <= t.Jump {
			return true
		}
		if dy > 0 && dy <= t.GrapplingMax {
			return true
		}
		return false
	}
	gap := horizontalGap(a.Xs, b.Xs)
	return gap <= t.DoubleJump && absInt(dy) <= t.Jump
}

func horizontalGap(a, b Range) int {
	if a.End <= b.Start {
		return b.Start - a.End
	}
	if b.End <= a.Start {
		return a.Start - b.End
	}
	return 0
}

// platformIndexFor returns the index of the platform containing p.X within
// [Xs.Start,Xs.End) and whose Y equals p.Y, or -1.
func platformIndexFor(platforms []Platform, p Point) int {
	for i, pl := range platforms {
		if pl.Y == p.Y && pl.Xs.Contains(p.X) {
			return i
		}
	}
	return -1
}

type pathNode struct {
	index, dist int
}
type pathHeap []pathNode

func (h pathHeap) Len() int            { return len(h) }
func (h pathHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h pathHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *pathHeap) Push(x interface{}) { *h = append(*h, x.(pathNode)) }
func (h *pathHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// FindPointsWith runs a Dijkstra-like search over g from a to b and
// returns the ordered sequence of platform-boundary points (legs) to
// traverse, or ok=false if b is unreachable under g's thresholds (§3, §8).
func FindPointsWith(g *PlatformGraph, a, b Point) (legs []Point, ok bool) {
	startIdx := platformIndexFor(g.Platforms, a)
	endIdx := platformIndexFor(g.Platforms, b)
	if startIdx < 0 || endIdx < 0 {
		return nil, false
	}
	if startIdx == endIdx {
		return []Point{b}, true
	}

	const inf = 1 << 30
	dist := make([]int, len(g.Platforms))
	prev := make([]int, len(g.Platforms))
	for i := range dist {
		dist[i] = inf
		prev[i] = -1
	}
	dist[startIdx] = 0

	h := &pathHeap{{index: startIdx, dist: 0}}
	heap.Init(h)
	visited := make([]bool, len(g.Platforms))

	for h.Len() > 0 {
		cur := heap.Pop(h).(pathNode)
		if visited[cur.index] {
			continue
		}
		visited[cur.index] = true
		if cur.index == endIdx {
			break
		}
		for _, next := range g.edges[cur.index] {
			cost := cur.dist + 1
			if cost < dist[next] {
				dist[next] = cost
				prev[next] = cur.index
				heap.Push(h, pathNode{index: next, dist: cost})
			}
		}
	}

	if dist[endIdx] == inf {
		return nil, false
	}

	var indices []int
	for i := endIdx; i != -1; i = prev[i] {
		indices = append([]int{i}, indices...)
	}
	for _, idx := range indices[1:] {
		pl := g.Platforms[idx]
		legs = append(legs, Point{X: clampToRange(a.X, pl.Xs), Y: pl.Y})
	}
	legs = append(legs, b)
	return legs, true
}

func clampToRange(x int, r Range) int {
	if x < r.Start {
		return r.Start
	}
	if x >= r.End {
		return r.End - 1
	}
	return x
}

// playerPathingThresholds mirrors the movement-capability constants
// dispatchNextAction's movement sub-states already enforce (§4.5.4), so
// the platform graph agrees with what the Moving sub-states can actually
// traverse.
var playerPathingThresholds = Thresholds{
	DoubleJump:   thresholdDoubleJump,
	Jump:         thresholdJump,
	GrapplingMax: thresholdGrapplingMax,
}

// buildMovingTo routes pos->dest over platforms via BuildPlatformGraph/
// FindPointsWith (§3, §8) and loads the resulting legs into a Moving
// payload's Intermediates, with the final leg carrying exact. Falls back
// to a direct Moving when platforms are empty or no route resolves (pos
// or dest off any known platform, or unreachable under the thresholds).
func buildMovingTo(platforms []Platform, pos, dest Point, exact bool) Moving {
	if len(platforms) == 0 {
		return Moving{Pos: pos, Dest: dest, Exact: exact}
	}
	graph := BuildPlatformGraph(platforms, playerPathingThresholds)
	legs, ok := FindPointsWith(graph, pos, dest)
	if !ok || len(legs) == 0 {
		return Moving{Pos: pos, Dest: dest, Exact: exact}
	}

	m := Moving{Pos: pos, Dest: legs[0], Exact: exact && len(legs) == 1}
	for i := 1; i < len(legs); i++ {
		m.Intermediates = append(m.Intermediates, Intermediate{
			Point: legs[i],
			Exact: exact && i == len(legs)-1,
		})
	}
	return m
}
