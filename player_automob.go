package agent

import "github.com/brentp/intintmap"

// ignoreRange is one entry of auto_mob_ignore_xs_map[y]: a learned bad
// x-range plus the abort count that solidifies it (§3, §4.5.12).
type ignoreRange struct {
	Xs    Range
	Count int
}

// PlayerAutoMobState holds the reachable-y and ignore-x bookkeeping
// (§3, §4.5.12). The reachable-y map is backed by intintmap (a scalar
// int64->int64 count per y, a hot lookup on every positional tick while
// an auto-mob target is active); the ignore-x table stays a plain Go map
// since its value is a slice of ranges, not a scalar.
type PlayerAutoMobState struct {
	reachableY     *intintmap.Map
	ignoreXs       map[int][]ignoreRange
	ReachableY     *int
}

func newPlayerAutoMobState() PlayerAutoMobState {
	return PlayerAutoMobState{
		reachableY: intintmap.New(64, 0.6),
		ignoreXs:   make(map[int][]ignoreRange),
	}
}

// SolidifyPlatformYs populates the reachable-y map from platform y's
// (solidified, count=solidifiedReachableYCount) and the current player y
// (unsolidified, count=solidifiedReachableYCount-1), per §4.5.12.
func (s *PlayerAutoMobState) SolidifyPlatformYs(platforms []Platform, playerY int) {
	for _, p := range platforms {
		s.reachableY.Put(int64(p.Y), int64(solidifiedReachableYCount))
	}
	if v, ok := s.reachableY.Get(int64(playerY)); !ok || v < solidifiedReachableYCount-1 {
		s.reachableY.Put(int64(playerY), int64(solidifiedReachableYCount-1))
	}
}

// ChooseReachableY picks the closest key y to targetY within a y distance
// of 10;
// if none qualifies, returns targetY itself unmodified (§4.5.12).
func (s *PlayerAutoMobState) ChooseReachableY(targetY int) int {
	best := targetY
	bestDist := 11
	for _, k := range s.reachableY.Keys() {
		y := int(k)
		d := abs(y - targetY)
		if d <= 10 && d < bestDist {
			bestDist = d
			best = y
		}
	}
	return best
}

// reconcileAutoMobReachableY compares the chosen auto-mob y to the
// player's actual y after an action completes (§4.5.12): on mismatch the
// chosen-y count is decremented (removed at 0) and the actual-y count is
// incremented (capped at solidifiedReachableYCount).
func reconcileAutoMobReachableY(state *PlayerPersistent) {
	if state.AutoMob.ReachableY == nil || state.LastKnownPos == nil {
		return
	}
	chosen := *state.AutoMob.ReachableY
	actual := state.LastKnownPos.Y
	if chosen == actual {
		state.AutoMob.ReachableY = nil
		return
	}
	m := state.AutoMob.reachableY
	if v, ok := m.Get(int64(chosen)); ok {
		if v-1 <= 0 {
			m.Remove(int64(chosen))
		} else {
			m.Put(int64(chosen), v-1)
		}
	}
	if v, ok := m.Get(int64(actual)); ok {
		if v < solidifiedReachableYCount {
			m.Put(int64(actual), v+1)
		}
	} else {
		m.Put(int64(actual), 1)
	}
	state.AutoMob.ReachableY = nil
}

// recordIgnoreRange records the aborted mob position's x-range into
// auto_mob_ignore_xs_map[y] (§4.5.6): width 7, centered on x, count+1 for
// an existing overlapping range or a new entry with count=1, then merges
// adjacent ranges per mergeIgnoreRanges.
func recordIgnoreRange(state *PlayerPersistent, pos Point) {
	const width = 7
	half := width / 2
	candidate := Range{Start: pos.X - half, End: pos.X - half + width}

	ranges := state.AutoMob.ignoreXs[pos.Y]
	merged := false
	for i, r := range ranges {
		if r.Xs.Overlaps(candidate) {
			ranges[i].Count++
			merged = true
			break
		}
	}
	if !merged {
		ranges = append(ranges, ignoreRange{Xs: candidate, Count: 1})
	}
	state.AutoMob.ignoreXs[pos.Y] = mergeIgnoreRanges(ranges)
}

// mergeIgnoreRanges implements open question #3's resolution (§9): merge
// two adjacent/overlapping ranges whenever either side's count is already
// solidified (>= solidifiedIgnoreXCount), keeping the higher count and the
// union of both spans. Kept behind this single function so a future
// correction has one call site to change.
func mergeIgnoreRanges(ranges []ignoreRange) []ignoreRange {
	changed := true
	for changed {
		changed = false
		for i := 0; i < len(ranges); i++ {
			for j := i + 1; j < len(ranges); j++ {
				a, b := ranges[i], ranges[j]
				if !a.Xs.Overlaps(b.Xs) && horizontalGap(a.Xs, b.Xs) > 0 {
					continue
				}
				if a.Count < solidifiedIgnoreXCount && b.Count < solidifiedIgnoreXCount {
					continue
				}
				merged := ignoreRange{
					Xs:    unionRange(a.Xs, b.Xs),
					Count: maxInt(a.Count, b.Count),
				}
				ranges[i] = merged
				ranges = append(ranges[:j], ranges[j+1:]...)
				changed = true
				break
			}
			if changed {
				break
			}
		}
	}
	return ranges
}

func unionRange(a, b Range) Range {
	start := a.Start
	if b.Start < start {
		start = b.Start
	}
	end := a.End
	if b.End > end {
		end = b.End
	}
	return Range{Start: start, End: end}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// playerAutoMobTargetIgnored rejects an auto-mob target whose (y,x) falls
// in a range whose count >= solidifiedIgnoreXCount (§4.5.6, §8).
func playerAutoMobTargetIgnored(state *PlayerPersistent, pos Point) bool {
	for _, r := range state.AutoMob.ignoreXs[pos.Y] {
		if r.Count >= solidifiedIgnoreXCount && r.Xs.Contains(pos.X) {
			return true
		}
	}
	return false
}
