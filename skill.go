package agent

import "time"

// SkillKind enumerates skills with dedicated cooldown tracking. The
// original_source carries a single variant (ErdaShower); the slot is kept
// open for additional skills sharing the same Detecting/Idle/Cooldown FSM.
type SkillKind int

const (
	SkillErdaShower SkillKind = iota

	SkillKindCount
)

const (
	skillDetectRepeatDelay = 1000 * time.Millisecond
	// skillMatchFloor is the 0.52 floor below which a template match is
	// considered noise rather than a tentative hit (§4.3).
	skillMatchFloor = 0.52
	// skillMatchThreshold is the score a tentative hit must clear to
	// commit to Idle with a fresh anchor.
	skillMatchThreshold = 0.75
	skillAnchorTolerance = 45
)

// SkillState enumerates the per-skill FSM states (§4.3).
type SkillState int

const (
	SkillDetecting SkillState = iota
	SkillIdle
	SkillCooldown
)

// Skill is the current-tick value for one skill slot in Context.Skills.
type Skill struct {
	State       SkillState
	AnchorPoint Point
	AnchorPixel Pixel
}

// SkillPersistent holds the template-match detection task for one skill
// slot.
type SkillPersistent struct {
	Kind SkillKind
	task *Task[skillMatchResult]
}

type skillMatchResult struct {
	score    float64
	centroid Point
	ok       bool
}

func NewSkillPersistent(kind SkillKind) *SkillPersistent {
	return &SkillPersistent{Kind: kind}
}

func skillTemplateName(kind SkillKind) string {
	switch kind {
	case SkillErdaShower:
		return "erda_shower"
	default:
		return "unknown_skill"
	}
}

// UpdateSkill is Skill's Contextual.update (§4.3).
func UpdateSkill(current Skill, ctx *Context, state *SkillPersistent) ControlFlow[Skill] {
	switch current.State {
	case SkillDetecting, SkillCooldown:
		return Next(updateSkillDetection(current, ctx.Detector, state))
	default: // SkillIdle
		return Next(updateSkillIdle(current, ctx.Detector))
	}
}

func updateSkillDetection(current Skill, detector Detector, state *SkillPersistent) Skill {
	kind := state.Kind
	update := UpdateTaskRepeatable(skillDetectRepeatDelay, &state.task, func() skillMatchResult {
		rect, found := detector.DetectErdaShower()
		if !found {
			return skillMatchResult{}
		}
		score, centroid, ok := detector.TemplateMatch(skillTemplateName(kind), rect)
		return skillMatchResult{score: score, centroid: centroid, ok: ok}
	})
	result, done := update.Done()
	if !done {
		return current
	}
	if !result.ok || result.score < skillMatchFloor {
		return Skill{State: SkillDetecting}
	}
	if result.score < skillMatchThreshold {
		return current
	}
	pixel, _ := detector.AnchorPixel(result.centroid)
	return Skill{State: SkillIdle, AnchorPoint: result.centroid, AnchorPixel: pixel}
}

func updateSkillIdle(current Skill, detector Detector) Skill {
	pixel, ok := detector.AnchorPixel(current.AnchorPoint)
	if !ok || !pixel.ToleranceMatch(current.AnchorPixel, skillAnchorTolerance) {
		return Skill{State: SkillCooldown}
	}
	return current
}
