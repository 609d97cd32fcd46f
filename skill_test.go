package agent

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func driveSkillUntilDone(current Skill, ctx *Context, state *SkillPersistent) Skill {
	for i := 0; i < 50; i++ {
		cf := UpdateSkill(current, ctx, state)
		current = cf.value
		time.Sleep(time.Millisecond)
	}
	return current
}

func TestSkillDetectingBelowFloorStaysDetecting(t *testing.T) {
	Convey("Given Detecting and a template score below the noise floor", t, func() {
		state := NewSkillPersistent(SkillErdaShower)
		ctx, det, _ := newTestContext()
		det.erdaFound = true
		det.templateScore = skillMatchFloor - 0.1
		det.templateOK = true

		Convey("It remains Detecting", func() {
			next := driveSkillUntilDone(Skill{State: SkillDetecting}, ctx, state)
			So(next.State, ShouldEqual, SkillDetecting)
		})
	})
}

func TestSkillDetectingBetweenFloorAndThresholdStaysCurrent(t *testing.T) {
	Convey("Given Detecting and a tentative score between floor and threshold", t, func() {
		state := NewSkillPersistent(SkillErdaShower)
		ctx, det, _ := newTestContext()
		det.erdaFound = true
		det.templateScore = (skillMatchFloor + skillMatchThreshold) / 2
		det.templateOK = true

		Convey("It does not commit to Idle yet", func() {
			next := driveSkillUntilDone(Skill{State: SkillDetecting}, ctx, state)
			So(next.State, ShouldEqual, SkillDetecting)
		})
	})
}

func TestSkillDetectingAboveThresholdCommitsToIdle(t *testing.T) {
	Convey("Given Detecting and a score clearing the commit threshold", t, func() {
		state := NewSkillPersistent(SkillErdaShower)
		ctx, det, _ := newTestContext()
		det.erdaFound = true
		det.templateScore = skillMatchThreshold + 0.1
		det.templateOK = true
		det.templateCentroid = Point{X: 12, Y: 34}
		det.anchorPixels[Point{X: 12, Y: 34}] = Pixel{R: 1, G: 2, B: 3}

		Convey("It transitions to Idle with a fresh anchor", func() {
			next := driveSkillUntilDone(Skill{State: SkillDetecting}, ctx, state)
			So(next.State, ShouldEqual, SkillIdle)
			So(next.AnchorPoint, ShouldResemble, Point{X: 12, Y: 34})
			So(next.AnchorPixel, ShouldResemble, Pixel{R: 1, G: 2, B: 3})
		})
	})
}

func TestSkillIdleAnchorMatchStaysIdle(t *testing.T) {
	Convey("Given Idle and the anchor pixel still matches within tolerance", t, func() {
		ctx, det, _ := newTestContext()
		anchor := Point{X: 5, Y: 5}
		det.anchorPixels[anchor] = Pixel{R: 100, G: 100, B: 100}
		current := Skill{State: SkillIdle, AnchorPoint: anchor, AnchorPixel: Pixel{R: 100, G: 100, B: 100}}

		Convey("It remains Idle", func() {
			cf := UpdateSkill(current, ctx, &SkillPersistent{Kind: SkillErdaShower})
			So(cf.value.State, ShouldEqual, SkillIdle)
		})
	})
}

func TestSkillIdleAnchorMismatchGoesToCooldown(t *testing.T) {
	Convey("Given Idle and the anchor pixel has drifted past tolerance", t, func() {
		ctx, det, _ := newTestContext()
		anchor := Point{X: 5, Y: 5}
		det.anchorPixels[anchor] = Pixel{R: 255, G: 255, B: 255}
		current := Skill{State: SkillIdle, AnchorPoint: anchor, AnchorPixel: Pixel{R: 0, G: 0, B: 0}}

		Convey("It transitions to Cooldown", func() {
			cf := UpdateSkill(current, ctx, &SkillPersistent{Kind: SkillErdaShower})
			So(cf.value.State, ShouldEqual, SkillCooldown)
		})
	})

	Convey("Given Idle and the anchor point no longer has a pixel sample", t, func() {
		ctx, _, _ := newTestContext()
		current := Skill{State: SkillIdle, AnchorPoint: Point{X: 9, Y: 9}}

		Convey("It transitions to Cooldown", func() {
			cf := UpdateSkill(current, ctx, &SkillPersistent{Kind: SkillErdaShower})
			So(cf.value.State, ShouldEqual, SkillCooldown)
		})
	})
}

func TestSkillCooldownRedetectsLikeDetecting(t *testing.T) {
	Convey("Given Cooldown and a template score clearing threshold", t, func() {
		state := NewSkillPersistent(SkillErdaShower)
		ctx, det, _ := newTestContext()
		det.erdaFound = true
		det.templateScore = skillMatchThreshold + 0.1
		det.templateOK = true
		det.templateCentroid = Point{X: 1, Y: 1}
		det.anchorPixels[Point{X: 1, Y: 1}] = Pixel{R: 7, G: 8, B: 9}

		Convey("It transitions back to Idle", func() {
			next := driveSkillUntilDone(Skill{State: SkillCooldown}, ctx, state)
			So(next.State, ShouldEqual, SkillIdle)
		})
	})
}
