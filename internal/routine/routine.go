// Package routine loads user-authored `.toml` routine files into the flat
// []agent.PlayerAction list the Rotator builds its normal-action cycle
// from (SPEC_FULL §4.8). Grounded on dm-vev-adamant's whitelist.go
// TOML-load-with-typed-struct shape, using pelletier/go-toml.
package routine

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"

	agent "maple-bot"
)

// File is the on-disk shape of a routine script: an ordered list of
// fixed move/key steps plus an optional auto-mob bound, distinct from the
// opaque JSON Configuration/Minimap persistence blobs (§6.5) — a routine
// is a portable, hand-editable script a player authors and shares.
type File struct {
	Name  string `toml:"name"`
	Class string `toml:"class"`
	Steps []Step `toml:"step"`

	AutoMob *AutoMobBound `toml:"auto_mob"`
}

// Step is one normal-action entry: exactly one of Move or Key must be set.
type Step struct {
	Move *MoveStep `toml:"move"`
	Key  *KeyStep  `toml:"key"`
}

type MoveStep struct {
	X     int  `toml:"x"`
	Y     int  `toml:"y"`
	Exact bool `toml:"exact"`
}

type KeyStep struct {
	Key       string `toml:"key"`
	Count     int    `toml:"count"`
	Direction string `toml:"direction"`
	With      string `toml:"with"`

	LinkKey  string `toml:"link_key"`
	LinkMode string `toml:"link_mode"`

	WaitBeforeUseTicks uint32 `toml:"wait_before_ticks"`
	WaitAfterUseTicks  uint32 `toml:"wait_after_ticks"`
}

// AutoMobBound is the rectangular search bound RotationAutoMobbing asks
// the Detector within (§4.6).
type AutoMobBound struct {
	X int `toml:"x"`
	Y int `toml:"y"`
	W int `toml:"w"`
	H int `toml:"h"`

	Key        string `toml:"key"`
	WaitBefore uint32 `toml:"wait_before_ticks"`
	WaitAfter  uint32 `toml:"wait_after_ticks"`
}

// Load parses the routine file at path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("routine: parse %s: %w", path, err)
	}
	return f, nil
}

// Save writes f back to path, matching the teacher's persistence style
// (whole-file rewrite, no partial update).
func Save(path string, f File) error {
	data, err := toml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Actions converts a loaded File into the flat []agent.PlayerAction list
// the Rotator cycles over (§4.6), and the AutoMobbingParams if the
// routine defines an auto-mob bound.
func Actions(f File) ([]agent.PlayerAction, *agent.AutoMobbingParams) {
	actions := make([]agent.PlayerAction, 0, len(f.Steps))
	for _, step := range f.Steps {
		switch {
		case step.Move != nil:
			actions = append(actions, agent.PlayerAction{
				Kind: agent.ActionMove,
				Move: agent.MoveAction{
					Dest:  agent.Point{X: step.Move.X, Y: step.Move.Y},
					Exact: step.Move.Exact,
				},
			})
		case step.Key != nil:
			actions = append(actions, agent.PlayerAction{
				Kind: agent.ActionKey,
				Key: agent.KeyAction{
					Key:                keyKind(step.Key.Key),
					Count:              maxOne(step.Key.Count),
					Direction:          direction(step.Key.Direction),
					With:               with(step.Key.With),
					LinkKey:            keyKind(step.Key.LinkKey),
					LinkMode:           linkMode(step.Key.LinkMode),
					WaitBeforeUseTicks: step.Key.WaitBeforeUseTicks,
					WaitAfterUseTicks:  step.Key.WaitAfterUseTicks,
				},
			})
		}
	}

	var bound *agent.AutoMobbingParams
	if f.AutoMob != nil {
		bound = &agent.AutoMobbingParams{
			Key:        keyKind(f.AutoMob.Key),
			WaitBefore: f.AutoMob.WaitBefore,
			WaitAfter:  f.AutoMob.WaitAfter,
			Bound: agent.Rect{
				X: f.AutoMob.X, Y: f.AutoMob.Y, W: f.AutoMob.W, H: f.AutoMob.H,
			},
		}
	}
	return actions, bound
}

func maxOne(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

var keyNames = map[string]agent.KeyKind{
	"up": agent.KeyUp, "down": agent.KeyDown, "left": agent.KeyLeft, "right": agent.KeyRight,
	"jump": agent.KeyJump, "interact": agent.KeyInteract, "cash_shop": agent.KeyCashShop,
	"esc": agent.KeyEsc, "enter": agent.KeyEnter, "yes_no": agent.KeyYesNo,
	"teleport": agent.KeyTeleport, "up_jump": agent.KeyUpJump, "grapple": agent.KeyGrapple,
}

func keyKind(name string) agent.KeyKind {
	return keyNames[name]
}

func direction(name string) agent.ActionKeyDirection {
	switch name {
	case "left":
		return agent.DirectionLeft
	case "right":
		return agent.DirectionRight
	default:
		return agent.DirectionAny
	}
}

func with(name string) agent.ActionKeyWith {
	switch name {
	case "stationary":
		return agent.WithStationary
	case "double_jump":
		return agent.WithDoubleJump
	default:
		return agent.WithAny
	}
}

func linkMode(name string) agent.LinkKeyMode {
	switch name {
	case "before":
		return agent.LinkBefore
	case "at_the_same":
		return agent.LinkAtTheSame
	case "after":
		return agent.LinkAfter
	case "along":
		return agent.LinkAlong
	default:
		return agent.LinkNone
	}
}
