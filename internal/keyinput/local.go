// Package keyinput implements the agent.KeySender interface (§6.2) with
// two concrete backends: Local (native SendInput/foreground injection via
// robotgo) and Rpc (a remote key-injection service). Grounded on the
// teacher's native-input dependency set (go-vgo/robotgo, vcaesar/keycode)
// rather than its current browser-JS-injection iteration, since the spec
// models native/RPC key injection with no DOM in scope at all.
package keyinput

import (
	"fmt"

	"github.com/go-vgo/robotgo"
	"github.com/vcaesar/keycode"

	"maple-bot"
)

// vkNames maps agent.KeyKind to the key name robotgo/vcaesar's keycode
// package expects.
var vkNames = map[agent.KeyKind]string{
	agent.KeyUp:       "up",
	agent.KeyDown:     "down",
	agent.KeyLeft:     "left",
	agent.KeyRight:    "right",
	agent.KeyJump:     "alt",
	agent.KeyInteract: "y",
	agent.KeyCashShop: "p",
	agent.KeyEsc:      "esc",
	agent.KeyEnter:    "enter",
	agent.KeyYesNo:    "y",
	agent.KeyTeleport: "ctrl",
	agent.KeyUpJump:   "up",
	agent.KeyGrapple:  "shift",
}

func keyName(k agent.KeyKind) string {
	if name, ok := vkNames[k]; ok {
		return name
	}
	return ""
}

// init validates every vkNames entry resolves to a known virtual keycode,
// catching a typo'd key name at startup instead of a silent no-op KeyTap.
func init() {
	for kind, name := range vkNames {
		if keycode.ConvertKey(name) == 0 {
			agent.LogWarn(fmt.Sprintf("keyinput: %v has no known keycode for %q", kind, name))
		}
	}
}

// Local is the agent.KeySender backend driving input through robotgo,
// either globally (KeyInputLocal) or restricted to a foreground window
// handle (KeyInputForeground).
type Local struct {
	Kind       agent.KeyInputKind
	WindowName string
	tracker    *agent.DownKeyTracker
}

// NewLocal constructs a Local backend. windowName is only consulted when
// kind is KeyInputForeground.
func NewLocal(kind agent.KeyInputKind, windowName string) *Local {
	return &Local{Kind: kind, WindowName: windowName, tracker: agent.NewDownKeyTracker()}
}

func (l *Local) focusIfNeeded() {
	if l.Kind == agent.KeyInputForeground && l.WindowName != "" {
		robotgo.ActivePID(robotgo.FindIds(l.WindowName)...)
	}
}

func (l *Local) Send(k agent.KeyKind) error {
	l.focusIfNeeded()
	name := keyName(k)
	if name == "" {
		return nil
	}
	return robotgo.KeyTap(name)
}

func (l *Local) SendDown(k agent.KeyKind) error {
	if l.tracker.MarkDown(k) {
		return nil
	}
	l.focusIfNeeded()
	name := keyName(k)
	if name == "" {
		return nil
	}
	return robotgo.KeyToggle(name, "down")
}

func (l *Local) SendUp(k agent.KeyKind) error {
	if l.tracker.MarkUp(k) {
		return nil
	}
	l.focusIfNeeded()
	name := keyName(k)
	if name == "" {
		return nil
	}
	return robotgo.KeyToggle(name, "up")
}

func (l *Local) SendClickToFocus() error {
	l.focusIfNeeded()
	robotgo.Click()
	return nil
}
