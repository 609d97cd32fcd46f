package main

import (
	"fmt"
	"time"

	"github.com/getlantern/systray"

	agent "maple-bot"
)

// TrayApp is the system tray UI surface for a running Bot, grounded on the
// teacher's tray.go NewTrayApp/Run/onReady shape but scaled to this
// engine's much smaller runtime-toggle surface (halt, redetect minimap,
// quit) -- slot/threshold/preset editing is routine.toml authoring, not a
// tray menu, per SPEC_FULL §4.8.
type TrayApp struct {
	bot *Bot

	statusItem   *systray.MenuItem
	haltItem     *systray.MenuItem
	redetectItem *systray.MenuItem
	quitItem     *systray.MenuItem

	halted bool
}

// NewTrayApp creates a tray bound to bot; call Run to start it (blocking).
func NewTrayApp(bot *Bot) *TrayApp {
	return &TrayApp{bot: bot}
}

// Run starts the system tray (blocking call); onExit signals the Bot's
// stop channel so the tick loop unwinds the same way an OS signal does.
func (t *TrayApp) Run() {
	systray.Run(t.onReady, func() {
		agent.LogInfo("tray exited, signaling shutdown")
		t.bot.closeStop()
	})
}

func (t *TrayApp) onReady() {
	systray.SetTitle("mapleagent")
	systray.SetTooltip("autonomous routine agent")

	t.statusItem = systray.AddMenuItem("Status: starting...", "current engine state")
	t.statusItem.Disable()

	systray.AddSeparator()

	t.haltItem = systray.AddMenuItemCheckbox("Halt", "stop the FSMs and rotator without tearing down state", false)
	t.redetectItem = systray.AddMenuItem("Redetect minimap", "force Minimap back to Detecting")

	systray.AddSeparator()
	t.quitItem = systray.AddMenuItem("Quit", "stop mapleagent")

	go t.handleEvents()
	go t.pollStatus()
}

// handleEvents forwards tray interactions onto the request bus, the same
// drain-at-tick-boundary path the control server uses -- the tray is just
// another request producer (§4.7).
func (t *TrayApp) handleEvents() {
	for {
		select {
		case <-t.haltItem.ClickedCh:
			halt := !t.halted
			if err := t.bot.bus.Send(agent.Request{Kind: agent.RequestToggleHalt, Halt: halt}); err != nil {
				agent.LogWarn("tray: halt toggle dropped: %v", err)
				continue
			}
			t.halted = halt
			if halt {
				t.haltItem.Check()
			} else {
				t.haltItem.Uncheck()
			}

		case <-t.redetectItem.ClickedCh:
			if err := t.bot.bus.Send(agent.Request{Kind: agent.RequestRedetectMinimap}); err != nil {
				agent.LogWarn("tray: redetect request dropped: %v", err)
			}

		case <-t.quitItem.ClickedCh:
			systray.Quit()
			return
		}
	}
}

// pollStatus periodically reads game state through the request bus and
// reflects it in the disabled status line, matching the teacher's
// "Status: Mode | Kills | ..." read-only tray row updated every iteration.
func (t *TrayApp) pollStatus() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		reply := make(chan agent.Response, 1)
		if err := t.bot.bus.Send(agent.Request{Kind: agent.RequestReadGameState, Reply: reply}); err != nil {
			continue
		}
		select {
		case resp := <-reply:
			t.statusItem.SetTitle(fmt.Sprintf("Status: player=%d minimap=%d halting=%v",
				resp.GameState.PlayerKind, resp.GameState.MinimapState, resp.GameState.Halting))
		case <-time.After(500 * time.Millisecond):
		}
	}
}
