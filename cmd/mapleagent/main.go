package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/getlantern/systray"

	agent "maple-bot"
	"maple-bot/internal/capture"
	"maple-bot/internal/controlserver"
	"maple-bot/internal/keyinput"
	"maple-bot/internal/routine"
	"maple-bot/internal/visiondetect"
)

// defaultThresholds are the movement-capability thresholds named in §4.5.4,
// used both to build the platform graph and to size DoubleJumping's
// distance check.
var defaultThresholds = agent.Thresholds{DoubleJump: 25, Jump: 7, GrapplingMax: 41}

// Bot is the process-level wiring around the agent engine, mirroring the
// teacher's Bot struct: one place holding every subsystem handle plus the
// lifecycle methods main() drives. Unlike the teacher, Bot owns no
// browser -- capture/injection are native here (§1 "purely vision-driven,
// out of scope: screen capture producer").
type Bot struct {
	bootstrap BootstrapConfig
	logger    *agent.Logger

	capture agent.Capture
	keys    agent.KeySender

	templates *visiondetect.Templates

	bus    *agent.Bus
	engine *agent.Engine
	loop   *agent.Loop

	control *controlserver.Server
	stop    chan struct{}
	stopOnce sync.Once
}

// closeStop closes b.stop exactly once regardless of whether the OS
// signal handler or the tray's onExit callback fires first.
func (b *Bot) closeStop() {
	b.stopOnce.Do(func() { close(b.stop) })
}

// NewBot loads persisted configuration/minimap/routine data (falling back
// to defaults on any read error, matching the teacher's NewBot/LoadData
// posture) and constructs every subsystem, wiring them into one Loop ready
// to Run.
func NewBot(bootstrap BootstrapConfig) (*Bot, error) {
	logger, err := agent.NewLogger(bootstrap.LogPath, agent.LevelInfo)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	agent.SetDefaultLogger(logger)
	agent.LogInfo("mapleagent starting")

	cfg, err := agent.LoadConfiguration(bootstrap.ConfigurationPath)
	if err != nil {
		agent.LogError("failed to load configuration, using defaults: %v", err)
		cfg = Configuration()
	} else if _, statErr := os.Stat(bootstrap.ConfigurationPath); os.IsNotExist(statErr) {
		cfg = Configuration()
	}

	persistedMinimap, err := agent.LoadMinimap(bootstrap.MinimapPath)
	if err != nil {
		agent.LogError("failed to load minimap, starting from Detecting: %v", err)
	}

	rt, err := routine.Load(bootstrap.RoutinePath)
	if err != nil {
		agent.LogError("failed to load routine %s, running with no normal actions: %v", bootstrap.RoutinePath, err)
	}
	normalActions, autoMob := routine.Actions(rt)

	mode := agent.RotationMode{Kind: agent.RotationStartToEnd}
	if autoMob != nil {
		mode = agent.RotationMode{Kind: agent.RotationAutoMobbing, AutoMob: *autoMob}
	}

	priorities := agent.ConfigActions(cfg.FeedPetKey, cfg.PotionKey, cfg.PotionEveryMillis)
	rotator := agent.NewRotator(mode, normalActions, priorities)

	capSrc := capture.NewScreenCapture(bootstrap.DisplayIndex)

	keys, err := buildKeySender(bootstrap)
	if err != nil {
		return nil, err
	}

	templates := visiondetect.NewTemplates()
	if err := loadTemplates(templates, bootstrap.TemplatesDir); err != nil {
		agent.LogError("failed to load detection templates: %v", err)
	}

	ctx := &agent.Context{
		Minimap: agent.Minimap{State: agent.MinimapDetecting},
		Player:  agent.Player{Kind: agent.PlayerDetecting},
	}
	ctx.Minimap.RebuildPlatforms(persistedMinimap.Platforms)

	playerPersistent := agent.NewPlayerPersistent(cfg.ToPlayerSnapshot())
	minimapPersistent := agent.NewMinimapPersistent(defaultThresholds)

	var skillPersistent [agent.SkillKindCount]*agent.SkillPersistent
	for k := agent.SkillKind(0); k < agent.SkillKindCount; k++ {
		skillPersistent[k] = agent.NewSkillPersistent(k)
	}
	var buffPersistent [agent.BuffKindCount]*agent.BuffPersistent
	for k := agent.BuffKind(0); k < agent.BuffKindCount; k++ {
		buffPersistent[k] = agent.NewBuffPersistent(k)
	}

	bus := agent.NewBus(bootstrap.RequestQueueSize)
	engine := &agent.Engine{
		Ctx:     ctx,
		Player:  playerPersistent,
		Rotator: rotator,
		Minimap: minimapPersistent,
	}

	loop := &agent.Loop{
		Capture: capSrc,
		NewDetector: func(frame agent.Frame) agent.Detector {
			return visiondetect.NewDetector(frame, templates, nil)
		},
		Keys:              keys,
		Bus:               bus,
		Engine:            engine,
		MinimapPersistent: minimapPersistent,
		SkillPersistent:   skillPersistent,
		BuffPersistent:    buffPersistent,
		Logger:            logger,
	}

	return &Bot{
		bootstrap: bootstrap,
		logger:    logger,
		capture:   capSrc,
		keys:      keys,
		templates: templates,
		bus:       bus,
		engine:    engine,
		loop:      loop,
		control:   controlserver.NewServer(bus),
		stop:      make(chan struct{}),
	}, nil
}

func buildKeySender(bootstrap BootstrapConfig) (agent.KeySender, error) {
	switch bootstrap.KeyInputBackend {
	case "rpc":
		if bootstrap.RpcBaseURL == "" {
			return nil, fmt.Errorf("key_input_backend=rpc requires rpc_base_url")
		}
		return keyinput.NewRpc(bootstrap.RpcBaseURL), nil
	case "foreground":
		return keyinput.NewLocal(agent.KeyInputForeground, bootstrap.ForegroundWindow), nil
	default:
		return keyinput.NewLocal(agent.KeyInputLocal, ""), nil
	}
}

// loadTemplates walks dir for PNG crops named after the skill/rune
// templates the Detector matches against, tolerating an absent directory
// (first run, templates not yet captured).
func loadTemplates(t *visiondetect.Templates, dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if err := t.Load(trimExt(name), dir+"/"+name); err != nil {
			agent.LogWarn("skipping template %s: %v", name, err)
		}
	}
	return nil
}

func trimExt(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[:i]
		}
	}
	return name
}

// Configuration returns the default configuration a fresh install starts
// from, matching the teacher's NewPersistentData()/default-Config path.
func Configuration() agent.Configuration {
	return agent.Configuration{
		Mode: agent.RotationMode{Kind: agent.RotationStartToEnd},
		Keys: agent.ConfigurationKeys{
			Interact: agent.KeyInteract,
			CashShop: agent.KeyCashShop,
			Jump:     agent.KeyJump,
			UpJump:   agent.KeyUpJump,
			Teleport: agent.KeyTeleport,
			Grapple:  agent.KeyGrapple,
		},
		PotionThreshold:        0.5,
		UseKeyRedoPrecondition: true,
	}
}

// Run starts the control server and the tick loop in the background, then
// blocks on the system tray (teacher's Run(): signal.Notify goroutine +
// blocking foreground call). The tray's onExit and the signal handler both
// close b.stop exactly once, unwinding the tick loop; systray.Quit mirrors
// that back so either trigger tears the whole process down.
func (b *Bot) Run() {
	go func() {
		agent.LogInfo("control server listening on %s", b.bootstrap.ControlServerAddr)
		if err := http.ListenAndServe(b.bootstrap.ControlServerAddr, b.control.Router); err != nil {
			agent.LogError("control server stopped: %v", err)
		}
	}()

	go func() {
		agent.LogInfo("tick loop starting at %d Hz", agent.TickRate)
		b.loop.Run(b.stop)
		agent.LogInfo("tick loop exited")
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		agent.LogInfo("signal received: %v, shutting down", sig)
		b.closeStop()
		systray.Quit()
	}()

	agent.LogInfo("starting system tray")
	NewTrayApp(b).Run()
	agent.LogInfo("system tray exited")

	b.logger.Close()
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "PANIC: %v\n", r)
			agent.LogError("panic in main: %v", r)
			os.Exit(2)
		}
	}()

	bootstrap := LoadBootstrapConfig()

	bot, err := NewBot(bootstrap)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mapleagent: failed to start: %v\n", err)
		os.Exit(1)
	}

	bot.Run()
}
