// Package main wires the agent engine (package agent at the module root)
// to its out-of-core collaborators: capture, key injection, vision
// detection, the routine loader, and the control server. Grounded on the
// teacher's src/main.go Bot/NewBot/Run shape.
package main

import (
	"fmt"

	"github.com/spf13/viper"
)

// BootstrapConfig is read once at startup from mapleagent.toml (or the
// environment/flags viper also understands); it governs *how the process
// is wired*, distinct from agent.Configuration, which is the per-character
// behavior persisted through the request bus (§6.5).
type BootstrapConfig struct {
	DisplayIndex int `mapstructure:"display_index"`

	KeyInputBackend string `mapstructure:"key_input_backend"` // "local", "foreground", "rpc"
	ForegroundWindow string `mapstructure:"foreground_window"`
	RpcBaseURL       string `mapstructure:"rpc_base_url"`

	TemplatesDir string `mapstructure:"templates_dir"`

	ConfigurationPath string `mapstructure:"configuration_path"`
	MinimapPath       string `mapstructure:"minimap_path"`
	RoutinePath       string `mapstructure:"routine_path"`

	LogPath string `mapstructure:"log_path"`

	ControlServerAddr string `mapstructure:"control_server_addr"`
	RequestQueueSize  int    `mapstructure:"request_queue_size"`
}

// defaultBootstrapConfig mirrors the teacher's fall-back-to-defaults
// posture (persistence.go) rather than failing a missing toml file.
func defaultBootstrapConfig() BootstrapConfig {
	return BootstrapConfig{
		DisplayIndex:      0,
		KeyInputBackend:   "local",
		TemplatesDir:      "templates",
		ConfigurationPath: "configuration.json",
		MinimapPath:       "minimap.json",
		RoutinePath:       "routine.toml",
		LogPath:           "mapleagent.log",
		ControlServerAddr: "127.0.0.1:37811",
		RequestQueueSize:  16,
	}
}

// LoadBootstrapConfig reads mapleagent.toml from the working directory,
// falling back to defaultBootstrapConfig() on any read error (e.g. first
// run, no file yet) -- the same policy the core's own persistence.go
// applies to Configuration/Minimap blobs.
func LoadBootstrapConfig() BootstrapConfig {
	cfg := defaultBootstrapConfig()

	vp := viper.New()
	vp.SetConfigName("mapleagent")
	vp.SetConfigType("toml")
	vp.AddConfigPath(".")
	vp.SetEnvPrefix("MAPLEAGENT")
	vp.AutomaticEnv()

	if err := vp.ReadInConfig(); err != nil {
		return cfg
	}
	if err := vp.Unmarshal(&cfg); err != nil {
		fmt.Printf("mapleagent: malformed mapleagent.toml, using defaults: %v\n", err)
		return defaultBootstrapConfig()
	}
	return cfg
}
