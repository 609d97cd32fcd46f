package agent

import (
	"encoding/json"
	"os"
)

// PersistedMinimap is the opaque-JSON-blob shape named in §6.5: a numeric
// id, a name, and the platform list the graph is rebuilt from on load.
// Grounded on the teacher's persistence.go (SaveData/LoadData: JSON,
// 2-space indent, fall back to defaults on load error).
type PersistedMinimap struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Platforms []Platform `json:"platforms"`
}

// SaveConfiguration writes cfg to path as 2-space-indented JSON, matching
// the teacher's persistence.go formatting exactly.
func SaveConfiguration(path string, cfg Configuration) error {
	return saveJSON(path, cfg)
}

// LoadConfiguration reads cfg from path, returning a zero-value
// Configuration (the caller's defaults) if the file is missing or
// unparseable — the same fall-back-to-defaults policy as the teacher's
// LoadData.
func LoadConfiguration(path string) (Configuration, error) {
	var cfg Configuration
	ok, err := loadJSON(path, &cfg)
	if err != nil {
		return Configuration{}, err
	}
	if !ok {
		return Configuration{}, nil
	}
	return cfg, nil
}

// SaveMinimap / LoadMinimap round-trip a PersistedMinimap (§8 "serializing
// then deserializing a Minimap or Configuration round-trips").
func SaveMinimap(path string, m PersistedMinimap) error {
	return saveJSON(path, m)
}

func LoadMinimap(path string) (PersistedMinimap, error) {
	var m PersistedMinimap
	ok, err := loadJSON(path, &m)
	if err != nil {
		return PersistedMinimap{}, err
	}
	if !ok {
		return PersistedMinimap{}, nil
	}
	return m, nil
}

func saveJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// loadJSON reports ok=false (with a nil error) when path doesn't exist,
// so callers fall back to zero-value defaults exactly as the teacher's
// LoadData does on a missing data.json.
func loadJSON(path string, v interface{}) (ok bool, err error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, nil
	}
	return true, nil
}
