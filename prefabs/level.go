package prefabs

import (
	"encoding/json"
	"fmt"
	"os"
)

// Gate is named trigger metadata attached to a level: a rectangular
// region that sends the player to another level when entered.
type Gate struct {
	Name        string  `json:"name"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	TargetLevel string  `json:"targetLevel"`
	TargetGate  string  `json:"targetGate"`
}

// Level is a parsed level document: the game objects to instantiate and
// optional gate metadata.
type Level struct {
	Name    string
	Objects []*Document
	Gates   []Gate
}

// ParseLevel decodes a level document: an object holding a GameObjects
// array of prefab-shaped definitions plus optional Gates metadata.
func ParseLevel(data []byte) (*Level, error) {
	var top struct {
		Name        string            `json:"name"`
		GameObjects []json.RawMessage `json:"GameObjects"`
		Gates       []Gate            `json:"gates"`
	}
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("prefabs: parse level: %w", err)
	}
	if top.GameObjects == nil {
		return nil, fmt.Errorf("%w: GameObjects", ErrMissingField)
	}
	lvl := &Level{Name: top.Name, Gates: top.Gates}
	for i, raw := range top.GameObjects {
		doc, err := Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("prefabs: level object %d: %w", i, err)
		}
		lvl.Objects = append(lvl.Objects, doc)
	}
	return lvl, nil
}

// ParseLevelFile reads and parses one level file.
func ParseLevelFile(path string) (*Level, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prefabs: read %s: %w", path, err)
	}
	return ParseLevel(b)
}
