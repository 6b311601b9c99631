// Package config loads engine settings from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Window    Window    `yaml:"window"`
	Engine    Engine    `yaml:"engine"`
	Allocator Allocator `yaml:"allocator"`
	Audio     Audio     `yaml:"audio"`
	Dirs      Dirs      `yaml:"dirs"`
}

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type Engine struct {
	FixedDT      float64 `yaml:"fixed_dt"`
	Debug        bool    `yaml:"debug"`
	WatchPrefabs bool    `yaml:"watch_prefabs"`
	StartLevel   string  `yaml:"start_level"`
}

type Allocator struct {
	ObjectsPerPage     int  `yaml:"objects_per_page"`
	MaxPages           int  `yaml:"max_pages"`
	PadBytes           int  `yaml:"pad_bytes"`
	Debug              bool `yaml:"debug"`
	UseSystemAllocator bool `yaml:"use_system_allocator"`
}

type Audio struct {
	Volume     float64 `yaml:"volume"`
	SampleRate int     `yaml:"sample_rate"`
}

type Dirs struct {
	Prefabs string `yaml:"prefabs"`
	Levels  string `yaml:"levels"`
}

// Default returns the settings used when no config file is present.
func Default() *Config {
	return &Config{
		Window:    Window{Width: 1280, Height: 720, Title: "ember"},
		Engine:    Engine{FixedDT: 1.0 / 60.0, StartLevel: "level1.json"},
		Allocator: Allocator{ObjectsPerPage: 256, PadBytes: 8},
		Audio:     Audio{Volume: 1.0, SampleRate: 48000},
		Dirs:      Dirs{Prefabs: "prefabs", Levels: "levels"},
	}
}

// Load reads settings from path, filling unset fields with defaults. A
// missing file is not an error; defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	if cfg.Engine.FixedDT <= 0 {
		cfg.Engine.FixedDT = 1.0 / 60.0
	}
	if cfg.Allocator.ObjectsPerPage <= 0 {
		cfg.Allocator.ObjectsPerPage = 256
	}
	return cfg, nil
}
