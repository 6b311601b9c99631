package main

import (
	"go.uber.org/zap"

	"github.com/torchlab/ember/res"
)

// defaultSoundFiles maps the logical names the systems emit to asset
// files. Levels can override entries through audio components; these
// are the fallbacks.
var defaultSoundFiles = map[string]string{
	"slash":        "sounds/slash.wav",
	"punch":        "sounds/punch.wav",
	"ineffective":  "sounds/ineffective.wav",
	"enemy_hit":    "sounds/enemy_hit.wav",
	"player_hit":   "sounds/player_hit.wav",
	"player_death": "sounds/player_death.wav",
}

// soundBank resolves logical sound names against the resource cache and
// restarts playback from the top on every trigger.
type soundBank struct {
	log    *zap.Logger
	cache  *res.Cache
	files  map[string]string
	volume float64
}

func newSoundBank(log *zap.Logger, cache *res.Cache, volume float64) *soundBank {
	files := make(map[string]string, len(defaultSoundFiles))
	for name, path := range defaultSoundFiles {
		files[name] = path
	}
	return &soundBank{log: log, cache: cache, files: files, volume: volume}
}

// Bind points a logical name at a file, replacing any earlier binding.
func (b *soundBank) Bind(name, path string) {
	b.files[name] = path
}

func (b *soundBank) Play(name string) {
	path, ok := b.files[name]
	if !ok {
		b.log.Debug("unbound sound", zap.String("name", name))
		return
	}
	p := b.cache.Sound(path)
	if p == nil {
		return
	}
	if err := p.Rewind(); err != nil {
		b.log.Warn("rewind sound", zap.String("path", path), zap.Error(err))
		return
	}
	p.SetVolume(b.volume)
	p.Play()
}
