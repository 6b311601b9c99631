// Package res caches loaded assets by path. Textures and sounds go
// through pluggable backends so the cache itself stays free of any
// graphics or audio device.
package res

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

var (
	ErrFileNotFound       = errors.New("res: file not found")
	ErrUnsupportedType    = errors.New("res: unsupported file type")
	ErrBackendLoadFailure = errors.New("res: backend load failure")
)

// Kind selects a resource class for bulk operations.
type Kind int

const (
	All Kind = iota
	Texture
	Sound
)

// Player is the playback surface the cache hands out for sounds. The
// ebiten audio player satisfies it.
type Player interface {
	Play()
	Pause()
	Rewind() error
	IsPlaying() bool
	SetVolume(volume float64)
}

// TextureBackend decodes texture files into GPU images. Cleanup
// releases whatever the backend holds on to; UnloadAll(All) calls it.
type TextureBackend interface {
	LoadTexture(path string) (*ebiten.Image, error)
	Cleanup()
}

// SoundBackend decodes audio files into players. Shutdown stops and
// releases every player the backend created; UnloadAll(All) calls it.
type SoundBackend interface {
	LoadSound(path string) (Player, error)
	Shutdown()
}

// KindForPath infers the resource class from the file extension.
func KindForPath(path string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return Texture, nil
	case ".wav", ".mp3":
		return Sound, nil
	}
	return All, fmt.Errorf("%w: %s", ErrUnsupportedType, path)
}

type entry struct {
	kind    Kind
	texture *ebiten.Image
	sound   Player
}

// Cache is a keyed store of loaded assets. Loading the same path twice
// returns the first handle. Safe for concurrent use; the prefab
// watcher goroutine reloads through it.
type Cache struct {
	log      *zap.Logger
	textures TextureBackend
	sounds   SoundBackend

	mu      sync.RWMutex
	entries map[string]entry
}

// NewCache builds a cache over the given backends.
func NewCache(log *zap.Logger, textures TextureBackend, sounds SoundBackend) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		log:      log,
		textures: textures,
		sounds:   sounds,
		entries:  make(map[string]entry),
	}
}

// Load resolves a path to a cached handle, loading it through the
// matching backend on first use.
func (c *Cache) Load(path string) error {
	kind, err := KindForPath(path)
	if err != nil {
		return err
	}

	c.mu.RLock()
	_, ok := c.entries[path]
	c.mu.RUnlock()
	if ok {
		return nil
	}

	e := entry{kind: kind}
	switch kind {
	case Texture:
		if c.textures == nil {
			return fmt.Errorf("%w: no texture backend: %s", ErrBackendLoadFailure, path)
		}
		img, err := c.textures.LoadTexture(path)
		if err != nil {
			return wrapBackendErr(path, err)
		}
		e.texture = img
	case Sound:
		if c.sounds == nil {
			return fmt.Errorf("%w: no sound backend: %s", ErrBackendLoadFailure, path)
		}
		p, err := c.sounds.LoadSound(path)
		if err != nil {
			return wrapBackendErr(path, err)
		}
		e.sound = p
	}

	c.mu.Lock()
	// A racing Load may have won; keep the first handle.
	if _, ok := c.entries[path]; !ok {
		c.entries[path] = e
	}
	c.mu.Unlock()
	c.log.Debug("resource loaded", zap.String("path", path))
	return nil
}

func wrapBackendErr(path string, err error) error {
	if errors.Is(err, ErrFileNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrBackendLoadFailure, path, err)
}

// Texture returns a cached image, loading it on demand. Returns nil on
// any failure; callers treat missing art as skippable.
func (c *Cache) Texture(path string) *ebiten.Image {
	if path == "" {
		return nil
	}
	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()
	if ok {
		return e.texture
	}
	if err := c.Load(path); err != nil {
		c.log.Warn("texture load failed", zap.String("path", path), zap.Error(err))
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[path].texture
}

// Sound returns a cached player, loading it on demand. Returns nil on
// any failure.
func (c *Cache) Sound(path string) Player {
	if path == "" {
		return nil
	}
	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()
	if ok {
		return e.sound
	}
	if err := c.Load(path); err != nil {
		c.log.Warn("sound load failed", zap.String("path", path), zap.Error(err))
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[path].sound
}

// Loaded reports whether a path is resident.
func (c *Cache) Loaded(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[path]
	return ok
}

// Len returns the number of resident entries of a class.
func (c *Cache) Len(kind Kind) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if kind == All {
		return len(c.entries)
	}
	n := 0
	for _, e := range c.entries {
		if e.kind == kind {
			n++
		}
	}
	return n
}

// Unload drops one entry, pausing a resident sound player first.
// Unloading an absent path is a no-op.
func (c *Cache) Unload(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drop(path)
}

// UnloadAll drops every entry of the given class, or everything for
// All. Unloading All additionally tears the backends down: texture
// cleanup and sound shutdown. Typically called on level transitions.
func (c *Cache) UnloadAll(kind Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if kind == All || e.kind == kind {
			c.drop(k)
		}
	}
	if kind != All {
		return
	}
	if c.textures != nil {
		c.textures.Cleanup()
	}
	if c.sounds != nil {
		c.sounds.Shutdown()
	}
}

// drop assumes the write lock is held.
func (c *Cache) drop(path string) {
	if e, ok := c.entries[path]; ok && e.sound != nil && e.sound.IsPlaying() {
		e.sound.Pause()
	}
	delete(c.entries, path)
}
