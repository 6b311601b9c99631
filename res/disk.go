package res

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"

	"github.com/torchlab/ember/paths"
)

const sampleRate = 44100

// DiskTextures decodes texture files from the discovered asset root.
// Cleanup deallocates every image it created.
type DiskTextures struct {
	Roots paths.Roots

	mu     sync.Mutex
	images []*ebiten.Image
}

func (d *DiskTextures) LoadTexture(path string) (*ebiten.Image, error) {
	b, err := readAsset(d.Roots, path)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	tex := ebiten.NewImageFromImage(img)
	d.mu.Lock()
	d.images = append(d.images, tex)
	d.mu.Unlock()
	return tex, nil
}

// Cleanup releases the GPU memory behind every image this backend
// decoded. Handles still held elsewhere go blank.
func (d *DiskTextures) Cleanup() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, img := range d.images {
		img.Deallocate()
	}
	d.images = nil
}

// DiskSounds decodes audio files into players on a shared context.
// The context is created on first use; ebiten allows only one.
type DiskSounds struct {
	Roots paths.Roots

	once sync.Once
	ctx  *audio.Context

	mu      sync.Mutex
	players []*audio.Player
}

func (d *DiskSounds) context() *audio.Context {
	d.once.Do(func() {
		if d.ctx == nil {
			d.ctx = audio.CurrentContext()
		}
		if d.ctx == nil {
			d.ctx = audio.NewContext(sampleRate)
		}
	})
	return d.ctx
}

func (d *DiskSounds) LoadSound(path string) (Player, error) {
	b, err := readAsset(d.Roots, path)
	if err != nil {
		return nil, err
	}
	ctx := d.context()

	var p *audio.Player
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		stream, err := wav.DecodeWithSampleRate(ctx.SampleRate(), bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("decode wav %s: %w", path, err)
		}
		p, err = ctx.NewPlayer(stream)
		if err != nil {
			return nil, err
		}
	case ".mp3":
		stream, err := mp3.DecodeWithSampleRate(ctx.SampleRate(), bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("decode mp3 %s: %w", path, err)
		}
		p, err = ctx.NewPlayer(stream)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, path)
	}

	d.mu.Lock()
	d.players = append(d.players, p)
	d.mu.Unlock()
	return p, nil
}

// Shutdown stops and closes every player this backend created. The
// audio context itself stays; ebiten cannot recreate one.
func (d *DiskSounds) Shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.players {
		if p.IsPlaying() {
			p.Pause()
		}
		_ = p.Close()
	}
	d.players = nil
}

func readAsset(roots paths.Roots, path string) ([]byte, error) {
	tried := []string{roots.ResolveAsset(path), path}
	for _, p := range tried {
		if b, err := os.ReadFile(p); err == nil {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
}
