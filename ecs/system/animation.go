package system

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/torchlab/ember/ecs"
	"github.com/torchlab/ember/ecs/component"
)

// TextureSource resolves sheet keys to images. The resource cache
// satisfies it; tests pass nil and skip resolution.
type TextureSource interface {
	Texture(path string) *ebiten.Image
}

// AnimationSystem advances every entity's active clip by its fps and
// lazily binds sprite sheets from the texture source.
type AnimationSystem struct {
	fac      *ecs.Factory
	textures TextureSource
}

func NewAnimationSystem(fac *ecs.Factory, textures TextureSource) *AnimationSystem {
	return &AnimationSystem{fac: fac, textures: textures}
}

func (as *AnimationSystem) Update(dt float64) {
	if as == nil || as.fac == nil {
		return
	}
	for _, o := range as.fac.Ordered() {
		anim, ok := o.Get(ecs.KindSpriteAnimation).(*component.SpriteAnimation)
		if !ok {
			continue
		}
		clip := anim.ActiveClip()
		if clip == nil {
			continue
		}
		if clip.Sheet == nil && clip.SheetKey != "" && as.textures != nil {
			clip.Sheet = as.textures.Texture(clip.SheetKey)
		}
		stepClip(clip, dt)
	}
}

// stepClip advances the playhead. Looping clips wrap to the start;
// one-shot clips hold their last frame.
func stepClip(clip *component.Clip, dt float64) {
	if clip.FPS <= 0 || clip.EndFrame < clip.StartFrame {
		return
	}
	frameTime := 1 / clip.FPS
	clip.Accumulator += dt
	for clip.Accumulator >= frameTime {
		clip.Accumulator -= frameTime
		if clip.CurrentFrame < clip.EndFrame {
			clip.CurrentFrame++
			continue
		}
		if clip.Loop {
			clip.CurrentFrame = clip.StartFrame
		}
	}
}

// Finished reports whether a one-shot clip has reached its last frame.
func Finished(clip *component.Clip) bool {
	return clip != nil && !clip.Loop && clip.CurrentFrame >= clip.EndFrame
}
