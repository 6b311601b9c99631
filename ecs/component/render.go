package component

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/torchlab/ember/ecs"
)

// Render is the flat-color quad read by the renderer.
type Render struct {
	Visible    bool
	Texture    string
	R, G, B, A float64
}

func (r *Render) Kind() ecs.Kind {
	return ecs.KindRender
}

func (r *Render) Clone() ecs.Component {
	c := *r
	return &c
}

func (r *Render) Init(*ecs.GameObject) {}

func (r *Render) Update(float64) {}

func (r *Render) Load(f *ecs.Fields) error {
	r.Visible = f.Bool("visible", true)
	r.Texture = f.Str("texture", "")
	r.R = f.Float("r", 1)
	r.G = f.Float("g", 1)
	r.B = f.Float("b", 1)
	r.A = f.Float("a", 1)
	return nil
}

func (r *Render) Save() map[string]any {
	return map[string]any{
		"visible": r.Visible,
		"texture": r.Texture,
		"r":       r.R,
		"g":       r.G,
		"b":       r.B,
		"a":       r.A,
	}
}

// CircleRender draws a flat-color disc; particles use it.
type CircleRender struct {
	Radius     float64
	R, G, B, A float64
}

func (c *CircleRender) Kind() ecs.Kind {
	return ecs.KindCircleRender
}

func (c *CircleRender) Clone() ecs.Component {
	cc := *c
	return &cc
}

func (c *CircleRender) Init(*ecs.GameObject) {}

func (c *CircleRender) Update(float64) {}

func (c *CircleRender) Load(f *ecs.Fields) error {
	c.Radius = f.Float("radius", 0.05)
	c.R = f.Float("r", 1)
	c.G = f.Float("g", 1)
	c.B = f.Float("b", 1)
	c.A = f.Float("a", 1)
	return nil
}

func (c *CircleRender) Save() map[string]any {
	return map[string]any{
		"radius": c.Radius,
		"r":      c.R,
		"g":      c.G,
		"b":      c.B,
		"a":      c.A,
	}
}

// Glow is an additive halo around the entity.
type Glow struct {
	Radius    float64
	Intensity float64
	R, G, B   float64
}

func (g *Glow) Kind() ecs.Kind {
	return ecs.KindGlow
}

func (g *Glow) Clone() ecs.Component {
	c := *g
	return &c
}

func (g *Glow) Init(*ecs.GameObject) {}

func (g *Glow) Update(float64) {}

func (g *Glow) Load(f *ecs.Fields) error {
	g.Radius = f.Float("radius", 0.1)
	g.Intensity = f.Float("intensity", 1)
	g.R = f.Float("r", 1)
	g.G = f.Float("g", 1)
	g.B = f.Float("b", 1)
	return nil
}

func (g *Glow) Save() map[string]any {
	return map[string]any{
		"radius":    g.Radius,
		"intensity": g.Intensity,
		"r":         g.R,
		"g":         g.G,
		"b":         g.B,
	}
}

// Sprite is a static textured quad. The image handle is resolved
// lazily through the resource cache; prefabs only carry the key.
type Sprite struct {
	Texture string
	Width   float64
	Height  float64
	FlipX   bool

	Img *ebiten.Image
}

func (s *Sprite) Kind() ecs.Kind {
	return ecs.KindSprite
}

func (s *Sprite) Clone() ecs.Component {
	c := *s
	return &c
}

func (s *Sprite) Init(*ecs.GameObject) {}

func (s *Sprite) Update(float64) {}

func (s *Sprite) Load(f *ecs.Fields) error {
	s.Texture = f.Str("texture", "")
	s.Width = f.Float("width", 1)
	s.Height = f.Float("height", 1)
	s.FlipX = f.Bool("flipX", false)
	return nil
}

func (s *Sprite) Save() map[string]any {
	return map[string]any{
		"texture": s.Texture,
		"width":   s.Width,
		"height":  s.Height,
		"flipX":   s.FlipX,
	}
}
