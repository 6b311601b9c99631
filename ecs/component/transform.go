// Package component defines the closed set of component kinds that can
// be attached to a game object.
package component

import (
	"github.com/jakecoffman/cp"

	"github.com/torchlab/ember/ecs"
)

// Transform is world position, rotation, and non-uniform scale. It is
// mutated by physics and gameplay; every renderable entity carries one.
type Transform struct {
	Pos      cp.Vector
	Rotation float64
	Scale    cp.Vector
}

func (t *Transform) Kind() ecs.Kind {
	return ecs.KindTransform
}

func (t *Transform) Clone() ecs.Component {
	c := *t
	return &c
}

func (t *Transform) Init(*ecs.GameObject) {}

func (t *Transform) Update(float64) {}

func (t *Transform) Load(f *ecs.Fields) error {
	t.Pos = cp.Vector{X: f.Float("x", 0), Y: f.Float("y", 0)}
	t.Rotation = f.Float("rotation", 0)
	t.Scale = cp.Vector{X: f.Float("scaleX", 1), Y: f.Float("scaleY", 1)}
	return nil
}

func (t *Transform) Save() map[string]any {
	return map[string]any{
		"x":        t.Pos.X,
		"y":        t.Pos.Y,
		"rotation": t.Rotation,
		"scaleX":   t.Scale.X,
		"scaleY":   t.Scale.Y,
	}
}
