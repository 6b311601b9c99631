package component

import (
	"github.com/jakecoffman/cp"

	"github.com/torchlab/ember/ecs"
)

// RigidBody carries axis-aligned half-extents and linear velocity.
// There are no angular dynamics; collisions only translate. Knockback
// and lunge are countdown timers written by gameplay and consumed by
// the physics step.
type RigidBody struct {
	HalfW float64
	HalfH float64

	Vel     cp.Vector
	Damping float64

	KnockVel      cp.Vector
	KnockbackTime float64
	LungeTime     float64
}

func (r *RigidBody) Kind() ecs.Kind {
	return ecs.KindRigidBody
}

func (r *RigidBody) Clone() ecs.Component {
	c := *r
	return &c
}

func (r *RigidBody) Init(*ecs.GameObject) {}

func (r *RigidBody) Update(float64) {}

func (r *RigidBody) Load(f *ecs.Fields) error {
	r.HalfW = f.Float("halfWidth", 0)
	r.HalfH = f.Float("halfHeight", 0)
	r.Vel = cp.Vector{X: f.Float("velX", 0), Y: f.Float("velY", 0)}
	r.Damping = f.Float("damping", 0)
	return nil
}

func (r *RigidBody) Save() map[string]any {
	return map[string]any{
		"halfWidth":  r.HalfW,
		"halfHeight": r.HalfH,
		"velX":       r.Vel.X,
		"velY":       r.Vel.Y,
		"damping":    r.Damping,
	}
}

// BB returns the body's AABB centered on pos.
func (r *RigidBody) BB(pos cp.Vector) cp.BB {
	return cp.BB{
		L: pos.X - r.HalfW,
		B: pos.Y - r.HalfH,
		R: pos.X + r.HalfW,
		T: pos.Y + r.HalfH,
	}
}
