package system

import (
	"github.com/jakecoffman/cp"

	"github.com/torchlab/ember/ecs"
	"github.com/torchlab/ember/ecs/component"
)

// PhysicsSystem integrates RigidBody velocity into Transform with
// axis-separated AABB collision against same-layer walls. Walls are
// never moved. Entities missing Transform or RigidBody are skipped for
// the tick.
type PhysicsSystem struct {
	fac *ecs.Factory
}

func NewPhysicsSystem(fac *ecs.Factory) *PhysicsSystem {
	return &PhysicsSystem{fac: fac}
}

func (ps *PhysicsSystem) Update(dt float64) {
	if ps == nil || ps.fac == nil {
		return
	}

	walls := ps.collectWalls()
	for _, o := range ps.fac.Ordered() {
		if isWallName(o.Name()) || !ps.fac.Layers().Enabled(o.Layer()) {
			continue
		}
		tr, ok := o.Get(ecs.KindTransform).(*component.Transform)
		if !ok {
			continue
		}
		rb, ok := o.Get(ecs.KindRigidBody).(*component.RigidBody)
		if !ok {
			continue
		}
		ps.step(o.Layer(), tr, rb, walls, dt)
	}
}

type wall struct {
	layer string
	bb    cp.BB
}

func (ps *PhysicsSystem) collectWalls() []wall {
	var walls []wall
	for _, o := range ps.fac.Ordered() {
		if !isWallName(o.Name()) {
			continue
		}
		bb, ok := bodyBB(o)
		if !ok {
			continue
		}
		walls = append(walls, wall{layer: o.Layer(), bb: bb})
	}
	return walls
}

// step advances one body. Knockback overrides the authored velocity
// while its timer runs; the timer is consumed here.
func (ps *PhysicsSystem) step(layer string, tr *component.Transform, rb *component.RigidBody, walls []wall, dt float64) {
	vel := rb.Vel
	if rb.KnockbackTime > 0 {
		vel = rb.KnockVel
		rb.KnockbackTime -= dt
		if rb.KnockbackTime <= 0 {
			rb.KnockbackTime = 0
			rb.KnockVel = cp.Vector{}
		}
	}
	if rb.LungeTime > 0 {
		rb.LungeTime -= dt
		if rb.LungeTime < 0 {
			rb.LungeTime = 0
		}
	}

	newX := tr.Pos.X + vel.X*dt
	newY := tr.Pos.Y + vel.Y*dt

	xTrial := bbAround(newX, tr.Pos.Y, rb.HalfW, rb.HalfH)
	yTrial := bbAround(tr.Pos.X, newY, rb.HalfW, rb.HalfH)

	xOK, yOK := true, true
	for _, w := range walls {
		if w.layer != layer {
			continue
		}
		if xOK && overlaps(xTrial, w.bb) {
			xOK = false
		}
		if yOK && overlaps(yTrial, w.bb) {
			yOK = false
		}
		if !xOK && !yOK {
			break
		}
	}

	if xOK {
		tr.Pos.X = newX
	}
	if yOK {
		tr.Pos.Y = newY
	}

	if rb.Damping > 0 {
		scale := 1 / (1 + rb.Damping*dt)
		rb.Vel = rb.Vel.Mult(scale)
	}
}

// BlockedX reports whether a horizontal probe from the body at pos
// would collide with a same-layer wall. The decision trees use it to
// flip patrol direction on wall contact.
func (ps *PhysicsSystem) BlockedX(layer string, pos cp.Vector, rb *component.RigidBody, dx float64) bool {
	if ps == nil || ps.fac == nil || rb == nil {
		return false
	}
	trial := bbAround(pos.X+dx, pos.Y, rb.HalfW, rb.HalfH)
	for _, w := range ps.collectWalls() {
		if w.layer != layer {
			continue
		}
		if overlaps(trial, w.bb) {
			return true
		}
	}
	return false
}
