package system

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/torchlab/ember/ecs"
	"github.com/torchlab/ember/ecs/component"
)

func newWorld(t *testing.T) *ecs.Factory {
	t.Helper()
	component.RegisterBuiltins()
	return ecs.NewFactory(zap.NewNop(), ecs.Options{ObjectsPerPage: 16})
}

func addBody(t *testing.T, fac *ecs.Factory, name string, x, y, halfW, halfH, velX, velY float64) *ecs.GameObject {
	t.Helper()
	o := fac.CreateEmptyComposition()
	o.SetName(name)
	require.NoError(t, o.Attach(&component.Transform{Pos: cp.Vector{X: x, Y: y}, Scale: cp.Vector{X: 1, Y: 1}}))
	require.NoError(t, o.Attach(&component.RigidBody{HalfW: halfW, HalfH: halfH, Vel: cp.Vector{X: velX, Y: velY}}))
	return o
}

func TestAxisSeparatedCollision(t *testing.T) {
	fac := newWorld(t)
	body := addBody(t, fac, "mover", 0, 0, 0.1, 0.1, 1, 1)
	addBody(t, fac, "rect_wall", 0.25, 0, 0.1, 0.1, 0, 0)

	ps := NewPhysicsSystem(fac)
	ps.Update(0.1)

	tr := body.Get(ecs.KindTransform).(*component.Transform)
	require.InDelta(t, 0.0, tr.Pos.X, 1e-9, "x advance rejected by the wall")
	require.InDelta(t, 0.1, tr.Pos.Y, 1e-9, "y advance accepted")
}

func TestTouchingBordersDoNotCollide(t *testing.T) {
	fac := newWorld(t)
	body := addBody(t, fac, "mover", 0, 0, 0.1, 0.1, 1, 0)
	// After dt the mover's right edge exactly touches the wall's left
	// edge; strict overlap lets it advance.
	addBody(t, fac, "rect_wall", 0.3, 0, 0.1, 0.1, 0, 0)

	ps := NewPhysicsSystem(fac)
	ps.Update(0.1)

	tr := body.Get(ecs.KindTransform).(*component.Transform)
	require.InDelta(t, 0.1, tr.Pos.X, 1e-9)
}

func TestWallsNeverMove(t *testing.T) {
	fac := newWorld(t)
	wall := addBody(t, fac, "InvisibleHitbox", 1, 1, 0.5, 0.5, 3, 3)

	ps := NewPhysicsSystem(fac)
	ps.Update(0.1)

	tr := wall.Get(ecs.KindTransform).(*component.Transform)
	require.Equal(t, cp.Vector{X: 1, Y: 1}, tr.Pos)
}

func TestOtherLayerWallsIgnored(t *testing.T) {
	fac := newWorld(t)
	body := addBody(t, fac, "mover", 0, 0, 0.1, 0.1, 1, 0)
	wall := addBody(t, fac, "rect_wall", 0.25, 0, 0.1, 0.1, 0, 0)
	wall.SetLayer("background")

	ps := NewPhysicsSystem(fac)
	ps.Update(0.1)

	tr := body.Get(ecs.KindTransform).(*component.Transform)
	require.InDelta(t, 0.1, tr.Pos.X, 1e-9)
}

func TestKnockbackOverridesAndConsumes(t *testing.T) {
	fac := newWorld(t)
	body := addBody(t, fac, "mover", 0, 0, 0.1, 0.1, 1, 0)
	rb := body.Get(ecs.KindRigidBody).(*component.RigidBody)
	rb.KnockVel = cp.Vector{X: -2}
	rb.KnockbackTime = 0.1

	ps := NewPhysicsSystem(fac)
	ps.Update(0.1)

	tr := body.Get(ecs.KindTransform).(*component.Transform)
	require.InDelta(t, -0.2, tr.Pos.X, 1e-9, "knockback velocity wins over intent")
	require.Zero(t, rb.KnockbackTime)
	require.Equal(t, cp.Vector{}, rb.KnockVel)

	ps.Update(0.1)
	require.InDelta(t, -0.1, tr.Pos.X, 1e-9, "authored velocity resumes")
}

func TestDisabledLayerSkipsBodies(t *testing.T) {
	fac := newWorld(t)
	body := addBody(t, fac, "mover", 0, 0, 0.1, 0.1, 1, 0)
	fac.Layers().SetEnabled(body.Layer(), false)

	ps := NewPhysicsSystem(fac)
	ps.Update(0.1)

	tr := body.Get(ecs.KindTransform).(*component.Transform)
	require.Zero(t, tr.Pos.X)
}
