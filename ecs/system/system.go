// Package system holds the per-frame simulation passes: physics
// integration, damage volumes, enemy decision trees, animation
// stepping, and the gameplay orchestrator that sequences them.
package system

import (
	"strings"

	"github.com/jakecoffman/cp"

	"github.com/torchlab/ember/ecs"
	"github.com/torchlab/ember/ecs/component"
)

// Sounds plays logical, named sound effects. The root package adapts
// the resource cache to it; tests substitute a recorder.
type Sounds interface {
	Play(name string)
}

// isWallName reports whether an object participates in collision as a
// static wall. Name-as-tag convention from the level art pipeline;
// kept in one place so a collision-kind tag can replace it.
func isWallName(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "rect") || strings.HasPrefix(lower, "invisiblehitbox")
}

// overlaps is the strict AABB test: touching borders do not collide.
func overlaps(a, b cp.BB) bool {
	return a.L < b.R && a.R > b.L && a.B < b.T && a.T > b.B
}

// bodyBB returns an entity's AABB, or false when it has no
// Transform+RigidBody pair.
func bodyBB(o *ecs.GameObject) (cp.BB, bool) {
	tr, ok := o.Get(ecs.KindTransform).(*component.Transform)
	if !ok {
		return cp.BB{}, false
	}
	rb, ok := o.Get(ecs.KindRigidBody).(*component.RigidBody)
	if !ok {
		return cp.BB{}, false
	}
	return rb.BB(tr.Pos), true
}

func bbAround(cx, cy, halfW, halfH float64) cp.BB {
	return cp.BB{L: cx - halfW, B: cy - halfH, R: cx + halfW, T: cy + halfH}
}
