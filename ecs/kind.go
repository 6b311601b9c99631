// Package ecs holds the entity-composition core: game objects made of
// keyed components, the component registry, the owning factory with its
// prefab cache and deferred destruction, and the layer registry.
package ecs

import "strings"

// Kind identifies one of the closed set of component kinds. The integer
// value is the per-entity lookup tag.
type Kind int

const (
	KindInvalid Kind = iota
	KindTransform
	KindRender
	KindCircleRender
	KindGlow
	KindSprite
	KindSpriteAnimation
	KindRigidBody
	KindPlayer
	KindPlayerAttack
	KindPlayerHealth
	KindEnemy
	KindEnemyAttack
	KindEnemyDecisionTree
	KindEnemyHealth
	KindEnemyType
	KindHitBox
	KindAudio
	KindZoomTrigger
	KindGateTarget
	KindPlayerHUD

	kindCount
)

var kindNames = [kindCount]string{
	KindTransform:         "Transform",
	KindRender:            "Render",
	KindCircleRender:      "CircleRender",
	KindGlow:              "Glow",
	KindSprite:            "Sprite",
	KindSpriteAnimation:   "SpriteAnimation",
	KindRigidBody:         "RigidBody",
	KindPlayer:            "Player",
	KindPlayerAttack:      "PlayerAttack",
	KindPlayerHealth:      "PlayerHealth",
	KindEnemy:             "Enemy",
	KindEnemyAttack:       "EnemyAttack",
	KindEnemyDecisionTree: "EnemyDecisionTree",
	KindEnemyHealth:       "EnemyHealth",
	KindEnemyType:         "EnemyType",
	KindHitBox:            "HitBox",
	KindAudio:             "Audio",
	KindZoomTrigger:       "ZoomTrigger",
	KindGateTarget:        "GateTarget",
	KindPlayerHUD:         "PlayerHUD",
}

func (k Kind) String() string {
	if k <= KindInvalid || k >= kindCount {
		return "Invalid"
	}
	return kindNames[k]
}

// KindByName resolves a component name from a prefab document. The
// lookup is case-insensitive.
func KindByName(name string) (Kind, bool) {
	for k := KindTransform; k < kindCount; k++ {
		if kindNames[k] == name {
			return k, true
		}
	}
	lower := strings.ToLower(name)
	for k := KindTransform; k < kindCount; k++ {
		if strings.ToLower(kindNames[k]) == lower {
			return k, true
		}
	}
	return KindInvalid, false
}
