package component

import "github.com/torchlab/ember/ecs"

// RegisterBuiltins installs every built-in component constructor into
// the registry. Call once at startup before any prefab is loaded.
func RegisterBuiltins() {
	ecs.RegisterComponent(ecs.KindTransform, func() ecs.Component { return &Transform{} })
	ecs.RegisterComponent(ecs.KindRender, func() ecs.Component { return &Render{} })
	ecs.RegisterComponent(ecs.KindCircleRender, func() ecs.Component { return &CircleRender{} })
	ecs.RegisterComponent(ecs.KindGlow, func() ecs.Component { return &Glow{} })
	ecs.RegisterComponent(ecs.KindSprite, func() ecs.Component { return &Sprite{} })
	ecs.RegisterComponent(ecs.KindSpriteAnimation, func() ecs.Component { return &SpriteAnimation{} })
	ecs.RegisterComponent(ecs.KindRigidBody, func() ecs.Component { return &RigidBody{} })
	ecs.RegisterComponent(ecs.KindPlayer, func() ecs.Component { return &Player{} })
	ecs.RegisterComponent(ecs.KindPlayerAttack, func() ecs.Component { return &PlayerAttack{} })
	ecs.RegisterComponent(ecs.KindPlayerHealth, func() ecs.Component { return &PlayerHealth{} })
	ecs.RegisterComponent(ecs.KindEnemy, func() ecs.Component { return &Enemy{} })
	ecs.RegisterComponent(ecs.KindEnemyAttack, func() ecs.Component { return &EnemyAttack{} })
	ecs.RegisterComponent(ecs.KindEnemyDecisionTree, func() ecs.Component { return &EnemyDecisionTree{} })
	ecs.RegisterComponent(ecs.KindEnemyHealth, func() ecs.Component { return &EnemyHealth{} })
	ecs.RegisterComponent(ecs.KindEnemyType, func() ecs.Component { return &EnemyType{} })
	ecs.RegisterComponent(ecs.KindHitBox, func() ecs.Component { return &HitBox{} })
	ecs.RegisterComponent(ecs.KindAudio, func() ecs.Component { return &Audio{} })
	ecs.RegisterComponent(ecs.KindZoomTrigger, func() ecs.Component { return &ZoomTrigger{} })
	ecs.RegisterComponent(ecs.KindGateTarget, func() ecs.Component { return &GateTarget{} })
	ecs.RegisterComponent(ecs.KindPlayerHUD, func() ecs.Component { return &PlayerHUD{} })
}
