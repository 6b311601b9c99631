package component

import (
	"strings"

	"github.com/jakecoffman/cp"

	"github.com/torchlab/ember/ecs"
)

// EnemyKind selects the attack style: physical enemies swing melee
// volumes, ranged enemies throw projectiles.
type EnemyKind uint8

const (
	EnemyPhysical EnemyKind = iota
	EnemyRanged
)

func (k EnemyKind) String() string {
	if k == EnemyRanged {
		return "ranged"
	}
	return "physical"
}

// ParseEnemyKind resolves a type name; unknown names are physical.
func ParseEnemyKind(s string) EnemyKind {
	if strings.ToLower(s) == "ranged" {
		return EnemyRanged
	}
	return EnemyPhysical
}

// Enemy is the patrol/chase state bundle driven by the decision tree.
type Enemy struct {
	MoveSpeed     float64
	PatrolSpeed   float64
	PatrolMinX    float64
	PatrolMaxX    float64
	PauseDuration float64
	StopDistance  float64
	ChaseDuration float64

	// Runtime.
	Dir           float64 // patrol direction, +1 or -1
	PauseTimer    float64
	ChaseTimer    float64
	HasSeenPlayer bool
	SmoothVel     cp.Vector
	Facing        float64 // last horizontal facing, +1 or -1
}

func (e *Enemy) Kind() ecs.Kind {
	return ecs.KindEnemy
}

func (e *Enemy) Clone() ecs.Component {
	c := *e
	c.PauseTimer = 0
	c.ChaseTimer = 0
	c.HasSeenPlayer = false
	c.SmoothVel = cp.Vector{}
	return &c
}

func (e *Enemy) Init(*ecs.GameObject) {
	if e.Dir == 0 {
		e.Dir = 1
	}
	if e.Facing == 0 {
		e.Facing = 1
	}
}

func (e *Enemy) Update(float64) {}

func (e *Enemy) Load(f *ecs.Fields) error {
	e.MoveSpeed = f.Float("moveSpeed", 0.3)
	e.PatrolSpeed = f.Float("patrolSpeed", 0.15)
	e.PatrolMinX = f.Float("patrolMinX", 0)
	e.PatrolMaxX = f.Float("patrolMaxX", 0)
	e.PauseDuration = f.Float("pauseDuration", 1)
	e.StopDistance = f.Float("stopDistance", 0.08)
	e.ChaseDuration = f.Float("chaseDuration", 3)
	e.Dir = f.Float("dir", 1)
	return nil
}

func (e *Enemy) Save() map[string]any {
	return map[string]any{
		"moveSpeed":     e.MoveSpeed,
		"patrolSpeed":   e.PatrolSpeed,
		"patrolMinX":    e.PatrolMinX,
		"patrolMaxX":    e.PatrolMaxX,
		"pauseDuration": e.PauseDuration,
		"stopDistance":  e.StopDistance,
		"chaseDuration": e.ChaseDuration,
		"dir":           e.Dir,
	}
}

// EnemyAttack gates melee swings and projectile throws by cooldown and
// range.
type EnemyAttack struct {
	Damage          float64
	Cooldown        float64
	Range           float64
	ProjectileSpeed float64
	Lifetime        float64

	CooldownTimer float64
}

func (e *EnemyAttack) Kind() ecs.Kind {
	return ecs.KindEnemyAttack
}

func (e *EnemyAttack) Clone() ecs.Component {
	c := *e
	c.CooldownTimer = 0
	return &c
}

func (e *EnemyAttack) Init(*ecs.GameObject) {}

func (e *EnemyAttack) Update(dt float64) {
	if e.CooldownTimer > 0 {
		e.CooldownTimer -= dt
		if e.CooldownTimer < 0 {
			e.CooldownTimer = 0
		}
	}
}

func (e *EnemyAttack) Load(f *ecs.Fields) error {
	e.Damage = f.Float("damage", 1)
	e.Cooldown = f.Float("cooldown", 1.2)
	e.Range = f.Float("range", 0.12)
	e.ProjectileSpeed = f.Float("projectileSpeed", 1)
	e.Lifetime = f.Float("lifetime", 0.25)
	return nil
}

func (e *EnemyAttack) Save() map[string]any {
	return map[string]any{
		"damage":          e.Damage,
		"cooldown":        e.Cooldown,
		"range":           e.Range,
		"projectileSpeed": e.ProjectileSpeed,
		"lifetime":        e.Lifetime,
	}
}

// EnemyHealth tracks enemy hit points.
type EnemyHealth struct {
	Max     float64
	Current float64
}

func (e *EnemyHealth) Kind() ecs.Kind {
	return ecs.KindEnemyHealth
}

func (e *EnemyHealth) Clone() ecs.Component {
	c := *e
	return &c
}

func (e *EnemyHealth) Init(*ecs.GameObject) {
	if e.Current == 0 && e.Max > 0 {
		e.Current = e.Max
	}
}

func (e *EnemyHealth) Update(float64) {}

// Alive reports whether the enemy has hit points left.
func (e *EnemyHealth) Alive() bool {
	return e.Current > 0
}

// ApplyDamage subtracts health. Returns true when damage landed.
func (e *EnemyHealth) ApplyDamage(amount float64) bool {
	if amount <= 0 || !e.Alive() {
		return false
	}
	e.Current -= amount
	if e.Current < 0 {
		e.Current = 0
	}
	return true
}

func (e *EnemyHealth) Load(f *ecs.Fields) error {
	e.Max = f.Float("max", 3)
	e.Current = f.Float("current", e.Max)
	return nil
}

func (e *EnemyHealth) Save() map[string]any {
	return map[string]any{
		"max":     e.Max,
		"current": e.Current,
	}
}

// EnemyType selects physical or ranged behavior.
type EnemyType struct {
	Value EnemyKind
}

func (e *EnemyType) Kind() ecs.Kind {
	return ecs.KindEnemyType
}

func (e *EnemyType) Clone() ecs.Component {
	c := *e
	return &c
}

func (e *EnemyType) Init(*ecs.GameObject) {}

func (e *EnemyType) Update(float64) {}

func (e *EnemyType) Load(f *ecs.Fields) error {
	e.Value = ParseEnemyKind(f.Str("type", "physical"))
	return nil
}

func (e *EnemyType) Save() map[string]any {
	return map[string]any{"type": e.Value.String()}
}

// EnemyDecisionTree names the behavior tree that drives this enemy and
// an optional tengo script supplying the root condition.
type EnemyDecisionTree struct {
	Tree       string
	ScriptPath string
}

func (e *EnemyDecisionTree) Kind() ecs.Kind {
	return ecs.KindEnemyDecisionTree
}

func (e *EnemyDecisionTree) Clone() ecs.Component {
	c := *e
	return &c
}

func (e *EnemyDecisionTree) Init(*ecs.GameObject) {}

func (e *EnemyDecisionTree) Update(float64) {}

func (e *EnemyDecisionTree) Load(f *ecs.Fields) error {
	e.Tree = f.Str("tree", "default")
	e.ScriptPath = f.Str("script", "")
	return nil
}

func (e *EnemyDecisionTree) Save() map[string]any {
	return map[string]any{
		"tree":   e.Tree,
		"script": e.ScriptPath,
	}
}
