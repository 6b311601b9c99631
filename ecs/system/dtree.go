package system

import (
	"fmt"
	"math"
	"os"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/torchlab/ember/ecs"
	"github.com/torchlab/ember/ecs/component"
)

const (
	proximityRadius = 0.2
	approachSmooth  = 10.0
)

// EnemyContext is the per-tick evaluation scope handed to tree nodes.
type EnemyContext struct {
	Fac    *ecs.Factory
	Hits   *HitBoxSystem
	Phys   *PhysicsSystem
	Object *ecs.GameObject
	Player *ecs.GameObject

	Enemy  *component.Enemy
	Attack *component.EnemyAttack
	Tr     *component.Transform
	RB     *component.RigidBody
}

// Node is one decision-tree entry. A node with a Condition descends
// into True or False; a node without one runs its Action and stops.
type Node struct {
	Condition func(ctx *EnemyContext) bool
	Action    func(ctx *EnemyContext, dt float64)
	True      int
	False     int
}

// Tree is a binary condition/action tree evaluated once per enemy per
// tick, starting at node 0.
type Tree struct {
	Nodes []Node
}

func (t *Tree) Run(ctx *EnemyContext, dt float64) {
	idx := 0
	for idx >= 0 && idx < len(t.Nodes) {
		n := &t.Nodes[idx]
		if n.Condition != nil {
			if n.Condition(ctx) {
				idx = n.True
			} else {
				idx = n.False
			}
			continue
		}
		if n.Action != nil {
			n.Action(ctx, dt)
		}
		return
	}
}

// scriptCondition is a compiled tengo expression driving a tree's root
// condition with dist, seen, and health bound per tick.
type scriptCondition struct {
	compiled *tengo.Compiled
}

func compileScriptCondition(path string) (*scriptCondition, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("system: read condition script %s: %w", path, err)
	}
	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap("math"))
	_ = script.Add("dist", 0.0)
	_ = script.Add("seen", false)
	_ = script.Add("health", 0.0)
	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("system: compile condition script %s: %w", path, err)
	}
	return &scriptCondition{compiled: compiled}, nil
}

// eval re-runs the compiled script and reads its engaged result.
func (sc *scriptCondition) eval(dist float64, seen bool, health float64) (bool, error) {
	if err := sc.compiled.Set("dist", dist); err != nil {
		return false, err
	}
	if err := sc.compiled.Set("seen", seen); err != nil {
		return false, err
	}
	if err := sc.compiled.Set("health", health); err != nil {
		return false, err
	}
	if err := sc.compiled.Run(); err != nil {
		return false, err
	}
	return sc.compiled.Get("engaged").Bool(), nil
}

// DTreeSystem evaluates each enemy's decision tree once per tick. Dead
// enemies skip the tree and hold still so death animations play out.
type DTreeSystem struct {
	log  *zap.Logger
	fac  *ecs.Factory
	hits *HitBoxSystem
	phys *PhysicsSystem

	// ResolveScript maps a script name from a prefab to a readable
	// path. Nil leaves names untouched.
	ResolveScript func(name string) string

	trees   map[string]*Tree
	scripts map[ecs.ObjectId]*scriptCondition
}

func NewDTreeSystem(log *zap.Logger, fac *ecs.Factory, hits *HitBoxSystem, phys *PhysicsSystem) *DTreeSystem {
	if log == nil {
		log = zap.NewNop()
	}
	s := &DTreeSystem{
		log:     log,
		fac:     fac,
		hits:    hits,
		phys:    phys,
		trees:   make(map[string]*Tree),
		scripts: make(map[ecs.ObjectId]*scriptCondition),
	}
	s.trees["default"] = defaultTree()
	return s
}

// RegisterTree installs a named tree, replacing any previous one.
func (s *DTreeSystem) RegisterTree(name string, t *Tree) {
	s.trees[name] = t
}

func (s *DTreeSystem) Update(dt float64) {
	if s == nil {
		return
	}
	player := findPlayer(s.fac)

	for _, o := range s.fac.Ordered() {
		en, ok := o.Get(ecs.KindEnemy).(*component.Enemy)
		if !ok || !s.fac.Layers().Enabled(o.Layer()) {
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

		if eh, ok := o.Get(ecs.KindEnemyHealth).(*component.EnemyHealth); ok && !eh.Alive() {
			rb.Vel = cp.Vector{}
			continue
		}

		ctx := &EnemyContext{
			Fac:    s.fac,
			Hits:   s.hits,
			Phys:   s.phys,
			Object: o,
			Player: player,
			Enemy:  en,
			Tr:     tr,
			RB:     rb,
		}
		if atk, ok := o.Get(ecs.KindEnemyAttack).(*component.EnemyAttack); ok {
			ctx.Attack = atk
		}

		tree := s.treeFor(o)
		tree.Run(ctx, dt)
	}
}

func (s *DTreeSystem) treeFor(o *ecs.GameObject) *Tree {
	name := "default"
	script := ""
	if dc, ok := o.Get(ecs.KindEnemyDecisionTree).(*component.EnemyDecisionTree); ok {
		if dc.Tree != "" {
			name = dc.Tree
		}
		script = dc.ScriptPath
	}
	base, ok := s.trees[name]
	if !ok {
		base = s.trees["default"]
	}
	if script == "" {
		return base
	}
	return s.scriptedTree(o, script, base)
}

// scriptedTree wraps a base tree with a scripted root condition. The
// script is compiled once per enemy; compile failures fall back to the
// built-in condition.
func (s *DTreeSystem) scriptedTree(o *ecs.GameObject, path string, base *Tree) *Tree {
	sc, ok := s.scripts[o.ID()]
	if !ok {
		if s.ResolveScript != nil {
			path = s.ResolveScript(path)
		}
		var err error
		sc, err = compileScriptCondition(path)
		if err != nil {
			s.log.Warn("decision-tree script unavailable",
				zap.Uint32("object", uint32(o.ID())), zap.Error(err))
			sc = nil
		}
		s.scripts[o.ID()] = sc
	}
	if sc == nil {
		return base
	}

	wrapped := &Tree{Nodes: make([]Node, len(base.Nodes))}
	copy(wrapped.Nodes, base.Nodes)
	builtin := wrapped.Nodes[0].Condition
	wrapped.Nodes[0].Condition = func(ctx *EnemyContext) bool {
		health := 0.0
		if eh, ok := ctx.Object.Get(ecs.KindEnemyHealth).(*component.EnemyHealth); ok {
			health = eh.Current
		}
		engaged, err := sc.eval(playerDistance(ctx), ctx.Enemy.HasSeenPlayer, health)
		if err != nil {
			s.log.Warn("decision-tree script failed",
				zap.Uint32("object", uint32(ctx.Object.ID())), zap.Error(err))
			return builtin(ctx)
		}
		return engaged
	}
	return wrapped
}

// Forget drops per-enemy script state, called when the live set is
// rebuilt on level transitions.
func (s *DTreeSystem) Forget() {
	s.scripts = make(map[ecs.ObjectId]*scriptCondition)
}

func findPlayer(fac *ecs.Factory) *ecs.GameObject {
	for _, o := range fac.Ordered() {
		if o.Has(ecs.KindPlayer) {
			return o
		}
	}
	return nil
}

func playerDistance(ctx *EnemyContext) float64 {
	if ctx.Player == nil {
		return math.MaxFloat64
	}
	ptr, ok := ctx.Player.Get(ecs.KindTransform).(*component.Transform)
	if !ok {
		return math.MaxFloat64
	}
	return ptr.Pos.Sub(ctx.Tr.Pos).Length()
}

// defaultTree: engage when the player is close or was seen recently,
// otherwise patrol.
func defaultTree() *Tree {
	return &Tree{Nodes: []Node{
		{Condition: condEngaged, True: 1, False: 2},
		{Action: actAttack, True: -1, False: -1},
		{Action: actPatrol, True: -1, False: -1},
	}}
}

// condEngaged latches on proximity and decays the latch after a full
// chase duration without re-proximity.
func condEngaged(ctx *EnemyContext) bool {
	dist := playerDistance(ctx)
	if dist <= proximityRadius {
		ctx.Enemy.HasSeenPlayer = true
		ctx.Enemy.ChaseTimer = 0
		return true
	}
	return ctx.Enemy.HasSeenPlayer
}

func actAttack(ctx *EnemyContext, dt float64) {
	en := ctx.Enemy
	if ctx.Player == nil {
		en.HasSeenPlayer = false
		en.SmoothVel = cp.Vector{}
		ctx.RB.Vel = cp.Vector{}
		return
	}

	en.ChaseTimer += dt
	dist := playerDistance(ctx)
	if dist > proximityRadius && en.ChaseTimer >= en.ChaseDuration {
		en.HasSeenPlayer = false
		en.SmoothVel = cp.Vector{}
		ctx.RB.Vel = cp.Vector{}
		return
	}

	ptr := ctx.Player.Get(ecs.KindTransform).(*component.Transform)
	toward := ptr.Pos.Sub(ctx.Tr.Pos)
	if toward.Length() > 0 {
		toward = toward.Normalize()
	}
	if toward.X != 0 {
		en.Facing = math.Copysign(1, toward.X)
	}

	desired := cp.Vector{}
	if dist > en.StopDistance {
		desired = toward.Mult(en.MoveSpeed)
	}
	blend := 1 - math.Exp(-approachSmooth*dt)
	en.SmoothVel = en.SmoothVel.Add(desired.Sub(en.SmoothVel).Mult(blend))
	ctx.RB.Vel = en.SmoothVel

	setAnim(ctx.Object, "walk")
	attack(ctx, dist, toward)
}

// attack fires a cooldown-gated melee volume or a projectile at the
// player, by enemy type.
func attack(ctx *EnemyContext, dist float64, toward cp.Vector) {
	atk := ctx.Attack
	if atk == nil || ctx.Hits == nil || atk.CooldownTimer > 0 || dist > atk.Range {
		return
	}

	kind := component.EnemyPhysical
	if et, ok := ctx.Object.Get(ecs.KindEnemyType).(*component.EnemyType); ok {
		kind = et.Value
	}

	if kind == component.EnemyRanged {
		ctx.Hits.SpawnProjectile(ctx.Object,
			ctx.Tr.Pos.X, ctx.Tr.Pos.Y,
			toward.X, toward.Y, atk.ProjectileSpeed,
			0.08, 0.08, atk.Damage, 2.0, component.TeamEnemy)
		setAnim(ctx.Object, "throw")
	} else {
		reach := ctx.RB.HalfW + atk.Range/2
		ctx.Hits.SpawnHitBox(ctx.Object,
			ctx.Tr.Pos.X+ctx.Enemy.Facing*reach, ctx.Tr.Pos.Y,
			atk.Range, ctx.RB.HalfH*2, atk.Damage, atk.Lifetime,
			component.TeamEnemy, 0)
		setAnim(ctx.Object, "attack")
	}
	atk.CooldownTimer = atk.Cooldown
}

// actPatrol walks horizontally, flipping on wall contact or at the
// patrol range boundary, pausing after each flip.
func actPatrol(ctx *EnemyContext, dt float64) {
	en := ctx.Enemy
	en.ChaseTimer = 0

	if en.PauseTimer > 0 {
		en.PauseTimer -= dt
		ctx.RB.Vel = cp.Vector{}
		setAnim(ctx.Object, "idle")
		return
	}

	flip := false
	if en.PatrolMaxX > en.PatrolMinX {
		if en.Dir > 0 && ctx.Tr.Pos.X >= en.PatrolMaxX {
			flip = true
		}
		if en.Dir < 0 && ctx.Tr.Pos.X <= en.PatrolMinX {
			flip = true
		}
	}
	if !flip && ctx.Phys != nil {
		probe := en.Dir * (ctx.RB.HalfW + en.PatrolSpeed*dt)
		if ctx.Phys.BlockedX(ctx.Object.Layer(), ctx.Tr.Pos, ctx.RB, probe) {
			flip = true
		}
	}
	if flip {
		en.Dir = -en.Dir
		en.Facing = en.Dir
		en.PauseTimer = en.PauseDuration
		ctx.RB.Vel = cp.Vector{}
		setAnim(ctx.Object, "idle")
		return
	}

	en.Facing = en.Dir
	ctx.RB.Vel = cp.Vector{X: en.Dir * en.PatrolSpeed}
	setAnim(ctx.Object, "walk")
}

func setAnim(o *ecs.GameObject, name string) {
	if anim, ok := o.Get(ecs.KindSpriteAnimation).(*component.SpriteAnimation); ok {
		anim.SetActive(name)
	}
}
