package system

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/torchlab/ember/ecs"
	"github.com/torchlab/ember/ecs/component"
	"github.com/torchlab/ember/input"
	"github.com/torchlab/ember/xlog"
)

const thrownLifetime = 2.0

// Gameplay is the per-frame conductor. Its step order is fixed:
// pending level transition, reference refresh, enemy recount, animation
// advance, input, player animation state, hit boxes, decision trees,
// particles, gate evaluation.
type Gameplay struct {
	log   *zap.Logger
	fac   *ecs.Factory
	hits  *HitBoxSystem
	trees *DTreeSystem
	anims *AnimationSystem
	parts *ParticleSystem
	crash *xlog.CrashLogger
	debug bool

	// ResolveLevel maps a level name from gate metadata to a document
	// path.
	ResolveLevel func(name string) string

	playerID     ecs.ObjectId
	aliveEnemies int
	facing       float64
	throwDir     cp.Vector

	pendingLevel string
	pendingGate  string
}

// NewGameplay wires the orchestrator over its subsystems. crash may be
// nil when the debug forced-crash chord is unused.
func NewGameplay(log *zap.Logger, fac *ecs.Factory, hits *HitBoxSystem, trees *DTreeSystem, anims *AnimationSystem, parts *ParticleSystem, crash *xlog.CrashLogger, debug bool) *Gameplay {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gameplay{
		log:    log,
		fac:    fac,
		hits:   hits,
		trees:  trees,
		anims:  anims,
		parts:  parts,
		crash:  crash,
		debug:  debug,
		facing: 1,
	}
}

// AliveEnemies returns last frame's count of enemies with health left.
func (g *Gameplay) AliveEnemies() int {
	return g.aliveEnemies
}

// Player returns the cached player entity, or nil.
func (g *Gameplay) Player() *ecs.GameObject {
	return g.fac.GetObjectWithID(g.playerID)
}

func (g *Gameplay) Update(st input.State, dt float64) error {
	if g == nil {
		return nil
	}

	if g.pendingLevel != "" {
		if err := g.transition(); err != nil {
			return err
		}
	}

	player := g.refreshPlayer()
	g.recountEnemies()
	if g.anims != nil {
		g.anims.Update(dt)
	}

	if player != nil {
		g.handleInput(player, st)
		g.playerAnimState(player, st)
	}

	if g.hits != nil {
		g.hits.Update(dt)
	}
	if g.trees != nil {
		g.trees.Update(dt)
	}
	if g.parts != nil {
		g.parts.Update(dt)
	}

	if player != nil {
		g.evalGates(player)
	}
	return nil
}

// refreshPlayer re-resolves the cached player id, rescanning when the
// id is stale. Cached pointers never cross a destruction flush.
func (g *Gameplay) refreshPlayer() *ecs.GameObject {
	if o := g.fac.GetObjectWithID(g.playerID); o != nil && o.Has(ecs.KindPlayer) {
		return o
	}
	o := findPlayer(g.fac)
	if o != nil {
		g.playerID = o.ID()
	} else {
		g.playerID = 0
	}
	return o
}

func (g *Gameplay) recountEnemies() {
	n := 0
	for _, o := range g.fac.Ordered() {
		if !o.Has(ecs.KindEnemy) {
			continue
		}
		if eh, ok := o.Get(ecs.KindEnemyHealth).(*component.EnemyHealth); ok && !eh.Alive() {
			continue
		}
		n++
	}
	g.aliveEnemies = n
}

func (g *Gameplay) handleInput(player *ecs.GameObject, st input.State) {
	if st.DebugCrashPressed && g.debug && g.crash != nil {
		g.crash.Terminate("gameplay", "forced debug crash")
	}

	p, _ := player.Get(ecs.KindPlayer).(*component.Player)
	rb, _ := player.Get(ecs.KindRigidBody).(*component.RigidBody)
	tr, _ := player.Get(ecs.KindTransform).(*component.Transform)
	if p == nil || rb == nil || tr == nil {
		return
	}
	if health, ok := player.Get(ecs.KindPlayerHealth).(*component.PlayerHealth); ok && !health.Alive() {
		rb.Vel = cp.Vector{}
		return
	}

	rb.Vel = cp.Vector{X: st.MoveX * p.MoveSpeed, Y: st.MoveY * p.MoveSpeed}
	if st.MoveX != 0 {
		g.facing = math.Copysign(1, st.MoveX)
	}

	atk, _ := player.Get(ecs.KindPlayerAttack).(*component.PlayerAttack)
	if atk == nil {
		return
	}

	if st.AttackPressed && atk.AttackTimer <= 0 {
		g.meleeSwing(player, tr, rb, atk, st)
	}
	if st.ThrowPressed && !atk.ThrowQueued {
		atk.ThrowQueued = true
		g.throwDir = g.aim(tr, st)
		setAnim(player, "throw")
	}
	g.finalizeThrow(player, tr, atk)
}

// meleeSwing cycles the combo 1-2-3, holds the matching clip for its
// duration, and spawns a player-team volume in the aim direction.
func (g *Gameplay) meleeSwing(player *ecs.GameObject, tr *component.Transform, rb *component.RigidBody, atk *component.PlayerAttack, st input.State) {
	atk.Combo = atk.Combo%3 + 1
	atk.AttackTimer = atk.Lifetime

	clipName := fmt.Sprintf("attack%d", atk.Combo)
	if anim, ok := player.Get(ecs.KindSpriteAnimation).(*component.SpriteAnimation); ok {
		if anim.SetActive(clipName) {
			if d := anim.ActiveClip().Duration(); d > 0 {
				atk.AttackTimer = d
			}
		}
	}

	dir := g.aim(tr, st)
	reach := rb.HalfW + atk.Range/2
	g.hits.SpawnHitBox(player,
		tr.Pos.X+dir.X*reach, tr.Pos.Y+dir.Y*reach,
		atk.Range, atk.Range, atk.Damage, atk.Lifetime,
		component.TeamPlayer, atk.SoundDelay)
}

// finalizeThrow releases the queued projectile when the throw clip
// reaches its trigger point.
func (g *Gameplay) finalizeThrow(player *ecs.GameObject, tr *component.Transform, atk *component.PlayerAttack) {
	if !atk.ThrowQueued {
		return
	}
	if anim, ok := player.Get(ecs.KindSpriteAnimation).(*component.SpriteAnimation); ok {
		if anim.ActiveName() == "throw" && !Finished(anim.ActiveClip()) {
			return
		}
	}
	atk.ThrowQueued = false
	g.hits.SpawnProjectile(player,
		tr.Pos.X, tr.Pos.Y,
		g.throwDir.X, g.throwDir.Y, atk.ProjectileSpeed,
		0.08, 0.08, atk.ThrowDamage, thrownLifetime, component.TeamThrown)
}

// aim points at the mouse when the cursor is in view, else along the
// current facing.
func (g *Gameplay) aim(tr *component.Transform, st input.State) cp.Vector {
	if st.MouseInView {
		d := st.MouseWorld.Sub(tr.Pos)
		if d.Length() > 0 {
			return d.Normalize()
		}
	}
	return cp.Vector{X: g.facing}
}

// playerAnimState runs the priority chain: death, knockback, an attack
// still on its timer, run, idle.
func (g *Gameplay) playerAnimState(player *ecs.GameObject, st input.State) {
	p, _ := player.Get(ecs.KindPlayer).(*component.Player)
	if p == nil {
		return
	}

	if health, ok := player.Get(ecs.KindPlayerHealth).(*component.PlayerHealth); ok && !health.Alive() {
		p.State = "Death"
		setAnim(player, "death")
		return
	}
	if rb, ok := player.Get(ecs.KindRigidBody).(*component.RigidBody); ok && rb.KnockbackTime > 0 {
		p.State = "Knockback"
		setAnim(player, "knockback")
		return
	}
	if atk, ok := player.Get(ecs.KindPlayerAttack).(*component.PlayerAttack); ok {
		if atk.AttackTimer > 0 || atk.ThrowQueued {
			return // hold the in-progress attack animation
		}
	}
	if st.MoveX != 0 || st.MoveY != 0 {
		p.State = "Run"
		setAnim(player, "run")
		return
	}
	p.State = "Idle"
	setAnim(player, "idle")
}

// evalGates requests a level transition when the player stands in a
// gate region. The transition itself is deferred to the next frame.
func (g *Gameplay) evalGates(player *ecs.GameObject) {
	if g.pendingLevel != "" {
		return
	}
	pbb, ok := bodyBB(player)
	if !ok {
		return
	}

	for _, gate := range g.fac.Gates() {
		region := bbAround(gate.X, gate.Y, gate.Width/2, gate.Height/2)
		if gate.TargetLevel != "" && overlaps(pbb, region) {
			g.request(gate.TargetLevel, gate.TargetGate)
			return
		}
	}
	for _, o := range g.fac.Ordered() {
		gt, ok := o.Get(ecs.KindGateTarget).(*component.GateTarget)
		if !ok || gt.TargetLevel == "" {
			continue
		}
		tr, ok := o.Get(ecs.KindTransform).(*component.Transform)
		if !ok {
			continue
		}
		region := bbAround(tr.Pos.X, tr.Pos.Y, gt.Width/2, gt.Height/2)
		if overlaps(pbb, region) {
			g.request(gt.TargetLevel, gt.TargetGate)
			return
		}
	}
}

func (g *Gameplay) request(level, gate string) {
	g.pendingLevel = level
	g.pendingGate = gate
	g.log.Info("level transition requested",
		zap.String("level", level), zap.String("gate", gate))
}

// transition drains the live set, releases allocator pages, and loads
// the requested level, placing the player at the target gate.
func (g *Gameplay) transition() error {
	level, gate := g.pendingLevel, g.pendingGate
	g.pendingLevel, g.pendingGate = "", ""

	g.fac.DestroyAll()
	g.fac.Flush()
	if g.hits != nil {
		g.hits.Clear()
	}
	if g.trees != nil {
		g.trees.Forget()
	}
	if g.parts != nil {
		g.parts.Forget()
	}
	g.fac.FreeEmptyPages()

	path := level
	if g.ResolveLevel != nil {
		path = g.ResolveLevel(level)
	}
	if _, err := g.fac.CreateLevel(path); err != nil {
		return fmt.Errorf("system: load level %s: %w", level, err)
	}

	g.playerID = 0
	player := g.refreshPlayer()
	if player == nil || gate == "" {
		return nil
	}
	for _, gd := range g.fac.Gates() {
		if gd.Name != gate {
			continue
		}
		if tr, ok := player.Get(ecs.KindTransform).(*component.Transform); ok {
			tr.Pos = cp.Vector{X: gd.X, Y: gd.Y}
		}
		break
	}
	return nil
}
