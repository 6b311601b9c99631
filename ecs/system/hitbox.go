package system

import (
	"unsafe"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/torchlab/ember/ecs"
	"github.com/torchlab/ember/ecs/component"
	"github.com/torchlab/ember/slab"
)

// Knockback written to a struck body; the physics step consumes it.
const (
	knockbackSpeed    = 1.2
	knockbackDuration = 0.25
)

// projectileGrace is how long a thrown volume ignores anything that is
// not a player or an enemy, so it clears its thrower's own body.
// Clamped to the volume's lifetime for short-lived projectiles.
const projectileGrace = 1.0

const (
	volLive uint8 = iota
	volHit
	volExpired
)

// volume is one live damage region. It is pointer-free so the records
// can live in slab-allocated byte blocks; owners are ids re-resolved
// through the factory every tick.
type volume struct {
	owner      uint32
	team       uint8
	state      uint8
	projectile uint8
	contacted  uint8

	cx, cy       float64
	halfW, halfH float64
	velX, velY   float64
	damage       float64
	lifetime     float64
	grace        float64
	soundDelay   float64
}

func asVolume(b []byte) *volume {
	return (*volume)(unsafe.Pointer(unsafe.SliceData(b)))
}

type pendingSound struct {
	delay float64
	name  string
}

// HitBoxSystem spawns, ages, and resolves damage volumes. Each volume
// hits at most one target over its life: Live, then Hit or Expired,
// then removed.
type HitBoxSystem struct {
	log    *zap.Logger
	fac    *ecs.Factory
	pool   *slab.Pool
	blocks [][]byte

	sounds       Sounds
	impactPrefab string
	pending      []pendingSound

	// Particles, when set, owns impact VFX lifetimes. Unset, VFX are
	// plain factory entities left to their own components.
	Particles *ParticleSystem
}

// NewHitBoxSystem builds the system over a slab pool sized for volume
// records. impactPrefab names the VFX entity cloned on enemy hits; ""
// disables it.
func NewHitBoxSystem(log *zap.Logger, fac *ecs.Factory, sounds Sounds, impactPrefab string) (*HitBoxSystem, error) {
	if log == nil {
		log = zap.NewNop()
	}
	pool, err := slab.New(int(unsafe.Sizeof(volume{})), slab.Config{ObjectsPerPage: 64})
	if err != nil {
		return nil, err
	}
	return &HitBoxSystem{
		log:          log,
		fac:          fac,
		pool:         pool,
		sounds:       sounds,
		impactPrefab: impactPrefab,
	}, nil
}

// Active returns the number of live volumes.
func (hs *HitBoxSystem) Active() int {
	return len(hs.blocks)
}

// SpawnHitBox creates a stationary volume. The team is overridden by
// the owner: a Player owner fights for TeamPlayer, an Enemy owner for
// TeamEnemy; otherwise the given team stands.
func (hs *HitBoxSystem) SpawnHitBox(owner *ecs.GameObject, cx, cy, w, h, damage, lifetime float64, team component.Team, soundDelay float64) {
	v := hs.alloc()
	if v == nil {
		return
	}
	*v = volume{
		owner:      uint32(ownerID(owner)),
		team:       uint8(teamFor(owner, team)),
		cx:         cx,
		cy:         cy,
		halfW:      w / 2,
		halfH:      h / 2,
		damage:     damage,
		lifetime:   lifetime,
		soundDelay: soundDelay,
	}
}

// SpawnProjectile creates a moving volume with a self-collision grace.
// The team stands as given so thrown player projectiles stay Thrown.
func (hs *HitBoxSystem) SpawnProjectile(owner *ecs.GameObject, cx, cy, dirX, dirY, speed, w, h, damage, lifetime float64, team component.Team) {
	v := hs.alloc()
	if v == nil {
		return
	}
	dir := cp.Vector{X: dirX, Y: dirY}
	if dir.Length() > 0 {
		dir = dir.Normalize()
	}
	grace := projectileGrace
	if lifetime < grace {
		grace = lifetime
	}
	*v = volume{
		owner:      uint32(ownerID(owner)),
		team:       uint8(team),
		projectile: 1,
		cx:         cx,
		cy:         cy,
		halfW:      w / 2,
		halfH:      h / 2,
		velX:       dir.X * speed,
		velY:       dir.Y * speed,
		damage:     damage,
		lifetime:   lifetime,
		grace:      grace,
	}
}

func (hs *HitBoxSystem) alloc() *volume {
	b, err := hs.pool.Allocate()
	if err != nil {
		hs.log.Error("hitbox allocation failed", zap.Error(err))
		return nil
	}
	hs.blocks = append(hs.blocks, b)
	return asVolume(b)
}

func ownerID(owner *ecs.GameObject) ecs.ObjectId {
	if owner == nil {
		return 0
	}
	return owner.ID()
}

func teamFor(owner *ecs.GameObject, team component.Team) component.Team {
	if owner == nil {
		return team
	}
	if owner.Has(ecs.KindPlayer) {
		return component.TeamPlayer
	}
	if owner.Has(ecs.KindEnemy) {
		return component.TeamEnemy
	}
	return team
}

// armAuthored spawns volumes for prefab-authored hazards: objects that
// carry a HitBox component which has not been armed yet.
func (hs *HitBoxSystem) armAuthored() {
	for _, o := range hs.fac.Ordered() {
		hb, _ := o.Get(ecs.KindHitBox).(*component.HitBox)
		tr, _ := o.Get(ecs.KindTransform).(*component.Transform)
		if hb == nil || tr == nil || hb.Armed {
			continue
		}
		hb.Armed = true
		hs.SpawnHitBox(o, tr.Pos.X, tr.Pos.Y, hb.Width, hb.Height, hb.Damage, hb.Lifetime, hb.Team, hb.SoundDelay)
	}
}

func (hs *HitBoxSystem) Update(dt float64) {
	if hs == nil {
		return
	}
	hs.armAuthored()
	hs.tickPendingSounds(dt)

	kept := hs.blocks[:0]
	for _, b := range hs.blocks {
		v := asVolume(b)
		hs.tick(v, dt)
		if v.state == volLive {
			kept = append(kept, b)
			continue
		}
		hs.resolveSwingSound(v)
		if err := hs.pool.Free(b); err != nil {
			hs.log.Error("hitbox free failed", zap.Error(err))
		}
	}
	hs.blocks = kept
}

func (hs *HitBoxSystem) tick(v *volume, dt float64) {
	v.lifetime -= dt

	owner := hs.fac.GetObjectWithID(ecs.ObjectId(v.owner))
	if owner == nil || !hs.fac.Layers().Enabled(owner.Layer()) {
		v.state = volExpired
		return
	}

	if v.projectile == 1 {
		v.cx += v.velX * dt
		v.cy += v.velY * dt
	}
	if v.grace > 0 {
		v.grace -= dt
	}
	if v.soundDelay > 0 {
		v.soundDelay -= dt
	}

	hs.scan(v, owner)
	if v.state == volLive && v.lifetime <= 0 {
		v.state = volExpired
	}
}

// scan walks same-layer entities and applies damage to the first valid
// target. Contacting an ineligible or invulnerable target counts as a
// blocked swing but does not consume the volume.
func (hs *HitBoxSystem) scan(v *volume, owner *ecs.GameObject) {
	bb := bbAround(v.cx, v.cy, v.halfW, v.halfH)
	layer := owner.Layer()

	for _, target := range hs.fac.Ordered() {
		if target == owner || target.Layer() != layer {
			continue
		}
		isActor := target.Has(ecs.KindPlayerHealth) || target.Has(ecs.KindEnemyHealth)
		if v.projectile == 1 && v.grace > 0 && !isActor {
			continue
		}
		tbb, ok := bodyBB(target)
		if !ok || !overlaps(bb, tbb) {
			continue
		}
		v.contacted = 1

		if ph, ok := target.Get(ecs.KindPlayerHealth).(*component.PlayerHealth); ok {
			if ph.Invulnerable {
				continue
			}
			ph.ApplyDamage(v.damage)
			if ph.Alive() {
				hs.play("player_hit")
			} else {
				hs.play("player_death")
			}
			hs.strike(v, owner, target)
			return
		}

		if eh, ok := target.Get(ecs.KindEnemyHealth).(*component.EnemyHealth); ok {
			if !eh.Alive() || !hs.eligible(v, target) {
				continue
			}
			eh.ApplyDamage(v.damage)
			hs.spawnImpact(target)
			hs.play("enemy_hit")
			hs.strike(v, owner, target)
			return
		}
		// Neutral contact: no damage, keep scanning.
	}
}

// eligible applies the type gate: physical enemies are only hit by the
// player's own swings, ranged enemies only by thrown projectiles.
func (hs *HitBoxSystem) eligible(v *volume, target *ecs.GameObject) bool {
	et, ok := target.Get(ecs.KindEnemyType).(*component.EnemyType)
	kind := component.EnemyPhysical
	if ok {
		kind = et.Value
	}
	switch kind {
	case component.EnemyRanged:
		return component.Team(v.team) == component.TeamThrown
	default:
		return component.Team(v.team) == component.TeamPlayer
	}
}

// strike finishes a valid hit: knockback away from the attacker, the
// knockback animation, and volume consumption.
func (hs *HitBoxSystem) strike(v *volume, owner, target *ecs.GameObject) {
	v.state = volHit

	tr, ok := target.Get(ecs.KindTransform).(*component.Transform)
	if !ok {
		return
	}
	from := cp.Vector{X: v.cx, Y: v.cy}
	if otr, ok := owner.Get(ecs.KindTransform).(*component.Transform); ok {
		from = otr.Pos
	}
	dir := tr.Pos.Sub(from)
	if dir.Length() == 0 {
		dir = cp.Vector{X: 1}
	}
	dir = dir.Normalize()

	if rb, ok := target.Get(ecs.KindRigidBody).(*component.RigidBody); ok {
		rb.KnockVel = dir.Mult(knockbackSpeed)
		rb.KnockbackTime = knockbackDuration
	}
	if anim, ok := target.Get(ecs.KindSpriteAnimation).(*component.SpriteAnimation); ok {
		anim.SetActive("knockback")
	}
}

func (hs *HitBoxSystem) spawnImpact(target *ecs.GameObject) {
	if hs.impactPrefab == "" || !hs.fac.HasPrefab(hs.impactPrefab) {
		return
	}
	ttr, ok := target.Get(ecs.KindTransform).(*component.Transform)
	if !ok {
		return
	}
	if hs.Particles != nil {
		hs.Particles.Spawn(hs.impactPrefab, ttr.Pos.X, ttr.Pos.Y, 0)
		return
	}
	vfx := hs.fac.Create(hs.impactPrefab)
	if vfx == nil {
		return
	}
	if vtr, ok := vfx.Get(ecs.KindTransform).(*component.Transform); ok {
		vtr.Pos = ttr.Pos
	}
}

// resolveSwingSound schedules the delayed player-swing feedback sound:
// slash when the swing landed, ineffective when it was blocked, punch
// on a pure whiff. At most one sound per volume.
func (hs *HitBoxSystem) resolveSwingSound(v *volume) {
	if component.Team(v.team) != component.TeamPlayer {
		return
	}
	name := "punch"
	switch {
	case v.state == volHit:
		name = "slash"
	case v.contacted == 1:
		name = "ineffective"
	}
	if v.soundDelay <= 0 {
		hs.play(name)
		return
	}
	hs.pending = append(hs.pending, pendingSound{delay: v.soundDelay, name: name})
}

func (hs *HitBoxSystem) tickPendingSounds(dt float64) {
	kept := hs.pending[:0]
	for _, p := range hs.pending {
		p.delay -= dt
		if p.delay <= 0 {
			hs.play(p.name)
			continue
		}
		kept = append(kept, p)
	}
	hs.pending = kept
}

func (hs *HitBoxSystem) play(name string) {
	if hs.sounds != nil {
		hs.sounds.Play(name)
	}
}

// Clear drops every live volume, typically on level transitions.
func (hs *HitBoxSystem) Clear() {
	for _, b := range hs.blocks {
		_ = hs.pool.Free(b)
	}
	hs.blocks = hs.blocks[:0]
	hs.pending = hs.pending[:0]
	hs.pool.FreeEmptyPages()
}
