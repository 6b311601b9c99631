package system

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/torchlab/ember/ecs"
	"github.com/torchlab/ember/ecs/component"
)

type soundRecorder struct {
	played []string
}

func (s *soundRecorder) Play(name string) {
	s.played = append(s.played, name)
}

func (s *soundRecorder) count(name string) int {
	n := 0
	for _, p := range s.played {
		if p == name {
			n++
		}
	}
	return n
}

func newHitWorld(t *testing.T) (*ecs.Factory, *HitBoxSystem, *soundRecorder) {
	t.Helper()
	fac := newWorld(t)
	rec := &soundRecorder{}
	hs, err := NewHitBoxSystem(zap.NewNop(), fac, rec, "impact")
	require.NoError(t, err)
	return fac, hs, rec
}

func registerImpactPrefab(t *testing.T, fac *ecs.Factory) {
	t.Helper()
	body := `{"GameObject": {"name": "impact", "Components": {"Transform": {}, "SpriteAnimation": {}}}}`
	path := filepath.Join(t.TempDir(), "impact.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	master, err := fac.CreateTemplate(path)
	require.NoError(t, err)
	fac.RegisterPrefab(master)
}

func addEnemy(t *testing.T, fac *ecs.Factory, x, y, health float64, kind component.EnemyKind) *ecs.GameObject {
	t.Helper()
	o := addBody(t, fac, "grunt", x, y, 0.1, 0.1, 0, 0)
	require.NoError(t, o.Attach(&component.Enemy{}))
	require.NoError(t, o.Attach(&component.EnemyHealth{Max: health, Current: health}))
	require.NoError(t, o.Attach(&component.EnemyType{Value: kind}))
	require.NoError(t, o.Attach(&component.SpriteAnimation{Clips: []component.Clip{
		{Name: "idle", Columns: 1, StartFrame: 0, EndFrame: 0, FPS: 1, Loop: true},
		{Name: "knockback", Columns: 1, StartFrame: 0, EndFrame: 0, FPS: 1},
	}}))
	return o
}

func addPlayer(t *testing.T, fac *ecs.Factory, x, y float64) *ecs.GameObject {
	t.Helper()
	o := addBody(t, fac, "Ember", x, y, 0.1, 0.1, 0, 0)
	o.SetName("Ember")
	require.NoError(t, o.Attach(&component.Player{MoveSpeed: 0.5}))
	return o
}

func TestMeleeHit(t *testing.T) {
	fac, hs, rec := newHitWorld(t)
	registerImpactPrefab(t, fac)
	player := addPlayer(t, fac, 0, 0)
	enemy := addEnemy(t, fac, 0.2, 0, 3, component.EnemyPhysical)

	hs.SpawnHitBox(player, 0.15, 0, 0.1, 0.1, 1, 0.2, component.TeamNeutral, 0)
	require.Equal(t, 1, hs.Active())
	hs.Update(0.016)

	eh := enemy.Get(ecs.KindEnemyHealth).(*component.EnemyHealth)
	require.Equal(t, 2.0, eh.Current)

	rb := enemy.Get(ecs.KindRigidBody).(*component.RigidBody)
	require.Greater(t, rb.KnockVel.X, 0.0, "knockback points away from the attacker")
	require.Greater(t, rb.KnockbackTime, 0.0)

	anim := enemy.Get(ecs.KindSpriteAnimation).(*component.SpriteAnimation)
	require.Equal(t, "knockback", anim.ActiveName())

	var vfx *ecs.GameObject
	for _, o := range fac.Ordered() {
		if o.Name() == "impact" {
			vfx = o
		}
	}
	require.NotNil(t, vfx, "impact effect spawned at the target")
	require.Equal(t, 1, rec.count("enemy_hit"))
	require.Zero(t, hs.Active(), "volume consumed by the hit")
}

func TestOneDamageApplicationPerVolume(t *testing.T) {
	fac, hs, _ := newHitWorld(t)
	player := addPlayer(t, fac, 0, 0)
	enemy := addEnemy(t, fac, 0.2, 0, 5, component.EnemyPhysical)

	hs.SpawnHitBox(player, 0.15, 0, 0.1, 0.1, 1, 1.0, component.TeamPlayer, 0)
	for i := 0; i < 20; i++ {
		hs.Update(0.05)
	}

	eh := enemy.Get(ecs.KindEnemyHealth).(*component.EnemyHealth)
	require.Equal(t, 4.0, eh.Current, "overlap over many frames still lands once")
}

func TestVolumeExpiresWithoutContact(t *testing.T) {
	fac, hs, rec := newHitWorld(t)
	player := addPlayer(t, fac, 0, 0)

	lifetime, dt := 0.25, 0.0625
	hs.SpawnHitBox(player, 5, 5, 0.1, 0.1, 1, lifetime, component.TeamPlayer, 0)

	ticks := int(math.Ceil(lifetime / dt))
	for i := 0; i < ticks-1; i++ {
		hs.Update(dt)
		require.Equal(t, 1, hs.Active())
	}
	hs.Update(dt)
	require.Zero(t, hs.Active())
	require.Equal(t, 1, rec.count("punch"), "pure whiff plays punch")
}

func TestTypeEligibility(t *testing.T) {
	fac, hs, _ := newHitWorld(t)
	player := addPlayer(t, fac, 0, 0)
	ranged := addEnemy(t, fac, 0.2, 0, 3, component.EnemyRanged)

	// A melee swing cannot hurt a ranged enemy.
	hs.SpawnHitBox(player, 0.15, 0, 0.1, 0.1, 1, 0.1, component.TeamPlayer, 0)
	hs.Update(0.016)
	eh := ranged.Get(ecs.KindEnemyHealth).(*component.EnemyHealth)
	require.Equal(t, 3.0, eh.Current)

	// A thrown projectile can.
	hs.SpawnProjectile(player, 0.1, 0, 1, 0, 0.5, 0.08, 0.08, 1, 0.5, component.TeamThrown)
	hs.Update(0.016)
	require.Equal(t, 2.0, eh.Current)
}

func TestOwnerDeathRemovesVolume(t *testing.T) {
	fac, hs, _ := newHitWorld(t)
	player := addPlayer(t, fac, 0, 0)

	hs.SpawnHitBox(player, 0, 0, 0.1, 0.1, 1, 10, component.TeamPlayer, 0)
	fac.Destroy(player)
	fac.Flush()

	hs.Update(0.016)
	require.Zero(t, hs.Active())
}

func TestProjectileGrace(t *testing.T) {
	fac, hs, _ := newHitWorld(t)
	player := addPlayer(t, fac, 0, 0)
	// A neutral body sitting right on the projectile's path.
	addBody(t, fac, "crate", 0.1, 0, 0.2, 0.2, 0, 0)

	hs.SpawnProjectile(player, 0.1, 0, 1, 0, 0, 0.08, 0.08, 1, 2.0, component.TeamThrown)
	require.Equal(t, 1, hs.Active())

	dt := 0.1
	graceTicks := int(1.0 / dt)
	for i := 0; i < graceTicks; i++ {
		hs.Update(dt)
		v := asVolume(hs.blocks[0])
		require.Zero(t, v.contacted, "grace ignores non-actor overlap")
	}

	hs.Update(dt)
	v := asVolume(hs.blocks[0])
	require.EqualValues(t, 1, v.contacted, "normal contact resumes after grace")
}

func TestShortLivedProjectileClampsGrace(t *testing.T) {
	fac, hs, _ := newHitWorld(t)
	player := addPlayer(t, fac, 0, 0)

	hs.SpawnProjectile(player, 0, 0, 1, 0, 0, 0.08, 0.08, 1, 0.3, component.TeamThrown)
	v := asVolume(hs.blocks[0])
	require.Equal(t, 0.3, v.grace)
}

func TestDelayedSwingSounds(t *testing.T) {
	fac, hs, rec := newHitWorld(t)
	player := addPlayer(t, fac, 0, 0)
	addEnemy(t, fac, 0.2, 0, 3, component.EnemyPhysical)

	hs.SpawnHitBox(player, 0.15, 0, 0.1, 0.1, 1, 0.2, component.TeamPlayer, 0.15)
	hs.Update(0.05)
	require.Zero(t, rec.count("slash"), "sound waits out its delay")

	hs.Update(0.1)
	hs.Update(0.1)
	require.Equal(t, 1, rec.count("slash"))
}

func TestPlayerHitSound(t *testing.T) {
	fac, hs, rec := newHitWorld(t)
	enemy := addEnemy(t, fac, 0, 0, 3, component.EnemyPhysical)
	player := addPlayer(t, fac, 0.15, 0)
	require.NoError(t, player.Attach(&component.PlayerHealth{Max: 3, Current: 3}))

	hs.SpawnHitBox(enemy, 0.1, 0, 0.1, 0.1, 3, 0.2, component.TeamNeutral, 0)
	hs.Update(0.016)

	ph := player.Get(ecs.KindPlayerHealth).(*component.PlayerHealth)
	require.Zero(t, ph.Current)
	require.Equal(t, 1, rec.count("player_death"))
}

func TestAuthoredHazardArmsOnce(t *testing.T) {
	fac, hs, _ := newHitWorld(t)
	player := addPlayer(t, fac, 0, 0)
	require.NoError(t, player.Attach(&component.PlayerHealth{Max: 5, Current: 5}))

	trap := addBody(t, fac, "spikes", 0.05, 0, 0.05, 0.05, 0, 0)
	require.NoError(t, trap.Attach(&component.HitBox{
		Width: 0.1, Height: 0.1, Damage: 1, Lifetime: 0.5, Team: component.TeamEnemy,
	}))

	hs.Update(0.016)
	ph := player.Get(ecs.KindPlayerHealth).(*component.PlayerHealth)
	require.Equal(t, 4.0, ph.Current)
	require.True(t, trap.Get(ecs.KindHitBox).(*component.HitBox).Armed)

	hs.Update(0.016)
	require.Equal(t, 4.0, ph.Current, "a hazard arms a single volume")
	require.Zero(t, hs.Active())
}
