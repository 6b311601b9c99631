package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/torchlab/ember/ecs"
	"github.com/torchlab/ember/ecs/component"
)

func newAIWorld(t *testing.T) (*ecs.Factory, *DTreeSystem, *HitBoxSystem) {
	t.Helper()
	fac := newWorld(t)
	hs, err := NewHitBoxSystem(zap.NewNop(), fac, nil, "")
	require.NoError(t, err)
	phys := NewPhysicsSystem(fac)
	return fac, NewDTreeSystem(zap.NewNop(), fac, hs, phys), hs
}

func addPatroller(t *testing.T, fac *ecs.Factory, x float64) *ecs.GameObject {
	t.Helper()
	o := addEnemy(t, fac, x, 0, 3, component.EnemyPhysical)
	en := o.Get(ecs.KindEnemy).(*component.Enemy)
	en.Dir = 1
	en.Facing = 1
	en.PatrolSpeed = 0.2
	en.PatrolMinX = -1
	en.PatrolMaxX = 1
	en.PauseDuration = 0.5
	en.MoveSpeed = 0.4
	en.StopDistance = 0.05
	en.ChaseDuration = 1.0
	return o
}

func TestPatrolMovesAndFlipsAtBoundary(t *testing.T) {
	fac, dts, _ := newAIWorld(t)
	enemy := addPatroller(t, fac, 0.99)
	en := enemy.Get(ecs.KindEnemy).(*component.Enemy)
	rb := enemy.Get(ecs.KindRigidBody).(*component.RigidBody)

	dts.Update(0.1)
	require.Greater(t, rb.Vel.X, 0.0)

	// Past the range boundary the enemy flips and pauses.
	enemy.Get(ecs.KindTransform).(*component.Transform).Pos.X = 1.01
	dts.Update(0.1)
	require.Equal(t, -1.0, en.Dir)
	require.Zero(t, rb.Vel.X)
	require.Equal(t, en.PauseDuration, en.PauseTimer)

	// Held still until the pause elapses.
	dts.Update(0.3)
	require.Zero(t, rb.Vel.X)
	dts.Update(0.3)
	dts.Update(0.1)
	require.Less(t, rb.Vel.X, 0.0)
}

func TestPatrolFlipsOnWall(t *testing.T) {
	fac, dts, _ := newAIWorld(t)
	enemy := addPatroller(t, fac, 0)
	en := enemy.Get(ecs.KindEnemy).(*component.Enemy)
	en.PatrolMinX = 0
	en.PatrolMaxX = 0 // no range boundary
	addBody(t, fac, "rect_wall", 0.15, 0, 0.05, 0.5, 0, 0)

	dts.Update(0.1)
	require.Equal(t, -1.0, en.Dir)
}

func TestProximityLatchAndChase(t *testing.T) {
	fac, dts, _ := newAIWorld(t)
	enemy := addPatroller(t, fac, 0)
	en := enemy.Get(ecs.KindEnemy).(*component.Enemy)
	rb := enemy.Get(ecs.KindRigidBody).(*component.RigidBody)
	player := addPlayer(t, fac, 0.15, 0)

	dts.Update(0.1)
	require.True(t, en.HasSeenPlayer)

	// The latch keeps the chase alive outside proximity.
	player.Get(ecs.KindTransform).(*component.Transform).Pos.X = 0.6
	dts.Update(0.1)
	require.True(t, en.HasSeenPlayer)
	require.Greater(t, rb.Vel.X, 0.0, "chasing toward the player")

	// After a full chase duration without re-proximity it gives up.
	for i := 0; i < 12; i++ {
		dts.Update(0.1)
	}
	require.False(t, en.HasSeenPlayer)
}

func TestMeleeAttackSpawnsVolume(t *testing.T) {
	fac, dts, hs := newAIWorld(t)
	enemy := addPatroller(t, fac, 0)
	require.NoError(t, enemy.Attach(&component.EnemyAttack{
		Damage: 1, Cooldown: 1, Range: 0.3, Lifetime: 0.2,
	}))
	addPlayer(t, fac, 0.15, 0)

	dts.Update(0.1)
	require.Equal(t, 1, hs.Active())

	atk := enemy.Get(ecs.KindEnemyAttack).(*component.EnemyAttack)
	require.Equal(t, atk.Cooldown, atk.CooldownTimer)

	// The cooldown gates the next swing.
	dts.Update(0.1)
	require.Equal(t, 1, hs.Active())
}

func TestDeadEnemySkipsTree(t *testing.T) {
	fac, dts, _ := newAIWorld(t)
	enemy := addPatroller(t, fac, 0)
	rb := enemy.Get(ecs.KindRigidBody).(*component.RigidBody)
	rb.Vel.X = 0.4
	enemy.Get(ecs.KindEnemyHealth).(*component.EnemyHealth).Current = 0

	dts.Update(0.1)
	require.Zero(t, rb.Vel.X)
	require.Zero(t, rb.Vel.Y)
}

func TestScriptedCondition(t *testing.T) {
	fac, dts, _ := newAIWorld(t)
	enemy := addPatroller(t, fac, 0)
	en := enemy.Get(ecs.KindEnemy).(*component.Enemy)
	en.Dir = -1 // builtin behavior would patrol left
	rb := enemy.Get(ecs.KindRigidBody).(*component.RigidBody)
	addPlayer(t, fac, 0.6, 0) // outside builtin proximity

	script := filepath.Join(t.TempDir(), "brave.tengo")
	require.NoError(t, os.WriteFile(script, []byte("engaged := dist < 1.0 && health > 0\n"), 0o644))
	require.NoError(t, enemy.Attach(&component.EnemyDecisionTree{Tree: "default", ScriptPath: script}))

	dts.Update(0.1)
	require.Greater(t, rb.Vel.X, 0.0, "script engages beyond builtin radius")
}

func TestBrokenScriptFallsBack(t *testing.T) {
	fac, dts, _ := newAIWorld(t)
	enemy := addPatroller(t, fac, 0)
	rb := enemy.Get(ecs.KindRigidBody).(*component.RigidBody)
	require.NoError(t, enemy.Attach(&component.EnemyDecisionTree{
		Tree:       "default",
		ScriptPath: filepath.Join(t.TempDir(), "missing.tengo"),
	}))

	// No player in range: the builtin condition patrols.
	dts.Update(0.1)
	require.Greater(t, rb.Vel.X, 0.0)
}
