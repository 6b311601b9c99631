package ecs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/torchlab/ember/ecs"
	"github.com/torchlab/ember/ecs/component"
	"github.com/torchlab/ember/prefabs"
)

const emberPrefab = `{
  "GameObject": {
    "name": "Ember",
    "layer": "gameplay",
    "Components": {
      "Transform": {"x": 1.5, "y": -0.5},
      "RigidBody": {"halfWidth": 0.2, "halfHeight": 0.2},
      "SpriteAnimation": {
        "clips": [
          {"name": "idle", "rows": 1, "columns": 4, "frames": 4, "startFrame": 0, "endFrame": 3, "fps": 8, "sheet": "ember_sheet"},
          {"name": "run", "rows": 1, "columns": 6, "frames": 6, "startFrame": 0, "endFrame": 5, "fps": 12, "sheet": "ember_run"}
        ],
        "activeAnimation": "idle"
      }
    }
  }
}`

const smallLevel = `{
  "name": "cavern",
  "GameObjects": [
    {"GameObject": {"name": "Ember", "Components": {"Transform": {"x": 0, "y": 0}, "Player": {"moveSpeed": 0.5}}}},
    {"GameObject": {"name": "rect_floor", "Components": {"Transform": {"x": 0, "y": -1}, "RigidBody": {"halfWidth": 4, "halfHeight": 0.5}}}}
  ],
  "gates": [
    {"name": "east", "x": 5, "y": 0, "width": 0.5, "height": 2, "targetLevel": "forest", "targetGate": "west"}
  ]
}`

func newFactory(t *testing.T) *ecs.Factory {
	t.Helper()
	component.RegisterBuiltins()
	return ecs.NewFactory(zap.NewNop(), ecs.Options{ObjectsPerPage: 8})
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func loadEmber(t *testing.T, f *ecs.Factory) {
	t.Helper()
	path := writeFile(t, t.TempDir(), "ember.json", emberPrefab)
	master, err := f.CreateTemplate(path)
	require.NoError(t, err)
	f.RegisterPrefab(master)
}

func TestCreateFromPrefab(t *testing.T) {
	f := newFactory(t)
	loadEmber(t, f)
	require.True(t, f.HasPrefab("Ember"))

	a := f.Create("Ember")
	b := f.Create("Ember")
	require.NotNil(t, a)
	require.NotNil(t, b)
	require.NotEqual(t, a.ID(), b.ID())
	require.Equal(t, "Ember", a.Name())
	require.Equal(t, "gameplay", a.Layer())

	// Component attachment order follows the document.
	comps := a.Components()
	require.Len(t, comps, 3)
	require.Equal(t, ecs.KindTransform, comps[0].Kind())
	require.Equal(t, ecs.KindRigidBody, comps[1].Kind())
	require.Equal(t, ecs.KindSpriteAnimation, comps[2].Kind())

	// Instances are deep copies: mutating one leaves its sibling and
	// the cached master untouched.
	ta := a.Get(ecs.KindTransform).(*component.Transform)
	tb := b.Get(ecs.KindTransform).(*component.Transform)
	require.Equal(t, 1.5, ta.Pos.X)
	ta.Pos.X = 99
	require.Equal(t, 1.5, tb.Pos.X)

	c := f.Create("Ember")
	require.Equal(t, 1.5, c.Get(ecs.KindTransform).(*component.Transform).Pos.X)
}

func TestCreateUnknownPrefab(t *testing.T) {
	f := newFactory(t)
	require.Nil(t, f.Create("nobody"))
}

func TestUnknownComponentSkipped(t *testing.T) {
	f := newFactory(t)
	path := writeFile(t, t.TempDir(), "p.json",
		`{"GameObject": {"name": "p", "Components": {"Transform": {}, "Wobble": {"amp": 3}}}}`)
	master, err := f.CreateTemplate(path)
	require.NoError(t, err)
	require.Len(t, master.Components(), 1)
	require.True(t, master.Has(ecs.KindTransform))
}

func TestDuplicateKindInvalidatesPrefab(t *testing.T) {
	f := newFactory(t)
	doc := &prefabs.Document{
		Name: "dup",
		Components: []prefabs.ComponentEntry{
			{Name: "Transform", Body: map[string]any{}},
			{Name: "Transform", Body: map[string]any{}},
		},
	}
	_, err := f.InstantiateFromSnapshot(doc)
	require.ErrorIs(t, err, ecs.ErrInvalidPrefab)
}

func TestDeferredDestroy(t *testing.T) {
	f := newFactory(t)
	loadEmber(t, f)

	o := f.Create("Ember")
	id := o.ID()
	f.Destroy(o)

	// The entity stays resolvable until the next flush boundary.
	require.Same(t, o, f.GetObjectWithID(id))

	f.Destroy(o) // double destroy is a no-op
	f.Update(0)
	require.Nil(t, f.GetObjectWithID(id))

	// Ids are never reused.
	next := f.Create("Ember")
	require.Greater(t, next.ID(), id)
}

func TestDestroyedSkipsUpdateTick(t *testing.T) {
	f := newFactory(t)
	loadEmber(t, f)

	o := f.Create("Ember")
	atk := &component.PlayerAttack{AttackTimer: 1}
	require.NoError(t, o.Attach(atk))

	f.Update(0.25)
	require.InDelta(t, 0.75, atk.AttackTimer, 1e-9)

	f.Destroy(o)
	f.Update(0.25)
	require.InDelta(t, 0.75, atk.AttackTimer, 1e-9)
}

func TestSnapshotRoundTrip(t *testing.T) {
	f := newFactory(t)
	loadEmber(t, f)

	o := f.Create("Ember")
	tr := o.Get(ecs.KindTransform).(*component.Transform)
	tr.Pos.X = 4.25
	anim := o.Get(ecs.KindSpriteAnimation).(*component.SpriteAnimation)
	require.True(t, anim.SetActive("run"))
	anim.ActiveClip().CurrentFrame = 3
	anim.ActiveClip().Accumulator = 0.04

	doc := f.SnapshotGameObject(o)
	require.Equal(t, "Ember", doc.Name)

	clone, err := f.InstantiateFromSnapshot(doc)
	require.NoError(t, err)
	require.NotEqual(t, o.ID(), clone.ID())

	ct := clone.Get(ecs.KindTransform).(*component.Transform)
	require.Equal(t, 4.25, ct.Pos.X)
	ca := clone.Get(ecs.KindSpriteAnimation).(*component.SpriteAnimation)
	require.Equal(t, "run", ca.ActiveName())
	require.Equal(t, 3, ca.ActiveClip().CurrentFrame)
	require.InDelta(t, 0.04, ca.ActiveClip().Accumulator, 1e-9)
}

func TestCreateLevelAndReload(t *testing.T) {
	f := newFactory(t)
	path := writeFile(t, t.TempDir(), "cavern.json", smallLevel)

	objs, err := f.CreateLevel(path)
	require.NoError(t, err)
	require.Len(t, objs, 2)
	require.Equal(t, path, f.LevelPath())
	require.Len(t, f.Gates(), 1)
	require.Equal(t, "forest", f.Gates()[0].TargetLevel)

	firstIDs := map[ecs.ObjectId]bool{}
	for _, o := range objs {
		firstIDs[o.ID()] = true
	}

	// Reload: drain everything, reclaim pages, rebuild from the same
	// document. Every entity comes back under a fresh id.
	f.DestroyAll()
	f.Flush()
	require.Empty(t, f.Ordered())
	require.Greater(t, f.FreeEmptyPages(), 0, "draining the level empties at least one page")

	again, err := f.CreateLevel(f.LevelPath())
	require.NoError(t, err)
	require.Len(t, again, 2)
	for _, o := range again {
		require.False(t, firstIDs[o.ID()])
	}
}

func TestCreateLevelFailureLeavesSetUntouched(t *testing.T) {
	f := newFactory(t)
	loadEmber(t, f)
	survivor := f.Create("Ember")

	bad := `{"name": "broken", "GameObjects": [{"GameObject": {"name": "x"}}]}`
	path := writeFile(t, t.TempDir(), "broken.json", bad)
	_, err := f.CreateLevel(path)
	require.Error(t, err)

	require.Len(t, f.Ordered(), 1)
	require.Same(t, survivor, f.GetObjectWithID(survivor.ID()))
}

func TestLoadPrefabDir(t *testing.T) {
	f := newFactory(t)
	dir := t.TempDir()
	writeFile(t, dir, "a_ember.json", emberPrefab)
	writeFile(t, dir, "notes.json", `{"scratch": true}`)

	require.NoError(t, f.LoadPrefabDir(dir))
	require.True(t, f.HasPrefab("Ember"))
	require.NotNil(t, f.Create("Ember"))
}

func TestLayerRegistration(t *testing.T) {
	f := newFactory(t)
	o := f.CreateEmptyComposition()
	o.SetLayer("background")

	require.Contains(t, f.Layers().Names(), "background")
	require.True(t, f.Layers().Enabled("background"))
	f.Layers().SetEnabled("background", false)
	require.False(t, f.Layers().Enabled("background"))
}
