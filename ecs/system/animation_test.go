package system

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/torchlab/ember/ecs"
	"github.com/torchlab/ember/ecs/component"
)

func TestClipAdvancesAndLoops(t *testing.T) {
	clip := &component.Clip{
		Name: "run", Rows: 2, Columns: 3,
		StartFrame: 0, EndFrame: 5, FPS: 10, Loop: true,
	}

	stepClip(clip, 0.05)
	require.Zero(t, clip.CurrentFrame, "half a frame accumulates")
	stepClip(clip, 0.05)
	require.Equal(t, 1, clip.CurrentFrame)

	for i := 0; i < 5; i++ {
		stepClip(clip, 0.1)
	}
	require.Equal(t, 0, clip.CurrentFrame, "looping clip wraps to start")
}

func TestOneShotHoldsLastFrame(t *testing.T) {
	clip := &component.Clip{
		Name: "death", Columns: 4,
		StartFrame: 0, EndFrame: 3, FPS: 10,
	}
	for i := 0; i < 10; i++ {
		stepClip(clip, 0.1)
	}
	require.Equal(t, 3, clip.CurrentFrame)
	require.True(t, Finished(clip))
}

func TestFrameAddressing(t *testing.T) {
	clip := &component.Clip{Rows: 2, Columns: 3, CurrentFrame: 4}
	col, row := clip.Cell()
	require.Equal(t, 1, col)
	require.Equal(t, 1, row)
}

func TestAnimationSystemAdvancesActiveClip(t *testing.T) {
	fac := newWorld(t)
	o := fac.CreateEmptyComposition()
	require.NoError(t, o.Attach(&component.SpriteAnimation{Clips: []component.Clip{
		{Name: "idle", Columns: 2, StartFrame: 0, EndFrame: 1, FPS: 10, Loop: true},
		{Name: "run", Columns: 2, StartFrame: 0, EndFrame: 1, FPS: 10, Loop: true},
	}}))

	as := NewAnimationSystem(fac, nil)
	as.Update(0.1)

	anim := o.Get(ecs.KindSpriteAnimation).(*component.SpriteAnimation)
	require.Equal(t, 1, anim.ActiveClip().CurrentFrame)
	require.Equal(t, "idle", anim.ActiveName())

	// Switching clips rewinds the new clip's playhead.
	require.True(t, anim.SetActive("run"))
	require.Zero(t, anim.ActiveClip().CurrentFrame)
}
