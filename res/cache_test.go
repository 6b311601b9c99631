package res

import (
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTextures struct {
	calls    map[string]int
	fail     error
	cleanups int
}

func (f *fakeTextures) LoadTexture(path string) (*ebiten.Image, error) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[path]++
	if f.fail != nil {
		return nil, f.fail
	}
	return ebiten.NewImage(2, 2), nil
}

func (f *fakeTextures) Cleanup() { f.cleanups++ }

type fakePlayer struct{ playing bool }

func (p *fakePlayer) Play()             { p.playing = true }
func (p *fakePlayer) Pause()            { p.playing = false }
func (p *fakePlayer) Rewind() error     { return nil }
func (p *fakePlayer) IsPlaying() bool   { return p.playing }
func (p *fakePlayer) SetVolume(float64) {}

type fakeSounds struct {
	calls     int
	fail      error
	shutdowns int
}

func (f *fakeSounds) LoadSound(string) (Player, error) {
	f.calls++
	if f.fail != nil {
		return nil, f.fail
	}
	return &fakePlayer{}, nil
}

func (f *fakeSounds) Shutdown() { f.shutdowns++ }

func newTestCache(tb *fakeTextures, sb *fakeSounds) *Cache {
	return NewCache(zap.NewNop(), tb, sb)
}

func TestKindForPath(t *testing.T) {
	cases := []struct {
		path string
		kind Kind
		err  error
	}{
		{"ember_sheet.png", Texture, nil},
		{"art/Tiles.JPG", Texture, nil},
		{"slash.wav", Sound, nil},
		{"theme.mp3", Sound, nil},
		{"theme.ogg", All, ErrUnsupportedType},
		{"readme.txt", All, ErrUnsupportedType},
		{"noext", All, ErrUnsupportedType},
	}
	for _, c := range cases {
		kind, err := KindForPath(c.path)
		if c.err != nil {
			require.ErrorIs(t, err, c.err, c.path)
			continue
		}
		require.NoError(t, err, c.path)
		require.Equal(t, c.kind, kind, c.path)
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	tb := &fakeTextures{}
	c := newTestCache(tb, &fakeSounds{})

	require.NoError(t, c.Load("a.png"))
	require.NoError(t, c.Load("a.png"))
	require.Equal(t, 1, tb.calls["a.png"])
	require.True(t, c.Loaded("a.png"))

	first := c.Texture("a.png")
	require.NotNil(t, first)
	require.Same(t, first, c.Texture("a.png"))
	require.Equal(t, 1, tb.calls["a.png"])
}

func TestLoadErrors(t *testing.T) {
	tb := &fakeTextures{fail: errors.New("decode boom")}
	sb := &fakeSounds{fail: ErrFileNotFound}
	c := newTestCache(tb, sb)

	require.ErrorIs(t, c.Load("bad.png"), ErrBackendLoadFailure)
	require.ErrorIs(t, c.Load("gone.wav"), ErrFileNotFound)
	require.ErrorIs(t, c.Load("what.xyz"), ErrUnsupportedType)

	// Failed loads leave nothing resident.
	require.False(t, c.Loaded("bad.png"))
	require.Nil(t, c.Texture("bad.png"))
}

func TestUnload(t *testing.T) {
	tb := &fakeTextures{}
	sb := &fakeSounds{}
	c := newTestCache(tb, sb)

	require.NoError(t, c.Load("a.png"))
	require.NoError(t, c.Load("b.png"))
	require.NoError(t, c.Load("hit.wav"))
	require.Equal(t, 3, c.Len(All))
	require.Equal(t, 2, c.Len(Texture))
	require.Equal(t, 1, c.Len(Sound))

	c.Unload("a.png")
	c.Unload("a.png") // absent path is a no-op
	require.False(t, c.Loaded("a.png"))
	require.Equal(t, 2, c.Len(All))

	c.UnloadAll(Texture)
	require.Equal(t, 0, c.Len(Texture))
	require.True(t, c.Loaded("hit.wav"))

	c.UnloadAll(All)
	require.Equal(t, 0, c.Len(All))
}

func TestUnloadAllTearsDownBackends(t *testing.T) {
	tb := &fakeTextures{}
	sb := &fakeSounds{}
	c := newTestCache(tb, sb)

	require.NoError(t, c.Load("a.png"))
	require.NoError(t, c.Load("hit.wav"))
	p := c.Sound("hit.wav")
	p.Play()

	c.UnloadAll(Texture)
	require.Zero(t, tb.cleanups, "class unloads leave backends alone")
	require.Zero(t, sb.shutdowns)

	c.UnloadAll(All)
	require.Equal(t, 1, tb.cleanups)
	require.Equal(t, 1, sb.shutdowns)
	require.False(t, p.IsPlaying(), "resident players stop on full unload")
}

func TestSoundOnDemand(t *testing.T) {
	sb := &fakeSounds{}
	c := newTestCache(&fakeTextures{}, sb)

	p := c.Sound("slash.wav")
	require.NotNil(t, p)
	require.Equal(t, 1, sb.calls)
	require.Same(t, p, c.Sound("slash.wav"))
	require.Equal(t, 1, sb.calls)
}
