package component

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/torchlab/ember/ecs"
)

// Clip is one named sprite-sheet animation: a grid layout, a frame
// range, playback speed, and the runtime playhead.
type Clip struct {
	Name        string
	Rows        int
	Columns     int
	TotalFrames int
	StartFrame  int
	EndFrame    int
	FPS         float64
	Loop        bool
	SheetKey    string

	// Sheet is resolved lazily from SheetKey through the resource cache.
	Sheet *ebiten.Image

	CurrentFrame int
	Accumulator  float64
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.FPS <= 0 {
		return 0
	}
	return float64(c.EndFrame-c.StartFrame+1) / c.FPS
}

// Cell returns the sheet column and row of the current frame. UV
// origin is bottom-left; the renderer flips rows accordingly.
func (c *Clip) Cell() (col, row int) {
	if c.Columns <= 0 {
		return 0, 0
	}
	return c.CurrentFrame % c.Columns, c.CurrentFrame / c.Columns
}

// SpriteAnimation is a set of clips with one active index. A legacy
// per-frame texture list is tolerated for old prefabs.
type SpriteAnimation struct {
	Clips  []Clip
	Active int

	// LegacyFrames is the old one-texture-per-frame representation.
	LegacyFrames []string
}

func (a *SpriteAnimation) Kind() ecs.Kind {
	return ecs.KindSpriteAnimation
}

func (a *SpriteAnimation) Clone() ecs.Component {
	c := &SpriteAnimation{Active: a.Active}
	c.Clips = make([]Clip, len(a.Clips))
	copy(c.Clips, a.Clips)
	c.LegacyFrames = append([]string(nil), a.LegacyFrames...)
	return c
}

func (a *SpriteAnimation) Init(*ecs.GameObject) {
	if a.Active < 0 || a.Active >= len(a.Clips) {
		a.Active = 0
	}
}

func (a *SpriteAnimation) Update(float64) {}

// ActiveClip returns the clip being advanced, or nil.
func (a *SpriteAnimation) ActiveClip() *Clip {
	if a.Active < 0 || a.Active >= len(a.Clips) {
		return nil
	}
	return &a.Clips[a.Active]
}

// ActiveName returns the active clip's name, or "".
func (a *SpriteAnimation) ActiveName() string {
	if c := a.ActiveClip(); c != nil {
		return c.Name
	}
	return ""
}

// ClipIndex returns the index of a named clip, or -1.
func (a *SpriteAnimation) ClipIndex(name string) int {
	for i := range a.Clips {
		if a.Clips[i].Name == name {
			return i
		}
	}
	return -1
}

// SetActive switches to a named clip, rewinding its playhead. Setting
// the already-active clip is a no-op. Returns false for unknown names.
func (a *SpriteAnimation) SetActive(name string) bool {
	idx := a.ClipIndex(name)
	if idx < 0 {
		return false
	}
	if idx == a.Active {
		return true
	}
	a.Active = idx
	clip := &a.Clips[idx]
	clip.CurrentFrame = clip.StartFrame
	clip.Accumulator = 0
	return true
}

func (a *SpriteAnimation) Load(f *ecs.Fields) error {
	a.Clips = a.Clips[:0]
	for _, body := range f.List("clips") {
		cf := ecs.NewFields(body)
		clip := Clip{
			Name:        cf.Str("name", ""),
			Rows:        cf.Int("rows", 1),
			Columns:     cf.Int("columns", 1),
			TotalFrames: cf.Int("frames", 1),
			StartFrame:  cf.Int("startFrame", 0),
			EndFrame:    cf.Int("endFrame", 0),
			FPS:         cf.Float("fps", 12),
			Loop:        cf.Bool("loop", true),
			SheetKey:    cf.Str("sheet", ""),
			// Runtime fields are present in snapshots only.
			CurrentFrame: cf.Int("currentFrame", cf.Int("startFrame", 0)),
			Accumulator:  cf.Float("accumulator", 0),
		}
		a.Clips = append(a.Clips, clip)
	}
	a.LegacyFrames = f.Strings("frames")
	a.Active = 0
	if name := f.Str("activeAnimation", ""); name != "" {
		if idx := a.ClipIndex(name); idx >= 0 {
			a.Active = idx
		}
	}
	return nil
}

func (a *SpriteAnimation) Save() map[string]any {
	clips := make([]map[string]any, 0, len(a.Clips))
	for i := range a.Clips {
		c := &a.Clips[i]
		clips = append(clips, map[string]any{
			"name":         c.Name,
			"rows":         c.Rows,
			"columns":      c.Columns,
			"frames":       c.TotalFrames,
			"startFrame":   c.StartFrame,
			"endFrame":     c.EndFrame,
			"fps":          c.FPS,
			"loop":         c.Loop,
			"sheet":        c.SheetKey,
			"currentFrame": c.CurrentFrame,
			"accumulator":  c.Accumulator,
		})
	}
	body := map[string]any{
		"clips":           clips,
		"activeAnimation": a.ActiveName(),
	}
	if len(a.LegacyFrames) > 0 {
		body["frames"] = a.LegacyFrames
	}
	return body
}
