package component

import "github.com/torchlab/ember/ecs"

// AudioEntry names one sound an object can play.
type AudioEntry struct {
	Name   string
	File   string
	Volume float64
}

// Audio lists the sounds available to its owner. Playback goes
// through the resource cache keyed by File.
type Audio struct {
	Entries []AudioEntry
}

func (a *Audio) Kind() ecs.Kind {
	return ecs.KindAudio
}

func (a *Audio) Clone() ecs.Component {
	c := &Audio{Entries: make([]AudioEntry, len(a.Entries))}
	copy(c.Entries, a.Entries)
	return c
}

func (a *Audio) Init(*ecs.GameObject) {}

func (a *Audio) Update(float64) {}

// Entry looks up a sound by name.
func (a *Audio) Entry(name string) (AudioEntry, bool) {
	for _, e := range a.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return AudioEntry{}, false
}

func (a *Audio) Load(f *ecs.Fields) error {
	a.Entries = a.Entries[:0]
	for _, body := range f.List("sounds") {
		ef := ecs.NewFields(body)
		a.Entries = append(a.Entries, AudioEntry{
			Name:   ef.Str("name", ""),
			File:   ef.Str("file", ""),
			Volume: ef.Float("volume", 1),
		})
	}
	return nil
}

func (a *Audio) Save() map[string]any {
	sounds := make([]any, 0, len(a.Entries))
	for _, e := range a.Entries {
		sounds = append(sounds, map[string]any{
			"name":   e.Name,
			"file":   e.File,
			"volume": e.Volume,
		})
	}
	return map[string]any{"sounds": sounds}
}
