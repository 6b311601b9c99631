package component

import (
	"strings"

	"github.com/torchlab/ember/ecs"
)

// Team constrains which targets a damage volume may hit.
type Team uint8

const (
	TeamNeutral Team = iota
	TeamPlayer
	TeamEnemy
	TeamThrown
)

func (t Team) String() string {
	switch t {
	case TeamPlayer:
		return "Player"
	case TeamEnemy:
		return "Enemy"
	case TeamThrown:
		return "Thrown"
	}
	return "Neutral"
}

// ParseTeam resolves a team name, case-insensitive. Unknown names map
// to Neutral.
func ParseTeam(s string) Team {
	switch strings.ToLower(s) {
	case "player":
		return TeamPlayer
	case "enemy":
		return TeamEnemy
	case "thrown":
		return TeamThrown
	}
	return TeamNeutral
}

// HitBox describes a damage volume authored on a prefab, e.g. a trap.
// Arming spawns a live volume in the hit-box system; the Armed flag
// keeps a prefab hazard from spawning twice.
type HitBox struct {
	Width      float64
	Height     float64
	Damage     float64
	Lifetime   float64
	Team       Team
	SoundDelay float64

	Armed bool
}

func (h *HitBox) Kind() ecs.Kind {
	return ecs.KindHitBox
}

func (h *HitBox) Clone() ecs.Component {
	c := *h
	c.Armed = false
	return &c
}

func (h *HitBox) Init(*ecs.GameObject) {}

func (h *HitBox) Update(float64) {}

func (h *HitBox) Load(f *ecs.Fields) error {
	h.Width = f.Float("width", 0.1)
	h.Height = f.Float("height", 0.1)
	h.Damage = f.Float("damage", 1)
	h.Lifetime = f.Float("lifetime", 0.2)
	h.Team = ParseTeam(f.Str("team", "Neutral"))
	h.SoundDelay = f.Float("soundDelay", 0)
	return nil
}

func (h *HitBox) Save() map[string]any {
	return map[string]any{
		"width":      h.Width,
		"height":     h.Height,
		"damage":     h.Damage,
		"lifetime":   h.Lifetime,
		"team":       h.Team.String(),
		"soundDelay": h.SoundDelay,
	}
}
