package component

import (
	"github.com/torchlab/ember/ecs"
)

// Player marks the controllable entity and carries movement tuning.
type Player struct {
	MoveSpeed float64

	// State is the animation state machine's current label.
	State string
}

func (p *Player) Kind() ecs.Kind {
	return ecs.KindPlayer
}

func (p *Player) Clone() ecs.Component {
	c := *p
	return &c
}

func (p *Player) Init(*ecs.GameObject) {
	if p.State == "" {
		p.State = "Idle"
	}
}

func (p *Player) Update(float64) {}

func (p *Player) Load(f *ecs.Fields) error {
	p.MoveSpeed = f.Float("moveSpeed", 0.5)
	p.State = f.Str("state", "Idle")
	return nil
}

func (p *Player) Save() map[string]any {
	return map[string]any{
		"moveSpeed": p.MoveSpeed,
		"state":     p.State,
	}
}

// PlayerAttack holds melee combo tuning and the throw queue.
type PlayerAttack struct {
	Damage          float64
	Range           float64
	Lifetime        float64
	SoundDelay      float64
	ThrowDamage     float64
	ProjectileSpeed float64

	Combo       int // cycles 1 -> 2 -> 3
	AttackTimer float64
	ThrowQueued bool
}

func (p *PlayerAttack) Kind() ecs.Kind {
	return ecs.KindPlayerAttack
}

func (p *PlayerAttack) Clone() ecs.Component {
	c := *p
	c.Combo = 0
	c.AttackTimer = 0
	c.ThrowQueued = false
	return &c
}

func (p *PlayerAttack) Init(*ecs.GameObject) {}

func (p *PlayerAttack) Update(dt float64) {
	if p.AttackTimer > 0 {
		p.AttackTimer -= dt
		if p.AttackTimer < 0 {
			p.AttackTimer = 0
		}
	}
}

func (p *PlayerAttack) Load(f *ecs.Fields) error {
	p.Damage = f.Float("damage", 1)
	p.Range = f.Float("range", 0.15)
	p.Lifetime = f.Float("lifetime", 0.2)
	p.SoundDelay = f.Float("soundDelay", 0.1)
	p.ThrowDamage = f.Float("throwDamage", 1)
	p.ProjectileSpeed = f.Float("projectileSpeed", 1.5)
	return nil
}

func (p *PlayerAttack) Save() map[string]any {
	return map[string]any{
		"damage":          p.Damage,
		"range":           p.Range,
		"lifetime":        p.Lifetime,
		"soundDelay":      p.SoundDelay,
		"throwDamage":     p.ThrowDamage,
		"projectileSpeed": p.ProjectileSpeed,
	}
}

// PlayerHealth tracks hit points and post-hit invulnerability.
type PlayerHealth struct {
	Max     float64
	Current float64

	Invulnerable bool
	InvulnTime   float64
}

func (p *PlayerHealth) Kind() ecs.Kind {
	return ecs.KindPlayerHealth
}

func (p *PlayerHealth) Clone() ecs.Component {
	c := *p
	return &c
}

func (p *PlayerHealth) Init(*ecs.GameObject) {
	if p.Current == 0 && p.Max > 0 {
		p.Current = p.Max
	}
}

func (p *PlayerHealth) Update(dt float64) {
	if p.InvulnTime > 0 {
		p.InvulnTime -= dt
		if p.InvulnTime <= 0 {
			p.InvulnTime = 0
			p.Invulnerable = false
		}
	}
}

// Alive reports whether the player has hit points left.
func (p *PlayerHealth) Alive() bool {
	return p.Current > 0
}

// ApplyDamage subtracts health unless invulnerable. Returns true when
// damage landed.
func (p *PlayerHealth) ApplyDamage(amount float64) bool {
	if p.Invulnerable || amount <= 0 || !p.Alive() {
		return false
	}
	p.Current -= amount
	if p.Current < 0 {
		p.Current = 0
	}
	return true
}

func (p *PlayerHealth) Load(f *ecs.Fields) error {
	p.Max = f.Float("max", 5)
	p.Current = f.Float("current", p.Max)
	p.Invulnerable = f.Bool("invulnerable", false)
	return nil
}

func (p *PlayerHealth) Save() map[string]any {
	return map[string]any{
		"max":          p.Max,
		"current":      p.Current,
		"invulnerable": p.Invulnerable,
	}
}

// PlayerHUD names the textures the HUD renderer reads; the core never
// draws it.
type PlayerHUD struct {
	HeartTexture string
	FrameTexture string
}

func (p *PlayerHUD) Kind() ecs.Kind {
	return ecs.KindPlayerHUD
}

func (p *PlayerHUD) Clone() ecs.Component {
	c := *p
	return &c
}

func (p *PlayerHUD) Init(*ecs.GameObject) {}

func (p *PlayerHUD) Update(float64) {}

func (p *PlayerHUD) Load(f *ecs.Fields) error {
	p.HeartTexture = f.Str("heartTexture", "")
	p.FrameTexture = f.Str("frameTexture", "")
	return nil
}

func (p *PlayerHUD) Save() map[string]any {
	return map[string]any{
		"heartTexture": p.HeartTexture,
		"frameTexture": p.FrameTexture,
	}
}
