package system

import (
	"go.uber.org/zap"

	"github.com/torchlab/ember/ecs"
	"github.com/torchlab/ember/ecs/component"
)

// ParticleSystem ages short-lived effect entities and queues them for
// destruction when their clip or lifetime runs out. Effects are plain
// factory entities so they share the normal update path.
type ParticleSystem struct {
	log *zap.Logger
	fac *ecs.Factory

	ttl map[ecs.ObjectId]float64
}

func NewParticleSystem(log *zap.Logger, fac *ecs.Factory) *ParticleSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &ParticleSystem{log: log, fac: fac, ttl: make(map[ecs.ObjectId]float64)}
}

// Spawn clones a prefab at a position and tracks it for ttl seconds.
// A ttl of zero lets the effect live until its one-shot clip finishes.
func (p *ParticleSystem) Spawn(prefab string, x, y, ttl float64) *ecs.GameObject {
	o := p.fac.Create(prefab)
	if o == nil {
		return nil
	}
	if tr, ok := o.Get(ecs.KindTransform).(*component.Transform); ok {
		tr.Pos.X = x
		tr.Pos.Y = y
	}
	p.ttl[o.ID()] = ttl
	return o
}

func (p *ParticleSystem) Update(dt float64) {
	if p == nil {
		return
	}
	for id, remaining := range p.ttl {
		o := p.fac.GetObjectWithID(id)
		if o == nil {
			delete(p.ttl, id)
			continue
		}

		if remaining > 0 {
			remaining -= dt
			p.ttl[id] = remaining
			if remaining <= 0 {
				p.fac.Destroy(o)
				delete(p.ttl, id)
			}
			continue
		}

		if anim, ok := o.Get(ecs.KindSpriteAnimation).(*component.SpriteAnimation); ok {
			if Finished(anim.ActiveClip()) {
				p.fac.Destroy(o)
				delete(p.ttl, id)
			}
		}
	}
}

// Forget drops all tracked ids, called on level transitions.
func (p *ParticleSystem) Forget() {
	p.ttl = make(map[ecs.ObjectId]float64)
}
