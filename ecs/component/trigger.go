package component

import "github.com/torchlab/ember/ecs"

// ZoomTrigger adjusts the camera zoom while the player overlaps its
// region.
type ZoomTrigger struct {
	Width  float64
	Height float64
	Zoom   float64
}

func (z *ZoomTrigger) Kind() ecs.Kind {
	return ecs.KindZoomTrigger
}

func (z *ZoomTrigger) Clone() ecs.Component {
	c := *z
	return &c
}

func (z *ZoomTrigger) Init(*ecs.GameObject) {}

func (z *ZoomTrigger) Update(float64) {}

func (z *ZoomTrigger) Load(f *ecs.Fields) error {
	z.Width = f.Float("width", 0)
	z.Height = f.Float("height", 0)
	z.Zoom = f.Float("zoom", 1)
	return nil
}

func (z *ZoomTrigger) Save() map[string]any {
	return map[string]any{
		"width":  z.Width,
		"height": z.Height,
		"zoom":   z.Zoom,
	}
}

// GateTarget marks a region that moves the player to another level
// when entered.
type GateTarget struct {
	Gate        string
	TargetLevel string
	TargetGate  string
	Width       float64
	Height      float64
}

func (g *GateTarget) Kind() ecs.Kind {
	return ecs.KindGateTarget
}

func (g *GateTarget) Clone() ecs.Component {
	c := *g
	return &c
}

func (g *GateTarget) Init(*ecs.GameObject) {}

func (g *GateTarget) Update(float64) {}

func (g *GateTarget) Load(f *ecs.Fields) error {
	g.Gate = f.Str("gate", "")
	g.TargetLevel = f.Str("targetLevel", "")
	g.TargetGate = f.Str("targetGate", "")
	g.Width = f.Float("width", 0)
	g.Height = f.Float("height", 0)
	return nil
}

func (g *GateTarget) Save() map[string]any {
	return map[string]any{
		"gate":        g.Gate,
		"targetLevel": g.TargetLevel,
		"targetGate":  g.TargetGate,
		"width":       g.Width,
		"height":      g.Height,
	}
}
