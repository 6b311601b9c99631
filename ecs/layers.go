package ecs

// Layers is the registry of named entity partitions. Physics and hit
// detection skip entities on disabled layers.
type Layers struct {
	order   []string
	enabled map[string]bool
}

// DefaultLayer is used by entities whose prefab names no layer.
const DefaultLayer = "gameplay"

func NewLayers() *Layers {
	l := &Layers{enabled: make(map[string]bool)}
	l.Register(DefaultLayer)
	return l
}

// Register adds a layer, enabled, if it is not already known.
func (l *Layers) Register(name string) {
	if name == "" {
		return
	}
	if _, ok := l.enabled[name]; ok {
		return
	}
	l.order = append(l.order, name)
	l.enabled[name] = true
}

// Enabled reports whether a layer is active. Unknown layers are
// treated as enabled so entities never silently vanish.
func (l *Layers) Enabled(name string) bool {
	if name == "" {
		return true
	}
	v, ok := l.enabled[name]
	if !ok {
		return true
	}
	return v
}

// SetEnabled toggles a layer, registering it if needed.
func (l *Layers) SetEnabled(name string, enabled bool) {
	if name == "" {
		return
	}
	l.Register(name)
	l.enabled[name] = enabled
}

// Names returns the registered layers in registration order.
func (l *Layers) Names() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}
