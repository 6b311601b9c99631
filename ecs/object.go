package ecs

// ObjectId identifies a game object for the life of the process. Ids
// are handed out monotonically and never reused, so a stale id resolves
// to nothing rather than to a recycled entity.
type ObjectId uint32

// GameObject is a named, layered, ordered composition of components
// with at most one component per kind. Instances are owned by the
// factory and destroyed only through its deferred-destroy queue.
type GameObject struct {
	id    ObjectId
	name  string
	layer string

	comps  []Component
	byKind [kindCount]int16 // index+1 into comps, 0 = absent

	queued bool // sitting in the destroy queue
	fac    *Factory
}

func (o *GameObject) ID() ObjectId {
	return o.id
}

func (o *GameObject) Name() string {
	return o.name
}

func (o *GameObject) SetName(name string) {
	o.name = name
}

func (o *GameObject) Layer() string {
	return o.layer
}

func (o *GameObject) SetLayer(layer string) {
	o.layer = layer
	if o.fac != nil {
		o.fac.layers.Register(layer)
	}
}

// Factory returns the owning factory, nil for detached masters.
func (o *GameObject) Factory() *Factory {
	return o.fac
}

// Get returns the component of the given kind, or nil. Lookup is O(1).
func (o *GameObject) Get(kind Kind) Component {
	if o == nil || kind <= KindInvalid || kind >= kindCount {
		return nil
	}
	idx := o.byKind[kind]
	if idx == 0 {
		return nil
	}
	return o.comps[idx-1]
}

// Has reports whether a component of the given kind is attached.
func (o *GameObject) Has(kind Kind) bool {
	return o.Get(kind) != nil
}

// Components returns the attached components in insertion order.
func (o *GameObject) Components() []Component {
	if o == nil {
		return nil
	}
	return o.comps
}

// Attach appends a component, enforcing at most one per kind. Init is
// not called here; the factory runs it once assembly completes.
func (o *GameObject) Attach(c Component) error {
	if c == nil {
		return ErrUnknownComponent
	}
	kind := c.Kind()
	if kind <= KindInvalid || kind >= kindCount {
		return ErrUnknownComponent
	}
	if o.byKind[kind] != 0 {
		return ErrDuplicateKind
	}
	o.comps = append(o.comps, c)
	o.byKind[kind] = int16(len(o.comps))
	return nil
}

// init runs every component's Init hook, in attachment order, after
// the entity is fully assembled.
func (o *GameObject) init() {
	for _, c := range o.comps {
		c.Init(o)
	}
}
