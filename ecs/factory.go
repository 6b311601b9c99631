package ecs

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/torchlab/ember/prefabs"
	"github.com/torchlab/ember/slab"
)

// Options configures the factory's backing allocator.
type Options struct {
	ObjectsPerPage int
	MaxPages       int
}

// Factory owns every live game object. It instantiates prefabs, loads
// levels, snapshots entities, and drains the deferred-destroy queue at
// the top of each update.
type Factory struct {
	log  *zap.Logger
	pool *slab.TypedPool[GameObject]

	objects map[ObjectId]*GameObject
	order   []ObjectId // insertion order, for deterministic iteration
	nextID  ObjectId

	prefabs map[string]*GameObject // detached masters by name

	destroyQueue []ObjectId
	layers       *Layers

	levelPath string
	gates     []prefabs.Gate
}

// NewFactory builds an empty factory backed by a typed slab pool.
func NewFactory(log *zap.Logger, opts Options) *Factory {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.ObjectsPerPage <= 0 {
		opts.ObjectsPerPage = 256
	}
	return &Factory{
		log:     log,
		pool:    slab.NewTyped[GameObject](opts.ObjectsPerPage, opts.MaxPages),
		objects: make(map[ObjectId]*GameObject),
		prefabs: make(map[string]*GameObject),
		layers:  NewLayers(),
	}
}

// Layers returns the layer registry.
func (f *Factory) Layers() *Layers {
	return f.layers
}

// Objects returns the live id-to-entity map. Callers must not mutate.
func (f *Factory) Objects() map[ObjectId]*GameObject {
	return f.objects
}

// Ordered returns live objects in creation order. Destroyed-but-not-yet
// flushed objects are still included; the flush boundary removes them.
func (f *Factory) Ordered() []*GameObject {
	out := make([]*GameObject, 0, len(f.order))
	for _, id := range f.order {
		if o, ok := f.objects[id]; ok {
			out = append(out, o)
		}
	}
	return out
}

// GetObjectWithID resolves an id to a live object, or nil.
func (f *Factory) GetObjectWithID(id ObjectId) *GameObject {
	return f.objects[id]
}

// CreateEmptyComposition allocates an entity with a fresh id and no
// components and inserts it into the live set.
func (f *Factory) CreateEmptyComposition() *GameObject {
	o, err := f.allocate()
	if err != nil {
		f.log.Error("entity allocation failed", zap.Error(err))
		return nil
	}
	f.insert(o)
	return o
}

func (f *Factory) allocate() (*GameObject, error) {
	o, err := f.pool.Allocate()
	if err != nil {
		return nil, err
	}
	f.nextID++
	o.id = f.nextID
	o.fac = f
	o.layer = DefaultLayer
	return o, nil
}

func (f *Factory) insert(o *GameObject) {
	f.objects[o.id] = o
	f.order = append(f.order, o.id)
	f.layers.Register(o.layer)
}

// CreateTemplate parses a prefab document at path and builds a detached
// master entity. The live object set is not touched.
func (f *Factory) CreateTemplate(path string) (*GameObject, error) {
	doc, err := prefabs.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPrefab, path, err)
	}
	master, err := f.buildDetached(doc)
	if err != nil {
		return nil, err
	}
	return master, nil
}

// buildDetached assembles a master entity outside the pool and the live
// set. Unknown component names and unknown body keys are logged and
// skipped; load failures invalidate the whole prefab.
func (f *Factory) buildDetached(doc *prefabs.Document) (*GameObject, error) {
	master := &GameObject{name: doc.Name, layer: doc.Layer}
	if master.layer == "" {
		master.layer = DefaultLayer
	}
	for _, entry := range doc.Components {
		kind, ok := KindByName(entry.Name)
		if !ok {
			f.log.Warn("unknown component in prefab, skipping",
				zap.String("prefab", doc.Name), zap.String("component", entry.Name))
			continue
		}
		c, err := NewComponent(kind)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPrefab, doc.Name, err)
		}
		fields := NewFields(entry.Body)
		if err := c.Load(fields); err != nil {
			return nil, fmt.Errorf("%w: %s/%s: %v", ErrInvalidPrefab, doc.Name, entry.Name, err)
		}
		if unknown := fields.Unknown(); len(unknown) > 0 {
			f.log.Warn("ignoring unknown keys in component body",
				zap.String("prefab", doc.Name), zap.String("component", entry.Name),
				zap.Strings("keys", unknown))
		}
		if err := master.Attach(c); err != nil {
			return nil, fmt.Errorf("%w: %s/%s: %v", ErrInvalidPrefab, doc.Name, entry.Name, err)
		}
	}
	return master, nil
}

// LoadPrefabDir scans dir for prefab documents and (re)fills the prefab
// cache. Later files win name collisions. Masters that fail to build
// are logged and skipped; the engine continues with the loaded set.
func (f *Factory) LoadPrefabDir(dir string) error {
	docs, err := prefabs.Scan(dir, f.log)
	if err != nil {
		return err
	}
	for name, doc := range docs {
		master, err := f.buildDetached(doc)
		if err != nil {
			f.log.Warn("skipping prefab", zap.String("prefab", name), zap.Error(err))
			continue
		}
		f.prefabs[name] = master
	}
	return nil
}

// RegisterPrefab installs a detached master under its name, replacing
// any previous master.
func (f *Factory) RegisterPrefab(master *GameObject) {
	if master == nil || master.name == "" {
		return
	}
	f.prefabs[master.name] = master
}

// HasPrefab reports whether a master is cached under name.
func (f *Factory) HasPrefab(name string) bool {
	_, ok := f.prefabs[name]
	return ok
}

// Create clones the named prefab master into a live entity with a fresh
// id. Returns nil when the name is not in the prefab map.
func (f *Factory) Create(prefabName string) *GameObject {
	master, ok := f.prefabs[prefabName]
	if !ok {
		f.log.Warn("unknown prefab", zap.String("prefab", prefabName))
		return nil
	}
	o, err := f.instantiate(master)
	if err != nil {
		f.log.Error("prefab instantiation failed", zap.String("prefab", prefabName), zap.Error(err))
		return nil
	}
	f.insert(o)
	o.init()
	return o
}

// instantiate deep-copies a master into a pooled entity, detached from
// the live set so callers control insertion.
func (f *Factory) instantiate(master *GameObject) (*GameObject, error) {
	o, err := f.allocate()
	if err != nil {
		return nil, err
	}
	o.name = master.name
	o.layer = master.layer
	for _, c := range master.comps {
		if err := o.Attach(c.Clone()); err != nil {
			_ = f.pool.Free(o)
			return nil, err
		}
	}
	return o, nil
}

// CreateLevel parses a level document, instantiates its objects, and
// records the level path for reload. On any failure the live object set
// is left untouched.
func (f *Factory) CreateLevel(path string) ([]*GameObject, error) {
	lvl, err := prefabs.ParseLevelFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPrefab, path, err)
	}

	built := make([]*GameObject, 0, len(lvl.Objects))
	release := func() {
		for _, o := range built {
			_ = f.pool.Free(o)
		}
	}
	for _, doc := range lvl.Objects {
		master, err := f.buildDetached(doc)
		if err != nil {
			release()
			return nil, err
		}
		o, err := f.instantiate(master)
		if err != nil {
			release()
			return nil, err
		}
		built = append(built, o)
	}

	for _, o := range built {
		f.insert(o)
	}
	for _, o := range built {
		o.init()
	}
	f.levelPath = path
	f.gates = lvl.Gates
	f.log.Info("level loaded", zap.String("path", path), zap.Int("objects", len(built)))
	return built, nil
}

// LevelPath returns the most recently loaded level document path.
func (f *Factory) LevelPath() string {
	return f.levelPath
}

// Gates returns the active level's gate metadata.
func (f *Factory) Gates() []prefabs.Gate {
	return f.gates
}

// Destroy queues an entity for removal at the next flush boundary.
// Pointers held by other subsystems stay valid until then. Destroying
// an id that is not live, or destroying twice, is a no-op.
func (f *Factory) Destroy(o *GameObject) {
	if o == nil || o.queued {
		return
	}
	if f.objects[o.id] != o {
		return
	}
	o.queued = true
	f.destroyQueue = append(f.destroyQueue, o.id)
}

// DestroyAll queues every live entity.
func (f *Factory) DestroyAll() {
	for _, id := range f.order {
		if o, ok := f.objects[id]; ok {
			f.Destroy(o)
		}
	}
}

// Flush drains the destroy queue. After Flush returns, queued ids no
// longer resolve and their component pointers are invalid.
func (f *Factory) Flush() {
	if len(f.destroyQueue) == 0 {
		return
	}
	for _, id := range f.destroyQueue {
		o, ok := f.objects[id]
		if !ok {
			continue
		}
		delete(f.objects, id)
		_ = f.pool.Free(o)
	}
	f.destroyQueue = f.destroyQueue[:0]

	kept := f.order[:0]
	for _, id := range f.order {
		if _, ok := f.objects[id]; ok {
			kept = append(kept, id)
		}
	}
	f.order = kept
}

// Update flushes the destruction queue, then ticks every component of
// every live entity in insertion order.
func (f *Factory) Update(dt float64) {
	f.Flush()
	for _, id := range f.order {
		o, ok := f.objects[id]
		if !ok || o.queued {
			continue
		}
		for _, c := range o.comps {
			c.Update(dt)
		}
	}
}

// FreeEmptyPages releases wholly-empty allocator pages, typically after
// a level transition has drained the object set.
func (f *Factory) FreeEmptyPages() int {
	return f.pool.FreeEmptyPages()
}

// PoolStats reports the backing allocator counters.
func (f *Factory) PoolStats() slab.Stats {
	return f.pool.Stats()
}

// SnapshotGameObject serializes an entity to a document mirroring its
// prefab shape plus whatever runtime fields each component persists.
func (f *Factory) SnapshotGameObject(o *GameObject) *prefabs.Document {
	if o == nil {
		return nil
	}
	doc := &prefabs.Document{Name: o.name, Layer: o.layer}
	for _, c := range o.comps {
		doc.Components = append(doc.Components, prefabs.ComponentEntry{
			Name: c.Kind().String(),
			Body: c.Save(),
		})
	}
	return doc
}

// InstantiateFromSnapshot builds a live entity from a snapshot
// document. The entity receives a fresh id.
func (f *Factory) InstantiateFromSnapshot(doc *prefabs.Document) (*GameObject, error) {
	if doc == nil {
		return nil, errors.New("ecs: nil snapshot")
	}
	master, err := f.buildDetached(doc)
	if err != nil {
		return nil, err
	}
	o, err := f.instantiate(master)
	if err != nil {
		return nil, err
	}
	f.insert(o)
	o.init()
	return o, nil
}
