package slab

// TypedPool hands out pointers to T carved from fixed-size pages. It
// mirrors Pool's free-list and empty-page reclamation semantics for
// values that carry Go pointers and therefore cannot live in raw byte
// blocks. Addresses are stable between Allocate and the matching Free.
type TypedPool[T any] struct {
	objectsPerPage int
	maxPages       int

	pages []*typedPage[T]
	free  []*T
	home  map[*T]*typedPage[T] // allocated or free, resolves ownership
	live  map[*T]bool
	stats Stats
}

type typedPage[T any] struct {
	items []T
	inUse int
}

// NewTyped builds a typed pool. maxPages <= 0 means unbounded.
func NewTyped[T any](objectsPerPage, maxPages int) *TypedPool[T] {
	if objectsPerPage <= 0 {
		objectsPerPage = 64
	}
	return &TypedPool[T]{
		objectsPerPage: objectsPerPage,
		maxPages:       maxPages,
		home:           make(map[*T]*typedPage[T]),
		live:           make(map[*T]bool),
	}
}

// Allocate returns a zeroed *T from the pool.
func (p *TypedPool[T]) Allocate() (*T, error) {
	if len(p.free) == 0 {
		if p.maxPages > 0 && len(p.pages) >= p.maxPages {
			return nil, ErrNoPages
		}
		pg := &typedPage[T]{items: make([]T, p.objectsPerPage)}
		p.pages = append(p.pages, pg)
		p.stats.Pages++
		for i := p.objectsPerPage - 1; i >= 0; i-- {
			p.free = append(p.free, &pg.items[i])
			p.home[&pg.items[i]] = pg
		}
		p.stats.FreeBlocks += p.objectsPerPage
	}
	v := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	var zero T
	*v = zero
	p.live[v] = true
	p.home[v].inUse++
	p.stats.FreeBlocks--
	p.noteAllocate()
	return v, nil
}

// Free returns a block to the pool.
func (p *TypedPool[T]) Free(v *T) error {
	pg, ok := p.home[v]
	if !ok {
		return ErrBadAddress
	}
	if !p.live[v] {
		return ErrMultipleFree
	}
	delete(p.live, v)
	var zero T
	*v = zero
	pg.inUse--
	p.free = append(p.free, v)
	p.stats.FreeBlocks++
	p.noteFree()
	return nil
}

// FreeEmptyPages drops pages with no live blocks and returns how many
// were released.
func (p *TypedPool[T]) FreeEmptyPages() int {
	released := 0
	kept := p.pages[:0]
	dead := make(map[*typedPage[T]]bool)
	for _, pg := range p.pages {
		if pg.inUse == 0 {
			dead[pg] = true
			released++
			continue
		}
		kept = append(kept, pg)
	}
	if released == 0 {
		return 0
	}
	p.pages = kept
	keptFree := p.free[:0]
	for _, v := range p.free {
		if dead[p.home[v]] {
			delete(p.home, v)
			continue
		}
		keptFree = append(keptFree, v)
	}
	p.free = keptFree
	p.stats.Pages -= released
	p.stats.FreeBlocks -= released * p.objectsPerPage
	return released
}

// Stats returns a copy of the usage counters.
func (p *TypedPool[T]) Stats() Stats {
	return p.stats
}

func (p *TypedPool[T]) noteAllocate() {
	p.stats.Allocations++
	p.stats.InUse++
	if p.stats.InUse > p.stats.PeakInUse {
		p.stats.PeakInUse = p.stats.InUse
	}
}

func (p *TypedPool[T]) noteFree() {
	p.stats.Deallocations++
	p.stats.InUse--
}
