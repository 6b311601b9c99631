// Package slab provides a page-based fixed-size block allocator with a
// free list, optional debug byte patterns, pad-byte corruption checks,
// and reclamation of wholly-empty pages.
package slab

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"
)

var (
	ErrNoMemory       = errors.New("slab: page allocation failed")
	ErrNoPages        = errors.New("slab: max pages reached")
	ErrBadAddress     = errors.New("slab: address is not inside any page")
	ErrBadBoundary    = errors.New("slab: address is not on a block boundary")
	ErrMultipleFree   = errors.New("slab: block is already free")
	ErrCorruptedBlock = errors.New("slab: pad bytes corrupted")
)

// Debug fill patterns.
const (
	PatternUnallocated = 0xAA
	PatternAllocated   = 0xBB
	PatternFreed       = 0xCC
	PatternPad         = 0xDD
	PatternAlign       = 0xEE
)

// pageHeaderSize reserves room at the start of every page. The original
// layout threads a next-page pointer here; the Go pool keeps pages in a
// slice, so the region is only reserved and pattern-filled.
const pageHeaderSize = 8

// freeLinkSize is the number of user bytes a freed block lends to the
// free list to hold the next-block address.
const freeLinkSize = 8

// Config controls pool layout and debug behavior.
type Config struct {
	ObjectsPerPage     int
	MaxPages           int // 0 = unbounded
	Alignment          int // block start alignment, 0 = 8
	LeftAlignSize      int // extra bytes between the page header and the first block
	PadBytes           int // pad bytes on each side of the user region
	HeaderBlocks       int // per-block header bytes preceding the left pad
	Debug              bool
	UseSystemAllocator bool // bypass: delegate to the Go allocator
}

// Stats reports pool usage counters.
type Stats struct {
	Allocations   uint64
	Deallocations uint64
	InUse         int
	PeakInUse     int
	FreeBlocks    int
	Pages         int
	PageSize      int
}

type page struct {
	buf  []byte
	base uintptr // address of buf[0]
}

// Pool hands out fixed-size byte blocks carved from pages. Block
// addresses are stable between Allocate and the matching Free.
type Pool struct {
	objectSize int
	cfg        Config

	stride      int // distance between consecutive user regions
	userOffset  int // offset of the user region within a block
	firstOffset int // offset of the first block's user region within a page
	pageSize    int

	pages    []*page
	freeHead uintptr // address of the first free user region, 0 = empty
	stats    Stats
}

// New builds a pool for blocks of objectSize bytes. objectSize must be
// at least 8 so freed blocks can hold the free-list link.
func New(objectSize int, cfg Config) (*Pool, error) {
	if objectSize < freeLinkSize {
		objectSize = freeLinkSize
	}
	if cfg.ObjectsPerPage <= 0 {
		cfg.ObjectsPerPage = 64
	}
	if cfg.Alignment <= 0 {
		cfg.Alignment = 8
	}
	if cfg.MaxPages < 0 {
		cfg.MaxPages = 0
	}
	if cfg.PadBytes < 0 || cfg.HeaderBlocks < 0 || cfg.LeftAlignSize < 0 {
		return nil, fmt.Errorf("slab: negative layout field in config")
	}

	p := &Pool{objectSize: objectSize, cfg: cfg}
	block := cfg.HeaderBlocks + cfg.PadBytes + objectSize + cfg.PadBytes
	p.stride = alignUp(block, cfg.Alignment)
	p.userOffset = cfg.HeaderBlocks + cfg.PadBytes
	p.firstOffset = alignUp(pageHeaderSize+cfg.LeftAlignSize, cfg.Alignment) + p.userOffset
	p.pageSize = p.firstOffset - p.userOffset + p.stride*cfg.ObjectsPerPage
	p.stats.PageSize = p.pageSize
	return p, nil
}

// ObjectSize returns the user-region size of every block.
func (p *Pool) ObjectSize() int {
	return p.objectSize
}

// Stats returns a copy of the usage counters.
func (p *Pool) Stats() Stats {
	return p.stats
}

// Allocate returns a block of ObjectSize bytes. The returned slice is
// valid until the matching Free.
func (p *Pool) Allocate() ([]byte, error) {
	if p.cfg.UseSystemAllocator {
		p.noteAllocate()
		return make([]byte, p.objectSize), nil
	}
	if p.freeHead == 0 {
		if err := p.growPage(); err != nil {
			return nil, err
		}
	}
	addr := p.freeHead
	pg, off := p.locate(addr)
	if pg == nil {
		return nil, ErrBadAddress
	}
	user := pg.buf[off : off+p.objectSize : off+p.objectSize]
	p.freeHead = uintptr(binary.LittleEndian.Uint64(user[:freeLinkSize]))
	if p.cfg.Debug {
		fill(user, PatternAllocated)
	} else {
		clear(user)
	}
	p.stats.FreeBlocks--
	p.noteAllocate()
	return user, nil
}

// Free returns a block to the pool. The slice must be exactly the one
// handed out by Allocate.
func (p *Pool) Free(b []byte) error {
	if p.cfg.UseSystemAllocator {
		if len(b) != p.objectSize {
			return ErrBadBoundary
		}
		p.noteFree()
		return nil
	}
	if len(b) == 0 {
		return ErrBadAddress
	}
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	pg := p.pageOf(addr)
	if pg == nil {
		return ErrBadAddress
	}
	rel := int(addr-pg.base) - p.firstOffset
	if rel < 0 || rel%p.stride != 0 || rel/p.stride >= p.cfg.ObjectsPerPage {
		return ErrBadBoundary
	}
	if p.onFreeList(addr) {
		return ErrMultipleFree
	}
	off := int(addr - pg.base)
	if p.cfg.Debug {
		if err := p.checkPads(pg, off); err != nil {
			return err
		}
		fill(pg.buf[off:off+p.objectSize], PatternFreed)
	}
	p.pushFree(pg, off)
	p.noteFree()
	return nil
}

// FreeEmptyPages releases every page whose blocks are all on the free
// list and returns the number of pages released.
func (p *Pool) FreeEmptyPages() int {
	if p.cfg.UseSystemAllocator || len(p.pages) == 0 {
		return 0
	}
	freePerPage := make(map[*page]int, len(p.pages))
	for addr := p.freeHead; addr != 0; addr = p.nextFree(addr) {
		if pg := p.pageOf(addr); pg != nil {
			freePerPage[pg]++
		}
	}

	dead := make(map[*page]bool, len(p.pages))
	kept := p.pages[:0]
	released := 0
	for _, pg := range p.pages {
		if freePerPage[pg] == p.cfg.ObjectsPerPage {
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
	p.rebuildFreeList(dead)
	p.stats.Pages -= released
	p.stats.FreeBlocks -= released * p.cfg.ObjectsPerPage
	return released
}

func (p *Pool) growPage() error {
	if p.cfg.MaxPages > 0 && len(p.pages) >= p.cfg.MaxPages {
		return ErrNoPages
	}
	if p.pageSize <= 0 {
		return ErrNoMemory
	}
	buf := make([]byte, p.pageSize)
	pg := &page{buf: buf, base: uintptr(unsafe.Pointer(unsafe.SliceData(buf)))}
	if p.cfg.Debug {
		fill(buf[:p.firstOffset-p.userOffset], PatternAlign)
		for i := 0; i < p.cfg.ObjectsPerPage; i++ {
			off := p.blockOffset(i)
			fill(buf[off-p.cfg.PadBytes:off], PatternPad)
			fill(buf[off:off+p.objectSize], PatternUnallocated)
			fill(buf[off+p.objectSize:off+p.objectSize+p.cfg.PadBytes], PatternPad)
			alignStart := off + p.objectSize + p.cfg.PadBytes
			alignEnd := off - p.userOffset + p.stride
			if alignEnd > len(buf) {
				alignEnd = len(buf)
			}
			if alignStart < alignEnd {
				fill(buf[alignStart:alignEnd], PatternAlign)
			}
		}
	}
	p.pages = append(p.pages, pg)
	p.stats.Pages++
	// Thread new blocks onto the free list so the lowest offset pops first.
	for i := p.cfg.ObjectsPerPage - 1; i >= 0; i-- {
		p.pushFree(pg, p.blockOffset(i))
	}
	return nil
}

// blockOffset returns the offset of block i's user region within a page.
func (p *Pool) blockOffset(i int) int {
	return p.firstOffset + i*p.stride
}

func (p *Pool) pushFree(pg *page, off int) {
	link := pg.buf[off : off+freeLinkSize]
	binary.LittleEndian.PutUint64(link, uint64(p.freeHead))
	p.freeHead = pg.base + uintptr(off)
	p.stats.FreeBlocks++
}

func (p *Pool) nextFree(addr uintptr) uintptr {
	pg := p.pageOf(addr)
	if pg == nil {
		return 0
	}
	off := int(addr - pg.base)
	return uintptr(binary.LittleEndian.Uint64(pg.buf[off : off+freeLinkSize]))
}

func (p *Pool) onFreeList(addr uintptr) bool {
	for cur := p.freeHead; cur != 0; cur = p.nextFree(cur) {
		if cur == addr {
			return true
		}
	}
	return false
}

func (p *Pool) rebuildFreeList(dead map[*page]bool) {
	var keep []uintptr
	for addr := p.freeHead; addr != 0; addr = p.nextFree(addr) {
		if pg := p.pageOf(addr); pg != nil && !dead[pg] {
			keep = append(keep, addr)
		}
	}
	p.freeHead = 0
	for i := len(keep) - 1; i >= 0; i-- {
		pg := p.pageOf(keep[i])
		off := int(keep[i] - pg.base)
		link := pg.buf[off : off+freeLinkSize]
		binary.LittleEndian.PutUint64(link, uint64(p.freeHead))
		p.freeHead = keep[i]
	}
}

// pageOf returns the page whose block region contains addr.
func (p *Pool) pageOf(addr uintptr) *page {
	for _, pg := range p.pages {
		first := pg.base + uintptr(p.firstOffset)
		last := pg.base + uintptr(p.blockOffset(p.cfg.ObjectsPerPage-1)) + uintptr(p.objectSize)
		if addr >= first && addr < last {
			return pg
		}
	}
	return nil
}

func (p *Pool) locate(addr uintptr) (*page, int) {
	pg := p.pageOf(addr)
	if pg == nil {
		return nil, 0
	}
	return pg, int(addr - pg.base)
}

func (p *Pool) checkPads(pg *page, off int) error {
	for _, b := range pg.buf[off-p.cfg.PadBytes : off] {
		if b != PatternPad {
			return ErrCorruptedBlock
		}
	}
	for _, b := range pg.buf[off+p.objectSize : off+p.objectSize+p.cfg.PadBytes] {
		if b != PatternPad {
			return ErrCorruptedBlock
		}
	}
	return nil
}

func (p *Pool) noteAllocate() {
	p.stats.Allocations++
	p.stats.InUse++
	if p.stats.InUse > p.stats.PeakInUse {
		p.stats.PeakInUse = p.stats.InUse
	}
}

func (p *Pool) noteFree() {
	p.stats.Deallocations++
	p.stats.InUse--
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	rem := n % align
	if rem == 0 {
		return n
	}
	return n + align - rem
}

func fill(b []byte, pattern byte) {
	for i := range b {
		b[i] = pattern
	}
}
