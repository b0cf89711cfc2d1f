// Package pool implements the StatePool: a hash-consed store of packed
// states addressed by dense StateID, plus the SegmentedArray/Attribute
// machinery used to back it and any per-state attribute arrays (spec.md
// §3, §4.2, §9).
package pool

import (
	"github.com/coregx/planit"
	"github.com/coregx/planit/pack"
)

// StateID is a dense, non-negative integer handle into a Pool. IDs are
// assigned monotonically starting at 0.
type StateID int32

// NoState is the sentinel "no state" ID (spec.md §3).
const NoState StateID = -1

// Pool is a hash-consed set of packed state buffers. It is not
// thread-safe: each search thread owns its own Pool (spec.md §4.2,
// "Concurrency"); the multi-agent layer exchanges packed buffers between
// pools rather than sharing one.
type Pool struct {
	packer *pack.Packer

	buffers *SegmentedArray[[]pack.Word]

	// index maps a 64-bit mixing hash of a buffer to the StateIDs that
	// hash to it, so Insert/Find can resolve collisions with a word-wise
	// compare of the actual buffers.
	index map[uint64][]StateID
}

// New creates an empty Pool over packer. The caller typically inserts the
// problem's initial state immediately after.
func New(packer *pack.Packer) *Pool {
	return &Pool{
		packer:  packer,
		buffers: NewSegmentedArray[[]pack.Word](),
		index:   make(map[uint64][]StateID),
	}
}

// Packer returns the Packer this Pool was built over.
func (p *Pool) Packer() *pack.Packer { return p.packer }

// Len returns the number of distinct states held in the pool.
func (p *Pool) Len() int { return p.buffers.Len() }

// hashBuffer computes a non-cryptographic 64-bit mixing hash over buf
// (spec.md §4.2, "Hashing"). It is the FNV-1a byte hash applied to the
// buffer's word-at-a-time little-endian byte representation, chosen for
// being allocation-free and branch-light on the hot insert/find path.
func hashBuffer(buf []pack.Word) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for _, w := range buf {
		for shift := 0; shift < 32; shift += 8 {
			h ^= uint64(byte(w >> uint(shift)))
			h *= prime64
		}
	}
	return h
}

func equalBuffers(a, b []pack.Word) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Find performs a non-inserting lookup: it returns the StateID of buf if an
// equal buffer was previously inserted, or NoState otherwise (spec.md §8
// invariant 2).
func (p *Pool) Find(buf []pack.Word) StateID {
	h := hashBuffer(buf)
	for _, id := range p.index[h] {
		if equalBuffers(*p.buffers.Get(int(id)), buf) {
			return id
		}
	}
	return NoState
}

// Insert returns buf's StateID, inserting it as a new state if no equal
// buffer exists yet (spec.md §8 invariant 2). The returned ID is stable
// for the lifetime of the Pool. Insert copies buf; the caller retains
// ownership of its own slice.
func (p *Pool) Insert(buf []pack.Word) StateID {
	h := hashBuffer(buf)
	for _, id := range p.index[h] {
		if equalBuffers(*p.buffers.Get(int(id)), buf) {
			return id
		}
	}
	cp := make([]pack.Word, len(buf))
	copy(cp, buf)
	idx := p.buffers.Append(cp)
	id := StateID(idx)
	p.index[h] = append(p.index[h], id)
	return id
}

// GetPacked returns the packed buffer for id. The returned slice must not
// be mutated by the caller; use ApplyPartial/Apply to derive new states.
func (p *Pool) GetPacked(id StateID) []pack.Word {
	return *p.buffers.Get(int(id))
}

// Unpack returns the full per-variable assignment for id.
func (p *Pool) Unpack(id StateID) []Value {
	return p.packer.Unpack(p.GetPacked(id))
}

// Value is a local alias for planit.Value, kept so most Pool call sites
// don't need their own import of the root package just for this type.
type Value = planit.Value

// ApplyPartial applies one partial state's packed (val, mask) pair to id's
// state and returns the resulting StateID, inserting the new state if it is
// not already present (spec.md §4.2, apply_partial).
func (p *Pool) ApplyPartial(id StateID, val, mask []pack.Word) StateID {
	next := pack.Apply(p.GetPacked(id), val, mask)
	return p.Insert(next)
}

// ApplyPartials chains ApplyPartial over a sequence of (val, mask) pairs,
// as required when an operator has an unconditional effect plus one or
// more satisfied conditional effects (spec.md §4.2, apply_partials).
func (p *Pool) ApplyPartials(id StateID, vals, masks [][]pack.Word) StateID {
	for i := range vals {
		id = p.ApplyPartial(id, vals[i], masks[i])
	}
	return id
}
