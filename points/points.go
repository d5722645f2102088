// ════════════════════════════════════════════════════════════════════════════════════════════════
// Probe Point Registry
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Clock Speed Measurement Harness
// Component: Fixed-Capacity Name Interning Table
//
// Description:
//   Maps human-readable probe point names to the dense int32 tags that travel inside
//   stamps, and back again for export labeling.  Robin Hood hashing over xxhash64 keys
//   keeps probe chains short in a fixed power-of-2 table; registration happens once at
//   harness setup, so the measurement paths only ever see the integer tags.
//
// Design Principles:
//   - Fixed capacity with power-of-2 sizing for mask-based probing
//   - Robin Hood displacement minimizes worst-case probe distances
//   - Parallel key/tag arrays; names held once in registration order
//   - Zero hash reserved as the empty sentinel
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package points

import "github.com/cespare/xxhash"

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// TYPE DEFINITIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Registry is a fixed-capacity name-interning table for single-threaded
// setup-time use.  Tags are dense, starting at 0 in registration order.
//
//go:notinheap
//go:align 64
type Registry struct {
	keys  []uint64 // xxhash64 of each name (0 = empty sentinel)
	tags  []int32  // tag array (parallel to keys)
	names []string // tag -> name, registration order
	mask  uint64   // size mask for fast modulo
	count int      // occupied slots
	limit int      // refusal threshold (75% occupancy)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONSTRUCTOR
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// New creates a registry able to intern at least capacity names.
// The table is sized to the next power of two at double the request so
// probe chains stay short at the refusal threshold.
func New(capacity int) *Registry {
	if capacity < 1 {
		panic("points: capacity must be >= 1")
	}
	sz := uint64(1)
	for sz < uint64(capacity)*2 {
		sz <<= 1
	}
	return &Registry{
		keys:  make([]uint64, sz),
		tags:  make([]int32, sz),
		names: make([]string, 0, capacity),
		mask:  sz - 1,
		limit: int(sz) * 3 / 4,
	}
}

// hashOf keys the table; the zero value is displaced so it stays a
// reliable empty sentinel.
func hashOf(name string) uint64 {
	h := xxhash.Sum64String(name)
	if h == 0 {
		h = 1
	}
	return h
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CORE OPERATIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Register interns name and returns its tag.  Re-registering an existing
// name returns the original tag.  Panics on an empty name or a table at
// its refusal threshold; both are setup-time defects, not run conditions.
func (t *Registry) Register(name string) int32 {
	if name == "" {
		panic("points: empty point name")
	}
	if tag, ok := t.Lookup(name); ok {
		return tag
	}
	if t.count >= t.limit {
		panic("points: registry full")
	}

	tag := int32(len(t.names))
	t.names = append(t.names, name)
	t.count++

	// Robin Hood insert: displace residents that sit closer to their
	// ideal slot than the incoming entry does to its own.
	curKey, curTag := hashOf(name), tag
	i := curKey & t.mask
	var dist uint64
	for {
		resident := t.keys[i]
		if resident == 0 {
			t.keys[i] = curKey
			t.tags[i] = curTag
			return tag
		}
		rdist := (i - resident) & t.mask
		if rdist < dist {
			curKey, t.keys[i] = resident, curKey
			curTag, t.tags[i] = t.tags[i], curTag
			dist = rdist
		}
		i = (i + 1) & t.mask
		dist++
	}
}

// Lookup returns the tag for name if it has been registered.
func (t *Registry) Lookup(name string) (int32, bool) {
	key := hashOf(name)
	i := key & t.mask
	var dist uint64
	for {
		resident := t.keys[i]
		if resident == 0 {
			return 0, false
		}
		if resident == key && t.names[t.tags[i]] == name {
			return t.tags[i], true
		}
		// Robin Hood invariant: once residents are closer to home than
		// we are, the key cannot be further along the chain.
		if (i-resident)&t.mask < dist {
			return 0, false
		}
		i = (i + 1) & t.mask
		dist++
	}
}

// Name returns the registered name for tag, "" when the tag was never
// issued.  Export labeling uses this; measurement paths never do.
func (t *Registry) Name(tag int32) string {
	if tag < 0 || int(tag) >= len(t.names) {
		return ""
	}
	return t.names[tag]
}

// Len reports how many names have been interned.
func (t *Registry) Len() int { return len(t.names) }
