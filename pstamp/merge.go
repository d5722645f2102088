// ════════════════════════════════════════════════════════════════════════════════════════════════
// K-Way Chain Merger
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Clock Speed Measurement Harness
// Component: Causal Event Log Consolidation
//
// Description:
//   Lazy timestamp-ordered merge over several completed ring chains, typically one chain
//   per worker lane.  Each input is consumed through a cursor that walks its chain
//   ring-by-ring through successor links; Next peeks at every cursor's head and emits the
//   smallest cycle count, breaking ties toward the lowest input index so equal stamps
//   drain deterministically.
//
//   The merge is read-only: entries are copied out and the rings are never touched.  Lane
//   counts are small (one per measured core), so a linear head scan beats heap
//   maintenance and keeps the merger allocation-free after construction.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package pstamp

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CHAIN CURSOR
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// cursor tracks one input chain's unconsumed position.
type cursor struct {
	ring  *Ring  // ring currently being drained, nil when exhausted
	idx   uint32 // entries already consumed from this ring's window
	used  uint32 // retained-entry snapshot for this ring
	start uint32 // slot index of this ring's oldest retained entry
}

// rebase points the cursor at r and snapshots its window geometry.
func (c *cursor) rebase(r *Ring) {
	for r != nil && r.used == 0 {
		r = r.Successor() // skip never-written links
	}
	if r == nil {
		c.ring = nil
		return
	}
	c.ring = r
	c.idx = 0
	c.used = r.used
	if r.used < r.capacity {
		c.start = 0
	} else {
		c.start = r.next
	}
}

// head returns the next unconsumed entry, nil when the chain is drained.
func (c *cursor) head() *Entry {
	for c.ring != nil && c.idx == c.used {
		c.rebase(c.ring.Successor())
	}
	if c.ring == nil {
		return nil
	}
	slot := c.start + c.idx
	if slot >= c.ring.capacity {
		slot -= c.ring.capacity
	}
	return &c.ring.buf[slot]
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// MERGER
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Merger drains several ring chains in global timestamp order.  Construct
// with NewMerger once the chains are retired; restart by constructing a
// fresh Merger over the same chains.
type Merger struct {
	cursors []cursor
}

// NewMerger returns a merger over the given chain heads.  Nil heads are
// tolerated and contribute nothing, so lanes that never recorded do not
// need special-casing at the call site.
func NewMerger(chains ...*Ring) *Merger {
	m := &Merger{cursors: make([]cursor, len(chains))}
	for i, head := range chains {
		m.cursors[i].rebase(head)
	}
	return m
}

// Next returns the globally-next entry by ascending cycle count, ties
// broken toward the lowest input index.  The second return is false once
// every chain is drained.
func (m *Merger) Next() (Entry, bool) {
	var best *Entry
	bestIdx := -1
	for i := range m.cursors {
		h := m.cursors[i].head()
		if h == nil {
			continue
		}
		if best == nil || h.Event.Cycles < best.Event.Cycles {
			best = h
			bestIdx = i
		}
	}
	if best == nil {
		return Entry{}, false
	}
	m.cursors[bestIdx].idx++
	return *best, true
}

// Merge drains every chain through visit in one call.
func Merge(visit func(Entry), chains ...*Ring) {
	m := NewMerger(chains...)
	for {
		e, ok := m.Next()
		if !ok {
			return
		}
		visit(e)
	}
}
