// ════════════════════════════════════════════════════════════════════════════════════════════════
// Trace Export
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Clock Speed Measurement Harness
// Component: JSONL Trace Serialization
//
// Description:
//   Streams the merged event log out as one JSON object per line, resolving point tags back
//   to their registered names and converting cycle counts to nanoseconds with the run's
//   calibration.  Every byte written is folded into a SHA3-256 digest on the way out, so
//   the archive row can pin exactly which trace a run produced without re-reading the file.
//
//   Cold path only: export happens after the chains are sealed and merged.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package export

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/sugawarayuuta/sonnet"
	"golang.org/x/crypto/sha3"

	"github.com/dpreed/clock-speed/points"
	"github.com/dpreed/clock-speed/pstamp"
	"github.com/dpreed/clock-speed/tsc"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// WIRE FORMAT
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// TraceLine is one merged event on the wire.  Cause fields identify the
// stamp the event was ordered after; comparing cycles to cause_cycles gives
// the causal gap directly.
type TraceLine struct {
	Seq         uint64 `json:"seq"`
	Point       string `json:"point"`
	Unit        uint32 `json:"unit"`
	Cycles      uint64 `json:"cycles"`
	Nanos       uint64 `json:"nanos"`
	CausePoint  string `json:"cause_point"`
	CauseUnit   uint32 `json:"cause_unit"`
	CauseCycles uint64 `json:"cause_cycles"`
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// STREAMING WRITER
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Writer serializes entries as JSONL while digesting the byte stream.
type Writer struct {
	out io.Writer // sink ∪ digest
	dig hash.Hash
	reg *points.Registry
	adj tsc.Adjust
	seq uint64
}

// NewWriter wraps sink with name resolution via reg and cycle conversion
// via adj.
func NewWriter(sink io.Writer, reg *points.Registry, adj tsc.Adjust) *Writer {
	dig := sha3.New256()
	return &Writer{
		out: io.MultiWriter(sink, dig),
		dig: dig,
		reg: reg,
		adj: adj,
	}
}

// WriteEntry emits one merged entry as a single line.
func (w *Writer) WriteEntry(e *pstamp.Entry) error {
	line := TraceLine{
		Seq:         w.seq,
		Point:       w.reg.Name(e.Event.Point),
		Unit:        e.Event.Unit,
		Cycles:      e.Event.Cycles,
		Nanos:       w.adj.Nanos(e.Event.Cycles),
		CausePoint:  w.reg.Name(e.Cause.Point),
		CauseUnit:   e.Cause.Unit,
		CauseCycles: e.Cause.Cycles,
	}
	p, err := sonnet.Marshal(&line)
	if err != nil {
		return fmt.Errorf("failed to marshal trace line %d: %w", w.seq, err)
	}
	p = append(p, '\n')
	if _, err := w.out.Write(p); err != nil {
		return fmt.Errorf("failed to write trace line %d: %w", w.seq, err)
	}
	w.seq++
	return nil
}

// Count reports how many lines have been written.
func (w *Writer) Count() uint64 { return w.seq }

// Digest returns the hex SHA3-256 of every byte written so far.
func (w *Writer) Digest() string {
	return hex.EncodeToString(w.dig.Sum(nil))
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// WHOLE-RUN EXPORT
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Chains merges the given sealed chains in timestamp order and streams
// them through a Writer, returning the line count and stream digest.
func Chains(sink io.Writer, reg *points.Registry, adj tsc.Adjust, chains ...*pstamp.Ring) (uint64, string, error) {
	w := NewWriter(sink, reg, adj)
	m := pstamp.NewMerger(chains...)
	for {
		e, ok := m.Next()
		if !ok {
			break
		}
		if err := w.WriteEntry(&e); err != nil {
			return w.Count(), "", err
		}
	}
	return w.Count(), w.Digest(), nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// READBACK
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// ReadAll parses a JSONL trace back into lines, mostly for verification
// and tooling.
func ReadAll(r io.Reader) ([]TraceLine, error) {
	var out []TraceLine
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var line TraceLine
		if err := sonnet.Unmarshal(raw, &line); err != nil {
			return nil, fmt.Errorf("failed to parse trace line %d: %w", len(out), err)
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	return out, nil
}
