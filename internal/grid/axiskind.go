package grid

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// AxisKind tags what a grid axis represents. The tag list of an extent is
// optional, and when present must be duplicate-free.
type AxisKind uint8

const (
	KindUnknown AxisKind = iota
	KindColumn
	KindRow
	KindVertical
	KindTime
	KindTrack
	KindCrossTrack
)

func (k AxisKind) String() string {
	switch k {
	case KindColumn:
		return "column"
	case KindRow:
		return "row"
	case KindVertical:
		return "vertical"
	case KindTime:
		return "time"
	case KindTrack:
		return "track"
	case KindCrossTrack:
		return "cross-track"
	default:
		return "unknown"
	}
}

// kindPool interns axis-kind slices so that the few canonical labelings
// (column/row, column/row/time, …) share one backing array across all
// extents. Purely a memory-sharing optimization; correctness does not
// depend on it.
var kindPool = struct {
	mu sync.RWMutex
	m  map[uint64][][]AxisKind
}{m: make(map[uint64][][]AxisKind)}

func hashKinds(kinds []AxisKind) uint64 {
	buf := make([]byte, len(kinds))
	for i, k := range kinds {
		buf[i] = byte(k)
	}
	return xxhash.Sum64(buf)
}

func kindsEqual(a, b []AxisKind) bool {
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

// internKinds returns a shared copy of the given kind list. The input is
// not retained.
func internKinds(kinds []AxisKind) []AxisKind {
	if len(kinds) == 0 {
		return nil
	}
	h := hashKinds(kinds)

	kindPool.mu.RLock()
	for _, cand := range kindPool.m[h] {
		if kindsEqual(cand, kinds) {
			kindPool.mu.RUnlock()
			return cand
		}
	}
	kindPool.mu.RUnlock()

	kindPool.mu.Lock()
	defer kindPool.mu.Unlock()
	for _, cand := range kindPool.m[h] {
		if kindsEqual(cand, kinds) {
			return cand
		}
	}
	shared := append([]AxisKind(nil), kinds...)
	kindPool.m[h] = append(kindPool.m[h], shared)
	return shared
}

// validateKinds checks that a kind list matches the extent dimension and
// contains no duplicate tags (KindUnknown may repeat).
func validateKinds(kinds []AxisKind, dim int) error {
	if kinds == nil {
		return nil
	}
	if len(kinds) != dim {
		return &DimensionsError{Reason: "axis-kind list length mismatch", Got: len(kinds), Want: dim}
	}
	var seen [256]bool
	for _, k := range kinds {
		if k == KindUnknown {
			continue
		}
		if seen[k] {
			return fmt.Errorf("grid: duplicate axis kind %q", k)
		}
		seen[k] = true
	}
	return nil
}
