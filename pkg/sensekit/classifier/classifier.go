// Package classifier defines the sparse vector handed to classifiers and
// the contract a classifier implementation fulfils.
package classifier

import (
	"context"
	"sort"
)

// NoTarget marks an instance without a known class.
const NoTarget = -1

// Entry is one populated index of a sparse vector.
type Entry struct {
	Index int
	Value float64
}

// SparseInstance is a read-only sparse vector with an instance id and a
// target class index. Entries are kept in ascending index order.
type SparseInstance struct {
	id      int
	target  int
	entries []Entry
}

// NewSparseInstance builds an instance from an index → value map.
func NewSparseInstance(id, target int, values map[int]float64) SparseInstance {
	entries := make([]Entry, 0, len(values))
	for i, v := range values {
		entries = append(entries, Entry{Index: i, Value: v})
	}
	sort.Slice(entries, func(a, b int) bool {
		return entries[a].Index < entries[b].Index
	})
	return SparseInstance{id: id, target: target, entries: entries}
}

// ID returns the unique instance id.
func (s SparseInstance) ID() int { return s.id }

// Target returns the class index, or NoTarget.
func (s SparseInstance) Target() int { return s.target }

// Len returns the number of populated indices.
func (s SparseInstance) Len() int { return len(s.entries) }

// Entries returns the populated (index, value) pairs in ascending index order.
func (s SparseInstance) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Value returns the value at index i; absent indices are zero.
func (s SparseInstance) Value(i int) float64 {
	k := sort.Search(len(s.entries), func(j int) bool {
		return s.entries[j].Index >= i
	})
	if k < len(s.entries) && s.entries[k].Index == i {
		return s.entries[k].Value
	}
	return 0
}

// Each calls fn for every populated index in ascending order.
func (s SparseInstance) Each(fn func(index int, value float64)) {
	for _, e := range s.entries {
		fn(e.Index, e.Value)
	}
}

// Classifier is trained on sparse instances and predicts class indices.
// It does not know about feature keys or label strings.
type Classifier interface {
	Train(ctx context.Context, instances []SparseInstance) error
	Classify(x SparseInstance) int
	Score(x SparseInstance) map[int]float64
}
