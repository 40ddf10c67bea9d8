package vocab

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cognicore/sensekit/pkg/sensekit/internalerr"
)

// Vocabulary maps symbolic keys to dense indices in first-seen order.
// Indices are never reassigned. Allocation is serialised; once frozen the
// vocabulary is read-only and lookups take no lock.
type Vocabulary struct {
	mu     sync.RWMutex
	frozen atomic.Bool
	index  map[string]int
	keys   []string
}

// NewVocabulary creates an empty, mutable vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{index: make(map[string]int)}
}

// Lookup returns the index of key without allocating.
func (v *Vocabulary) Lookup(key string) (int, bool) {
	if v.frozen.Load() {
		i, ok := v.index[key]
		return i, ok
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	i, ok := v.index[key]
	return i, ok
}

// Index returns the index of key, allocating the next index for an unseen
// key. A frozen vocabulary returns ErrFrozenVocabulary for unseen keys.
func (v *Vocabulary) Index(key string) (int, error) {
	if i, ok := v.Lookup(key); ok {
		return i, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if i, ok := v.index[key]; ok {
		return i, nil
	}
	if v.frozen.Load() {
		return -1, fmt.Errorf("%w: cannot add %q", internalerr.ErrFrozenVocabulary, key)
	}
	i := len(v.keys)
	v.index[key] = i
	v.keys = append(v.keys, key)
	return i, nil
}

// Freeze makes the vocabulary read-only. It cannot be undone.
func (v *Vocabulary) Freeze() {
	v.mu.Lock()
	v.frozen.Store(true)
	v.mu.Unlock()
}

// Frozen reports whether the vocabulary is read-only.
func (v *Vocabulary) Frozen() bool {
	return v.frozen.Load()
}

// Len returns the number of keys.
func (v *Vocabulary) Len() int {
	if v.frozen.Load() {
		return len(v.keys)
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.keys)
}

// Key returns the key stored at index i.
func (v *Vocabulary) Key(i int) (string, bool) {
	if !v.frozen.Load() {
		v.mu.RLock()
		defer v.mu.RUnlock()
	}
	if i < 0 || i >= len(v.keys) {
		return "", false
	}
	return v.keys[i], true
}

// Keys returns all keys in index order.
func (v *Vocabulary) Keys() []string {
	if !v.frozen.Load() {
		v.mu.RLock()
		defer v.mu.RUnlock()
	}
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

func (v *Vocabulary) clone() *Vocabulary {
	keys := v.Keys()
	c := &Vocabulary{index: make(map[string]int, len(keys)), keys: keys}
	for i, k := range keys {
		c.index[k] = i
	}
	return c
}

// fromKeys rebuilds a frozen vocabulary from keys in index order.
func fromKeys(keys []string) (*Vocabulary, error) {
	v := NewVocabulary()
	for i, k := range keys {
		if _, dup := v.index[k]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q at index %d", internalerr.ErrArtifactFormat, k, i)
		}
		v.index[k] = i
		v.keys = append(v.keys, k)
	}
	v.Freeze()
	return v, nil
}
