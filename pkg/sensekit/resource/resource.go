// Package resource loads lexical lookup tables and attaches their entries
// to tokens before feature extraction.
package resource

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cognicore/sensekit/pkg/sensekit/internalerr"
	"github.com/cognicore/sensekit/pkg/sensekit/nlp"
)

// Multimap maps a key to an ordered list of values.
type Multimap struct {
	values    map[string][]string
	lowercase bool
}

// Option configures how a Multimap normalises keys.
type Option func(*Multimap)

// Lowercase folds keys to lower case on load and on lookup.
func Lowercase() Option {
	return func(m *Multimap) { m.lowercase = true }
}

// ReadTSV parses lines of the form key<TAB>value1<TAB>value2...
// Blank lines are ignored. Values for a repeated key are appended.
func ReadTSV(r io.Reader, opts ...Option) (*Multimap, error) {
	m := &Multimap{values: make(map[string][]string)}
	for _, opt := range opts {
		opt(m)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		key := m.normalise(fields[0])
		if key == "" {
			continue
		}
		for _, v := range fields[1:] {
			if v = strings.TrimSpace(v); v != "" {
				m.values[key] = append(m.values[key], v)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read tsv: %w", err)
	}
	return m, nil
}

// LoadTSV reads a TSV resource from path.
func LoadTSV(path string, opts ...Option) (*Multimap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTSV(f, opts...)
}

func (m *Multimap) normalise(key string) string {
	key = strings.TrimSpace(key)
	if m.lowercase {
		key = strings.ToLower(key)
	}
	return key
}

// Get returns a copy of the values for key, or nil.
func (m *Multimap) Get(key string) []string {
	vs := m.values[m.normalise(key)]
	if len(vs) == 0 {
		return nil
	}
	return append([]string(nil), vs...)
}

// Len returns the number of keys.
func (m *Multimap) Len() int {
	return len(m.values)
}

// Annotator copies resource values onto tokens: the Source feature is the
// lookup key and the values are stored as a []string under Target.
type Annotator struct {
	Source string
	Target string
	Map    *Multimap
}

// NewAnnotator validates the annotator fields.
func NewAnnotator(source, target string, m *Multimap) (*Annotator, error) {
	if source == "" || target == "" || m == nil {
		return nil, fmt.Errorf("%w: resource annotator needs source, target and map", internalerr.ErrInvalidInput)
	}
	return &Annotator{Source: source, Target: target, Map: m}, nil
}

// Annotate sets Target on every token of t whose Source has resource values.
// It returns the number of tokens annotated.
func (a *Annotator) Annotate(t *nlp.Tree) int {
	n := 0
	for _, tok := range t.Tokens() {
		key, ok := tok.StringFeature(a.Source)
		if !ok {
			continue
		}
		if vs := a.Map.Get(key); vs != nil {
			tok.SetFeature(a.Target, vs)
			n++
		}
	}
	return n
}
