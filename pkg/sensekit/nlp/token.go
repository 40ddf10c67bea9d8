package nlp

import "sort"

// Well-known feature keys attached by parsers and annotators.
// Open string keys are allowed alongside these.
const (
	Text      = "Text"
	Lemma     = "Lemma"
	Pos       = "Pos"
	Tag       = "Tag"
	Dep       = "Dep"
	Gold      = "Gold"
	Predicate = "Predicate"
	Metadata  = "Metadata"
	Sense     = "Sense"
)

// Token is a single word of a sentence with its annotations.
// The index is fixed at creation; features can be added or overwritten
// but never removed.
type Token struct {
	index    int
	features map[string]any
}

// NewToken creates a token at the given position.
func NewToken(index int) *Token {
	return &Token{index: index, features: make(map[string]any)}
}

// Index returns the position of the token in its sentence, starting at 0.
func (t *Token) Index() int {
	return t.index
}

// Feature returns the raw value stored under key, or nil.
func (t *Token) Feature(key string) any {
	return t.features[key]
}

// SetFeature stores a value under key, replacing any previous value.
func (t *Token) SetFeature(key string, value any) {
	t.features[key] = value
}

// StringFeature returns the value under key if it is a non-empty string.
func (t *Token) StringFeature(key string) (string, bool) {
	s, ok := t.features[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// ListFeature returns the value under key as a list of strings.
// A plain string is returned as a single element list; empty values yield nil.
func (t *Token) ListFeature(key string) []string {
	switch v := t.features[key].(type) {
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

// Keys returns the feature keys set on the token, sorted.
func (t *Token) Keys() []string {
	keys := make([]string, 0, len(t.features))
	for k := range t.features {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
