package feature

import (
	"strings"

	"github.com/cognicore/sensekit/pkg/sensekit/nlp"
)

// StringList flattens list-valued annotations (synonyms, clusters, ...)
// stored under one or more keys. Each element is a separate value.
type StringList struct {
	keys []string
	id   string
}

// NewStringList creates a list lookup over keys, concatenated in key order.
func NewStringList(keys ...string) *StringList {
	return &StringList{keys: keys, id: "List(" + strings.Join(keys, KeyDelim) + ")"}
}

// ID implements Extractor.
func (s *StringList) ID() string {
	return s.id
}

// Extract implements Extractor.
func (s *StringList) Extract(t *nlp.Token) []string {
	var out []string
	for _, key := range s.keys {
		for _, v := range t.ListFeature(key) {
			if v == "" {
				continue
			}
			out = append(out, v)
		}
	}
	return out
}
