package pipeline

import (
	"github.com/cognicore/sensekit/pkg/sensekit/contexts"
	"github.com/cognicore/sensekit/pkg/sensekit/feature"
)

// SymbolDelim separates a feature key from its value in the model vocabulary.
const SymbolDelim = "="

// Feature is one extracted (key, value) pair. Key is the extractor ID
// followed by the context ID, e.g. "Lookup(Text)OFFSET[0]".
type Feature struct {
	Key   string
	Value string
}

// Symbol is the vocabulary entry for the feature.
func (f Feature) Symbol() string {
	return f.Key + SymbolDelim + f.Value
}

// Binding pairs a context factory with the extractor applied to its contexts.
type Binding struct {
	factory contexts.Factory
	token   feature.Extractor
	context feature.ContextExtractor
}

// Bind applies e to every token of every context produced by f.
func Bind(f contexts.Factory, e feature.Extractor) Binding {
	return Binding{factory: f, token: e}
}

// BindContext applies e to every context produced by f as a whole.
func BindContext(f contexts.Factory, e feature.ContextExtractor) Binding {
	return Binding{factory: f, context: e}
}

func (b Binding) valid() bool {
	return b.factory != nil && (b.token == nil) != (b.context == nil)
}

// ExtractorID returns the ID of the bound extractor.
func (b Binding) ExtractorID() string {
	if b.context != nil {
		return b.context.ID()
	}
	if b.token != nil {
		return b.token.ID()
	}
	return ""
}

// Keys lists every feature key the binding can produce.
func (b Binding) Keys() []string {
	if b.factory == nil {
		return nil
	}
	ids := b.factory.Identifiers()
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = b.ExtractorID() + id
	}
	return keys
}

func (b Binding) extract(c contexts.Context, emit func(Feature)) {
	key := b.ExtractorID() + c.ID
	if b.context != nil {
		for _, v := range b.context.ExtractContext(c) {
			if v != "" {
				emit(Feature{Key: key, Value: v})
			}
		}
		return
	}
	for _, tok := range c.Tokens {
		for _, v := range b.token.Extract(tok) {
			if v != "" {
				emit(Feature{Key: key, Value: v})
			}
		}
	}
}
