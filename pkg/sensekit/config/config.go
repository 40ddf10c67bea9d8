package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/sensekit/pkg/sensekit/contexts"
	"github.com/cognicore/sensekit/pkg/sensekit/feature"
	"github.com/cognicore/sensekit/pkg/sensekit/internalerr"
	"github.com/cognicore/sensekit/pkg/sensekit/pipeline"
)

// Pipeline is the YAML description of a feature pipeline
type Pipeline struct {
	Resources []Resource `yaml:"resources"`
	Features  []Binding  `yaml:"features"`
	Train     Train      `yaml:"train"`
}

// Resource names a TSV lookup table and the token features it connects
type Resource struct {
	Name      string `yaml:"name"`
	Path      string `yaml:"path"`
	Source    string `yaml:"source"`
	Target    string `yaml:"target"`
	Lowercase bool   `yaml:"lowercase"`
}

// Binding pairs a context factory with an extractor
type Binding struct {
	Context   Context   `yaml:"context"`
	Extractor Extractor `yaml:"extractor"`
}

// Context configures a context factory: offset, path or children
type Context struct {
	Type       string   `yaml:"type"`
	Offsets    []int    `yaml:"offsets"`
	Concat     bool     `yaml:"concat"`
	Relations  []string `yaml:"relations"`
	ByRelation bool     `yaml:"by_relation"`
}

// Extractor configures a feature extractor: lookup, concat, list, lower or join
type Extractor struct {
	Type     string      `yaml:"type"`
	Keys     []string    `yaml:"keys"`
	Fallback *Extractor  `yaml:"fallback"`
	Inner    *Extractor  `yaml:"inner"`
	Children []Extractor `yaml:"children"`
}

// Train holds training settings used by the CLI
type Train struct {
	Epochs  int    `yaml:"epochs"`
	Workers int    `yaml:"workers"`
	DBPath  string `yaml:"db"`
	Name    string `yaml:"name"`
}

// LoadPipeline loads a pipeline description from a YAML file
func LoadPipeline(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePipeline(data)
}

// ParsePipeline decodes a pipeline description
func ParsePipeline(data []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	return &p, nil
}

// Bindings builds the configured context/extractor bindings in file order
func (p *Pipeline) Bindings() ([]pipeline.Binding, error) {
	if len(p.Features) == 0 {
		return nil, fmt.Errorf("%w: no features configured", internalerr.ErrInvalidConfig)
	}
	out := make([]pipeline.Binding, 0, len(p.Features))
	for i, b := range p.Features {
		factory, err := b.Context.build()
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		if b.Extractor.Type == "join" {
			if b.Extractor.Inner == nil {
				return nil, fmt.Errorf("feature %d: %w: join needs inner", i, internalerr.ErrInvalidConfig)
			}
			inner, err := b.Extractor.Inner.build()
			if err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			out = append(out, pipeline.BindContext(factory, feature.NewJoined(inner)))
			continue
		}
		ex, err := b.Extractor.build()
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		out = append(out, pipeline.Bind(factory, ex))
	}
	return out, nil
}

func (c Context) build() (contexts.Factory, error) {
	switch c.Type {
	case "offset":
		if len(c.Offsets) == 0 {
			return nil, fmt.Errorf("%w: offset context needs offsets", internalerr.ErrInvalidConfig)
		}
		if c.Concat {
			return contexts.NewConcatOffset(c.Offsets...), nil
		}
		return contexts.NewOffset(c.Offsets...), nil
	case "path":
		return contexts.NewRootPath(), nil
	case "children":
		if c.ByRelation {
			return contexts.NewChildrenByRelation(c.Relations...), nil
		}
		return contexts.NewChildren(c.Relations...), nil
	default:
		return nil, fmt.Errorf("%w: unknown context type %q", internalerr.ErrInvalidConfig, c.Type)
	}
}

func (e Extractor) build() (feature.Extractor, error) {
	switch e.Type {
	case "lookup":
		if len(e.Keys) == 0 {
			return nil, fmt.Errorf("%w: lookup needs keys", internalerr.ErrInvalidConfig)
		}
		if e.Fallback == nil {
			return feature.NewLookup(e.Keys...), nil
		}
		fb, err := e.Fallback.build()
		if err != nil {
			return nil, err
		}
		return feature.NewLookupWithFallback(e.Keys, fb), nil
	case "list":
		if len(e.Keys) == 0 {
			return nil, fmt.Errorf("%w: list needs keys", internalerr.ErrInvalidConfig)
		}
		return feature.NewStringList(e.Keys...), nil
	case "concat":
		if len(e.Children) == 0 {
			return nil, fmt.Errorf("%w: concat needs children", internalerr.ErrInvalidConfig)
		}
		children := make([]feature.Extractor, len(e.Children))
		for i, c := range e.Children {
			ex, err := c.build()
			if err != nil {
				return nil, err
			}
			children[i] = ex
		}
		return feature.NewConcat(children...), nil
	case "lower":
		if e.Inner == nil {
			return nil, fmt.Errorf("%w: lower needs inner", internalerr.ErrInvalidConfig)
		}
		inner, err := e.Inner.build()
		if err != nil {
			return nil, err
		}
		return feature.NewLowercase(inner), nil
	case "join":
		return nil, fmt.Errorf("%w: join is only valid as a top-level extractor", internalerr.ErrInvalidConfig)
	default:
		return nil, fmt.Errorf("%w: unknown extractor type %q", internalerr.ErrInvalidConfig, e.Type)
	}
}
