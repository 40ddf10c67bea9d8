package config

import (
	"fmt"
	"path/filepath"

	"github.com/cognicore/sensekit/pkg/sensekit/internalerr"
	"github.com/cognicore/sensekit/pkg/sensekit/pipeline"
	"github.com/cognicore/sensekit/pkg/sensekit/resource"
)

// Loader loads the pipeline file and the resources it references
type Loader struct {
	PipelinePath string
	// ResourcePaths overrides the path of a named resource.
	ResourcePaths map[string]string
}

// Components holds everything needed to build a pipeline
type Components struct {
	Bindings   []pipeline.Binding
	Annotators []*resource.Annotator
	Train      Train
}

// Load reads the pipeline description and returns initialized components
func (l *Loader) Load() (*Components, error) {
	if l.PipelinePath == "" {
		return nil, fmt.Errorf("%w: no pipeline path", internalerr.ErrInvalidConfig)
	}
	cfg, err := LoadPipeline(l.PipelinePath)
	if err != nil {
		return nil, fmt.Errorf("load pipeline: %w", err)
	}

	comp := &Components{Train: cfg.Train}
	comp.Bindings, err = cfg.Bindings()
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	// Relative paths in the file resolve against the pipeline file's directory
	base := filepath.Dir(l.PipelinePath)
	for _, r := range cfg.Resources {
		path := r.Path
		if path != "" && !filepath.IsAbs(path) {
			path = filepath.Join(base, path)
		}
		if override, ok := l.ResourcePaths[r.Name]; ok {
			path = override
		}
		if path == "" {
			return nil, fmt.Errorf("%w: resource %q has no path", internalerr.ErrInvalidConfig, r.Name)
		}

		var opts []resource.Option
		if r.Lowercase {
			opts = append(opts, resource.Lowercase())
		}
		m, err := resource.LoadTSV(path, opts...)
		if err != nil {
			return nil, fmt.Errorf("load resource %q: %w", r.Name, err)
		}
		a, err := resource.NewAnnotator(r.Source, r.Target, m)
		if err != nil {
			return nil, fmt.Errorf("resource %q: %w", r.Name, err)
		}
		comp.Annotators = append(comp.Annotators, a)
	}

	return comp, nil
}
