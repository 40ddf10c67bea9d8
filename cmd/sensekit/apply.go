package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cognicore/sensekit/pkg/sensekit"
	"github.com/cognicore/sensekit/pkg/sensekit/config"
	"github.com/cognicore/sensekit/pkg/sensekit/corpus"
	"github.com/cognicore/sensekit/pkg/sensekit/nlp"
	"github.com/cognicore/sensekit/pkg/sensekit/store/sqlite"
)

// ApplyOptions holds the apply command settings
type ApplyOptions struct {
	CorpusPath   string
	FeaturesPath string
	DBPath       string
	Name         string
	OutPath      string
	Resources    resourceFlag
}

func parseApplyArgs(args []string, ui UI) (ApplyOptions, error) {
	opts := ApplyOptions{Resources: resourceFlag{}}
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	fs.StringVar(&opts.CorpusPath, "corpus", "", "Corpus with Predicate annotations, CoNLL-U or .jsonl (required)")
	fs.StringVar(&opts.FeaturesPath, "features", "", "Feature pipeline YAML the model was trained with (required)")
	fs.StringVar(&opts.DBPath, "db", "", "Model database path (required)")
	fs.StringVar(&opts.Name, "name", "", "Model name (required)")
	fs.StringVar(&opts.OutPath, "out", "", "Output CoNLL-U path (default stdout)")
	fs.Var(opts.Resources, "resource", "Override a resource path as name=path (repeatable)")

	if err := parseFlags(fs, args, ui); err != nil {
		return opts, err
	}
	required := []struct{ name, value string }{
		{"corpus", opts.CorpusPath},
		{"features", opts.FeaturesPath},
		{"db", opts.DBPath},
		{"name", opts.Name},
	}
	for _, r := range required {
		if r.value == "" {
			return opts, fmt.Errorf("-%s required", r.name)
		}
	}
	return opts, nil
}

func runApply(opts ApplyOptions, ui UI) error {
	ctx := context.Background()

	loader := config.Loader{PipelinePath: opts.FeaturesPath, ResourcePaths: opts.Resources}
	components, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	st, err := sqlite.OpenSQLite(ctx, opts.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	annotator, err := sensekit.Load(ctx, st, opts.Name, sensekit.Options{
		Bindings:  components.Bindings,
		Resources: components.Annotators,
	})
	if err != nil {
		st.Close()
		return err
	}
	defer annotator.Close()

	sentences, err := corpus.Load(opts.CorpusPath)
	if err != nil {
		return err
	}

	trees := make([]*nlp.Tree, len(sentences))
	for i, s := range sentences {
		trees[i] = s.Tree
	}
	n, err := annotator.Annotate(ctx, trees...)
	if err != nil {
		return err
	}
	log.Printf("Annotated %d predicates in %d sentences", n, len(sentences))
	if correct, total := goldAgreement(trees); total > 0 {
		log.Printf("Agreement with gold: %d/%d (%.1f%%)", correct, total, 100*float64(correct)/float64(total))
	}

	var out io.Writer = ui.Out
	if opts.OutPath != "" {
		f, err := os.Create(opts.OutPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if err := corpus.WriteSentences(out, sentences); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// goldAgreement counts predicates whose predicted sense matches Gold.
func goldAgreement(trees []*nlp.Tree) (correct, total int) {
	for _, t := range trees {
		for _, tok := range t.Tokens() {
			gold, ok := tok.StringFeature(nlp.Gold)
			if !ok {
				continue
			}
			if _, ok := tok.StringFeature(nlp.Predicate); !ok {
				continue
			}
			total++
			if sense, _ := tok.StringFeature(nlp.Sense); sense == gold {
				correct++
			}
		}
	}
	return correct, total
}
