package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gosuri/uiprogress"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cognicore/sensekit/pkg/sensekit"
	"github.com/cognicore/sensekit/pkg/sensekit/classifier/perceptron"
	"github.com/cognicore/sensekit/pkg/sensekit/config"
	"github.com/cognicore/sensekit/pkg/sensekit/corpus"
	"github.com/cognicore/sensekit/pkg/sensekit/metrics"
	"github.com/cognicore/sensekit/pkg/sensekit/pipeline"
	"github.com/cognicore/sensekit/pkg/sensekit/store/sqlite"
)

// TrainOptions holds the train command settings
type TrainOptions struct {
	CorpusPath   string
	FeaturesPath string
	DBPath       string
	Name         string
	Epochs       int
	Workers      int
	SVMPath      string
	MetricsPath  string
	Progress     bool
	Resources    resourceFlag
}

func parseTrainArgs(args []string, ui UI) (TrainOptions, error) {
	opts := TrainOptions{Resources: resourceFlag{}}
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.StringVar(&opts.CorpusPath, "corpus", "", "Labelled corpus, CoNLL-U or .jsonl (required)")
	fs.StringVar(&opts.FeaturesPath, "features", "", "Feature pipeline YAML (required)")
	fs.StringVar(&opts.DBPath, "db", "", "Model database path (defaults to train.db in the features file)")
	fs.StringVar(&opts.Name, "name", "", "Model name (defaults to train.name in the features file)")
	fs.IntVar(&opts.Epochs, "epochs", 0, "Perceptron epochs (defaults to train.epochs or 10)")
	fs.IntVar(&opts.Workers, "workers", 0, "Extraction workers (defaults to train.workers or GOMAXPROCS)")
	fs.StringVar(&opts.SVMPath, "svm", "", "Also write training instances in LibSVM format")
	fs.StringVar(&opts.MetricsPath, "metrics", "", "Write Prometheus metrics to this textfile")
	fs.BoolVar(&opts.Progress, "progress", true, "Show a progress bar")
	fs.Var(opts.Resources, "resource", "Override a resource path as name=path (repeatable)")

	if err := parseFlags(fs, args, ui); err != nil {
		return opts, err
	}
	if opts.CorpusPath == "" {
		return opts, errors.New("-corpus required")
	}
	if opts.FeaturesPath == "" {
		return opts, errors.New("-features required")
	}
	return opts, nil
}

func runTrain(opts TrainOptions, ui UI) error {
	ctx := context.Background()

	loader := config.Loader{PipelinePath: opts.FeaturesPath, ResourcePaths: opts.Resources}
	components, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	settings := mergeTrain(components.Train, opts)
	if settings.DBPath == "" {
		return errors.New("-db required")
	}
	if settings.Name == "" {
		return errors.New("-name required")
	}

	sentences, err := corpus.Load(opts.CorpusPath)
	if err != nil {
		return err
	}
	foci := corpus.Foci(sentences)
	if len(foci) == 0 {
		return fmt.Errorf("no focus instances in %s", opts.CorpusPath)
	}
	log.Printf("Loaded %d instances from %s", len(foci), opts.CorpusPath)

	st, err := sqlite.OpenSQLite(ctx, settings.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New()
	if err := m.Register(registry); err != nil {
		st.Close()
		return err
	}

	pipeOpts := []pipeline.Option{pipeline.WithMetrics(m), pipeline.WithWorkers(settings.Workers)}
	var bar *uiprogress.Bar
	if opts.Progress {
		uiprogress.Start()
		bar = uiprogress.AddBar(len(foci))
		bar.AppendCompleted()
		bar.PrependElapsed()
		pipeOpts = append(pipeOpts, pipeline.WithProgress(func(done, total int) {
			_ = bar.Set(done)
		}))
	}

	annotator, err := sensekit.New(sensekit.Options{
		Bindings:        components.Bindings,
		Resources:       components.Annotators,
		Classifier:      perceptron.New(settings.Epochs),
		Store:           st,
		PipelineOptions: pipeOpts,
	})
	if err != nil {
		st.Close()
		return err
	}
	defer annotator.Close()

	instances, err := annotator.Train(ctx, foci)
	if opts.Progress {
		uiprogress.Stop()
	}
	if err != nil {
		return err
	}

	model := annotator.Model()
	log.Printf("Model %s: %d features, %d labels", model.ID, model.Features.Len(), model.Labels.Len())

	if err := annotator.Save(ctx, settings.Name); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	fmt.Fprintf(ui.Out, "saved %s (%s) to %s\n", settings.Name, model.ID, settings.DBPath)

	if opts.SVMPath != "" {
		out, err := os.Create(opts.SVMPath)
		if err != nil {
			return err
		}
		if err := corpus.WriteLibSVM(out, instances); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
		log.Printf("Wrote %d instances to %s", len(instances), opts.SVMPath)
	}

	if opts.MetricsPath != "" {
		if err := prometheus.WriteToTextfile(opts.MetricsPath, registry); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

// mergeTrain applies command line settings over the features file.
func mergeTrain(cfg config.Train, opts TrainOptions) config.Train {
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}
	if opts.Name != "" {
		cfg.Name = opts.Name
	}
	if opts.Epochs > 0 {
		cfg.Epochs = opts.Epochs
	}
	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = perceptron.DefaultEpochs
	}
	return cfg
}
