package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/cognicore/sensekit/pkg/sensekit/store/sqlite"
)

// InspectOptions holds the inspect command settings
type InspectOptions struct {
	DBPath string
	Name   string
	Limit  int
}

func parseInspectArgs(args []string, ui UI) (InspectOptions, error) {
	var opts InspectOptions
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.StringVar(&opts.DBPath, "db", "", "Model database path (required)")
	fs.StringVar(&opts.Name, "name", "", "Show this model's labels and features")
	fs.IntVar(&opts.Limit, "n", 20, "Number of features to print (-1 for all)")

	if err := parseFlags(fs, args, ui); err != nil {
		return opts, err
	}
	if opts.DBPath == "" {
		return opts, errors.New("-db required")
	}
	return opts, nil
}

func runInspect(opts InspectOptions, ui UI) error {
	ctx := context.Background()

	st, err := sqlite.OpenSQLite(ctx, opts.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	if opts.Name == "" {
		infos, err := st.ListModels(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(ui.Out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tID\tFEATURES\tLABELS\tSAVED")
		for _, info := range infos {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
				info.Name, info.ModelID, info.Features, info.Labels, info.Saved.Format(time.RFC3339))
		}
		return w.Flush()
	}

	model, _, err := st.LoadModel(ctx, opts.Name)
	if err != nil {
		return err
	}
	fmt.Fprintf(ui.Out, "model %s (%s)\n", opts.Name, model.ID)
	fmt.Fprintf(ui.Out, "created %s\n", model.Created.Format(time.RFC3339))
	fmt.Fprintf(ui.Out, "labels (%d):\n", model.Labels.Len())
	for i, l := range model.Labels.Keys() {
		fmt.Fprintf(ui.Out, "  %d\t%s\n", i, l)
	}
	fmt.Fprintf(ui.Out, "features (%d):\n", model.Features.Len())
	for i, f := range model.Features.Keys() {
		if opts.Limit >= 0 && i >= opts.Limit {
			fmt.Fprintf(ui.Out, "  ...\n")
			break
		}
		fmt.Fprintf(ui.Out, "  %d\t%s\n", i, f)
	}
	return nil
}
