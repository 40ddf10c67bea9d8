package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// UI holds the command output streams.
// Used for injecting buffers during testing.
type UI struct {
	Out io.Writer
	Err io.Writer
}

func main() {
	ui := UI{Out: os.Stdout, Err: os.Stderr}

	if len(os.Args) < 2 {
		usage(ui.Err)
		os.Exit(2)
	}

	if err := runCommand(os.Args[1], os.Args[2:], ui); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("sensekit %s: %v", os.Args[1], err)
	}
}

func runCommand(cmd string, args []string, ui UI) error {
	switch cmd {
	case "train":
		opts, err := parseTrainArgs(args, ui)
		if err != nil {
			return err
		}
		return runTrain(opts, ui)
	case "apply":
		opts, err := parseApplyArgs(args, ui)
		if err != nil {
			return err
		}
		return runApply(opts, ui)
	case "inspect":
		opts, err := parseInspectArgs(args, ui)
		if err != nil {
			return err
		}
		return runInspect(opts, ui)
	case "help", "-h", "--help":
		usage(ui.Out)
		return nil
	default:
		usage(ui.Err)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: sensekit <command> [options]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  train    build a feature model and classifier from a labelled CoNLL-U corpus\n")
	fmt.Fprintf(w, "  apply    annotate predicates in a CoNLL-U corpus with a stored model\n")
	fmt.Fprintf(w, "  inspect  list stored models or show one of them\n")
}

func parseFlags(fs *flag.FlagSet, args []string, ui UI) error {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(ui.Out)
			fs.PrintDefaults()
			return err
		}
		fs.SetOutput(ui.Err)
		fs.PrintDefaults()
		return err
	}
	return nil
}

// resourceFlag collects repeated -resource name=path values.
type resourceFlag map[string]string

func (r resourceFlag) String() string { return fmt.Sprint(map[string]string(r)) }

func (r resourceFlag) Set(v string) error {
	name, path, ok := strings.Cut(v, "=")
	if !ok || name == "" || path == "" {
		return fmt.Errorf("resource must be name=path, got %q", v)
	}
	r[name] = path
	return nil
}
