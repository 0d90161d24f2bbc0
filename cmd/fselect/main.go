// Command fselect is the CLI entry point (spec 6): all positional
// arguments are joined with spaces to form the query, which is parsed and
// executed against the platform config file (or built-in defaults).
// Grounded on original_source/src/main.rs's own args-join/usage-info
// shape, with -debug/-no-errors added per spec 6's AMBIENT note.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/go-fselect/fselect"
	"github.com/go-fselect/fselect/internal/config"
	"github.com/go-fselect/fselect/internal/errs"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet("fselect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	debug := fs.Bool("debug", false, "enable verbose logging")
	noErrors := fs.Bool("no-errors", false, "suppress per-path walk error messages")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "fselect utility")
		fmt.Fprintln(stderr, "Usage: fselect [-debug] [-no-errors] COLUMN[, COLUMN] from ROOT [where EXPR]")
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return 0
	}
	query := strings.Join(fs.Args(), " ")

	log := logrus.New()
	log.SetOutput(stderr)
	if *debug {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Warn("using default configuration")
		cfg = config.Default()
	}

	onError := func(e error) {
		log.WithError(e).Debug("walk error")
		var walkErr *errs.WalkError
		if !*noErrors && errors.As(e, &walkErr) {
			fmt.Fprintf(stderr, "%s: %v\n", walkErr.Path, walkErr)
		}
	}

	if err := fselect.Run(context.Background(), query, cfg, stdout, onError); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
