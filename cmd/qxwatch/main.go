// qxwatch keeps a qxtags tags file up to date while source trees change.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/phobologic/qxtags/internal/config"
	"github.com/phobologic/qxtags/internal/ctags"
	"github.com/phobologic/qxtags/internal/indexer"
	"github.com/phobologic/qxtags/internal/logging"
	"github.com/phobologic/qxtags/internal/registry"
	"github.com/phobologic/qxtags/internal/watch"
)

const programName = "qxtags"

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("qxwatch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath string
		output     string
		debounce   time.Duration
	)
	fs.StringVar(&configPath, "config", "", "config file (default "+config.DefaultFile+" if present)")
	fs.StringVar(&output, "o", "", "tags file to write")
	fs.DurationVar(&debounce, "debounce", 0, "delay before re-indexing after a change")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: qxwatch [flags] [root...]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	var cfg config.Config
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath, false)
	} else {
		cfg, err = config.Load(config.DefaultFile, true)
	}
	if err != nil {
		return err
	}

	if fs.NArg() > 0 {
		cfg.Roots = fs.Args()
	}
	if output != "" {
		cfg.Output = output
	}
	if debounce > 0 {
		cfg.Debounce = debounce
	}
	if err := cfg.Resolve(); err != nil {
		return err
	}

	log := logging.New(stderr)
	osfs := afero.NewOsFs()

	reg, err := registry.New(osfs, log)
	if err != nil {
		return err
	}
	ix := indexer.New(osfs, reg, log)

	if cfg.Gitignore {
		// Only the first root's .gitignore is honoured.
		gi, err := indexer.LoadGitignore(osfs, cfg.Roots[0])
		if err != nil {
			return err
		}
		if gi != nil {
			ix.SetIgnore(cfg.Roots[0], gi)
		}
	}

	w, err := watch.New(ix, cfg.Roots, cfg.Debounce, log)
	if err != nil {
		return err
	}
	defer w.Close()

	log.Info("watching", "roots", cfg.Roots, "output", cfg.Output)
	return w.Run(ctx, func() error {
		if err := ctags.WriteFile(osfs, cfg.Output, ctags.Encode(reg.Classes(), programName, version)); err != nil {
			return err
		}
		log.Info("wrote tags", "path", cfg.Output, "classes", reg.Len())
		return nil
	})
}
