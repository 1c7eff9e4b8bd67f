// qxtags generates a tags file for qooxdoo class definitions.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/phobologic/qxtags/internal/ctags"
	"github.com/phobologic/qxtags/internal/logging"
	"github.com/phobologic/qxtags/internal/registry"
)

const programName = "qxtags"

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run indexes every file named in args and writes the tags file to stdout.
// Arguments are always paths; there are no flags.
func run(args []string, stdout, stderr io.Writer) error {
	log := logging.New(stderr)

	reg, err := registry.New(afero.NewOsFs(), log)
	if err != nil {
		return err
	}

	for _, arg := range args {
		path, err := canonicalPath(arg)
		if err != nil {
			return err
		}
		found, err := reg.CheckFile(path)
		if err != nil {
			return err
		}
		if !found {
			log.Warn("file not found", "path", path)
		}
	}

	_, err = io.WriteString(stdout, ctags.Encode(reg.Classes(), programName, version))
	return err
}

// canonicalPath makes p absolute and resolves symlinks when p exists.
func canonicalPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", p, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}
