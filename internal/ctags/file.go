package ctags

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// WriteFile replaces path with content atomically: readers see either the
// old tags file or the new one, never a partial write.
func WriteFile(fsys afero.Fs, path, content string) error {
	tmp, err := afero.TempFile(fsys, filepath.Dir(path), ".qxtags-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	name := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = fsys.Remove(name)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = fsys.Remove(name)
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := fsys.Chmod(name, 0o644); err != nil {
		_ = fsys.Remove(name)
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := fsys.Rename(name, path); err != nil {
		_ = fsys.Remove(name)
		return fmt.Errorf("renaming to %s: %w", path, err)
	}
	return nil
}
