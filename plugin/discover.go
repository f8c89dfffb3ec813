package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// executableDir returns the directory holding the running binary.
func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// resolveDir resolves dir against the executable's directory unless it is
// already absolute.
func (r *registry) resolveDir(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir), nil
	}
	base, err := r.baseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, dir), nil
}

// pattern matches the file names of every loadable plugin kind.
func (r *registry) pattern() (glob.Glob, error) {
	exts := r.extensions()
	if len(exts) == 0 {
		return nil, errors.New("no plugin loaders registered")
	}
	sort.Strings(exts)
	for i, ext := range exts {
		exts[i] = glob.QuoteMeta(ext)
	}
	return glob.Compile("*{" + strings.Join(exts, ",") + "}")
}

// Discover loads every plugin file in dir.
//
// A relative dir is resolved against the directory of the running
// executable. The returned error is non-nil only when dir itself cannot be
// listed. Files that fail to load are skipped and reported in the returned
// slice; every other plugin stays registered.
func (m *Manager) Discover(dir string) ([]*LoadError, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	root, err := m.resolveDir(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read plugin directory: %w", err)
	}
	match, err := m.pattern()
	if err != nil {
		return nil, err
	}

	m.log.Trace().Str("dir", root).Msg("discovering plugins")

	var failures []*LoadError
	for _, entry := range entries {
		if entry.IsDir() || !match.Match(strings.ToLower(entry.Name())) {
			continue
		}
		path := filepath.Join(root, entry.Name())
		m.log.Trace().Str("path", path).Msg("found plugin file")

		if err := m.load(path); err != nil {
			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				loadErr = newLoadError(path, err)
			}
			m.log.Error().Err(loadErr.Err).Str("path", path).Str("symbol", loadErr.Symbol).Msg("skipping plugin")
			failures = append(failures, loadErr)
		}
	}
	return failures, nil
}
