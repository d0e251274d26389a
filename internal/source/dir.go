package source

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Dir reads zones from a zoneinfo directory tree, one file per zone
// with names like "America/New_York".
type Dir struct {
	root string
}

// NewDir returns a source reading from the tree rooted at root.
func NewDir(root string) *Dir { return &Dir{root: root} }

func (d *Dir) Lookup(name string) ([]byte, error) {
	path := filepath.Join(d.root, name)
	if !strings.HasPrefix(path, filepath.Clean(d.root)+string(filepath.Separator)) {
		return nil, fmt.Errorf("source: zone name %q escapes %s", name, d.root)
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %q in %s", ErrNotFound, name, d)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read zone %q: %w", name, err)
	}
	return data, nil
}

// Zones walks the tree and reports every file carrying the TZif magic,
// which skips the tab files and other metadata zoneinfo trees ship.
func (d *Dir) Zones() ([]string, error) {
	root := filepath.Clean(d.root)
	var names []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // unreadable subtree, skip
		}
		if entry.IsDir() || !hasTZifMagic(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	sort.Strings(names)
	return names, nil
}

func (d *Dir) String() string { return "dir:" + d.root }

func hasTZifMagic(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return false
	}
	return string(magic[:]) == "TZif"
}
