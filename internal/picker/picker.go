// Package picker lets the user walk the filesystem from a root directory and
// select one directory through a selection menu.
package picker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/treykane/sshh/internal/ui"
)

// GoBack is the menu option that returns to the parent directory.
const GoBack = "Go Back"

// ErrDirectoryUnreadable is returned when the current directory cannot be
// listed. The traversal stops; nothing is retried.
var ErrDirectoryUnreadable = errors.New("directory unreadable")

type frame struct {
	label string
	path  string
}

// Picker walks directories with a stack so "Go Back" can return along the
// path taken. The root frame is never popped.
type Picker struct {
	chooser ui.Chooser
}

func New(chooser ui.Chooser) *Picker {
	return &Picker{chooser: chooser}
}

// SelectLabel returns the sentinel option that ends the traversal.
func SelectLabel(label string) string {
	return fmt.Sprintf("Select [%s]?", label)
}

// Options returns the menu for a directory labelled label whose
// subdirectories are dirs. dirs is sorted in place.
func Options(label string, dirs []string) []string {
	sort.Strings(dirs)
	opts := make([]string, 0, len(dirs)+2)
	opts = append(opts, GoBack)
	opts = append(opts, dirs...)
	return append(opts, SelectLabel(label))
}

// Pick runs the traversal from root and returns the absolute path of the
// directory selected.
func (p *Picker) Pick(prompt, root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", root, err)
	}
	stack := []frame{{label: filepath.Base(abs), path: abs}}
	for {
		current := stack[len(stack)-1]
		dirs, err := Subdirectories(current.path)
		if err != nil {
			return "", err
		}
		opts := Options(current.label, dirs)
		i, err := p.chooser.Choose(prompt, opts)
		if err != nil {
			return "", err
		}
		if i < 0 || i >= len(opts) {
			return "", fmt.Errorf("menu returned invalid choice %d", i)
		}
		switch {
		case i == len(opts)-1:
			return current.path, nil
		case i == 0:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		default:
			name := opts[i]
			stack = append(stack, frame{label: name, path: filepath.Join(current.path, name)})
		}
	}
}

// Subdirectories lists the immediate subdirectories of path, following
// symlinks. Plain files are skipped.
func Subdirectories(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDirectoryUnreadable, path, err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
			continue
		}
		if e.Type()&os.ModeSymlink != 0 {
			if st, err := os.Stat(filepath.Join(path, e.Name())); err == nil && st.IsDir() {
				dirs = append(dirs, e.Name())
			}
		}
	}
	return dirs, nil
}
