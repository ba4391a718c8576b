// Package history records when each saved name was last launched.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/treykane/sshh/internal/appconfig"
)

type store struct {
	LastUsed map[string]int64 `json:"last_used"`
}

func filePath() (string, error) {
	dir, err := appconfig.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.json"), nil
}

// Touch records a launch of name.
func Touch(name string) error {
	st, err := load()
	if err != nil {
		return err
	}
	st.LastUsed[name] = time.Now().Unix()
	return save(st)
}

// Forget drops name from the history, used when a name is removed.
func Forget(name string) error {
	st, err := load()
	if err != nil {
		return err
	}
	if _, ok := st.LastUsed[name]; !ok {
		return nil
	}
	delete(st.LastUsed, name)
	return save(st)
}

// LastUsed returns last launch timestamps by name.
func LastUsed() (map[string]int64, error) {
	st, err := load()
	if err != nil {
		return nil, err
	}
	return st.LastUsed, nil
}

// SortRecent returns a new slice sorted by last launch (desc), then name.
func SortRecent(names []string, lastUsed map[string]int64) []string {
	out := append([]string(nil), names...)
	sort.Slice(out, func(i, j int) bool {
		ti := lastUsed[out[i]]
		tj := lastUsed[out[j]]
		if ti != tj {
			return ti > tj
		}
		return out[i] < out[j]
	})
	return out
}

func load() (store, error) {
	path, err := filePath()
	if err != nil {
		return store{}, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store{LastUsed: map[string]int64{}}, nil
		}
		return store{}, err
	}
	var st store
	if err := json.Unmarshal(b, &st); err != nil {
		return store{LastUsed: map[string]int64{}}, nil
	}
	if st.LastUsed == nil {
		st.LastUsed = map[string]int64{}
	}
	return st, nil
}

func save(st store) error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
