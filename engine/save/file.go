package save

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultName is used when a save is requested without a name.
const DefaultName = "quicksave"

// FileStore keeps snapshots as JSON files in Dir.
type FileStore struct {
	Dir string
}

// DefaultDir returns ~/.wolfcore/saves, or a relative directory when the
// home directory cannot be found.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".wolfcore", "saves")
	}
	return filepath.Join(home, ".wolfcore", "saves")
}

func (fs FileStore) path(name string) string {
	if name == "" {
		name = DefaultName
	}
	return filepath.Join(fs.Dir, name+".json")
}

// Save writes s under name and returns the file path.
func (fs FileStore) Save(name string, s *Snapshot) (string, error) {
	data, err := Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encoding save: %w", err)
	}
	if err := os.MkdirAll(fs.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating save dir: %w", err)
	}
	path := fs.path(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// Load reads the snapshot saved under name.
func (fs FileStore) Load(name string) (*Snapshot, error) {
	path := fs.path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	s, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return s, nil
}

// List returns the saved names, sorted. A missing directory has no saves.
func (fs FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(fs.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}
