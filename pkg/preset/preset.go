// Package preset implements the flat-file preset store. Each preset is
// stored as one yaml file named after its key.
package preset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/trackforge/trackforge/pkg/track"
)

var ErrNotFound = errors.New("preset not found")

// Metadata is the summary served by list endpoints without loading the
// full preset.
type Metadata struct {
	Name        string `json:"name"`
	Genre       string `json:"genre"`
	Description string `json:"description,omitempty"`
}

type Store struct {
	dir string

	lck   sync.Mutex
	cache map[string]Metadata
}

// New creates a preset store backed by the given directory and seeds the
// builtin presets that don't exist yet. An empty dir defaults to
// "./presets".
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = "presets"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("preset: couldn't create presets folder: %w", err)
	}
	s := &Store{
		dir:   dir,
		cache: map[string]Metadata{},
	}
	existing, err := s.List()
	if err != nil {
		return nil, err
	}
	lookup := map[string]struct{}{}
	for _, name := range existing {
		lookup[name] = struct{}{}
	}
	for _, p := range Builtin() {
		if _, ok := lookup[p.Name]; ok {
			continue
		}
		if err := s.Save(p); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s.yaml", name))
}

// Save writes the preset to disk, overwriting any previous version.
func (s *Store) Save(p *track.PresetConfig) error {
	if err := p.Validate(); err != nil {
		return err
	}
	b, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("preset: couldn't marshal preset %s: %w", p.Name, err)
	}
	if err := os.WriteFile(s.path(p.Name), b, 0644); err != nil {
		return fmt.Errorf("preset: couldn't write preset %s: %w", p.Name, err)
	}
	s.lck.Lock()
	delete(s.cache, p.Name)
	s.lck.Unlock()
	return nil
}

// Load reads a preset by name. It returns ErrNotFound if no file exists
// for the name.
func (s *Store) Load(name string) (*track.PresetConfig, error) {
	b, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("preset: %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("preset: couldn't read preset %s: %w", name, err)
	}
	var p track.PresetConfig
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("preset: couldn't unmarshal preset %s: %w", name, err)
	}
	return &p, nil
}

// List returns the sorted names of all stored presets.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("preset: couldn't read presets folder: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}

// ListMetadata returns the name, genre and description of every preset.
// Entries are cached in memory and invalidated on Save and Delete.
func (s *Store) ListMetadata() ([]Metadata, error) {
	names, err := s.List()
	if err != nil {
		return nil, err
	}
	var mds []Metadata
	for _, name := range names {
		s.lck.Lock()
		md, ok := s.cache[name]
		s.lck.Unlock()
		if !ok {
			p, err := s.Load(name)
			if err != nil {
				return nil, err
			}
			md = Metadata{
				Name:        p.Name,
				Genre:       p.Genre,
				Description: p.Description,
			}
			s.lck.Lock()
			s.cache[name] = md
			s.lck.Unlock()
		}
		mds = append(mds, md)
	}
	return mds, nil
}

// Delete removes a preset. It returns ErrNotFound if the preset doesn't
// exist.
func (s *Store) Delete(name string) error {
	err := os.Remove(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("preset: %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("preset: couldn't delete preset %s: %w", name, err)
	}
	s.lck.Lock()
	delete(s.cache, name)
	s.lck.Unlock()
	return nil
}
