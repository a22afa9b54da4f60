// Package profile persists investor profiles as YAML files, one per profile.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/seenimoa/mortgagecli/pkg/models"
)

var (
	ErrNotFound  = errors.New("profile not found")
	ErrExists    = errors.New("profile already exists")
	ErrProtected = errors.New("built-in profile cannot be deleted")
	ErrInvalid   = errors.New("invalid profile name")
)

const ext = ".yaml"

// InvalidDescription replaces the description of profiles that fail to load.
const InvalidDescription = "(invalid profile)"

// Summary is one entry of a profile listing.
type Summary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Builtin     bool   `json:"builtin"`
	Valid       bool   `json:"valid"`
}

// Store reads and writes profiles in a directory. It is safe for concurrent use.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// NewStore returns a store rooted at dir. The directory is created on first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory holding the profile files.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+ext)
}

// Load returns the named profile. The built-in default is returned when no
// "default" file exists.
func (s *Store) Load(name string) (*models.Profile, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalid, name)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(name)
}

func (s *Store) load(name string) (*models.Profile, error) {
	path := s.path(name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if name == DefaultName {
				return Default(), nil
			}
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return nil, fmt.Errorf("stat profile %q: %w", name, err)
	}
	return readFile(path, name)
}

func readFile(path, name string) (*models.Profile, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading profile %s: %w", path, err)
	}

	var missing []FieldError
	for _, key := range requiredKeys {
		if !v.IsSet(key) {
			missing = append(missing, FieldError{Field: key, Rule: "required"})
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Subject: "profile", Fields: missing}
	}

	var p models.Profile
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("error decoding profile %s: %w", path, err)
	}
	// The file name is the profile's identity.
	p.Name = name
	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Save writes the profile under its name. With overwrite false an existing
// file yields ErrExists.
func (s *Store) Save(p *models.Profile, overwrite bool) error {
	if err := Validate(p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(p, overwrite)
}

func (s *Store) save(p *models.Profile, overwrite bool) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("error creating profile directory: %w", err)
	}

	path := s.path(p.Name)
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %q", ErrExists, p.Name)
		}
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("error encoding profile %q: %w", p.Name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing profile %s: %w", path, err)
	}
	return nil
}

// Delete removes a saved profile. The built-in default is protected.
func (s *Store) Delete(name string) error {
	if name == DefaultName {
		return ErrProtected
	}
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalid, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return fmt.Errorf("error deleting profile %q: %w", name, err)
	}
	return nil
}

// Exists reports whether a profile can be loaded by name.
func (s *Store) Exists(name string) bool {
	if name == DefaultName {
		return true
	}
	if !ValidName(name) {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err := os.Stat(s.path(name))
	return err == nil
}

// List returns every available profile, sorted by name. The built-in default
// comes first unless a file overrides it. Unreadable files are listed as invalid.
func (s *Store) List() ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error listing profiles: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ext))
	}
	slices.Sort(names)

	var out []Summary
	if !slices.Contains(names, DefaultName) {
		d := Default()
		out = append(out, Summary{Name: d.Name, Description: d.Description, Builtin: true, Valid: true})
	}
	for _, name := range names {
		p, err := readFile(s.path(name), name)
		if err != nil {
			out = append(out, Summary{Name: name, Description: InvalidDescription})
			continue
		}
		out = append(out, Summary{Name: name, Description: p.Description, Valid: true})
	}
	return out, nil
}

// Create saves a new profile copying every setting from base.
func (s *Store) Create(name, description, base string) (*models.Profile, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalid, name)
	}
	if base == "" {
		base = DefaultName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path(name)); err == nil {
		return nil, fmt.Errorf("%w: %q", ErrExists, name)
	}

	src, err := s.load(base)
	if err != nil {
		return nil, fmt.Errorf("base profile: %w", err)
	}

	p := src.Clone(name, description)
	if err := s.save(p, false); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadMany loads profiles in order, stopping at the first failure.
func (s *Store) LoadMany(names []string) ([]*models.Profile, error) {
	out := make([]*models.Profile, 0, len(names))
	for _, name := range names {
		p, err := s.Load(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
