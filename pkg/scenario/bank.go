package scenario

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Bank holds the scenarios loaded from files, in load order.
type Bank struct {
	mu        sync.RWMutex
	scenarios []*Scenario
	sources   []string
}

// NewBank creates an empty Bank.
func NewBank() *Bank {
	return &Bank{}
}

// Parse decodes and validates a scenario file. Unknown keys are
// rejected. An unnamed file takes the base name of path.
func Parse(path string, data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		return nil, errors.Wrapf(err, "parse scenario file %s", path)
	}

	if problems := Validate(&file); len(problems) > 0 {
		return nil, errors.Wrapf(ErrInvalidScenario, "%s: %s", path, joinProblems(problems))
	}

	if file.Name == "" {
		file.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	for _, s := range file.Scenarios {
		s.Suite = file.Name
	}
	return &file, nil
}

// LoadFile loads the scenarios of one YAML file.
func (b *Bank) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read scenario file %s", path)
	}

	file, err := Parse(path, data)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.scenarios = append(b.scenarios, file.Scenarios...)
	b.sources = append(b.sources, path)
	return nil
}

// LoadDir loads every .yaml and .yml file of dir in name order.
// Subdirectories are skipped.
func (b *Bank) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "read scenario directory %s", dir)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if err := b.LoadFile(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

// Load loads each path as a file or, when it is a directory,
// with LoadDir.
func (b *Bank) Load(paths ...string) error {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return errors.Wrapf(err, "load %s", path)
		}
		if info.IsDir() {
			err = b.LoadDir(path)
		} else {
			err = b.LoadFile(path)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// All returns the loaded scenarios in load order.
func (b *Bank) All() []*Scenario {
	b.mu.RLock()
	defer b.mu.RUnlock()
	result := make([]*Scenario, len(b.scenarios))
	copy(result, b.scenarios)
	return result
}

// Count returns the number of loaded scenarios.
func (b *Bank) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.scenarios)
}

// Sources returns the loaded file paths.
func (b *Bank) Sources() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	result := make([]string, len(b.sources))
	copy(result, b.sources)
	return result
}
