// Package npc defines monster templates and turns them into hostile bands.
package npc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template defines a kind of monster loaded from YAML.
type Template struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// MinLevel and MaxLevel bound the levels a random band of this kind spawns at.
	MinLevel int `yaml:"min_level"`
	MaxLevel int `yaml:"max_level"`
	// MinSize and MaxSize bound the member count of a random band.
	MinSize int `yaml:"min_size"`
	MaxSize int `yaml:"max_size"`
	// Abilities are granted to the band leader.
	Abilities []string `yaml:"abilities"`
	// AIScript names the Lua script that decides for members; empty = random attacks.
	AIScript string     `yaml:"ai_script"`
	Loot     *LootTable `yaml:"loot"`
}

// Validate checks that the template satisfies basic invariants and reports
// every violation.
//
// Precondition: t must not be nil.
func (t *Template) Validate() error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if t.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if t.MinLevel < 1 || t.MaxLevel < t.MinLevel {
		errs = append(errs, fmt.Errorf("levels must satisfy 1 <= min_level <= max_level, got %d..%d", t.MinLevel, t.MaxLevel))
	}
	if t.MinSize < 1 || t.MaxSize < t.MinSize {
		errs = append(errs, fmt.Errorf("sizes must satisfy 1 <= min_size <= max_size, got %d..%d", t.MinSize, t.MaxSize))
	}
	if t.Loot != nil {
		if err := t.Loot.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("npc template %q: %w", t.ID, errors.Join(errs...))
	}
	return nil
}

// LoadTemplates reads every YAML document in the *.yaml files of dir.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var templates []*Template
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		for {
			var tmpl Template
			if err := dec.Decode(&tmpl); err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return nil, fmt.Errorf("loading %q: %w", path, err)
			}
			if err := tmpl.Validate(); err != nil {
				return nil, fmt.Errorf("loading %q: %w", path, err)
			}
			templates = append(templates, &tmpl)
		}
	}
	return templates, nil
}
