// Package seed loads page templates from YAML files so the catalog can live in the repo next to
// the code that renders it.
package seed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"

	types "github.com/angelo-odois/postangelo-sub000/internal/domain"
)

// file is one template on disk. Content is written as YAML and stored as JSON.
type file struct {
	types.PageTemplate `yaml:",inline"`
	Content            any `yaml:"content"`
}

func isSeedFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// LoadDir parses every .yaml/.yml file in dir, sorted by name. Problems from every file are
// reported together.
func LoadDir(dir string) ([]*types.PageTemplate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read seed dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && isSeedFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var (
		out  []*types.PageTemplate
		errs []error
	)
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		t, err := Parse(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		out = append(out, t)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

// Parse decodes one seed file. Templates are active unless the file says otherwise.
func Parse(raw []byte) (*types.PageTemplate, error) {
	f := file{PageTemplate: types.PageTemplate{IsActive: true, Category: "general"}}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if f.Content == nil {
		return nil, errors.New("content is required")
	}
	doc, err := json.Marshal(f.Content)
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	t := f.PageTemplate
	t.ContentJSON = datatypes.JSON(doc)
	return &t, nil
}
