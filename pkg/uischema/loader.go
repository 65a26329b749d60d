package uischema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store keeps UI schemas keyed by form id. It is safe for concurrent readers
// when treated as immutable after construction.
type Store struct {
	forms map[string]*Element
}

// Parse decodes a UI schema document. JSON is tried first, then YAML.
func Parse(data []byte) (*Element, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("uischema: document is empty")
	}

	var root Element
	if err := json.Unmarshal(data, &root); err != nil {
		var yamlRoot Element
		if yamlErr := yaml.Unmarshal(data, &yamlRoot); yamlErr != nil {
			return nil, fmt.Errorf("uischema: invalid JSON or YAML: %w", errors.Join(err, yamlErr))
		}
		root = yamlRoot
	}
	if err := validate(&root, "#"); err != nil {
		return nil, err
	}
	return &root, nil
}

func validate(element *Element, uiPath string) error {
	if element == nil {
		return fmt.Errorf("uischema: %s: element is null", uiPath)
	}
	if strings.TrimSpace(element.Type) == "" {
		return fmt.Errorf("uischema: %s: element type is required", uiPath)
	}
	if element.Type == TypeControl {
		if _, ok := element.ScopeRef(); !ok {
			return fmt.Errorf("uischema: %s: control requires scope.$ref", uiPath)
		}
	}
	if rule := element.Rule; rule != nil {
		switch rule.Effect {
		case EffectShow, EffectHide, EffectEnable, EffectDisable:
		default:
			return fmt.Errorf("uischema: %s: unknown rule effect %q", uiPath, rule.Effect)
		}
		if rule.Condition == nil || (rule.Condition.Scope == nil && strings.TrimSpace(rule.Condition.Expression) == "") {
			return fmt.Errorf("uischema: %s: rule needs a scope or an expression", uiPath)
		}
	}
	for idx, child := range element.Elements {
		if err := validate(child, ChildPath(uiPath, idx)); err != nil {
			return err
		}
	}
	return nil
}

// LoadFS walks fsys and parses every JSON/YAML file as a UI schema. The form
// id is the file path without its extension. A nil fsys yields an empty
// store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{forms: make(map[string]*Element)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(name) {
			return nil
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("uischema: read %s: %w", name, err)
		}
		root, err := Parse(data)
		if err != nil {
			return fmt.Errorf("%w (file %s)", err, name)
		}

		id := strings.TrimSuffix(name, path.Ext(name))
		if _, exists := store.forms[id]; exists {
			return fmt.Errorf("uischema: duplicate form %q (file %s)", id, name)
		}
		store.forms[id] = root
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Form returns the UI schema registered under id.
func (s *Store) Form(id string) (*Element, bool) {
	if s == nil {
		return nil, false
	}
	root, ok := s.forms[id]
	return root, ok
}

// IDs lists the stored form ids in lexical order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.forms))
	for id := range s.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Empty reports whether the store holds any forms.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

func isSchemaFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
