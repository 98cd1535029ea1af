package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store holds table definitions loaded from JSON/YAML documents keyed by id.
type Store struct {
	tables map[string]Definition
}

// Definition is a loaded table plus the file it came from.
type Definition struct {
	ID     string
	Source string
	Model  Model
}

type documentFile struct {
	Tables map[string]tableFile `json:"tables" yaml:"tables"`
}

type tableFile struct {
	Header []HeaderItem `json:"header" yaml:"header"`
	Rows   [][]cellFile `json:"rows" yaml:"rows"`
}

// cellFile accepts either {data, template} objects or a bare scalar payload.
type cellFile struct {
	Data     any
	Template TemplateRef
}

type cellObject struct {
	Data     any         `json:"data" yaml:"data"`
	Template TemplateRef `json:"template" yaml:"template"`
}

func (c *cellFile) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		if isCellObject(keysOf(raw)) {
			var obj cellObject
			if err := json.Unmarshal(trimmed, &obj); err != nil {
				return err
			}
			c.Data, c.Template = obj.Data, obj.Template
			return nil
		}
	}
	return json.Unmarshal(trimmed, &c.Data)
}

func (c *cellFile) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		keys := make([]string, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			keys = append(keys, node.Content[i].Value)
		}
		if isCellObject(keys) {
			var obj cellObject
			if err := node.Decode(&obj); err != nil {
				return err
			}
			c.Data, c.Template = obj.Data, obj.Template
			return nil
		}
	}
	return node.Decode(&c.Data)
}

// isCellObject reports whether a mapping only uses the cell keys, so payload
// objects such as {name, link} are kept as data. An empty mapping is an empty
// cell.
func isCellObject(keys []string) bool {
	for _, key := range keys {
		if key != "data" && key != "template" {
			return false
		}
	}
	return true
}

func keysOf(in map[string]json.RawMessage) []string {
	out := make([]string, 0, len(in))
	for key := range in {
		out = append(out, key)
	}
	return out
}

// LoadFS walks fsys and parses every JSON/YAML table definition it finds.
// A nil fsys yields an empty store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{tables: make(map[string]Definition)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("table: read %s: %w", path, err)
		}

		defs, err := Parse(data, path)
		if err != nil {
			return err
		}
		for _, def := range defs {
			if _, exists := store.tables[def.ID]; exists {
				return fmt.Errorf("table: duplicate table %q (file %s)", def.ID, path)
			}
			store.tables[def.ID] = def
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Parse decodes a single JSON or YAML document into table definitions, sorted
// by id.
func Parse(data []byte, source string) ([]Definition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("table: file %s is empty", source)
	}

	var doc documentFile
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = documentFile{}
		if yamlErr := yaml.Unmarshal(data, &doc); yamlErr != nil {
			return nil, fmt.Errorf("table: parse %s: invalid JSON or YAML", source)
		}
	}

	defs := make([]Definition, 0, len(doc.Tables))
	for rawID, raw := range doc.Tables {
		id := strings.TrimSpace(rawID)
		if id == "" {
			return nil, fmt.Errorf("table: file %s defines an empty table id", source)
		}
		model := NewModel(raw.Header...)
		for _, row := range raw.Rows {
			cells := make([]Item, len(row))
			for i, cell := range row {
				cells[i] = NewItem(&ItemInit{Data: cell.Data, Template: cell.Template})
			}
			model.AddRow(cells...)
		}
		defs = append(defs, Definition{ID: id, Source: source, Model: model})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs, nil
}

// Table returns a copy of the model registered under id.
func (s *Store) Table(id string) (Model, bool) {
	if s == nil {
		return Model{}, false
	}
	def, ok := s.tables[strings.TrimSpace(id)]
	if !ok {
		return Model{}, false
	}
	return def.Model.Clone(), true
}

// IDs lists the loaded table ids in order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.tables))
	for id := range s.tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Empty reports whether the store holds any tables.
func (s *Store) Empty() bool {
	return s == nil || len(s.tables) == 0
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
