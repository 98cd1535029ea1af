package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-tablegen/pkg/table"
)

// Transformer mutates a table model before rendering.
type Transformer interface {
	Transform(ctx context.Context, model *table.Model) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, model *table.Model) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, model *table.Model) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, model)
}

// SortTransformer sorts rows by the column whose key matches.
func SortTransformer(key string, ascending bool) Transformer {
	return TransformerFunc(func(_ context.Context, model *table.Model) error {
		for idx, column := range model.Header {
			if column.Key == key {
				return model.SortBy(idx, ascending)
			}
		}
		return fmt.Errorf("orchestrator: sort column %q not found", key)
	})
}

// PageTransformer keeps only the rows on the requested zero-indexed page.
func PageTransformer(size, index int) Transformer {
	return TransformerFunc(func(_ context.Context, model *table.Model) error {
		*model = model.Page(size, index)
		return nil
	})
}

// JSONPresetTransformer applies declarative column overrides loaded from JSON:
//
//	{
//	  "order": ["name", "email"],
//	  "columns": {
//	    "email": {"title": "E-mail", "template": "mailto", "sortable": true}
//	  }
//	}
//
// Columns listed in order move to the front in that order, cells included.
// Cells a short row never had stay missing unless a present cell moves past
// them, in which case the gap becomes an empty cell.
type JSONPresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Order   []string               `json:"order"`
	Columns map[string]columnPatch `json:"columns"`
}

type columnPatch struct {
	Title    *string `json:"title"`
	Template *string `json:"template"`
	Sortable *bool   `json:"sortable"`
}

// NewJSONPresetTransformer decodes a preset document.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("orchestrator: preset document is empty")
	}
	var doc presetDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("orchestrator: decode preset: %w", err)
	}
	return &JSONPresetTransformer{document: doc}, nil
}

// NewJSONPresetTransformerFromFS reads a preset document from fsys.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("orchestrator: preset fs is nil")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: read preset %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform applies column patches then column ordering.
func (t *JSONPresetTransformer) Transform(_ context.Context, model *table.Model) error {
	if t == nil || model == nil {
		return nil
	}
	for idx := range model.Header {
		patch, ok := t.document.Columns[model.Header[idx].Key]
		if !ok {
			continue
		}
		if patch.Title != nil {
			model.Header[idx].Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Template != nil {
			model.Header[idx].Template = table.TemplateRef(strings.TrimSpace(*patch.Template))
		}
		if patch.Sortable != nil {
			model.Header[idx].Sortable = *patch.Sortable
		}
	}
	if len(t.document.Order) > 0 {
		reorderColumns(model, t.document.Order)
	}
	return nil
}

func reorderColumns(model *table.Model, order []string) {
	positions := make(map[string]int, len(model.Header))
	for idx, column := range model.Header {
		positions[column.Key] = idx
	}

	perm := make([]int, 0, len(model.Header))
	used := make(map[int]bool, len(model.Header))
	for _, key := range order {
		if idx, ok := positions[key]; ok && !used[idx] {
			perm = append(perm, idx)
			used[idx] = true
		}
	}
	for idx := range model.Header {
		if !used[idx] {
			perm = append(perm, idx)
		}
	}

	header := make([]table.HeaderItem, len(perm))
	for to, from := range perm {
		header[to] = model.Header[from]
	}
	model.Header = header

	for r, row := range model.Data {
		reordered := make([]table.Item, len(perm), max(len(perm), len(row)))
		present := 0
		for to, from := range perm {
			if from < len(row) {
				reordered[to] = row[from]
				present = to + 1
			} else {
				reordered[to] = table.NewItem(nil)
			}
		}
		reordered = append(reordered[:present], row[min(len(row), len(perm)):]...)
		model.Data[r] = reordered
	}
}
