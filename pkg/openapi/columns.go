package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-tablegen/pkg/table"
)

const (
	extOrder    = "x-table-order"
	extTemplate = "x-table-template"
	extSortable = "x-table-sortable"
	extHidden   = "x-table-hidden"
)

// ErrSchemaNotFound is returned when the requested component schema is absent.
var ErrSchemaNotFound = errors.New("openapi: schema not found")

// Columns loads doc with kin-openapi and converts the properties of the named
// component schema into table columns. Array schemas use their item schema.
func Columns(ctx context.Context, doc Document, schemaName string) ([]table.HeaderItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if spec.Components == nil {
		return nil, fmt.Errorf("%w: %q", ErrSchemaNotFound, schemaName)
	}

	ref, ok := spec.Components.Schemas[schemaName]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("%w: %q", ErrSchemaNotFound, schemaName)
	}
	schema := ref.Value
	if schema.Items != nil && schema.Items.Value != nil && len(schema.Properties) == 0 {
		schema = schema.Items.Value
	}
	return columnsFromSchema(schema), nil
}

type column struct {
	header table.HeaderItem
	order  float64
}

func columnsFromSchema(schema *openapi3.Schema) []table.HeaderItem {
	columns := make([]column, 0, len(schema.Properties))
	for name, prop := range schema.Properties {
		if prop == nil || prop.Value == nil {
			continue
		}
		ext := prop.Value.Extensions
		if extBool(ext, extHidden) {
			continue
		}
		order, ok := extNumber(ext, extOrder)
		if !ok {
			order = math.MaxFloat64
		}
		columns = append(columns, column{
			header: table.HeaderItem{
				Key:      name,
				Title:    strings.TrimSpace(prop.Value.Title),
				Template: table.TemplateRef(extString(ext, extTemplate)),
				Sortable: extBool(ext, extSortable),
			},
			order: order,
		})
	}

	sort.SliceStable(columns, func(i, j int) bool {
		if columns[i].order != columns[j].order {
			return columns[i].order < columns[j].order
		}
		return columns[i].header.Key < columns[j].header.Key
	})

	out := make([]table.HeaderItem, len(columns))
	for i, c := range columns {
		out[i] = c.header
	}
	return out
}

// RowsFromRecords builds one row per record, reading each column key from the
// record. Missing keys produce the default empty cell.
func RowsFromRecords(header []table.HeaderItem, records []map[string]any) [][]table.Item {
	rows := make([][]table.Item, 0, len(records))
	for _, record := range records {
		row := make([]table.Item, len(header))
		for col, column := range header {
			row[col] = table.NewItem(&table.ItemInit{Data: record[column.Key]})
		}
		rows = append(rows, row)
	}
	return rows
}

// BuildModel combines Columns and RowsFromRecords.
func BuildModel(ctx context.Context, doc Document, schemaName string, records []map[string]any) (table.Model, error) {
	header, err := Columns(ctx, doc, schemaName)
	if err != nil {
		return table.Model{}, err
	}
	model := table.NewModel(header...)
	for _, row := range RowsFromRecords(header, records) {
		model.AddRow(row...)
	}
	return model, nil
}

func extValue(ext map[string]any, key string) (any, bool) {
	raw, ok := ext[key]
	if !ok {
		return nil, false
	}
	if msg, ok := raw.(json.RawMessage); ok {
		var decoded any
		if err := json.Unmarshal(msg, &decoded); err != nil {
			return nil, false
		}
		return decoded, true
	}
	return raw, true
}

func extString(ext map[string]any, key string) string {
	value, ok := extValue(ext, key)
	if !ok {
		return ""
	}
	s, _ := value.(string)
	return strings.TrimSpace(s)
}

func extBool(ext map[string]any, key string) bool {
	value, ok := extValue(ext, key)
	if !ok {
		return false
	}
	b, _ := value.(bool)
	return b
}

func extNumber(ext map[string]any, key string) (float64, bool) {
	value, ok := extValue(ext, key)
	if !ok {
		return 0, false
	}
	switch n := value.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
