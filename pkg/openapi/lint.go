package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const extensionNamespace = "x-table-"

// Violation reports a misuse of the table extensions.
type Violation struct {
	Location string
	Message  string
}

func (v Violation) String() string {
	return v.Location + " -> " + v.Message
}

// KnownExtensions lists the supported extension keys in sorted order.
func KnownExtensions() []string {
	return []string{extHidden, extOrder, extSortable, extTemplate}
}

// Lint walks every component schema in doc and reports unknown x-table-*
// keys and values of the wrong type. Results are sorted by location.
func Lint(ctx context.Context, doc Document) ([]Violation, error) {
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
		return nil, nil
	}

	names := make([]string, 0, len(spec.Components.Schemas))
	for name := range spec.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	var result []Violation
	for _, name := range names {
		ref := spec.Components.Schemas[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		result = append(result, lintSchema([]string{"components", "schemas", name}, ref.Value, map[*openapi3.Schema]bool{})...)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Location == result[j].Location {
			return result[i].Message < result[j].Message
		}
		return result[i].Location < result[j].Location
	})
	return result, nil
}

func lintSchema(path []string, schema *openapi3.Schema, seen map[*openapi3.Schema]bool) []Violation {
	if schema == nil || seen[schema] {
		return nil
	}
	seen[schema] = true

	result := lintExtensions(path, schema.Extensions)

	keys := make([]string, 0, len(schema.Properties))
	for key := range schema.Properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		prop := schema.Properties[key]
		if prop == nil || prop.Ref != "" {
			continue
		}
		result = append(result, lintSchema(appendPath(path, "properties", key), prop.Value, seen)...)
	}

	if schema.Items != nil && schema.Items.Ref == "" {
		result = append(result, lintSchema(appendPath(path, "items"), schema.Items.Value, seen)...)
	}
	return result
}

func lintExtensions(path []string, extensions map[string]any) []Violation {
	keys := make([]string, 0, len(extensions))
	for key := range extensions {
		if strings.HasPrefix(key, extensionNamespace) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	location := strings.Join(path, " > ")
	var result []Violation
	for _, key := range keys {
		value, _ := extValue(extensions, key)
		var ok bool
		switch key {
		case extOrder:
			_, ok = extNumber(extensions, key)
			if !ok {
				result = append(result, Violation{location, fmt.Sprintf("%s must be a number (got %T)", key, value)})
			}
		case extTemplate:
			_, ok = value.(string)
			if !ok {
				result = append(result, Violation{location, fmt.Sprintf("%s must be a string (got %T)", key, value)})
			}
		case extSortable, extHidden:
			_, ok = value.(bool)
			if !ok {
				result = append(result, Violation{location, fmt.Sprintf("%s must be a boolean (got %T)", key, value)})
			}
		default:
			result = append(result, Violation{location, fmt.Sprintf("unsupported extension %q (supported: %s)", key, strings.Join(KnownExtensions(), ", "))})
		}
	}
	return result
}

func appendPath(path []string, segments ...string) []string {
	next := append([]string(nil), path...)
	return append(next, segments...)
}
