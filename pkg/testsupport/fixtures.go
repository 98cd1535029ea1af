package testsupport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tablegen/pkg/table"
)

// MustLoadTable reads a table definition fixture and returns the model with
// the given id.
func MustLoadTable(t *testing.T, path, id string) table.Model {
	t.Helper()

	model, err := LoadTable(path, id)
	if err != nil {
		t.Fatalf("load table: %v", err)
	}
	return model
}

// LoadTable reads a JSON/YAML definition file without requiring testing.T.
func LoadTable(path, id string) (table.Model, error) {
	if path == "" {
		return table.Model{}, errors.New("testsupport: table path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return table.Model{}, fmt.Errorf("testsupport: read table: %w", err)
	}
	defs, err := table.Parse(data, path)
	if err != nil {
		return table.Model{}, err
	}
	for _, def := range defs {
		if def.ID == id {
			return def.Model, nil
		}
	}
	return table.Model{}, fmt.Errorf("testsupport: table %q not found in %s", id, path)
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput runs a render function that writes to an io.Writer
// and returns both the string result and what was written.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
