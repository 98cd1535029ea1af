package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	pkgopenapi "github.com/goliatone/go-tablegen/pkg/openapi"
	"github.com/goliatone/go-tablegen/pkg/render"
	"github.com/goliatone/go-tablegen/pkg/table"
)

const definitions = `
tables:
  scores:
    header:
      - key: player
        sortable: true
      - key: points
        sortable: true
    rows:
      - [ada, 7]
      - [grace, 12]
      - [linus, 3]
`

const inventoryDocument = `{
  "openapi": "3.0.3",
  "info": {"title": "Inventory", "version": "1.0.0"},
  "paths": {},
  "components": {
    "schemas": {
      "Item": {
        "type": "object",
        "properties": {
          "sku": {"type": "string", "title": "SKU", "x-table-order": 1},
          "qty": {"type": "integer", "x-table-order": 2, "x-table-sortable": true}
        }
      }
    }
  }
}`

type captureRenderer struct {
	model   table.Model
	options render.RenderOptions
	calls   int
}

func (c *captureRenderer) Name() string        { return "capture" }
func (c *captureRenderer) ContentType() string { return "text/plain" }
func (c *captureRenderer) Render(_ context.Context, model table.Model, options render.RenderOptions) ([]byte, error) {
	c.calls++
	c.model = model
	c.options = options
	return []byte("captured"), nil
}

func newCaptureOrchestrator(t *testing.T, opts ...Option) (*Orchestrator, *captureRenderer) {
	t.Helper()
	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	base := []Option{
		WithRegistry(registry),
		WithDefaultRenderer(renderer.Name()),
		WithDefinitionsFS(fstest.MapFS{"tables.yaml": {Data: []byte(definitions)}}),
	}
	return New(append(base, opts...)...), renderer
}

func columnData(model table.Model, col int) []any {
	out := make([]any, 0, model.RowCount())
	for row := 0; row < model.RowCount(); row++ {
		item, _ := model.Cell(row, col)
		out = append(out, item.Data)
	}
	return out
}

func TestGenerate_FromDefinitionSortedAndPaged(t *testing.T) {
	orch, renderer := newCaptureOrchestrator(t)

	out, err := orch.Generate(context.Background(), Request{
		TableID:    "scores",
		SortColumn: "points",
		Descending: true,
		PageSize:   2,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(out) != "captured" {
		t.Fatalf("unexpected output %q", out)
	}

	if diff := cmp.Diff([]any{"grace", "ada"}, columnData(renderer.model, 0)); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}

	// The store keeps its original order between requests.
	if _, err := orch.Generate(context.Background(), Request{TableID: "scores"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if diff := cmp.Diff([]any{"ada", "grace", "linus"}, columnData(renderer.model, 0)); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_InlineModelIsNotMutated(t *testing.T) {
	orch, renderer := newCaptureOrchestrator(t)

	model := table.NewModel(table.HeaderItem{Key: "n", Sortable: true})
	model.AddRow(table.NewItem(&table.ItemInit{Data: 2}))
	model.AddRow(table.NewItem(&table.ItemInit{Data: 1}))

	if _, err := orch.Generate(context.Background(), Request{Model: &model, SortColumn: "n"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if diff := cmp.Diff([]any{1, 2}, columnData(renderer.model, 0)); diff != "" {
		t.Fatalf("rendered rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{2, 1}, columnData(model, 0)); diff != "" {
		t.Fatalf("caller model mutated (-want +got):\n%s", diff)
	}
}

func TestGenerate_TransformerCellEditsDoNotLeak(t *testing.T) {
	redact := TransformerFunc(func(_ context.Context, model *table.Model) error {
		for _, row := range model.Data {
			if len(row) > 0 {
				row[0].Data = "redacted"
			}
		}
		return nil
	})
	orch, renderer := newCaptureOrchestrator(t, WithTransformers(redact))

	inline := table.NewModel(table.HeaderItem{Key: "n"})
	inline.AddRow(table.NewItem(&table.ItemInit{Data: "kept"}))

	requests := []Request{{TableID: "scores"}, {Model: &inline}}
	for _, req := range requests {
		if _, err := orch.Generate(context.Background(), req); err != nil {
			t.Fatalf("generate: %v", err)
		}
		if got := columnData(renderer.model, 0)[0]; got != "redacted" {
			t.Fatalf("expected transformer edit to be rendered, got %v", got)
		}
	}

	if diff := cmp.Diff([]any{"kept"}, columnData(inline, 0)); diff != "" {
		t.Fatalf("caller model mutated (-want +got):\n%s", diff)
	}
	stored, _ := orch.Store().Table("scores")
	if diff := cmp.Diff([]any{"ada", "grace", "linus"}, columnData(stored, 0)); diff != "" {
		t.Fatalf("definition store mutated (-want +got):\n%s", diff)
	}
}

func TestGenerate_FromOpenAPIDocument(t *testing.T) {
	orch, renderer := newCaptureOrchestrator(t)

	doc, err := pkgopenapi.NewDocument(pkgopenapi.SourceFromFS("inventory.json"), []byte(inventoryDocument))
	if err != nil {
		t.Fatalf("document: %v", err)
	}

	_, err = orch.Generate(context.Background(), Request{
		OpenAPI: &OpenAPIRequest{
			Document: &doc,
			Schema:   "Item",
			Records: []map[string]any{
				{"sku": "A-1", "qty": 4},
				{"sku": "B-2"},
			},
		},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	want := []table.HeaderItem{
		{Key: "sku", Title: "SKU"},
		{Key: "qty", Sortable: true},
	}
	if diff := cmp.Diff(want, renderer.model.Header); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{4, ""}, columnData(renderer.model, 1)); diff != "" {
		t.Fatalf("qty mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_LoadsOpenAPISourceThroughLoader(t *testing.T) {
	files := fstest.MapFS{"specs/inventory.json": {Data: []byte(inventoryDocument)}}
	orch, renderer := newCaptureOrchestrator(t, WithLoader(pkgopenapi.NewLoader(pkgopenapi.WithFileSystem(files))))

	_, err := orch.Generate(context.Background(), Request{
		OpenAPI: &OpenAPIRequest{
			Source:  pkgopenapi.SourceFromFS("specs/inventory.json"),
			Schema:  "Item",
			Records: []map[string]any{{"sku": "A-1"}},
		},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if renderer.model.RowCount() != 1 {
		t.Fatalf("expected one row, got %d", renderer.model.RowCount())
	}
}

func TestGenerate_PassesThemeConfigToRenderer(t *testing.T) {
	selection := &theme.Selection{
		Theme:   "acme",
		Variant: "dark",
		Manifest: &theme.Manifest{
			Name:    "acme",
			Version: "1.0.0",
			Tokens:  map[string]string{"brand": "#123456"},
		},
	}
	selector := &stubThemeSelector{selection: selection}
	orch, renderer := newCaptureOrchestrator(t, WithThemeSelector(selector))

	_, err := orch.Generate(context.Background(), Request{
		TableID:      "scores",
		ThemeName:    "acme",
		ThemeVariant: "dark",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if diff := cmp.Diff([]selectorCall{{name: "acme", variant: "dark"}}, selector.calls, cmp.AllowUnexported(selectorCall{})); diff != "" {
		t.Fatalf("selector calls mismatch (-want +got):\n%s", diff)
	}
	cfg := renderer.options.Theme
	if cfg == nil {
		t.Fatalf("expected theme config passed to renderer")
	}
	if cfg.Theme != "acme" || cfg.Variant != "dark" {
		t.Fatalf("unexpected theme %s/%s", cfg.Theme, cfg.Variant)
	}
	if got := cfg.CSSVars["--brand"]; got != "#123456" {
		t.Fatalf("expected brand css var, got %q", got)
	}
	if got := cfg.Partials[render.PartialTable]; got != defaultThemeFallbacks()[render.PartialTable] {
		t.Fatalf("partials not merged with fallbacks, got %q", got)
	}
}

func TestGenerate_ThemeSelectorError(t *testing.T) {
	selector := &stubThemeSelector{err: errors.New("boom")}
	orch, renderer := newCaptureOrchestrator(t, WithThemeSelector(selector))

	_, err := orch.Generate(context.Background(), Request{TableID: "scores", ThemeName: "missing"})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected selector error, got %v", err)
	}
	if renderer.calls != 0 {
		t.Fatalf("renderer should not run")
	}
}

func TestGenerate_RunsTransformersInOrder(t *testing.T) {
	var seen []string
	record := func(name string) Transformer {
		return TransformerFunc(func(_ context.Context, model *table.Model) error {
			seen = append(seen, name)
			model.Header[0].Title = name
			return nil
		})
	}
	orch, renderer := newCaptureOrchestrator(t, WithTransformers(record("first"), nil, record("second")))

	if _, err := orch.Generate(context.Background(), Request{TableID: "scores"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if diff := cmp.Diff([]string{"first", "second"}, seen); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if renderer.model.Header[0].Title != "second" {
		t.Fatalf("expected last transformer to win, got %q", renderer.model.Header[0].Title)
	}
}

func TestGenerate_Errors(t *testing.T) {
	orch, _ := newCaptureOrchestrator(t)
	model := table.NewModel()

	cases := []struct {
		name string
		req  Request
		want string
	}{
		{name: "no source", req: Request{}, want: "is required"},
		{name: "ambiguous", req: Request{TableID: "scores", Model: &model}, want: "mutually exclusive"},
		{name: "unknown table", req: Request{TableID: "nope"}, want: `table "nope" not found`},
		{name: "unknown renderer", req: Request{TableID: "scores", Renderer: "pdf"}, want: `renderer "pdf"`},
		{name: "unknown sort column", req: Request{TableID: "scores", SortColumn: "rank"}, want: `sort column "rank"`},
		{name: "openapi without schema", req: Request{OpenAPI: &OpenAPIRequest{}}, want: "schema name is required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := orch.Generate(context.Background(), tc.req)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestGenerate_RendererNotFoundIsWrapped(t *testing.T) {
	orch, _ := newCaptureOrchestrator(t)
	_, err := orch.Generate(context.Background(), Request{TableID: "scores", Renderer: "pdf"})
	if !errors.Is(err, render.ErrRendererNotFound) {
		t.Fatalf("expected ErrRendererNotFound, got %v", err)
	}
}

func TestGenerate_CancelledContext(t *testing.T) {
	orch, renderer := newCaptureOrchestrator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := orch.Generate(ctx, Request{TableID: "scores"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if renderer.calls != 0 {
		t.Fatalf("renderer should not run")
	}
}

func TestNew_DefaultRegistry(t *testing.T) {
	orch := New()
	if diff := cmp.Diff([]string{"tui", "vanilla", "xlsx"}, orch.Registry().List()); diff != "" {
		t.Fatalf("registry mismatch (-want +got):\n%s", diff)
	}

	model := table.NewModel(table.HeaderItem{Key: "name", Title: "Name"})
	model.AddRow(table.NewItem(&table.ItemInit{Data: "Ada"}))

	out, err := orch.Generate(context.Background(), Request{Model: &model})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(out), "<table") || !strings.Contains(string(out), "Ada") {
		t.Fatalf("expected vanilla html output, got %s", out)
	}

	text, err := orch.Generate(context.Background(), Request{Model: &model, Renderer: "tui"})
	if err != nil {
		t.Fatalf("generate tui: %v", err)
	}
	if diff := cmp.Diff("Name\n----\nAda\n", string(text)); diff != "" {
		t.Fatalf("tui output mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_InvalidDefinitionsSurfaceOnGenerate(t *testing.T) {
	orch := New(WithDefinitionsFS(fstest.MapFS{"bad.yaml": {Data: []byte("tables: [")}}))
	model := table.NewModel()
	_, err := orch.Generate(context.Background(), Request{Model: &model})
	if err == nil || !strings.Contains(err.Error(), "load table definitions") {
		t.Fatalf("expected definitions error, got %v", err)
	}
}

type selectorCall struct {
	name    string
	variant string
}

type stubThemeSelector struct {
	selection *theme.Selection
	err       error
	calls     []selectorCall
}

func (s *stubThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, selectorCall{name: name, variant: variant})
	return s.selection, s.err
}
