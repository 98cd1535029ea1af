package tablegen

import (
	"context"
	"io/fs"

	theme "github.com/goliatone/go-theme"

	pkgopenapi "github.com/goliatone/go-tablegen/pkg/openapi"
	"github.com/goliatone/go-tablegen/pkg/orchestrator"
	"github.com/goliatone/go-tablegen/pkg/render"
	"github.com/goliatone/go-tablegen/pkg/table"
)

// Item aliases table.Item, the cell value holder.
type Item = table.Item

// ItemInit aliases table.ItemInit.
type ItemInit = table.ItemInit

// Model aliases table.Model.
type Model = table.Model

// RenderOptions describes per-request rendering overrides such as caption and
// resolved theme.
type RenderOptions = render.RenderOptions

// NewItem wraps table.NewItem so the common case needs a single import.
func NewItem(init *ItemInit) Item {
	return table.NewItem(init)
}

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML renders the table definition id found in definitions with the
// default HTML renderer.
func GenerateHTML(ctx context.Context, definitions fs.FS, id string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(append([]orchestrator.Option{orchestrator.WithDefinitionsFS(definitions)}, options...)...)
	return gen.Generate(ctx, orchestrator.Request{TableID: id})
}

// GenerateFromModel renders an in-memory model with the named renderer. An
// empty name selects the default renderer.
func GenerateFromModel(ctx context.Context, model Model, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Model:    &model,
		Renderer: rendererName,
	})
}

// GenerateFromOpenAPI builds columns from the named component schema in doc,
// one row per record, and renders them with the named renderer.
func GenerateFromOpenAPI(ctx context.Context, doc pkgopenapi.Document, schema string, records []map[string]any, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		OpenAPI: &orchestrator.OpenAPIRequest{
			Document: &doc,
			Schema:   schema,
			Records:  records,
		},
		Renderer: rendererName,
	})
}

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// theme and variant choices are resolved ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}

// WithThemeFallbacks forwards fallback partials used when deriving renderer
// configuration from a theme selection.
func WithThemeFallbacks(fallbacks map[string]string) orchestrator.Option {
	return orchestrator.WithThemeFallbacks(fallbacks)
}
