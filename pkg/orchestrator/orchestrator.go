package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	theme "github.com/goliatone/go-theme"

	pkgopenapi "github.com/goliatone/go-tablegen/pkg/openapi"
	"github.com/goliatone/go-tablegen/pkg/render"
	"github.com/goliatone/go-tablegen/pkg/renderers/tui"
	"github.com/goliatone/go-tablegen/pkg/renderers/vanilla"
	"github.com/goliatone/go-tablegen/pkg/renderers/xlsx"
	"github.com/goliatone/go-tablegen/pkg/table"
)

const defaultRendererName = "vanilla"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom OpenAPI loader.
func WithLoader(loader *pkgopenapi.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithDefinitionsFS loads table definitions from fsys on first use.
func WithDefinitionsFS(fsys fs.FS) Option {
	return func(o *Orchestrator) {
		o.definitionsFS = fsys
	}
}

// WithStore supplies an already loaded definition store.
func WithStore(store *table.Store) Option {
	return func(o *Orchestrator) {
		o.store = store
	}
}

// WithThemeSelector resolves request theme names through a go-theme selector.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithThemeFallbacks sets the partials used when a theme does not override
// them.
func WithThemeFallbacks(partials map[string]string) Option {
	return func(o *Orchestrator) {
		o.themeFallbacks = partials
	}
}

// WithTransformers appends transformers that run against every model before
// rendering, after request sorting and paging.
func WithTransformers(transformers ...Transformer) Option {
	return func(o *Orchestrator) {
		for _, t := range transformers {
			if t != nil {
				o.transformers = append(o.transformers, t)
			}
		}
	}
}

// Orchestrator resolves a table model from a definition, an inline model, or an
// OpenAPI schema plus records, and renders it with a registered renderer.
type Orchestrator struct {
	loader          *pkgopenapi.Loader
	registry        *render.Registry
	defaultRenderer string
	definitionsFS   fs.FS
	store           *table.Store
	themeSelector   theme.ThemeSelector
	themeFallbacks  map[string]string
	transformers    []Transformer
	initialiseErr   error
	defaultsApplied bool
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// OpenAPIRequest builds a table from a component schema and a record set.
type OpenAPIRequest struct {
	// Source locates the document. Optional when Document is supplied.
	Source pkgopenapi.Source

	// Document bypasses the loader.
	Document *pkgopenapi.Document

	// Schema names the component schema whose properties become columns.
	Schema string

	// Records supplies one row per entry, keyed by property name.
	Records []map[string]any
}

// Request describes a single render. Exactly one of TableID, Model, or OpenAPI
// selects the data.
type Request struct {
	TableID string
	Model   *table.Model
	OpenAPI *OpenAPIRequest

	// Renderer names the renderer to use. Empty falls back to the default.
	Renderer string

	// SortColumn is a column key. Empty keeps the source order.
	SortColumn string
	Descending bool

	// PageSize limits output to one page when positive. Page is zero-indexed.
	PageSize int
	Page     int

	ThemeName    string
	ThemeVariant string

	RenderOptions render.RenderOptions
}

// Generate resolves the model, applies sorting, paging, and transformers,
// resolves the theme, and renders.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	if !o.defaultsApplied {
		o.applyDefaults()
		if err := o.initialiseErr; err != nil {
			return nil, err
		}
	}

	model, err := o.resolveModel(ctx, req)
	if err != nil {
		return nil, err
	}

	steps := make([]Transformer, 0, len(o.transformers)+2)
	if req.SortColumn != "" {
		steps = append(steps, SortTransformer(req.SortColumn, !req.Descending))
	}
	if req.PageSize > 0 {
		steps = append(steps, PageTransformer(req.PageSize, req.Page))
	}
	steps = append(steps, o.transformers...)
	for _, step := range steps {
		if err := step.Transform(ctx, &model); err != nil {
			return nil, fmt.Errorf("orchestrator: transform table: %w", err)
		}
	}

	renderOptions := req.RenderOptions
	if renderOptions.Theme == nil {
		cfg, err := o.resolveTheme(req.ThemeName, req.ThemeVariant)
		if err != nil {
			return nil, err
		}
		renderOptions.Theme = cfg
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	output, err := renderer.Render(ctx, model, renderOptions)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Registry exposes the renderer registry so callers can list or add renderers.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

// Store returns the definition store, or nil when none is configured.
func (o *Orchestrator) Store() *table.Store {
	return o.store
}

func (o *Orchestrator) resolveModel(ctx context.Context, req Request) (table.Model, error) {
	selected := 0
	for _, set := range []bool{req.TableID != "", req.Model != nil, req.OpenAPI != nil} {
		if set {
			selected++
		}
	}
	switch {
	case selected == 0:
		return table.Model{}, errors.New("orchestrator: table id, model, or openapi request is required")
	case selected > 1:
		return table.Model{}, errors.New("orchestrator: table id, model, and openapi request are mutually exclusive")
	}

	switch {
	case req.Model != nil:
		return req.Model.Clone(), nil
	case req.OpenAPI != nil:
		return o.modelFromOpenAPI(ctx, *req.OpenAPI)
	}

	if o.store == nil {
		return table.Model{}, errors.New("orchestrator: no table definitions configured")
	}
	model, ok := o.store.Table(req.TableID)
	if !ok {
		return table.Model{}, fmt.Errorf("orchestrator: table %q not found", req.TableID)
	}
	return model, nil
}

func (o *Orchestrator) modelFromOpenAPI(ctx context.Context, req OpenAPIRequest) (table.Model, error) {
	if req.Schema == "" {
		return table.Model{}, errors.New("orchestrator: openapi schema name is required")
	}

	var doc pkgopenapi.Document
	switch {
	case req.Document != nil:
		doc = *req.Document
	case req.Source != nil:
		loaded, err := o.loader.Load(ctx, req.Source)
		if err != nil {
			return table.Model{}, fmt.Errorf("orchestrator: load document: %w", err)
		}
		doc = loaded
	default:
		return table.Model{}, errors.New("orchestrator: openapi source or document is required")
	}

	model, err := pkgopenapi.BuildModel(ctx, doc, req.Schema, req.Records)
	if err != nil {
		return table.Model{}, fmt.Errorf("orchestrator: build table: %w", err)
	}
	return model, nil
}

func (o *Orchestrator) resolveTheme(name, variant string) (*render.ThemeConfig, error) {
	if o.themeSelector == nil {
		return nil, nil
	}
	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme %q: %w", name, err)
	}
	return render.ThemeFromSelection(selection, o.themeFallbacks), nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	renderer, err := o.registry.Resolve(name, o.defaultRenderer)
	if err == nil {
		return renderer, nil
	}
	if name != "" {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}
	renderer, err = o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.defaultsApplied {
		return
	}

	if o.loader == nil {
		o.loader = pkgopenapi.NewLoader()
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		if err := registerDefaults(o.registry); err != nil {
			o.initialiseErr = err
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
	if o.themeFallbacks == nil {
		o.themeFallbacks = defaultThemeFallbacks()
	}
	if o.store == nil && o.definitionsFS != nil {
		store, err := table.LoadFS(o.definitionsFS)
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: load table definitions: %w", err)
		} else {
			o.store = store
		}
	}

	o.defaultsApplied = true
}

func registerDefaults(registry *render.Registry) error {
	html, err := vanilla.New()
	if err != nil {
		return fmt.Errorf("orchestrator: default renderer: %w", err)
	}
	text, err := tui.New()
	if err != nil {
		return fmt.Errorf("orchestrator: text renderer: %w", err)
	}
	for _, renderer := range []render.Renderer{html, text, xlsx.New()} {
		if err := registry.Register(renderer); err != nil {
			return fmt.Errorf("orchestrator: register %s: %w", renderer.Name(), err)
		}
	}
	return nil
}

func defaultThemeFallbacks() map[string]string {
	return map[string]string{
		render.PartialTable: "templates/table.tmpl",
		render.PartialEmpty: "templates/empty.tmpl",
	}
}
