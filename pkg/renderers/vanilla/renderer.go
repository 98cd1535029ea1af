package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-tablegen/pkg/render"
	rendertemplate "github.com/goliatone/go-tablegen/pkg/render/template"
	"github.com/goliatone/go-tablegen/pkg/render/template/pongo"
	"github.com/goliatone/go-tablegen/pkg/table"
)

const (
	defaultTableTemplate = "templates/table.tmpl"
	defaultEmptyTemplate = "templates/empty.tmpl"
)

type Option func(*config)

type config struct {
	templateFS       []fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	policy           *bluemonday.Policy
	classes          string
}

// WithTemplatesFS adds a template bundle consulted before the embedded one.
// Cell template references resolve against it.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templateFS = append(cfg.templateFS, files)
		}
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = append(cfg.templateFS, os.DirFS(path))
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithSanitizer replaces the policy applied to custom cell template output.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// WithTableClass appends CSS classes to the rendered <table>.
func WithTableClass(classes string) Option {
	return func(cfg *config) {
		cfg.classes = strings.TrimSpace(cfg.classes + " " + classes)
	}
}

// Renderer writes table models as HTML tables.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	policy    *bluemonday.Policy
	classes   string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engineOpts := make([]pongo.Option, 0, len(cfg.templateFS)+1)
		for _, files := range cfg.templateFS {
			engineOpts = append(engineOpts, pongo.WithFS(files))
		}
		engineOpts = append(engineOpts, pongo.WithFS(TemplatesFS()))

		engine, err := pongo.New(engineOpts...)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	policy := cfg.policy
	if policy == nil {
		policy = defaultSanitizer()
	}

	return &Renderer{templates: renderer, policy: policy, classes: cfg.classes}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, model table.Model, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	columns := model.ColumnCount()
	header := make([]map[string]any, 0, columns)
	for col := 0; col < columns; col++ {
		column := table.HeaderItem{}
		if col < len(model.Header) {
			column = model.Header[col]
		}
		header = append(header, map[string]any{
			"key":      column.Key,
			"label":    column.Label(),
			"sortable": column.Sortable,
		})
	}

	rows := make([][]map[string]any, 0, model.RowCount())
	for row := 0; row < model.RowCount(); row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cells := make([]map[string]any, 0, columns)
		for col := 0; col < columns; col++ {
			cell, err := r.renderCell(model, row, col, options.Theme)
			if err != nil {
				return nil, err
			}
			cells = append(cells, cell)
		}
		rows = append(rows, cells)
	}

	view := map[string]any{
		"caption": options.Caption,
		"classes": r.classes,
		"style":   options.Theme.Style(),
		"header":  header,
		"rows":    rows,
		"columns": columns,
	}
	if len(rows) == 0 {
		empty, err := r.templates.RenderTemplate(options.Theme.Partial(render.PartialEmpty, defaultEmptyTemplate), nil)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: render empty state: %w", err)
		}
		view["empty_html"] = r.policy.Sanitize(strings.TrimSpace(empty))
	}

	result, err := r.templates.RenderTemplate(options.Theme.Partial(render.PartialTable, defaultTableTemplate), view)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

// renderCell returns the template view of one cell. Cells with a template
// reference are rendered through the engine and sanitized; all others carry
// their payload as plain text for the table template to escape.
func (r *Renderer) renderCell(model table.Model, row, col int, theme *render.ThemeConfig) (map[string]any, error) {
	item, _ := model.Cell(row, col)
	ref := model.EffectiveTemplate(row, col)
	if ref.IsZero() {
		return map[string]any{
			"text":      pongo.CellText(item.Data),
			"templated": false,
		}, nil
	}

	name := theme.CellTemplate(string(ref))
	out, err := r.templates.Render(name, map[string]any{
		"data":   item.Data,
		"item":   item,
		"row":    row,
		"column": col,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: cell %d,%d template %q: %w", row, col, ref, err)
	}
	return map[string]any{
		"html":      r.policy.Sanitize(out),
		"template":  templateLabel(ref),
		"templated": true,
	}, nil
}

// templateLabel hides inline template bodies from the data-template attribute.
func templateLabel(ref table.TemplateRef) string {
	if pongo.IsTemplateContent(string(ref)) {
		return "inline"
	}
	return string(ref)
}

var (
	sanitizerOnce sync.Once
	sanitizer     *bluemonday.Policy
)

func defaultSanitizer() *bluemonday.Policy {
	sanitizerOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Globally()
		sanitizer = policy
	})
	return sanitizer
}
