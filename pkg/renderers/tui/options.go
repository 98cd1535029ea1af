package tui

import (
	rendertemplate "github.com/goliatone/go-tablegen/pkg/render/template"
)

// OutputFormat controls how the table is laid out.
type OutputFormat string

const (
	// OutputFormatPlain emits space aligned columns with a dashed separator.
	OutputFormatPlain OutputFormat = "plain"
	// OutputFormatMarkdown emits a GitHub flavoured markdown table.
	OutputFormatMarkdown OutputFormat = "markdown"
)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used in interactive mode.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the layout.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithInteractive asks for sort column and page before rendering.
func WithInteractive(enabled bool) Option {
	return func(r *Renderer) {
		r.interactive = enabled
	}
}

// WithPageSize limits how many rows are shown per page. Zero shows every row.
func WithPageSize(size int) Option {
	return func(r *Renderer) {
		if size >= 0 {
			r.pageSize = size
		}
	}
}

// WithTemplateRenderer renders templated cells through the given engine; the
// markup is stripped so only text reaches the terminal. Without an engine,
// templated cells fall back to their plain payload.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(r *Renderer) {
		r.templates = renderer
	}
}
