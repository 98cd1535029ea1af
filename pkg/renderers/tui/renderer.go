package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-tablegen/pkg/render"
	rendertemplate "github.com/goliatone/go-tablegen/pkg/render/template"
	"github.com/goliatone/go-tablegen/pkg/render/template/pongo"
	"github.com/goliatone/go-tablegen/pkg/table"
)

const noSortOption = "(keep order)"

// Renderer implements render.Renderer for terminals. In interactive mode it
// prompts for a sort column and a page before laying the table out.
type Renderer struct {
	driver       PromptDriver
	templates    rendertemplate.TemplateRenderer
	outputFormat OutputFormat
	interactive  bool
	pageSize     int
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, plain output,
// non-interactive).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       NewSurveyDriver(),
		outputFormat: OutputFormatPlain,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	switch r.outputFormat {
	case OutputFormatPlain, OutputFormatMarkdown:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatMarkdown {
		return "text/markdown; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Render lays out the model as text.
func (r *Renderer) Render(ctx context.Context, model table.Model, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	view := model.Clone()
	if r.interactive {
		if r.driver == nil {
			return nil, errors.New("tui: prompt driver is nil")
		}
		if err := r.promptSort(ctx, &view); err != nil {
			return nil, err
		}
	}

	page := 0
	if r.pageSize > 0 && view.PageCount(r.pageSize) > 1 && r.interactive {
		var err error
		if page, err = r.promptPage(ctx, view); err != nil {
			return nil, err
		}
	}
	if r.pageSize > 0 {
		view = view.Page(r.pageSize, page)
	}

	grid, err := r.cells(ctx, view, opts.Theme)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	if caption := strings.TrimSpace(opts.Caption); caption != "" {
		b.WriteString(caption)
		b.WriteString("\n\n")
	}
	if r.outputFormat == OutputFormatMarkdown {
		writeMarkdown(&b, grid)
	} else {
		writePlain(&b, grid)
	}
	if r.pageSize > 0 && model.PageCount(r.pageSize) > 1 {
		fmt.Fprintf(&b, "\npage %d of %d\n", page+1, model.PageCount(r.pageSize))
	}
	return []byte(b.String()), nil
}

func (r *Renderer) promptSort(ctx context.Context, model *table.Model) error {
	options := []string{noSortOption}
	columns := []int{-1}
	for idx, column := range model.Header {
		if column.Sortable {
			options = append(options, column.Label())
			columns = append(columns, idx)
		}
	}
	if len(columns) == 1 {
		return nil
	}

	choice, err := r.driver.Select(ctx, SelectConfig{
		Message: "Sort by",
		Options: options,
	})
	if err != nil {
		return err
	}
	if choice <= 0 || choice >= len(columns) {
		return nil
	}

	ascending, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: "Ascending?",
		Default: true,
	})
	if err != nil {
		return err
	}
	return model.SortBy(columns[choice], ascending)
}

func (r *Renderer) promptPage(ctx context.Context, model table.Model) (int, error) {
	count := model.PageCount(r.pageSize)
	options := make([]string, count)
	for i := range options {
		options[i] = fmt.Sprintf("page %d of %d", i+1, count)
	}
	choice, err := r.driver.Select(ctx, SelectConfig{
		Message: "Page",
		Options: options,
	})
	if err != nil {
		return 0, err
	}
	if choice < 0 {
		return 0, nil
	}
	return choice, nil
}

// cells returns the header row followed by every body row as display text.
func (r *Renderer) cells(ctx context.Context, model table.Model, theme *render.ThemeConfig) ([][]string, error) {
	columns := model.ColumnCount()
	grid := make([][]string, 0, model.RowCount()+1)

	header := make([]string, columns)
	for col := range header {
		if col < len(model.Header) {
			header[col] = model.Header[col].Label()
		}
	}
	grid = append(grid, header)

	for row := 0; row < model.RowCount(); row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := make([]string, columns)
		for col := range line {
			text, err := r.cellText(model, row, col, theme)
			if err != nil {
				return nil, err
			}
			line[col] = text
		}
		grid = append(grid, line)
	}
	return grid, nil
}

func (r *Renderer) cellText(model table.Model, row, col int, theme *render.ThemeConfig) (string, error) {
	item, _ := model.Cell(row, col)
	ref := model.EffectiveTemplate(row, col)
	if ref.IsZero() || r.templates == nil {
		return singleLine(pongo.CellText(item.Data)), nil
	}

	out, err := r.templates.Render(theme.CellTemplate(string(ref)), map[string]any{
		"data":   item.Data,
		"item":   item,
		"row":    row,
		"column": col,
	})
	if err != nil {
		return "", fmt.Errorf("tui: cell %d,%d template %q: %w", row, col, ref, err)
	}
	return render.PlainText(out), nil
}

func writePlain(b *strings.Builder, grid [][]string) {
	widths := columnWidths(grid)
	for idx, line := range grid {
		writeAligned(b, line, widths, "  ")
		if idx == 0 {
			parts := make([]string, len(widths))
			for col, width := range widths {
				parts[col] = strings.Repeat("-", width)
			}
			b.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
			b.WriteByte('\n')
		}
	}
}

func writeMarkdown(b *strings.Builder, grid [][]string) {
	for idx, line := range grid {
		escaped := make([]string, len(line))
		for col, value := range line {
			escaped[col] = strings.ReplaceAll(value, "|", `\|`)
		}
		b.WriteString("| " + strings.Join(escaped, " | ") + " |\n")
		if idx == 0 {
			b.WriteString("|" + strings.Repeat(" --- |", len(line)) + "\n")
		}
	}
}

func writeAligned(b *strings.Builder, line []string, widths []int, sep string) {
	var lb strings.Builder
	for col, value := range line {
		if col > 0 {
			lb.WriteString(sep)
		}
		lb.WriteString(value)
		if pad := widths[col] - utf8.RuneCountInString(value); pad > 0 {
			lb.WriteString(strings.Repeat(" ", pad))
		}
	}
	b.WriteString(strings.TrimRight(lb.String(), " "))
	b.WriteByte('\n')
}

func columnWidths(grid [][]string) []int {
	if len(grid) == 0 {
		return nil
	}
	widths := make([]int, len(grid[0]))
	for _, line := range grid {
		for col, value := range line {
			if n := utf8.RuneCountInString(value); n > widths[col] {
				widths[col] = n
			}
		}
	}
	return widths
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
