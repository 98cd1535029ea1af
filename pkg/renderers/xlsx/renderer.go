// Package xlsx renders table models as Excel workbooks with excelize.
package xlsx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/goliatone/go-tablegen/pkg/render"
	rendertemplate "github.com/goliatone/go-tablegen/pkg/render/template"
	"github.com/goliatone/go-tablegen/pkg/render/template/pongo"
	"github.com/goliatone/go-tablegen/pkg/table"
)

const (
	// ContentType is the MIME type of the produced workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	defaultSheet = "Sheet1"
)

// Option configures the renderer.
type Option func(*Renderer)

// WithSheetName names the worksheet holding the table.
func WithSheetName(name string) Option {
	return func(r *Renderer) {
		if name = strings.TrimSpace(name); name != "" {
			r.sheet = name
		}
	}
}

// WithTemplateRenderer renders templated cells through the engine and stores
// their text. Without an engine templated cells keep their payload.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(r *Renderer) {
		r.templates = renderer
	}
}

// WithFreezeHeader keeps the header row visible while scrolling.
func WithFreezeHeader(enabled bool) Option {
	return func(r *Renderer) {
		r.freezeHeader = enabled
	}
}

// Renderer writes one worksheet: a bold header row followed by the data rows.
type Renderer struct {
	sheet        string
	templates    rendertemplate.TemplateRenderer
	freezeHeader bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{sheet: defaultSheet, freezeHeader: true}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return "xlsx"
}

func (r *Renderer) ContentType() string {
	return ContentType
}

// Render returns the workbook bytes. The caption becomes the document title.
func (r *Renderer) Render(ctx context.Context, model table.Model, opts render.RenderOptions) (out []byte, err error) {
	if ctx == nil {
		return nil, errors.New("xlsx: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("xlsx: close workbook: %w", cerr)
		}
	}()

	if r.sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, r.sheet); err != nil {
			return nil, fmt.Errorf("xlsx: name sheet: %w", err)
		}
	}

	columns := model.ColumnCount()
	if err := r.writeHeader(f, model, columns); err != nil {
		return nil, err
	}

	for row := 0; row < model.RowCount(); row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for col := 0; col < columns; col++ {
			value, err := r.cellValue(model, row, col, opts.Theme)
			if err != nil {
				return nil, err
			}
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("xlsx: cell %d,%d: %w", row, col, err)
			}
			if err := f.SetCellValue(r.sheet, cell, value); err != nil {
				return nil, fmt.Errorf("xlsx: write %s: %w", cell, err)
			}
		}
	}

	if caption := strings.TrimSpace(opts.Caption); caption != "" {
		if err := f.SetDocProps(&excelize.DocProperties{Title: caption}); err != nil {
			return nil, fmt.Errorf("xlsx: set title: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) writeHeader(f *excelize.File, model table.Model, columns int) error {
	if columns == 0 {
		return nil
	}
	for col := 0; col < columns; col++ {
		label := ""
		if col < len(model.Header) {
			label = model.Header[col].Label()
		}
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("xlsx: header %d: %w", col, err)
		}
		if err := f.SetCellValue(r.sheet, cell, label); err != nil {
			return fmt.Errorf("xlsx: write %s: %w", cell, err)
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return fmt.Errorf("xlsx: header range: %w", err)
	}
	if err := f.SetCellStyle(r.sheet, "A1", last, style); err != nil {
		return fmt.Errorf("xlsx: style header: %w", err)
	}

	if r.freezeHeader {
		if err := f.SetPanes(r.sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("xlsx: freeze header: %w", err)
		}
	}
	return nil
}

// cellValue returns a value excelize can store natively: numbers and booleans
// stay typed, composite payloads become JSON text.
func (r *Renderer) cellValue(model table.Model, row, col int, theme *render.ThemeConfig) (any, error) {
	item, _ := model.Cell(row, col)
	ref := model.EffectiveTemplate(row, col)
	if !ref.IsZero() && r.templates != nil {
		out, err := r.templates.Render(theme.CellTemplate(string(ref)), map[string]any{
			"data":   item.Data,
			"item":   item,
			"row":    row,
			"column": col,
		})
		if err != nil {
			return nil, fmt.Errorf("xlsx: cell %d,%d template %q: %w", row, col, ref, err)
		}
		return render.PlainText(out), nil
	}

	switch v := item.Data.(type) {
	case nil:
		return "", nil
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return v, nil
	case float32:
		return finiteOrText(float64(v)), nil
	case float64:
		return finiteOrText(v), nil
	case decimal.Decimal:
		return decimalValue(v), nil
	case json.Number:
		if d, err := decimal.NewFromString(v.String()); err == nil {
			return decimalValue(d), nil
		}
		return v.String(), nil
	default:
		return pongo.CellText(v), nil
	}
}

// decimalValue keeps a decimal numeric when a float64 holds it exactly and
// falls back to its text otherwise.
func decimalValue(d decimal.Decimal) any {
	f, _ := d.Float64()
	if !math.IsInf(f, 0) && decimal.NewFromFloat(f).Equal(d) {
		return f
	}
	return d.String()
}

func finiteOrText(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return pongo.CellText(f)
	}
	return f
}
