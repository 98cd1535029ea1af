package table

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrColumnRange is returned when a column index falls outside the header.
	ErrColumnRange = errors.New("table: column index out of range")
	// ErrNotSortable is returned when sorting a column flagged as not sortable.
	ErrNotSortable = errors.New("table: column is not sortable")
)

// HeaderItem describes a single column.
type HeaderItem struct {
	Key      string      `json:"key" yaml:"key"`
	Title    string      `json:"title,omitempty" yaml:"title,omitempty"`
	Template TemplateRef `json:"template,omitempty" yaml:"template,omitempty"`
	Sortable bool        `json:"sortable,omitempty" yaml:"sortable,omitempty"`
}

// Label returns the display title, falling back to the column key.
func (h HeaderItem) Label() string {
	if title := strings.TrimSpace(h.Title); title != "" {
		return title
	}
	return h.Key
}

// Model is the row/column container renderers consume. Each row owns its
// cells; rows may be shorter than the header, missing cells render empty.
type Model struct {
	Header []HeaderItem `json:"header" yaml:"header"`
	Data   [][]Item     `json:"data" yaml:"data"`
}

// NewModel creates an empty model with the given columns.
func NewModel(header ...HeaderItem) Model {
	return Model{Header: append([]HeaderItem(nil), header...)}
}

// AddRow appends a row of cells.
func (m *Model) AddRow(cells ...Item) {
	m.Data = append(m.Data, append([]Item(nil), cells...))
}

// Row returns the cells at index i, or nil when out of range.
func (m Model) Row(i int) []Item {
	if i < 0 || i >= len(m.Data) {
		return nil
	}
	return m.Data[i]
}

// Cell returns the item at row/col. Missing cells inside the header width
// report the default empty item with ok == true.
func (m Model) Cell(row, col int) (Item, bool) {
	if row < 0 || row >= len(m.Data) || col < 0 || col >= m.ColumnCount() {
		return Item{}, false
	}
	cells := m.Data[row]
	if col >= len(cells) {
		return NewItem(nil), true
	}
	return cells[col], true
}

// RowCount returns the number of rows.
func (m Model) RowCount() int {
	return len(m.Data)
}

// ColumnCount returns the widest of the header and any row.
func (m Model) ColumnCount() int {
	count := len(m.Header)
	for _, row := range m.Data {
		if len(row) > count {
			count = len(row)
		}
	}
	return count
}

// EffectiveTemplate resolves the template used for a cell: the cell's own
// reference wins over the column reference. Cells missing from a short row
// have no template.
func (m Model) EffectiveTemplate(row, col int) TemplateRef {
	item, ok := m.Cell(row, col)
	if !ok || col >= len(m.Data[row]) {
		return ""
	}
	if !item.Template.IsZero() {
		return item.Template
	}
	if col < len(m.Header) {
		return m.Header[col].Template
	}
	return ""
}

// SortBy reorders rows by the values in column col. Sorting is stable; numeric
// payloads compare numerically and everything else by its printed form.
func (m *Model) SortBy(col int, ascending bool) error {
	if col < 0 || col >= m.ColumnCount() {
		return fmt.Errorf("%w: %d", ErrColumnRange, col)
	}
	if col < len(m.Header) && !m.Header[col].Sortable {
		return fmt.Errorf("%w: %q", ErrNotSortable, m.Header[col].Key)
	}

	sort.SliceStable(m.Data, func(i, j int) bool {
		a := cellAt(m.Data[i], col).Data
		b := cellAt(m.Data[j], col).Data
		if ascending {
			return compareValues(a, b) < 0
		}
		return compareValues(a, b) > 0
	})
	return nil
}

// Page returns a copy of the model holding only rows of the requested page.
// Pages are zero indexed; size <= 0 returns every row. Rows are copied, so the
// result can be edited without touching m.
func (m Model) Page(size, index int) Model {
	out := Model{Header: append([]HeaderItem(nil), m.Header...)}
	if size <= 0 {
		out.Data = copyRows(m.Data)
		return out
	}
	if index < 0 || len(m.Data) == 0 || index > (len(m.Data)-1)/size {
		return out
	}
	start := size * index
	end := len(m.Data)
	if size < end-start {
		end = start + size
	}
	out.Data = copyRows(m.Data[start:end])
	return out
}

// Clone returns a deep copy of the header and rows. Payloads are shared.
func (m Model) Clone() Model {
	return m.Page(0, 0)
}

func copyRows(rows [][]Item) [][]Item {
	if rows == nil {
		return nil
	}
	out := make([][]Item, len(rows))
	for i, row := range rows {
		out[i] = append([]Item(nil), row...)
	}
	return out
}

// PageCount returns how many pages of the given size the model spans.
func (m Model) PageCount(size int) int {
	if size <= 0 || len(m.Data) == 0 {
		return 1
	}
	return (len(m.Data) + size - 1) / size
}

func cellAt(row []Item, col int) Item {
	if col < len(row) {
		return row[col]
	}
	return NewItem(nil)
}

func compareValues(a, b any) int {
	ad, aNum := numeric(a)
	bd, bNum := numeric(b)
	switch {
	case aNum && bNum:
		return ad.Cmp(bd)
	case aNum:
		return -1
	case bNum:
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// numeric converts numeric payloads, including numeric strings, to exact
// decimals so "0.1" and 0.1 compare equal and large integers keep precision.
func numeric(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int8:
		return decimal.NewFromInt(int64(n)), true
	case int16:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint:
		return fromString(strconv.FormatUint(uint64(n), 10))
	case uint8:
		return decimal.NewFromInt(int64(n)), true
	case uint16:
		return decimal.NewFromInt(int64(n)), true
	case uint32:
		return decimal.NewFromInt(int64(n)), true
	case uint64:
		return fromString(strconv.FormatUint(n, 10))
	case float32:
		return fromFloat(float64(n))
	case float64:
		return fromFloat(n)
	case json.Number:
		return fromString(n.String())
	case string:
		return fromString(n)
	default:
		return decimal.Decimal{}, false
	}
}

func fromFloat(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromFloat(f), true
}

func fromString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	return d, err == nil
}
