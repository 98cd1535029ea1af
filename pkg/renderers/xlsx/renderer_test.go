package xlsx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/goliatone/go-tablegen/pkg/render"
	"github.com/goliatone/go-tablegen/pkg/render/template/pongo"
	"github.com/goliatone/go-tablegen/pkg/table"
	"github.com/goliatone/go-tablegen/pkg/testsupport"
)

func readRows(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	return rows
}

func TestRenderer_WritesHeaderAndRows(t *testing.T) {
	model := table.NewModel(
		table.HeaderItem{Key: "name", Title: "Name"},
		table.HeaderItem{Key: "qty"},
		table.HeaderItem{Key: "meta"},
	)
	model.AddRow(
		table.NewItem(&table.ItemInit{Data: "Ada"}),
		table.NewItem(&table.ItemInit{Data: 3}),
		table.NewItem(&table.ItemInit{Data: map[string]any{"tag": "x"}}),
	)

	renderer := New(WithSheetName("Inventory"))
	out, err := renderer.Render(testsupport.Context(), model, render.RenderOptions{Caption: "Stock"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := [][]string{
		{"Name", "qty", "meta"},
		{"Ada", "3", `{"tag":"x"}`},
	}
	if diff := cmp.Diff(want, readRows(t, out, "Inventory")); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

type part struct {
	SKU string `json:"sku"`
}

func TestRenderer_CellPayloads(t *testing.T) {
	tests := []struct {
		name string
		data any
		want string
	}{
		{name: "string slice", data: []string{"a", "b"}, want: `["a","b"]`},
		{name: "string map", data: map[string]string{"k": "v"}, want: `{"k":"v"}`},
		{name: "struct", data: part{SKU: "A-1"}, want: `{"sku":"A-1"}`},
		{name: "typed struct", data: table.Typed[part]{Data: part{SKU: "B-2"}}.Item().Data, want: `{"sku":"B-2"}`},
		{name: "decimal", data: decimal.RequireFromString("12.5"), want: "12.5"},
		{name: "inexact decimal", data: decimal.RequireFromString("9007199254740993"), want: "9007199254740993"},
		{name: "json number", data: json.Number("7"), want: "7"},
		{name: "not a number", data: math.NaN(), want: "NaN"},
		{name: "infinity", data: math.Inf(-1), want: "-Inf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := table.NewModel(table.HeaderItem{Key: "value"})
			model.AddRow(table.NewItem(&table.ItemInit{Data: tt.data}))

			out, err := New().Render(context.Background(), model, render.RenderOptions{})
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if diff := cmp.Diff([][]string{{"value"}, {tt.want}}, readRows(t, out, defaultSheet)); diff != "" {
				t.Fatalf("rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderer_TemplatedCellsAsText(t *testing.T) {
	engine, err := pongo.New(pongo.WithFS(fstest.MapFS{}))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	model := table.NewModel(table.HeaderItem{Key: "user", Template: `<a href="{{ data.link }}">{{ data.name }}</a>`})
	model.AddRow(table.NewItem(&table.ItemInit{Data: map[string]any{"name": "Grace", "link": "/g"}}))

	out, err := New(WithTemplateRenderer(engine)).Render(context.Background(), model, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff([][]string{{"user"}, {"Grace"}}, readRows(t, out, defaultSheet)); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Render(ctx, table.NewModel(), render.RenderOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRenderer_Metadata(t *testing.T) {
	r := New()
	if r.Name() != "xlsx" || r.ContentType() != ContentType {
		t.Fatalf("unexpected metadata %s %s", r.Name(), r.ContentType())
	}
}
