package table

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

const usersYAML = `
tables:
  users:
    header:
      - key: name
        title: Name
        sortable: true
      - key: profile
        template: link
    rows:
      - - Ada
        - data: {name: Ada, link: /users/ada}
      - - data: Grace
        - {}
`

const ordersJSON = `{
  "tables": {
    "orders": {
      "header": [{"key": "id"}, {"key": "total"}],
      "rows": [[{"data": 7, "template": "order"}, null]]
    }
  }
}`

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"tables/users.yaml":  {Data: []byte(usersYAML)},
		"tables/orders.json": {Data: []byte(ordersJSON)},
		"tables/README.md":   {Data: []byte("ignored")},
	}

	store, err := LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"orders", "users"}, store.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	users, ok := store.Table("users")
	if !ok {
		t.Fatalf("expected users table")
	}
	want := [][]Item{
		{
			{Data: "Ada"},
			{Data: map[string]any{"name": "Ada", "link": "/users/ada"}},
		},
		{
			{Data: "Grace"},
			{Data: ""},
		},
	}
	if diff := cmp.Diff(want, users.Data); diff != "" {
		t.Fatalf("users rows mismatch (-want +got):\n%s", diff)
	}
	if users.Header[1].Template != "link" || !users.Header[0].Sortable {
		t.Fatalf("unexpected header: %+v", users.Header)
	}

	orders, _ := store.Table("orders")
	wantOrders := [][]Item{{{Data: float64(7), Template: "order"}, {Data: ""}}}
	if diff := cmp.Diff(wantOrders, orders.Data); diff != "" {
		t.Fatalf("orders rows mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFS_NilFS(t *testing.T) {
	store, err := LoadFS(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !store.Empty() {
		t.Fatalf("expected empty store")
	}
}

func TestLoadFS_DuplicateTable(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml": {Data: []byte("tables:\n  users:\n    header: []\n")},
		"b.yaml": {Data: []byte("tables:\n  users:\n    header: []\n")},
	}
	_, err := LoadFS(fsys)
	if err == nil || !strings.Contains(err.Error(), `duplicate table "users"`) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestParse_Errors(t *testing.T) {
	if _, err := Parse([]byte("   "), "empty.yaml"); err == nil {
		t.Fatalf("expected empty file error")
	}
	if _, err := Parse([]byte("tables: [unterminated"), "bad.yaml"); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := Parse([]byte("tables:\n  \" \":\n    header: []\n"), "blank.yaml"); err == nil {
		t.Fatalf("expected empty id error")
	}
}

func TestStore_TableReturnsCopy(t *testing.T) {
	store, err := LoadFS(fstest.MapFS{"t.yaml": {Data: []byte(usersYAML)}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	first, _ := store.Table("users")
	first.AddRow(NewItem(nil))

	second, _ := store.Table("users")
	if second.RowCount() != 2 {
		t.Fatalf("store model mutated, rows=%d", second.RowCount())
	}
}

func TestStore_TableIsolatesCells(t *testing.T) {
	store, err := LoadFS(fstest.MapFS{"t.yaml": {Data: []byte("tables:\n  t:\n    header: [{key: a}]\n    rows: [[x]]\n")}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	first, _ := store.Table("t")
	first.Data[0][0].Data = "mutated"
	first.Data[0][0].Template = "bold"

	second, _ := store.Table("t")
	want := []Item{NewItem(&ItemInit{Data: "x"})}
	if diff := cmp.Diff(want, second.Row(0)); diff != "" {
		t.Fatalf("store mutated through returned model (-want +got):\n%s", diff)
	}
}
