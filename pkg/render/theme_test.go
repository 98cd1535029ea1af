package render

import (
	"testing"

	theme "github.com/goliatone/go-theme"
)

func TestThemeFromSelection_MergesVariant(t *testing.T) {
	selection := &theme.Selection{
		Theme:   "acme",
		Variant: "dark",
		Manifest: &theme.Manifest{
			Name:    "acme",
			Version: "1.0.0",
			Tokens:  map[string]string{"brand": "#123456", "border": "#ccc"},
			Templates: map[string]string{
				PartialTable: "themes/acme/table.tmpl",
			},
			Assets: theme.Assets{
				Prefix: "/assets/themes/acme",
				Files:  map[string]string{"tables.stylesheet": "table.css"},
			},
			Variants: map[string]theme.Variant{
				"dark": {
					Tokens:    map[string]string{"brand": "#654321"},
					Templates: map[string]string{"cells.link": "themes/acme/dark/link.tmpl"},
					Assets: theme.Assets{
						Files: map[string]string{"tables.script": "table.dark.js"},
					},
				},
			},
		},
	}

	cfg := ThemeFromSelection(selection, map[string]string{
		PartialTable: "table",
		PartialEmpty: "empty",
	})

	if cfg.Theme != "acme" || cfg.Variant != "dark" {
		t.Fatalf("unexpected theme identity: %s/%s", cfg.Theme, cfg.Variant)
	}
	if got := cfg.Partial(PartialTable, ""); got != "themes/acme/table.tmpl" {
		t.Fatalf("manifest partial not applied: %s", got)
	}
	if got := cfg.CellTemplate("link"); got != "themes/acme/dark/link.tmpl" {
		t.Fatalf("variant cell partial not applied: %s", got)
	}
	if got := cfg.CellTemplate("bold"); got != "bold" {
		t.Fatalf("unmapped cell template changed: %s", got)
	}
	if got := cfg.Partial(PartialEmpty, ""); got != "empty" {
		t.Fatalf("fallback partial not applied: %s", got)
	}
	if cfg.Tokens["brand"] != "#654321" || cfg.CSSVars["--brand"] != "#654321" {
		t.Fatalf("variant tokens not merged: %v", cfg.CSSVars)
	}
	if got := cfg.Style(); got != "--border: #ccc; --brand: #654321" {
		t.Fatalf("unexpected style %q", got)
	}
	if got := cfg.AssetURL("tables.stylesheet"); got != "/assets/themes/acme/table.css" {
		t.Fatalf("unexpected stylesheet url %q", got)
	}
	if got := cfg.AssetURL("tables.script"); got != "/assets/themes/acme/table.dark.js" {
		t.Fatalf("unexpected script url %q", got)
	}
	if got := cfg.AssetURL("missing"); got != "" {
		t.Fatalf("expected empty url for unknown asset, got %q", got)
	}
}

func TestThemeFromSelection_Nil(t *testing.T) {
	if ThemeFromSelection(nil, nil) != nil {
		t.Fatalf("expected nil config")
	}
	var cfg *ThemeConfig
	if got := cfg.Partial(PartialTable, "table"); got != "table" {
		t.Fatalf("nil config should return fallback, got %q", got)
	}
	if cfg.Style() != "" {
		t.Fatalf("nil config should have no style")
	}
}
