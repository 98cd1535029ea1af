package render

import (
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Partial keys renderers look up in ThemeConfig.Partials. Cell template
// references can also be remapped per theme under CellPartialPrefix+ref.
const (
	PartialTable      = "tables.table"
	PartialEmpty      = "tables.empty"
	CellPartialPrefix = "cells."
)

// ThemeConfig is the renderer-facing view of a go-theme selection: template
// partials, design tokens, and asset URLs with variant overrides applied.
type ThemeConfig struct {
	Theme    string
	Variant  string
	Partials map[string]string
	Tokens   map[string]string
	CSSVars  map[string]string
	AssetURL func(key string) string
}

// Partial returns the template registered for key, or fallback.
func (c *ThemeConfig) Partial(key, fallback string) string {
	if c == nil {
		return fallback
	}
	if value := strings.TrimSpace(c.Partials[key]); value != "" {
		return value
	}
	return fallback
}

// CellTemplate maps a cell template reference through the theme, returning
// ref unchanged when the theme has no override.
func (c *ThemeConfig) CellTemplate(ref string) string {
	return c.Partial(CellPartialPrefix+ref, ref)
}

// Style renders the CSS variables as an inline style attribute value with
// keys in sorted order.
func (c *ThemeConfig) Style() string {
	if c == nil || len(c.CSSVars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(c.CSSVars))
	for key := range c.CSSVars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+c.CSSVars[key])
	}
	return strings.Join(parts, "; ")
}

// ThemeFromSelection merges the manifest and the selected variant into a
// ThemeConfig. Fallback partials fill any key the theme does not override.
// A nil selection returns nil.
func ThemeFromSelection(selection *theme.Selection, fallbacks map[string]string) *ThemeConfig {
	if selection == nil {
		return nil
	}

	cfg := &ThemeConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: mergeStrings(nil, fallbacks),
		Tokens:   map[string]string{},
	}

	prefix := ""
	files := map[string]string{}
	if manifest := selection.Manifest; manifest != nil {
		if cfg.Theme == "" {
			cfg.Theme = manifest.Name
		}
		cfg.Partials = mergeStrings(cfg.Partials, manifest.Templates)
		cfg.Tokens = mergeStrings(cfg.Tokens, manifest.Tokens)
		prefix = manifest.Assets.Prefix
		files = mergeStrings(files, manifest.Assets.Files)

		if variant, ok := manifest.Variants[selection.Variant]; ok {
			cfg.Partials = mergeStrings(cfg.Partials, variant.Templates)
			cfg.Tokens = mergeStrings(cfg.Tokens, variant.Tokens)
			files = mergeStrings(files, variant.Assets.Files)
			if variant.Assets.Prefix != "" {
				prefix = variant.Assets.Prefix
			}
		}
	}

	cfg.CSSVars = make(map[string]string, len(cfg.Tokens))
	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+strings.TrimPrefix(key, "--")] = value
	}
	cfg.AssetURL = assetResolver(prefix, files)
	return cfg
}

func assetResolver(prefix string, files map[string]string) func(string) string {
	return func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if strings.HasPrefix(file, "/") || strings.Contains(file, "://") || prefix == "" {
			return file
		}
		return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
	}
}

func mergeStrings(dst, src map[string]string) map[string]string {
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
