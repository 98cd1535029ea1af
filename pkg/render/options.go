package render

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the table model.
type RenderOptions struct {
	// Caption is rendered above the table when set.
	Caption string
	// Theme carries the resolved theme selection. Renderers fall back to their
	// embedded templates when nil.
	Theme *ThemeConfig
}
