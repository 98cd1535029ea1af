// Package template defines the template engine seam used by the table
// renderers. Cell template references are resolved through this interface so
// renderers stay independent of the concrete engine.
package template
