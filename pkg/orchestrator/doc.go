// Package orchestrator wires the definition store or OpenAPI adapter, model
// transformers, theme selection, and renderer registry into a single Generate
// call.
package orchestrator
