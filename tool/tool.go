// Package tool defines the local function tools exposed to the content
// agent: content generation guidance, content review, and image generation.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// Definition is one callable function tool: its schema as advertised to
// the model and the handler invoked when the model calls it. Handlers
// return the JSON string fed back to the model as the tool output.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]any
	Execute     func(ctx context.Context, args json.RawMessage) (string, error)
}

// Registry holds the tools available to one turn.
type Registry struct {
	defs map[string]Definition
}

// NewRegistry creates a registry from the given definitions.
func NewRegistry(defs ...Definition) *Registry {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, def := range defs {
		r.defs[def.Name] = def
	}
	return r
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Definitions returns all tools in name order.
func (r *Registry) Definitions() []Definition {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	defs := make([]Definition, 0, len(names))
	for _, name := range names {
		defs = append(defs, r.defs[name])
	}
	return defs
}

// Call executes the named tool with raw JSON arguments.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) (string, error) {
	def, ok := r.defs[name]
	if !ok {
		return "", fmt.Errorf("tool: unknown tool %q", name)
	}
	return def.Execute(ctx, args)
}

// stringParam builds a JSON schema string property.
func stringParam(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

// objectSchema builds a JSON schema object with the given properties and
// required names.
func objectSchema(props map[string]any, required ...string) map[string]any {
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}
