// Package tools exposes the mail operations as an assistant-tool
// adapter: a JSON-RPC 2.0 server over stdio with a registry of named
// tools. Mutating tools require a preview step before they act.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// Tool is one callable entry in the registry.
type Tool struct {
	Name        string
	Description string
	// InputSchema is the JSON Schema for the tool's arguments.
	InputSchema json.RawMessage
	// Handler receives the raw arguments object and returns the text
	// result shown to the caller.
	Handler func(ctx context.Context, args json.RawMessage) (string, error)
}

// Registry holds the tool set, looked up by name.
type Registry struct {
	tools map[string]*Tool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool. Registering the same name twice is a
// programming error and panics.
func (r *Registry) Register(t *Tool) {
	if _, exists := r.tools[t.Name]; exists {
		panic(fmt.Sprintf("tool %q registered twice", t.Name))
	}
	r.tools[t.Name] = t
}

// List returns all tools sorted by name.
func (r *Registry) List() []*Tool {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	list := make([]*Tool, 0, len(names))
	for _, name := range names {
		list = append(list, r.tools[name])
	}
	return list
}

// Call dispatches to the named tool.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) (string, error) {
	tool, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", name)
	}
	return tool.Handler(ctx, args)
}

// decodeArgs unmarshals tool arguments, treating absent arguments as
// an empty object.
func decodeArgs(args json.RawMessage, v any) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid tool arguments: %w", err)
	}
	return nil
}
