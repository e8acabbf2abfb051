package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/viant/mcp-protocol/schema"
)

type (
	// Handler handles loosely typed tool arguments
	Handler func(ctx context.Context, args map[string]interface{}) (*Result, error)

	// Validator is implemented by inputs with constraints beyond required fields
	Validator interface {
		Validate() error
	}

	entry struct {
		tool    schema.Tool
		handler Handler
	}

	// Registry holds tools in registration order
	Registry struct {
		entries []*entry
		index   map[string]*entry
	}
)

// Add registers a tool handler
func (r *Registry) Add(tool schema.Tool, handler Handler) error {
	if tool.Name == "" {
		return fmt.Errorf("tool name was empty")
	}
	if _, ok := r.index[tool.Name]; ok {
		return fmt.Errorf("tool %v already registered", tool.Name)
	}
	anEntry := &entry{tool: tool, handler: handler}
	r.entries = append(r.entries, anEntry)
	r.index[tool.Name] = anEntry
	return nil
}

// Lookup returns a tool handler
func (r *Registry) Lookup(name string) (Handler, bool) {
	anEntry, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return anEntry.handler, true
}

// Tools returns tool descriptors
func (r *Registry) Tools() []schema.Tool {
	ret := make([]schema.Tool, 0, len(r.entries))
	for _, anEntry := range r.entries {
		ret = append(ret, anEntry.tool)
	}
	return ret
}

// Register adds a typed tool; arguments are validated against the input
// struct before fn is called.
func Register[I any](registry *Registry, name, description string, fn func(ctx context.Context, input *I) (*Result, error)) error {
	var inputSchema schema.ToolInputSchema
	if err := inputSchema.Load(new(I)); err != nil {
		return fmt.Errorf("failed to build %v schema: %w", name, err)
	}
	tool := schema.Tool{Name: name, Description: &description, InputSchema: inputSchema}
	return registry.Add(tool, func(ctx context.Context, args map[string]interface{}) (*Result, error) {
		input, err := decode[I](name, inputSchema.Required, args)
		if err != nil {
			return nil, err
		}
		return fn(ctx, input)
	})
}

func decode[I any](name string, required []string, args map[string]interface{}) (*I, error) {
	for _, field := range required {
		if value, ok := args[field]; !ok || value == nil {
			return nil, NewArgumentError(name, "%v: missing required argument: %v", name, field)
		}
	}
	input := new(I)
	if len(args) > 0 {
		data, err := json.Marshal(args)
		if err != nil {
			return nil, NewArgumentError(name, "%v: failed to encode arguments: %v", name, err)
		}
		if err = json.Unmarshal(data, input); err != nil {
			return nil, NewArgumentError(name, "%v: invalid arguments: %v", name, err)
		}
	}
	if validator, ok := any(input).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, NewArgumentError(name, "%v: %v", name, err)
		}
	}
	return input, nil
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{index: map[string]*entry{}}
}
