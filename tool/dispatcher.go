package tool

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/mcp-protocol/schema"
)

// Dispatcher routes tool calls to registered handlers. Invoke never fails:
// unknown tools, invalid arguments, handler errors and panics all become
// failed results. Calls are processed one at a time.
type Dispatcher struct {
	registry *Registry
	mux      sync.Mutex
}

// List returns operation descriptors
func (d *Dispatcher) List() []schema.Tool {
	return d.registry.Tools()
}

// Invoke calls a tool by name
func (d *Dispatcher) Invoke(ctx context.Context, name string, args map[string]interface{}) (result *Result) {
	d.mux.Lock()
	defer d.mux.Unlock()
	defer func() {
		if r := recover(); r != nil {
			result = Fail(FailureInternal, fmt.Sprintf("%v: unexpected failure: %v", name, r))
		}
	}()
	handler, ok := d.registry.Lookup(name)
	if !ok {
		return Fail(FailureProtocol, fmt.Sprintf("no such operation: %v", name))
	}
	result, err := handler(ctx, args)
	if err != nil {
		return FailWith(err)
	}
	if result == nil {
		return Info("ok")
	}
	return result
}

// New creates a dispatcher
func New(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}
