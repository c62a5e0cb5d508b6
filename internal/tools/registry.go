package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"taskchat/internal/logging"
	"taskchat/internal/types"
)

// Registry holds all available tools and dispatches invocations.
// It is thread-safe and supports registration at runtime.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool to the registry.
// Returns an error if a tool with the same name already exists.
func (r *Registry) Register(tool *Tool) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, tool.Name)
	}
	r.tools[tool.Name] = tool

	logging.ToolsDebug("registered tool: %s", tool.Name)
	return nil
}

// MustRegister registers a tool and panics on error.
// Use this for static tool registration at wiring time.
func (r *Registry) MustRegister(tool *Tool) {
	if err := r.Register(tool); err != nil {
		panic(fmt.Sprintf("failed to register tool %s: %v", tool.Name, err))
	}
}

// Get returns a tool by name, or nil if not found.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Has returns true if a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	return r.Get(name) != nil
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Execute runs a tool by name. It always returns a well-formed
// ToolResult: an unknown name, a handler error, a handler panic and a
// missing required argument all come back as Success=false with a
// message. Execute itself never returns an error and never panics.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) *types.ToolResult {
	tool := r.Get(name)
	if tool == nil {
		return &types.ToolResult{Success: false, Message: "unknown tool: " + name}
	}

	for _, required := range tool.Schema.Required {
		if _, ok := args[required]; !ok {
			return &types.ToolResult{
				Success: false,
				Message: fmt.Sprintf("tool %s: missing required argument %q", name, required),
			}
		}
	}

	start := time.Now()
	result := r.invoke(ctx, tool, args)
	logging.ToolsDebug("tool %s completed in %v (success=%v)", name, time.Since(start), result.Success)
	return result
}

// invoke is the containment boundary: whatever happens inside the
// handler, the caller gets a ToolResult.
func (r *Registry) invoke(ctx context.Context, tool *Tool, args map[string]any) (result *types.ToolResult) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.ToolsWarn("tool %s panicked: %v", tool.Name, rec)
			result = &types.ToolResult{
				Success: false,
				Message: fmt.Sprintf("tool %s failed: %v", tool.Name, rec),
			}
		}
	}()

	res, err := tool.Execute(ctx, args)
	if err != nil {
		return &types.ToolResult{Success: false, Message: err.Error()}
	}
	if res == nil {
		return &types.ToolResult{Success: true, Message: tool.Name + " completed"}
	}
	return res
}
