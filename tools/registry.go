// Package tools provides a metadata-driven registry for MCP tool definitions.
// Tools are declared once in AllTools; the Registry validates arguments
// against each declaration and dispatches to the bound handler.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	apierrors "github.com/olgasafonova/nasa-ads-mcp-server/internal/errors"
	"github.com/olgasafonova/nasa-ads-mcp-server/metrics"
)

// ParamType is the JSON type of a tool parameter.
type ParamType string

const (
	TypeString      ParamType = "string"
	TypeInteger     ParamType = "integer"
	TypeBoolean     ParamType = "boolean"
	TypeStringArray ParamType = "array" // array of strings
)

// Param declares one tool argument.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Default     any      // applied when an optional argument is absent
	Enum        []string // allowed values for string parameters
	Min, Max    *int     // inclusive bounds for integer parameters
}

// ToolSpec defines a tool's metadata for declarative registration.
// Each spec maps to an ADS client method with a matching Args type.
type ToolSpec struct {
	// Name is the MCP tool name (e.g., "search_papers")
	Name string

	// Method is the client method name (e.g., "SearchPapers")
	Method string

	// Description is the tool description shown to LLMs
	Description string

	// Title is the human-readable tool title for annotations
	Title string

	// Category groups tools logically (search, metrics, export, libraries)
	Category string

	// Params is the argument schema
	Params []Param

	// ReadOnly indicates the tool doesn't modify remote state
	ReadOnly bool

	// Destructive indicates the tool can delete or overwrite data
	Destructive bool

	// Idempotent indicates repeated calls have the same effect
	Idempotent bool

	// OpenWorld indicates the tool accesses external resources
	OpenWorld bool
}

// Handler runs a tool with validated arguments and returns its text result.
type Handler func(ctx context.Context, args map[string]any) (string, error)

type entry struct {
	spec    ToolSpec
	handler Handler
}

// Registry maps tool names to their declarations and handlers.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]entry
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]entry)}
}

// Register binds a handler to a tool declaration. Names must be unique.
func (r *Registry) Register(spec ToolSpec, handler Handler) error {
	if spec.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if handler == nil {
		return fmt.Errorf("tool %s: handler is nil", spec.Name)
	}
	if err := spec.checkParams(); err != nil {
		return fmt.Errorf("tool %s: %w", spec.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[spec.Name]; exists {
		return fmt.Errorf("tool %s is already registered", spec.Name)
	}
	r.tools[spec.Name] = entry{spec: spec, handler: handler}
	r.order = append(r.order, spec.Name)
	return nil
}

// Specs returns the registered declarations in registration order.
func (r *Registry) Specs() []ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	specs := make([]ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.tools[name].spec)
	}
	return specs
}

// Lookup returns the declaration for name.
func (r *Registry) Lookup(name string) (ToolSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tools[name]
	return e.spec, ok
}

// Call validates args against the named tool's declaration and invokes its
// handler. The handler's text is returned unchanged.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	r.mu.RLock()
	e, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		metrics.RecordToolError("unknown", "validation")
		return "", apierrors.NewValidationError("name", name, "unknown tool")
	}

	validated, err := e.spec.Validate(args)
	if err != nil {
		metrics.RecordToolError(name, "validation")
		return "", err
	}
	return e.handler(ctx, validated)
}

// Validate checks args against the declared parameters and returns a
// normalized copy: integers as int, arrays as []string, defaults applied.
// Undeclared keys are dropped.
func (spec ToolSpec) Validate(args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(spec.Params))
	for _, p := range spec.Params {
		raw, present := args[p.Name]
		if present && raw == nil {
			present = false
		}
		if !present {
			if p.Required {
				return nil, apierrors.NewValidationError(p.Name, "", "is required")
			}
			if p.Default != nil {
				out[p.Name] = p.Default
			}
			continue
		}

		v, err := p.check(raw)
		if err != nil {
			return nil, err
		}
		out[p.Name] = v
	}
	return out, nil
}

// check validates a single value without coercion
func (p Param) check(raw any) (any, error) {
	switch p.Type {
	case TypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, apierrors.NewValidationError(p.Name, describe(raw), "must be a string")
		}
		if p.Required && strings.TrimSpace(s) == "" {
			return nil, apierrors.NewValidationError(p.Name, "", "must not be empty")
		}
		if len(p.Enum) > 0 && !slices.Contains(p.Enum, s) {
			return nil, apierrors.NewValidationError(p.Name, s, "must be one of "+strings.Join(p.Enum, ", "))
		}
		return s, nil

	case TypeInteger:
		n, ok := wholeNumber(raw)
		if !ok {
			return nil, apierrors.NewValidationError(p.Name, describe(raw), "must be an integer")
		}
		if (p.Min != nil && n < *p.Min) || (p.Max != nil && n > *p.Max) {
			return nil, apierrors.NewValidationError(p.Name, strconv.Itoa(n), "must be between "+bound(p.Min)+" and "+bound(p.Max))
		}
		return n, nil

	case TypeBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, apierrors.NewValidationError(p.Name, describe(raw), "must be a boolean")
		}
		return b, nil

	case TypeStringArray:
		list, ok := stringList(raw)
		if !ok {
			return nil, apierrors.NewValidationError(p.Name, describe(raw), "must be an array of strings")
		}
		if p.Required && len(list) == 0 {
			return nil, apierrors.NewValidationError(p.Name, "", "must contain at least one item")
		}
		return list, nil
	}
	return nil, apierrors.NewValidationError(p.Name, "", "unsupported parameter type "+string(p.Type))
}

// checkParams rejects malformed declarations at registration time
func (spec ToolSpec) checkParams() error {
	seen := make(map[string]bool, len(spec.Params))
	for _, p := range spec.Params {
		if p.Name == "" {
			return fmt.Errorf("parameter without a name")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate parameter %s", p.Name)
		}
		seen[p.Name] = true
		switch p.Type {
		case TypeString, TypeInteger, TypeBoolean, TypeStringArray:
		default:
			return fmt.Errorf("parameter %s: unsupported type %q", p.Name, p.Type)
		}
		if p.Default != nil {
			if _, err := p.check(p.Default); err != nil {
				return fmt.Errorf("parameter %s: invalid default: %w", p.Name, err)
			}
		}
	}
	return nil
}

// InputSchema renders the parameters as a JSON Schema object.
func (spec ToolSpec) InputSchema() *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(spec.Params)),
	}
	for _, p := range spec.Params {
		prop := &jsonschema.Schema{
			Type:        string(p.Type),
			Description: p.Description,
		}
		if p.Type == TypeStringArray {
			prop.Items = &jsonschema.Schema{Type: "string"}
		}
		for _, v := range p.Enum {
			prop.Enum = append(prop.Enum, v)
		}
		if p.Min != nil {
			prop.Minimum = ptr(float64(*p.Min))
		}
		if p.Max != nil {
			prop.Maximum = ptr(float64(*p.Max))
		}
		if p.Default != nil {
			if raw, err := json.Marshal(p.Default); err == nil {
				prop.Default = raw
			}
		}
		schema.Properties[p.Name] = prop
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	sort.Strings(schema.Required)
	return schema
}

// wholeNumber accepts JSON numbers that are integers, never strings
func wholeNumber(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || v > math.MaxInt32 || v < math.MinInt32 {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := strconv.Atoi(v.String())
		return n, err == nil
	}
	return 0, false
}

func stringList(raw any) ([]string, bool) {
	switch v := raw.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func describe(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool, float64, int, int64, json.Number:
		return fmt.Sprint(t)
	}
	return fmt.Sprintf("%T", v)
}

func bound(n *int) string {
	if n == nil {
		return "unbounded"
	}
	return strconv.Itoa(*n)
}

// ptr is a helper to create a pointer to a value.
func ptr[T any](v T) *T {
	return &v
}
