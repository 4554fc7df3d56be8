package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/olgasafonova/nasa-ads-mcp-server/internal/ads"
	apierrors "github.com/olgasafonova/nasa-ads-mcp-server/internal/errors"
	"github.com/olgasafonova/nasa-ads-mcp-server/metrics"
	"github.com/olgasafonova/nasa-ads-mcp-server/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// HandlerRegistry binds every tool in AllTools to its ADS client method and
// exposes the result both as a Registry and on an MCP server.
type HandlerRegistry struct {
	client   *ads.Client
	registry *Registry
	logger   *slog.Logger
}

// NewHandlerRegistry creates a handler registry with all tools bound.
func NewHandlerRegistry(client *ads.Client, logger *slog.Logger) (*HandlerRegistry, error) {
	h := &HandlerRegistry{
		client:   client,
		registry: NewRegistry(),
		logger:   logger,
	}
	for _, spec := range AllTools {
		if err := h.registerByName(spec); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Registry returns the underlying tool registry.
func (h *HandlerRegistry) Registry() *Registry {
	return h.registry
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(spec ToolSpec) error {
	switch spec.Method {
	// Search
	case "SearchPapers":
		return register(h, spec, h.client.SearchPapersMCP)
	case "GetPaperDetails":
		return register(h, spec, h.client.GetPaperDetailsMCP)
	case "GetAuthorPapers":
		return register(h, spec, h.client.GetAuthorPapersMCP)

	// Metrics
	case "GetPaperMetrics":
		return register(h, spec, h.client.GetPaperMetricsMCP)
	case "GetAuthorMetrics":
		return register(h, spec, h.client.GetAuthorMetricsMCP)

	// Export
	case "ExportBibTeX":
		return register(h, spec, h.client.ExportBibTeXMCP)

	// Libraries
	case "ListLibraries":
		return register(h, spec, h.client.ListLibrariesMCP)
	case "GetLibraryPapers":
		return register(h, spec, h.client.GetLibraryPapersMCP)
	case "CreateLibrary":
		return register(h, spec, h.client.CreateLibraryMCP)
	case "AddToLibrary":
		return register(h, spec, h.client.AddToLibraryMCP)
	}
	return fmt.Errorf("tool %s: unknown method %q", spec.Name, spec.Method)
}

// register is a generic helper that binds a typed client method into the
// registry. It wraps the method with panic recovery, metrics, tracing, and logging.
func register[Args any](
	h *HandlerRegistry,
	spec ToolSpec,
	method func(context.Context, Args) (string, error),
) error {
	return h.registry.Register(spec, func(ctx context.Context, raw map[string]any) (text string, err error) {
		defer h.recoverPanic(spec.Name, &err)

		var args Args
		if err := decodeArgs(raw, &args); err != nil {
			return "", err
		}

		ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
		defer span.End()
		tracing.AddToolAttributes(span, spec.Name, spec.Category)
		span.SetAttributes(attribute.Bool("mcp.tool.readonly", spec.ReadOnly))

		metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

		start := time.Now()
		text, err = method(ctx, args)
		duration := time.Since(start)

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration.Seconds()))

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.RecordRequest(spec.Name, duration.Seconds(), false)
			metrics.RecordToolError(spec.Name, errorCategory(err))
			h.logger.Warn("Tool failed",
				"tool", spec.Name,
				"category", errorCategory(err),
				"duration_ms", duration.Milliseconds(),
				"error", err)
			return "", err
		}

		span.SetStatus(codes.Ok, "")
		metrics.RecordRequest(spec.Name, duration.Seconds(), true)
		h.logExecution(spec, args, text, duration)
		return text, nil
	})
}

// RegisterAll registers all tools with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	specs := h.registry.Specs()
	for _, spec := range specs {
		server.AddTool(buildTool(spec), h.toolHandler(spec.Name))
	}
	h.logger.Info("Registered all tools", "count", len(specs))
}

// toolHandler adapts Registry.Call to the MCP tool handler signature. Every
// failure becomes an error result so the session keeps running.
func (h *HandlerRegistry) toolHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args map[string]any
		if req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return errorResult(name, apierrors.NewValidationError("arguments", "", "must be a JSON object")), nil
			}
		}

		text, err := h.registry.Call(ctx, name, args)
		if err != nil {
			return errorResult(name, err), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil
	}
}

// buildTool creates an mcp.Tool from a ToolSpec.
func buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
	}
	if spec.Destructive {
		annotations.DestructiveHint = ptr(true)
	} else if !spec.ReadOnly {
		annotations.DestructiveHint = ptr(false)
	}
	if spec.OpenWorld {
		annotations.OpenWorldHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Title:       spec.Title,
		Description: spec.Description,
		InputSchema: spec.InputSchema(),
		Annotations: annotations,
	}
}

func errorResult(name string, err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("%s failed: %v", name, err)}},
	}
}

// decodeArgs maps validated arguments onto a typed Args struct
func decodeArgs(raw map[string]any, out any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return apierrors.NewValidationError("", "", "arguments are not serializable: "+err.Error())
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apierrors.NewValidationError("", "", "arguments do not match the tool schema: "+err.Error())
	}
	return nil
}

// errorCategory labels a failure for the tool_errors_total metric
func errorCategory(err error) string {
	switch {
	case apierrors.IsValidation(err):
		return "validation"
	case apierrors.IsUpstream(err):
		return "upstream"
	default:
		return "internal"
	}
}

// recoverPanic recovers from panics in tool handlers and reports them as errors.
func (h *HandlerRegistry) recoverPanic(toolName string, err *error) {
	if rec := recover(); rec != nil {
		metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
		metrics.RecordToolError(toolName, "internal")
		h.logger.Error("Panic recovered",
			"tool", toolName,
			"panic", rec,
			"stack", string(debug.Stack()))
		*err = fmt.Errorf("internal error: %v", rec)
	}
}

// logExecution logs tool execution details. The API token never appears in
// arguments, so every field here is safe to log.
func (h *HandlerRegistry) logExecution(spec ToolSpec, args any, result string, duration time.Duration) {
	attrs := []any{"tool", spec.Name, "category", spec.Category}

	// Add extractable fields from args using type assertions
	switch a := args.(type) {
	case ads.SearchPapersArgs:
		attrs = append(attrs, "query", a.Query, "rows", a.Rows, "sort", a.Sort)
	case ads.GetPaperDetailsArgs:
		attrs = append(attrs, "bibcode", a.Bibcode)
	case ads.GetAuthorPapersArgs:
		attrs = append(attrs, "author", a.Author, "rows", a.Rows)
	case ads.GetPaperMetricsArgs:
		attrs = append(attrs, "bibcodes", len(a.Bibcodes))
	case ads.GetAuthorMetricsArgs:
		attrs = append(attrs, "author", a.Author, "years", a.Years)
	case ads.ExportBibTeXArgs:
		attrs = append(attrs, "bibcodes", len(a.Bibcodes))
	case ads.ListLibrariesArgs:
		// No args to log
	case ads.GetLibraryPapersArgs:
		attrs = append(attrs, "library_id", a.LibraryID, "rows", a.Rows)
	case ads.CreateLibraryArgs:
		attrs = append(attrs, "name", a.Name, "public", a.Public, "bibcodes", len(a.Bibcodes))
	case ads.AddToLibraryArgs:
		attrs = append(attrs, "library_id", a.LibraryID, "bibcodes", len(a.Bibcodes))
	}

	attrs = append(attrs, "duration_ms", duration.Milliseconds(), "result_bytes", len(result))
	h.logger.Info("Tool executed", attrs...)
}
