package tools

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/olgasafonova/nasa-ads-mcp-server/internal/ads"
	apierrors "github.com/olgasafonova/nasa-ads-mcp-server/internal/errors"
	"github.com/olgasafonova/nasa-ads-mcp-server/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestHandlers wires every tool to an ADS client pointed at handler.
func newTestHandlers(t *testing.T, handler http.HandlerFunc) *HandlerRegistry {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := ads.NewClient("test-token",
		ads.WithBaseURL(server.URL),
		ads.WithRateLimit(0),
		ads.WithLogger(quietLogger()),
	)
	h, err := NewHandlerRegistry(client, quietLogger())
	if err != nil {
		t.Fatalf("NewHandlerRegistry: %v", err)
	}
	return h
}

const searchReply = `{"responseHeader":{"status":0},"response":{"numFound":2,"start":0,"docs":[
	{"bibcode":"2019ApJ...878...98S","title":["Stellar populations"],"author":["Smith, J.","Doe, A."],"year":"2019","citation_count":12},
	{"bibcode":"2018MNRAS.475.1234D","title":["Dust lanes"],"author":["Doe, A."],"year":"2018","citation_count":3}
]}}`

func TestNewHandlerRegistry(t *testing.T) {
	h := newTestHandlers(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})

	specs := h.Registry().Specs()
	if len(specs) != len(AllTools) {
		t.Fatalf("registered %d tools, want %d", len(specs), len(AllTools))
	}
	for i, spec := range specs {
		if spec.Name != AllTools[i].Name {
			t.Errorf("tool %d = %s, want %s", i, spec.Name, AllTools[i].Name)
		}
	}
}

func TestRegisterByNameUnknownMethod(t *testing.T) {
	h := &HandlerRegistry{client: ads.NewClient("x"), registry: NewRegistry(), logger: quietLogger()}
	err := h.registerByName(ToolSpec{Name: "bogus", Method: "Bogus"})
	if err == nil || !strings.Contains(err.Error(), "unknown method") {
		t.Fatalf("err = %v, want unknown method", err)
	}
}

func TestBuildTool(t *testing.T) {
	tests := []struct {
		name      string
		tool      string
		wantRO    bool
		wantIdem  bool
		wantDestr *bool
	}{
		{name: "read-only search", tool: "search_papers", wantRO: true, wantIdem: true},
		{name: "create is not idempotent", tool: "create_library", wantDestr: ptr(false)},
		{name: "add is idempotent", tool: "add_to_library", wantIdem: true, wantDestr: ptr(false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := findSpec(t, tt.tool)
			tool := buildTool(spec)

			if tool.Name != spec.Name || tool.Description != spec.Description {
				t.Errorf("tool identity mismatch: %q", tool.Name)
			}
			if tool.Annotations == nil {
				t.Fatal("Expected annotations")
			}
			if tool.Annotations.ReadOnlyHint != tt.wantRO {
				t.Errorf("ReadOnlyHint = %v, want %v", tool.Annotations.ReadOnlyHint, tt.wantRO)
			}
			if tool.Annotations.IdempotentHint != tt.wantIdem {
				t.Errorf("IdempotentHint = %v, want %v", tool.Annotations.IdempotentHint, tt.wantIdem)
			}
			if tt.wantDestr != nil {
				if tool.Annotations.DestructiveHint == nil || *tool.Annotations.DestructiveHint != *tt.wantDestr {
					t.Errorf("DestructiveHint = %v, want %v", tool.Annotations.DestructiveHint, *tt.wantDestr)
				}
			}
			if tool.Annotations.OpenWorldHint == nil || !*tool.Annotations.OpenWorldHint {
				t.Error("Expected OpenWorldHint to be true")
			}
			if tool.InputSchema == nil {
				t.Error("Expected an input schema")
			}
		})
	}
}

func TestHandlerSearchPapers(t *testing.T) {
	var calls atomic.Int32
	h := newTestHandlers(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/search/query" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("rows"); got != "10" {
			t.Errorf("rows = %q, want default 10", got)
		}
		if got := r.URL.Query().Get("sort"); got != "citation_count desc" {
			t.Errorf("sort = %q", got)
		}
		_, _ = io.WriteString(w, searchReply)
	})

	text, err := h.Registry().Call(context.Background(), "search_papers", map[string]any{
		"query": "dust",
		"sort":  "citation_count",
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("requests = %d, want 1", calls.Load())
	}
	lines := strings.Split(text, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), text)
	}
	if !strings.HasPrefix(lines[0], "1. Stellar populations (2019)") {
		t.Errorf("first line = %q", lines[0])
	}
}

func TestHandlerValidationSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	h := newTestHandlers(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	tests := []struct {
		tool  string
		args  map[string]any
		field string
	}{
		{"search_papers", map[string]any{}, "query"},
		{"search_papers", map[string]any{"query": "x", "rows": 500}, "rows"},
		{"search_papers", map[string]any{"query": "x", "year": "20x9"}, "year"},
		{"get_author_papers", map[string]any{"author": "Doe, A.", "sort": "relevance"}, "sort"},
		{"get_paper_metrics", map[string]any{"bibcodes": []any{}}, "bibcodes"},
		{"export_bibtex", map[string]any{"bibcodes": "2019ApJ...878...98S"}, "bibcodes"},
		{"get_library_papers", map[string]any{"library_id": "a/b"}, "library_id"},
		{"create_library", map[string]any{"name": "   "}, "name"},
		{"add_to_library", map[string]any{"library_id": "abc"}, "bibcodes"},
	}

	for _, tt := range tests {
		t.Run(tt.tool+"/"+tt.field, func(t *testing.T) {
			_, err := h.Registry().Call(context.Background(), tt.tool, tt.args)
			var verr *apierrors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
	if calls.Load() != 0 {
		t.Errorf("validation failures issued %d requests", calls.Load())
	}
}

func TestHandlerUpstreamErrorCounted(t *testing.T) {
	h := newTestHandlers(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"Unauthorized"}`)
	})

	before := testutil.ToFloat64(metrics.ToolErrors.WithLabelValues("list_libraries", "upstream"))
	_, err := h.Registry().Call(context.Background(), "list_libraries", nil)
	if !apierrors.IsUpstream(err) {
		t.Fatalf("err = %v, want UpstreamError", err)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error %q should carry the status", err)
	}
	after := testutil.ToFloat64(metrics.ToolErrors.WithLabelValues("list_libraries", "upstream"))
	if after != before+1 {
		t.Errorf("upstream errors = %v, want %v", after, before+1)
	}
}

func TestRegisterRecoversPanic(t *testing.T) {
	h := &HandlerRegistry{registry: NewRegistry(), logger: quietLogger()}
	spec := ToolSpec{Name: "explode", Category: "test"}
	err := register(h, spec, func(context.Context, ads.ListLibrariesArgs) (string, error) {
		panic("boom")
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	before := testutil.ToFloat64(metrics.PanicsRecovered.WithLabelValues("explode"))
	_, err = h.Registry().Call(context.Background(), "explode", nil)
	if err == nil || !strings.Contains(err.Error(), "internal error: boom") {
		t.Fatalf("err = %v, want recovered panic", err)
	}
	if got := testutil.ToFloat64(metrics.PanicsRecovered.WithLabelValues("explode")); got != before+1 {
		t.Errorf("panics recovered = %v, want %v", got, before+1)
	}
}

func TestLogExecution(t *testing.T) {
	var buf strings.Builder
	h := &HandlerRegistry{logger: slog.New(slog.NewTextHandler(&buf, nil))}

	h.logExecution(ToolSpec{Name: "get_library_papers", Category: "libraries"},
		ads.GetLibraryPapersArgs{LibraryID: "abc", Rows: 5}, "hello", 0)

	out := buf.String()
	for _, want := range []string{"tool=get_library_papers", "library_id=abc", "rows=5", "result_bytes=5"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}

func TestErrorCategory(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{apierrors.NewValidationError("rows", "0", "must be between 1 and 50"), "validation"},
		{apierrors.NewUpstreamError("search", 500, "boom"), "upstream"},
		{errors.New("other"), "internal"},
	}
	for _, tt := range tests {
		if got := errorCategory(tt.err); got != tt.want {
			t.Errorf("errorCategory(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

// connect serves h over an in-memory MCP transport and returns a client session.
func connect(t *testing.T, h *HandlerRegistry) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "nasa-ads-test", Version: "test"}, nil)
	h.RegisterAll(server)

	st, ct := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("got %d content items, want 1", len(res.Content))
	}
	text, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want *mcp.TextContent", res.Content[0])
	}
	return text.Text
}

func TestMCPSession(t *testing.T) {
	h := newTestHandlers(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/query":
			_, _ = io.WriteString(w, searchReply)
		case "/export/bibtex":
			_, _ = io.WriteString(w, `{"msg":"Retrieved 1 abstracts","export":"@ARTICLE{2019ApJ...878...98S,\n  title = {Stellar populations}\n}\n"}`)
		default:
			http.NotFound(w, r)
		}
	})
	cs := connect(t, h)
	ctx := context.Background()

	t.Run("list tools", func(t *testing.T) {
		res, err := cs.ListTools(ctx, nil)
		if err != nil {
			t.Fatalf("ListTools: %v", err)
		}
		if len(res.Tools) != len(AllTools) {
			t.Fatalf("listed %d tools, want %d", len(res.Tools), len(AllTools))
		}
		names := map[string]bool{}
		for _, tool := range res.Tools {
			names[tool.Name] = true
		}
		for _, spec := range AllTools {
			if !names[spec.Name] {
				t.Errorf("tool %s not listed", spec.Name)
			}
		}
	})

	t.Run("search", func(t *testing.T) {
		res, err := cs.CallTool(ctx, &mcp.CallToolParams{
			Name:      "search_papers",
			Arguments: map[string]any{"query": "stellar", "rows": 2},
		})
		if err != nil {
			t.Fatalf("CallTool: %v", err)
		}
		if res.IsError {
			t.Fatalf("unexpected error result: %s", resultText(t, res))
		}
		if text := resultText(t, res); !strings.Contains(text, "bibcode: 2018MNRAS.475.1234D") {
			t.Errorf("search text = %q", text)
		}
	})

	t.Run("export is unmodified", func(t *testing.T) {
		res, err := cs.CallTool(ctx, &mcp.CallToolParams{
			Name:      "export_bibtex",
			Arguments: map[string]any{"bibcodes": []string{"2019ApJ...878...98S"}},
		})
		if err != nil {
			t.Fatalf("CallTool: %v", err)
		}
		want := "@ARTICLE{2019ApJ...878...98S,\n  title = {Stellar populations}\n}\n"
		if got := resultText(t, res); got != want {
			t.Errorf("export = %q, want %q", got, want)
		}
	})

	t.Run("validation error result", func(t *testing.T) {
		res, err := cs.CallTool(ctx, &mcp.CallToolParams{
			Name:      "get_author_papers",
			Arguments: map[string]any{"author": "Doe, A.", "rows": 0},
		})
		if err != nil {
			t.Fatalf("CallTool: %v", err)
		}
		if !res.IsError {
			t.Fatal("expected an error result")
		}
		text := resultText(t, res)
		if !strings.HasPrefix(text, "get_author_papers failed: ") || !strings.Contains(text, "rows") {
			t.Errorf("error text = %q", text)
		}
	})

	t.Run("upstream error result", func(t *testing.T) {
		res, err := cs.CallTool(ctx, &mcp.CallToolParams{
			Name:      "list_libraries",
			Arguments: map[string]any{},
		})
		if err != nil {
			t.Fatalf("CallTool: %v", err)
		}
		if !res.IsError || !strings.Contains(resultText(t, res), "404") {
			t.Errorf("expected a 404 error result, got %+v", res)
		}
	})
}

func findSpec(t *testing.T, name string) ToolSpec {
	t.Helper()
	for _, spec := range AllTools {
		if spec.Name == name {
			return spec
		}
	}
	t.Fatalf("tool %s not in AllTools", name)
	return ToolSpec{}
}
