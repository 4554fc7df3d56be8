package ads

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/olgasafonova/nasa-ads-mcp-server/internal/base"
	apierrors "github.com/olgasafonova/nasa-ads-mcp-server/internal/errors"
)

// BaseURL is the ADS API v1 endpoint
const BaseURL = "https://api.adsabs.harvard.edu/v1"

var (
	// ListFields are requested for numbered paper lists
	ListFields = []string{"bibcode", "title", "author", "year", "citation_count", "pubdate"}

	// DetailFields are requested for a single paper
	DetailFields = []string{
		"bibcode", "title", "author", "year", "citation_count", "read_count",
		"pub", "pubdate", "doi", "keyword", "abstract",
	}
)

// Sort orders accepted by the tools, mapped to ADS sort clauses.
var sortClauses = map[string]string{
	"date":           "date desc",
	"citation_count": "citation_count desc",
	"relevance":      "score desc",
}

// Client provides access to the NASA ADS API
type Client struct {
	*base.Client
}

// ClientOption configures the Client (re-export base.ClientOption for compatibility)
type ClientOption = base.ClientOption

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return base.WithHTTPClient(c)
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return base.WithLogger(l)
}

// WithBaseURL points the client at a different API root
func WithBaseURL(u string) ClientOption {
	return base.WithBaseURL(u)
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) ClientOption {
	return base.WithTimeout(d)
}

// WithRateLimit sets client-side pacing in requests per second
func WithRateLimit(rps float64) ClientOption {
	return base.WithRateLimit(rps)
}

// NewClient creates a new ADS client authenticated with token
func NewClient(token string, opts ...ClientOption) *Client {
	return &Client{Client: base.NewClient(BaseURL, token, opts...)}
}

// SearchQuery describes one ADS search. Query is free text in ADS syntax;
// Author, Year and Bibcode are appended as fielded filters.
type SearchQuery struct {
	Query   string
	Author  string
	Year    string // YYYY or YYYY-YYYY
	Bibcode string
	Fields  []string
	Sort    string // date, citation_count or relevance
	Rows    int
}

// Validate checks the query before any request is made
func (q SearchQuery) Validate() error {
	if q.q() == "" {
		return apierrors.NewValidationError("query", "", "search query is required")
	}
	if q.Year != "" {
		if err := ValidateYearRange("year", q.Year); err != nil {
			return err
		}
	}
	if q.Bibcode != "" {
		if err := ValidateBibcode("bibcode", q.Bibcode); err != nil {
			return err
		}
	}
	if q.Sort != "" {
		if _, ok := sortClauses[q.Sort]; !ok {
			return apierrors.NewValidationError("sort", q.Sort, "must be one of date, citation_count, relevance")
		}
	}
	if q.Rows != 0 {
		if err := ValidateRows("rows", q.Rows, MaxRows); err != nil {
			return err
		}
	}
	return nil
}

// q builds the ADS query string
func (q SearchQuery) q() string {
	parts := make([]string, 0, 4)
	if s := strings.TrimSpace(q.Query); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(q.Author); s != "" {
		parts = append(parts, "author:"+strconv.Quote(s))
	}
	if q.Year != "" {
		parts = append(parts, "year:"+q.Year)
	}
	if q.Bibcode != "" {
		parts = append(parts, "bibcode:"+strconv.Quote(q.Bibcode))
	}
	return strings.Join(parts, " ")
}

// Params returns the URL parameters for /search/query
func (q SearchQuery) Params() url.Values {
	params := url.Values{}
	params.Set("q", q.q())
	fields := q.Fields
	if len(fields) == 0 {
		fields = ListFields
	}
	params.Set("fl", strings.Join(fields, ","))
	if clause, ok := sortClauses[q.Sort]; ok {
		params.Set("sort", clause)
	}
	if q.Rows > 0 {
		params.Set("rows", strconv.Itoa(q.Rows))
	}
	return params
}

// Search runs a query against /search/query
func (c *Client) Search(ctx context.Context, q SearchQuery) (*SearchResponse, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var resp SearchResponse
	err := c.DoJSON(ctx, base.RequestConfig{
		Path:   "/search/query",
		Action: "search",
		Query:  q.Params(),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Metrics fetches aggregate citation statistics and indicators for bibcodes
func (c *Client) Metrics(ctx context.Context, bibcodes []string) (*MetricsResponse, error) {
	if err := ValidateBibcodes("bibcodes", bibcodes); err != nil {
		return nil, err
	}

	var resp MetricsResponse
	err := c.DoJSON(ctx, base.RequestConfig{
		Method: http.MethodPost,
		Path:   "/metrics",
		Action: "metrics",
		Body:   map[string][]string{"bibcodes": bibcodes},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListLibraries lists the libraries owned by or shared with the token's user
func (c *Client) ListLibraries(ctx context.Context) (*LibraryList, error) {
	var resp LibraryList
	err := c.DoJSON(ctx, base.RequestConfig{
		Path:   "/biblib/libraries",
		Action: "biblib.list",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetLibrary fetches a library's metadata, member bibcodes and the requested
// fields of its documents in one request
func (c *Client) GetLibrary(ctx context.Context, id string, rows int, fields []string) (*LibraryContents, error) {
	if err := ValidateLibraryID("library_id", id); err != nil {
		return nil, err
	}
	if err := ValidateRows("rows", rows, MaxRows); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		fields = ListFields
	}

	params := url.Values{}
	params.Set("fl", strings.Join(fields, ","))
	params.Set("rows", strconv.Itoa(rows))

	var resp LibraryContents
	err := c.DoJSON(ctx, base.RequestConfig{
		Path:   "/biblib/libraries/" + url.PathEscape(id),
		Action: "biblib.get",
		Query:  params,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateLibrary creates a new library, optionally seeded with bibcodes
func (c *Client) CreateLibrary(ctx context.Context, draft LibraryDraft) (*CreatedLibrary, error) {
	if err := ValidateRequired("name", draft.Name); err != nil {
		return nil, err
	}
	if len(draft.Bibcodes) > 0 {
		if err := ValidateBibcodes("bibcodes", draft.Bibcodes); err != nil {
			return nil, err
		}
	}

	var resp CreatedLibrary
	err := c.DoJSON(ctx, base.RequestConfig{
		Method: http.MethodPost,
		Path:   "/biblib/libraries",
		Action: "biblib.create",
		Body:   draft,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, apierrors.NewUpstreamError("/biblib/libraries", http.StatusOK, "response did not include a library id")
	}
	return &resp, nil
}

// AddToLibrary merges bibcodes into an existing library
func (c *Client) AddToLibrary(ctx context.Context, id string, bibcodes []string) (*DocumentsUpdate, error) {
	if err := ValidateLibraryID("library_id", id); err != nil {
		return nil, err
	}
	if err := ValidateBibcodes("bibcodes", bibcodes); err != nil {
		return nil, err
	}

	var resp DocumentsUpdate
	err := c.DoJSON(ctx, base.RequestConfig{
		Method: http.MethodPost,
		Path:   "/biblib/documents/" + url.PathEscape(id),
		Action: "biblib.add",
		Body: map[string]any{
			"bibcode": bibcodes,
			"action":  "add",
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExportBibTeX exports bibcodes as BibTeX
func (c *Client) ExportBibTeX(ctx context.Context, bibcodes []string) (*ExportResponse, error) {
	if err := ValidateBibcodes("bibcodes", bibcodes); err != nil {
		return nil, err
	}

	var resp ExportResponse
	err := c.DoJSON(ctx, base.RequestConfig{
		Method: http.MethodPost,
		Path:   "/export/bibtex",
		Action: "export.bibtex",
		Body:   map[string][]string{"bibcode": bibcodes},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
