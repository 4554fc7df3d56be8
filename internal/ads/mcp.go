package ads

import (
	"context"
	"fmt"
	"strings"

	apierrors "github.com/olgasafonova/nasa-ads-mcp-server/internal/errors"
)

// MCP tool wrapper methods.
// Each takes the tool's Args type and returns the rendered text result.

// SearchPapersMCP is the MCP wrapper for Search
func (c *Client) SearchPapersMCP(ctx context.Context, args SearchPapersArgs) (string, error) {
	if err := ValidateRequired("query", args.Query); err != nil {
		return "", err
	}
	rows := withDefault(args.Rows, DefaultSearchRows)
	if err := ValidateRows("rows", rows, MaxSearchRows); err != nil {
		return "", err
	}

	resp, err := c.Search(ctx, SearchQuery{
		Query:   args.Query,
		Author:  args.Author,
		Year:    args.Year,
		Bibcode: args.Bibcode,
		Fields:  ListFields,
		Sort:    withDefaultString(args.Sort, "date"),
		Rows:    rows,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Response.Docs) == 0 {
		return "No papers found for query: " + args.Query, nil
	}
	return FormatPaperList(resp.Response.Docs), nil
}

// GetPaperDetailsMCP is the MCP wrapper for a single-paper Search
func (c *Client) GetPaperDetailsMCP(ctx context.Context, args GetPaperDetailsArgs) (string, error) {
	if err := ValidateBibcode("bibcode", args.Bibcode); err != nil {
		return "", err
	}

	resp, err := c.Search(ctx, SearchQuery{
		Bibcode: args.Bibcode,
		Fields:  DetailFields,
		Rows:    1,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Response.Docs) == 0 {
		return "Paper not found: " + args.Bibcode, nil
	}
	return FormatPaperDetails(resp.Response.Docs[0]), nil
}

// GetAuthorPapersMCP is the MCP wrapper for an author Search
func (c *Client) GetAuthorPapersMCP(ctx context.Context, args GetAuthorPapersArgs) (string, error) {
	if err := ValidateRequired("author", args.Author); err != nil {
		return "", err
	}
	rows := withDefault(args.Rows, DefaultAuthorRows)
	if err := ValidateRows("rows", rows, MaxAuthorRows); err != nil {
		return "", err
	}
	sort := withDefaultString(args.Sort, "date")
	if sort != "date" && sort != "citation_count" {
		return "", apierrors.NewValidationError("sort", sort, "must be one of date, citation_count")
	}

	resp, err := c.Search(ctx, SearchQuery{
		Author: args.Author,
		Fields: ListFields,
		Sort:   sort,
		Rows:   rows,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Response.Docs) == 0 {
		return "No papers found for author: " + args.Author, nil
	}
	return FormatAuthorPapers(args.Author, resp.Response.Docs), nil
}

// GetPaperMetricsMCP is the MCP wrapper for Metrics
func (c *Client) GetPaperMetricsMCP(ctx context.Context, args GetPaperMetricsArgs) (string, error) {
	resp, err := c.Metrics(ctx, args.Bibcodes)
	if err != nil {
		return "", err
	}
	return FormatMetrics(fmt.Sprintf("Metrics for %d paper(s)", len(args.Bibcodes)), resp), nil
}

// GetAuthorMetricsMCP resolves an author's bibcodes with one search, then
// fetches metrics for them.
func (c *Client) GetAuthorMetricsMCP(ctx context.Context, args GetAuthorMetricsArgs) (string, error) {
	if err := ValidateRequired("author", args.Author); err != nil {
		return "", err
	}
	if args.Years != "" {
		if err := ValidateYearRange("years", args.Years); err != nil {
			return "", err
		}
	}

	found, err := c.Search(ctx, SearchQuery{
		Author: args.Author,
		Year:   args.Years,
		Fields: []string{"bibcode"},
		Rows:   AuthorMetricsRows,
	})
	if err != nil {
		return "", err
	}

	bibcodes := make([]string, 0, len(found.Response.Docs))
	for _, doc := range found.Response.Docs {
		if doc.Bibcode != "" {
			bibcodes = append(bibcodes, doc.Bibcode)
		}
	}
	if len(bibcodes) == 0 {
		return "No papers found for author: " + args.Author, nil
	}

	resp, err := c.Metrics(ctx, bibcodes)
	if err != nil {
		return "", err
	}

	heading := "Author metrics for " + args.Author
	if args.Years != "" {
		heading += " (" + args.Years + ")"
	}
	heading += fmt.Sprintf("\nPapers: %d", len(bibcodes))
	if found.Response.NumFound > len(bibcodes) {
		heading += fmt.Sprintf(" (first %d of %d matches)", len(bibcodes), found.Response.NumFound)
	}
	return FormatMetrics(heading, resp), nil
}

// ExportBibTeXMCP is the MCP wrapper for ExportBibTeX
func (c *Client) ExportBibTeXMCP(ctx context.Context, args ExportBibTeXArgs) (string, error) {
	resp, err := c.ExportBibTeX(ctx, args.Bibcodes)
	if err != nil {
		return "", err
	}
	return FormatBibTeX(resp.Export), nil
}

// ListLibrariesMCP is the MCP wrapper for ListLibraries
func (c *Client) ListLibrariesMCP(ctx context.Context, _ ListLibrariesArgs) (string, error) {
	resp, err := c.ListLibraries(ctx)
	if err != nil {
		return "", err
	}

	if len(resp.Libraries) == 0 {
		return "No libraries found.", nil
	}
	return fmt.Sprintf("Found %d libraries:\n\n%s", len(resp.Libraries), FormatLibraryList(resp.Libraries)), nil
}

// GetLibraryPapersMCP is the MCP wrapper for GetLibrary
func (c *Client) GetLibraryPapersMCP(ctx context.Context, args GetLibraryPapersArgs) (string, error) {
	rows := withDefault(args.Rows, DefaultLibraryRows)

	contents, err := c.GetLibrary(ctx, args.LibraryID, rows, ListFields)
	if err != nil {
		return "", err
	}

	papers := contents.Papers()
	if len(papers) == 0 {
		return "No papers in library " + args.LibraryID, nil
	}

	lib := contents.Library()
	name := lib.Name
	if name == "" {
		name = args.LibraryID
	}
	header := fmt.Sprintf("Papers in library %s (%d shown", name, len(papers))
	if lib.NumDocuments != nil && *lib.NumDocuments > len(papers) {
		header += fmt.Sprintf(" of %d", *lib.NumDocuments)
	}
	header += "):"
	return header + "\n\n" + FormatPaperList(papers), nil
}

// CreateLibraryMCP is the MCP wrapper for CreateLibrary
func (c *Client) CreateLibraryMCP(ctx context.Context, args CreateLibraryArgs) (string, error) {
	created, err := c.CreateLibrary(ctx, LibraryDraft{
		Name:        args.Name,
		Description: args.Description,
		Public:      args.Public,
		Bibcodes:    args.Bibcodes,
	})
	if err != nil {
		return "", err
	}

	name := withDefaultString(created.Name, args.Name)

	var b strings.Builder
	fmt.Fprintf(&b, "Created library %q\n", name)
	fmt.Fprintf(&b, "Library ID: %s\n", created.ID)
	if len(created.Bibcodes) > 0 {
		fmt.Fprintf(&b, "Papers: %d\n", len(created.Bibcodes))
	}
	b.WriteString("\nUse add_to_library with this ID to add papers.")
	return b.String(), nil
}

// AddToLibraryMCP is the MCP wrapper for AddToLibrary
func (c *Client) AddToLibraryMCP(ctx context.Context, args AddToLibraryArgs) (string, error) {
	update, err := c.AddToLibrary(ctx, args.LibraryID, args.Bibcodes)
	if err != nil {
		return "", err
	}

	msg := fmt.Sprintf("Added %d paper(s) to library %s", update.NumberAdded, args.LibraryID)
	if skipped := len(args.Bibcodes) - update.NumberAdded; skipped > 0 {
		msg += fmt.Sprintf(" (%d already present or not recognized)", skipped)
	}
	return msg, nil
}

func withDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func withDefaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
