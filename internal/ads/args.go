package ads

// Row limits per tool
const (
	DefaultSearchRows  = 10
	MaxSearchRows      = 50
	DefaultAuthorRows  = 20
	MaxAuthorRows      = 100
	DefaultLibraryRows = 100

	// AuthorMetricsRows bounds how many of an author's papers feed the metrics request
	AuthorMetricsRows = MaxRows
)

// SearchPapersArgs contains parameters for a paper search
type SearchPapersArgs struct {
	Query   string `json:"query"`
	Rows    int    `json:"rows,omitempty"`
	Sort    string `json:"sort,omitempty"`
	Author  string `json:"author,omitempty"`
	Year    string `json:"year,omitempty"`
	Bibcode string `json:"bibcode,omitempty"`
}

// GetPaperDetailsArgs contains parameters for a single paper lookup
type GetPaperDetailsArgs struct {
	Bibcode string `json:"bibcode"`
}

// GetAuthorPapersArgs contains parameters for listing an author's papers
type GetAuthorPapersArgs struct {
	Author string `json:"author"`
	Rows   int    `json:"rows,omitempty"`
	Sort   string `json:"sort,omitempty"`
}

// GetPaperMetricsArgs contains parameters for paper metrics
type GetPaperMetricsArgs struct {
	Bibcodes []string `json:"bibcodes"`
}

// GetAuthorMetricsArgs contains parameters for author metrics
type GetAuthorMetricsArgs struct {
	Author string `json:"author"`
	Years  string `json:"years,omitempty"`
}

// ExportBibTeXArgs contains parameters for a BibTeX export
type ExportBibTeXArgs struct {
	Bibcodes []string `json:"bibcodes"`
}

// ListLibrariesArgs takes no parameters
type ListLibrariesArgs struct{}

// GetLibraryPapersArgs contains parameters for listing a library's papers
type GetLibraryPapersArgs struct {
	LibraryID string `json:"library_id"`
	Rows      int    `json:"rows,omitempty"`
}

// CreateLibraryArgs contains parameters for creating a library
type CreateLibraryArgs struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Public      bool     `json:"public,omitempty"`
	Bibcodes    []string `json:"bibcodes,omitempty"`
}

// AddToLibraryArgs contains parameters for adding papers to a library
type AddToLibraryArgs struct {
	LibraryID string   `json:"library_id"`
	Bibcodes  []string `json:"bibcodes"`
}
