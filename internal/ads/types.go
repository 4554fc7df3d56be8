package ads

// Paper is a single ADS search document. Only the requested fields are
// populated; everything else is left at its zero value.
type Paper struct {
	Bibcode       string   `json:"bibcode"`
	Title         []string `json:"title,omitempty"`
	Author        []string `json:"author,omitempty"`
	Year          string   `json:"year,omitempty"`
	CitationCount *int     `json:"citation_count,omitempty"`
	ReadCount     *int     `json:"read_count,omitempty"`
	Pub           string   `json:"pub,omitempty"`
	PubDate       string   `json:"pubdate,omitempty"`
	DOI           []string `json:"doi,omitempty"`
	Keyword       []string `json:"keyword,omitempty"`
	Abstract      string   `json:"abstract,omitempty"`
}

// FirstTitle returns the primary title, or "" when ADS sent none.
func (p Paper) FirstTitle() string {
	if len(p.Title) == 0 {
		return ""
	}
	return p.Title[0]
}

// SearchResponse is the envelope returned by /search/query
type SearchResponse struct {
	ResponseHeader struct {
		Status int `json:"status"`
		QTime  int `json:"QTime"`
	} `json:"responseHeader"`
	Response struct {
		NumFound int     `json:"numFound"`
		Start    int     `json:"start"`
		Docs     []Paper `json:"docs"`
	} `json:"response"`
}

// Stats is one section of a metrics reply. ADS keys these by
// human-readable phrases such as "total number of citations".
// A nil value means ADS sent null.
type Stats map[string]*float64

// MetricsResponse is the reply from POST /metrics
type MetricsResponse struct {
	BasicStats            Stats    `json:"basic stats"`
	BasicStatsRefereed    Stats    `json:"basic stats refereed"`
	CitationStats         Stats    `json:"citation stats"`
	CitationStatsRefereed Stats    `json:"citation stats refereed"`
	Indicators            Stats    `json:"indicators"`
	IndicatorsRefereed    Stats    `json:"indicators refereed"`
	SkippedBibcodes       []string `json:"skipped bibcodes,omitempty"`
}

// Metric keys used by the formatter
const (
	StatTotalCitations      = "total number of citations"
	StatRefereedCitations   = "total number of refereed citations"
	StatSelfCitations       = "number of self-citations"
	StatAverageCitations    = "average number of citations"
	StatMedianCitations     = "median number of citations"
	StatNormalizedCitations = "normalized number of citations"
	StatTotalReads          = "total number of reads"
	StatAverageReads        = "average number of reads"
	StatMedianReads         = "median number of reads"
	StatNumberOfPapers      = "number of papers"

	IndicatorH    = "h"
	IndicatorG    = "g"
	IndicatorM    = "m"
	IndicatorI10  = "i10"
	IndicatorI100 = "i100"
	IndicatorTori = "tori"
	IndicatorRIQ  = "riq"
)

// Library is a biblib library as described by the list and metadata replies.
type Library struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	Owner            string `json:"owner,omitempty"`
	Public           *bool  `json:"public,omitempty"`
	NumDocuments     *int   `json:"num_documents,omitempty"`
	Permission       string `json:"permission,omitempty"`
	DateCreated      string `json:"date_created,omitempty"`
	DateLastModified string `json:"date_last_modified,omitempty"`

	// Bibcodes holds the member documents in library order. ADS sends them
	// beside the metadata, not inside it.
	Bibcodes []string `json:"-"`
}

// LibraryList is the reply from GET /biblib/libraries
type LibraryList struct {
	Libraries []Library `json:"libraries"`
}

// LibraryContents is the reply from GET /biblib/libraries/{id}. Besides the
// ordered bibcodes, ADS resolves the documents through Solr and returns the
// requested fields under "solr".
type LibraryContents struct {
	Documents []string `json:"documents"`
	Metadata  Library  `json:"metadata"`
	Solr      struct {
		Response struct {
			NumFound int     `json:"numFound"`
			Docs     []Paper `json:"docs"`
		} `json:"response"`
	} `json:"solr"`
}

// Library returns the metadata with the member bibcodes attached.
func (lc *LibraryContents) Library() Library {
	lib := lc.Metadata
	lib.Bibcodes = lc.Documents
	return lib
}

// Papers returns the resolved documents in library order. Members that Solr
// did not resolve are returned as bibcode-only records.
func (lc *LibraryContents) Papers() []Paper {
	byBibcode := make(map[string]Paper, len(lc.Solr.Response.Docs))
	for _, doc := range lc.Solr.Response.Docs {
		byBibcode[doc.Bibcode] = doc
	}
	if len(lc.Documents) == 0 {
		return lc.Solr.Response.Docs
	}

	papers := make([]Paper, 0, len(lc.Documents))
	for _, bibcode := range lc.Documents {
		if doc, ok := byBibcode[bibcode]; ok {
			papers = append(papers, doc)
			continue
		}
		papers = append(papers, Paper{Bibcode: bibcode})
	}
	return papers
}

// LibraryDraft describes a library to create
type LibraryDraft struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Public      bool     `json:"public"`
	Bibcodes    []string `json:"bibcode,omitempty"`
}

// CreatedLibrary is the reply from POST /biblib/libraries
type CreatedLibrary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Bibcodes    []string `json:"bibcode,omitempty"`
}

// DocumentsUpdate is the reply from POST /biblib/documents/{id}
type DocumentsUpdate struct {
	NumberAdded   int `json:"number_added"`
	NumberRemoved int `json:"number_removed"`
}

// ExportResponse is the reply from the /export endpoints
type ExportResponse struct {
	Msg    string `json:"msg"`
	Export string `json:"export"`
}
