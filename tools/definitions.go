package tools

// AllTools contains all tool specifications for the NASA ADS MCP server.
// Tools are organized by category for easier maintenance.
// Tool descriptions follow a structured format for optimal LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
var AllTools = []ToolSpec{
	// ==========================================================================
	// SEARCH TOOLS
	// ==========================================================================
	{
		Name:     "search_papers",
		Method:   "SearchPapers",
		Title:    "Search Papers",
		Category: "search",
		Description: `Search the NASA Astrophysics Data System for papers matching a query.

USE WHEN: User asks "find papers on X", "what has been published about X", "search ADS for X", or wants literature on a topic.

NOT FOR: Listing one author's publications (use get_author_papers). Full record of a known paper (use get_paper_details).

PARAMETERS:
- query: Search text in ADS syntax, e.g. "exoplanet atmospheres" or "title:\"dark energy\"" (required)
- rows: Max results, 1-50 (default 10)
- sort: date, citation_count or relevance (default date)
- author: Restrict to an author, "Last, F." form (optional)
- year: Year or range, YYYY or YYYY-YYYY (optional)
- bibcode: Restrict to a bibcode (optional)

RETURNS: Numbered list, one line per paper: title, year, first authors, citation count, bibcode.`,
		Params: []Param{
			{Name: "query", Type: TypeString, Required: true, Description: "Search query in ADS syntax"},
			{Name: "rows", Type: TypeInteger, Default: 10, Min: ptr(1), Max: ptr(50), Description: "Maximum number of results (1-50)"},
			{Name: "sort", Type: TypeString, Default: "date", Enum: []string{"date", "citation_count", "relevance"}, Description: "Sort order"},
			{Name: "author", Type: TypeString, Description: `Author filter, e.g. "Hubble, E."`},
			{Name: "year", Type: TypeString, Description: "Year (YYYY) or range (YYYY-YYYY)"},
			{Name: "bibcode", Type: TypeString, Description: "Bibcode filter"},
		},
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get_paper_details",
		Method:   "GetPaperDetails",
		Title:    "Get Paper Details",
		Category: "search",
		Description: `Get the full record of one paper by its ADS bibcode.

USE WHEN: User has a bibcode and asks "tell me about this paper", "show the abstract", "who wrote 2005A&A...443..735C".

NOT FOR: Finding papers by topic (use search_papers). Citation statistics (use get_paper_metrics).

PARAMETERS:
- bibcode: 19-character ADS bibcode (required)

RETURNS: Title, all authors, publication, date, year, citations, reads, DOI, keywords, bibcode and abstract.`,
		Params: []Param{
			{Name: "bibcode", Type: TypeString, Required: true, Description: "ADS bibcode, e.g. 2005A&A...443..735C"},
		},
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get_author_papers",
		Method:   "GetAuthorPapers",
		Title:    "Get Author Papers",
		Category: "search",
		Description: `List the papers of one author.

USE WHEN: User asks "what has X published", "list X's papers", "most cited papers by X".

NOT FOR: h-index or aggregate citation numbers (use get_author_metrics). Topic searches (use search_papers).

PARAMETERS:
- author: Author name, "Last, F." form works best (required)
- rows: Max results, 1-100 (default 20)
- sort: date or citation_count (default date)

RETURNS: Paper count and total citations, then a numbered list of papers.`,
		Params: []Param{
			{Name: "author", Type: TypeString, Required: true, Description: `Author name, e.g. "Coelho, P."`},
			{Name: "rows", Type: TypeInteger, Default: 20, Min: ptr(1), Max: ptr(100), Description: "Maximum number of papers (1-100)"},
			{Name: "sort", Type: TypeString, Default: "date", Enum: []string{"date", "citation_count"}, Description: "Sort order"},
		},
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// METRICS TOOLS
	// ==========================================================================
	{
		Name:     "get_paper_metrics",
		Method:   "GetPaperMetrics",
		Title:    "Get Paper Metrics",
		Category: "metrics",
		Description: `Get citation metrics for a set of papers.

USE WHEN: User asks "how many citations do these papers have", "h-index of this set", "metrics for 2019ApJ...878...98S".

NOT FOR: Metrics of everything an author wrote (use get_author_metrics).

PARAMETERS:
- bibcodes: List of ADS bibcodes (required)

RETURNS: Total and refereed citations, average/median/normalized citations, h/g/m/i10 indices, and reads.

NOTE: ADS read counts are unreliable and often reported as zero.`,
		Params: []Param{
			{Name: "bibcodes", Type: TypeStringArray, Required: true, Description: "ADS bibcodes"},
		},
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get_author_metrics",
		Method:   "GetAuthorMetrics",
		Title:    "Get Author Metrics",
		Category: "metrics",
		Description: `Get aggregate citation metrics for an author.

USE WHEN: User asks "what is X's h-index", "how often is X cited", "X's citation metrics since 2015".

NOT FOR: A list of the author's papers (use get_author_papers). Metrics for specific bibcodes (use get_paper_metrics).

PARAMETERS:
- author: Author name, "Last, F." form works best (required)
- years: Year or range, YYYY or YYYY-YYYY (optional)

RETURNS: Paper count, citation statistics, h/g/m/i10/i100/tori/riq indices, and reads.

NOTE: Common names match several people; add initials to narrow the match.`,
		Params: []Param{
			{Name: "author", Type: TypeString, Required: true, Description: `Author name, e.g. "Coelho, P."`},
			{Name: "years", Type: TypeString, Description: "Year (YYYY) or range (YYYY-YYYY)"},
		},
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// EXPORT TOOLS
	// ==========================================================================
	{
		Name:     "export_bibtex",
		Method:   "ExportBibTeX",
		Title:    "Export BibTeX",
		Category: "export",
		Description: `Export citations in BibTeX format.

USE WHEN: User asks "give me the BibTeX for", "cite these papers in LaTeX", "export references".

NOT FOR: Reading paper details (use get_paper_details).

PARAMETERS:
- bibcodes: List of ADS bibcodes (required)

RETURNS: BibTeX entries exactly as ADS exports them.`,
		Params: []Param{
			{Name: "bibcodes", Type: TypeStringArray, Required: true, Description: "ADS bibcodes to export"},
		},
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// LIBRARY TOOLS
	// ==========================================================================
	{
		Name:     "list_libraries",
		Method:   "ListLibraries",
		Title:    "List Libraries",
		Category: "libraries",
		Description: `List the user's ADS libraries.

USE WHEN: User asks "show my libraries", "what ADS libraries do I have", or needs a library id.

NOT FOR: Papers inside a library (use get_library_papers).

RETURNS: Name, id, paper count, visibility and description of each library.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get_library_papers",
		Method:   "GetLibraryPapers",
		Title:    "Get Library Papers",
		Category: "libraries",
		Description: `List the papers in one ADS library.

USE WHEN: User asks "what's in my Thesis library", "show papers in library abc123".

NOT FOR: Finding the library id (use list_libraries first).

PARAMETERS:
- library_id: Library id from list_libraries (required)
- rows: Max papers, 1-2000 (default 100)

RETURNS: Library name and a numbered list of its papers in library order.`,
		Params: []Param{
			{Name: "library_id", Type: TypeString, Required: true, Description: "ADS library id"},
			{Name: "rows", Type: TypeInteger, Default: 100, Min: ptr(1), Max: ptr(2000), Description: "Maximum number of papers (1-2000)"},
		},
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "create_library",
		Method:   "CreateLibrary",
		Title:    "Create Library",
		Category: "libraries",
		Description: `Create a new ADS library.

USE WHEN: User says "make a library called X", "start a reading list", "save these papers into a new library".

NOT FOR: Adding papers to an existing library (use add_to_library).

PARAMETERS:
- name: Library name (required)
- description: Short description (optional)
- public: Make the library public (default false)
- bibcodes: Initial papers (optional)

RETURNS: The new library's id, for use with add_to_library and get_library_papers.`,
		Params: []Param{
			{Name: "name", Type: TypeString, Required: true, Description: "Library name"},
			{Name: "description", Type: TypeString, Description: "Library description"},
			{Name: "public", Type: TypeBoolean, Default: false, Description: "Whether the library is public"},
			{Name: "bibcodes", Type: TypeStringArray, Description: "Bibcodes to seed the library with"},
		},
		OpenWorld: true,
	},
	{
		Name:     "add_to_library",
		Method:   "AddToLibrary",
		Title:    "Add to Library",
		Category: "libraries",
		Description: `Add papers to an existing ADS library.

USE WHEN: User says "add this paper to my Thesis library", "save these bibcodes to library abc123".

NOT FOR: Creating a library (use create_library).

PARAMETERS:
- library_id: Library id from list_libraries or create_library (required)
- bibcodes: Papers to add (required)

RETURNS: Number of papers added. Papers already in the library are not added twice.`,
		Params: []Param{
			{Name: "library_id", Type: TypeString, Required: true, Description: "ADS library id"},
			{Name: "bibcodes", Type: TypeStringArray, Required: true, Description: "Bibcodes to add"},
		},
		Idempotent: true,
		OpenWorld:  true,
	},
}
