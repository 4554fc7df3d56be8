package ads

import (
	"fmt"
	"strconv"
	"strings"
)

// NA is rendered in place of any field ADS did not return
const NA = "N/A"

// maxListAuthors is how many authors a list line shows before "et al."
const maxListAuthors = 3

// FormatPaperList renders one numbered line per paper, in input order.
func FormatPaperList(papers []Paper) string {
	var b strings.Builder
	for i, p := range papers {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s (%s) — %s — citations: %s — bibcode: %s",
			i+1,
			orNA(oneLine(p.FirstTitle())),
			orNA(p.Year),
			formatAuthors(p.Author, maxListAuthors),
			intOrNA(p.CitationCount),
			orNA(p.Bibcode))
	}
	return b.String()
}

// FormatPaperDetails renders every known field of a paper, one per line.
func FormatPaperDetails(p Paper) string {
	lines := []string{
		"Title: " + orNA(p.FirstTitle()),
		"Authors: " + formatAuthors(p.Author, 0),
		"Publication: " + orNA(p.Pub),
		"Published: " + orNA(p.PubDate),
		"Year: " + orNA(p.Year),
		"Citations: " + intOrNA(p.CitationCount),
		"Reads: " + intOrNA(p.ReadCount),
		"DOI: " + firstOrNA(p.DOI),
		"Keywords: " + joinOrNA(p.Keyword, ", "),
		"Bibcode: " + orNA(p.Bibcode),
		"",
		"Abstract:",
		orNA(strings.TrimSpace(p.Abstract)),
	}
	return strings.Join(lines, "\n")
}

// FormatAuthorPapers renders an author's papers under a header carrying the
// total citation count of the listed papers.
func FormatAuthorPapers(author string, papers []Paper) string {
	total := 0
	for _, p := range papers {
		if p.CitationCount != nil {
			total += *p.CitationCount
		}
	}
	return fmt.Sprintf("Found %d papers by %q (total citations: %d):\n\n%s",
		len(papers), author, total, FormatPaperList(papers))
}

// FormatMetrics renders the citation statistics, indicators and reads of a
// metrics reply under heading. Reads are flagged: ADS frequently reports zero.
func FormatMetrics(heading string, m *MetricsResponse) string {
	if m == nil {
		m = &MetricsResponse{}
	}
	cs, ind, bs := m.CitationStats, m.Indicators, m.BasicStats

	var b strings.Builder
	if heading != "" {
		b.WriteString(heading)
		b.WriteString("\n\n")
	}

	b.WriteString("Citations:\n")
	fmt.Fprintf(&b, "  Total citations: %s\n", stat(cs, StatTotalCitations, 0))
	fmt.Fprintf(&b, "  Refereed citations: %s\n", stat(cs, StatRefereedCitations, 0))
	fmt.Fprintf(&b, "  Self-citations: %s\n", stat(cs, StatSelfCitations, 0))
	fmt.Fprintf(&b, "  Average citations per paper: %s\n", stat(cs, StatAverageCitations, 1))
	fmt.Fprintf(&b, "  Median citations: %s\n", stat(cs, StatMedianCitations, 1))
	fmt.Fprintf(&b, "  Normalized citations: %s\n", stat(cs, StatNormalizedCitations, 1))

	b.WriteString("\nIndicators:\n")
	fmt.Fprintf(&b, "  h-index: %s\n", stat(ind, IndicatorH, 0))
	fmt.Fprintf(&b, "  g-index: %s\n", stat(ind, IndicatorG, 0))
	fmt.Fprintf(&b, "  m-index: %s\n", stat(ind, IndicatorM, 2))
	fmt.Fprintf(&b, "  i10-index: %s\n", stat(ind, IndicatorI10, 0))
	fmt.Fprintf(&b, "  i100-index: %s\n", stat(ind, IndicatorI100, 0))
	fmt.Fprintf(&b, "  tori-index: %s\n", stat(ind, IndicatorTori, 1))
	fmt.Fprintf(&b, "  riq-index: %s\n", stat(ind, IndicatorRIQ, 0))

	b.WriteString("\nReads (unreliable, ADS may report zero):\n")
	fmt.Fprintf(&b, "  Total reads: %s\n", stat(bs, StatTotalReads, 0))
	fmt.Fprintf(&b, "  Average reads per paper: %s\n", stat(bs, StatAverageReads, 1))
	fmt.Fprintf(&b, "  Median reads: %s", stat(bs, StatMedianReads, 1))

	if len(m.SkippedBibcodes) > 0 {
		fmt.Fprintf(&b, "\n\nSkipped bibcodes: %s", strings.Join(m.SkippedBibcodes, ", "))
	}
	return b.String()
}

// FormatLibraryList renders each library's name, id, size, visibility and
// description.
func FormatLibraryList(libs []Library) string {
	var b strings.Builder
	for i, lib := range libs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. %s (ID: %s)\n", i+1, orNA(lib.Name), orNA(lib.ID))
		fmt.Fprintf(&b, "   Papers: %s | %s\n", intOrNA(lib.NumDocuments), visibility(lib.Public))
		fmt.Fprintf(&b, "   Description: %s", orNA(strings.TrimSpace(lib.Description)))
	}
	return b.String()
}

// FormatBibTeX returns export text exactly as ADS produced it. Multiple
// exports are separated by a blank line.
func FormatBibTeX(exports ...string) string {
	return strings.Join(exports, "\n\n")
}

func formatAuthors(authors []string, limit int) string {
	if len(authors) == 0 {
		return NA
	}
	if limit <= 0 || len(authors) <= limit {
		return strings.Join(authors, "; ")
	}
	return strings.Join(authors[:limit], "; ") + " et al."
}

func visibility(public *bool) string {
	if public == nil {
		return "visibility " + NA
	}
	if *public {
		return "Public"
	}
	return "Private"
}

// oneLine collapses embedded line breaks so a list entry stays on one line
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func orNA(s string) string {
	if s == "" {
		return NA
	}
	return s
}

func intOrNA(n *int) string {
	if n == nil {
		return NA
	}
	return strconv.Itoa(*n)
}

func firstOrNA(values []string) string {
	if len(values) == 0 {
		return NA
	}
	return orNA(values[0])
}

func joinOrNA(values []string, sep string) string {
	if len(values) == 0 {
		return NA
	}
	return strings.Join(values, sep)
}

// stat renders a metrics value with the given number of decimals
func stat(s Stats, key string, decimals int) string {
	v, ok := s[key]
	if !ok || v == nil {
		return NA
	}
	return strconv.FormatFloat(*v, 'f', decimals, 64)
}
