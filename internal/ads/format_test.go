package ads

import (
	"strings"
	"testing"
)

func intPtr(n int) *int { return &n }

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }

func TestFormatPaperList(t *testing.T) {
	papers := []Paper{
		{
			Bibcode:       "2005A&A...443..735C",
			Title:         []string{"Spectral models for solar-scaled and alpha-enhanced stellar populations"},
			Author:        []string{"Coelho, P.", "Bruzual, G.", "Charlot, S.", "Weiss, A."},
			Year:          "2005",
			CitationCount: intPtr(190),
		},
		{
			Bibcode:       "2019ApJ...878...98S",
			Title:         []string{"A short paper"},
			Author:        []string{"Smith, J."},
			Year:          "2019",
			CitationCount: intPtr(0),
		},
	}

	got := FormatPaperList(papers)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), got)
	}

	want0 := "1. Spectral models for solar-scaled and alpha-enhanced stellar populations (2005) — Coelho, P.; Bruzual, G.; Charlot, S. et al. — citations: 190 — bibcode: 2005A&A...443..735C"
	if lines[0] != want0 {
		t.Errorf("line 0 =\n%q\nwant\n%q", lines[0], want0)
	}
	want1 := "2. A short paper (2019) — Smith, J. — citations: 0 — bibcode: 2019ApJ...878...98S"
	if lines[1] != want1 {
		t.Errorf("line 1 =\n%q\nwant\n%q", lines[1], want1)
	}
}

func TestFormatPaperList_MissingFields(t *testing.T) {
	got := FormatPaperList([]Paper{{}})
	want := "1. N/A (N/A) — N/A — citations: N/A — bibcode: N/A"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormatPaperList_MultilineTitle(t *testing.T) {
	got := FormatPaperList([]Paper{{Bibcode: "X", Title: []string{"Broken\n  title"}}})
	if strings.Contains(got, "\n") {
		t.Errorf("list entry spans lines: %q", got)
	}
	if !strings.Contains(got, "Broken title") {
		t.Errorf("title not collapsed: %q", got)
	}
}

func TestFormatPaperList_Empty(t *testing.T) {
	if got := FormatPaperList(nil); got != "" {
		t.Errorf("got %q, want empty string", got)
	}
}

func TestFormatPaperDetails(t *testing.T) {
	p := Paper{
		Bibcode:       "2005A&A...443..735C",
		Title:         []string{"Spectral models"},
		Author:        []string{"Coelho, P.", "Bruzual, G.", "Charlot, S.", "Weiss, A."},
		Year:          "2005",
		CitationCount: intPtr(190),
		ReadCount:     intPtr(0),
		Pub:           "Astronomy and Astrophysics",
		PubDate:       "2005-12-00",
		DOI:           []string{"10.1051/0004-6361:20053511"},
		Keyword:       []string{"stars: atmospheres", "galaxies: stellar content"},
		Abstract:      "We present a library of synthetic spectra.",
	}

	got := FormatPaperDetails(p)
	for _, want := range []string{
		"Title: Spectral models",
		"Authors: Coelho, P.; Bruzual, G.; Charlot, S.; Weiss, A.",
		"Publication: Astronomy and Astrophysics",
		"Published: 2005-12-00",
		"Year: 2005",
		"Citations: 190",
		"Reads: 0",
		"DOI: 10.1051/0004-6361:20053511",
		"Keywords: stars: atmospheres, galaxies: stellar content",
		"Bibcode: 2005A&A...443..735C",
		"We present a library of synthetic spectra.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("details missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "et al.") {
		t.Error("details should list every author")
	}
}

func TestFormatPaperDetails_AllFieldsAbsent(t *testing.T) {
	got := FormatPaperDetails(Paper{})
	for _, label := range []string{"Title", "Authors", "Publication", "Published", "Year", "Citations", "Reads", "DOI", "Keywords", "Bibcode"} {
		if !strings.Contains(got, label+": N/A") {
			t.Errorf("missing %q:\n%s", label+": N/A", got)
		}
	}
	if !strings.HasSuffix(got, "Abstract:\nN/A") {
		t.Errorf("abstract should render N/A:\n%s", got)
	}
}

func TestFormatAuthorPapers(t *testing.T) {
	papers := []Paper{
		{Bibcode: "A", Title: []string{"One"}, Year: "2020", CitationCount: intPtr(10)},
		{Bibcode: "B", Title: []string{"Two"}, Year: "2021"},
		{Bibcode: "C", Title: []string{"Three"}, Year: "2022", CitationCount: intPtr(5)},
	}

	got := FormatAuthorPapers("Coelho, P.", papers)
	if !strings.HasPrefix(got, `Found 3 papers by "Coelho, P." (total citations: 15):`) {
		t.Errorf("unexpected header:\n%s", got)
	}
	if !strings.HasSuffix(got, FormatPaperList(papers)) {
		t.Errorf("paper list missing:\n%s", got)
	}
}

func TestFormatMetrics(t *testing.T) {
	m := &MetricsResponse{
		BasicStats: Stats{
			StatTotalReads:   floatPtr(0),
			StatAverageReads: floatPtr(0),
			StatMedianReads:  floatPtr(0),
		},
		CitationStats: Stats{
			StatTotalCitations:      floatPtr(1234),
			StatRefereedCitations:   floatPtr(1100),
			StatSelfCitations:       floatPtr(12),
			StatAverageCitations:    floatPtr(41.1333),
			StatMedianCitations:     floatPtr(20),
			StatNormalizedCitations: floatPtr(305.31),
		},
		Indicators: Stats{
			IndicatorH:    floatPtr(18),
			IndicatorG:    floatPtr(35),
			IndicatorM:    floatPtr(0.9),
			IndicatorI10:  floatPtr(25),
			IndicatorI100: floatPtr(3),
			IndicatorTori: floatPtr(60.44),
			IndicatorRIQ:  floatPtr(210),
		},
	}

	got := FormatMetrics("Metrics for 30 paper(s)", m)
	for _, want := range []string{
		"Metrics for 30 paper(s)",
		"Total citations: 1234",
		"Refereed citations: 1100",
		"Self-citations: 12",
		"Average citations per paper: 41.1",
		"Median citations: 20.0",
		"Normalized citations: 305.3",
		"h-index: 18",
		"g-index: 35",
		"m-index: 0.90",
		"i10-index: 25",
		"i100-index: 3",
		"tori-index: 60.4",
		"riq-index: 210",
		"Reads (unreliable, ADS may report zero):",
		"Total reads: 0",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("metrics missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Skipped") {
		t.Error("no skipped bibcodes expected")
	}
}

func TestFormatMetrics_Absent(t *testing.T) {
	for name, m := range map[string]*MetricsResponse{
		"nil response":   nil,
		"empty sections": {},
		"null values":    {CitationStats: Stats{StatTotalCitations: nil}, Indicators: Stats{IndicatorH: nil}},
	} {
		t.Run(name, func(t *testing.T) {
			got := FormatMetrics("", m)
			for _, want := range []string{"Total citations: N/A", "h-index: N/A", "Total reads: N/A"} {
				if !strings.Contains(got, want) {
					t.Errorf("missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestFormatMetrics_Skipped(t *testing.T) {
	got := FormatMetrics("", &MetricsResponse{SkippedBibcodes: []string{"bad1", "bad2"}})
	if !strings.HasSuffix(got, "Skipped bibcodes: bad1, bad2") {
		t.Errorf("unexpected output:\n%s", got)
	}
}

func TestFormatLibraryList(t *testing.T) {
	libs := []Library{
		{ID: "abc", Name: "Thesis", Description: "Chapter 2 refs", NumDocuments: intPtr(42), Public: boolPtr(false)},
		{ID: "def", Name: "Shared", NumDocuments: intPtr(3), Public: boolPtr(true)},
		{},
	}

	got := FormatLibraryList(libs)
	for _, want := range []string{
		"1. Thesis (ID: abc)",
		"Papers: 42 | Private",
		"Description: Chapter 2 refs",
		"2. Shared (ID: def)",
		"Papers: 3 | Public",
		"Description: N/A",
		"3. N/A (ID: N/A)",
		"Papers: N/A | visibility N/A",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("library list missing %q:\n%s", want, got)
		}
	}
}

func TestFormatBibTeX(t *testing.T) {
	entry := "@ARTICLE{2005A&A...443..735C,\n   author = {{Coelho}, P.},\n}\n\n"

	if got := FormatBibTeX(entry); got != entry {
		t.Errorf("single export modified:\n%q\nwant\n%q", got, entry)
	}

	joined := FormatBibTeX("@A{1}", "@B{2}")
	if joined != "@A{1}\n\n@B{2}" {
		t.Errorf("joined = %q", joined)
	}
}
