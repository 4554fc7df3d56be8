package ads

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	apierrors "github.com/olgasafonova/nasa-ads-mcp-server/internal/errors"
)

// MaxRows is the largest page ADS serves from search and biblib.
const MaxRows = 2000

var yearRangeRegex = regexp.MustCompile(`^(\d{4})(?:-(\d{4}))?$`)

// ValidateYearRange validates a year filter of the form YYYY or YYYY-YYYY.
// The start year must not be after the end year.
func ValidateYearRange(field, years string) error {
	m := yearRangeRegex.FindStringSubmatch(years)
	if m == nil {
		return apierrors.NewValidationError(field, years, "must be YYYY or YYYY-YYYY")
	}
	if m[2] == "" {
		return nil
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	if start > end {
		return apierrors.NewValidationError(field, years, fmt.Sprintf("start year %d is after end year %d", start, end))
	}
	return nil
}

// ValidateBibcode validates a single bibcode. ADS bibcodes never contain
// whitespace.
func ValidateBibcode(field, bibcode string) error {
	if strings.TrimSpace(bibcode) == "" {
		return apierrors.NewValidationError(field, "", "bibcode is required")
	}
	if strings.ContainsAny(bibcode, " \t\r\n") {
		return apierrors.NewValidationError(field, bibcode, "bibcode must not contain whitespace")
	}
	return nil
}

// ValidateBibcodes validates a non-empty list of bibcodes.
func ValidateBibcodes(field string, bibcodes []string) error {
	if len(bibcodes) == 0 {
		return apierrors.NewValidationError(field, "", "at least one bibcode is required")
	}
	for i, b := range bibcodes {
		if err := ValidateBibcode(fmt.Sprintf("%s[%d]", field, i), b); err != nil {
			return err
		}
	}
	return nil
}

// ValidateLibraryID validates a biblib library id.
func ValidateLibraryID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return apierrors.NewValidationError(field, "", "library id is required")
	}
	if strings.ContainsAny(id, "/?# ") {
		return apierrors.NewValidationError(field, id, "library id contains invalid characters")
	}
	return nil
}

// ValidateRows validates a row limit against an upper bound.
func ValidateRows(field string, rows, limit int) error {
	if rows < 1 || rows > limit {
		return apierrors.NewValidationError(field, strconv.Itoa(rows), fmt.Sprintf("must be between 1 and %d", limit))
	}
	return nil
}

// ValidateRequired rejects blank strings.
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apierrors.NewValidationError(field, "", "is required")
	}
	return nil
}
