package preprocess

import (
	"regexp"
	"strings"
)

// An Extractor pulls date-like substrings out of a playlist name and says
// whether the name reads like a social dance set.
type Extractor func(name string) (dates []string, social bool)

var (
	dateRegexp = regexp.MustCompile(`(?i)` +
		`\b\d{4}-\d{1,2}-\d{1,2}\b` +
		`|\b\d{1,2}[/.]\d{1,2}[/.]\d{2,4}\b` +
		`|\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+\d{4}\b` +
		`|\b(?:19|20)\d{2}\b`)

	socialRegexp = regexp.MustCompile(`(?i)\b(?:social|party|dance|late night|event|weekend|set)s?\b`)
)

// DefaultExtractor matches ISO dates, numeric dates, month-year and bare
// years, and a short list of social keywords.
func DefaultExtractor(name string) ([]string, bool) {
	dates := dateRegexp.FindAllString(name, -1)
	return dates, len(dates) > 0 || socialRegexp.MatchString(name)
}

// SplitLocation splits "City, Region, Country" into the last segment as
// the country and the rest as the region.
func SplitLocation(location string) (country, region string) {
	var parts []string
	for _, p := range strings.Split(location, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "", ""
	}
	return parts[len(parts)-1], strings.Join(parts[:len(parts)-1], ", ")
}
