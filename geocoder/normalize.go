package geocoder

import (
	"regexp"
	"strings"
)

const (
	stationToken = "station"
	atToken      = "at"
)

var (
	// Station name variants, including the truncated "statio" seen in
	// column-limited exports. Word-boundary matched; an attached trailing
	// dot is consumed with the abbreviation.
	stationAbbrevRe = regexp.MustCompile(`\b(?:stn|sta|statio)\b\.?`)
	streetAbbrevRe  = regexp.MustCompile(`\b(?:st|ave|rd|blvd|dr)\b\.?`)
	connectorRe     = regexp.MustCompile(`\s+(?:at|and|&|/)\s+`)
	punctRe         = regexp.MustCompile(`[^\w\s]`)
	spaceRe         = regexp.MustCompile(`\s+`)
)

var streetAbbrevs = map[string]string{
	"st":   "street",
	"ave":  "avenue",
	"rd":   "road",
	"blvd": "boulevard",
	"dr":   "drive",
}

// stopWords are tokens too common to carry meaning in partial matching.
var stopWords = map[string]struct{}{
	"at":      {},
	"and":     {},
	"the":     {},
	"station": {},
	"st":      {},
	"ave":     {},
	"rd":      {},
}

// Normalize canonicalizes a raw location string into the comparable token
// form every index key and query share. Deterministic and idempotent; steps
// run in order, each feeding the next: lower-case, trim, expand station and
// street-type abbreviations, collapse intersection connectors to "at", strip
// punctuation, collapse whitespace. Always returns a string, possibly empty.
func Normalize(raw string) string {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return ""
	}
	text = stationAbbrevRe.ReplaceAllString(text, stationToken)
	text = streetAbbrevRe.ReplaceAllStringFunc(text, func(m string) string {
		return streetAbbrevs[strings.TrimSuffix(m, ".")]
	})
	text = connectorRe.ReplaceAllString(text, " at ")
	text = punctRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// meaningfulTokens returns the distinct non-stop-word tokens of a normalized
// string, preserving first-seen order.
func meaningfulTokens(normalized string) []string {
	fields := strings.Fields(normalized)
	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, tok := range fields {
		if _, skip := stopWords[tok]; skip {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
