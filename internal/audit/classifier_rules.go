package audit

import (
	"regexp"
	"strings"
)

// Pattern tables for page-role classification. Kept as data so each
// signal can be unit-tested in isolation and tuned without touching the
// decision order in classifier.go.

// serviceDirectoryTerms are first path segments that mark a service
// directory page.
var serviceDirectoryTerms = map[string]bool{
	"services":     true,
	"service":      true,
	"products":     true,
	"solutions":    true,
	"offerings":    true,
	"what-we-do":   true,
	"capabilities": true,
}

// locationsDirTerms are path segments under which pages enumerate the
// places a business serves. Service tokens under these paths do not make
// a page a service page.
var locationsDirTerms = map[string]bool{
	"service-area":   true,
	"service-areas":  true,
	"cities-served":  true,
	"areas-served":   true,
	"areas-we-serve": true,
	"locations":      true,
	"cities":         true,
}

// serviceTokens are domain-specific service terms recognized in URL
// slugs, headings, and body text.
var serviceTokens = []string{
	"hvac", "heating", "cooling", "furnace", "air-conditioning",
	"air conditioning", "ac-repair", "plumbing", "electrical", "roofing",
	"appliance", "water-heater", "water heater", "duct", "drain",
	"repair", "installation", "install", "maintenance", "replacement",
	"tune-up", "tuneup", "inspection", "remodeling", "cleaning",
}

// usStateCodes feeds the slug location detector ("austin-tx"). Codes
// that collide with common English words (me, in, or, hi, ok, la, ...)
// are excluded; those states are still caught by the full-name list.
var usStateCodes = []string{
	"ak", "az", "ct", "dc", "fl", "ga", "il", "ks", "ky", "mn",
	"nc", "nd", "ne", "nh", "nj", "nm", "nv", "ny", "ri", "sc",
	"sd", "tn", "tx", "vt", "wi", "wv", "wy",
}

// usStateNames are full state names usable as slug suffixes.
var usStateNames = []string{
	"alabama", "alaska", "arizona", "arkansas", "california", "colorado",
	"connecticut", "delaware", "florida", "georgia", "hawaii", "idaho",
	"illinois", "indiana", "iowa", "kansas", "kentucky", "louisiana",
	"maine", "maryland", "massachusetts", "michigan", "minnesota",
	"mississippi", "missouri", "montana", "nebraska", "nevada",
	"new-hampshire", "new-jersey", "new-mexico", "new-york",
	"north-carolina", "north-dakota", "ohio", "oklahoma", "oregon",
	"pennsylvania", "rhode-island", "south-carolina", "south-dakota",
	"tennessee", "texas", "utah", "vermont", "virginia", "washington",
	"west-virginia", "wisconsin", "wyoming",
}

// slugLocationRe matches city-state URL slugs such as "austin-tx" or
// "fort-worth-texas".
var slugLocationRe = regexp.MustCompile(
	`(?i)(?:^|[/-])[a-z]+(?:-[a-z]+)*-(?:` +
		strings.Join(usStateCodes, "|") + `|` + strings.Join(usStateNames, "|") +
		`)(?:$|[/-])`)

// cityStateRe matches "Austin, TX" style location mentions in titles.
var cityStateRe = regexp.MustCompile(`\b[A-Z][a-z]+(?: [A-Z][a-z]+)?, ?[A-Z]{2}\b`)

// regionWordRe matches generic region vocabulary used in titles and
// headings.
var regionWordRe = regexp.MustCompile(`(?i)\b(?:near me|county|metro(?:plex)?|greater [a-z]+)\b`)

// titleServicePatterns pair a service-category noun with an action noun
// in either order.
var titleServicePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:hvac|heating|cooling|furnace|air condition\w*|ac|plumbing|electrical|roof\w*|appliance|water heater|drain|duct)\b[^.]*\b(?:repair|installation|replacement|maintenance|service|tune-?up|cleaning|inspection)s?\b`),
	regexp.MustCompile(`(?i)\b(?:repair|installation|replacement|maintenance|tune-?up|cleaning|inspection)s?\b[^.]*\b(?:hvac|heating|cooling|furnace|air condition\w*|ac|plumbing|electrical|roof\w*|appliance|water heater|drain|duct)\b`),
}

// Body-content signal patterns.
var (
	servingRe           = regexp.MustCompile(`(?i)\b(?:proudly )?serving\b`)
	serviceAreaPhraseRe = regexp.MustCompile(`(?i)\bservice areas?\b|\bareas? we serve\b|\bcities (?:we )?served?\b`)
	throughoutRe        = regexp.MustCompile(`(?i)\bthroughout (?:the )?[a-z]+`)
	faqHeadingRe        = regexp.MustCompile(`(?i)\bfrequently asked questions\b|\bfaqs?\b`)
	processHeadingRe    = regexp.MustCompile(`(?i)\bhow it works\b|\bour process\b|\bwhat to expect\b`)
	teamHeadingRe       = regexp.MustCompile(`(?i)\bmeet (?:the|our) team\b|\bour (?:team|staff|technicians)\b`)
	pricingRe           = regexp.MustCompile(`\$\d+|(?i:\bstarting at\b|\bfree (?:consultation|estimate|quote)s?\b)`)
	benefitRe           = regexp.MustCompile(`(?i)\bbenefits? of\b|\badvantages? of\b|\bwhy choose\b`)
)

// serviceSchemaTypes are structured-data types that mark a service page.
var serviceSchemaTypes = map[string]bool{
	"service": true,
	"product": true,
	"offer":   true,
	"faqpage": true,
}

// containsLocationIndicator reports whether s carries a city/region
// token: a city-state slug, a "City, ST" mention, or region vocabulary.
func containsLocationIndicator(s string) bool {
	if s == "" {
		return false
	}
	return slugLocationRe.MatchString(s) ||
		cityStateRe.MatchString(s) ||
		regionWordRe.MatchString(s)
}

// containsServiceToken reports whether s mentions a known service term.
func containsServiceToken(s string) bool {
	lower := strings.ToLower(s)
	for _, tok := range serviceTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// hasServiceSchemaType reports whether any declared schema type marks a
// service page.
func hasServiceSchemaType(types []string) bool {
	for _, t := range types {
		if serviceSchemaTypes[strings.ToLower(strings.TrimSpace(t))] {
			return true
		}
	}
	return false
}
