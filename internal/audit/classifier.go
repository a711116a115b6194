package audit

import (
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/nmang004/rival-outranker-sub013/internal/domain"
)

// Classifier assigns a functional role to each crawled page using an
// ordered list of heuristic rules. The first rule that matches wins, so
// rule order is part of the contract: the location-indicator veto runs
// first, URL-structure rules before title rules, title rules before
// content rules, and the heading fallback last. Classification is pure
// and deterministic; the same PageRecord always yields the same role.
type Classifier struct {
	logger *zap.Logger
}

func NewClassifier(logger *zap.Logger) *Classifier {
	return &Classifier{logger: logger}
}

// Classify derives the role of one page. It returns a
// ClassificationError only for malformed records (no URL); every
// well-formed record maps to exactly one role.
func (c *Classifier) Classify(page domain.PageRecord, site domain.SiteContext) (domain.PageRole, error) {
	if page.URL == "" {
		return "", &domain.ClassificationError{URL: page.URL, Reason: "missing url"}
	}
	parsed, err := url.Parse(page.URL)
	if err != nil {
		return "", &domain.ClassificationError{URL: page.URL, Reason: "unparseable url"}
	}
	segments := splitPath(parsed.Path)

	// Rule 1: location indicators in the path veto every service-term
	// match. A segment carrying both a service token and a location
	// token ("hvac-repair/austin-tx") is a location page, not a service
	// page. Under a service-area directory the page is a service-area
	// page instead.
	if pathHasLocationIndicator(segments) {
		if underLocationsDir(segments) {
			return domain.RoleServiceArea, nil
		}
		return domain.RoleLocation, nil
	}

	// Rule 2: service-directory structural match on the first segment.
	if len(segments) > 0 && serviceDirectoryTerms[segments[0]] {
		return domain.RoleService, nil
	}

	// Rule 3: specific service token anywhere in the path, as long as
	// the page does not live under a locations directory.
	if !underLocationsDir(segments) {
		for _, seg := range segments {
			if containsServiceToken(seg) {
				return domain.RoleService, nil
			}
		}
	}

	// Rule 4: service noun x action noun in the title, unless the title
	// itself carries a location indicator.
	if !containsLocationIndicator(page.Title) {
		for _, re := range titleServicePatterns {
			if re.MatchString(page.Title) {
				return domain.RoleService, nil
			}
		}
	}

	// Rule 5: content signals.
	if role, ok := c.classifyByContent(page); ok {
		return role, nil
	}

	// Contact pages are otherwise indistinguishable from generic pages,
	// so the explicit contact signal is checked before the heading
	// fallback.
	if page.HasContactForm || page.HasPhoneNumber || page.HasAddress {
		return domain.RoleContact, nil
	}

	// Rule 6: heading-term fallback over h1-h3, skipping headings that
	// carry a location indicator.
	for _, level := range []string{"h1", "h2", "h3"} {
		for _, h := range page.Headings[level] {
			if containsLocationIndicator(h) {
				continue
			}
			if containsServiceToken(h) {
				return domain.RoleService, nil
			}
		}
	}

	return domain.RoleGeneric, nil
}

// classifyByContent evaluates the body-text, heading, and schema
// signals of rule 5. Location phrases win over the
// independently-sufficient service signals.
func (c *Classifier) classifyByContent(page domain.PageRecord) (domain.PageRole, bool) {
	bodyHasService := containsServiceToken(page.BodyText)

	// Location phrases co-occurring with a service term decide first:
	// "service area" style phrasing marks a service-area page, plain
	// "serving"/"throughout" marks a location page.
	if bodyHasService {
		if serviceAreaPhraseRe.MatchString(page.BodyText) {
			return domain.RoleServiceArea, true
		}
		if servingRe.MatchString(page.BodyText) || throughoutRe.MatchString(page.BodyText) {
			return domain.RoleLocation, true
		}
	}

	// Each of the remaining signals is independently sufficient for a
	// service classification.
	for _, hs := range page.Headings {
		for _, h := range hs {
			if faqHeadingRe.MatchString(h) || processHeadingRe.MatchString(h) || teamHeadingRe.MatchString(h) {
				return domain.RoleService, true
			}
		}
	}
	if hasServiceSchemaType(page.SchemaTypes) {
		return domain.RoleService, true
	}
	if pricingRe.MatchString(page.BodyText) && !containsLocationIndicator(page.Title) {
		return domain.RoleService, true
	}
	if benefitRe.MatchString(page.BodyText) && bodyHasService {
		return domain.RoleService, true
	}

	return "", false
}

// splitPath breaks a URL path into lowercase segments.
func splitPath(p string) []string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}

func pathHasLocationIndicator(segments []string) bool {
	for _, seg := range segments {
		if containsLocationIndicator(seg) {
			return true
		}
	}
	return false
}

func underLocationsDir(segments []string) bool {
	for _, seg := range segments {
		if locationsDirTerms[seg] {
			return true
		}
	}
	return false
}
