package crawler

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nmang004/rival-outranker-sub013/internal/domain"
)

var (
	phoneRe = regexp.MustCompile(`\(?\d{3}\)?[-.\s]\d{3}[-.\s]?\d{4}`)

	// Street address: number + name + a street suffix.
	addressRe = regexp.MustCompile(`(?i)\b\d{1,5}\s+[A-Za-z0-9.\s]{2,40}\b(?:street|st\.|avenue|ave\.?|boulevard|blvd\.?|drive|dr\.|lane|ln\.|road|rd\.|suite|ste\.?|parkway|pkwy\.?|court|ct\.)\b`)
)

// ExtractPageRecord parses HTML content into the page data contract the
// audit pipeline consumes.
func ExtractPageRecord(pageURL, htmlContent string) (domain.PageRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return domain.PageRecord{}, err
	}

	rec := domain.PageRecord{
		URL:      pageURL,
		Title:    strings.TrimSpace(doc.Find("title").First().Text()),
		Headings: make(map[string][]string),
		Meta: domain.PageMeta{
			OGTags:      make(map[string]string),
			TwitterTags: make(map[string]string),
		},
	}

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		property, _ := s.Attr("property")
		content, _ := s.Attr("content")
		if content == "" {
			return
		}
		switch {
		case strings.EqualFold(name, "description"):
			rec.Meta.Description = strings.TrimSpace(content)
		case strings.HasPrefix(strings.ToLower(property), "og:"):
			rec.Meta.OGTags[strings.ToLower(property)] = content
		case strings.HasPrefix(strings.ToLower(name), "twitter:"):
			rec.Meta.TwitterTags[strings.ToLower(name)] = content
		}
	})

	for _, level := range []string{"h1", "h2", "h3", "h4", "h5", "h6"} {
		doc.Find(level).Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				rec.Headings[level] = append(rec.Headings[level], text)
			}
		})
	}

	base, _ := url.Parse(pageURL)
	seen := map[string]bool{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") {
			return
		}
		if strings.HasPrefix(href, "tel:") {
			rec.HasPhoneNumber = true
			return
		}
		resolved := resolveLink(base, href)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		if sameHost(base, resolved) {
			rec.Links.Internal = append(rec.Links.Internal, resolved)
		} else {
			rec.Links.External = append(rec.Links.External, resolved)
		}
	})

	rec.SchemaTypes = extractSchemaTypes(doc)
	rec.HasSchema = len(rec.SchemaTypes) > 0

	doc.Find("form").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Find("input, textarea").Length() > 0 {
			rec.HasContactForm = true
			return false
		}
		return true
	})

	// Strip non-content nodes before pulling body text.
	doc.Find("script, style, noscript").Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})
	rec.BodyText = strings.Join(strings.Fields(doc.Find("body").Text()), " ")

	if phoneRe.MatchString(rec.BodyText) {
		rec.HasPhoneNumber = true
	}
	if addressRe.MatchString(rec.BodyText) {
		rec.HasAddress = true
	}

	return rec, nil
}

// extractSchemaTypes pulls @type values from JSON-LD blocks and
// itemtype attributes from microdata.
func extractSchemaTypes(doc *goquery.Document) []string {
	seen := map[string]bool{}
	var types []string
	add := func(t string) {
		t = strings.TrimSpace(t)
		// Microdata itemtype values are schema.org URLs.
		if i := strings.LastIndex(t, "/"); i >= 0 {
			t = t[i+1:]
		}
		if t == "" || seen[strings.ToLower(t)] {
			return
		}
		seen[strings.ToLower(t)] = true
		types = append(types, t)
	}

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var payload any
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			return
		}
		collectJSONLDTypes(payload, add)
	})
	doc.Find("[itemtype]").Each(func(_ int, s *goquery.Selection) {
		if t, ok := s.Attr("itemtype"); ok {
			add(t)
		}
	})
	return types
}

func collectJSONLDTypes(node any, add func(string)) {
	switch v := node.(type) {
	case map[string]any:
		switch t := v["@type"].(type) {
		case string:
			add(t)
		case []any:
			for _, e := range t {
				if s, ok := e.(string); ok {
					add(s)
				}
			}
		}
		// @graph and nested entities carry their own types.
		for _, child := range v {
			collectJSONLDTypes(child, add)
		}
	case []any:
		for _, e := range v {
			collectJSONLDTypes(e, add)
		}
	}
}

func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	ref.Fragment = ""
	return ref.String()
}

func sameHost(base *url.URL, link string) bool {
	if base == nil {
		return false
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), base.Hostname())
}
