package audit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nmang004/rival-outranker-sub013/internal/domain"
)

var testSite = domain.SiteContext{Domain: "example.com", RootURL: "https://example.com"}

func TestClassify_RuleOrder(t *testing.T) {
	c := NewClassifier(zap.NewNop())

	testCases := []struct {
		name string
		page domain.PageRecord
		want domain.PageRole
	}{
		{
			name: "location veto beats service token in same segment",
			page: domain.PageRecord{URL: "https://example.com/hvac-repair/austin-tx"},
			want: domain.RoleLocation,
		},
		{
			name: "location slug alone",
			page: domain.PageRecord{URL: "https://example.com/dallas-tx"},
			want: domain.RoleLocation,
		},
		{
			name: "service area directory with location slug",
			page: domain.PageRecord{URL: "https://example.com/service-area/round-rock-tx"},
			want: domain.RoleServiceArea,
		},
		{
			name: "service directory first segment",
			page: domain.PageRecord{URL: "https://example.com/services/duct-cleaning"},
			want: domain.RoleService,
		},
		{
			name: "service token in path",
			page: domain.PageRecord{URL: "https://example.com/furnace-installation"},
			want: domain.RoleService,
		},
		{
			name: "service token under locations dir does not fire",
			page: domain.PageRecord{URL: "https://example.com/cities-served/overview"},
			want: domain.RoleGeneric,
		},
		{
			name: "title service pattern",
			page: domain.PageRecord{
				URL:   "https://example.com/page-1",
				Title: "Expert Furnace Repair You Can Trust",
			},
			want: domain.RoleService,
		},
		{
			name: "title service pattern suppressed by title location",
			page: domain.PageRecord{
				URL:   "https://example.com/page-2",
				Title: "Furnace Repair in Austin, TX",
			},
			want: domain.RoleGeneric,
		},
		{
			name: "serving phrase with service term in body",
			page: domain.PageRecord{
				URL:      "https://example.com/page-3",
				BodyText: "Proudly serving the region with fast furnace repair since 1998.",
			},
			want: domain.RoleLocation,
		},
		{
			name: "service area phrase with service term in body",
			page: domain.PageRecord{
				URL:      "https://example.com/page-4",
				BodyText: "Our service area covers every suburb. We handle all hvac needs.",
			},
			want: domain.RoleServiceArea,
		},
		{
			name: "faq heading",
			page: domain.PageRecord{
				URL:      "https://example.com/page-5",
				Headings: map[string][]string{"h2": {"Frequently Asked Questions"}},
			},
			want: domain.RoleService,
		},
		{
			name: "service schema type",
			page: domain.PageRecord{
				URL:         "https://example.com/page-6",
				HasSchema:   true,
				SchemaTypes: []string{"Service"},
			},
			want: domain.RoleService,
		},
		{
			name: "pricing pattern without title location",
			page: domain.PageRecord{
				URL:      "https://example.com/page-7",
				Title:    "Transparent Flat-Rate Work",
				BodyText: "Jobs starting at $89 with no hidden fees.",
			},
			want: domain.RoleService,
		},
		{
			name: "benefit pattern with service term",
			page: domain.PageRecord{
				URL:      "https://example.com/page-8",
				BodyText: "The benefits of regular duct maintenance are substantial.",
			},
			want: domain.RoleService,
		},
		{
			name: "contact signal before heading fallback",
			page: domain.PageRecord{
				URL:            "https://example.com/get-in-touch",
				HasContactForm: true,
			},
			want: domain.RoleContact,
		},
		{
			name: "heading fallback",
			page: domain.PageRecord{
				URL:      "https://example.com/page-9",
				Headings: map[string][]string{"h2": {"Water Heater Replacement"}},
			},
			want: domain.RoleService,
		},
		{
			name: "heading with location indicator excluded from fallback",
			page: domain.PageRecord{
				URL:      "https://example.com/page-10",
				Headings: map[string][]string{"h2": {"HVAC Repair Near Me"}},
			},
			want: domain.RoleGeneric,
		},
		{
			name: "default generic",
			page: domain.PageRecord{URL: "https://example.com/about-us", Title: "About Us"},
			want: domain.RoleGeneric,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			role, err := c.Classify(tc.page, testSite)
			require.NoError(t, err)
			assert.Equal(t, tc.want, role)
		})
	}
}

func TestClassify_Idempotent(t *testing.T) {
	c := NewClassifier(zap.NewNop())
	page := domain.PageRecord{
		URL:      "https://example.com/services/ac-repair",
		Title:    "AC Repair",
		BodyText: "Fast air conditioning repair, starting at $59.",
	}

	first, err := c.Classify(page, testSite)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := c.Classify(page, testSite)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestClassify_Coverage(t *testing.T) {
	c := NewClassifier(zap.NewNop())
	valid := map[domain.PageRole]bool{
		domain.RoleService:     true,
		domain.RoleLocation:    true,
		domain.RoleServiceArea: true,
		domain.RoleContact:     true,
		domain.RoleGeneric:     true,
	}

	// A spread of synthesized records; every one must land on exactly
	// one role from the closed set.
	var pages []domain.PageRecord
	paths := []string{"", "services", "hvac-repair", "austin-tx", "service-area/plano-tx", "blog/post-1", "contact"}
	titles := []string{"", "Furnace Repair", "Serving Austin, TX", "Our Story"}
	bodies := []string{"", "starting at $99", "proudly serving the metro with plumbing", "nothing notable here"}
	for i, p := range paths {
		for j, ti := range titles {
			for k, b := range bodies {
				pages = append(pages, domain.PageRecord{
					URL:            fmt.Sprintf("https://example.com/%s?v=%d%d%d", p, i, j, k),
					Title:          ti,
					BodyText:       b,
					HasContactForm: p == "contact",
				})
			}
		}
	}

	for _, page := range pages {
		role, err := c.Classify(page, testSite)
		require.NoError(t, err, "url %s", page.URL)
		assert.True(t, valid[role], "url %s produced role %q", page.URL, role)
	}
}

func TestClassify_MalformedRecord(t *testing.T) {
	c := NewClassifier(zap.NewNop())

	_, err := c.Classify(domain.PageRecord{}, testSite)
	require.Error(t, err)
	var classErr *domain.ClassificationError
	assert.ErrorAs(t, err, &classErr)
}

func TestContainsLocationIndicator(t *testing.T) {
	testCases := []struct {
		in   string
		want bool
	}{
		{"austin-tx", true},
		{"fort-worth-texas", true},
		{"Plumbing in Austin, TX", true},
		{"hvac repair near me", true},
		{"hvac-repair", false},
		{"about-me", false}, // "me" collides with Maine and must not fire
		{"", false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, containsLocationIndicator(tc.in), "input %q", tc.in)
	}
}
