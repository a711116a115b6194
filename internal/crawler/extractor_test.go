package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureHTML = `<!DOCTYPE html>
<html>
<head>
	<title> Acme Heating | Furnace Repair in Austin </title>
	<meta name="description" content="Same-day furnace repair across the Austin metro.">
	<meta property="og:title" content="Acme Heating">
	<meta name="twitter:card" content="summary">
	<script type="application/ld+json">
	{
		"@context": "https://schema.org",
		"@graph": [
			{"@type": "LocalBusiness", "name": "Acme Heating"},
			{"@type": ["Service", "Offer"]}
		]
	}
	</script>
</head>
<body>
	<h1>Furnace Repair</h1>
	<h2>Why Choose Acme</h2>
	<h2>Our Process</h2>
	<nav>
		<a href="/services/">Services</a>
		<a href="/contact#form">Contact</a>
		<a href="/services/">Services again</a>
		<a href="https://maps.example.org/acme">Map</a>
		<a href="mailto:info@acme.test">Email</a>
		<a href="tel:+15125550134">Call us</a>
		<a href="javascript:void(0)">Menu</a>
	</nav>
	<div itemscope itemtype="https://schema.org/BreadcrumbList"></div>
	<form action="/contact"><input name="email"><textarea name="msg"></textarea></form>
	<p>Visit us at 1200 Congress Avenue, Suite 4.</p>
	<script>console.log("tracking beacon")</script>
	<style>.x{color:red}</style>
</body>
</html>`

func TestExtractPageRecord(t *testing.T) {
	rec, err := ExtractPageRecord("https://acme.test/furnace-repair", fixtureHTML)
	require.NoError(t, err)

	assert.Equal(t, "Acme Heating | Furnace Repair in Austin", rec.Title)
	assert.Equal(t, "Same-day furnace repair across the Austin metro.", rec.Meta.Description)
	assert.Equal(t, "Acme Heating", rec.Meta.OGTags["og:title"])
	assert.Equal(t, "summary", rec.Meta.TwitterTags["twitter:card"])

	assert.Equal(t, []string{"Furnace Repair"}, rec.Headings["h1"])
	assert.Equal(t, []string{"Why Choose Acme", "Our Process"}, rec.Headings["h2"])

	// Duplicate hrefs collapse, fragments drop, non-http schemes are
	// skipped, and hosts split internal from external.
	assert.Equal(t, []string{
		"https://acme.test/services/",
		"https://acme.test/contact",
	}, rec.Links.Internal)
	assert.Equal(t, []string{"https://maps.example.org/acme"}, rec.Links.External)

	assert.True(t, rec.HasSchema)
	assert.ElementsMatch(t, []string{"LocalBusiness", "Service", "Offer", "BreadcrumbList"}, rec.SchemaTypes)

	assert.True(t, rec.HasContactForm)
	assert.True(t, rec.HasPhoneNumber, "tel: link counts as a visible phone number")
	assert.True(t, rec.HasAddress)

	assert.Contains(t, rec.BodyText, "1200 Congress Avenue")
	assert.NotContains(t, rec.BodyText, "tracking beacon", "script content must not leak into body text")
	assert.NotContains(t, rec.BodyText, "color:red")
}

func TestExtractPageRecord_Minimal(t *testing.T) {
	rec, err := ExtractPageRecord("https://acme.test", "<html><body><p>hello</p></body></html>")
	require.NoError(t, err)

	assert.Empty(t, rec.Title)
	assert.Empty(t, rec.Meta.Description)
	assert.False(t, rec.HasSchema)
	assert.False(t, rec.HasContactForm)
	assert.False(t, rec.HasPhoneNumber)
	assert.Empty(t, rec.Links.Internal)
	assert.Equal(t, "hello", rec.BodyText)
}

func TestExtractPageRecord_PhoneInBodyText(t *testing.T) {
	rec, err := ExtractPageRecord("https://acme.test",
		"<html><body><p>Call (512) 555-0134 today.</p></body></html>")
	require.NoError(t, err)
	assert.True(t, rec.HasPhoneNumber)
}

func TestExtractPageRecord_MalformedJSONLDIgnored(t *testing.T) {
	rec, err := ExtractPageRecord("https://acme.test",
		`<html><head><script type="application/ld+json">{not json</script></head><body></body></html>`)
	require.NoError(t, err)
	assert.False(t, rec.HasSchema)
}
