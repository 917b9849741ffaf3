package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeLink_StripsTrackingParamsAndFragment(t *testing.T) {
	canon, ok := CanonicalizeLink("https://civic.example/event?utm_source=fb&ref=abc&id=42#rsvp")
	assert.True(t, ok)
	assert.Equal(t, "https://civic.example/event?id=42", canon)
}

func TestCanonicalizeLink_DropsStaticAssets(t *testing.T) {
	_, ok := CanonicalizeLink("https://civic.example/logo.png")
	assert.False(t, ok)
}

func TestCanonicalizeLink_DropsAnalyticsDomains(t *testing.T) {
	_, ok := CanonicalizeLink("https://www.googletagmanager.com/gtm.js")
	assert.False(t, ok)
}

func TestCanonicalizeLink_DropsNonHTTPSchemes(t *testing.T) {
	_, ok := CanonicalizeLink("mailto:board@civic.example")
	assert.False(t, ok)
}

func TestCanonicalizeLink_NormalizesSocialProfileURLs(t *testing.T) {
	canon, ok := CanonicalizeLink("https://www.instagram.com/blockassoc/?hl=en")
	assert.True(t, ok)
	assert.Equal(t, "https://instagram.com/blockassoc", canon)
}

func TestCanonicalizeLink_RejectsNonProfileSocialPaths(t *testing.T) {
	_, ok := CanonicalizeLink("https://instagram.com/explore/tags/civic")
	assert.False(t, ok)
}

func TestCanonicalizeLink_RejectsMalformedURL(t *testing.T) {
	_, ok := CanonicalizeLink("not a url at all")
	assert.False(t, ok)
}

func TestCanonicalProfileURL_NormalizesTwitterToX(t *testing.T) {
	assert.Equal(t, "https://x.com/blockassoc", CanonicalProfileURL("twitter.com", "@blockassoc"))
}
