package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractBioLinks_FindsURLsAndHandles(t *testing.T) {
	bio := "Mutual aid collective. Find us @blockassoc_mpls or at https://blockassoc.example/donate and https://instagram.com/blockassoc"
	exp := ExtractBioLinks(bio)

	assert.Contains(t, exp.Links, "https://blockassoc.example/donate")
	assert.Contains(t, exp.Links, "https://instagram.com/blockassoc")
	assert.Contains(t, exp.Handles, "blockassoc_mpls")
}

func TestExtractBioLinks_DedupsWithinBio(t *testing.T) {
	bio := "https://x.example/a https://x.example/a @same @same"
	exp := ExtractBioLinks(bio)
	assert.Len(t, exp.Links, 1)
	assert.Len(t, exp.Handles, 1)
}

func TestExtractBioLinks_EmptyBioYieldsNothing(t *testing.T) {
	exp := ExtractBioLinks("")
	assert.Empty(t, exp.Links)
	assert.Empty(t, exp.Handles)
}
