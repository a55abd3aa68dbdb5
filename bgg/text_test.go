package bgg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDescriptionCollapsesWhitespace(t *testing.T) {
	got := normalizeDescription("A   game\n\nof  cubes.")
	assert.Equal(t, "A game of cubes.", got)
}

func TestNormalizeDescriptionStripsMarkup(t *testing.T) {
	got := normalizeDescription("<p>First paragraph</p><p>Second paragraph</p>")
	assert.Equal(t, "First paragraph Second paragraph", got)

	got = normalizeDescription("Keep text<script>alert(1)</script> drop scripts")
	assert.NotContains(t, got, "alert")
	assert.Contains(t, got, "Keep text")
	assert.Contains(t, got, "drop scripts")
}

func TestNormalizeDescriptionTruncates(t *testing.T) {
	long := strings.Repeat("word ", 200)
	got := normalizeDescription(long)
	assert.LessOrEqual(t, len([]rune(got)), descriptionLimit+1)
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestNormalizeDescriptionPlainTextPassesThrough(t *testing.T) {
	assert.Equal(t, "No markup here.", normalizeDescription("No markup here."))
	assert.Equal(t, "", normalizeDescription(""))
}
