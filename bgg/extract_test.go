package bgg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const collectionHTML = `
<html><body><table>
  <tr id="row_174430">
    <td class="collection_objectname">
      <a href="/boardgame/174430/gloomhaven">Gloomhaven</a>
      <span class="smallerfont">(2017)</span>
    </td>
  </tr>
  <tr id="row_226868">
    <td class="collection_objectname">
      <a href="/boardgameexpansion/226868/charterstone-recharge-pack">Charterstone: Recharge Pack</a>
    </td>
  </tr>
  <tr id="row_999">
    <td class="collection_objectname">
      <a href="/geekmarket/listing/999">Not a game link</a>
    </td>
  </tr>
</table></body></html>`

func TestExtractCollection(t *testing.T) {
	items, err := extractCollection(collectionHTML)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "174430", items[0].ID)
	assert.Equal(t, "Gloomhaven", items[0].Name)
	require.NotNil(t, items[0].YearPublished)
	assert.Equal(t, 2017, *items[0].YearPublished)
	assert.False(t, items[0].IsExpansion)

	assert.Equal(t, "226868", items[1].ID)
	assert.True(t, items[1].IsExpansion)
	assert.Nil(t, items[1].YearPublished)
}

func TestExtractGalleryImagesCapsAndDedupes(t *testing.T) {
	html := `
<html><body>
  <a class="gallery-item"><img src="https://cf.geekdo-images.com/a.jpg"></a>
  <a class="gallery-item"><img src="https://cf.geekdo-images.com/a.jpg"></a>
  <a class="gallery-item"><img src="https://cf.geekdo-images.com/b.jpg"></a>
  <a class="gallery-item"><img src="https://cf.geekdo-images.com/c.jpg"></a>
</body></html>`
	urls, err := extractGalleryImages(html, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://cf.geekdo-images.com/a.jpg",
		"https://cf.geekdo-images.com/b.jpg",
	}, urls)
}

func TestExtractCanonicalImage(t *testing.T) {
	html := `<html><head><meta property="og:image" content="https://cf.geekdo-images.com/box.jpg"></head></html>`
	assert.Equal(t, "https://cf.geekdo-images.com/box.jpg", extractCanonicalImage(html))
	assert.Equal(t, "", extractCanonicalImage("<html></html>"))
}

func TestParseThingHref(t *testing.T) {
	id, exp := parseThingHref("/boardgame/174430/gloomhaven")
	assert.Equal(t, "174430", id)
	assert.False(t, exp)

	id, exp = parseThingHref("/boardgameexpansion/226868/whatever")
	assert.Equal(t, "226868", id)
	assert.True(t, exp)

	id, _ = parseThingHref("/geekmarket/listing/1")
	assert.Equal(t, "", id)

	id, _ = parseThingHref("")
	assert.Equal(t, "", id)
}
