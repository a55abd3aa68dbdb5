package bgg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gloomhavenXML = `
<items>
  <item type="boardgame" id="174430">
    <thumbnail>https://cf.example/thumb.jpg</thumbnail>
    <image>https://cf.example/full.jpg</image>
    <name type="primary" sortindex="1" value="Gloomhaven"/>
    <name type="alternate" sortindex="1" value="Homokha&#x301;tsa&#x301;g"/>
    <description>Vanquish monsters &amp; loot dungeons.</description>
    <yearpublished value="2017"/>
    <minplayers value="1"/>
    <maxplayers value="4"/>
    <minplaytime value="60"/>
    <maxplaytime value="120"/>
    <minage value="14"/>
    <link type="boardgamecategory" id="1022" value="Adventure"/>
    <link type="boardgamecategory" id="1010" value="Fantasy"/>
    <link type="boardgamemechanic" id="2001" value="Action Queue"/>
    <link type="boardgameexpansion" id="225244" value="Gloomhaven: Forgotten Circles"/>
    <statistics page="1">
      <ratings>
        <average value="8.64321"/>
      </ratings>
    </statistics>
  </item>
</items>`

func TestParseThingsNormalizesFields(t *testing.T) {
	details := parseThings([]byte(gloomhavenXML))
	require.Len(t, details, 1)
	d := details[0]

	assert.Equal(t, "174430", d.ID)
	assert.Equal(t, "Gloomhaven", d.Name)
	require.NotNil(t, d.YearPublished)
	assert.Equal(t, 2017, *d.YearPublished)
	assert.Equal(t, "Vanquish monsters & loot dungeons.", d.Description)
	assert.Equal(t, []string{"Adventure", "Fantasy"}, d.Categories)
	assert.Equal(t, []string{"Action Queue"}, d.Mechanics)
	assert.Equal(t, []string{"225244"}, d.ExpansionIDs)
	assert.Empty(t, d.BaseGameIDs)
	assert.False(t, d.IsExpansion)

	require.NotNil(t, d.AverageRating)
	assert.Equal(t, 8.6, *d.AverageRating)
	require.NotNil(t, d.MinPlayers)
	assert.Equal(t, 1, *d.MinPlayers)
}

func TestParseThingsExpansionLinksAreDirectional(t *testing.T) {
	body := `
<items>
  <item type="boardgameexpansion" id="225244">
    <name type="primary" value="Gloomhaven: Forgotten Circles"/>
    <link type="boardgameexpansion" id="174430" inbound="true" value="Gloomhaven"/>
  </item>
</items>`
	details := parseThings([]byte(body))
	require.Len(t, details, 1)
	d := details[0]

	assert.True(t, d.IsExpansion)
	assert.Equal(t, []string{"174430"}, d.BaseGameIDs)
	assert.Empty(t, d.ExpansionIDs)
}

func TestParseThingsYearZeroMeansUnknown(t *testing.T) {
	body := `
<items>
  <item type="boardgame" id="1">
    <name type="primary" value="Undated"/>
    <yearpublished value="0"/>
  </item>
</items>`
	details := parseThings([]byte(body))
	require.Len(t, details, 1)
	assert.Nil(t, details[0].YearPublished)
}

func TestParseThingsDropsMalformedItems(t *testing.T) {
	body := `
<items>
  <item type="boardgame" id=""><name type="primary" value="No ID"/></item>
  <item type="boardgame" id="2"></item>
  <item type="boardgame" id="3"><name type="primary" value="Survivor"/></item>
</items>`
	details := parseThings([]byte(body))
	require.Len(t, details, 1)
	assert.Equal(t, "3", details[0].ID)
}

func TestParseThingsUnparseableDocument(t *testing.T) {
	assert.Nil(t, parseThings([]byte("not xml at all <<<")))
}

func TestParseVersionImagesDedupesAndCaps(t *testing.T) {
	body := `
<items>
  <item type="boardgame" id="1">
    <image>https://cf.example/canonical.jpg</image>
    <name type="primary" value="Game"/>
    <versions>
      <item><image>https://cf.example/v1.jpg</image></item>
      <item><image>https://cf.example/canonical.jpg</image></item>
      <item><image>https://cf.example/v2.jpg</image></item>
      <item><image>https://cf.example/v3.jpg</image></item>
    </versions>
  </item>
</items>`
	urls := parseVersionImages([]byte(body), 3)
	assert.Equal(t, []string{
		"https://cf.example/canonical.jpg",
		"https://cf.example/v1.jpg",
		"https://cf.example/v2.jpg",
	}, urls)
}

func TestParseCollection(t *testing.T) {
	body := `
<items totalitems="2">
  <item objectid="174430" subtype="boardgame">
    <name sortindex="1">Gloomhaven</name>
    <yearpublished>2017</yearpublished>
  </item>
  <item objectid="225244" subtype="boardgameexpansion">
    <name>Gloomhaven: Forgotten Circles</name>
    <yearpublished>0</yearpublished>
  </item>
</items>`
	items := parseCollection([]byte(body))
	require.Len(t, items, 2)

	assert.Equal(t, "174430", items[0].ID)
	assert.Equal(t, "Gloomhaven", items[0].Name)
	require.NotNil(t, items[0].YearPublished)
	assert.Equal(t, 2017, *items[0].YearPublished)
	assert.False(t, items[0].IsExpansion)

	assert.True(t, items[1].IsExpansion)
	assert.Nil(t, items[1].YearPublished)
}

func TestParseSearch(t *testing.T) {
	body := `
<items total="2">
  <item type="boardgame" id="13"><name type="primary" value="Catan"/><yearpublished value="1995"/></item>
  <item type="boardgameexpansion" id="926"><name type="primary" value="Catan: Seafarers"/></item>
</items>`
	results := parseSearch([]byte(body))
	require.Len(t, results, 2)
	assert.Equal(t, "Catan", results[0].Name)
	assert.False(t, results[0].IsExpansion)
	assert.True(t, results[1].IsExpansion)
}

func TestParseHot(t *testing.T) {
	body := `
<items>
  <item id="342942" rank="1">
    <thumbnail value="https://cf.example/ark.jpg"/>
    <name value="Ark Nova"/>
    <yearpublished value="2021"/>
  </item>
</items>`
	items := parseHot([]byte(body))
	require.Len(t, items, 1)
	assert.Equal(t, "Ark Nova", items[0].Name)
	assert.Equal(t, "https://cf.example/ark.jpg", items[0].Thumbnail)
}

func TestPrimaryNameFallsBackToFirst(t *testing.T) {
	assert.Equal(t, "Alt", primaryName([]thingName{{Type: "alternate", Value: "Alt"}}))
	assert.Equal(t, "", primaryName(nil))
}

func TestRatingPtr(t *testing.T) {
	r := ratingPtr("8.64321")
	require.NotNil(t, r)
	assert.Equal(t, 8.6, *r)

	assert.Nil(t, ratingPtr("0"))
	assert.Nil(t, ratingPtr(""))
	assert.Nil(t, ratingPtr("n/a"))
}
