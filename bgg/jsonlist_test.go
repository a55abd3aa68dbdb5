package bgg

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsListAbsorbsBothShapes(t *testing.T) {
	// Zero or one child arrives as a bare object.
	single := asList(json.RawMessage(`{"name":"Adventure"}`))
	require.Len(t, single, 1)

	// Two or more arrive as a list.
	many := asList(json.RawMessage(`[{"name":"Adventure"},{"name":"Fantasy"}]`))
	require.Len(t, many, 2)

	assert.Nil(t, asList(nil))
	assert.Nil(t, asList(json.RawMessage(`null`)))
	assert.Nil(t, asList(json.RawMessage(`  `)))
}

func TestDecodeListDropsMalformedEntries(t *testing.T) {
	type link struct {
		Name string `json:"name"`
	}
	raw := json.RawMessage(`[{"name":"Adventure"},"not an object",{"name":"Fantasy"}]`)
	links := decodeList[link](raw, "links")
	require.Len(t, links, 2)
	assert.Equal(t, "Adventure", links[0].Name)
	assert.Equal(t, "Fantasy", links[1].Name)
}

func TestPickThumbnailPreferenceOrder(t *testing.T) {
	images := map[string]json.RawMessage{
		"micro":     json.RawMessage(`"https://cf.example/micro.jpg"`),
		"square200": json.RawMessage(`"https://cf.example/sq200.jpg"`),
	}
	assert.Equal(t, "https://cf.example/sq200.jpg", pickThumbnail(images))

	delete(images, "square200")
	assert.Equal(t, "https://cf.example/micro.jpg", pickThumbnail(images))
}

func TestPickThumbnailObjectShape(t *testing.T) {
	images := map[string]json.RawMessage{
		"square200": json.RawMessage(`{"src":"https://cf.example/obj.jpg"}`),
	}
	assert.Equal(t, "https://cf.example/obj.jpg", pickThumbnail(images))

	assert.Equal(t, "", pickThumbnail(nil))
	assert.Equal(t, "", pickThumbnail(map[string]json.RawMessage{"unknown": json.RawMessage(`"x"`)}))
}
