package bgg

import (
	"encoding/xml"
	"log/slog"
	"math"
	"strconv"

	"github.com/openshelf/meeplesync/models"
)

// Wire types for the XML API. Repeatable children (names, links, version
// entries) are declared as slices so the decoder absorbs both the bare
// single-element and the repeated shape; every field accessor below iterates
// a list, never special-cases cardinality.

type attrValue struct {
	Value string `xml:"value,attr"`
}

type thingDoc struct {
	Items []thingItem `xml:"item"`
}

type thingItem struct {
	Type        string      `xml:"type,attr"`
	ID          string      `xml:"id,attr"`
	Thumbnail   string      `xml:"thumbnail"`
	Image       string      `xml:"image"`
	Names       []thingName `xml:"name"`
	Description string      `xml:"description"`
	Year        attrValue   `xml:"yearpublished"`
	MinPlayers  attrValue   `xml:"minplayers"`
	MaxPlayers  attrValue   `xml:"maxplayers"`
	MinPlaytime attrValue   `xml:"minplaytime"`
	MaxPlaytime attrValue   `xml:"maxplaytime"`
	MinAge      attrValue   `xml:"minage"`
	Links       []thingLink `xml:"link"`
	Versions    struct {
		Items []versionItem `xml:"item"`
	} `xml:"versions"`
	Statistics struct {
		Ratings struct {
			Average attrValue `xml:"average"`
		} `xml:"ratings"`
	} `xml:"statistics"`
}

type thingName struct {
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
}

type thingLink struct {
	Type    string `xml:"type,attr"`
	ID      string `xml:"id,attr"`
	Value   string `xml:"value,attr"`
	Inbound string `xml:"inbound,attr"`
}

type versionItem struct {
	Image     string `xml:"image"`
	Thumbnail string `xml:"thumbnail"`
}

const (
	linkCategory  = "boardgamecategory"
	linkMechanic  = "boardgamemechanic"
	linkExpansion = "boardgameexpansion"

	typeExpansion = "boardgameexpansion"
)

// parseThings normalizes a thing document into domain records. Malformed
// items are dropped and logged; the rest of the batch survives.
func parseThings(body []byte) []models.GameDetails {
	var doc thingDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		slog.Warn("thing document unparseable", "error", err)
		return nil
	}

	out := make([]models.GameDetails, 0, len(doc.Items))
	for _, item := range doc.Items {
		name := primaryName(item.Names)
		if item.ID == "" || name == "" {
			slog.Warn("dropping malformed thing item", "id", item.ID)
			continue
		}

		d := models.GameDetails{
			ID:            item.ID,
			Name:          name,
			YearPublished: yearPtr(item.Year.Value),
			Description:   normalizeDescription(item.Description),
			Image:         item.Image,
			Thumbnail:     item.Thumbnail,
			AverageRating: ratingPtr(item.Statistics.Ratings.Average.Value),
			MinPlayers:    intPtr(item.MinPlayers.Value),
			MaxPlayers:    intPtr(item.MaxPlayers.Value),
			MinPlaytime:   intPtr(item.MinPlaytime.Value),
			MaxPlaytime:   intPtr(item.MaxPlaytime.Value),
			MinAge:        intPtr(item.MinAge.Value),
			IsExpansion:   item.Type == typeExpansion,
		}

		for _, link := range item.Links {
			switch link.Type {
			case linkCategory:
				d.Categories = append(d.Categories, link.Value)
			case linkMechanic:
				d.Mechanics = append(d.Mechanics, link.Value)
			case linkExpansion:
				// The relationship record is directional: an inbound link
				// points from this item at its base game; an outbound link
				// points at one of this item's expansions.
				if link.Inbound == "true" {
					d.BaseGameIDs = append(d.BaseGameIDs, link.ID)
				} else {
					d.ExpansionIDs = append(d.ExpansionIDs, link.ID)
				}
			}
		}

		out = append(out, d)
	}
	return out
}

// parseVersionImages collects the canonical image followed by distinct
// version/edition images, capped at limit.
func parseVersionImages(body []byte, limit int) []string {
	var doc thingDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		slog.Warn("version document unparseable", "error", err)
		return nil
	}

	seen := make(map[string]bool)
	var urls []string
	add := func(u string) {
		if u == "" || seen[u] {
			return
		}
		if limit > 0 && len(urls) >= limit {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}

	for _, item := range doc.Items {
		add(item.Image)
		for _, v := range item.Versions.Items {
			add(v.Image)
		}
	}
	return urls
}

// Collection documents use element text instead of value attributes.

type collectionDoc struct {
	Items []collectionXMLItem `xml:"item"`
}

type collectionXMLItem struct {
	ObjectID string `xml:"objectid,attr"`
	Subtype  string `xml:"subtype,attr"`
	Name     string `xml:"name"`
	Year     string `xml:"yearpublished"`
}

func parseCollection(body []byte) []models.CollectionItem {
	var doc collectionDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		slog.Warn("collection document unparseable", "error", err)
		return nil
	}

	out := make([]models.CollectionItem, 0, len(doc.Items))
	for _, item := range doc.Items {
		if item.ObjectID == "" || item.Name == "" {
			slog.Warn("dropping malformed collection item", "id", item.ObjectID)
			continue
		}
		out = append(out, models.CollectionItem{
			ID:            item.ObjectID,
			Name:          item.Name,
			YearPublished: yearPtr(item.Year),
			IsExpansion:   item.Subtype == typeExpansion,
		})
	}
	return out
}

type searchDoc struct {
	Items []searchXMLItem `xml:"item"`
}

type searchXMLItem struct {
	Type string    `xml:"type,attr"`
	ID   string    `xml:"id,attr"`
	Name attrValue `xml:"name"`
	Year attrValue `xml:"yearpublished"`
}

func parseSearch(body []byte) []models.SearchResult {
	var doc searchDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		slog.Warn("search document unparseable", "error", err)
		return nil
	}

	out := make([]models.SearchResult, 0, len(doc.Items))
	for _, item := range doc.Items {
		if item.ID == "" || item.Name.Value == "" {
			continue
		}
		out = append(out, models.SearchResult{
			ID:            item.ID,
			Name:          item.Name.Value,
			YearPublished: yearPtr(item.Year.Value),
			IsExpansion:   item.Type == typeExpansion,
		})
	}
	return out
}

type hotDoc struct {
	Items []hotXMLItem `xml:"item"`
}

type hotXMLItem struct {
	ID        string    `xml:"id,attr"`
	Name      attrValue `xml:"name"`
	Year      attrValue `xml:"yearpublished"`
	Thumbnail attrValue `xml:"thumbnail"`
}

func parseHot(body []byte) []models.HotItem {
	var doc hotDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		slog.Warn("hot document unparseable", "error", err)
		return nil
	}

	out := make([]models.HotItem, 0, len(doc.Items))
	for _, item := range doc.Items {
		if item.ID == "" || item.Name.Value == "" {
			continue
		}
		out = append(out, models.HotItem{
			ID:            item.ID,
			Name:          item.Name.Value,
			YearPublished: yearPtr(item.Year.Value),
			Thumbnail:     item.Thumbnail.Value,
		})
	}
	return out
}

// primaryName picks the primary name entry, falling back to the first.
func primaryName(names []thingName) string {
	for _, n := range names {
		if n.Type == "primary" {
			return n.Value
		}
	}
	if len(names) > 0 {
		return names[0].Value
	}
	return ""
}

// intPtr parses a numeric field. Absent or non-numeric values are nil,
// never 0.
func intPtr(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// yearPtr is intPtr with the remote's "year 0 means unknown" convention
// normalized to nil.
func yearPtr(s string) *int {
	n := intPtr(s)
	if n == nil || *n == 0 {
		return nil
	}
	return n
}

// ratingPtr parses an average rating, rounded to one decimal. The remote
// reports 0 for unrated items; that is an absence sentinel, not a rating.
func ratingPtr(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f == 0 {
		return nil
	}
	rounded := math.Round(f*10) / 10
	return &rounded
}
