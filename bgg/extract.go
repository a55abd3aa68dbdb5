package bgg

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/openshelf/meeplesync/models"
)

// Precompiled selectors for the rendered pages the fallback backend scrapes.
var (
	selCollectionRow  = cascadia.MustCompile("tr[id^=row_]")
	selObjectName     = cascadia.MustCompile("td.collection_objectname a")
	selObjectYear     = cascadia.MustCompile("td.collection_objectname span.smallerfont")
	selGalleryImage   = cascadia.MustCompile("a.gallery-item img, img[src*='geekdo-images']")
	selCanonicalImage = cascadia.MustCompile("meta[property='og:image']")
)

// extractCollection pulls the owned-collection listing out of a rendered
// collection page. Malformed rows are dropped and logged.
func extractCollection(html string) ([]models.CollectionItem, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var items []models.CollectionItem
	doc.FindMatcher(selCollectionRow).Each(func(_ int, row *goquery.Selection) {
		link := row.FindMatcher(selObjectName).First()
		href, _ := link.Attr("href")
		id, isExpansion := parseThingHref(href)
		name := strings.TrimSpace(link.Text())
		if id == "" || name == "" {
			slog.Warn("dropping malformed collection row", "href", href)
			return
		}

		item := models.CollectionItem{ID: id, Name: name, IsExpansion: isExpansion}
		if yearText := row.FindMatcher(selObjectYear).First().Text(); yearText != "" {
			item.YearPublished = yearPtr(strings.Trim(strings.TrimSpace(yearText), "()"))
		}
		items = append(items, item)
	})
	return items, nil
}

// extractGalleryImages collects distinct gallery image URLs, capped at limit.
func extractGalleryImages(html string, limit int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var urls []string
	doc.FindMatcher(selGalleryImage).EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, _ := img.Attr("src")
		if src == "" || seen[src] {
			return true
		}
		seen[src] = true
		urls = append(urls, src)
		return limit <= 0 || len(urls) < limit
	})
	return urls, nil
}

// extractCanonicalImage reads the page's og:image, the box art the front
// end itself considers canonical.
func extractCanonicalImage(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	content, _ := doc.FindMatcher(selCanonicalImage).First().Attr("content")
	return content
}

// parseThingHref extracts the numeric id from a thing link such as
// /boardgame/174430/gloomhaven or /boardgameexpansion/226868/....
func parseThingHref(href string) (id string, isExpansion bool) {
	parts := strings.Split(strings.TrimPrefix(href, "/"), "/")
	if len(parts) < 2 {
		return "", false
	}
	switch parts[0] {
	case "boardgame":
		return parts[1], false
	case typeExpansion:
		return parts[1], true
	}
	return "", false
}
