package bgg

import (
	"strings"

	"golang.org/x/net/html"
)

// descriptionLimit bounds the stored description length in runes.
const descriptionLimit = 500

// normalizeDescription strips markup from a remote description, collapses
// whitespace, and truncates to a bounded length with an ellipsis.
func normalizeDescription(raw string) string {
	text := stripHTML(raw)
	fields := strings.Fields(text)
	text = strings.Join(fields, " ")

	runes := []rune(text)
	if len(runes) <= descriptionLimit {
		return text
	}
	return strings.TrimSpace(string(runes[:descriptionLimit])) + "…"
}

// stripHTML removes tags and <script>/<style> content, keeping visible text.
func stripHTML(raw string) string {
	if !strings.ContainsAny(raw, "<&") {
		return raw
	}

	tokenizer := html.NewTokenizer(strings.NewReader(raw))
	var buf strings.Builder
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return buf.String()
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "script" || tag == "style" {
				skipDepth++
			}
			if tag == "br" || tag == "p" {
				buf.WriteByte(' ')
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "script" || tag == "style" {
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if skipDepth == 0 {
				buf.WriteString(string(tokenizer.Text()))
				buf.WriteByte(' ')
			}
		}
	}
}
