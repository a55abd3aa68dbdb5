package bgg

import (
	"bytes"
	"encoding/json"
	"log/slog"
)

// asList normalizes the fallback wire format's inconsistent encoding of
// repeatable fields: a field holding zero or one children arrives as a bare
// object, two or more arrive as a list. Every repeatable field goes through
// this one function at the parse boundary; nothing downstream checks shape.
func asList(raw json.RawMessage) []json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			slog.Warn("unparseable list field", "error", err)
			return nil
		}
		return list
	}
	return []json.RawMessage{trimmed}
}

// decodeList applies asList and unmarshals each element, dropping malformed
// entries instead of failing the batch.
func decodeList[T any](raw json.RawMessage, what string) []T {
	elems := asList(raw)
	out := make([]T, 0, len(elems))
	for _, e := range elems {
		var v T
		if err := json.Unmarshal(e, &v); err != nil {
			slog.Warn("dropping malformed item", "field", what, "error", err)
			continue
		}
		out = append(out, v)
	}
	return out
}

// thumbnailSizes is the fixed preference order across the differently shaped
// thumbnail fields the two web endpoints produce.
var thumbnailSizes = []string{"square200", "square100", "previewthumb", "mediacard", "micro", "original"}

// pickThumbnail selects the canonical thumbnail size if present, else falls
// back through the remaining sizes in order. Entries may be a bare URL
// string or an object carrying a "src" key.
func pickThumbnail(images map[string]json.RawMessage) string {
	for _, size := range thumbnailSizes {
		raw, ok := images[size]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
		var obj struct {
			Src string `json:"src"`
		}
		if err := json.Unmarshal(raw, &obj); err == nil && obj.Src != "" {
			return obj.Src
		}
	}
	return ""
}
