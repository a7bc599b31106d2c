package content

import (
	"encoding/json"
	"strings"
)

// DetectImages scans a raw assistant message for the shapes different
// providers use to return generated images and normalizes every hit to a
// generic image_url part. Detection is best-effort pattern matching: an
// unrecognized shape yields no parts, never an error.
func DetectImages(message json.RawMessage) []Part {
	if len(message) == 0 {
		return nil
	}

	var msg struct {
		Content    json.RawMessage   `json:"content"`
		Images     []json.RawMessage `json:"images"`
		ImageURL   json.RawMessage   `json:"image_url"`
		Parts      []json.RawMessage `json:"parts"`
		InlineData *inlineData       `json:"inlineData"`
	}
	if err := json.Unmarshal(message, &msg); err != nil {
		return nil
	}

	var found []Part

	var contentParts []json.RawMessage
	if err := json.Unmarshal(msg.Content, &contentParts); err == nil {
		for _, entry := range contentParts {
			found = appendDetected(found, entry)
		}
	}
	for _, entry := range msg.Images {
		found = appendDetected(found, entry)
	}
	if len(msg.ImageURL) > 0 {
		found = appendDetected(found, msg.ImageURL)
	}
	for _, entry := range msg.Parts {
		found = appendDetected(found, entry)
	}
	if msg.InlineData != nil {
		if url := msg.InlineData.dataURL(); url != "" {
			found = append(found, ImagePart(url))
		}
	}
	return found
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

func (d *inlineData) dataURL() string {
	if d == nil || strings.TrimSpace(d.Data) == "" {
		return ""
	}
	return ensureDataURL(d.Data, d.MIMEType)
}

// appendDetected tries every known per-entry image shape against raw and
// appends a normalized part on the first match.
func appendDetected(parts []Part, raw json.RawMessage) []Part {
	// Plain URL string (top-level images / image_url lists).
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return parts
		}
		return append(parts, ImagePart(ensureDataURL(s, "")))
	}

	var entry struct {
		Type       string      `json:"type"`
		ImageURL   *ImageRef   `json:"image_url"`
		Image      *ImageRef   `json:"image"`
		URL        string      `json:"url"`
		B64JSON    string      `json:"b64_json"`
		Data       string      `json:"data"`
		InlineData *inlineData `json:"inlineData"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return parts
	}

	switch {
	case entry.Type == PartTypeImageURL && entry.ImageURL != nil && entry.ImageURL.URL != "":
		return append(parts, ImagePart(ensureDataURL(entry.ImageURL.URL, entry.ImageURL.MIMEType)))
	case entry.Type == "image" && entry.Image != nil && entry.Image.URL != "":
		return append(parts, ImagePart(ensureDataURL(entry.Image.URL, entry.Image.MIMEType)))
	case entry.B64JSON != "":
		return append(parts, ImagePart(ensureDataURL(entry.B64JSON, "")))
	case entry.InlineData != nil:
		if url := entry.InlineData.dataURL(); url != "" {
			return append(parts, ImagePart(url))
		}
	case entry.Type == "image" && entry.URL != "":
		return append(parts, ImagePart(ensureDataURL(entry.URL, "")))
	case entry.Type == "image" && entry.Data != "":
		return append(parts, ImagePart(ensureDataURL(entry.Data, "")))
	}
	return parts
}

// ensureDataURL prefixes raw base64 with a data: scheme; values that already
// carry a scheme pass through.
func ensureDataURL(value, mimeType string) string {
	if strings.HasPrefix(value, "data:") ||
		strings.HasPrefix(value, "http://") ||
		strings.HasPrefix(value, "https://") {
		return value
	}
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + value
}
