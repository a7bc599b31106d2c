// Package content normalizes message bodies between the plain-string and
// structured-parts representations used for multimodal chat.
package content

import (
	"encoding/json"
	"strings"
)

const (
	PartTypeText     = "text"
	PartTypeImageURL = "image_url"
	PartTypeFile     = "file"
)

// Part is one entry of a structured content array.
type Part struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageRef `json:"image_url,omitempty"`
	File     *FileRef  `json:"file,omitempty"`
}

type ImageRef struct {
	URL      string `json:"url"`
	MIMEType string `json:"mimetype,omitempty"`
}

type FileRef struct {
	URL  string `json:"url,omitempty"`
	Name string `json:"name,omitempty"`
}

// TextPart builds a text part.
func TextPart(text string) Part {
	return Part{Type: PartTypeText, Text: text}
}

// ImagePart builds an image part pointing at url.
func ImagePart(url string) Part {
	return Part{Type: PartTypeImageURL, ImageURL: &ImageRef{URL: url}}
}

// FlattenToText reduces raw content to plain text. A JSON string is returned
// as-is; an array keeps the text of its text parts, space-joined in order,
// dropping everything else. Malformed input degrades to "".
func FlattenToText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var parts []Part
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p.Type == PartTypeText {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, " ")
}

// ToMultimodal returns the content ready for display or resubmission. Arrays
// pass through unchanged. A blank string with a non-blank reasoning fallback
// (some providers put their answer in an out-of-band reasoning field) becomes
// the fallback; otherwise the string is returned unchanged.
func ToMultimodal(raw json.RawMessage, reasoning string) json.RawMessage {
	if len(raw) == 0 {
		return fallbackOrEmpty(reasoning)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.TrimSpace(s) == "" && strings.TrimSpace(reasoning) != "" {
			return mustMarshal(reasoning)
		}
		return raw
	}

	var parts []Part
	if err := json.Unmarshal(raw, &parts); err == nil {
		return raw
	}
	return fallbackOrEmpty(reasoning)
}

// MergeImagesIntoContent builds a parts array from plain text plus detected
// images: one text part when the text is non-blank, then each image in order.
func MergeImagesIntoContent(text string, images []Part) []Part {
	parts := make([]Part, 0, len(images)+1)
	if strings.TrimSpace(text) != "" {
		parts = append(parts, TextPart(text))
	}
	parts = append(parts, images...)
	return parts
}

// MarshalParts encodes a parts array as raw JSON.
func MarshalParts(parts []Part) json.RawMessage {
	b, err := json.Marshal(parts)
	if err != nil {
		return json.RawMessage(`[]`)
	}
	return b
}

func fallbackOrEmpty(reasoning string) json.RawMessage {
	if strings.TrimSpace(reasoning) != "" {
		return mustMarshal(reasoning)
	}
	return json.RawMessage(`""`)
}

func mustMarshal(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
