package ai

import (
	"encoding/json"
	"strings"

	"gopherchat/internal/content"
)

// Some provider families expect image parts in a different wire shape. The
// table keys on the model-id namespace prefix so adding a family is one
// entry, not another branch.
var providerTransforms = map[string]func([]ChatMessage) []ChatMessage{
	"google/": transformGoogleMessages,
}

// TransformMessages rewrites messages into the shape the target model's
// provider family expects. Models outside every known family keep the
// generic shape, with a best-effort mimetype filled in on image parts.
func TransformMessages(messages []ChatMessage, model string) []ChatMessage {
	for prefix, transform := range providerTransforms {
		if strings.HasPrefix(model, prefix) {
			return transform(messages)
		}
	}
	return transformGenericMessages(messages)
}

// googleImagePart is the camelCase shape the google family expects.
type googleImagePart struct {
	Type     string         `json:"type"`
	ImageURL googleImageRef `json:"imageUrl"`
}

type googleImageRef struct {
	URL      string `json:"url"`
	MIMEType string `json:"mimeType"`
}

func transformGoogleMessages(messages []ChatMessage) []ChatMessage {
	out := make([]ChatMessage, len(messages))
	for i, msg := range messages {
		out[i] = msg
		parts, ok := decodeParts(msg.Content)
		if !ok {
			continue
		}
		rewritten := make([]interface{}, 0, len(parts))
		for _, p := range parts {
			if p.Type == content.PartTypeImageURL && p.ImageURL != nil {
				rewritten = append(rewritten, googleImagePart{
					Type: content.PartTypeImageURL,
					ImageURL: googleImageRef{
						URL:      p.ImageURL.URL,
						MIMEType: SniffImageMIME(p.ImageURL.URL),
					},
				})
				continue
			}
			rewritten = append(rewritten, p)
		}
		if encoded, err := json.Marshal(rewritten); err == nil {
			out[i].Content = encoded
		}
	}
	return out
}

func transformGenericMessages(messages []ChatMessage) []ChatMessage {
	out := make([]ChatMessage, len(messages))
	for i, msg := range messages {
		out[i] = msg
		parts, ok := decodeParts(msg.Content)
		if !ok {
			continue
		}
		changed := false
		for j := range parts {
			if parts[j].Type == content.PartTypeImageURL && parts[j].ImageURL != nil && parts[j].ImageURL.MIMEType == "" {
				parts[j].ImageURL.MIMEType = SniffImageMIME(parts[j].ImageURL.URL)
				changed = true
			}
		}
		if !changed {
			continue
		}
		if encoded, err := json.Marshal(parts); err == nil {
			out[i].Content = encoded
		}
	}
	return out
}

// decodeParts reports whether raw is a structured parts array.
func decodeParts(raw json.RawMessage) ([]content.Part, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}
	var parts []content.Part
	if err := json.Unmarshal(raw, &parts); err != nil {
		return nil, false
	}
	return parts, true
}

var imageMIMEByExt = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".bmp":  "image/bmp",
}

// SniffImageMIME guesses the MIME type of an image URL: the declared type of
// a data: URL wins, then the file extension, then image/png.
func SniffImageMIME(url string) string {
	if strings.HasPrefix(url, "data:") {
		rest := strings.TrimPrefix(url, "data:")
		if idx := strings.IndexAny(rest, ";,"); idx > 0 {
			if declared := rest[:idx]; strings.Contains(declared, "/") {
				return declared
			}
		}
		return "image/png"
	}

	cleaned := url
	if idx := strings.IndexAny(cleaned, "?#"); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	if idx := strings.LastIndex(cleaned, "."); idx >= 0 {
		if mime, ok := imageMIMEByExt[strings.ToLower(cleaned[idx:])]; ok {
			return mime
		}
	}
	return "image/png"
}
