package content

import (
	"encoding/json"
	"testing"
)

func TestDetectImages(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    []string
	}{
		{
			name:    "content array image_url part",
			message: `{"content":[{"type":"text","text":"here"},{"type":"image_url","image_url":{"url":"https://cdn/x.png"}}]}`,
			want:    []string{"https://cdn/x.png"},
		},
		{
			name:    "content array b64_json",
			message: `{"content":[{"b64_json":"aGVsbG8="}]}`,
			want:    []string{"data:image/png;base64,aGVsbG8="},
		},
		{
			name:    "top-level images list of URL strings",
			message: `{"content":"done","images":["https://cdn/a.png","https://cdn/b.png"]}`,
			want:    []string{"https://cdn/a.png", "https://cdn/b.png"},
		},
		{
			name:    "gemini inlineData on the message",
			message: `{"inlineData":{"mimeType":"image/jpeg","data":"abc123"}}`,
			want:    []string{"data:image/jpeg;base64,abc123"},
		},
		{
			name:    "parts array with inlineData entry",
			message: `{"parts":[{"inlineData":{"mimeType":"image/webp","data":"xyz"}}]}`,
			want:    []string{"data:image/webp;base64,xyz"},
		},
		{
			name:    "plain text message has no images",
			message: `{"content":"just words"}`,
			want:    nil,
		},
		{
			name:    "unrecognized shape yields nothing",
			message: `{"content":[{"type":"tool_result","value":42}]}`,
			want:    nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectImages(json.RawMessage(tc.message))
			if len(got) != len(tc.want) {
				t.Fatalf("DetectImages returned %d parts, want %d: %+v", len(got), len(tc.want), got)
			}
			for i, part := range got {
				if part.Type != PartTypeImageURL {
					t.Errorf("part %d type = %q, want %q", i, part.Type, PartTypeImageURL)
				}
				if part.ImageURL == nil || part.ImageURL.URL != tc.want[i] {
					t.Errorf("part %d url = %+v, want %q", i, part.ImageURL, tc.want[i])
				}
			}
		})
	}
}

func TestEnsureDataURL(t *testing.T) {
	tests := []struct {
		value    string
		mimeType string
		want     string
	}{
		{"https://cdn/x.png", "", "https://cdn/x.png"},
		{"data:image/png;base64,abc", "image/jpeg", "data:image/png;base64,abc"},
		{"abc", "", "data:image/png;base64,abc"},
		{"abc", "image/gif", "data:image/gif;base64,abc"},
	}

	for _, tc := range tests {
		if got := ensureDataURL(tc.value, tc.mimeType); got != tc.want {
			t.Errorf("ensureDataURL(%q, %q) = %q, want %q", tc.value, tc.mimeType, got, tc.want)
		}
	}
}
