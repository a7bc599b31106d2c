package content

import (
	"encoding/json"
	"testing"
)

func TestFlattenToTextStringIdentity(t *testing.T) {
	cases := []string{"", "hello", "multi word message", "line\nbreak", "/greet there"}
	for _, text := range cases {
		raw, _ := json.Marshal(text)
		if got := FlattenToText(raw); got != text {
			t.Errorf("FlattenToText(%q) = %q, want identity", text, got)
		}
	}
}

func TestFlattenToTextParts(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "drops non-text parts",
			raw:  `[{"type":"text","text":"look at"},{"type":"image_url","image_url":{"url":"http://x/a.png"}},{"type":"text","text":"this"}]`,
			want: "look at this",
		},
		{
			name: "only images",
			raw:  `[{"type":"image_url","image_url":{"url":"http://x/a.png"}}]`,
			want: "",
		},
		{
			name: "empty array",
			raw:  `[]`,
			want: "",
		},
		{
			name: "preserves order",
			raw:  `[{"type":"text","text":"a"},{"type":"text","text":"b"},{"type":"text","text":"c"}]`,
			want: "a b c",
		},
		{
			name: "malformed degrades to empty",
			raw:  `{"not":"content"}`,
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FlattenToText(json.RawMessage(tc.raw)); got != tc.want {
				t.Errorf("FlattenToText = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestToMultimodal(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		reasoning string
		want      string
	}{
		{name: "array passes through", raw: `[{"type":"text","text":"hi"}]`, want: `[{"type":"text","text":"hi"}]`},
		{name: "string passes through", raw: `"hello"`, want: `"hello"`},
		{name: "blank string takes reasoning fallback", raw: `"  "`, reasoning: "thought it over", want: `"thought it over"`},
		{name: "non-blank string ignores reasoning", raw: `"answer"`, reasoning: "ignored", want: `"answer"`},
		{name: "empty input with reasoning", raw: ``, reasoning: "fallback", want: `"fallback"`},
		{name: "empty input without reasoning", raw: ``, want: `""`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ToMultimodal(json.RawMessage(tc.raw), tc.reasoning)
			if string(got) != tc.want {
				t.Errorf("ToMultimodal = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestMergeImagesIntoContent(t *testing.T) {
	if parts := MergeImagesIntoContent("", nil); len(parts) != 0 {
		t.Errorf("empty text and no images should yield empty array, got %d parts", len(parts))
	}

	img := ImagePart("http://x/a.png")

	parts := MergeImagesIntoContent("  ", []Part{img})
	if len(parts) != 1 || parts[0].Type != PartTypeImageURL {
		t.Fatalf("blank text should omit the text part, got %+v", parts)
	}

	parts = MergeImagesIntoContent("caption", []Part{img, img})
	if len(parts) != 3 {
		t.Fatalf("expected text part plus two images, got %d parts", len(parts))
	}
	if parts[0].Type != PartTypeText || parts[0].Text != "caption" {
		t.Errorf("first part should be the text, got %+v", parts[0])
	}
	if parts[1].Type != PartTypeImageURL || parts[2].Type != PartTypeImageURL {
		t.Errorf("image parts should follow in order, got %+v", parts[1:])
	}
}
