package app

import (
	"errors"
	"testing"
)

func TestExpandSlashCommand(t *testing.T) {
	lookup := func(title string) (string, bool, error) {
		if title == "greet" {
			return "Hello!", true, nil
		}
		return "", false, nil
	}

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "expands with trailing text", text: "/greet there", want: "Hello! there"},
		{name: "expands bare command", text: "/greet", want: "Hello!"},
		{name: "unknown command unchanged", text: "/unknown text", want: "/unknown text"},
		{name: "non-slash text unchanged", text: "greet me please", want: "greet me please"},
		{name: "lone slash unchanged", text: "/", want: "/"},
		{name: "slash mid-message unchanged", text: "what does /greet do", want: "what does /greet do"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExpandSlashCommand(tc.text, lookup)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ExpandSlashCommand(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestExpandSlashCommandLookupError(t *testing.T) {
	wantErr := errors.New("db down")
	lookup := func(string) (string, bool, error) { return "", false, wantErr }

	if _, err := ExpandSlashCommand("/greet hi", lookup); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want the lookup error", err)
	}
}

func TestNormalizePromptTitle(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/greet", "greet"},
		{"  /greet  ", "greet"},
		{"greet", "greet"},
		{"  ", ""},
	}
	for _, tc := range tests {
		if got := normalizePromptTitle(tc.in); got != tc.want {
			t.Errorf("normalizePromptTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
