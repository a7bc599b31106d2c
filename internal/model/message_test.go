package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMessageContentJSON(t *testing.T) {
	var m Message

	m.SetContentText("hello")
	if got := string(m.ContentJSON()); got != `"hello"` {
		t.Errorf("ContentJSON = %s", got)
	}

	m.SetContentJSON(json.RawMessage(`[{"type":"text","text":"hi"}]`))
	if got := string(m.ContentJSON()); got != `[{"type":"text","text":"hi"}]` {
		t.Errorf("ContentJSON = %s", got)
	}

	// Rows written before content became JSON hold bare text.
	m.Content = "plain legacy text"
	if got := string(m.ContentJSON()); got != `"plain legacy text"` {
		t.Errorf("legacy ContentJSON = %s", got)
	}
}

func TestMessageMarshalInlinesContent(t *testing.T) {
	m := Message{ID: 7, ChatID: 3, Role: "assistant"}
	m.SetContentJSON(json.RawMessage(`[{"type":"text","text":"hi"}]`))

	encoded, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(encoded), `"content":[{"type":"text","text":"hi"}]`) {
		t.Errorf("content should be inlined as structured JSON, got %s", encoded)
	}

	var decoded Message
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.ID != 7 || decoded.Role != "assistant" {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Content != `[{"type":"text","text":"hi"}]` {
		t.Errorf("decoded content = %q", decoded.Content)
	}
}
