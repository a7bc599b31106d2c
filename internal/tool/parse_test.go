package tool

import (
	"testing"
)

func TestParseCalls(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []Call
	}{
		{
			name:  "single call with prose around it",
			reply: `Let me check. TOOL_CALL: weather.current {"city": "Berlin"} One moment.`,
			want: []Call{
				{Server: "weather", Tool: "current", Args: []byte(`{"city": "Berlin"}`)},
			},
		},
		{
			name:  "nested argument object",
			reply: `TOOL_CALL: db.query {"filter": {"status": "open"}, "limit": 3}`,
			want: []Call{
				{Server: "db", Tool: "query", Args: []byte(`{"filter": {"status": "open"}, "limit": 3}`)},
			},
		},
		{
			name: "two calls in one reply",
			reply: "TOOL_CALL: weather.current {\"city\": \"Oslo\"}\n" +
				"TOOL_CALL: calc.add {\"a\": 1, \"b\": 2}",
			want: []Call{
				{Server: "weather", Tool: "current", Args: []byte(`{"city": "Oslo"}`)},
				{Server: "calc", Tool: "add", Args: []byte(`{"a": 1, "b": 2}`)},
			},
		},
		{
			name: "broken JSON drops only the bad call",
			reply: "TOOL_CALL: weather.current {\"city\": }\n" +
				"TOOL_CALL: calc.add {\"a\": 1}",
			want: []Call{
				{Server: "calc", Tool: "add", Args: []byte(`{"a": 1}`)},
			},
		},
		{
			name:  "plain prose yields nothing",
			reply: "The weather in Berlin is sunny today.",
			want:  nil,
		},
		{
			name:  "mention without braces yields nothing",
			reply: "I would use TOOL_CALL: weather.current here, but I lack arguments.",
			want:  nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseCalls(tc.reply)
			if len(got) != len(tc.want) {
				t.Fatalf("ParseCalls returned %d calls, want %d: %+v", len(got), len(tc.want), got)
			}
			for i, call := range got {
				want := tc.want[i]
				if call.Server != want.Server || call.Tool != want.Tool {
					t.Errorf("call %d = %s.%s, want %s.%s", i, call.Server, call.Tool, want.Server, want.Tool)
				}
				if string(call.Args) != string(want.Args) {
					t.Errorf("call %d args = %s, want %s", i, call.Args, want.Args)
				}
			}
		})
	}
}

func TestStripCalls(t *testing.T) {
	reply := `Checking now. TOOL_CALL: weather.current {"city": "Berlin"} Done.`
	calls := ParseCalls(reply)
	if got := StripCalls(reply, calls); got != "Checking now.  Done." {
		t.Errorf("StripCalls = %q", got)
	}

	// Markup that failed to parse is still scrubbed from the visible reply.
	broken := `TOOL_CALL: weather.current {"city": } All clear.`
	if got := StripCalls(broken, ParseCalls(broken)); got != "All clear." {
		t.Errorf("StripCalls on broken markup = %q", got)
	}
}

func TestScanBalancedObject(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{`{"a": {"b": {"c": 1}}} trailing`, `{"a": {"b": {"c": 1}}}`, true},
		{`{"text": "brace } inside string"}`, `{"text": "brace } inside string"}`, true},
		{`{"never": "closed"`, "", false},
		{`no object here`, "", false},
	}

	for _, tc := range tests {
		got, ok := scanBalancedObject(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("scanBalancedObject(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
