// Package tool implements the textual tool-call convention: tool servers are
// advertised in the system prompt, the model requests invocations with
// "TOOL_CALL: server.tool {json-args}" lines, and each server is an external
// process spoken to over stdio.
package tool

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Call is one extracted invocation request. Raw is the full matched span so
// it can be stripped from the reply afterwards.
type Call struct {
	Server string
	Tool   string
	Args   json.RawMessage
	Raw    string
}

// callPattern tolerates one level of nested braces in the argument object.
var callPattern = regexp.MustCompile(
	`TOOL_CALL:\s*([A-Za-z0-9_-]+)\.([A-Za-z0-9_-]+)\s*(\{(?:[^{}]|\{[^{}]*\})*\})`)

// ParseCalls extracts every tool call from a model reply. A call whose
// argument span is not valid JSON gets one retry with a looser brace scan and
// is then dropped alone; surrounding prose and later calls are unaffected.
func ParseCalls(reply string) []Call {
	matches := callPattern.FindAllStringSubmatchIndex(reply, -1)
	if len(matches) == 0 {
		return nil
	}

	calls := make([]Call, 0, len(matches))
	for _, m := range matches {
		full := reply[m[0]:m[1]]
		server := reply[m[2]:m[3]]
		name := reply[m[4]:m[5]]
		args := reply[m[6]:m[7]]

		if !json.Valid([]byte(args)) {
			rescued, ok := scanBalancedObject(reply[m[6]:])
			if !ok || !json.Valid([]byte(rescued)) {
				continue
			}
			full = reply[m[0]:m[6]] + rescued
			args = rescued
		}

		calls = append(calls, Call{
			Server: server,
			Tool:   name,
			Args:   json.RawMessage(args),
			Raw:    full,
		})
	}
	return calls
}

// StripCalls removes every extracted call's markup from the reply.
func StripCalls(reply string, calls []Call) string {
	cleaned := reply
	for _, c := range calls {
		cleaned = strings.Replace(cleaned, c.Raw, "", 1)
	}
	return strings.TrimSpace(callPattern.ReplaceAllString(cleaned, ""))
}

// scanBalancedObject reads from the first "{" to its balancing "}", ignoring
// braces inside JSON strings.
func scanBalancedObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
