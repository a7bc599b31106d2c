package tool

import (
	"fmt"
	"strings"
)

// ServerTools pairs a server with its advertised tools for prompt building.
type ServerTools struct {
	Server string
	Tools  []Tool
}

const instructionBlock = `When one of the tools above can answer the user, request it by writing a line
in exactly this form, then stop:

TOOL_CALL: <server>.<tool> {"param": "value"}

Example:
TOOL_CALL: weather.current {"city": "Berlin"}

The tool output will be sent back to you; answer the user in natural language
based on it. Do not invent tool results.`

// AugmentSystemPrompt appends the tool catalog and invocation instructions to
// the base system prompt. With no tools it returns the base unchanged.
func AugmentSystemPrompt(base string, catalog []ServerTools) string {
	var tools []string
	for _, st := range catalog {
		for _, t := range st.Tools {
			line := fmt.Sprintf("- %s.%s", st.Server, t.Name)
			if t.Description != "" {
				line += ": " + t.Description
			}
			if len(t.Parameters) > 0 {
				line += " (parameters: " + strings.Join(t.Parameters, ", ") + ")"
			}
			tools = append(tools, line)
		}
	}
	if len(tools) == 0 {
		return base
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\nYou have access to the following tools:\n")
	b.WriteString(strings.Join(tools, "\n"))
	b.WriteString("\n\n")
	b.WriteString(instructionBlock)
	return b.String()
}
