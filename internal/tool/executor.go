package tool

import (
	"context"
	"fmt"
	"strings"
)

// Result is the outcome of one call. A failure is captured in Err and never
// aborts sibling calls.
type Result struct {
	Server string
	Tool   string
	Output string
	Err    error
}

// Text renders the result the way it is fed back to the model.
func (r Result) Text() string {
	if r.Err != nil {
		return fmt.Sprintf("[%s.%s] error: %v", r.Server, r.Tool, r.Err)
	}
	return fmt.Sprintf("[%s.%s] %s", r.Server, r.Tool, r.Output)
}

// ExecuteCalls runs every call in order against the pool. An unknown server
// yields a synthetic failure result for that call only.
func ExecuteCalls(ctx context.Context, pool *Pool, calls []Call) []Result {
	results := make([]Result, 0, len(calls))
	for _, c := range calls {
		output, err := pool.CallTool(ctx, c.Server, c.Tool, c.Args)
		results = append(results, Result{
			Server: c.Server,
			Tool:   c.Tool,
			Output: output,
			Err:    err,
		})
	}
	return results
}

// JoinResults concatenates all result texts for the follow-up summary prompt.
func JoinResults(results []Result) string {
	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Text())
	}
	return strings.Join(texts, "\n")
}
