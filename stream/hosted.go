package stream

import "strings"

// Canonical hosted tool names used downstream regardless of which upstream
// representation triggered detection.
const (
	ToolWebSearch  = "web_search"
	ToolFileSearch = "file_search"
	ToolMCPSearch  = "mcp_search"

	// ToolUnknown is the placeholder name when upstream provides none.
	ToolUnknown = "unknown_tool"
)

// hostedPatterns maps raw provider type substrings to canonical tool names.
// Order matters: the more specific "_call" variants come first so that a
// raw type matches its narrowest pattern.
var hostedPatterns = []struct {
	pattern string
	tool    string
}{
	{"web_search_call", ToolWebSearch},
	{"web_search", ToolWebSearch},
	{"file_search_call", ToolFileSearch},
	{"file_search", ToolFileSearch},
	{"mcp_call", ToolMCPSearch},
	{"mcp_list_tools", ToolMCPSearch},
}

// MatchHostedTool resolves a raw provider type tag to a canonical hosted
// tool name by substring match.
func MatchHostedTool(rawType string) (string, bool) {
	for _, p := range hostedPatterns {
		if strings.Contains(rawType, p.pattern) {
			return p.tool, true
		}
	}
	return "", false
}

// hostedEventCompleted reports whether a raw provider type tag indicates a
// finished hosted tool operation rather than an in-progress one.
func hostedEventCompleted(rawType string) bool {
	return strings.Contains(rawType, "completed") || strings.Contains(rawType, "done")
}

// CitationTool resolves a text annotation type to the hosted tool it proves
// was used.
func CitationTool(annotationType string) (string, bool) {
	switch {
	case strings.Contains(annotationType, "url_citation"):
		return ToolWebSearch, true
	case strings.Contains(annotationType, "file_citation"):
		return ToolFileSearch, true
	default:
		return "", false
	}
}

// citationIdentity is the synthesized invocation identity used when a tool
// is detected through citations instead of call events.
func citationIdentity(tool string) string {
	return tool + "_annotation"
}
