package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchHostedTool(t *testing.T) {
	tests := []struct {
		rawType string
		tool    string
		ok      bool
	}{
		{"response.web_search_call.in_progress", ToolWebSearch, true},
		{"web_search_call", ToolWebSearch, true},
		{"web_search", ToolWebSearch, true},
		{"response.file_search_call.completed", ToolFileSearch, true},
		{"file_search", ToolFileSearch, true},
		{"mcp_call.arguments.done", ToolMCPSearch, true},
		{"mcp_list_tools", ToolMCPSearch, true},
		{"response.output_text.delta", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		tool, ok := MatchHostedTool(tt.rawType)
		assert.Equal(t, tt.ok, ok, tt.rawType)
		assert.Equal(t, tt.tool, tool, tt.rawType)
	}
}

func TestHostedEventCompleted(t *testing.T) {
	assert.True(t, hostedEventCompleted("response.web_search_call.completed"))
	assert.True(t, hostedEventCompleted("mcp_call.done"))
	assert.False(t, hostedEventCompleted("response.web_search_call.searching"))
	assert.False(t, hostedEventCompleted("mcp_list_tools.in_progress"))
}

func TestCitationTool(t *testing.T) {
	tool, ok := CitationTool("url_citation")
	assert.True(t, ok)
	assert.Equal(t, ToolWebSearch, tool)

	tool, ok = CitationTool("file_citation")
	assert.True(t, ok)
	assert.Equal(t, ToolFileSearch, tool)

	_, ok = CitationTool("container_file_citation")
	assert.True(t, ok, "variant tags still count as file citations")

	_, ok = CitationTool("footnote")
	assert.False(t, ok)
}
