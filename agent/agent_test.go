package agent

import (
	"fmt"
	"strings"
	"testing"

	openai "github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialstudio/studio/conversation"
	"github.com/socialstudio/studio/stream"
	"github.com/socialstudio/studio/tool"
)

func TestBuildQuery(t *testing.T) {
	q := buildQuery(Request{
		Message:     "Announce our new API",
		Platforms:   []string{"linkedin", "x"},
		ContentType: "product_launch",
		Language:    "en",
	})
	assert.Contains(t, q, "- Topic: Announce our new API")
	assert.Contains(t, q, "- Platforms: linkedin, x")
	assert.Contains(t, q, "- Content type: product_launch")
	assert.NotContains(t, q, "Previous conversation")
}

func TestBuildQueryHistoryWindow(t *testing.T) {
	var history []conversation.Message
	for i := 0; i < 10; i++ {
		history = append(history, conversation.Message{
			Role:    "user",
			Content: fmt.Sprintf("message %d", i),
		})
	}
	q := buildQuery(Request{Message: "next", Platforms: []string{"x"}, History: history})

	assert.Contains(t, q, "Previous conversation:")
	// Only the trailing six messages survive.
	assert.NotContains(t, q, "message 3")
	assert.Contains(t, q, "message 4")
	assert.Contains(t, q, "message 9")
}

func TestConfiguredHostedTools(t *testing.T) {
	a := New(openai.Client{}, "gpt-5")
	assert.Equal(t, []string{stream.ToolWebSearch}, a.configuredHostedTools())

	a = New(openai.Client{}, "gpt-5",
		WithVectorStoreID("vs_123"),
		WithMCPServerURL("https://learn.example/mcp"))
	assert.Equal(t,
		[]string{stream.ToolWebSearch, stream.ToolFileSearch, stream.ToolMCPSearch},
		a.configuredHostedTools())
}

func TestBuildRegistry(t *testing.T) {
	a := New(openai.Client{}, "gpt-5")
	reg := a.buildRegistry("turn-1")

	_, ok := reg.Get("generate_content")
	assert.True(t, ok)
	_, ok = reg.Get("review_content")
	assert.True(t, ok)
	// Image generation only registers when a generator is configured.
	_, ok = reg.Get("generate_image")
	assert.False(t, ok)
	_, ok = reg.Get("search_knowledge_base")
	assert.False(t, ok)
}

func TestBuildRegistryWithKnowledgeSearcher(t *testing.T) {
	a := New(openai.Client{}, "gpt-5",
		WithKnowledgeSearcher(tool.NewKnowledgeSearcher("https://search.example", "kb-main")))
	reg := a.buildRegistry("turn-1")

	_, ok := reg.Get("search_knowledge_base")
	assert.True(t, ok)
}

func TestBuildToolsDeclarations(t *testing.T) {
	a := New(openai.Client{}, "gpt-5", WithVectorStoreID("vs_123"))
	tools := a.buildTools(a.buildRegistry("turn-1"))

	// web_search + file_search + two function tools.
	require.Len(t, tools, 4)
	assert.NotNil(t, tools[1].OfFileSearch)
	assert.Equal(t, []string{"vs_123"}, tools[1].OfFileSearch.VectorStoreIDs)
}

func TestBuildToolsMCPDeclaration(t *testing.T) {
	a := New(openai.Client{}, "gpt-5", WithMCPServerURL("https://learn.example/mcp"))
	tools := a.buildTools(a.buildRegistry("turn-1"))

	// web_search + mcp + two function tools.
	require.Len(t, tools, 4)
	mcp := tools[1].OfMcp
	require.NotNil(t, mcp)
	assert.Equal(t, "https://learn.example/mcp", mcp.ServerURL)
	assert.Equal(t, mcpServerLabel, mcp.ServerLabel)
	assert.Equal(t, "never", mcp.RequireApproval.OfMcpToolApprovalSetting.Value)
	assert.Contains(t, mcp.AllowedTools.OfMcpAllowedTools, "microsoft_docs_search")
}

func TestBuildParamsReasoning(t *testing.T) {
	a := New(openai.Client{}, "gpt-5")
	reg := a.buildRegistry("turn-1")

	params := a.buildParams(Request{
		Message:          "hello",
		ReasoningEffort:  "high",
		ReasoningSummary: "auto",
	}, reg)
	assert.Equal(t, "high", string(params.Reasoning.Effort))
	assert.Equal(t, "auto", string(params.Reasoning.Summary))

	params = a.buildParams(Request{Message: "hello", ReasoningEffort: "off", ReasoningSummary: "off"}, reg)
	assert.Empty(t, string(params.Reasoning.Effort))
	assert.Empty(t, string(params.Reasoning.Summary))
}

func TestBuildParamsBilingualPrompt(t *testing.T) {
	a := New(openai.Client{}, "gpt-5")
	reg := a.buildRegistry("turn-1")

	params := a.buildParams(Request{Message: "hello", Bilingual: true}, reg)
	assert.True(t, strings.Contains(params.Instructions.Value, "BILINGUAL MODE"))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", truncateRunes("short", 80))
	assert.Equal(t, "日本語テ", truncateRunes("日本語テキスト", 4))
}
