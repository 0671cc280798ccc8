package tool

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchKB(t *testing.T, s *KnowledgeSearcher, args map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	out, err := s.Definition().Execute(context.Background(), raw)
	require.NoError(t, err)
	return out
}

func TestSearchKnowledgeBase(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/knowledgebases/kb-main/retrieve", r.URL.Path)
		assert.Equal(t, retrievalAPIVersion, r.URL.Query().Get("api-version"))
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		chunks := `{"extractiveData":{"chunks":[
			{"content":"Use the primary palette.","rerankerScore":2.41,
			 "metadata":{"url":"https://kb.example/brand","title":"Brand Guidelines"}}]}}`
		resp := map[string]any{
			"response": []map[string]any{{
				"content": []map[string]string{{"type": "text", "text": chunks}},
			}},
			"activity": []map[string]any{
				{"type": "agenticReasoning", "reasoningTokens": 512},
				{"type": "searchIndex", "knowledgeSourceName": "brand-docs", "count": 3, "elapsedMs": 120},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	s := NewKnowledgeSearcher(srv.URL, "kb-main",
		WithAPIKey("secret"), WithHTTPClient(srv.Client()))
	out := searchKB(t, s, map[string]any{"query": "brand colors"})

	// Default effort uses the query-planning request shape.
	assert.Contains(t, gotBody, "messages")
	assert.NotContains(t, gotBody, "intents")
	effort := gotBody["retrievalReasoningEffort"].(map[string]any)
	assert.Equal(t, "low", effort["kind"])

	assert.Contains(t, out, "## Brand Guidelines")
	assert.Contains(t, out, "【ref_1†relevance:2.41】")
	assert.Contains(t, out, "Use the primary palette.")
	assert.Contains(t, out, "_Source: https://kb.example/brand_")
	assert.Contains(t, out, "Reasoning Effort: low")
	assert.Contains(t, out, "推論トークン: 512")
	assert.Contains(t, out, "brand-docs: 3件 (120ms)")
}

func TestSearchKnowledgeBaseMinimalEffort(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		// Minimal mode returns a JSON array of documents; scores arrive
		// on the reference entries.
		docs := `[{"ref_id":1,"title":"","content":"Logo usage rules."}]`
		resp := map[string]any{
			"response": []map[string]any{{
				"content": []map[string]string{{"type": "text", "text": docs}},
			}},
			"references": []map[string]any{
				{"id": 1, "title": "Logo Guide", "rerankerScore": 1.87},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	s := NewKnowledgeSearcher(srv.URL, "kb-main", WithHTTPClient(srv.Client()))
	out := searchKB(t, s, map[string]any{"query": "logo", "reasoning_effort": "minimal"})

	assert.Contains(t, gotBody, "intents")
	assert.NotContains(t, gotBody, "messages")

	assert.Contains(t, out, "## Logo Guide")
	assert.Contains(t, out, "【ref_1†relevance:1.87】")
	assert.Contains(t, out, "Logo usage rules.")
}

func TestSearchKnowledgeBaseNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"response": []any{}}))
	}))
	defer srv.Close()

	s := NewKnowledgeSearcher(srv.URL, "kb-main", WithHTTPClient(srv.Client()))
	out := searchKB(t, s, map[string]any{"query": "nothing here"})
	assert.Equal(t, "関連するドキュメントが見つかりませんでした。", out)
}

func TestSearchKnowledgeBaseServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewKnowledgeSearcher(srv.URL, "kb-main", WithHTTPClient(srv.Client()))
	// Retrieval failures come back as text for the model, not as errors.
	out := searchKB(t, s, map[string]any{"query": "anything"})
	assert.Contains(t, out, "ナレッジベース検索エラー")
	assert.Contains(t, out, "500")
}

func TestSearchKnowledgeBaseBadArguments(t *testing.T) {
	s := NewKnowledgeSearcher("https://search.example", "kb-main")
	_, err := s.Definition().Execute(context.Background(), json.RawMessage(`{not json`))
	assert.Error(t, err)
}

func TestParseSourceTextPlain(t *testing.T) {
	sources := parseSourceText("just prose, not JSON")
	require.Len(t, sources, 1)
	assert.Equal(t, "just prose, not JSON", sources[0].Content)

	assert.Empty(t, parseSourceText("  "))
}

func TestParseSourceTextSingleDocument(t *testing.T) {
	sources := parseSourceText(`{"content":"one doc","source":"https://kb.example/a","title":"A","rerankerScore":0.9}`)
	require.Len(t, sources, 1)
	assert.Equal(t, "one doc", sources[0].Content)
	assert.Equal(t, "https://kb.example/a", sources[0].Source)
	assert.InDelta(t, 0.9, sources[0].Score, 1e-9)
}
