package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/socialstudio/studio/log"
)

// retrievalAPIVersion is the agentic retrieval API version.
const retrievalAPIVersion = "2025-11-01-preview"

const retrievalTimeout = 60 * time.Second

// KnowledgeSearcher queries a search-service knowledge base through the
// agentic retrieval API: the service plans sub-queries, retrieves from
// its knowledge sources with semantic reranking, and returns cited
// passages. Exposed to the model as the search_knowledge_base tool.
type KnowledgeSearcher struct {
	client        *http.Client
	endpoint      string
	knowledgeBase string
	apiKey        string
	defaultEffort string
}

// KnowledgeOption configures a KnowledgeSearcher.
type KnowledgeOption func(*KnowledgeSearcher)

// WithAPIKey authenticates retrieval requests with an API key.
func WithAPIKey(key string) KnowledgeOption {
	return func(s *KnowledgeSearcher) { s.apiKey = key }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) KnowledgeOption {
	return func(s *KnowledgeSearcher) { s.client = c }
}

// WithDefaultEffort sets the retrieval reasoning effort used when the
// model does not pass one: minimal, low, or medium.
func WithDefaultEffort(effort string) KnowledgeOption {
	return func(s *KnowledgeSearcher) {
		if effort != "" {
			s.defaultEffort = effort
		}
	}
}

// NewKnowledgeSearcher creates a searcher bound to a search endpoint and
// knowledge base name.
func NewKnowledgeSearcher(endpoint, knowledgeBase string, opts ...KnowledgeOption) *KnowledgeSearcher {
	s := &KnowledgeSearcher{
		client:        &http.Client{Timeout: retrievalTimeout},
		endpoint:      strings.TrimRight(endpoint, "/"),
		knowledgeBase: knowledgeBase,
		defaultEffort: "low",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Definition returns the search_knowledge_base tool.
func (s *KnowledgeSearcher) Definition() Definition {
	return Definition{
		Name: "search_knowledge_base",
		Description: "Search the knowledge base using agentic retrieval: " +
			"query decomposition and planning, multi-source retrieval with semantic " +
			"reranking, and source citations. Use this tool to look up brand " +
			"guidelines, product documentation, or internal knowledge base articles.",
		Parameters: objectSchema(map[string]any{
			"query": stringParam("The search query for finding relevant documents"),
			"reasoning_effort": stringParam(
				"Level of LLM processing: 'minimal' (fast), 'low' (balanced), 'medium' (best quality)"),
		}, "query"),
		Execute: s.search,
	}
}

func (s *KnowledgeSearcher) search(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Query           string `json:"query"`
		ReasoningEffort string `json:"reasoning_effort"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("search_knowledge_base: bad arguments: %w", err)
	}
	effort := in.ReasoningEffort
	if effort == "" {
		effort = s.defaultEffort
	}

	log.Infof("knowledge base search: query=%s..., effort=%s", truncate(in.Query, 60), effort)

	sources, activity, err := s.retrieve(ctx, in.Query, effort)
	if err != nil {
		// Reported to the model as text, not an error: the turn
		// continues without knowledge base evidence.
		log.Errorf("knowledge base search failed: %v", err)
		return "ナレッジベース検索エラー: " + err.Error(), nil
	}
	return formatRetrieval(sources, activity, effort), nil
}

// retrievalActivity is one entry of the retrieval response's activity log.
type retrievalActivity struct {
	Type                string `json:"type"`
	ReasoningTokens     int    `json:"reasoningTokens"`
	KnowledgeSourceName string `json:"knowledgeSourceName"`
	Count               int    `json:"count"`
	ElapsedMs           int    `json:"elapsedMs"`
}

// knowledgeSource is one retrieved passage.
type knowledgeSource struct {
	Content string
	Source  string
	Title   string
	Score   float64
	RefID   string
}

func (s *KnowledgeSearcher) retrieve(ctx context.Context, query, effort string) ([]knowledgeSource, []retrievalActivity, error) {
	var body map[string]any
	if effort == "minimal" {
		// Minimal skips query planning and searches the intent directly.
		body = map[string]any{
			"intents":                  []map[string]string{{"type": "semantic", "search": query}},
			"retrievalReasoningEffort": map[string]string{"kind": "minimal"},
			"includeActivity":          true,
		}
	} else {
		body = map[string]any{
			"messages": []map[string]any{{
				"role":    "user",
				"content": []map[string]string{{"type": "text", "text": query}},
			}},
			"retrievalReasoningEffort": map[string]string{"kind": effort},
			"includeActivity":          true,
			"maxRuntimeInSeconds":      30,
			"maxOutputSize":            6000,
		}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/knowledgebases/%s/retrieve?api-version=%s",
		s.endpoint, s.knowledgeBase, retrievalAPIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Errorf("agentic retrieval failed: %d - %s", resp.StatusCode, string(detail))
		return nil, nil, fmt.Errorf("search failed: %d", resp.StatusCode)
	}

	var parsed struct {
		Response []struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"response"`
		Activity   []retrievalActivity `json:"activity"`
		References []struct {
			ID            any     `json:"id"`
			Title         string  `json:"title"`
			RerankerScore float64 `json:"rerankerScore"`
		} `json:"references"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, nil, fmt.Errorf("decode response: %w", err)
	}

	var sources []knowledgeSource
	for _, item := range parsed.Response {
		for _, content := range item.Content {
			if content.Type == "text" {
				sources = append(sources, parseSourceText(content.Text)...)
			}
		}
	}

	// Reference entries carry the authoritative reranker scores.
	refs := make(map[string]struct {
		title string
		score float64
	}, len(parsed.References))
	for _, ref := range parsed.References {
		refs[fmt.Sprint(ref.ID)] = struct {
			title string
			score float64
		}{ref.Title, ref.RerankerScore}
	}
	for i := range sources {
		if ref, ok := refs[sources[i].RefID]; ok {
			sources[i].Score = ref.score
			if sources[i].Title == "" {
				sources[i].Title = ref.title
			}
		}
	}
	return sources, parsed.Activity, nil
}

// parseSourceText extracts passages from one text item of the retrieval
// response. Depending on effort the service returns a JSON array of
// documents, an object of extractive chunks, a single document object, or
// plain text.
func parseSourceText(text string) []knowledgeSource {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	var docs []struct {
		RefID   any    `json:"ref_id"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(trimmed), &docs); err == nil {
		sources := make([]knowledgeSource, 0, len(docs))
		for _, doc := range docs {
			sources = append(sources, knowledgeSource{
				Content: doc.Content,
				Title:   doc.Title,
				RefID:   fmt.Sprint(doc.RefID),
			})
		}
		return sources
	}

	var obj struct {
		ExtractiveData *struct {
			Chunks []struct {
				Content       string  `json:"content"`
				RerankerScore float64 `json:"rerankerScore"`
				Metadata      struct {
					URL   string `json:"url"`
					Title string `json:"title"`
				} `json:"metadata"`
			} `json:"chunks"`
		} `json:"extractiveData"`
		Content       string  `json:"content"`
		Source        string  `json:"source"`
		Title         string  `json:"title"`
		RerankerScore float64 `json:"rerankerScore"`
	}
	if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
		if obj.ExtractiveData != nil {
			var sources []knowledgeSource
			for _, chunk := range obj.ExtractiveData.Chunks {
				sources = append(sources, knowledgeSource{
					Content: chunk.Content,
					Source:  chunk.Metadata.URL,
					Title:   chunk.Metadata.Title,
					Score:   chunk.RerankerScore,
				})
			}
			return sources
		}
		if obj.Content == "" {
			obj.Content = trimmed
		}
		return []knowledgeSource{{
			Content: obj.Content,
			Source:  obj.Source,
			Title:   obj.Title,
			Score:   obj.RerankerScore,
		}}
	}

	return []knowledgeSource{{Content: trimmed}}
}

// formatRetrieval renders the passages for model consumption, with
// citation markers and an activity footer.
func formatRetrieval(sources []knowledgeSource, activity []retrievalActivity, effort string) string {
	if len(sources) == 0 {
		return "関連するドキュメントが見つかりませんでした。"
	}

	blocks := make([]string, 0, len(sources))
	for i, src := range sources {
		content := src.Content
		if runes := []rune(content); len(runes) > 2000 {
			content = string(runes[:2000]) + "...(truncated)"
		}
		citation := fmt.Sprintf("【ref_%d†relevance:%.2f】", i+1, src.Score)
		header := ""
		if src.Title != "" {
			header = "## " + src.Title + "\n"
		}
		sourceLine := ""
		if src.Source != "" {
			sourceLine = "\n_Source: " + src.Source + "_"
		}
		blocks = append(blocks, header+citation+"\n"+content+sourceLine)
	}

	footer := []string{"Reasoning Effort: " + effort}
	for _, act := range activity {
		switch act.Type {
		case "agenticReasoning":
			footer = append(footer, fmt.Sprintf("推論トークン: %d", act.ReasoningTokens))
		case "indexedSharePoint", "searchIndex":
			footer = append(footer, fmt.Sprintf("%s: %d件 (%dms)",
				act.KnowledgeSourceName, act.Count, act.ElapsedMs))
		}
	}
	return strings.Join(blocks, "\n\n---\n\n") + "\n\n---\n📊 " + strings.Join(footer, " | ")
}
