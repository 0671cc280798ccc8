package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialstudio/studio/agent"
	"github.com/socialstudio/studio/conversation"
	"github.com/socialstudio/studio/conversation/inmemory"
	"github.com/socialstudio/studio/event"
)

// scriptedRunner replays a fixed event sequence and records the request.
type scriptedRunner struct {
	events []event.Event
	err    error
	got    agent.Request
}

func (r *scriptedRunner) Run(_ context.Context, req agent.Request, out chan<- event.Event) error {
	r.got = req
	for _, ev := range r.events {
		out <- ev
	}
	return r.err
}

func newTestServer(t *testing.T, runner ChatRunner) (*Server, *inmemory.Service) {
	t.Helper()
	store := inmemory.New()
	return New(runner, store), store
}

func postChat(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

// frames splits the SSE body into its JSON documents.
func frames(t *testing.T, body string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, part := range strings.Split(body, "\n\n") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		var frame map[string]any
		require.NoError(t, json.Unmarshal([]byte(part), &frame), "frame: %s", part)
		out = append(out, frame)
	}
	return out
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &scriptedRunner{})
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestChatRejectsMissingMessage(t *testing.T) {
	srv, _ := newTestServer(t, &scriptedRunner{})
	rec := postChat(t, srv, `{"platforms":["x"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "message is required")
}

func TestChatRejectsOversizedMessage(t *testing.T) {
	srv, _ := newTestServer(t, &scriptedRunner{})
	body, err := json.Marshal(map[string]string{"message": strings.Repeat("a", 10001)})
	require.NoError(t, err)
	rec := postChat(t, srv, string(body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatRejectsBadJSON(t *testing.T) {
	srv, _ := newTestServer(t, &scriptedRunner{})
	rec := postChat(t, srv, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatStreamsEvents(t *testing.T) {
	runner := &scriptedRunner{events: []event.Event{
		event.NewReasoningUpdate("Thinking about X"),
		event.NewToolEvent("web_search", event.ToolStatusStarted, ""),
		event.NewToolEvent("web_search", event.ToolStatusCompleted, ""),
		event.NewTextChunk("Hello"),
		event.NewTextChunk(" world"),
		event.NewImageReady("linkedin", "aW1n"),
		event.NewDone(),
	}}
	srv, store := newTestServer(t, runner)

	rec := postChat(t, srv, `{"message":"Launch post please","thread_id":"t-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))

	all := frames(t, rec.Body.String())
	require.Len(t, all, 7)

	assert.Equal(t, "reasoning_update", all[0]["type"])
	assert.Equal(t, "Thinking about X", all[0]["reasoning"])

	assert.Equal(t, "tool_event", all[1]["type"])
	assert.Equal(t, "web_search", all[1]["tool"])
	assert.Equal(t, "started", all[1]["status"])
	assert.NotEmpty(t, all[1]["timestamp"])
	assert.Equal(t, "completed", all[2]["status"])

	// Text frames carry cumulative content.
	first := all[3]["choices"].([]any)[0].(map[string]any)["messages"].([]any)[0].(map[string]any)
	assert.Equal(t, "Hello", first["content"])
	second := all[4]["choices"].([]any)[0].(map[string]any)["messages"].([]any)[0].(map[string]any)
	assert.Equal(t, "Hello world", second["content"])
	assert.Equal(t, "t-1", all[4]["thread_id"])

	assert.Equal(t, "image", all[5]["type"])
	assert.Equal(t, "linkedin", all[5]["platform"])
	assert.Equal(t, "aW1n", all[5]["image_base64"])

	assert.Equal(t, "done", all[6]["type"])
	assert.Equal(t, "t-1", all[6]["thread_id"])

	// The turn was persisted with both messages.
	conv, err := store.Get(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, "Launch post please", conv.Title)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "user", conv.Messages[0].Role)
	assert.Equal(t, "Hello world", conv.Messages[1].Content)

	// Defaults were filled in before the runner saw the request.
	assert.Equal(t, []string{"linkedin", "x", "instagram"}, runner.got.Platforms)
	assert.Equal(t, "medium", runner.got.ReasoningEffort)
}

func TestChatGeneratesThreadID(t *testing.T) {
	runner := &scriptedRunner{events: []event.Event{event.NewDone()}}
	srv, _ := newTestServer(t, runner)

	rec := postChat(t, srv, `{"message":"hi"}`)
	all := frames(t, rec.Body.String())
	require.Len(t, all, 1)
	assert.Equal(t, "done", all[0]["type"])
	assert.NotEmpty(t, all[0]["thread_id"])
	assert.NotEmpty(t, runner.got.TurnID)
}

func TestChatErrorFrame(t *testing.T) {
	runner := &scriptedRunner{
		events: []event.Event{event.NewError("something broke")},
		err:    context.DeadlineExceeded,
	}
	srv, _ := newTestServer(t, runner)

	rec := postChat(t, srv, `{"message":"hi"}`)
	all := frames(t, rec.Body.String())
	require.Len(t, all, 1)
	assert.Equal(t, "something broke", all[0]["error"])
}

func TestChatPassesHistory(t *testing.T) {
	runner := &scriptedRunner{events: []event.Event{event.NewDone()}}
	srv, store := newTestServer(t, runner)

	require.NoError(t, store.Save(context.Background(), &conversation.Conversation{
		ID:     "t-9",
		UserID: defaultUserID,
		Messages: []conversation.Message{
			{Role: "user", Content: "earlier question"},
			{Role: "assistant", Content: "earlier answer"},
		},
	}))

	postChat(t, srv, `{"message":"follow up","thread_id":"t-9"}`)
	require.Len(t, runner.got.History, 2)
	assert.Equal(t, "earlier question", runner.got.History[0].Content)
}

func TestConversationEndpoints(t *testing.T) {
	srv, store := newTestServer(t, &scriptedRunner{})
	require.NoError(t, store.Save(context.Background(), &conversation.Conversation{
		ID:     "c-1",
		UserID: defaultUserID,
		Title:  "First",
		Messages: []conversation.Message{
			{Role: "user", Content: "hello"},
		},
	}))

	// List.
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/conversations", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var summaries []conversation.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "First", summaries[0].Title)

	// Get.
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/conversations/c-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello")

	// Get missing.
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/conversations/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Delete.
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/conversations/c-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// Delete again.
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/conversations/c-1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMakeTitle(t *testing.T) {
	assert.Equal(t, "short", makeTitle("short"))
	long := strings.Repeat("a", 49) + " tail"
	assert.Equal(t, strings.Repeat("a", 49), makeTitle(long))
}

func TestExtractImagePrompts(t *testing.T) {
	content := "Here you go:\n```json\n" + `{
  "contents": [
    {"platform": "linkedin", "image_prompt": "a pro photo"},
    {"platform": "x", "image_prompt": ""},
    {"platform": "instagram", "image_prompt": "vibrant flatlay"}
  ]
}` + "\n```"
	prompts := extractImagePrompts(content)
	assert.Equal(t, map[string]string{
		"linkedin":  "a pro photo",
		"instagram": "vibrant flatlay",
	}, prompts)
}

func TestExtractImagePromptsABMode(t *testing.T) {
	content := "```json\n" + `{
  "mode": "ab",
  "variant_a": {"contents": [{"platform": "linkedin", "image_prompt": "variant a visual"}]},
  "variant_b": {"contents": [{"platform": "linkedin", "image_prompt": "variant b visual"},
                              {"platform": "instagram", "image_prompt": "insta visual"}]}
}` + "\n```"
	prompts := extractImagePrompts(content)
	assert.Equal(t, "variant a visual", prompts["linkedin"])
	assert.Equal(t, "insta visual", prompts["instagram"])
}

func TestExtractImagePromptsNotJSON(t *testing.T) {
	assert.Empty(t, extractImagePrompts("plain prose, no fences"))
	assert.Empty(t, extractImagePrompts(""))
	assert.Empty(t, extractImagePrompts("```json\nnot json\n```"))
}
