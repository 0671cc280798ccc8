package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/socialstudio/studio/agent"
	"github.com/socialstudio/studio/artifact"
	"github.com/socialstudio/studio/conversation"
	"github.com/socialstudio/studio/event"
	"github.com/socialstudio/studio/log"
)

const titleLength = 50

// handleChat streams one content generation turn. Each SSE frame is a JSON
// document; text frames carry the cumulative assistant content so the
// client renders by replacement.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	threadID := req.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}

	ctx := r.Context()
	history := s.loadHistory(ctx, threadID)

	runReq := agent.Request{
		TurnID:           threadID,
		Message:          req.Message,
		Platforms:        req.Platforms,
		ContentType:      req.ContentType,
		Language:         req.Language,
		History:          history,
		ReasoningEffort:  req.ReasoningEffort,
		ReasoningSummary: req.ReasoningSummary,
		ABMode:           req.ABMode,
		Bilingual:        req.Bilingual,
		BilingualStyle:   req.BilingualStyle,
	}

	sse := newSSEWriter(w)
	events := make(chan event.Event, 64)
	runErr := make(chan error, 1)
	go func() {
		runErr <- s.runner.Run(ctx, runReq, events)
		close(events)
	}()

	var assistantContent strings.Builder
	emittedImages := make(map[string]struct{})
	failed := false

	for ev := range events {
		switch ev.Type {
		case event.TypeReasoning:
			sse.send(map[string]string{
				"type":      "reasoning_update",
				"reasoning": ev.Reasoning,
			})

		case event.TypeTool:
			sse.send(toolFrame(ev))

		case event.TypeText:
			assistantContent.WriteString(ev.Text)
			sse.send(map[string]any{
				"choices": []map[string]any{{
					"messages": []map[string]string{{
						"role":    "assistant",
						"content": assistantContent.String(),
					}},
				}},
				"thread_id": threadID,
			})

		case event.TypeImage:
			emittedImages[ev.Platform] = struct{}{}
			sse.send(imageFrame(ev.Platform, ev.ImageBase64))

		case event.TypeDone:
			s.saveTurn(ctx, threadID, req.Message, history, assistantContent.String())
			s.emitMissingImages(ctx, sse, threadID, req.Platforms, assistantContent.String(), emittedImages)
			sse.send(map[string]string{"type": "done", "thread_id": threadID})

		case event.TypeError:
			failed = true
			sse.send(map[string]string{"error": ev.Error})
		}
	}

	if err := <-runErr; err != nil {
		log.Errorf("chat turn failed (thread=%s): %v", threadID, err)
		if !failed && ctx.Err() == nil {
			// The turn died without a terminal error event.
			sse.send(map[string]string{"error": "An unexpected error occurred."})
		}
	}
}

// loadHistory returns the stored messages for the thread, empty when the
// thread is new or storage is unavailable.
func (s *Server) loadHistory(ctx context.Context, threadID string) []conversation.Message {
	conv, err := s.conversations.Get(ctx, threadID)
	if err != nil {
		return nil
	}
	return conv.Messages
}

// saveTurn persists the turn's user and assistant messages. The title is
// the start of the first user message.
func (s *Server) saveTurn(ctx context.Context, threadID, userMessage string, history []conversation.Message, assistantContent string) {
	if assistantContent == "" {
		return
	}
	messages := append(history,
		conversation.Message{Role: "user", Content: userMessage},
		conversation.Message{Role: "assistant", Content: assistantContent},
	)
	err := s.conversations.Save(ctx, &conversation.Conversation{
		ID:       threadID,
		UserID:   defaultUserID,
		Title:    makeTitle(userMessage),
		Messages: messages,
	})
	if err != nil {
		log.Errorf("save conversation %s: %v", threadID, err)
	}
}

// emitMissingImages generates visuals for requested platforms whose images
// never arrived during the stream, using the image prompts embedded in the
// assistant's structured output.
func (s *Server) emitMissingImages(ctx context.Context, sse *sseWriter, threadID string, platforms []string, content string, emitted map[string]struct{}) {
	if s.images == nil || content == "" {
		return
	}
	var missing []string
	for _, p := range platforms {
		platform := strings.ToLower(strings.TrimSpace(p))
		if platform != "linkedin" && platform != "instagram" {
			continue
		}
		if _, ok := emitted[platform]; !ok {
			missing = append(missing, platform)
		}
	}
	if len(missing) == 0 {
		return
	}

	prompts := extractImagePrompts(content)
	if len(prompts) == 0 {
		return
	}

	def := s.images.Definition(threadID)
	for _, platform := range missing {
		prompt, ok := prompts[platform]
		if !ok {
			continue
		}
		store := artifact.NewStore(threadID)
		runCtx := artifact.ContextWithStore(ctx, store)
		args, err := json.Marshal(map[string]string{"prompt": prompt, "platform": platform})
		if err != nil {
			continue
		}
		if _, err := def.Execute(runCtx, args); err != nil {
			log.Warnf("image fallback failed for platform=%s: %v", platform, err)
			continue
		}
		if art, ok := store.Drain()[platform]; ok && art.Data != "" {
			emitted[platform] = struct{}{}
			sse.send(imageFrame(platform, art.Data))
			log.Infof("image fallback generated for platform=%s", platform)
		}
	}
}

func toolFrame(ev event.Event) map[string]any {
	frame := map[string]any{
		"type":      "tool_event",
		"tool":      ev.Tool,
		"status":    string(ev.Status),
		"timestamp": ev.Timestamp.Format(time.RFC3339),
	}
	if ev.Message != "" {
		frame["message"] = ev.Message
	}
	return frame
}

func imageFrame(platform, imageBase64 string) map[string]string {
	return map[string]string{
		"type":         "image",
		"platform":     platform,
		"image_base64": imageBase64,
	}
}

func makeTitle(message string) string {
	runes := []rune(message)
	if len(runes) > titleLength {
		runes = runes[:titleLength]
	}
	return strings.TrimRight(string(runes), " ")
}
