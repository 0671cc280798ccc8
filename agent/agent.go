// Package agent orchestrates one content generation turn against the
// hosted model: it assembles the prompt, tools and request parameters,
// opens the response stream with retry, and normalizes the stream into
// domain events.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	oresponses "github.com/openai/openai-go/responses"
	oshared "github.com/openai/openai-go/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/socialstudio/studio/artifact"
	"github.com/socialstudio/studio/conversation"
	"github.com/socialstudio/studio/event"
	"github.com/socialstudio/studio/log"
	"github.com/socialstudio/studio/prompt"
	"github.com/socialstudio/studio/stream"
	"github.com/socialstudio/studio/telemetry"
	"github.com/socialstudio/studio/tool"
)

const (
	// maxRetries bounds the retried stream initiations after the first.
	maxRetries = 2
	// retryBaseDelay doubles per attempt.
	retryBaseDelay = 2 * time.Second
	// historyWindow is how many trailing history messages enter the query.
	historyWindow = 6

	mcpServerLabel = "microsoft_learn"
)

// Agent runs content generation turns. Safe for concurrent use; all
// per-turn state lives in the request and the turn source.
type Agent struct {
	client        openai.Client
	model         string
	vectorStoreID string
	mcpServerURL  string
	images        *tool.ImageGenerator
	knowledge     *tool.KnowledgeSearcher
	sleep         func(ctx context.Context, d time.Duration) error
}

// Option configures an Agent.
type Option func(*Agent)

// WithVectorStoreID attaches the brand-guideline vector store, enabling
// the hosted file_search tool.
func WithVectorStoreID(id string) Option {
	return func(a *Agent) { a.vectorStoreID = id }
}

// WithMCPServerURL attaches the documentation MCP server, enabling the
// hosted MCP tool.
func WithMCPServerURL(url string) Option {
	return func(a *Agent) { a.mcpServerURL = url }
}

// WithImageGenerator enables the generate_image tool.
func WithImageGenerator(images *tool.ImageGenerator) Option {
	return func(a *Agent) { a.images = images }
}

// WithKnowledgeSearcher enables the search_knowledge_base tool.
func WithKnowledgeSearcher(knowledge *tool.KnowledgeSearcher) Option {
	return func(a *Agent) { a.knowledge = knowledge }
}

// New creates an Agent bound to a client and model deployment.
func New(client openai.Client, model string, opt ...Option) *Agent {
	a := &Agent{
		client: client,
		model:  model,
		sleep:  sleepCtx,
	}
	for _, o := range opt {
		o(a)
	}
	return a
}

// Request is one content generation turn.
type Request struct {
	TurnID           string
	Message          string
	Platforms        []string
	ContentType      string
	Language         string
	History          []conversation.Message
	ReasoningEffort  string
	ReasoningSummary string
	ABMode           bool
	Bilingual        bool
	BilingualStyle   string
}

// Run executes the turn and sends normalized events to out. It does not
// close out. On failure the last event sent is an error event with a
// user-facing message; the returned error carries the original fault.
func (a *Agent) Run(ctx context.Context, req Request, out chan<- event.Event) error {
	ctx, span := telemetry.Tracer.Start(ctx, "reasoning_pipeline", trace.WithAttributes(
		attribute.String("reasoning.effort", req.ReasoningEffort),
		attribute.String("reasoning.summary", req.ReasoningSummary),
		attribute.String("platforms", strings.Join(req.Platforms, ",")),
		attribute.String("content_type", req.ContentType),
		attribute.String("language", req.Language),
		attribute.Bool("ab_mode", req.ABMode),
		attribute.Bool("bilingual", req.Bilingual),
	))
	defer span.End()

	registry := a.buildRegistry(req.TurnID)
	params := a.buildParams(req, registry)
	configured := a.configuredHostedTools()

	log.Infof("agent processing: %s... (platforms=%v)", truncateRunes(req.Message, 80), req.Platforms)

	var (
		src  *turnSource
		norm *stream.Normalizer
	)
	for attempt := 0; ; attempt++ {
		store := artifact.NewStore(req.TurnID)
		runCtx := artifact.ContextWithStore(ctx, store)
		src = newTurnSource(runCtx, a.client, params, registry)
		err := src.prime()
		if err == nil {
			norm = stream.New(
				stream.WithArtifactStore(store),
				stream.WithConfiguredTools(configured...),
			)
			break
		}
		if !stream.IsTransient(err) || attempt >= maxRetries {
			span.RecordError(err)
			sendEvent(ctx, out, event.NewError(stream.UserMessage(err)))
			return fmt.Errorf("agent: start stream: %w", err)
		}
		delay := retryBaseDelay << attempt
		log.Warnf("agent: transient error on attempt %d/%d: %v (retrying in %s)",
			attempt+1, maxRetries+1, err, delay)
		sendEvent(ctx, out, event.NewToolEvent("retry", event.ToolStatusStarted,
			fmt.Sprintf("Retrying... (attempt %d)", attempt+2)))
		if err := a.sleep(ctx, delay); err != nil {
			return err
		}
	}

	err := norm.Run(ctx, src, out)
	span.SetAttributes(attribute.StringSlice("tools.used", norm.Tracker().UsedTools()))
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("agent: stream turn: %w", err)
	}
	return nil
}

// buildRegistry assembles the local tools for one turn.
func (a *Agent) buildRegistry(turnID string) *tool.Registry {
	defs := []tool.Definition{tool.NewGenerateContent(), tool.NewReviewContent()}
	if a.images != nil {
		defs = append(defs, a.images.Definition(turnID))
	}
	if a.knowledge != nil {
		defs = append(defs, a.knowledge.Definition())
	}
	return tool.NewRegistry(defs...)
}

// buildParams assembles the request parameters shared by every segment of
// the turn.
func (a *Agent) buildParams(req Request, registry *tool.Registry) oresponses.ResponseNewParams {
	params := oresponses.ResponseNewParams{
		Model:        oshared.ResponsesModel(a.model),
		Instructions: openai.String(prompt.System(prompt.Options{
			ABMode:         req.ABMode,
			Bilingual:      req.Bilingual,
			BilingualStyle: req.BilingualStyle,
		})),
		Input: oresponses.ResponseNewParamsInputUnion{
			OfString: openai.String(buildQuery(req)),
		},
		Tools: a.buildTools(registry),
	}

	reasoning := oshared.ReasoningParam{}
	hasReasoning := false
	if req.ReasoningEffort != "" && req.ReasoningEffort != "off" {
		reasoning.Effort = oshared.ReasoningEffort(req.ReasoningEffort)
		hasReasoning = true
	}
	if req.ReasoningSummary != "" && req.ReasoningSummary != "off" {
		reasoning.Summary = oshared.ReasoningSummary(req.ReasoningSummary)
		hasReasoning = true
	}
	if hasReasoning {
		params.Reasoning = reasoning
	}
	return params
}

// buildTools assembles the hosted and local tool declarations.
func (a *Agent) buildTools(registry *tool.Registry) []oresponses.ToolUnionParam {
	tools := []oresponses.ToolUnionParam{
		oresponses.ToolParamOfWebSearchPreview(oresponses.WebSearchToolTypeWebSearchPreview),
	}
	if a.vectorStoreID != "" {
		tools = append(tools, oresponses.ToolUnionParam{
			OfFileSearch: &oresponses.FileSearchToolParam{
				VectorStoreIDs: []string{a.vectorStoreID},
			},
		})
		log.Infof("file search tool enabled (vector_store_id=%s)", a.vectorStoreID)
	} else {
		log.Warnf("VECTOR_STORE_ID not set, file_search tool disabled")
	}
	if a.mcpServerURL != "" {
		tools = append(tools, oresponses.ToolUnionParam{
			OfMcp: &oresponses.ToolMcpParam{
				ServerLabel: mcpServerLabel,
				ServerURL:   a.mcpServerURL,
				RequireApproval: oresponses.ToolMcpRequireApprovalUnionParam{
					OfMcpToolApprovalSetting: openai.String("never"),
				},
				AllowedTools: oresponses.ToolMcpAllowedToolsUnionParam{
					OfMcpAllowedTools: []string{
						"microsoft_docs_search",
						"microsoft_docs_fetch",
						"microsoft_code_sample_search",
					},
				},
			},
		})
		log.Infof("MCP tool enabled (url=%s)", a.mcpServerURL)
	}
	for _, def := range registry.Definitions() {
		tools = append(tools, oresponses.ToolParamOfFunction(def.Name, def.Parameters, false))
	}
	return tools
}

// configuredHostedTools lists the canonical hosted tools attached to the
// turn, for end-of-turn usage synthesis.
func (a *Agent) configuredHostedTools() []string {
	configured := []string{stream.ToolWebSearch}
	if a.vectorStoreID != "" {
		configured = append(configured, stream.ToolFileSearch)
	}
	if a.mcpServerURL != "" {
		configured = append(configured, stream.ToolMCPSearch)
	}
	return configured
}

// buildQuery folds the trailing history window and the request fields into
// the user query.
func buildQuery(req Request) string {
	var parts []string
	if len(req.History) > 0 {
		window := req.History
		if len(window) > historyWindow {
			window = window[len(window)-historyWindow:]
		}
		lines := make([]string, 0, len(window))
		for _, msg := range window {
			lines = append(lines, fmt.Sprintf("%s: %s", msg.Role, msg.Content))
		}
		parts = append(parts, fmt.Sprintf("Previous conversation:\n%s\n", strings.Join(lines, "\n")))
	}
	parts = append(parts, fmt.Sprintf(
		"Create social media content for the following:\n"+
			"- Topic: %s\n- Platforms: %s\n- Content type: %s\n- Language: %s\n",
		req.Message, strings.Join(req.Platforms, ", "), req.ContentType, req.Language,
	))
	return strings.Join(parts, "\n")
}

func sendEvent(ctx context.Context, out chan<- event.Event, ev event.Event) {
	select {
	case out <- ev:
	case <-ctx.Done():
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
