package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/ssestream"
	oresponses "github.com/openai/openai-go/responses"

	"github.com/socialstudio/studio/log"
	"github.com/socialstudio/studio/stream"
	"github.com/socialstudio/studio/tool"
)

// maxToolSegments bounds the local-tool round trips within one turn. A turn
// that still wants tools after this many segments is cut off.
const maxToolSegments = 8

// functionCall is one model-requested local tool invocation.
type functionCall struct {
	callID    string
	name      string
	arguments string
}

// turnSource adapts the hosted Responses stream to the stream.Source
// contract. A turn may span several request segments: whenever the model
// requests local function tools, the source executes them, surfaces result
// fragments, and opens the next segment with the tool outputs chained via
// the previous response id.
type turnSource struct {
	ctx      context.Context
	client   openai.Client
	params   oresponses.ResponseNewParams
	registry *tool.Registry

	sse      *ssestream.Stream[oresponses.ResponseStreamEventUnion]
	queue    []stream.Fragment
	current  stream.Fragment
	err      error
	final    []stream.OutputItem
	calls    []functionCall
	callArgs map[string]string
	lastID   string
	segments int
}

func newTurnSource(ctx context.Context, client openai.Client, params oresponses.ResponseNewParams, registry *tool.Registry) *turnSource {
	return &turnSource{
		ctx:      ctx,
		client:   client,
		params:   params,
		registry: registry,
		callArgs: make(map[string]string),
	}
}

// prime opens the first stream segment and surfaces the request fault, if
// any, so the caller can decide whether to retry before consuming.
func (s *turnSource) prime() error {
	s.sse = s.client.Responses.NewStreaming(s.ctx, s.params)
	if err := s.sse.Err(); err != nil {
		s.err = err
		return err
	}
	return nil
}

// Next advances to the next fragment, transparently crossing segment
// boundaries when local tools run.
func (s *turnSource) Next() bool {
	for {
		if s.err != nil {
			return false
		}
		if len(s.queue) > 0 {
			s.current = s.queue[0]
			s.queue = s.queue[1:]
			return true
		}
		if s.sse == nil {
			return false
		}
		if !s.sse.Next() {
			if err := s.sse.Err(); err != nil {
				s.err = err
				return false
			}
			s.sse = nil
			if !s.nextSegment() && len(s.queue) == 0 {
				return false
			}
			continue
		}
		frag, ok := s.translate(s.sse.Current())
		if !ok {
			continue
		}
		s.current = frag
		return true
	}
}

func (s *turnSource) Current() stream.Fragment { return s.current }
func (s *turnSource) Err() error               { return s.err }

// FinalOutput returns the output items of the last completed response.
func (s *turnSource) FinalOutput() []stream.OutputItem { return s.final }

// translate maps one provider stream event to at most one fragment.
func (s *turnSource) translate(ev oresponses.ResponseStreamEventUnion) (stream.Fragment, bool) {
	switch ev.Type {
	case "response.output_text.delta":
		delta := ev.Delta.OfString
		if delta == "" {
			return stream.Fragment{}, false
		}
		return stream.Fragment{Kind: stream.KindText, Text: delta, Raw: eventEnvelope{ev}}, true

	case "response.reasoning_summary_text.delta", "response.reasoning_text.delta":
		delta := ev.Delta.OfString
		if delta == "" {
			return stream.Fragment{}, false
		}
		return stream.Fragment{Kind: stream.KindReasoningDelta, Text: delta, Raw: eventEnvelope{ev}}, true

	case "response.output_item.added":
		item := ev.Item
		if item.Type == "function_call" {
			return stream.Fragment{
				Kind:   stream.KindToolCallStart,
				CallID: firstNonEmpty(item.CallID, item.ID),
				Name:   item.Name,
				Raw:    eventEnvelope{ev},
			}, true
		}
		return s.hostedFragment(ev, item.Type)

	case "response.function_call_arguments.delta":
		delta := ev.Delta.OfString
		if delta != "" {
			s.callArgs[ev.ItemID] += delta
		}
		return stream.Fragment{}, false

	case "response.function_call_arguments.done":
		if args := strings.TrimSpace(ev.Arguments); args != "" {
			s.callArgs[ev.ItemID] = args
		}
		return stream.Fragment{}, false

	case "response.output_item.done":
		item := ev.Item
		switch item.Type {
		case "function_call":
			args := item.Arguments
			if args == "" {
				args = s.callArgs[item.ID]
			}
			s.calls = append(s.calls, functionCall{
				callID:    firstNonEmpty(item.CallID, item.ID),
				name:      item.Name,
				arguments: args,
			})
			return stream.Fragment{}, false
		case "message":
			// No new text here, only citation evidence.
			anns := messageAnnotations(item)
			if len(anns) == 0 {
				return stream.Fragment{}, false
			}
			return stream.Fragment{Kind: stream.KindText, Annotations: anns, Raw: eventEnvelope{ev}}, true
		default:
			return s.hostedFragment(ev, item.Type)
		}

	case "response.completed":
		s.lastID = ev.Response.ID
		s.final = outputItems(ev.Response.Output)
		return stream.Fragment{Kind: stream.KindUsage, Raw: eventEnvelope{ev}}, true

	default:
		if _, ok := stream.MatchHostedTool(ev.Type); ok {
			return stream.Fragment{Kind: stream.KindHostedToolEvent, Raw: eventEnvelope{ev}}, true
		}
		return stream.Fragment{Kind: stream.KindUnknown, Raw: eventEnvelope{ev}}, true
	}
}

// hostedFragment wraps an output-item event as hosted tool evidence when
// the item type matches a hosted tool.
func (s *turnSource) hostedFragment(ev oresponses.ResponseStreamEventUnion, itemType string) (stream.Fragment, bool) {
	if _, ok := stream.MatchHostedTool(itemType); !ok {
		return stream.Fragment{Kind: stream.KindUnknown, Raw: eventEnvelope{ev}}, true
	}
	return stream.Fragment{Kind: stream.KindHostedToolEvent, Raw: itemEnvelope{ev}}, true
}

// nextSegment executes the pending local tool calls and opens the follow-up
// request chained to the previous response. It reports whether a new
// segment was opened.
func (s *turnSource) nextSegment() bool {
	if len(s.calls) == 0 || s.registry == nil {
		return false
	}
	if s.segments >= maxToolSegments {
		log.Warnf("agent: tool segment limit reached (%d), stopping tool loop", maxToolSegments)
		s.calls = nil
		return false
	}

	calls := s.calls
	s.calls = nil
	items := oresponses.ResponseInputParam{}
	for _, call := range calls {
		output, err := s.registry.Call(s.ctx, call.name, json.RawMessage(call.arguments))
		if err != nil {
			log.Errorf("agent: tool %s failed: %v", call.name, err)
			output = fmt.Sprintf(`{"error":%q,"status":"failed"}`, err.Error())
		}
		s.queue = append(s.queue, stream.Fragment{
			Kind:   stream.KindToolCallResult,
			CallID: call.callID,
			Name:   call.name,
		})
		items = append(items, oresponses.ResponseInputItemParamOfFunctionCallOutput(call.callID, output))
	}

	params := s.params
	params.PreviousResponseID = openai.String(s.lastID)
	params.Input = oresponses.ResponseNewParamsInputUnion{OfInputItemList: items}
	s.segments++
	s.sse = s.client.Responses.NewStreaming(s.ctx, params)
	if err := s.sse.Err(); err != nil {
		s.err = err
		s.sse = nil
	}
	return true
}

// eventEnvelope exposes a raw stream event to the normalizer.
type eventEnvelope struct {
	ev oresponses.ResponseStreamEventUnion
}

func (e eventEnvelope) TypeString() string { return e.ev.Type }

func (e eventEnvelope) ItemID() string {
	if e.ev.ItemID != "" {
		return e.ev.ItemID
	}
	return e.ev.Item.ID
}

func (e eventEnvelope) OutputItems() []stream.OutputItem {
	return outputItems(e.ev.Response.Output)
}

// itemEnvelope exposes an output-item event keyed by the item's own type,
// which carries the hosted tool identity for added/done notifications.
type itemEnvelope struct {
	ev oresponses.ResponseStreamEventUnion
}

func (e itemEnvelope) TypeString() string {
	// added -> in progress, done -> finished
	suffix := ""
	if strings.HasSuffix(e.ev.Type, ".done") {
		suffix = ".done"
	}
	return e.ev.Item.Type + suffix
}

func (e itemEnvelope) ItemID() string { return e.ev.Item.ID }

func (e itemEnvelope) OutputItems() []stream.OutputItem { return nil }

func outputItems(items []oresponses.ResponseOutputItemUnion) []stream.OutputItem {
	out := make([]stream.OutputItem, 0, len(items))
	for _, item := range items {
		out = append(out, stream.OutputItem{Type: item.Type, ID: item.ID})
	}
	return out
}

func messageAnnotations(item oresponses.ResponseOutputItemUnion) []stream.Annotation {
	var anns []stream.Annotation
	for _, part := range item.Content {
		if part.Type != "output_text" {
			continue
		}
		for _, ann := range part.Annotations {
			anns = append(anns, stream.Annotation{Type: ann.Type})
		}
	}
	return anns
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
