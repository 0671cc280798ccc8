// Package stream normalizes the heterogeneous, duplicate-prone fragment
// stream of a hosted agent run into a clean, ordered sequence of domain
// events. It consumes each turn's upstream sequence exactly once and
// guarantees idempotent tool lifecycle emission.
package stream

// Kind discriminates upstream fragments. The set is closed; KindUnknown is
// the forward-compatibility arm for provider event types added upstream.
type Kind int

const (
	// KindUnknown is any fragment the adapter could not classify.
	KindUnknown Kind = iota
	// KindReasoningDelta carries reasoning text, either cumulative or
	// incremental depending on upstream mood.
	KindReasoningDelta
	// KindToolCallStart is direct evidence that a tool invocation began.
	KindToolCallStart
	// KindToolCallResult is direct evidence that a tool invocation finished.
	KindToolCallResult
	// KindHostedToolEvent is a raw provider event hinting at hosted tool
	// activity (web search, file search, MCP).
	KindHostedToolEvent
	// KindText carries assistant output text and citation annotations.
	KindText
	// KindUsage is the completion/usage envelope carrying the enumerated
	// response output items.
	KindUsage
)

// Annotation is a citation marker attached to a text fragment. Citations
// are proof of hosted tool use even when the explicit call events were
// missed.
type Annotation struct {
	// Type is the provider annotation type tag, e.g. "url_citation".
	Type string
}

// OutputItem is one enumerated item of a completed upstream response,
// reduced to what best-effort hosted-tool detection needs.
type OutputItem struct {
	// Type is the provider item type tag, e.g. "web_search_call".
	Type string
	// ID is the provider item identifier, possibly empty.
	ID string
}

// Envelope wraps a provider-specific raw event. Only best-effort pattern
// extraction reads it, so swapping the upstream provider means swapping
// Envelope implementations without touching normalizer logic.
type Envelope interface {
	// TypeString returns the raw provider event type tag.
	TypeString() string
	// ItemID returns the provider item identifier, or empty.
	ItemID() string
	// OutputItems enumerates the response output items carried by a
	// usage/completion envelope, in upstream order.
	OutputItems() []OutputItem
}

// Fragment is one atomic unit of the upstream agent stream.
type Fragment struct {
	Kind Kind
	// CallID is the opaque correlation identifier, possibly empty.
	CallID string
	// Name is the tool name, possibly empty (resolved later from CallID).
	Name string
	// Text is the payload for reasoning and text fragments.
	Text string
	// Annotations are citation markers attached to a text fragment.
	Annotations []Annotation
	// Raw is the opaque provider envelope for hosted and usage fragments.
	Raw Envelope
}

// Source yields the fragments of one agent turn. It follows the iterator
// shape of SSE stream decoders: Next advances, Current returns the fragment,
// and Err reports the terminal error once Next has returned false.
type Source interface {
	Next() bool
	Current() Fragment
	Err() error
	// FinalOutput enumerates the final response output items after the
	// stream is exhausted, or nil when the final response is unavailable.
	FinalOutput() []OutputItem
}
