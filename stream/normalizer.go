package stream

import (
	"context"
	"sort"
	"time"

	"github.com/socialstudio/studio/artifact"
	"github.com/socialstudio/studio/event"
	"github.com/socialstudio/studio/log"
)

// Normalizer converts one upstream fragment sequence into a clean,
// de-duplicated domain event sequence. It holds all turn-scoped state
// (reasoning buffer, tool tracker, artifact store reference), so one
// Normalizer is created per turn and never shared.
type Normalizer struct {
	throttle   throttle
	tracker    *Tracker
	store      *artifact.Store
	configured []string

	reasoning string
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithArtifactStore attaches the turn's pending-image store, drained during
// end-of-turn finalization.
func WithArtifactStore(store *artifact.Store) Option {
	return func(n *Normalizer) { n.store = store }
}

// WithConfiguredTools declares the canonical hosted tools attached to this
// turn. Finalization synthesizes events for configured tools that ran
// without producing any streaming evidence.
func WithConfiguredTools(tools ...string) Option {
	return func(n *Normalizer) { n.configured = tools }
}

// WithThrottleInterval overrides the reasoning emission interval.
func WithThrottleInterval(interval time.Duration) Option {
	return func(n *Normalizer) { n.throttle.interval = interval }
}

// WithNow overrides the throttle clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(n *Normalizer) { n.throttle.now = now }
}

// New creates a Normalizer for one turn.
func New(opt ...Option) *Normalizer {
	n := &Normalizer{
		throttle: throttle{interval: DefaultReasoningInterval, now: time.Now},
		tracker:  NewTracker(),
	}
	for _, o := range opt {
		o(n)
	}
	return n
}

// Tracker exposes the turn's tool tracker for telemetry attributes.
func (n *Normalizer) Tracker() *Tracker {
	return n.tracker
}

// Run consumes src in a single forward pass and sends domain events to out
// as they are produced. It does not close out. When the upstream source
// fails, Run emits a single Error event with a user-facing message as the
// last event and returns the original fault so callers can log it.
// Returning because ctx was cancelled means the consumer went away; no
// further events are synthesized.
func (n *Normalizer) Run(ctx context.Context, src Source, out chan<- event.Event) error {
	for src.Next() {
		for _, ev := range n.process(src.Current()) {
			if !emit(ctx, out, ev) {
				return ctx.Err()
			}
		}
	}
	if err := src.Err(); err != nil {
		// Partial reasoning and pending images are discarded; already
		// emitted events stand.
		emit(ctx, out, event.NewError(UserMessage(err)))
		return err
	}
	return n.finalize(ctx, src, out)
}

// process maps one fragment to zero or more domain events, mutating the
// turn state.
func (n *Normalizer) process(frag Fragment) []event.Event {
	switch frag.Kind {
	case KindReasoningDelta:
		n.reasoning = MergeReasoning(n.reasoning, frag.Text)
		if n.reasoning != "" && n.throttle.allow() {
			return []event.Event{event.NewReasoningUpdate(n.reasoning)}
		}
		return nil

	case KindToolCallStart:
		identity := n.tracker.Identity(frag.CallID, frag.Name)
		return n.tracker.RecordStart(identity, frag.Name)

	case KindToolCallResult:
		identity := n.tracker.Identity(frag.CallID, frag.Name)
		name := frag.Name
		if name == "" {
			name = n.tracker.ResolveName(identity)
		}
		return n.tracker.RecordCompletion(identity, name)

	case KindHostedToolEvent:
		return n.processHosted(frag)

	case KindText:
		return n.processText(frag)

	case KindUsage:
		return n.processUsage(frag)

	default:
		if frag.Raw != nil {
			log.Debugf("stream: unknown fragment type: %s", frag.Raw.TypeString())
		}
		return nil
	}
}

// processHosted matches a raw provider event against the hosted pattern
// table and feeds it to the tracker as start or completion evidence.
func (n *Normalizer) processHosted(frag Fragment) []event.Event {
	if frag.Raw == nil {
		return nil
	}
	rawType := frag.Raw.TypeString()
	tool, ok := MatchHostedTool(rawType)
	if !ok {
		return nil
	}
	identity := frag.Raw.ItemID()
	if identity == "" {
		identity = tool
	}
	n.tracker.MarkDetected(tool)
	if hostedEventCompleted(rawType) {
		return n.tracker.RecordCompletion(identity, tool)
	}
	return n.tracker.RecordStart(identity, tool)
}

// processText emits the text chunk and synthesizes start+completed pairs
// for hosted tools proven by citations when no explicit call events were
// seen for them.
func (n *Normalizer) processText(frag Fragment) []event.Event {
	var events []event.Event
	if frag.Text != "" {
		events = append(events, event.NewTextChunk(frag.Text))
	}
	for _, ann := range frag.Annotations {
		tool, ok := CitationTool(ann.Type)
		if !ok || n.tracker.Detected(tool) {
			continue
		}
		n.tracker.MarkDetected(tool)
		identity := citationIdentity(tool)
		events = append(events, n.tracker.RecordStart(identity, tool)...)
		events = append(events, n.tracker.RecordCompletion(identity, tool)...)
	}
	return events
}

// processUsage scans the completion envelope's enumerated output items for
// hosted tool evidence missed during streaming. This is the most reliable
// detection path: some upstream SDK versions never surface hosted tool
// calls as individual stream events.
func (n *Normalizer) processUsage(frag Fragment) []event.Event {
	if frag.Raw == nil {
		return nil
	}
	var events []event.Event
	for _, item := range frag.Raw.OutputItems() {
		tool, ok := MatchHostedTool(item.Type)
		if !ok {
			continue
		}
		identity := item.ID
		if identity == "" {
			identity = tool
		}
		n.tracker.MarkDetected(tool)
		events = append(events, n.tracker.RecordStart(identity, tool)...)
		events = append(events, n.tracker.RecordCompletion(identity, tool)...)
	}
	return events
}

// finalize runs exactly once after the upstream sequence is exhausted
// without error: flush the reasoning buffer, synthesize events for
// configured tools that produced no streaming evidence, drain the pending
// images, and emit Done.
func (n *Normalizer) finalize(ctx context.Context, src Source, out chan<- event.Event) error {
	if n.reasoning != "" {
		if !emit(ctx, out, event.NewReasoningUpdate(n.reasoning)) {
			return ctx.Err()
		}
	}

	for _, ev := range n.scanFinalOutput(src.FinalOutput()) {
		if !emit(ctx, out, ev) {
			return ctx.Err()
		}
	}

	if n.store != nil {
		drained := n.store.Drain()
		platforms := make([]string, 0, len(drained))
		for platform := range drained {
			platforms = append(platforms, platform)
		}
		sort.Strings(platforms)
		for _, platform := range platforms {
			if !emit(ctx, out, event.NewImageReady(platform, drained[platform].Data)) {
				return ctx.Err()
			}
		}
		if len(platforms) > 0 {
			log.Infof("stream: emitted %d image(s): %v", len(platforms), platforms)
		}
	}

	if !emit(ctx, out, event.NewDone()) {
		return ctx.Err()
	}
	return nil
}

// scanFinalOutput synthesizes start+completed pairs for configured hosted
// tools whose usage only shows in the final response object.
func (n *Normalizer) scanFinalOutput(items []OutputItem) []event.Event {
	if len(items) == 0 || len(n.configured) == 0 {
		return nil
	}
	configured := make(map[string]struct{}, len(n.configured))
	for _, tool := range n.configured {
		configured[tool] = struct{}{}
	}
	var events []event.Event
	for _, item := range items {
		tool, ok := MatchHostedTool(item.Type)
		if !ok {
			continue
		}
		if _, ok := configured[tool]; !ok {
			continue
		}
		if n.tracker.Detected(tool) {
			continue
		}
		identity := item.ID
		if identity == "" {
			identity = tool
		}
		log.Infof("stream: hosted tool from final response: type=%s -> %s (id=%s)", item.Type, tool, identity)
		n.tracker.MarkDetected(tool)
		events = append(events, n.tracker.RecordStart(identity, tool)...)
		events = append(events, n.tracker.RecordCompletion(identity, tool)...)
	}
	return events
}

// emit sends one event unless the consumer's context is gone.
func emit(ctx context.Context, out chan<- event.Event, ev event.Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
