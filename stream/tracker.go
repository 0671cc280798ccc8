package stream

import (
	"sort"

	"github.com/google/uuid"

	"github.com/socialstudio/studio/event"
)

// Tracker guarantees at most one "started" and one "completed" event per
// logical tool invocation, however many times the upstream repeats the same
// evidence. Upstream providers are known to resend identical fragments on
// every incremental update.
type Tracker struct {
	started   map[string]struct{}
	completed map[string]struct{}
	// names resolves an invocation identity to its tool name; completion
	// evidence often arrives without one.
	names map[string]string
	// detected holds the canonical hosted tool names seen through any
	// hosted detection path.
	detected map[string]struct{}
}

// NewTracker creates an empty tracker for one turn.
func NewTracker() *Tracker {
	return &Tracker{
		started:   make(map[string]struct{}),
		completed: make(map[string]struct{}),
		names:     make(map[string]string),
		detected:  make(map[string]struct{}),
	}
}

// Identity resolves the invocation identity for a fragment: the explicit
// correlation id when present, else the tool name, else a synthesized id.
// Distinct invocations of the same unnamed tool within one turn therefore
// collapse into one logical invocation; that is an accepted simplification.
func (t *Tracker) Identity(callID, name string) string {
	if callID != "" {
		return callID
	}
	if name != "" {
		return name
	}
	return "call_" + uuid.NewString()
}

// RecordStart records start evidence for an identity and returns the
// events to emit: one started event the first time, nothing on repeats.
func (t *Tracker) RecordStart(identity, name string) []event.Event {
	if _, ok := t.started[identity]; ok {
		return nil
	}
	t.started[identity] = struct{}{}
	name = t.rememberName(identity, name)
	return []event.Event{event.NewToolEvent(name, event.ToolStatusStarted, "")}
}

// RecordCompletion records completion evidence for an identity and returns
// the events to emit: nothing on repeats, a completed event when the start
// was already emitted, or a synthesized started event immediately followed
// by the completed event when result evidence arrives without a prior
// start. Started always precedes completed in the emitted sequence.
func (t *Tracker) RecordCompletion(identity, name string) []event.Event {
	if _, ok := t.completed[identity]; ok {
		return nil
	}
	t.completed[identity] = struct{}{}
	name = t.rememberName(identity, name)

	var events []event.Event
	if _, ok := t.started[identity]; !ok {
		t.started[identity] = struct{}{}
		events = append(events, event.NewToolEvent(name, event.ToolStatusStarted, ""))
	}
	return append(events, event.NewToolEvent(name, event.ToolStatusCompleted, ""))
}

// ResolveName returns the tool name recorded for an identity, or empty.
func (t *Tracker) ResolveName(identity string) string {
	return t.names[identity]
}

// MarkDetected records that a canonical hosted tool was detected through
// any path (raw event, citation, usage scan).
func (t *Tracker) MarkDetected(tool string) {
	t.detected[tool] = struct{}{}
}

// Detected reports whether a canonical hosted tool was already detected.
func (t *Tracker) Detected(tool string) bool {
	_, ok := t.detected[tool]
	return ok
}

// UsedTools returns the sorted union of detected hosted tools and resolved
// invocation names, for telemetry attributes.
func (t *Tracker) UsedTools() []string {
	seen := make(map[string]struct{}, len(t.detected)+len(t.names))
	for tool := range t.detected {
		seen[tool] = struct{}{}
	}
	for _, name := range t.names {
		if name != "" {
			seen[name] = struct{}{}
		}
	}
	tools := make([]string, 0, len(seen))
	for tool := range seen {
		tools = append(tools, tool)
	}
	sort.Strings(tools)
	return tools
}

// rememberName records the identity to name mapping, resolving an empty
// name from earlier evidence or falling back to the unknown placeholder.
func (t *Tracker) rememberName(identity, name string) string {
	if name == "" {
		name = t.names[identity]
	}
	if name == "" {
		name = ToolUnknown
	}
	if _, ok := t.names[identity]; !ok || name != ToolUnknown {
		t.names[identity] = name
	}
	return name
}
