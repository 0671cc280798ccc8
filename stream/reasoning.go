package stream

import (
	"strings"
	"time"
)

// DefaultReasoningInterval is the minimum wall-clock gap between reasoning
// update emissions. The final buffer is always flushed once more at turn
// end regardless of the gate.
const DefaultReasoningInterval = 100 * time.Millisecond

// MergeReasoning merges one upstream reasoning fragment into the
// accumulated buffer. Upstream providers inconsistently send either
// full-cumulative text or incremental deltas within the same turn, so the
// rule is, in priority order:
//
//  1. the fragment reproduces the whole buffer at its start: upstream
//     sent cumulative text, replace the buffer with it;
//  2. the buffer already ends with the fragment: duplicate retransmission,
//     ignore it;
//  3. otherwise the fragment is a genuine delta, append it.
//
// The result never shortens the buffer.
func MergeReasoning(buf, delta string) string {
	if buf != "" && strings.HasPrefix(delta, buf) {
		return delta
	}
	if strings.HasSuffix(buf, delta) {
		return buf
	}
	return buf + delta
}

// throttle gates reasoning emissions to at most one per interval,
// independent of fragment arrival rate.
type throttle struct {
	interval time.Duration
	now      func() time.Time
	last     time.Time
}

// allow reports whether an emission is admitted now, and records the
// emission time when it is.
func (t *throttle) allow() bool {
	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}
