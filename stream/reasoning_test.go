package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMergeReasoning(t *testing.T) {
	tests := []struct {
		name  string
		buf   string
		delta string
		want  string
	}{
		{"empty buffer", "", "Thinking", "Thinking"},
		{"cumulative replaces", "Thinking", "Thinking about X", "Thinking about X"},
		{"duplicate ignored", "Thinking about X", "about X", "Thinking about X"},
		{"exact retransmission", "Thinking", "Thinking", "Thinking"},
		{"genuine delta appends", "Thinking", " harder", "Thinking harder"},
		{"empty delta", "Thinking", "", "Thinking"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeReasoning(tt.buf, tt.delta))
		})
	}
}

func TestMergeReasoningNeverShortens(t *testing.T) {
	deltas := []string{"a", "ab", "b", "abc", "c", "abcd", "abcd"}
	buf := ""
	for _, d := range deltas {
		next := MergeReasoning(buf, d)
		assert.GreaterOrEqual(t, len(next), len(buf), "merge of %q into %q shortened the buffer", d, buf)
		buf = next
	}
}

func TestThrottleAllow(t *testing.T) {
	at := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	th := throttle{interval: 100 * time.Millisecond, now: func() time.Time { return at }}

	assert.True(t, th.allow(), "first emission always admitted")
	assert.False(t, th.allow(), "same instant rejected")

	at = at.Add(50 * time.Millisecond)
	assert.False(t, th.allow(), "inside interval rejected")

	at = at.Add(50 * time.Millisecond)
	assert.True(t, th.allow(), "interval elapsed")
	assert.False(t, th.allow(), "gate re-armed after emission")
}
