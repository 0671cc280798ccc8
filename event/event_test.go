package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	r := NewReasoningUpdate("thinking about X")
	assert.Equal(t, TypeReasoning, r.Type)
	assert.Equal(t, "thinking about X", r.Reasoning)

	before := time.Now().UTC()
	te := NewToolEvent("web_search", ToolStatusStarted, "")
	assert.Equal(t, TypeTool, te.Type)
	assert.Equal(t, "web_search", te.Tool)
	assert.Equal(t, ToolStatusStarted, te.Status)
	assert.False(t, te.Timestamp.Before(before))

	txt := NewTextChunk("Done.")
	assert.Equal(t, TypeText, txt.Type)
	assert.Equal(t, "Done.", txt.Text)

	img := NewImageReady("linkedin", "aGVsbG8=")
	assert.Equal(t, TypeImage, img.Type)
	assert.Equal(t, "linkedin", img.Platform)
	assert.Equal(t, "aGVsbG8=", img.ImageBase64)

	assert.Equal(t, TypeDone, NewDone().Type)

	e := NewError("boom")
	assert.Equal(t, TypeError, e.Type)
	assert.Equal(t, "boom", e.Error)
}

func TestToolEventMessage(t *testing.T) {
	te := NewToolEvent("retry", ToolStatusStarted, "Retrying... (attempt 2)")
	assert.Equal(t, "Retrying... (attempt 2)", te.Message)
}
