package server

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

const maxMessageLength = 10000

// ChatRequest is the incoming chat payload.
type ChatRequest struct {
	Message          string   `json:"message"`
	ThreadID         string   `json:"thread_id"`
	Platforms        []string `json:"platforms"`
	ContentType      string   `json:"content_type"`
	Language         string   `json:"language"`
	ReasoningEffort  string   `json:"reasoning_effort"`
	ReasoningSummary string   `json:"reasoning_summary"`
	ABMode           bool     `json:"ab_mode"`
	Bilingual        bool     `json:"bilingual"`
	BilingualStyle   string   `json:"bilingual_style"`
}

// Validate checks the payload and fills in defaults.
func (r *ChatRequest) Validate() error {
	if r.Message == "" {
		return errors.New("message is required")
	}
	if utf8.RuneCountInString(r.Message) > maxMessageLength {
		return fmt.Errorf("message exceeds %d characters", maxMessageLength)
	}
	if len(r.Platforms) == 0 {
		r.Platforms = []string{"linkedin", "x", "instagram"}
	}
	if r.ContentType == "" {
		r.ContentType = "product_launch"
	}
	if r.Language == "" {
		r.Language = "en"
	}
	if r.ReasoningEffort == "" {
		r.ReasoningEffort = "medium"
	}
	if r.ReasoningSummary == "" {
		r.ReasoningSummary = "auto"
	}
	if r.BilingualStyle == "" {
		r.BilingualStyle = "parallel"
	}
	return nil
}
