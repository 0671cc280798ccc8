package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/socialstudio/studio/log"
)

// NewGenerateContent returns the generate_content tool: it resolves the
// platform's rules and returns structured generation instructions for the
// model to follow. The model writes the actual copy.
func NewGenerateContent() Definition {
	return Definition{
		Name: "generate_content",
		Description: "Generate platform-optimized social media content. " +
			"Applies platform-specific character limits, tone, and formatting rules.",
		Parameters: objectSchema(map[string]any{
			"topic":    stringParam("The content topic or theme"),
			"platform": stringParam("Target platform: linkedin, x, or instagram"),
			"strategy": stringParam("Content strategy and key points from analysis"),
			"language": stringParam("Output language: en or ja"),
		}, "topic", "platform"),
		Execute: generateContent,
	}
}

func generateContent(_ context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Topic    string `json:"topic"`
		Platform string `json:"platform"`
		Strategy string `json:"strategy"`
		Language string `json:"language"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("generate_content: bad arguments: %w", err)
	}

	platform := normalizePlatform(in.Platform)
	rule := RuleFor(platform)

	langInstruction := "Write in English."
	if in.Language == "ja" {
		langInstruction = "Write in natural Japanese appropriate for this platform."
	}

	result := map[string]any{
		"platform": platform,
		"rules_applied": map[string]any{
			"max_characters": rule.MaxChars,
			"tone":           rule.Tone,
			"format":         rule.Format,
		},
		"instructions": fmt.Sprintf(
			"Generate a %s post about: %s. Strategy: %s. Tone: %s. Format: %s. "+
				"Max characters: %d. Include %s. %s",
			platform, in.Topic, in.Strategy, rule.Tone, rule.Format,
			rule.MaxChars, rule.HashtagCount, langInstruction,
		),
		"status": "ready_for_generation",
	}

	log.Infof("generate_content called: platform=%s, topic=%s...", platform, truncate(in.Topic, 50))
	return marshalResult(result)
}

// NewReviewContent returns the review_content tool: automated checks plus
// the scoring rubric the model applies.
func NewReviewContent() Definition {
	return Definition{
		Name: "review_content",
		Description: "Review and score social media content on 5 quality axes: " +
			"brand_alignment, audience_relevance, engagement_potential, clarity, " +
			"and platform_optimization. Each scored 1-10.",
		Parameters: objectSchema(map[string]any{
			"content":          stringParam("The content text to review"),
			"platform":         stringParam("Target platform: linkedin, x, or instagram"),
			"brand_guidelines": stringParam("Brand guidelines summary for evaluation"),
		}, "content", "platform"),
		Execute: reviewContent,
	}
}

func reviewContent(_ context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Content         string `json:"content"`
		Platform        string `json:"platform"`
		BrandGuidelines string `json:"brand_guidelines"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("review_content: bad arguments: %w", err)
	}

	platform := normalizePlatform(in.Platform)
	rule := RuleFor(platform)
	charCount := len([]rune(in.Content))

	var checks []string
	if charCount > rule.MaxChars {
		checks = append(checks, fmt.Sprintf(
			"⚠️ Content exceeds %s limit: %d/%d characters", platform, charCount, rule.MaxChars))
	}
	if charCount == 0 {
		checks = append(checks, "⚠️ Content is empty")
	}
	if platform == "x" && charCount > 280 {
		checks = append(checks, "⚠️ X/Twitter post exceeds 280 character limit")
	}
	if !strings.Contains(in.Content, "#") {
		checks = append(checks, "💡 Consider adding hashtags for discoverability")
	}
	if checks == nil {
		checks = []string{}
	}

	result := map[string]any{
		"platform":         platform,
		"character_count":  charCount,
		"max_characters":   rule.MaxChars,
		"automated_checks": checks,
		"review_criteria": map[string]string{
			"brand_alignment":       "Does it match the brand's voice and messaging pillars?",
			"audience_relevance":    "Is it relevant to the target audience for this platform?",
			"engagement_potential":  "Will it drive likes, shares, comments?",
			"clarity":               "Is the message clear and concise?",
			"platform_optimization": fmt.Sprintf("Is it optimized for %s's format and best practices?", platform),
		},
		"brand_guidelines_provided": in.BrandGuidelines != "",
		"instructions": "Score each criterion 1-10 and provide specific improvement suggestions. " +
			"If any score is below 7, suggest concrete revisions.",
	}

	log.Infof("review_content called: platform=%s, chars=%d/%d, checks=%d",
		platform, charCount, rule.MaxChars, len(checks))
	return marshalResult(result)
}

func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func marshalResult(result map[string]any) (string, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("tool: marshal result: %w", err)
	}
	return string(data), nil
}
