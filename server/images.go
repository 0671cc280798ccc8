package server

import (
	"encoding/json"
	"regexp"
	"strings"
)

var jsonFencePattern = regexp.MustCompile("```json\\s*\\n?([\\s\\S]*?)```")

type contentItem struct {
	Platform    string `json:"platform"`
	ImagePrompt string `json:"image_prompt"`
}

type contentVariant struct {
	Contents []contentItem `json:"contents"`
}

type contentOutput struct {
	Contents []contentItem  `json:"contents"`
	VariantA contentVariant `json:"variant_a"`
	VariantB contentVariant `json:"variant_b"`
}

// extractImagePrompts pulls platform -> image_prompt pairs from the
// assistant's structured JSON output, handling both the normal and the A/B
// variant shapes. First prompt per platform wins across variants.
func extractImagePrompts(content string) map[string]string {
	if content == "" {
		return nil
	}
	jsonStr := strings.TrimSpace(content)
	if m := jsonFencePattern.FindStringSubmatch(content); m != nil {
		jsonStr = strings.TrimSpace(m[1])
	}
	if !strings.HasPrefix(jsonStr, "{") {
		return nil
	}

	var parsed contentOutput
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return nil
	}

	prompts := make(map[string]string)
	collect := func(items []contentItem) {
		for _, item := range items {
			platform := strings.ToLower(strings.TrimSpace(item.Platform))
			prompt := strings.TrimSpace(item.ImagePrompt)
			if platform == "" || prompt == "" {
				continue
			}
			if _, ok := prompts[platform]; !ok {
				prompts[platform] = prompt
			}
		}
	}
	collect(parsed.Contents)
	collect(parsed.VariantA.Contents)
	collect(parsed.VariantB.Contents)
	return prompts
}
