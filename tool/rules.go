package tool

// PlatformRule holds the formatting constraints for one social platform.
type PlatformRule struct {
	MaxChars     int
	Tone         string
	Format       string
	HashtagCount string
	ImageSize    string
}

// platformRules drives content generation and review for each platform.
// Unknown platforms fall back to the linkedin rules.
var platformRules = map[string]PlatformRule{
	"linkedin": {
		MaxChars:     3000,
		Tone:         "Professional, data-driven, thought leadership",
		Format:       "Use paragraphs, bullet points, and a strong opening hook. Include a CTA.",
		HashtagCount: "3-5 relevant industry hashtags",
		ImageSize:    "1200x627",
	},
	"x": {
		MaxChars:     280,
		Tone:         "Casual, witty, developer-community voice",
		Format:       "Hook in first line. Concise. Use emoji sparingly. Thread format for longer content.",
		HashtagCount: "1-2 highly relevant hashtags",
		ImageSize:    "1200x675",
	},
	"instagram": {
		MaxChars:     2200,
		Tone:         "Visual-first, approachable, storytelling",
		Format:       "Start with a hook. Use emoji. Line breaks for readability. Strong CTA at end.",
		HashtagCount: "5-10 hashtags (mix of popular and niche)",
		ImageSize:    "1080x1080",
	},
}

// RuleFor returns the rules for a platform, defaulting to linkedin.
func RuleFor(platform string) PlatformRule {
	if rule, ok := platformRules[platform]; ok {
		return rule
	}
	return platformRules["linkedin"]
}

// generationSizes maps platforms to the sizes the image model supports.
// LinkedIn and X take landscape, Instagram square.
var generationSizes = map[string]string{
	"linkedin":  "1536x1024",
	"x":         "1536x1024",
	"instagram": "1024x1024",
}

// GenerationSize returns the image model size for a platform.
func GenerationSize(platform string) string {
	if size, ok := generationSizes[platform]; ok {
		return size
	}
	return "1024x1024"
}

// displayDimensions are the recommended display dimensions per platform,
// included in prompts as aspect guidance.
var displayDimensions = map[string]struct {
	Aspect string
	Label  string
}{
	"linkedin":  {Aspect: "1.91:1", Label: "Landscape"},
	"x":         {Aspect: "16:9", Label: "Landscape"},
	"instagram": {Aspect: "1:1", Label: "Square"},
}
