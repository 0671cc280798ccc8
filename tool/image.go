package tool

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/openai/openai-go"
	oresponses "github.com/openai/openai-go/responses"
	oshared "github.com/openai/openai-go/shared"

	"github.com/socialstudio/studio/artifact"
	"github.com/socialstudio/studio/log"
)

// ImageGenerator generates platform visuals through the hosted
// image_generation tool. Generated payloads never pass through the model
// context: they are parked in the turn's artifact store and surfaced as
// image events after streaming, while the model only sees metadata.
type ImageGenerator struct {
	client openai.Client
	model  string
}

// NewImageGenerator creates an image generator bound to a client and model.
func NewImageGenerator(client openai.Client, model string) *ImageGenerator {
	return &ImageGenerator{client: client, model: model}
}

// Definition returns the generate_image tool bound to one turn.
func (g *ImageGenerator) Definition(turnID string) Definition {
	return Definition{
		Name: "generate_image",
		Description: "Generate a social media visual from a text prompt. " +
			"Creates a platform-optimized image; the image is displayed automatically, " +
			"only metadata is returned.",
		Parameters: objectSchema(map[string]any{
			"prompt":   stringParam("Detailed image generation prompt in English"),
			"platform": stringParam("Target platform: linkedin, x, or instagram"),
			"style":    stringParam("Visual style: photo, illustration, minimal, abstract"),
		}, "prompt", "platform"),
		Execute: func(ctx context.Context, args json.RawMessage) (string, error) {
			return g.generate(ctx, turnID, args)
		},
	}
}

func (g *ImageGenerator) generate(ctx context.Context, turnID string, args json.RawMessage) (string, error) {
	var in struct {
		Prompt   string `json:"prompt"`
		Platform string `json:"platform"`
		Style    string `json:"style"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("generate_image: bad arguments: %w", err)
	}
	if in.Style == "" {
		in.Style = "photo"
	}

	platform := normalizePlatform(in.Platform)
	size := GenerationSize(platform)
	dims := displayDimensions[platform]
	prompt := fmt.Sprintf(
		"%s. Style: %s. Optimized for %s social media. Aspect ratio: %s (%s, %s). "+
			"Professional, modern, high quality. No text overlays.",
		in.Prompt, in.Style, platform, dims.Aspect, dims.Label, size,
	)

	log.Infof("generate_image called: platform=%s, style=%s, prompt=%s...",
		platform, in.Style, truncate(in.Prompt, 60))

	resp, err := g.client.Responses.New(ctx, oresponses.ResponseNewParams{
		Model: oshared.ResponsesModel(g.model),
		Input: oresponses.ResponseNewParamsInputUnion{OfString: openai.String(prompt)},
		Tools: []oresponses.ToolUnionParam{
			{OfImageGeneration: &oresponses.ToolImageGenerationParam{}},
		},
	})
	if err != nil {
		// Reported to the model as a failed tool result, not an error:
		// the turn continues without the visual.
		log.Errorf("generate_image failed: platform=%s: %v", platform, err)
		return marshalResult(map[string]any{
			"platform": platform,
			"error":    fmt.Sprintf("Image generation failed: %v", err),
			"status":   "failed",
		})
	}

	imageB64 := extractImageResult(resp)
	if imageB64 == "" {
		log.Warnf("generate_image: no image data in response: platform=%s", platform)
		return marshalResult(map[string]any{
			"platform": platform,
			"error":    "Image generation returned no image data.",
			"status":   "failed",
		})
	}

	artifact.Save(ctx, turnID, platform, artifact.Artifact{
		Data:     imageB64,
		MimeType: "image/png",
	})
	log.Infof("image stored: platform=%s, b64_length=%d", platform, len(imageB64))

	return marshalResult(map[string]any{
		"platform": platform,
		"size":     size,
		"style":    in.Style,
		"status":   "generated",
		"message": fmt.Sprintf(
			"Image successfully generated for %s (%s). "+
				"The image will be automatically displayed in the content card.",
			platform, size,
		),
	})
}

// extractImageResult pulls the base64 payload from the first
// image_generation_call output item.
func extractImageResult(resp *oresponses.Response) string {
	if resp == nil {
		return ""
	}
	for _, item := range resp.Output {
		if item.Type == "image_generation_call" {
			return item.AsImageGenerationCall().Result
		}
	}
	return ""
}
