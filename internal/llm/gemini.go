// Package llm wraps the Gemini API behind a text-in/text-out client.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

// GenerationConfig mirrors the recognized model options. Zero values
// fall back to the model defaults.
type GenerationConfig struct {
	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int32
	// SafetyThresholds maps harm categories to block thresholds. When
	// nil, DefaultSafetyThresholds is applied.
	SafetyThresholds map[genai.HarmCategory]genai.HarmBlockThreshold
}

// DefaultGenerationConfig keeps output deterministic enough for table
// extraction.
var DefaultGenerationConfig = GenerationConfig{
	Temperature:     0.2,
	TopP:            1,
	TopK:            1,
	MaxOutputTokens: 4096,
}

// DefaultSafetyThresholds blocks medium-and-above content in the four
// standard harm categories.
var DefaultSafetyThresholds = map[genai.HarmCategory]genai.HarmBlockThreshold{
	genai.HarmCategoryHarassment:       genai.HarmBlockThresholdBlockMediumAndAbove,
	genai.HarmCategoryHateSpeech:       genai.HarmBlockThresholdBlockMediumAndAbove,
	genai.HarmCategorySexuallyExplicit: genai.HarmBlockThresholdBlockMediumAndAbove,
	genai.HarmCategoryDangerousContent: genai.HarmBlockThresholdBlockMediumAndAbove,
}

// Client is a Gemini-backed text generator. The API key is passed to
// the constructor; there is no ambient global configuration.
type Client struct {
	client *genai.Client
	model  string
	config GenerationConfig
	// Timeout bounds a single Generate call. Zero means no timeout.
	timeout time.Duration
}

func New(ctx context.Context, apiKey, model string, config GenerationConfig, timeout time.Duration) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{client: client, model: model, config: config, timeout: timeout}, nil
}

// Generate sends prompt to the model and returns the raw response text.
// A timeout is treated like any other generation failure.
func (c *Client) Generate(ctx context.Context, promptText string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	contents := []*genai.Content{
		genai.NewContentFromText(promptText, genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, c.generateConfig())
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}

func (c *Client) generateConfig() *genai.GenerateContentConfig {
	out := &genai.GenerateContentConfig{
		MaxOutputTokens: c.config.MaxOutputTokens,
	}
	if c.config.Temperature != 0 {
		out.Temperature = genai.Ptr(c.config.Temperature)
	}
	if c.config.TopP != 0 {
		out.TopP = genai.Ptr(c.config.TopP)
	}
	if c.config.TopK != 0 {
		out.TopK = genai.Ptr(c.config.TopK)
	}

	thresholds := c.config.SafetyThresholds
	if thresholds == nil {
		thresholds = DefaultSafetyThresholds
	}
	for category, threshold := range thresholds {
		out.SafetySettings = append(out.SafetySettings, &genai.SafetySetting{
			Category:  category,
			Threshold: threshold,
		})
	}
	return out
}
