package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"github.com/i474232898/shutterscout/internal/scout"
)

const scoutPrompt = `You are ShutterScout AI, a photography location scout assistant.
Your goal is to help photographers find great locations to shoot and determine the best time to photograph them.

For each recommended location, provide:
- A brief description of the place
- Best time to photograph (based on sunrise/sunset and weather)
- Weather conditions to expect
- Example photos from other photographers
- Tips for shooting at this location

Focus on providing practical, actionable information that helps photographers plan their shoots.

Using the data below, recommend %d interesting places to photograph.
Include weather conditions, best time to shoot based on sunrise/sunset, and example photos.
Format the response in a clear, easy-to-read way.

Data (JSON):
%s`

// Narrator writes a natural-language report with Claude.
type Narrator struct {
	client          anthropic.Client
	model           string
	maxTokens       int64
	timeout         time.Duration
	recommendations int
}

// NewNarrator creates a Narrator for the given API key. Extra options are
// passed to the Anthropic client.
func NewNarrator(apiKey string, opts ...option.RequestOption) *Narrator {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Narrator{
		client:          anthropic.NewClient(opts...),
		model:           string(anthropic.ModelClaudeSonnet4_5_20250929),
		maxTokens:       2048,
		timeout:         90 * time.Second,
		recommendations: 2,
	}
}

// Narrate asks the model for recommendations grounded in result.
func (n *Narrator) Narrate(ctx context.Context, result scout.CompositeResult) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode composite: %w", err)
	}

	requestID := uuid.New().String()
	start := time.Now()

	message, err := n.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(n.model),
		MaxTokens: n.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(fmt.Sprintf(scoutPrompt, n.recommendations, data)),
			),
		},
	})
	if err != nil {
		log.Printf("ERROR: narration %s failed after %s: %v", requestID, time.Since(start), err)
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		return "", fmt.Errorf("claude api returned empty response")
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude api returned unexpected response type")
	}

	log.Printf("INFO: narration %s completed in %s (%d chars)", requestID, time.Since(start), len(textBlock.Text))
	return textBlock.Text, nil
}
