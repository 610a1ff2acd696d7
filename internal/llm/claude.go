package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	bedrockruntime "github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

type BedrockClient interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Turn is one prior exchange half fed back into the prompt.
type Turn struct {
	Role    string // "human" or "ai"
	Content string
}

// PromptInput is everything the answer prompt is conditioned on.
type PromptInput struct {
	Passages []string
	History  []Turn
	Question string
}

// BuildPrompt renders the conversational retrieval prompt: context passages,
// the prior transcript, then the new question.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder

	b.WriteString("You are an assistant answering questions about the user's uploaded documents.\n")
	b.WriteString("Use ONLY the context passages below. If the answer is not in the context, say you don't know.\n\n")

	b.WriteString("CONTEXT:\n")
	if len(in.Passages) == 0 {
		b.WriteString("(no relevant passages found)\n")
	}
	for i, p := range in.Passages {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, strings.TrimSpace(p))
	}

	b.WriteString("\nCHAT HISTORY:\n")
	if len(in.History) == 0 {
		b.WriteString("(none)\n")
	}
	for _, t := range in.History {
		label := "Human"
		if t.Role == "ai" {
			label = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, t.Content)
	}

	b.WriteString("\nQUESTION:\n")
	b.WriteString(strings.TrimSpace(in.Question))
	b.WriteString("\n\nAnswer concisely in plain text.")

	return b.String()
}

type Claude struct {
	client    BedrockClient
	modelID   string
	maxTokens int
}

func NewClaude(client BedrockClient, modelID string, maxTokens int) *Claude {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Claude{client: client, modelID: modelID, maxTokens: maxTokens}
}

// Generate sends the prompt and returns the model's text. Single synchronous
// call, one complete answer; no streaming.
func (c *Claude) Generate(ctx context.Context, prompt string) (string, error) {
	// Anthropic-style payload used by Claude models on Bedrock.
	payload := map[string]any{
		"anthropic_version": "bedrock-2023-05-31",
		"max_tokens":        c.maxTokens,
		"temperature":       0.0,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": prompt},
				},
			},
		},
	}
	body, _ := json.Marshal(payload)

	out, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock InvokeModel: %w", err)
	}

	// Response shape: { "content": [ {"type":"text","text":"..."} ], ... }
	var raw struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(out.Body, &raw); err != nil {
		return "", fmt.Errorf("bedrock response unmarshal: %w", err)
	}

	var text string
	for _, block := range raw.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("model returned no text content")
	}
	return text, nil
}
