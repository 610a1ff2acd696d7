package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	bedrockruntime "github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBedrock struct {
	in   *bedrockruntime.InvokeModelInput
	body string
	err  error
}

func (f *fakeBedrock) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.in = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(PromptInput{
		Passages: []string{"The report covers Q3 revenue.", "Revenue grew 4%."},
		History: []Turn{
			{Role: "human", Content: "what is this document?"},
			{Role: "ai", Content: "A quarterly report."},
		},
		Question: "how much did revenue grow?",
	})

	assert.Contains(t, prompt, "[1] The report covers Q3 revenue.")
	assert.Contains(t, prompt, "[2] Revenue grew 4%.")
	assert.Contains(t, prompt, "Human: what is this document?")
	assert.Contains(t, prompt, "Assistant: A quarterly report.")
	assert.Contains(t, prompt, "how much did revenue grow?")
}

func TestBuildPromptEmptyContext(t *testing.T) {
	prompt := BuildPrompt(PromptInput{Question: "hello?"})
	assert.Contains(t, prompt, "(no relevant passages found)")
	assert.Contains(t, prompt, "(none)")
}

func TestGenerateParsesContentBlocks(t *testing.T) {
	client := &fakeBedrock{body: `{"content":[{"type":"text","text":"Revenue grew"},{"type":"text","text":" 4%."}]}`}
	c := NewClaude(client, "anthropic.claude-v2", 1024)

	answer, err := c.Generate(context.Background(), "prompt text")
	require.NoError(t, err)
	assert.Equal(t, "Revenue grew 4%.", answer)

	require.NotNil(t, client.in)
	assert.Equal(t, "anthropic.claude-v2", aws.ToString(client.in.ModelId))
	assert.Equal(t, "application/json", aws.ToString(client.in.ContentType))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(client.in.Body, &payload))
	assert.Equal(t, "bedrock-2023-05-31", payload["anthropic_version"])
	assert.Equal(t, float64(1024), payload["max_tokens"])
}

func TestGenerateFailsOnEmptyContent(t *testing.T) {
	client := &fakeBedrock{body: `{"content":[]}`}
	c := NewClaude(client, "anthropic.claude-v2", 0)
	_, err := c.Generate(context.Background(), "prompt")
	assert.ErrorContains(t, err, "no text content")
}

func TestGeneratePropagatesInvokeError(t *testing.T) {
	client := &fakeBedrock{err: errors.New("model timeout")}
	c := NewClaude(client, "anthropic.claude-v2", 1024)
	_, err := c.Generate(context.Background(), "prompt")
	assert.ErrorContains(t, err, "model timeout")
}
