package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONVERSATION_TABLE", "conversation")
	t.Setenv("CONVERSATION_HISTORY_TABLE", "conversation-history")
	t.Setenv("DOCUMENT_TABLE", "document")
	t.Setenv("BUCKET", "docchat-uploads")
	t.Setenv("KNOWLEDGE_BASE_DETAILS_SSM_PATH", "/docchat/kb-details")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "conversation", cfg.ConversationTable)
	assert.Equal(t, "docchat-uploads", cfg.Bucket)
	assert.Equal(t, "anthropic.claude-v2", cfg.BedrockModelID)
	assert.Equal(t, 5, cfg.RetrievalTopK)
	assert.Equal(t, 1024, cfg.MaxTokens)
	assert.Equal(t, "/tmp", cfg.ScratchDir)
	assert.Empty(t, cfg.DocumentAlertsTopicARN)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BEDROCK_MODEL_ID", "anthropic.claude-3-haiku-20240307-v1:0")
	t.Setenv("RETRIEVAL_TOP_K", "8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "anthropic.claude-3-haiku-20240307-v1:0", cfg.BedrockModelID)
	assert.Equal(t, 8, cfg.RetrievalTopK)
}
