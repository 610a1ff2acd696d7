package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

// Config carries everything the handlers read from the environment.
// It is parsed once in each main and passed into handler constructors,
// so nothing below internal/handlers touches os.Getenv.
type Config struct {
	ConversationTable        string `env:"CONVERSATION_TABLE"`
	ConversationHistoryTable string `env:"CONVERSATION_HISTORY_TABLE"`
	DocumentTable            string `env:"DOCUMENT_TABLE"`
	Bucket                   string `env:"BUCKET"`

	// SSM parameter holding the knowledge base descriptor JSON.
	KnowledgeBaseDetailsSSMPath string `env:"KNOWLEDGE_BASE_DETAILS_SSM_PATH"`

	BedrockModelID string `env:"BEDROCK_MODEL_ID" envDefault:"anthropic.claude-v2"`
	RetrievalTopK  int    `env:"RETRIEVAL_TOP_K" envDefault:"5"`
	MaxTokens      int    `env:"MAX_TOKENS" envDefault:"1024"`

	// Optional. When set, upload processing publishes a notification here.
	DocumentAlertsTopicARN string `env:"DOCUMENT_ALERTS_TOPIC_ARN"`

	ScratchDir string `env:"SCRATCH_DIR" envDefault:"/tmp"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	return cfg, nil
}
