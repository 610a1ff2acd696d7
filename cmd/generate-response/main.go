package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"docchat/internal/chat"
	"docchat/internal/config"
	"docchat/internal/conversations"
	"docchat/internal/db"
	"docchat/internal/handlers"
	"docchat/internal/kb"
	"docchat/internal/llm"
)

func main() {
	ctx := context.Background()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	memory := conversations.NewStore(db.NewDynamoClient(awsCfg), cfg.ConversationTable, cfg.ConversationHistoryTable)
	retriever := kb.NewRetriever(bedrockagentruntime.NewFromConfig(awsCfg), cfg.RetrievalTopK)
	generator := llm.NewClaude(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID, cfg.MaxTokens)
	chain := chat.NewChain(retriever, generator, memory)

	h := handlers.NewGenerateHandler(ssm.NewFromConfig(awsCfg), cfg.KnowledgeBaseDetailsSSMPath, chain)

	lambda.Start(h.Handle)
}
