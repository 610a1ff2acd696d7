package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"docchat/internal/config"
	"docchat/internal/conversations"
	"docchat/internal/db"
	"docchat/internal/handlers"
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

	store := conversations.NewStore(db.NewDynamoClient(awsCfg), cfg.ConversationTable, cfg.ConversationHistoryTable)
	h := handlers.NewConversationHandler(store)

	lambda.Start(h.Get)
}
