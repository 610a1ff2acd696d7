package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagent"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"docchat/internal/config"
	"docchat/internal/db"
	"docchat/internal/documents"
	"docchat/internal/uploads"
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

	docs := documents.NewStore(db.NewDynamoClient(awsCfg), cfg.DocumentTable)
	p := uploads.NewProcessor(
		cfg,
		s3.NewFromConfig(awsCfg),
		docs,
		ssm.NewFromConfig(awsCfg),
		bedrockagent.NewFromConfig(awsCfg),
		sns.NewFromConfig(awsCfg),
	)

	lambda.Start(p.Handle)
}
