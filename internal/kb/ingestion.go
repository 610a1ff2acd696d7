package kb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagent"
)

// IngestionClient is the slice of the agent API ingestion needs.
type IngestionClient interface {
	StartIngestionJob(ctx context.Context, params *bedrockagent.StartIngestionJobInput, optFns ...func(*bedrockagent.Options)) (*bedrockagent.StartIngestionJobOutput, error)
}

// StartIngestion requests an asynchronous re-index of the knowledge base data
// source. Fire and forget: no job tracking, no de-duplication of overlapping
// requests.
func StartIngestion(ctx context.Context, client IngestionClient, d *Descriptor, userID string) (string, error) {
	out, err := client.StartIngestionJob(ctx, &bedrockagent.StartIngestionJobInput{
		KnowledgeBaseId: aws.String(d.KnowledgeBaseID),
		DataSourceId:    aws.String(d.DataSourceID),
		Description:     aws.String(fmt.Sprintf("document upload for user %s", userID)),
	})
	if err != nil {
		return "", fmt.Errorf("start ingestion job: %w", err)
	}
	if out.IngestionJob == nil {
		return "", nil
	}
	return aws.ToString(out.IngestionJob.IngestionJobId), nil
}
