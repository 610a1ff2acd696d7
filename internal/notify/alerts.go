package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"docchat/internal/documents"
)

// SNSClient is the slice of the SNS API publishing needs.
type SNSClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// PublishDocumentRegistered announces a freshly registered document on the
// alerts topic. Callers treat failures as best-effort: log and move on.
func PublishDocumentRegistered(ctx context.Context, client SNSClient, topicARN string, doc documents.Document) error {
	msg, _ := json.Marshal(map[string]string{
		"userid":     doc.UserID,
		"documentid": doc.DocumentID,
		"filename":   doc.Filename,
		"pages":      doc.Pages,
		"filesize":   doc.Filesize,
		"created":    doc.Created,
	})

	_, err := client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(topicARN),
		Subject:  aws.String(fmt.Sprintf("Document uploaded: %s", doc.Filename)),
		Message:  aws.String(string(msg)),
	})
	if err != nil {
		return fmt.Errorf("sns Publish: %w", err)
	}
	return nil
}
