package uploads

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagent"
	bedrocktypes "github.com/aws/aws-sdk-go-v2/service/bedrockagent/types"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/config"
	"docchat/internal/documents"
)

func TestParseObjectKey(t *testing.T) {
	t.Run("derives user and file from path segments", func(t *testing.T) {
		user, file, err := ParseObjectKey("alice/report.pdf/x")
		require.NoError(t, err)
		assert.Equal(t, "alice", user)
		assert.Equal(t, "report.pdf", file)
	})

	t.Run("decodes url escapes and plus signs", func(t *testing.T) {
		user, file, err := ParseObjectKey("alice/my+quarterly%20report.pdf")
		require.NoError(t, err)
		assert.Equal(t, "alice", user)
		assert.Equal(t, "my quarterly report.pdf", file)
	})

	t.Run("rejects keys without two segments", func(t *testing.T) {
		_, _, err := ParseObjectKey("justafile.pdf")
		assert.Error(t, err)
	})
}

type fakeDynamo struct {
	puts []*dynamodb.PutItemInput
}

func (f *fakeDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, params)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return &dynamodb.ScanOutput{}, nil
}

type fakeSSM struct{ value string }

func (f *fakeSSM) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	return &ssm.GetParameterOutput{Parameter: &ssmtypes.Parameter{Value: aws.String(f.value)}}, nil
}

type fakeIngestion struct {
	in  *bedrockagent.StartIngestionJobInput
	err error
}

func (f *fakeIngestion) StartIngestionJob(ctx context.Context, params *bedrockagent.StartIngestionJobInput, optFns ...func(*bedrockagent.Options)) (*bedrockagent.StartIngestionJobOutput, error) {
	f.in = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockagent.StartIngestionJobOutput{
		IngestionJob: &bedrocktypes.IngestionJob{IngestionJobId: aws.String("job-1")},
	}, nil
}

type fakeSNS struct {
	in  *sns.PublishInput
	err error
}

func (f *fakeSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.in = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{}, nil
}

func newTestProcessor(ssmValue string) (*Processor, *fakeDynamo, *fakeIngestion, *fakeSNS) {
	ddb := &fakeDynamo{}
	ingestion := &fakeIngestion{}
	snsc := &fakeSNS{}
	cfg := &config.Config{
		Bucket:                      "docchat-uploads",
		DocumentTable:               "document",
		KnowledgeBaseDetailsSSMPath: "/docchat/kb-details",
		ScratchDir:                  "/tmp",
	}

	p := NewProcessor(cfg, nil, documents.NewStore(ddb, cfg.DocumentTable), &fakeSSM{value: ssmValue}, ingestion, snsc)
	p.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	p.download = func(ctx context.Context, client S3Client, bucket, key, scratchDir, fileName string) (string, error) {
		return "/tmp/" + fileName, nil
	}
	p.pages = func(path string) (int, error) { return 12, nil }
	return p, ddb, ingestion, snsc
}

func uploadEvent(key string, size int64) events.S3Event {
	return events.S3Event{Records: []events.S3EventRecord{{
		S3: events.S3Entity{
			Bucket: events.S3Bucket{Name: "docchat-uploads"},
			Object: events.S3Object{Key: key, Size: size},
		},
	}}}
}

func TestHandleRegistersDocumentAndStartsIngestion(t *testing.T) {
	p, ddb, ingestion, _ := newTestProcessor(`{"knowledgeBaseId":"kb1","dataSourceId":"ds1"}`)

	err := p.Handle(context.Background(), uploadEvent("alice/report.pdf/x", 204800))
	require.NoError(t, err)

	require.Len(t, ddb.puts, 1)
	var doc documents.Document
	require.NoError(t, attributevalue.UnmarshalMap(ddb.puts[0].Item, &doc))
	assert.Equal(t, "alice", doc.UserID)
	assert.Equal(t, "report.pdf", doc.Filename)
	assert.Equal(t, "12", doc.Pages)
	assert.Equal(t, "204800", doc.Filesize)
	assert.Equal(t, "2026-03-01T12:00:00.000000Z", doc.Created)
	assert.NotEmpty(t, doc.DocumentID)

	require.NotNil(t, ingestion.in)
	assert.Equal(t, "kb1", aws.ToString(ingestion.in.KnowledgeBaseId))
	assert.Equal(t, "ds1", aws.ToString(ingestion.in.DataSourceId))
}

func TestHandleRepairsSingleQuotedDescriptor(t *testing.T) {
	p, _, ingestion, _ := newTestProcessor(`{'knowledgeBaseId': 'kb1', 'dataSourceId': 'ds1'}`)

	err := p.Handle(context.Background(), uploadEvent("alice/report.pdf", 1))
	require.NoError(t, err)
	require.NotNil(t, ingestion.in)
	assert.Equal(t, "kb1", aws.ToString(ingestion.in.KnowledgeBaseId))
}

func TestHandleSkipsIngestionWhenDescriptorUnrepairable(t *testing.T) {
	p, ddb, ingestion, _ := newTestProcessor(`{{{`)

	err := p.Handle(context.Background(), uploadEvent("alice/report.pdf", 1))
	require.NoError(t, err)

	// Document registration still happened; only the sync was skipped.
	assert.Len(t, ddb.puts, 1)
	assert.Nil(t, ingestion.in)
}

func TestHandleSwallowsIngestionFailure(t *testing.T) {
	p, _, ingestion, _ := newTestProcessor(`{"knowledgeBaseId":"kb1","dataSourceId":"ds1"}`)
	ingestion.err = errors.New("kb busy")

	err := p.Handle(context.Background(), uploadEvent("alice/report.pdf", 1))
	assert.NoError(t, err)
}

func TestHandlePublishesAlertWhenTopicConfigured(t *testing.T) {
	p, _, _, snsc := newTestProcessor(`{"knowledgeBaseId":"kb1","dataSourceId":"ds1"}`)
	p.cfg.DocumentAlertsTopicARN = "arn:aws:sns:us-east-1:123456789012:docchat-alerts"

	err := p.Handle(context.Background(), uploadEvent("alice/report.pdf", 1))
	require.NoError(t, err)
	require.NotNil(t, snsc.in)
	assert.Equal(t, p.cfg.DocumentAlertsTopicARN, aws.ToString(snsc.in.TopicArn))
	assert.Contains(t, aws.ToString(snsc.in.Message), "report.pdf")
}

func TestHandleRejectsEmptyEvent(t *testing.T) {
	p, _, _, _ := newTestProcessor(`{}`)
	err := p.Handle(context.Background(), events.S3Event{})
	assert.Error(t, err)
}
