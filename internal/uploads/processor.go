// Package uploads turns S3 upload notifications into document records and
// knowledge base ingestion requests.
package uploads

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/lithammer/shortuuid/v4"

	"docchat/internal/config"
	"docchat/internal/conversations"
	"docchat/internal/documents"
	"docchat/internal/kb"
	"docchat/internal/notify"
)

// ParseObjectKey decodes an S3 object key of the form
// <userID>/<fileName>/... and returns its first two segments. Keys arrive
// URL-encoded with '+' for spaces.
func ParseObjectKey(rawKey string) (userID, fileName string, err error) {
	key, err := url.QueryUnescape(rawKey)
	if err != nil {
		return "", "", fmt.Errorf("decode object key %q: %w", rawKey, err)
	}
	parts := strings.Split(key, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("object key %q is not <user>/<file>/...", key)
	}
	return parts[0], parts[1], nil
}

type Processor struct {
	cfg       *config.Config
	s3        S3Client
	docs      *documents.Store
	ssm       kb.SSMClient
	ingestion kb.IngestionClient
	sns       notify.SNSClient
	now       func() time.Time

	download func(ctx context.Context, client S3Client, bucket, key, scratchDir, fileName string) (string, error)
	pages    func(path string) (int, error)
}

func NewProcessor(cfg *config.Config, s3c S3Client, docs *documents.Store, ssmc kb.SSMClient, ingestion kb.IngestionClient, snsc notify.SNSClient) *Processor {
	return &Processor{
		cfg:       cfg,
		s3:        s3c,
		docs:      docs,
		ssm:       ssmc,
		ingestion: ingestion,
		sns:       snsc,
		now:       time.Now,
		download:  downloadObject,
		pages:     countPages,
	}
}

// Handle processes one storage-event notification: register the uploaded
// document, then best-effort request a knowledge base re-index and publish an
// alert. Once the document record is written the handler never fails the
// trigger; indexing and notification problems are logged and swallowed.
func (p *Processor) Handle(ctx context.Context, event events.S3Event) error {
	if len(event.Records) == 0 {
		return fmt.Errorf("s3 event has no records")
	}
	object := event.Records[0].S3.Object

	userID, fileName, err := ParseObjectKey(object.Key)
	if err != nil {
		return err
	}
	slog.Info("processing upload", "user", userID, "file", fileName)

	key, _ := url.QueryUnescape(object.Key)
	local, err := p.download(ctx, p.s3, p.cfg.Bucket, key, p.cfg.ScratchDir, fileName)
	if err != nil {
		return err
	}

	pages, err := p.pages(local)
	if err != nil {
		return err
	}

	doc := documents.Document{
		UserID:     userID,
		DocumentID: shortuuid.New(),
		Filename:   fileName,
		Created:    p.now().UTC().Format(conversations.CreatedFormat),
		Pages:      strconv.Itoa(pages),
		Filesize:   strconv.FormatInt(object.Size, 10),
	}
	if err := p.docs.Put(ctx, doc); err != nil {
		return err
	}

	// Simplistic re-index trigger: no de-duplication, no in-flight job
	// tracking. Failure does not roll back the document record.
	descriptor, err := kb.FetchDescriptorLenient(ctx, p.ssm, p.cfg.KnowledgeBaseDetailsSSMPath)
	if err != nil {
		slog.Error("skipping knowledge base sync", "error", err)
	} else {
		jobID, err := kb.StartIngestion(ctx, p.ingestion, descriptor, userID)
		if err != nil {
			slog.Error("error triggering knowledge base sync", "error", err)
		} else {
			slog.Info("started ingestion job", "job", jobID)
		}
	}

	if p.cfg.DocumentAlertsTopicARN != "" && p.sns != nil {
		if err := notify.PublishDocumentRegistered(ctx, p.sns, p.cfg.DocumentAlertsTopicARN, doc); err != nil {
			slog.Error("document alert publish failed", "error", err)
		}
	}

	return nil
}
