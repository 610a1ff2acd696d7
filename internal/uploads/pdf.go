package uploads

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ledongthuc/pdf"
)

// S3Client is the slice of the S3 API download needs.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// downloadObject copies the object to scratch space and returns the local
// path. Lambda only guarantees writable /tmp.
func downloadObject(ctx context.Context, client S3Client, bucket, key, scratchDir, fileName string) (string, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("s3 GetObject %s: %w", key, err)
	}
	defer out.Body.Close()

	local := filepath.Join(scratchDir, fileName)
	f, err := os.Create(local)
	if err != nil {
		return "", fmt.Errorf("create scratch file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, out.Body); err != nil {
		return "", fmt.Errorf("download %s: %w", key, err)
	}
	return local, nil
}

// countPages opens the local file as a PDF and returns its page count.
func countPages(path string) (int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	return r.NumPage(), nil
}
