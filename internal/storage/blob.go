package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/logging"
	"github.com/korssa/gong34/internal/models"
	"github.com/korssa/gong34/internal/s3x"
)

// BlobBackend stores assets as public objects in an S3-compatible bucket.
type BlobBackend struct {
	api        s3x.ObjectAPI
	bucket     string
	publicBase string
	logger     logging.Logger
	now        func() time.Time
}

func NewBlobBackend(api s3x.ObjectAPI, bucket, publicBaseURL string, logger logging.Logger) *BlobBackend {
	return &BlobBackend{
		api:        api,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBaseURL, "/") + "/",
		logger:     logger,
		now:        time.Now,
	}
}

func (b *BlobBackend) Owns(u string) bool {
	return strings.HasPrefix(u, b.publicBase)
}

func (b *BlobBackend) Upload(ctx context.Context, asset models.Asset, prefix string) (string, error) {
	key := ObjectName(prefix, asset.Ext(), b.now())

	in := &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(asset.Data),
		ContentLength: aws.Int64(int64(len(asset.Data))),
	}
	if asset.ContentType != "" {
		in.ContentType = aws.String(asset.ContentType)
	}
	if _, err := b.api.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("%w: put %s: %v", common.ErrUpload, key, err)
	}

	b.logger.Info(ctx, "asset uploaded", "key", key, "size", len(asset.Data))
	return b.publicBase + key, nil
}

func (b *BlobBackend) Delete(ctx context.Context, u string) bool {
	key, ok := b.keyOf(u)
	if !ok {
		b.logger.Warn(ctx, "invalid blob url", "url", u)
		return false
	}
	_, err := b.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		b.logger.Warn(ctx, "blob delete failed", "key", key, "error", err)
		return false
	}
	return true
}

func (b *BlobBackend) Exists(ctx context.Context, u string) bool {
	key, ok := b.keyOf(u)
	if !ok {
		return false
	}
	_, err := b.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !s3x.IsNotFound(err) {
		b.logger.Debug(ctx, "blob head failed", "key", key, "error", err)
	}
	return err == nil
}

// keyOf maps a public URL to its object key. URLs from another blob host
// fall back to the last path segment.
func (b *BlobBackend) keyOf(u string) (string, bool) {
	if b.Owns(u) {
		key := strings.TrimPrefix(u, b.publicBase)
		if i := strings.IndexAny(key, "?#"); i >= 0 {
			key = key[:i]
		}
		return key, key != ""
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return "", false
	}
	name := path.Base(parsed.Path)
	if name == "/" || name == "." || name == "" {
		return "", false
	}
	return name, true
}
