package catalogstore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/models"
	"github.com/korssa/gong34/internal/s3x"
)

// S3Store keeps the catalog as one JSON object in a bucket.
type S3Store struct {
	api    s3x.ObjectAPI
	bucket string
	key    string
}

func NewS3Store(api s3x.ObjectAPI, bucket, key string) *S3Store {
	return &S3Store{api: api, bucket: bucket, key: key}
}

func (s *S3Store) Load(ctx context.Context) ([]models.CatalogEntry, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if s3x.IsNotFound(err) {
		return []models.CatalogEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s/%s: %v", common.ErrSync, s.bucket, s.key, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s/%s: %v", common.ErrSync, s.bucket, s.key, err)
	}
	return decodeCatalog(raw)
}

func (s *S3Store) Save(ctx context.Context, entries []models.CatalogEntry) error {
	raw, err := encodeCatalog(entries)
	if err != nil {
		return err
	}
	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(raw),
		ContentLength: aws.Int64(int64(len(raw))),
		ContentType:   aws.String("application/json"),
		CacheControl:  aws.String("no-cache"),
	})
	if err != nil {
		return fmt.Errorf("%w: put %s/%s: %v", common.ErrSync, s.bucket, s.key, err)
	}
	return nil
}
