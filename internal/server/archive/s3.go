// Package archive keeps a CSV copy of an auction's bids in S3-compatible
// object storage before the auction is purged.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/crowdbid/internal/server/config"
	"github.com/dmitrijs2005/crowdbid/internal/server/models"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) putObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver stores one snapshot of an auction.
type Archiver interface {
	Archive(ctx context.Context, auction *models.Auction, csv []byte) (string, error)
}

type S3Archiver struct {
	client putObjectAPI
	bucket string
	now    func() time.Time
}

// NewS3Archiver returns nil, nil when no bucket is configured: archiving is
// optional.
func NewS3Archiver(ctx context.Context, c *sc.Config) (*S3Archiver, error) {
	if c.S3Bucket == "" {
		return nil, nil
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3RootUser,
			c.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
			// MinIO and friends serve buckets under the path.
			o.UsePathStyle = true
		}
	})

	return &S3Archiver{client: client, bucket: c.S3Bucket, now: time.Now}, nil
}

// Key is the object key for an auction snapshot taken at t.
func Key(a *models.Auction, t time.Time) string {
	return fmt.Sprintf("auctions/%d/%02d/%02d/%d-%s.csv", t.Year(), t.Month(), t.Day(), a.ID, a.Token)
}

func (s *S3Archiver) Archive(ctx context.Context, a *models.Auction, csv []byte) (string, error) {
	key := Key(a, s.now())
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(csv),
		ContentType: aws.String("text/csv"),
		Metadata: map[string]string{
			"topic":  a.Topic,
			"target": a.TargetAmount.String(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}

var _ Archiver = (*S3Archiver)(nil)
