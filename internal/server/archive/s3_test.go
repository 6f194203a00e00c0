package archive

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/crowdbid/internal/server/config"
	"github.com/dmitrijs2005/crowdbid/internal/server/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func swapS3(t *testing.T, fake *fakePutter, cfgErr error) *[]func(*s3.Options) {
	t.Helper()
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() { loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew })

	var opts []func(*s3.Options)
	loadDefaultAWSConfig = func(ctx context.Context, _ ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, cfgErr
	}
	newS3ClientFromConfig = func(_ aws.Config, optFns ...func(*s3.Options)) putObjectAPI {
		opts = optFns
		return fake
	}
	return &opts
}

func TestNewS3Archiver_DisabledWithoutBucket(t *testing.T) {
	a, err := NewS3Archiver(context.Background(), &sc.Config{})
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestNewS3Archiver_ConfigError(t *testing.T) {
	swapS3(t, &fakePutter{}, errors.New("no creds"))

	_, err := NewS3Archiver(context.Background(), &sc.Config{S3Bucket: "b"})
	assert.ErrorContains(t, err, "no creds")
}

func TestS3Archiver_Archive(t *testing.T) {
	fake := &fakePutter{}
	opts := swapS3(t, fake, nil)

	a, err := NewS3Archiver(context.Background(), &sc.Config{S3Bucket: "archive", S3BaseEndpoint: "http://minio:9000"})
	require.NoError(t, err)
	a.now = func() time.Time { return time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC) }

	var o s3.Options
	for _, fn := range *opts {
		fn(&o)
	}
	assert.Equal(t, "http://minio:9000", aws.ToString(o.BaseEndpoint))
	assert.True(t, o.UsePathStyle)

	auction := &models.Auction{ID: 5, Token: "abc", Topic: "Roof", TargetAmount: decimal.NewFromInt(100)}
	key, err := a.Archive(context.Background(), auction, []byte("alice;10\n"))
	require.NoError(t, err)
	assert.Equal(t, "auctions/2026/02/03/5-abc.csv", key)
	assert.Equal(t, "archive", aws.ToString(fake.in.Bucket))
	assert.Equal(t, "alice;10\n", fake.body)
	assert.Equal(t, "100", fake.in.Metadata["target"])
}

func TestS3Archiver_ArchiveError(t *testing.T) {
	fake := &fakePutter{err: errors.New("denied")}
	swapS3(t, fake, nil)

	a, err := NewS3Archiver(context.Background(), &sc.Config{S3Bucket: "archive"})
	require.NoError(t, err)

	_, err = a.Archive(context.Background(), &models.Auction{ID: 1, Token: "t"}, nil)
	assert.ErrorContains(t, err, "denied")
}
