package storage

import (
	"context"
	"io"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/coffer/internal/config"
	cferrors "github.com/thoreinstein/coffer/internal/errors"
)

// S3 stores artifacts in an S3-compatible bucket. It is a thin adapter
// over the AWS SDK: network behavior, retries, and timeouts are the
// SDK's concern.
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3 creates an S3 backend from its configuration. Credentials fall
// back to the SDK's default chain when not configured explicitly; a
// custom endpoint enables path-style addressing for S3-compatible
// services.
func NewS3(ctx context.Context, cfg config.StorageConfig) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, cferrors.Configurationf("s3 storage requires a bucket")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "loading AWS configuration")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (b *S3) key(remotePath string) string {
	if b.prefix == "" {
		return remotePath
	}
	return path.Join(b.prefix, remotePath)
}

func (b *S3) Upload(ctx context.Context, localPath, remotePath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return cferrors.WrapIO(err, "opening artifact for upload")
	}
	defer f.Close()

	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(remotePath)),
		Body:   f,
	})
	if err != nil {
		return cferrors.WrapIOf(err, "uploading %s", remotePath)
	}
	return nil
}

func (b *S3) Download(ctx context.Context, remotePath, localPath string) error {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(remotePath)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return cferrors.NotFoundf("artifact %q not found", remotePath)
		}
		return cferrors.WrapIOf(err, "downloading %s", remotePath)
	}
	defer out.Body.Close()

	f, err := os.OpenFile(localPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return cferrors.WrapIO(err, "creating download file")
	}
	if _, err := io.Copy(f, out.Body); err != nil {
		f.Close()
		os.Remove(localPath)
		return cferrors.WrapIOf(err, "writing %s", localPath)
	}
	if err := f.Close(); err != nil {
		os.Remove(localPath)
		return cferrors.WrapIO(err, "closing download file")
	}
	return nil
}

func (b *S3) Exists(ctx context.Context, remotePath string) (bool, error) {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(remotePath)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, cferrors.WrapIOf(err, "checking %s", remotePath)
	}
	return true, nil
}

func (b *S3) Delete(ctx context.Context, remotePath string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(remotePath)),
	})
	if err != nil {
		return cferrors.WrapIOf(err, "deleting %s", remotePath)
	}
	return nil
}

func (b *S3) Close() error {
	return nil
}
