package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/studysync/internal/filex"
	"github.com/google/uuid"
)

// S3Config selects the bucket and credentials. Endpoint is optional and is
// used for MinIO and other S3-compatible services.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

// objectPutter is the part of *s3.Client the saver needs.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Saver uploads documents under <prefix>/exams/<yyyy>/<mm>/<dd>/<uuid>-<name>.
type S3Saver struct {
	client objectPutter
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Saver builds an S3 client from cfg. Static credentials are used when
// both keys are set; otherwise the default AWS credential chain applies.
func NewS3Saver(ctx context.Context, cfg S3Config) (*S3Saver, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Saver(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Saver(client objectPutter, bucket, prefix string) *S3Saver {
	return &S3Saver{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

func (s *S3Saver) Kind() string { return "s3" }

func (s *S3Saver) objectKey(name string) string {
	d := s.now().UTC()
	file := fmt.Sprintf("%s-%s", uuid.NewString(), filex.SanitizeName(name))
	return path.Join(s.prefix, "exams", fmt.Sprintf("%04d/%02d/%02d", d.Year(), d.Month(), d.Day()), file)
}

func (s *S3Saver) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := s.objectKey(name)

	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return "s3://" + s.bucket + "/" + key, nil
}

var _ Saver = (*S3Saver)(nil)
