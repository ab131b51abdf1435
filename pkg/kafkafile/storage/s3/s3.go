package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/tendant/kafka-files/pkg/kafkafile"
)

// stagingPrefix holds uploads until their checksum has been verified
const stagingPrefix = ".staging/"

// Config options for the S3 backend
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)
	BaseURL         string // Optional public download prefix; derived from bucket and endpoint when empty

	// MinIO/S3-compatible service options
	CreateBucketIfNotExist bool // Create bucket if it doesn't exist
}

// objectAPI is the part of the S3 client the backend uses
type objectAPI interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// Backend is an S3-compatible implementation of the kafkafile.BlobStore interface
type Backend struct {
	client  objectAPI
	bucket  string
	baseURL string
	config  Config
}

// New creates a new S3-compatible storage backend
func New(ctx context.Context, config Config) (*Backend, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	if config.Region == "" {
		config.Region = "us-east-1"
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
	}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Custom endpoint for S3-compatible services (MinIO, etc.)
	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	backend := newBackend(s3.NewFromConfig(awsCfg, s3Options...), config)

	if config.CreateBucketIfNotExist {
		if err := backend.createBucketIfNotExists(ctx); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return backend, nil
}

func newBackend(client objectAPI, config Config) *Backend {
	return &Backend{
		client:  client,
		bucket:  config.Bucket,
		baseURL: baseURL(config),
		config:  config,
	}
}

func baseURL(config Config) string {
	if config.BaseURL != "" {
		return strings.TrimRight(config.BaseURL, "/") + "/"
	}
	if config.Endpoint != "" {
		endpoint := strings.TrimRight(config.Endpoint, "/")
		if config.UsePathStyle {
			return endpoint + "/" + config.Bucket + "/"
		}
		scheme, host, ok := strings.Cut(endpoint, "://")
		if ok {
			return scheme + "://" + config.Bucket + "." + host + "/"
		}
		return endpoint + "/" + config.Bucket + "/"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", config.Bucket, config.Region)
}

// createBucketIfNotExists creates the bucket if it doesn't exist
func (b *Backend) createBucketIfNotExists(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.bucket),
	})
	if err == nil {
		return nil
	}

	var noSuchBucket *types.NoSuchBucket
	if !isNotFound(err) && !errors.As(err, &noSuchBucket) && apiErrorCode(err) != "BadRequest" {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	createInput := &s3.CreateBucketInput{
		Bucket: aws.String(b.bucket),
	}
	// Add location constraint for regions other than us-east-1
	if b.config.Region != "us-east-1" {
		createInput.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(b.config.Region),
		}
	}

	if _, err := b.client.CreateBucket(ctx, createInput); err != nil {
		switch apiErrorCode(err) {
		case "BucketAlreadyExists", "BucketAlreadyOwnedByYou":
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// Kind returns kafkafile.StorageKindS3
func (b *Backend) Kind() kafkafile.StorageKind {
	return kafkafile.StorageKindS3
}

// DownloadBaseURL returns the public prefix of the bucket
func (b *Backend) DownloadBaseURL() string {
	return b.baseURL
}

// Upload streams the content to a staging key and copies it to its final key
// only once the md5 matches. An existing object under the final key is never
// touched by a failed upload.
func (b *Backend) Upload(ctx context.Context, fileName, fileMd5 string, reader io.Reader) error {
	key := kafkafile.ObjectKey(fileName, fileMd5)
	staging := stagingPrefix + uuid.NewString()
	cr := kafkafile.NewChecksumReader(reader)

	uploader := manager.NewUploader(b.client)
	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(b.bucket),
		Key:      aws.String(staging),
		Body:     cr,
		Metadata: map[string]string{"file-md5": fileMd5},
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	// a staging object left behind is never read
	defer b.client.DeleteObject(context.WithoutCancel(ctx), &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(staging),
	})

	if err := cr.Verify(fileMd5); err != nil {
		return err
	}

	_, err = b.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(b.bucket),
		Key:        aws.String(key),
		CopySource: aws.String(copySource(b.bucket, staging)),
	})
	if err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", staging, key, err)
	}

	return nil
}

// copySource builds the URL-encoded "bucket/key" form CopyObject expects
func copySource(bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return bucket + "/" + strings.Join(segments, "/")
}

// Download downloads content directly from S3
func (b *Backend) Download(ctx context.Context, fileName, fileMd5 string) (io.ReadCloser, error) {
	key := kafkafile.ObjectKey(fileName, fileMd5)
	result, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", kafkafile.ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}

	return result.Body, nil
}

// isNotFound matches the typed AWS errors and the bare codes some
// S3-compatible services return instead.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}
	switch apiErrorCode(err) {
	case "NoSuchKey", "NotFound", "NoSuchBucket":
		return true
	}
	return false
}

func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
