// Package s3 implements the artifact Store against an S3-compatible
// backend (AWS S3 or MinIO). Single bucket; caller keys are placed under an
// optional prefix so several output trees can share one bucket.
package s3

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"bioremcore/internal/artifact/core"
)

// Store implements core.Store on a single S3 bucket.
type Store struct {
	client *s3.Client
	bucket string
	prefix string // normalized, no leading/trailing slash; may be empty
}

// Config holds explicit construction parameters (mostly for tests). For
// production use the environment variables read by OpenFromEnv.
type Config struct {
	Region          string
	Bucket          string
	Prefix          string // optional key prefix inside the bucket
	Endpoint        string // optional; custom endpoint (e.g. MinIO)
	AccessKeyID     string // optional (falls back to default credentials chain)
	SecretAccessKey string // optional
	SessionToken    string // optional
	PathStyle       bool
}

// New creates an S3 artifact store from Config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Store{client: client, bucket: cfg.Bucket, prefix: normalizePrefix(cfg.Prefix)}, nil
}

// OpenFromEnv constructs an S3 store from the process environment:
//
//	BIOREMCORE_ARTIFACT_S3_BUCKET=<bucket> (required)
//	BIOREMCORE_ARTIFACT_S3_REGION=<region> (default us-east-1)
//	BIOREMCORE_ARTIFACT_S3_ENDPOINT=<url> (optional, for MinIO)
//	BIOREMCORE_ARTIFACT_S3_PATH_STYLE=true|false (default false)
//	AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY / AWS_SESSION_TOKEN (optional)
//
// prefix scopes every key, typically the run's output directory.
func OpenFromEnv(ctx context.Context, prefix string) (*Store, error) {
	bucket := os.Getenv("BIOREMCORE_ARTIFACT_S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("BIOREMCORE_ARTIFACT_S3_BUCKET required for s3 driver")
	}
	return New(ctx, Config{
		Bucket:    bucket,
		Prefix:    prefix,
		Region:    os.Getenv("BIOREMCORE_ARTIFACT_S3_REGION"),
		Endpoint:  os.Getenv("BIOREMCORE_ARTIFACT_S3_ENDPOINT"),
		PathStyle: strings.EqualFold(os.Getenv("BIOREMCORE_ARTIFACT_S3_PATH_STYLE"), "true"),
	})
}

// Driver returns the artifact driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverS3 }

func normalizePrefix(p string) string {
	return strings.Trim(path.Clean("/"+strings.ReplaceAll(p, "\\", "/")), "/")
}

func (s *Store) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

func (s *Store) location(objectKey string) string {
	return "s3://" + s.bucket + "/" + objectKey
}

// Put uploads the artifact, replacing any existing object at the key.
func (s *Store) Put(ctx context.Context, key string, r io.Reader) (core.Info, error) {
	obj := s.objectKey(key)
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{Bucket: &s.bucket, Key: &obj, Body: r}); err != nil {
		return core.Info{}, err
	}
	info, err := s.Stat(ctx, key)
	if err != nil {
		return core.Info{}, err
	}
	return info, nil
}

// Get downloads artifact content and metadata.
func (s *Store) Get(ctx context.Context, key string) (core.Info, io.ReadCloser, error) {
	obj := s.objectKey(key)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &obj})
	if err != nil {
		return core.Info{}, nil, err
	}
	return s.infoFor(key, out.ContentLength, out.ETag, out.LastModified), out.Body, nil
}

// Stat issues a HeadObject for metadata only.
func (s *Store) Stat(ctx context.Context, key string) (core.Info, error) {
	obj := s.objectKey(key)
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &obj})
	if err != nil {
		return core.Info{}, err
	}
	return s.infoFor(key, out.ContentLength, out.ETag, out.LastModified), nil
}

// Delete removes the object. S3 deletes are idempotent, so absence is not
// distinguished; (true, nil) means the key is gone.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	obj := s.objectKey(key)
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &obj}); err != nil {
		return false, err
	}
	return true, nil
}

// List pages through the bucket under the store prefix, returning caller
// keys ordered ascending.
func (s *Store) List(ctx context.Context, prefix string) ([]core.Info, error) {
	full := s.objectKey(prefix)
	if prefix == "" && s.prefix != "" {
		full = s.prefix + "/"
	}
	var infos []core.Info
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{Bucket: &s.bucket, Prefix: &full, ContinuationToken: token})
		if err != nil {
			return nil, err
		}
		for _, obj := range out.Contents {
			objectKey := aws.ToString(obj.Key)
			key := strings.TrimPrefix(strings.TrimPrefix(objectKey, s.prefix), "/")
			infos = append(infos, core.Info{
				Key:          key,
				Size:         aws.ToInt64(obj.Size),
				ETag:         strings.Trim(aws.ToString(obj.ETag), "\""),
				LastModified: aws.ToTime(obj.LastModified),
				Location:     s.location(objectKey),
			})
		}
		if aws.ToBool(out.IsTruncated) && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (s *Store) infoFor(key string, size *int64, etag *string, lastModified *time.Time) core.Info {
	info := core.Info{
		Key:      key,
		Size:     aws.ToInt64(size),
		ETag:     strings.Trim(aws.ToString(etag), "\""),
		Location: s.location(s.objectKey(key)),
	}
	info.LastModified = time.Now().UTC()
	if lastModified != nil {
		info.LastModified = *lastModified
	}
	return info
}

var _ core.Store = (*Store)(nil)
