package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"kisanmitra/internal/datauri"
)

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type S3Store struct {
	client     *minio.Client
	bucketName string
	region     string
	initOnce   sync.Once
	initErr    error
}

// normalized trims every field and fills the default region.
func (c S3Config) normalized() (S3Config, error) {
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	c.AccessKey = strings.TrimSpace(c.AccessKey)
	c.SecretKey = strings.TrimSpace(c.SecretKey)
	c.Bucket = strings.TrimSpace(c.Bucket)
	c.Region = strings.TrimSpace(c.Region)
	switch {
	case c.Endpoint == "":
		return c, fmt.Errorf("media: s3 endpoint is required")
	case c.AccessKey == "" || c.SecretKey == "":
		return c, fmt.Errorf("media: s3 access key and secret key are required")
	case c.Bucket == "":
		return c, fmt.Errorf("media: s3 bucket is required")
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	return c, nil
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	cfg, err := cfg.normalized()
	if err != nil {
		return nil, err
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("media: init s3 client: %w", err)
	}
	return &S3Store{client: client, bucketName: cfg.Bucket, region: cfg.Region}, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("media: s3 store is nil")
	}
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

func (s *S3Store) Put(ctx context.Context, key string, blob datauri.Blob) error {
	key, err := checkKey(key)
	if err != nil {
		return err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("media: ensure bucket: %w", err)
	}
	contentType := blob.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(blob.Data), int64(len(blob.Data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (s *S3Store) Get(ctx context.Context, key string) (datauri.Blob, error) {
	key, err := checkKey(key)
	if err != nil {
		return datauri.Blob{}, err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return datauri.Blob{}, fmt.Errorf("media: ensure bucket: %w", err)
	}
	obj, err := s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return datauri.Blob{}, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		code := minio.ToErrorResponse(err).Code
		if code == "NoSuchKey" || code == "NoSuchBucket" {
			return datauri.Blob{}, ErrNotFound
		}
		return datauri.Blob{}, err
	}
	info, err := obj.Stat()
	if err != nil {
		return datauri.Blob{}, err
	}
	return datauri.Blob{MIMEType: info.ContentType, Data: data}, nil
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("media: ensure bucket: %w", err)
	}
	var out []string
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		out = append(out, obj.Key)
	}
	sort.Strings(out)
	return out, nil
}
