package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Adapter implements BlobBackend for AWS S3 storage
type S3Adapter struct {
	client   *s3.Client
	presign  *s3.PresignClient
	bucket   string
	basePath string
}

// S3Config holds S3 connection configuration
type S3Config struct {
	Bucket   string
	BasePath string
	Region   string
	Endpoint string // for S3-compatible services like MinIO
}

// locatorExpiry is how long presigned retrieval URLs stay valid.
const locatorExpiry = 15 * time.Minute

// NewS3Adapter creates a new S3 blob adapter
func NewS3Adapter(s3Config S3Config) (*S3Adapter, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(s3Config.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if s3Config.Endpoint != "" {
		cfg.BaseEndpoint = aws.String(s3Config.Endpoint)
	}

	client := s3.NewFromConfig(cfg)

	return &S3Adapter{
		client:   client,
		presign:  s3.NewPresignClient(client),
		bucket:   s3Config.Bucket,
		basePath: s3Config.BasePath,
	}, nil
}

// Save saves data to the specified path
func (s *S3Adapter) Save(path string, data []byte) error {
	return s.SaveReader(path, bytes.NewReader(data))
}

// SaveReader saves data from a reader to the specified path
func (s *S3Adapter) SaveReader(path string, reader io.Reader) error {
	_, err := s.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.getKey(path)),
		Body:   reader,
	})
	return err
}

// Load loads data from the specified path
func (s *S3Adapter) Load(path string) ([]byte, error) {
	reader, err := s.LoadReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

// LoadReader returns a reader for the specified path
func (s *S3Adapter) LoadReader(path string) (io.ReadCloser, error) {
	resp, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.getKey(path)),
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Exists checks if a blob exists at the specified path
func (s *S3Adapter) Exists(path string) (bool, error) {
	_, err := s.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.getKey(path)),
	})
	if err != nil {
		var notFoundErr *types.NotFound
		if errors.As(err, &notFoundErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete deletes the blob at the specified path
func (s *S3Adapter) Delete(path string) error {
	_, err := s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.getKey(path)),
	})
	return err
}

// List lists blob paths under the specified prefix
func (s *S3Adapter) List(path string) ([]string, error) {
	prefix := s.getKey(path)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var paths []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.Background())
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if s.basePath != "" {
				key = strings.TrimPrefix(key, strings.Trim(s.basePath, "/")+"/")
			}
			paths = append(paths, key)
		}
	}
	return paths, nil
}

// Locator returns a presigned GET URL for the blob at path.
func (s *S3Adapter) Locator(path string) (string, error) {
	req, err := s.presign.PresignGetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.getKey(path)),
	}, s3.WithPresignExpires(locatorExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign retrieval URL: %w", err)
	}
	return req.URL, nil
}

func (s *S3Adapter) getKey(path string) string {
	if s.basePath == "" {
		return strings.TrimPrefix(path, "/")
	}
	return strings.Trim(s.basePath, "/") + "/" + strings.TrimPrefix(path, "/")
}
