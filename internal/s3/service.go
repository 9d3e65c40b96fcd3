package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/segal-ziv/smartbill/internal/config"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/types"
)

const (
	defaultPresignExpiryDuration = 30 * time.Minute
)

// Service stores ingested documents and generated exports. Keys are scoped
// by owner so one user can never address another user's files.
type Service interface {
	Upload(ctx context.Context, object *Object) (string, error)
	Download(ctx context.Context, storagePath string) ([]byte, error)
	GetPresignedURL(ctx context.Context, storagePath string) (string, time.Time, error)
	Delete(ctx context.Context, storagePath string) error
	Exists(ctx context.Context, storagePath string) (bool, error)
}

type s3ServiceImpl struct {
	client *s3.Client
	config *config.S3Config
}

func NewService(config *config.Configuration) (Service, error) {
	if !config.S3.Enabled {
		return nil, nil
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
		awsConfig.WithRegion(config.S3.Region),
	)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to load aws config").
			Mark(ierr.ErrHTTPClient)
	}

	return &s3ServiceImpl{
		config: &config.S3,
		client: s3.NewFromConfig(awsCfg),
	}, nil
}

// objectKey builds a collision-free key under the owner's folder. The ULID
// segment keeps repeated uploads of the same file name distinct.
func (s *s3ServiceImpl) objectKey(ownerID, fileName string) string {
	key := fmt.Sprintf("%s/%s-%s", ownerID, types.GenerateUUID(), sanitizeFileName(fileName))
	if s.config.KeyPrefix != "" {
		return fmt.Sprintf("%s/%s", s.config.KeyPrefix, key)
	}
	return key
}

func sanitizeFileName(fileName string) string {
	fileName = strings.ReplaceAll(fileName, "/", "_")
	fileName = strings.ReplaceAll(fileName, "\\", "_")
	return fileName
}

// Upload implements Service.
func (s *s3ServiceImpl) Upload(ctx context.Context, object *Object) (string, error) {
	if object.OwnerID == "" {
		return "", ierr.NewError("missing owner id for upload").
			Mark(ierr.ErrValidation)
	}

	key := s.objectKey(object.OwnerID, object.FileName)

	contentType := object.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(object.Data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", ierr.WithError(err).WithHint("failed to upload file").
			WithMessagef("bucket:%s, key:%s", s.config.Bucket, key).
			Mark(ierr.ErrHTTPClient)
	}

	return key, nil
}

// Download implements Service.
func (s *s3ServiceImpl) Download(ctx context.Context, storagePath string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(storagePath),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ierr.WithError(err).WithHint("file not found in storage").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).WithHint("failed to download file").
			WithMessagef("bucket:%s, key:%s", s.config.Bucket, storagePath).
			Mark(ierr.ErrHTTPClient)
	}

	defer result.Body.Close()

	return io.ReadAll(result.Body)
}

// GetPresignedURL implements Service.
func (s *s3ServiceImpl) GetPresignedURL(ctx context.Context, storagePath string) (string, time.Time, error) {
	duration, err := time.ParseDuration(s.config.PresignExpiryDuration)
	if err != nil {
		duration = defaultPresignExpiryDuration
	}

	presigner := s3.NewPresignClient(s.client)
	result, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(storagePath),
	}, s3.WithPresignExpires(duration))
	if err != nil {
		return "", time.Time{}, ierr.WithError(err).WithHint("failed to get presigned url").
			WithMessagef("bucket:%s, key:%s", s.config.Bucket, storagePath).
			Mark(ierr.ErrHTTPClient)
	}

	return result.URL, time.Now().UTC().Add(duration), nil
}

// Delete implements Service.
func (s *s3ServiceImpl) Delete(ctx context.Context, storagePath string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(storagePath),
	})
	if err != nil {
		return ierr.WithError(err).WithHint("failed to delete file").
			WithMessagef("bucket:%s, key:%s", s.config.Bucket, storagePath).
			Mark(ierr.ErrHTTPClient)
	}

	return nil
}

// Exists implements Service.
func (s *s3ServiceImpl) Exists(ctx context.Context, storagePath string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(storagePath),
	})

	if err != nil {
		var nsk *s3types.NoSuchKey
		var nf *s3types.NotFound
		if errors.As(err, &nsk) || errors.As(err, &nf) {
			return false, nil
		}
		return false, ierr.WithError(err).WithHint("failed to check if file exists").
			Mark(ierr.ErrHTTPClient)
	}

	return true, nil
}
