// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/machinery-catalog/internal/config"
	"github.com/javajoker/machinery-catalog/internal/errs"
	"github.com/javajoker/machinery-catalog/internal/metrics"
)

// ObjectStorage is the storage gateway used by the asset workflows.
type ObjectStorage interface {
	// Upload stores data at bucket/path and returns the canonical path. Without
	// overwrite it fails with errs.ErrObjectExists when the path is taken.
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string, overwrite bool) (string, error)
	// Delete removes the given paths. Paths that do not exist are not an error.
	Delete(ctx context.Context, bucket string, paths ...string) error
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	PublicURL(bucket, path string, cacheBust bool) string
}

// maximum keys per DeleteObjects request
const deleteBatchSize = 1000

type StorageService struct {
	s3Client s3iface.S3API
	config   config.StorageConfig
	now      func() time.Time
}

func NewStorageService(cfg config.StorageConfig) (*StorageService, error) {
	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.ForcePathStyle),
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewStorageServiceWithClient(s3.New(sess), cfg), nil
}

func NewStorageServiceWithClient(client s3iface.S3API, cfg config.StorageConfig) *StorageService {
	return &StorageService{s3Client: client, config: cfg, now: time.Now}
}

func (s *StorageService) Upload(ctx context.Context, bucket, path string, data []byte, contentType string, overwrite bool) (string, error) {
	key := strings.TrimLeft(path, "/")

	if !overwrite {
		exists, err := s.exists(ctx, bucket, key)
		if err != nil {
			metrics.StorageOperationErrorsTotal.WithLabelValues("head", bucket).Inc()
			return "", fmt.Errorf("failed to check object %s/%s: %w", bucket, key, err)
		}
		if exists {
			return "", fmt.Errorf("%s/%s: %w", bucket, key, errs.ErrObjectExists)
		}
	}

	params := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if s.config.CacheControl != "" {
		params.CacheControl = aws.String(s.config.CacheControl)
	}

	if _, err := s.s3Client.PutObjectWithContext(ctx, params); err != nil {
		metrics.StorageOperationErrorsTotal.WithLabelValues("put", bucket).Inc()
		return "", fmt.Errorf("failed to upload %s/%s: %w", bucket, key, err)
	}

	metrics.AssetsUploadedTotal.WithLabelValues(bucket).Inc()
	return key, nil
}

func (s *StorageService) exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.s3Client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

func (s *StorageService) Delete(ctx context.Context, bucket string, paths ...string) error {
	var failures []error

	for start := 0; start < len(paths); start += deleteBatchSize {
		end := start + deleteBatchSize
		if end > len(paths) {
			end = len(paths)
		}

		objects := make([]*s3.ObjectIdentifier, 0, end-start)
		for _, p := range paths[start:end] {
			objects = append(objects, &s3.ObjectIdentifier{Key: aws.String(strings.TrimLeft(p, "/"))})
		}

		out, err := s.s3Client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &s3.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			metrics.StorageOperationErrorsTotal.WithLabelValues("delete", bucket).Inc()
			return fmt.Errorf("failed to delete objects from %s: %w", bucket, err)
		}

		for _, e := range out.Errors {
			if aws.StringValue(e.Code) == "NoSuchKey" {
				continue
			}
			failures = append(failures, fmt.Errorf("%s: %s", aws.StringValue(e.Key), aws.StringValue(e.Message)))
		}
	}

	if len(failures) > 0 {
		metrics.StorageOperationErrorsTotal.WithLabelValues("delete", bucket).Inc()
		return fmt.Errorf("failed to delete %d object(s) from %s: %w", len(failures), bucket, errors.Join(failures...))
	}

	return nil
}

func (s *StorageService) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string

	err := s.s3Client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(strings.TrimLeft(prefix, "/")),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			keys = append(keys, aws.StringValue(obj.Key))
		}
		return true
	})
	if err != nil {
		metrics.StorageOperationErrorsTotal.WithLabelValues("list", bucket).Inc()
		return nil, fmt.Errorf("failed to list %s/%s: %w", bucket, prefix, err)
	}

	return keys, nil
}

// PublicURL resolves the public address of an object. With a configured public base
// URL (CDN or Supabase "object/public" prefix) that base is used; otherwise the S3
// endpoint itself.
func (s *StorageService) PublicURL(bucket, path string, cacheBust bool) string {
	if path == "" {
		return ""
	}
	key := escapeKey(strings.TrimLeft(path, "/"))

	var u string
	switch {
	case s.config.PublicBaseURL != "":
		u = fmt.Sprintf("%s/%s/%s", s.config.PublicBaseURL, bucket, key)
	case s.config.Endpoint != "":
		u = fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.config.Endpoint, "/"), bucket, key)
	default:
		u = fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.config.Region, key)
	}

	if cacheBust {
		u += "?v=" + strconv.FormatInt(s.now().UnixMilli(), 10)
	}
	return u
}

// PathFromPublicURL extracts the object path from a URL produced by PublicURL for
// the same bucket. It returns "" when the URL does not point into the bucket.
func PathFromPublicURL(bucket, rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	marker := "/" + bucket + "/"
	p := u.EscapedPath()
	if i := strings.Index(p, marker); i >= 0 {
		unescaped, err := url.PathUnescape(p[i+len(marker):])
		if err != nil {
			return ""
		}
		return unescaped
	}
	// virtual-hosted style: https://{bucket}.s3.{region}.amazonaws.com/{key}
	if strings.HasPrefix(u.Host, bucket+".") {
		unescaped, err := url.PathUnescape(strings.TrimPrefix(p, "/"))
		if err != nil {
			return ""
		}
		return unescaped
	}
	return ""
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

func isNotFound(err error) bool {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return true
	}
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case "NotFound", s3.ErrCodeNoSuchKey:
			return true
		}
	}
	return false
}

// deleteLogged removes objects and only logs a failure. Used on best-effort paths.
func deleteLogged(ctx context.Context, storage ObjectStorage, bucket string, paths []string, fields logrus.Fields) {
	if len(paths) == 0 {
		return
	}
	if err := storage.Delete(ctx, bucket, paths...); err != nil {
		logrus.WithFields(fields).WithFields(logrus.Fields{
			"bucket": bucket,
			"paths":  paths,
		}).WithError(err).Warn("Failed to delete storage objects")
	}
}
