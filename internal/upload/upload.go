// Package upload provides the log-archive collaborators: execution name
// resolution and object store upload.
package upload

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/seqops/nflaunch/internal/config"
	"github.com/seqops/nflaunch/internal/logging"
)

// StaticResolver resolves the execution name from configuration. An empty
// name means the scheduler never injected one.
type StaticResolver struct {
	Name string
}

// ExecutionName returns the configured name, or ok=false when unset.
func (r StaticResolver) ExecutionName() (string, bool) {
	if r.Name == "" {
		return "", false
	}
	return r.Name, true
}

// ObjectStore uploads files to an S3-compatible bucket.
type ObjectStore struct {
	client *minio.Client
	bucket string
	log    *logging.Logger
}

// NewObjectStore creates an uploader from the object store configuration.
func NewObjectStore(cfg config.ObjectStore, log *logging.Logger) (*ObjectStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("object store endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("object store bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	return &ObjectStore{client: client, bucket: cfg.Bucket, log: log}, nil
}

// Upload copies localPath to remotePath within the configured bucket.
func (s *ObjectStore) Upload(ctx context.Context, localPath, remotePath string) error {
	info, err := s.client.FPutObject(ctx, s.bucket, remotePath, localPath, minio.PutObjectOptions{
		ContentType: "text/plain",
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", localPath, err)
	}
	s.log.Debug("object uploaded", map[string]interface{}{
		"bucket": s.bucket,
		"key":    info.Key,
		"size":   info.Size,
	})
	return nil
}

// Discard is an Uploader that only logs. Used when no object store is
// configured so the finalize path still runs end to end.
type Discard struct {
	Log *logging.Logger
}

// Upload logs the would-be destination and drops the file.
func (d Discard) Upload(ctx context.Context, localPath, remotePath string) error {
	d.Log.Info("no log store configured, skipping upload", map[string]interface{}{
		"local":  localPath,
		"remote": remotePath,
	})
	return nil
}

// JoinPath joins remote path segments with single slashes, trimming redundant
// separators from each segment.
func JoinPath(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.Trim(s, "/")
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}
