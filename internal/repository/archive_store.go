package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrSnapshotNotFound is returned when an archived snapshot does not exist
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ArchiveConfig configures the S3-compatible snapshot archive
type ArchiveConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ArchiveStore keeps an immutable copy of every published requirement structure
type ArchiveStore interface {
	PutSnapshot(ctx context.Context, programID string, version int, data []byte) (string, error)
	GetSnapshot(ctx context.Context, key string) ([]byte, error)
	ListSnapshots(ctx context.Context, programID string) ([]string, error)
}

type archiveStore struct {
	client     *minio.Client
	bucketName string
	region     string
	initOnce   sync.Once
	initErr    error
}

// NewArchiveStore creates a MinIO-backed archive
func NewArchiveStore(cfg ArchiveConfig) (ArchiveStore, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("archive endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("archive access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init archive client: %w", err)
	}

	return &archiveStore{
		client:     client,
		bucketName: bucket,
		region:     region,
	}, nil
}

func (s *archiveStore) ensureBucket(ctx context.Context) error {
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

func (s *archiveStore) PutSnapshot(ctx context.Context, programID string, version int, data []byte) (string, error) {
	programID = strings.TrimSpace(programID)
	if programID == "" {
		return "", fmt.Errorf("program id is required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}

	key := SnapshotKey(programID, version, uuid.New().String())
	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("put snapshot: %w", err)
	}
	return key, nil
}

func (s *archiveStore) GetSnapshot(ctx context.Context, key string) ([]byte, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return nil, fmt.Errorf("snapshot key is required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}

	obj, err := s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket" {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *archiveStore) ListSnapshots(ctx context.Context, programID string) ([]string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}

	prefix := snapshotPrefix(programID)
	keys := make([]string, 0, 16)
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if obj.Key == "" {
			continue
		}
		keys = append(keys, obj.Key)
	}
	sort.Strings(keys)
	return keys, nil
}

func snapshotPrefix(programID string) string {
	return "programs/" + strings.TrimSpace(programID) + "/"
}

// SnapshotKey is the object key of one published version. Versions are zero
// padded so keys sort in publish order.
func SnapshotKey(programID string, version int, suffix string) string {
	return fmt.Sprintf("%sv%06d-%s.json", snapshotPrefix(programID), version, suffix)
}
