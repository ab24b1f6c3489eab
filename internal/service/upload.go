package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/config"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/metrics"
)

// UploadService pushes exported artifacts to S3-compatible storage.
type UploadService struct {
	api    *minio.Client
	bucket string
}

func NewUploadService(cfg config.S3Config) (*UploadService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}
	return &UploadService{api: client, bucket: cfg.Bucket}, nil
}

// UploadFile stores one local artifact under reports/<basename> and
// returns the object key.
func (s *UploadService) UploadFile(ctx context.Context, localPath string) (string, error) {
	started := time.Now()
	defer func() { metrics.ObserveStage("upload", time.Since(started).Seconds()) }()

	key := "reports/" + filepath.Base(localPath)
	info, err := s.api.FPutObject(ctx, s.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentTypeFor(localPath),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", localPath, err)
	}

	log.Info().Str("key", key).Int64("size", info.Size).Msg("artifact uploaded")
	return key, nil
}

// UploadFiles uploads several artifacts, stopping at the first failure.
func (s *UploadService) UploadFiles(ctx context.Context, paths []string) ([]string, error) {
	keys := make([]string, 0, len(paths))
	for _, p := range paths {
		key, err := s.UploadFile(ctx, p)
		if err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
