package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"voxfolio/config"
	"voxfolio/logger"
)

var minioClient *minio.Client

// InitMinio initializes the MinIO client and makes sure the application
// bucket exists.
func InitMinio(cfg *config.Config) error {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("created bucket", logger.String("bucket", cfg.MinioBucket))
	}

	minioClient = client
	logger.Info("MinIO client initialized", logger.String("endpoint", cfg.MinioEndpoint), logger.String("bucket", cfg.MinioBucket))
	return nil
}

// GetMinioClient returns the MinIO client instance.
func GetMinioClient() *minio.Client {
	return minioClient
}

// UploadAudio stores a demo's audio file under audio/ with a random object
// name and returns the object key.
func UploadAudio(ctx context.Context, cfg *config.Config, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if minioClient == nil {
		return "", fmt.Errorf("MinIO client not initialized")
	}
	if contentType == "" {
		contentType = "audio/mpeg"
	}

	objectName := fmt.Sprintf("audio/%s%s", uuid.New().String(), path.Ext(filename))
	_, err := minioClient.PutObject(ctx, cfg.MinioBucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload audio: %w", err)
	}
	logger.Info("audio uploaded", logger.String("object", objectName))
	return objectName, nil
}

// UploadWaveform stores a demo's waveform peaks JSON and returns the object
// key.
func UploadWaveform(ctx context.Context, cfg *config.Config, demoID int64, peaksJSON []byte) (string, error) {
	if minioClient == nil {
		return "", fmt.Errorf("MinIO client not initialized")
	}

	objectName := fmt.Sprintf("waveforms/%d.json", demoID)
	_, err := minioClient.PutObject(ctx, cfg.MinioBucket, objectName,
		bytes.NewReader(peaksJSON), int64(len(peaksJSON)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("failed to upload waveform: %w", err)
	}
	return objectName, nil
}

// GetObject opens an object for streaming.
func GetObject(ctx context.Context, cfg *config.Config, objectName string) (*minio.Object, error) {
	if minioClient == nil {
		return nil, fmt.Errorf("MinIO client not initialized")
	}
	object, err := minioClient.GetObject(ctx, cfg.MinioBucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open object %s: %w", objectName, err)
	}
	return object, nil
}

// RemoveObject deletes an object, ignoring objects that are already gone.
func RemoveObject(ctx context.Context, cfg *config.Config, objectName string) error {
	if minioClient == nil || objectName == "" {
		return nil
	}
	if err := minioClient.RemoveObject(ctx, cfg.MinioBucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", objectName, err)
	}
	return nil
}
