package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"imagetinder/internal/config"
)

// ErrRemoteUnavailable - сеть/таймаут при обращении к удалённому хранилищу.
// Повторные попытки - ответственность вызывающего, не клиента.
var ErrRemoteUnavailable = errors.New("удалённое хранилище недоступно")

type RemoteStore interface {
	Download(ctx context.Context, path string) ([]byte, error)
	ListImages(ctx context.Context, root string) ([]string, error)
}

// imageExtensions - допустимые расширения при обходе хранилища. HEIC
// попадает в индекс, но декодера для него не зарегистрировано: выдача
// такого изображения завершается ошибкой повреждённого файла
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".heic": true,
}

type MinIOClient struct {
	client *minio.Client
	config *config.Config
}

func NewMinIOClient(cfg *config.Config) (*MinIOClient, error) {
	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
		Secure: cfg.MinIO.UseSSL,
		Region: cfg.MinIO.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента MinIO: %w", err)
	}

	log.Printf("Клиент MinIO создан: endpoint=%s, bucket=%s", cfg.MinIO.Endpoint, cfg.MinIO.BucketName)

	return &MinIOClient{client: client, config: cfg}, nil
}

// Download скачивает объект целиком с ограничением по времени
func (m *MinIOClient) Download(ctx context.Context, objectPath string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, m.config.MinIO.DownloadTimeout)
	defer cancel()

	object, err := m.client.GetObject(ctx, m.config.MinIO.BucketName, objectPath, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRemoteUnavailable, objectPath, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRemoteUnavailable, objectPath, err)
	}

	return data, nil
}

// ListImages рекурсивно обходит каталог и возвращает пути всех изображений
func (m *MinIOClient) ListImages(ctx context.Context, root string) ([]string, error) {
	opts := minio.ListObjectsOptions{
		Prefix:    root,
		Recursive: true,
	}

	var images []string
	for object := range m.client.ListObjects(ctx, m.config.MinIO.BucketName, opts) {
		if object.Err != nil {
			return nil, fmt.Errorf("%w: listing %s: %v", ErrRemoteUnavailable, root, object.Err)
		}
		if strings.HasSuffix(object.Key, "/") {
			continue
		}
		if imageExtensions[strings.ToLower(path.Ext(object.Key))] {
			images = append(images, object.Key)
		}
	}

	return images, nil
}
