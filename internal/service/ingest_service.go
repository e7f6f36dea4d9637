package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"sync"
	"time"

	"imagetinder/internal/config"
	"imagetinder/internal/imagemeta"
	"imagetinder/internal/models"
	"imagetinder/internal/repository"
	"imagetinder/internal/storage"
)

// IngestService обходит удалённое хранилище и регистрирует найденные
// изображения в БД; дедупликация идёт по уникальному file_path
type IngestService interface {
	SyncRemoteImages(ctx context.Context) error
}

type ingestService struct {
	imageRepo repository.ImageRepository
	remote    storage.RemoteStore
	cfg       *config.Config
}

func NewIngestService(imageRepo repository.ImageRepository, remote storage.RemoteStore, cfg *config.Config) IngestService {
	return &ingestService{
		imageRepo: imageRepo,
		remote:    remote,
		cfg:       cfg,
	}
}

// SyncRemoteImages скачивает метаданные новых изображений небольшим пулом
// воркеров; уже известные пути не скачиваются повторно
func (s *ingestService) SyncRemoteImages(ctx context.Context) error {
	paths, err := s.remote.ListImages(ctx, s.cfg.MinIO.PhotoRoot)
	if err != nil {
		return err
	}

	log.Printf("Индексация: найдено %d изображений в удалённом хранилище", len(paths))

	workers := s.cfg.Jobs.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				if err := s.ingestOne(ctx, path); err != nil {
					log.Printf("Внимание: изображение %s не проиндексировано: %v", path, err)
				}
			}
		}()
	}

	for _, path := range paths {
		jobs <- path
	}
	close(jobs)
	wg.Wait()

	return nil
}

func (s *ingestService) ingestOne(ctx context.Context, path string) error {
	_, err := s.imageRepo.GetByPath(ctx, path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	data, err := s.remote.Download(ctx, path)
	if err != nil {
		return err
	}

	// дата съёмки из EXIF; без неё записывается время индексации
	date, err := imagemeta.CaptureDate(data)
	if err != nil {
		log.Printf("Внимание: дата съёмки %s не прочитана, используется текущее время: %v", path, err)
		date = time.Now()
	}

	image := &models.Image{
		FilePath:     path,
		CreationDate: date,
	}
	if label, err := imagemeta.LocationLabel(data); err == nil {
		image.ImageLocation = sql.NullString{String: label, Valid: true}
	}

	return s.imageRepo.Upsert(ctx, image)
}
