package app

import (
	"context"
	"log"

	"imagetinder/internal/cache"
	"imagetinder/internal/config"
	"imagetinder/internal/database"
	"imagetinder/internal/repository"
	"imagetinder/internal/scheduler"
	"imagetinder/internal/service"
	"imagetinder/internal/storage"
)

func App(cfg *config.Config) (*database.DB, *repository.Repository, *service.Service, *cache.Cache) {
	// connection DB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}

	// connection MinIO
	minioClient, err := storage.NewMinIOClient(cfg)
	if err != nil {
		log.Fatalf("Не удалось инициализировать MinIO: %v", err)
	}

	// disk image cache
	imageCache, err := cache.New(cfg.Cache.Dir, cfg.Cache.MaxImages, minioClient)
	if err != nil {
		log.Fatalf("Не удалось инициализировать кеш изображений: %v", err)
	}

	// enabling dependencies
	repo := repository.NewRepository(db.DB)

	services := service.NewService(repo, cfg, minioClient, imageCache)

	return db, repo, services, imageCache
}

// Schedule собирает фоновые задачи: индексация хранилища, пересчёт лучших
// изображений с последующим прогревом кеша и очистка кеша. Каждая задача
// выполняется также один раз при старте процесса. Пересчёт и прогрев -
// одна задача: прогрев читает best_images и должен видеть свежую запись,
// отдельные задачи в общем пуле воркеров этого порядка не гарантируют.
func Schedule(cfg *config.Config, services *service.Service, imageCache *cache.Cache) *scheduler.Scheduler {
	sched := scheduler.New(cfg.Jobs.Workers, 16)

	sched.Add(scheduler.Job{
		Name:     "sync-remote-images",
		Interval: cfg.Jobs.IngestInterval,
		Run:      services.Ingest.SyncRemoteImages,
	})
	sched.Add(scheduler.Job{
		Name:     "refresh-best-images",
		Interval: cfg.Jobs.RankingInterval,
		Run:      services.Ranking.RefreshBestImages,
	})
	sched.Add(scheduler.Job{
		Name:     "sweep-cache",
		Interval: cfg.Jobs.SweepInterval,
		Run: func(ctx context.Context) error {
			return imageCache.Sweep(cfg.Cache.MaxImages)
		},
	})

	return sched
}
