package service

import (
	"context"
	"errors"

	"imagetinder/internal/config"
	"imagetinder/internal/repository"
	"imagetinder/internal/storage"
)

// ErrUnauthorized - у пользователя нет доступа к коллекции; отличается от
// ErrNotFound, чтобы не раскрывать существование чужих коллекций
var ErrUnauthorized = errors.New("нет доступа к коллекции")

// ImageCache - операции кеша, нужные сервисам. Все мутации каталога кеша
// проходят только через эти методы.
type ImageCache interface {
	CacheMany(ctx context.Context, idToPath map[int64]string) error
	Pin(ids []int64) error
	Sweep(maxEntries int) error
}

type Service struct {
	Auth       AuthService
	Collection CollectionService
	Review     ReviewService
	Ranking    RankingService
	Ingest     IngestService
}

func NewService(rep *repository.Repository, cfg *config.Config, remote storage.RemoteStore, imageCache ImageCache) *Service {
	return &Service{
		Auth:       NewAuthService(rep.User, cfg),
		Collection: NewCollectionService(rep.Collection),
		Review:     NewReviewService(rep.Image, rep.Rating, rep.Collection),
		Ranking:    NewRankingService(rep.Collection, rep.Image, rep.Rating, imageCache),
		Ingest:     NewIngestService(rep.Image, remote, cfg),
	}
}
