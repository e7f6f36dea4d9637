package service

import (
	"context"
	"database/sql"
	"log"
	"sort"
	"strconv"
	"strings"

	"imagetinder/internal/models"
	"imagetinder/internal/repository"
)

// bestImagesPerCollection - сколько лучших изображений публикуется на коллекцию
const bestImagesPerCollection = 3

// RankingService пересчитывает лучшие изображения коллекций и публикует их
// в кеш закреплённым набором
type RankingService interface {
	RecomputeBestImages(ctx context.Context) error
	WarmBestImages(ctx context.Context) error
	RefreshBestImages(ctx context.Context) error
}

type rankingService struct {
	collectionRepo repository.CollectionRepository
	imageRepo      repository.ImageRepository
	ratingRepo     repository.RatingRepository
	cache          ImageCache
}

func NewRankingService(collectionRepo repository.CollectionRepository, imageRepo repository.ImageRepository, ratingRepo repository.RatingRepository, imageCache ImageCache) RankingService {
	return &rankingService{
		collectionRepo: collectionRepo,
		imageRepo:      imageRepo,
		ratingRepo:     ratingRepo,
		cache:          imageCache,
	}
}

// RecomputeBestImages пересчитывает топ изображений каждой коллекции по
// оценкам всех пользователей с доступом к ней. Сбой одной коллекции не
// прерывает пересчёт остальных.
func (s *rankingService) RecomputeBestImages(ctx context.Context) error {
	collections, err := s.collectionRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	for _, collection := range collections {
		rows, err := s.ratingRepo.ListByCollection(ctx, collection.ID)
		if err != nil {
			log.Printf("Внимание: оценки коллекции %d не получены: %v", collection.ID, err)
			continue
		}

		best := topImages(rows, bestImagesPerCollection)

		// пустой набор очищает предыдущее значение
		if err := s.collectionRepo.UpdateBestImages(ctx, collection.ID, best); err != nil {
			log.Printf("Внимание: best_images коллекции %d не обновлены: %v", collection.ID, err)
			continue
		}
	}

	return nil
}

// WarmBestImages прогревает кеш лучшими изображениями всех коллекций и
// закрепляет их объединённый набор одной заменой
func (s *rankingService) WarmBestImages(ctx context.Context) error {
	collections, err := s.collectionRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	var ids []int64
	for _, collection := range collections {
		ids = append(ids, parseBestImages(collection.BestImages)...)
	}

	paths, err := s.imageRepo.PathsByIDs(ctx, ids)
	if err != nil {
		return err
	}

	idToPath := make(map[int64]string, len(ids))
	for _, id := range ids {
		path, ok := paths[id]
		if !ok {
			log.Printf("Внимание: изображение %d из best_images отсутствует в БД", id)
			continue
		}
		idToPath[id] = path
	}

	if err := s.cache.CacheMany(ctx, idToPath); err != nil {
		return err
	}
	return s.cache.Pin(ids)
}

// RefreshBestImages - пересчёт и прогрев одним шагом. Прогрев читает
// best_images из БД, поэтому обязан идти строго после записи пересчёта;
// параллельный запуск этих двух операций закрепил бы вчерашний набор.
func (s *rankingService) RefreshBestImages(ctx context.Context) error {
	if err := s.RecomputeBestImages(ctx); err != nil {
		return err
	}
	return s.WarmBestImages(ctx)
}

// topImages ранжирует изображения по максимальной оценке среди
// пользователей; равные оценки упорядочиваются по возрастанию id, чтобы
// результат был детерминированным
func topImages(rows []models.RatingRow, n int) []int64 {
	byImage := make(map[int64]float64)
	for _, row := range rows {
		if current, ok := byImage[row.ImageID]; !ok || row.Rating > current {
			byImage[row.ImageID] = row.Rating
		}
	}

	ids := make([]int64, 0, len(byImage))
	for id := range byImage {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if byImage[ids[i]] == byImage[ids[j]] {
			return ids[i] < ids[j]
		}
		return byImage[ids[i]] > byImage[ids[j]]
	})

	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}

func parseBestImages(bestImages sql.NullString) []int64 {
	if !bestImages.Valid || bestImages.String == "" {
		return nil
	}

	var ids []int64
	for _, part := range strings.Split(bestImages.String, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
