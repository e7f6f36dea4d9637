package service

import (
	"context"
	"fmt"

	"imagetinder/internal/models"
	"imagetinder/internal/repository"
)

// TraversalFilter - параметры фильтрованного режима обхода. В этом режиме
// видны только изображения, уже оценённые пользователем не ниже MinRating;
// MaxPerDay == 0 означает "без ограничения в день".
type TraversalFilter struct {
	Filtered  bool    `json:"filtered"`
	MinRating float64 `json:"minRating"`
	MaxPerDay int     `json:"maxPerDay"`
}

type RecordRequest struct {
	UserID       int64
	CollectionID int64
	ImageID      int64
	Rating       float64
	Trash        bool
	Direction    string
	Filter       TraversalFilter
}

// ReviewStep - результат шага сессии: следующее изображение и его текущая
// оценка (0, если оценки ещё нет). Image == nil означает конец сессии.
type ReviewStep struct {
	Image  *models.Image `json:"image"`
	Rating float64       `json:"rating"`
}

// ReviewService - обход сессии просмотра. Позиция не хранится в памяти
// процесса: следующее изображение каждый раз выводится заново из БД по
// (дата съёмки, id) текущего, поэтому сессия переживает рестарт и видит
// параллельные изменения оценок.
type ReviewService interface {
	Start(ctx context.Context, userID, collectionID int64) (*models.Image, error)
	Next(ctx context.Context, userID, collectionID, currentImageID int64, filter TraversalFilter) (*models.Image, error)
	Previous(ctx context.Context, userID, collectionID, currentImageID int64, filter TraversalFilter) (*models.Image, error)
	RecordAndAdvance(ctx context.Context, req RecordRequest) (*ReviewStep, error)
}

type reviewService struct {
	imageRepo      repository.ImageRepository
	ratingRepo     repository.RatingRepository
	collectionRepo repository.CollectionRepository
}

func NewReviewService(imageRepo repository.ImageRepository, ratingRepo repository.RatingRepository, collectionRepo repository.CollectionRepository) ReviewService {
	return &reviewService{
		imageRepo:      imageRepo,
		ratingRepo:     ratingRepo,
		collectionRepo: collectionRepo,
	}
}

func (s *reviewService) authorize(ctx context.Context, userID, collectionID int64) error {
	ok, err := s.collectionRepo.HasAccess(ctx, userID, collectionID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

// Start возвращает самое раннее ещё не оценённое изображение окна;
// nil - когда всё уже оценено и сессию пора завершать
func (s *reviewService) Start(ctx context.Context, userID, collectionID int64) (*models.Image, error) {
	if err := s.authorize(ctx, userID, collectionID); err != nil {
		return nil, err
	}

	return s.imageRepo.FirstUnrated(ctx, collectionID, userID)
}

func (s *reviewService) Next(ctx context.Context, userID, collectionID, currentImageID int64, filter TraversalFilter) (*models.Image, error) {
	if err := s.authorize(ctx, userID, collectionID); err != nil {
		return nil, err
	}

	current, err := s.imageRepo.GetByID(ctx, currentImageID)
	if err != nil {
		return nil, err
	}

	if !filter.Filtered {
		return s.imageRepo.NextInWindow(ctx, collectionID, current.CreationDate, current.ID)
	}

	sequence, err := s.filteredSequence(ctx, userID, collectionID, filter)
	if err != nil {
		return nil, err
	}

	for i := range sequence {
		if laterThan(&sequence[i], current) {
			return &sequence[i], nil
		}
	}
	return nil, nil
}

func (s *reviewService) Previous(ctx context.Context, userID, collectionID, currentImageID int64, filter TraversalFilter) (*models.Image, error) {
	if err := s.authorize(ctx, userID, collectionID); err != nil {
		return nil, err
	}

	current, err := s.imageRepo.GetByID(ctx, currentImageID)
	if err != nil {
		return nil, err
	}

	if !filter.Filtered {
		return s.imageRepo.PrevInWindow(ctx, collectionID, current.CreationDate, current.ID)
	}

	sequence, err := s.filteredSequence(ctx, userID, collectionID, filter)
	if err != nil {
		return nil, err
	}

	for i := len(sequence) - 1; i >= 0; i-- {
		if laterThan(current, &sequence[i]) {
			return &sequence[i], nil
		}
	}
	return nil, nil
}

// RecordAndAdvance сохраняет оценку и делает шаг в указанном направлении.
// Вместе со следующим изображением возвращается его существующая оценка
// для предзаполнения на клиенте.
func (s *reviewService) RecordAndAdvance(ctx context.Context, req RecordRequest) (*ReviewStep, error) {
	if err := s.authorize(ctx, req.UserID, req.CollectionID); err != nil {
		return nil, err
	}

	rating := &models.Rating{
		UserID:  req.UserID,
		ImageID: req.ImageID,
		Rating:  req.Rating,
		Deleted: req.Trash,
	}
	if err := s.ratingRepo.Upsert(ctx, rating); err != nil {
		return nil, err
	}

	var next *models.Image
	var err error
	switch req.Direction {
	case "previous":
		next, err = s.Previous(ctx, req.UserID, req.CollectionID, req.ImageID, req.Filter)
	default:
		next, err = s.Next(ctx, req.UserID, req.CollectionID, req.ImageID, req.Filter)
	}
	if err != nil {
		return nil, err
	}

	step := &ReviewStep{Image: next}
	if next != nil {
		existing, err := s.ratingRepo.Get(ctx, req.UserID, next.ID)
		if err != nil {
			return nil, fmt.Errorf("ошибка при получении оценки следующего изображения: %w", err)
		}
		if existing != nil {
			step.Rating = existing.Rating
		}
	}

	return step, nil
}

// filteredSequence строит последовательность фильтрованного режима:
// оценённые не ниже порога изображения в порядке (дата, id), затем не
// больше MaxPerDay на календарный день съёмки
func (s *reviewService) filteredSequence(ctx context.Context, userID, collectionID int64, filter TraversalFilter) ([]models.Image, error) {
	images, err := s.imageRepo.RatedInWindow(ctx, collectionID, userID, filter.MinRating)
	if err != nil {
		return nil, err
	}
	return capPerDay(images, filter.MaxPerDay), nil
}

func capPerDay(images []models.Image, maxPerDay int) []models.Image {
	if maxPerDay <= 0 {
		return images
	}

	capped := make([]models.Image, 0, len(images))
	day := ""
	count := 0
	for _, img := range images {
		d := img.CreationDate.UTC().Format("2006-01-02")
		if d != day {
			day = d
			count = 0
		}
		if count < maxPerDay {
			capped = append(capped, img)
			count++
		}
	}
	return capped
}

// laterThan - строгий порядок обхода: по дате съёмки, при равных датах по id
func laterThan(a, b *models.Image) bool {
	if a.CreationDate.Equal(b.CreationDate) {
		return a.ID > b.ID
	}
	return a.CreationDate.After(b.CreationDate)
}
