package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"imagetinder/internal/models"
)

type MockImageRepository struct {
	mock.Mock
}

func (m *MockImageRepository) GetByID(ctx context.Context, imageID int64) (*models.Image, error) {
	args := m.Called(ctx, imageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Image), args.Error(1)
}

func (m *MockImageRepository) GetByPath(ctx context.Context, filePath string) (*models.Image, error) {
	args := m.Called(ctx, filePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Image), args.Error(1)
}

func (m *MockImageRepository) Upsert(ctx context.Context, image *models.Image) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

func (m *MockImageRepository) PathsByIDs(ctx context.Context, imageIDs []int64) (map[int64]string, error) {
	args := m.Called(ctx, imageIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]string), args.Error(1)
}

func (m *MockImageRepository) FirstUnrated(ctx context.Context, collectionID, userID int64) (*models.Image, error) {
	args := m.Called(ctx, collectionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Image), args.Error(1)
}

func (m *MockImageRepository) NextInWindow(ctx context.Context, collectionID int64, after time.Time, afterID int64) (*models.Image, error) {
	args := m.Called(ctx, collectionID, after, afterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Image), args.Error(1)
}

func (m *MockImageRepository) PrevInWindow(ctx context.Context, collectionID int64, before time.Time, beforeID int64) (*models.Image, error) {
	args := m.Called(ctx, collectionID, before, beforeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Image), args.Error(1)
}

func (m *MockImageRepository) RatedInWindow(ctx context.Context, collectionID, userID int64, minRating float64) ([]models.Image, error) {
	args := m.Called(ctx, collectionID, userID, minRating)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Image), args.Error(1)
}

type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) Upsert(ctx context.Context, rating *models.Rating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *MockRatingRepository) Get(ctx context.Context, userID, imageID int64) (*models.Rating, error) {
	args := m.Called(ctx, userID, imageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rating), args.Error(1)
}

func (m *MockRatingRepository) ListByCollection(ctx context.Context, collectionID int64) ([]models.RatingRow, error) {
	args := m.Called(ctx, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RatingRow), args.Error(1)
}

type MockCollectionRepository struct {
	mock.Mock
}

func (m *MockCollectionRepository) GetByID(ctx context.Context, collectionID int64) (*models.Collection, error) {
	args := m.Called(ctx, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collection), args.Error(1)
}

func (m *MockCollectionRepository) ListByUser(ctx context.Context, userID int64) ([]models.Collection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Collection), args.Error(1)
}

func (m *MockCollectionRepository) ListAll(ctx context.Context) ([]models.Collection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Collection), args.Error(1)
}

func (m *MockCollectionRepository) Create(ctx context.Context, collection *models.Collection, ownerID int64) error {
	args := m.Called(ctx, collection, ownerID)
	return args.Error(0)
}

func (m *MockCollectionRepository) Update(ctx context.Context, collection *models.Collection) error {
	args := m.Called(ctx, collection)
	return args.Error(0)
}

func (m *MockCollectionRepository) AddUser(ctx context.Context, userID, collectionID int64) error {
	args := m.Called(ctx, userID, collectionID)
	return args.Error(0)
}

func (m *MockCollectionRepository) HasAccess(ctx context.Context, userID, collectionID int64) (bool, error) {
	args := m.Called(ctx, userID, collectionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCollectionRepository) UpdateBestImages(ctx context.Context, collectionID int64, imageIDs []int64) error {
	args := m.Called(ctx, collectionID, imageIDs)
	return args.Error(0)
}

func (m *MockCollectionRepository) Info(ctx context.Context, collectionID, userID int64) (*models.CollectionInfo, error) {
	args := m.Called(ctx, collectionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CollectionInfo), args.Error(1)
}

type MockImageCache struct {
	mock.Mock
}

func (m *MockImageCache) CacheMany(ctx context.Context, idToPath map[int64]string) error {
	args := m.Called(ctx, idToPath)
	return args.Error(0)
}

func (m *MockImageCache) Pin(ids []int64) error {
	args := m.Called(ids)
	return args.Error(0)
}

func (m *MockImageCache) Sweep(maxEntries int) error {
	args := m.Called(maxEntries)
	return args.Error(0)
}
