package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"imagetinder/internal/models"
)

// ErrNotFound - запрошенной строки нет; обработчики отдают 404
var ErrNotFound = errors.New("запись не найдена")

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	VerifyPassword(ctx context.Context, email, password string) (*models.User, error)
	UpdateRefreshToken(ctx context.Context, userID int64, refreshToken string, expiryTime time.Time) error
	GetUserByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error)
}

type ImageRepository interface {
	GetByID(ctx context.Context, imageID int64) (*models.Image, error)
	GetByPath(ctx context.Context, filePath string) (*models.Image, error)
	Upsert(ctx context.Context, image *models.Image) error
	PathsByIDs(ctx context.Context, imageIDs []int64) (map[int64]string, error)

	// Запросы обхода сессии просмотра. Все они упорядочены по
	// (creation_date, id), чтобы порядок был тотальным и без циклов.
	FirstUnrated(ctx context.Context, collectionID, userID int64) (*models.Image, error)
	NextInWindow(ctx context.Context, collectionID int64, after time.Time, afterID int64) (*models.Image, error)
	PrevInWindow(ctx context.Context, collectionID int64, before time.Time, beforeID int64) (*models.Image, error)
	RatedInWindow(ctx context.Context, collectionID, userID int64, minRating float64) ([]models.Image, error)
}

type CollectionRepository interface {
	GetByID(ctx context.Context, collectionID int64) (*models.Collection, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Collection, error)
	ListAll(ctx context.Context) ([]models.Collection, error)
	Create(ctx context.Context, collection *models.Collection, ownerID int64) error
	Update(ctx context.Context, collection *models.Collection) error
	AddUser(ctx context.Context, userID, collectionID int64) error
	HasAccess(ctx context.Context, userID, collectionID int64) (bool, error)
	UpdateBestImages(ctx context.Context, collectionID int64, imageIDs []int64) error
	Info(ctx context.Context, collectionID, userID int64) (*models.CollectionInfo, error)
}

type RatingRepository interface {
	Upsert(ctx context.Context, rating *models.Rating) error
	Get(ctx context.Context, userID, imageID int64) (*models.Rating, error)
	ListByCollection(ctx context.Context, collectionID int64) ([]models.RatingRow, error)
}

type Repository struct {
	User       UserRepository
	Image      ImageRepository
	Collection CollectionRepository
	Rating     RatingRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		User:       NewUserRepository(db),
		Image:      NewImageRepository(db),
		Collection: NewCollectionRepository(db),
		Rating:     NewRatingRepository(db),
	}
}
