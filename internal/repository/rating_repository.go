package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"imagetinder/internal/models"
)

type ratingRepository struct {
	db *sqlx.DB
}

func NewRatingRepository(db *sqlx.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Upsert сохраняет оценку; не больше одной строки на (user_id, image_id).
// Флаг корзины не сбрасывается: изображение остаётся в корзине, если оно
// уже было там или запрошено сейчас.
func (r *ratingRepository) Upsert(ctx context.Context, rating *models.Rating) error {
	query := `
		INSERT INTO user_image (user_id, image_id, rating, deleted)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, image_id) DO UPDATE
		SET rating = EXCLUDED.rating,
		    deleted = user_image.deleted OR EXCLUDED.deleted
	`

	_, err := r.db.ExecContext(ctx, query,
		rating.UserID, rating.ImageID, rating.Rating, rating.Deleted)
	if err != nil {
		return fmt.Errorf("ошибка при сохранении оценки: %w", err)
	}

	return nil
}

// Get возвращает оценку пользователя или nil, если её ещё нет
func (r *ratingRepository) Get(ctx context.Context, userID, imageID int64) (*models.Rating, error) {
	var rating models.Rating

	query := `SELECT * FROM user_image WHERE user_id = $1 AND image_id = $2`

	err := r.db.GetContext(ctx, &rating, query, userID, imageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка при получении оценки: %w", err)
	}

	return &rating, nil
}

// ListByCollection собирает тройки (пользователь, изображение, оценка) по
// окну коллекции для ранжирования: только пользователи с доступом к
// коллекции, строки из корзины исключаются
func (r *ratingRepository) ListByCollection(ctx context.Context, collectionID int64) ([]models.RatingRow, error) {
	var rows []models.RatingRow

	query := `
		SELECT ui.user_id, ui.image_id, ui.rating
		FROM user_image ui
		JOIN image i ON i.id = ui.image_id
		JOIN collection c ON c.id = $1
		JOIN user_collection uc ON uc.collection_id = c.id AND uc.user_id = ui.user_id
		WHERE i.creation_date BETWEEN c.start_date AND c.end_date
		AND ui.deleted = FALSE
	`

	err := r.db.SelectContext(ctx, &rows, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении оценок коллекции: %w", err)
	}

	return rows, nil
}
