package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"imagetinder/internal/models"
)

type imageRepository struct {
	db *sqlx.DB
}

func NewImageRepository(db *sqlx.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) GetByID(ctx context.Context, imageID int64) (*models.Image, error) {
	var image models.Image

	query := `SELECT * FROM image WHERE id = $1`

	err := r.db.GetContext(ctx, &image, query, imageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("изображение %d: %w", imageID, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при получении изображения: %w", err)
	}

	return &image, nil
}

func (r *imageRepository) GetByPath(ctx context.Context, filePath string) (*models.Image, error) {
	var image models.Image

	query := `SELECT * FROM image WHERE file_path = $1`

	err := r.db.GetContext(ctx, &image, query, filePath)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("изображение %s: %w", filePath, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при получении изображения по пути: %w", err)
	}

	return &image, nil
}

// Upsert добавляет изображение или обновляет дату/локацию существующего;
// уникальный ключ - file_path
func (r *imageRepository) Upsert(ctx context.Context, image *models.Image) error {
	query := `
		INSERT INTO image (file_path, creation_date, image_location)
		VALUES ($1, $2, $3)
		ON CONFLICT (file_path) DO UPDATE
		SET creation_date = EXCLUDED.creation_date,
		    image_location = EXCLUDED.image_location
		RETURNING id
	`

	err := r.db.GetContext(ctx, &image.ID, query,
		image.FilePath, image.CreationDate, image.ImageLocation)
	if err != nil {
		return fmt.Errorf("ошибка при сохранении изображения: %w", err)
	}

	return nil
}

func (r *imageRepository) PathsByIDs(ctx context.Context, imageIDs []int64) (map[int64]string, error) {
	if len(imageIDs) == 0 {
		return map[int64]string{}, nil
	}

	query, args, err := sqlx.In(`SELECT id, file_path FROM image WHERE id IN (?)`, imageIDs)
	if err != nil {
		return nil, fmt.Errorf("ошибка при построении запроса: %w", err)
	}
	query = r.db.Rebind(query)

	var rows []struct {
		ID       int64  `db:"id"`
		FilePath string `db:"file_path"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("ошибка при получении путей изображений: %w", err)
	}

	paths := make(map[int64]string, len(rows))
	for _, row := range rows {
		paths[row.ID] = row.FilePath
	}
	return paths, nil
}

// FirstUnrated возвращает самое раннее изображение окна коллекции, у
// которого нет строки user_image для данного пользователя; nil - когда
// всё уже оценено
func (r *imageRepository) FirstUnrated(ctx context.Context, collectionID, userID int64) (*models.Image, error) {
	var image models.Image

	query := `
		SELECT i.id, i.file_path, i.creation_date, i.image_location
		FROM image i
		JOIN collection c ON c.id = $1
		LEFT JOIN user_image ui ON ui.image_id = i.id AND ui.user_id = $2
		WHERE i.creation_date BETWEEN c.start_date AND c.end_date
		AND ui.image_id IS NULL
		ORDER BY i.creation_date ASC, i.id ASC
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &image, query, collectionID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка при поиске первого изображения: %w", err)
	}

	return &image, nil
}

func (r *imageRepository) NextInWindow(ctx context.Context, collectionID int64, after time.Time, afterID int64) (*models.Image, error) {
	var image models.Image

	query := `
		SELECT i.id, i.file_path, i.creation_date, i.image_location
		FROM image i
		JOIN collection c ON c.id = $1
		WHERE i.creation_date BETWEEN c.start_date AND c.end_date
		AND (i.creation_date > $2 OR (i.creation_date = $2 AND i.id > $3))
		ORDER BY i.creation_date ASC, i.id ASC
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &image, query, collectionID, after, afterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка при поиске следующего изображения: %w", err)
	}

	return &image, nil
}

func (r *imageRepository) PrevInWindow(ctx context.Context, collectionID int64, before time.Time, beforeID int64) (*models.Image, error) {
	var image models.Image

	query := `
		SELECT i.id, i.file_path, i.creation_date, i.image_location
		FROM image i
		JOIN collection c ON c.id = $1
		WHERE i.creation_date BETWEEN c.start_date AND c.end_date
		AND (i.creation_date < $2 OR (i.creation_date = $2 AND i.id < $3))
		ORDER BY i.creation_date DESC, i.id DESC
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &image, query, collectionID, before, beforeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка при поиске предыдущего изображения: %w", err)
	}

	return &image, nil
}

// RatedInWindow возвращает изображения окна, которым пользователь поставил
// оценку не ниже minRating. Изображения без оценки этого пользователя сюда
// намеренно не попадают: фильтр означает "покажи то, что я уже оценил выше X"
func (r *imageRepository) RatedInWindow(ctx context.Context, collectionID, userID int64, minRating float64) ([]models.Image, error) {
	var images []models.Image

	query := `
		SELECT i.id, i.file_path, i.creation_date, i.image_location
		FROM image i
		JOIN collection c ON c.id = $1
		JOIN user_image ui ON ui.image_id = i.id AND ui.user_id = $2
		WHERE i.creation_date BETWEEN c.start_date AND c.end_date
		AND ui.rating >= $3
		ORDER BY i.creation_date ASC, i.id ASC
	`

	err := r.db.SelectContext(ctx, &images, query, collectionID, userID, minRating)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении оценённых изображений: %w", err)
	}

	return images, nil
}
