package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"imagetinder/internal/models"
)

type collectionRepository struct {
	db *sqlx.DB
}

func NewCollectionRepository(db *sqlx.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) GetByID(ctx context.Context, collectionID int64) (*models.Collection, error) {
	var collection models.Collection

	query := `SELECT * FROM collection WHERE id = $1`

	err := r.db.GetContext(ctx, &collection, query, collectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("коллекция %d: %w", collectionID, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при получении коллекции: %w", err)
	}

	return &collection, nil
}

func (r *collectionRepository) ListByUser(ctx context.Context, userID int64) ([]models.Collection, error) {
	var collections []models.Collection

	query := `
		SELECT c.id, c.name, c.start_date, c.end_date, c.best_images
		FROM collection c
		INNER JOIN user_collection uc ON uc.collection_id = c.id
		WHERE uc.user_id = $1
		ORDER BY c.start_date
	`

	err := r.db.SelectContext(ctx, &collections, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении коллекций пользователя: %w", err)
	}

	return collections, nil
}

func (r *collectionRepository) ListAll(ctx context.Context) ([]models.Collection, error) {
	var collections []models.Collection

	query := `SELECT * FROM collection ORDER BY id`

	err := r.db.SelectContext(ctx, &collections, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении списка коллекций: %w", err)
	}

	return collections, nil
}

func (r *collectionRepository) Create(ctx context.Context, collection *models.Collection, ownerID int64) error {
	query := `
		INSERT INTO collection (name, start_date, end_date)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.db.GetContext(ctx, &collection.ID, query,
		collection.Name, collection.StartDate, collection.EndDate)
	if err != nil {
		return fmt.Errorf("ошибка при создании коллекции: %w", err)
	}

	if err := r.AddUser(ctx, ownerID, collection.ID); err != nil {
		return err
	}

	return nil
}

func (r *collectionRepository) Update(ctx context.Context, collection *models.Collection) error {
	query := `
		UPDATE collection
		SET name = $1, start_date = $2, end_date = $3
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query,
		collection.Name, collection.StartDate, collection.EndDate, collection.ID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении коллекции: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("коллекция %d: %w", collection.ID, ErrNotFound)
	}

	return nil
}

func (r *collectionRepository) AddUser(ctx context.Context, userID, collectionID int64) error {
	query := `
		INSERT INTO user_collection (user_id, collection_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, userID, collectionID)
	if err != nil {
		return fmt.Errorf("ошибка при выдаче доступа к коллекции: %w", err)
	}

	return nil
}

func (r *collectionRepository) HasAccess(ctx context.Context, userID, collectionID int64) (bool, error) {
	var count int

	query := `
		SELECT COUNT(*) FROM user_collection
		WHERE user_id = $1 AND collection_id = $2
	`

	err := r.db.GetContext(ctx, &count, query, userID, collectionID)
	if err != nil {
		return false, fmt.Errorf("ошибка при проверке доступа: %w", err)
	}

	return count > 0, nil
}

// UpdateBestImages переписывает список лучших изображений коллекции;
// пустой набор очищает предыдущее значение, а не сохраняет его
func (r *collectionRepository) UpdateBestImages(ctx context.Context, collectionID int64, imageIDs []int64) error {
	parts := make([]string, len(imageIDs))
	for i, id := range imageIDs {
		parts[i] = strconv.FormatInt(id, 10)
	}

	query := `UPDATE collection SET best_images = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, strings.Join(parts, ","), collectionID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении best_images: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("коллекция %d: %w", collectionID, ErrNotFound)
	}

	return nil
}

func (r *collectionRepository) Info(ctx context.Context, collectionID, userID int64) (*models.CollectionInfo, error) {
	collection, err := r.GetByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	var counts struct {
		Images  int `db:"images"`
		Rated   int `db:"rated"`
		Trashed int `db:"trashed"`
	}

	query := `
		SELECT
			COUNT(*) AS images,
			COUNT(ui.image_id) AS rated,
			COUNT(*) FILTER (WHERE ui.deleted) AS trashed
		FROM image i
		JOIN collection c ON c.id = $1
		LEFT JOIN user_image ui ON ui.image_id = i.id AND ui.user_id = $2
		WHERE i.creation_date BETWEEN c.start_date AND c.end_date
	`

	err = r.db.GetContext(ctx, &counts, query, collectionID, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при подсчёте изображений коллекции: %w", err)
	}

	return &models.CollectionInfo{
		Name:      collection.Name,
		StartDate: collection.StartDate,
		EndDate:   collection.EndDate,
		Images:    counts.Images,
		Rated:     counts.Rated,
		Unrated:   counts.Images - counts.Rated,
		Trashed:   counts.Trashed,
	}, nil
}
