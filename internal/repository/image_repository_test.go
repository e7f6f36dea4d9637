package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagetinder/internal/models"
)

func newImageRepo(t *testing.T) (ImageRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewImageRepository(sqlxDB), mock
}

func imageColumns() []string {
	return []string{"id", "file_path", "creation_date", "image_location"}
}

func TestImageRepository_GetByID(t *testing.T) {
	repo, mock := newImageRepo(t)
	ctx := context.Background()

	created := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)

	t.Run("Успешное получение изображения", func(t *testing.T) {
		rows := sqlmock.NewRows(imageColumns()).
			AddRow(10, "Photos/b.jpg", created, nil)

		mock.ExpectQuery(`SELECT * FROM image WHERE id = $1`).
			WithArgs(int64(10)).
			WillReturnRows(rows)

		image, err := repo.GetByID(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(10), image.ID)
		assert.Equal(t, "Photos/b.jpg", image.FilePath)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Изображение не найдено", func(t *testing.T) {
		mock.ExpectQuery(`SELECT * FROM image WHERE id = $1`).
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, 99)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestImageRepository_Upsert(t *testing.T) {
	repo, mock := newImageRepo(t)
	ctx := context.Background()

	created := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)

	t.Run("Новое изображение получает id", func(t *testing.T) {
		mock.ExpectQuery(`
			INSERT INTO image (file_path, creation_date, image_location)
			VALUES ($1, $2, $3)
			ON CONFLICT (file_path) DO UPDATE
			SET creation_date = EXCLUDED.creation_date,
			    image_location = EXCLUDED.image_location
			RETURNING id
		`).
			WithArgs("Photos/b.jpg", created, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))

		image := &models.Image{FilePath: "Photos/b.jpg", CreationDate: created}
		require.NoError(t, repo.Upsert(ctx, image))
		assert.Equal(t, int64(10), image.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestImageRepository_FirstUnrated(t *testing.T) {
	repo, mock := newImageRepo(t)
	ctx := context.Background()

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

	t.Run("Есть неоценённое изображение", func(t *testing.T) {
		created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		rows := sqlmock.NewRows(imageColumns()).
			AddRow(5, "Photos/a.jpg", created, nil)

		mock.ExpectQuery(query).
			WithArgs(int64(7), int64(1)).
			WillReturnRows(rows)

		image, err := repo.FirstUnrated(ctx, 7, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(5), image.ID)
	})

	t.Run("Всё оценено - без изображения и без ошибки", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(int64(7), int64(1)).
			WillReturnRows(sqlmock.NewRows(imageColumns()))

		image, err := repo.FirstUnrated(ctx, 7, 1)
		require.NoError(t, err)
		assert.Nil(t, image)
	})
}

func TestImageRepository_NextInWindow(t *testing.T) {
	repo, mock := newImageRepo(t)
	ctx := context.Background()

	after := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)

	query := `
		SELECT i.id, i.file_path, i.creation_date, i.image_location
		FROM image i
		JOIN collection c ON c.id = $1
		WHERE i.creation_date BETWEEN c.start_date AND c.end_date
		AND (i.creation_date > $2 OR (i.creation_date = $2 AND i.id > $3))
		ORDER BY i.creation_date ASC, i.id ASC
		LIMIT 1
	`

	t.Run("Следующее того же дня с большим id", func(t *testing.T) {
		rows := sqlmock.NewRows(imageColumns()).
			AddRow(11, "Photos/c.jpg", after, nil)

		mock.ExpectQuery(query).
			WithArgs(int64(7), after, int64(10)).
			WillReturnRows(rows)

		image, err := repo.NextInWindow(ctx, 7, after, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(11), image.ID)
	})

	t.Run("Конец окна", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(int64(7), after, int64(20)).
			WillReturnRows(sqlmock.NewRows(imageColumns()))

		image, err := repo.NextInWindow(ctx, 7, after, 20)
		require.NoError(t, err)
		assert.Nil(t, image)
	})
}

func TestImageRepository_PrevInWindow(t *testing.T) {
	repo, mock := newImageRepo(t)
	ctx := context.Background()

	before := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)

	query := `
		SELECT i.id, i.file_path, i.creation_date, i.image_location
		FROM image i
		JOIN collection c ON c.id = $1
		WHERE i.creation_date BETWEEN c.start_date AND c.end_date
		AND (i.creation_date < $2 OR (i.creation_date = $2 AND i.id < $3))
		ORDER BY i.creation_date DESC, i.id DESC
		LIMIT 1
	`

	t.Run("Предыдущее изображение", func(t *testing.T) {
		rows := sqlmock.NewRows(imageColumns()).
			AddRow(10, "Photos/b.jpg", before, nil)

		mock.ExpectQuery(query).
			WithArgs(int64(7), before, int64(11)).
			WillReturnRows(rows)

		image, err := repo.PrevInWindow(ctx, 7, before, 11)
		require.NoError(t, err)
		assert.Equal(t, int64(10), image.ID)
	})

	t.Run("Перед первым изображением ничего нет", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(int64(7), before, int64(5)).
			WillReturnRows(sqlmock.NewRows(imageColumns()))

		image, err := repo.PrevInWindow(ctx, 7, before, 5)
		require.NoError(t, err)
		assert.Nil(t, image)
	})
}

func TestImageRepository_RatedInWindow(t *testing.T) {
	repo, mock := newImageRepo(t)
	ctx := context.Background()

	query := `
		SELECT i.id, i.file_path, i.creation_date, i.image_location
		FROM image i
		JOIN collection c ON c.id = $1
		JOIN user_image ui ON ui.image_id = i.id AND ui.user_id = $2
		WHERE i.creation_date BETWEEN c.start_date AND c.end_date
		AND ui.rating >= $3
		ORDER BY i.creation_date ASC, i.id ASC
	`

	rows := sqlmock.NewRows(imageColumns()).
		AddRow(5, "Photos/a.jpg", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), nil).
		AddRow(10, "Photos/b.jpg", time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC), nil)

	mock.ExpectQuery(query).
		WithArgs(int64(7), int64(1), 4.0).
		WillReturnRows(rows)

	images, err := repo.RatedInWindow(ctx, 7, 1, 4)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, int64(5), images[0].ID)
	assert.Equal(t, int64(10), images[1].ID)
}

func TestImageRepository_PathsByIDs(t *testing.T) {
	repo, _ := newImageRepo(t)
	ctx := context.Background()

	t.Run("Пустой список не ходит в БД", func(t *testing.T) {
		paths, err := repo.PathsByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, paths)
	})
}
