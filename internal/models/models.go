package models

import (
	"database/sql"
	"time"
)

type User struct {
	ID                     int64     `json:"id" db:"id"`
	Email                  string    `json:"email" db:"email"`
	PasswordHash           string    `json:"-" db:"password_hash"`
	CreateCollection       bool      `json:"createCollection" db:"create_collection"`
	RefreshToken           string    `json:"-" db:"refresh_token"`
	RefreshTokenExpiryTime time.Time `json:"-" db:"refresh_token_expiry_time"`
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Image - одна строка таблицы image; дата берётся из EXIF при индексации
type Image struct {
	ID            int64          `json:"id" db:"id"`
	FilePath      string         `json:"filePath" db:"file_path"`
	CreationDate  time.Time      `json:"creationDate" db:"creation_date"`
	ImageLocation sql.NullString `json:"imageLocation" db:"image_location"`
}

// Collection - окно по дате съёмки; принадлежность изображения вычисляется,
// а не хранится
type Collection struct {
	ID         int64          `json:"id" db:"id"`
	Name       string         `json:"name" db:"name"`
	StartDate  time.Time      `json:"startDate" db:"start_date"`
	EndDate    time.Time      `json:"endDate" db:"end_date"`
	BestImages sql.NullString `json:"bestImages" db:"best_images"`
}

// Rating - оценка пользователя; Deleted отмечает изображение как "в корзине",
// независимо от числовой оценки
type Rating struct {
	UserID  int64   `json:"userId" db:"user_id"`
	ImageID int64   `json:"imageId" db:"image_id"`
	Rating  float64 `json:"rating" db:"rating"`
	Deleted bool    `json:"deleted" db:"deleted"`
}

// RatingRow - тройка (пользователь, изображение, оценка) для ранжирования
type RatingRow struct {
	UserID  int64   `db:"user_id"`
	ImageID int64   `db:"image_id"`
	Rating  float64 `db:"rating"`
}

// CollectionInfo - сводка по коллекции для страницы обзора
type CollectionInfo struct {
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Images    int       `json:"images"`
	Rated     int       `json:"rated"`
	Unrated   int       `json:"unrated"`
	Trashed   int       `json:"trashed"`
}
