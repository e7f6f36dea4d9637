package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"imagetinder/internal/models"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User, password string) error {
	// create password hash
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("ошибка при хешировании пароля: %w", err)
	}

	user.PasswordHash = string(hashedPassword)

	query := `
		INSERT INTO users (email, password_hash, create_collection, refresh_token, refresh_token_expiry_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err = r.db.GetContext(ctx, &user.ID, query,
		user.Email, user.PasswordHash, user.CreateCollection, user.RefreshToken, user.RefreshTokenExpiryTime)
	if err != nil {
		return fmt.Errorf("ошибка при создании пользователя: %w", err)
	}

	return nil
}

func (r *userRepository) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User

	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("пользователь с ID %d: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	query := `SELECT * FROM users WHERE email = $1`

	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("пользователь с email %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при получении пользователя по email: %w", err)
	}

	return &user, nil
}

func (r *userRepository) VerifyPassword(ctx context.Context, email, password string) (*models.User, error) {
	user, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	// checking that the password hash is the same
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, fmt.Errorf("неверный пароль")
	}

	return user, nil
}

func (r *userRepository) UpdateRefreshToken(ctx context.Context, userID int64, refreshToken string, expiryTime time.Time) error {
	query := `
		UPDATE users
		SET refresh_token = $1, refresh_token_expiry_time = $2
		WHERE id = $3
	`

	_, err := r.db.ExecContext(ctx, query, refreshToken, expiryTime, userID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении refresh token: %w", err)
	}

	return nil
}

func (r *userRepository) GetUserByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error) {
	var user models.User

	query := `
		SELECT * FROM users
		WHERE refresh_token = $1
		AND refresh_token_expiry_time > CURRENT_TIMESTAMP
	`

	err := r.db.GetContext(ctx, &user, query, refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("недействительный или просроченный refresh token")
		}
		return nil, fmt.Errorf("ошибка при получении пользователя по refresh token: %w", err)
	}

	return &user, nil
}
