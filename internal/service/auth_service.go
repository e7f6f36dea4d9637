package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"imagetinder/internal/config"
	"imagetinder/internal/models"
	"imagetinder/internal/repository"
)

type AuthService interface {
	Register(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, string, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*models.User, string, string, error)
	ValidateToken(tokenString string) (*jwt.Token, error)
}

type authService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

func (s *authService) Register(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	existingUser, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err == nil && existingUser != nil {
		return nil, fmt.Errorf("пользователь с email %s уже существует", req.Email)
	}

	refreshToken, refreshTokenExpiry := s.generateRefreshToken()

	user := &models.User{
		Email:                  req.Email,
		RefreshToken:           refreshToken,
		RefreshTokenExpiryTime: refreshTokenExpiry,
	}

	err = s.userRepo.CreateUser(ctx, user, req.Password)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании пользователя: %w", err)
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, string, error) {
	user, err := s.userRepo.VerifyPassword(ctx, email, password)
	if err != nil {
		return nil, "", "", fmt.Errorf("ошибка аутентификации: %w", err)
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, "", "", fmt.Errorf("ошибка генерации access token: %w", err)
	}

	refreshToken, refreshTokenExpiry := s.generateRefreshToken()

	err = s.userRepo.UpdateRefreshToken(ctx, user.ID, refreshToken, refreshTokenExpiry)
	if err != nil {
		return nil, "", "", fmt.Errorf("ошибка сохранения refresh token: %w", err)
	}

	return user, accessToken, refreshToken, nil
}

func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*models.User, string, string, error) {
	user, err := s.userRepo.GetUserByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, "", "", fmt.Errorf("недействительный refresh token: %w", err)
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, "", "", fmt.Errorf("ошибка генерации access token: %w", err)
	}

	newRefreshToken, refreshTokenExpiry := s.generateRefreshToken()

	err = s.userRepo.UpdateRefreshToken(ctx, user.ID, newRefreshToken, refreshTokenExpiry)
	if err != nil {
		return nil, "", "", fmt.Errorf("ошибка обновления refresh token: %w", err)
	}

	return user, accessToken, newRefreshToken, nil
}

func (s *authService) ValidateToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("недействительный токен: %w", err)
	}

	return token, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"userId":           user.ID,
		"email":            user.Email,
		"createCollection": user.CreateCollection,
		"exp":              time.Now().Add(s.cfg.AccessTokenDuration).Unix(),
		"iat":              time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.cfg.JWTSecretKey))
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}

	return tokenString, nil
}

func (s *authService) generateRefreshToken() (string, time.Time) {
	return uuid.New().String(), time.Now().Add(s.cfg.RefreshTokenDuration)
}
