package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"imagetinder/internal/models"
)

type UserResponse struct {
	ID               int64  `json:"id"`
	Email            string `json:"email"`
	CreateCollection bool   `json:"createCollection"`
}

type AuthResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         UserResponse `json:"user"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	// check method
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, "Неверные данные", http.StatusBadRequest)
		return
	}

	// registering a user in the service
	_, err := h.AuthService.Register(r.Context(), req)
	if err != nil {
		if strings.Contains(err.Error(), "уже существует") {
			WriteError(w, "Email уже существует", http.StatusForbidden)
		} else {
			WriteError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	user, accessToken, refreshToken, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	WriteSuccess(w, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: UserResponse{
			ID:               user.ID,
			Email:            user.Email,
			CreateCollection: user.CreateCollection,
		},
	}, http.StatusCreated)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, "Неверные данные", http.StatusBadRequest)
		return
	}

	user, accessToken, refreshToken, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, "Неверный email или пароль", http.StatusUnauthorized)
		return
	}

	WriteSuccess(w, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: UserResponse{
			ID:               user.ID,
			Email:            user.Email,
			CreateCollection: user.CreateCollection,
		},
	}, http.StatusOK)
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	user, accessToken, refreshToken, err := h.AuthService.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		WriteError(w, "Недействительный refresh token", http.StatusUnauthorized)
		return
	}

	WriteSuccess(w, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: UserResponse{
			ID:               user.ID,
			Email:            user.Email,
			CreateCollection: user.CreateCollection,
		},
	}, http.StatusOK)
}

// GetCurrentUser отдаёт пользователя из контекста авторизации
func (h *Handlers) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int64)
	if !ok {
		WriteError(w, "Требуется авторизация", http.StatusUnauthorized)
		return
	}

	user, err := h.UserRepo.GetUserByID(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, UserResponse{
		ID:               user.ID,
		Email:            user.Email,
		CreateCollection: user.CreateCollection,
	}, http.StatusOK)
}
