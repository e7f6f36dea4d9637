package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"imagetinder/internal/cache"
	"imagetinder/internal/repository"
	"imagetinder/internal/service"
	"imagetinder/internal/storage"
)

// ErrorResponse - стандартный ответ с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteError - универсальная функция для отправки ошибок
func WriteError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// WriteSuccess - функция для успешных ответов
func WriteSuccess(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteServiceError переводит ошибки сервисного слоя в HTTP-статусы.
// Unauthorized отличается от NotFound намеренно.
func WriteServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		WriteError(w, "Не найдено", http.StatusNotFound)
	case errors.Is(err, service.ErrUnauthorized):
		WriteError(w, "Нет доступа к коллекции", http.StatusForbidden)
	case errors.Is(err, storage.ErrRemoteUnavailable):
		WriteError(w, "Удалённое хранилище недоступно", http.StatusBadGateway)
	case errors.Is(err, cache.ErrCorruptImage):
		WriteError(w, "Изображение повреждено", http.StatusInternalServerError)
	default:
		WriteError(w, err.Error(), http.StatusInternalServerError)
	}
}
