package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"imagetinder/internal/service"
)

func (h *Handlers) GetCollections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value("userID").(int64)
	if !ok {
		WriteError(w, "Требуется авторизация", http.StatusUnauthorized)
		return
	}

	collections, err := h.CollectionService.ListForUser(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, collections, http.StatusOK)
}

func (h *Handlers) SaveCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value("userID").(int64)
	if !ok {
		WriteError(w, "Требуется авторизация", http.StatusUnauthorized)
		return
	}

	var req service.SaveCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, "Неверные данные", http.StatusBadRequest)
		return
	}

	if req.EndDate.Before(req.StartDate) {
		WriteError(w, "Дата конца раньше даты начала", http.StatusBadRequest)
		return
	}

	// создание новых коллекций требует права create_collection; обновление
	// существующих проверяется по доступу в сервисе
	if req.ID == 0 {
		if allowed, _ := r.Context().Value("createCollection").(bool); !allowed {
			WriteError(w, "Нет прав на создание коллекций", http.StatusForbidden)
			return
		}
	}

	collection, err := h.CollectionService.Save(r.Context(), req, userID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, collection, http.StatusOK)
}

func (h *Handlers) GetCollectionInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value("userID").(int64)
	if !ok {
		WriteError(w, "Требуется авторизация", http.StatusUnauthorized)
		return
	}

	collectionID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		WriteError(w, "Неверный идентификатор коллекции", http.StatusBadRequest)
		return
	}

	info, err := h.CollectionService.Info(r.Context(), collectionID, userID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, info, http.StatusOK)
}
