package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"imagetinder/internal/service"
)

// parseFilter читает параметры фильтрованного режима из query string
func parseFilter(r *http.Request) service.TraversalFilter {
	q := r.URL.Query()

	filter := service.TraversalFilter{}
	if q.Get("filtered") == "true" {
		filter.Filtered = true
		filter.MinRating, _ = strconv.ParseFloat(q.Get("minRating"), 64)
		filter.MaxPerDay, _ = strconv.Atoi(q.Get("maxPerDay"))
	}
	return filter
}

func (h *Handlers) StartReview(w http.ResponseWriter, r *http.Request) {
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

	image, err := h.ReviewService.Start(r.Context(), userID, collectionID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	// image == nil: всё оценено, сессия завершена
	WriteSuccess(w, service.ReviewStep{Image: image}, http.StatusOK)
}

func (h *Handlers) NextImage(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, "next")
}

func (h *Handlers) PreviousImage(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, "previous")
}

func (h *Handlers) step(w http.ResponseWriter, r *http.Request, direction string) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value("userID").(int64)
	if !ok {
		WriteError(w, "Требуется авторизация", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	collectionID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		WriteError(w, "Неверный идентификатор коллекции", http.StatusBadRequest)
		return
	}
	currentImageID, err := strconv.ParseInt(r.URL.Query().Get("currentImageId"), 10, 64)
	if err != nil {
		WriteError(w, "Неверный идентификатор изображения", http.StatusBadRequest)
		return
	}

	filter := parseFilter(r)

	var result *service.ReviewStep
	switch direction {
	case "previous":
		img, err := h.ReviewService.Previous(r.Context(), userID, collectionID, currentImageID, filter)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		result = &service.ReviewStep{Image: img}
	default:
		img, err := h.ReviewService.Next(r.Context(), userID, collectionID, currentImageID, filter)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		result = &service.ReviewStep{Image: img}
	}

	WriteSuccess(w, result, http.StatusOK)
}

type RateRequest struct {
	ImageID   int64   `json:"imageId" validate:"required"`
	Rating    float64 `json:"rating"`
	Trash     bool    `json:"trash"`
	Direction string  `json:"direction" validate:"omitempty,oneof=next previous"`

	Filtered  bool    `json:"filtered"`
	MinRating float64 `json:"minRating"`
	MaxPerDay int     `json:"maxPerDay"`
}

// RateImage сохраняет оценку текущего изображения и возвращает следующее
// по направлению вместе с его существующей оценкой
func (h *Handlers) RateImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
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

	var req RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, "Неверные данные", http.StatusBadRequest)
		return
	}

	step, err := h.ReviewService.RecordAndAdvance(r.Context(), service.RecordRequest{
		UserID:       userID,
		CollectionID: collectionID,
		ImageID:      req.ImageID,
		Rating:       req.Rating,
		Trash:        req.Trash,
		Direction:    req.Direction,
		Filter: service.TraversalFilter{
			Filtered:  req.Filtered,
			MinRating: req.MinRating,
			MaxPerDay: req.MaxPerDay,
		},
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, step, http.StatusOK)
}
