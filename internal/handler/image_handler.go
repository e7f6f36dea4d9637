package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// ImageCache - операции кеша, нужные HTTP-слою
type ImageCache interface {
	Get(ctx context.Context, imageID int64, remotePath string) ([]byte, error)
	GetPreview(ctx context.Context, imageID int64, remotePath string) ([]byte, error)
	GetResized(ctx context.Context, imageID int64, remotePath string, maxW, maxH int) ([]byte, error)
}

func (h *Handlers) GetImage(w http.ResponseWriter, r *http.Request) {
	h.serveImage(w, r, "full")
}

func (h *Handlers) GetImagePreview(w http.ResponseWriter, r *http.Request) {
	h.serveImage(w, r, "preview")
}

func (h *Handlers) GetImageResized(w http.ResponseWriter, r *http.Request) {
	h.serveImage(w, r, "resized")
}

func (h *Handlers) serveImage(w http.ResponseWriter, r *http.Request, variant string) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, ok := r.Context().Value("userID").(int64); !ok {
		WriteError(w, "Требуется авторизация", http.StatusUnauthorized)
		return
	}

	imageID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		WriteError(w, "Неверный идентификатор изображения", http.StatusBadRequest)
		return
	}

	image, err := h.ImageRepo.GetByID(r.Context(), imageID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	var data []byte
	switch variant {
	case "preview":
		data, err = h.Cache.GetPreview(r.Context(), image.ID, image.FilePath)
	case "resized":
		maxW, werr := strconv.Atoi(r.URL.Query().Get("w"))
		maxH, herr := strconv.Atoi(r.URL.Query().Get("h"))
		if werr != nil || herr != nil || maxW <= 0 || maxH <= 0 {
			WriteError(w, "Неверные размеры", http.StatusBadRequest)
			return
		}
		data, err = h.Cache.GetResized(r.Context(), image.ID, image.FilePath, maxW, maxH)
	default:
		data, err = h.Cache.Get(r.Context(), image.ID, image.FilePath)
	}
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
