package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"imagetinder/internal/config"
	"imagetinder/internal/repository"
	"imagetinder/internal/service"
)

type Handlers struct {
	AuthService       service.AuthService
	CollectionService service.CollectionService
	ReviewService     service.ReviewService
	UserRepo          repository.UserRepository
	ImageRepo         repository.ImageRepository
	Cache             ImageCache
	Cfg               *config.Config
	Validate          *validator.Validate
}

func NewHandlers(repo *repository.Repository, service *service.Service, imageCache ImageCache, config *config.Config) *Handlers {
	return &Handlers{
		AuthService:       service.Auth,
		CollectionService: service.Collection,
		ReviewService:     service.Review,
		UserRepo:          repo.User,
		ImageRepo:         repo.Image,
		Cache:             imageCache,
		Cfg:               config,
		Validate:          validator.New(),
	}
}

func HomeHandler(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, map[string]string{"service": "imagetinder"}, http.StatusOK)
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, map[string]string{"status": "ok"}, http.StatusOK)
}
