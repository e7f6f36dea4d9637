package service

import (
	"context"
	"time"

	"imagetinder/internal/models"
	"imagetinder/internal/repository"
)

type SaveCollectionRequest struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" validate:"required"`
	StartDate time.Time `json:"startDate" validate:"required"`
	EndDate   time.Time `json:"endDate" validate:"required"`
}

type CollectionService interface {
	ListForUser(ctx context.Context, userID int64) ([]models.Collection, error)
	Save(ctx context.Context, req SaveCollectionRequest, userID int64) (*models.Collection, error)
	Info(ctx context.Context, collectionID, userID int64) (*models.CollectionInfo, error)
}

type collectionService struct {
	collectionRepo repository.CollectionRepository
}

func NewCollectionService(collectionRepo repository.CollectionRepository) CollectionService {
	return &collectionService{collectionRepo: collectionRepo}
}

func (s *collectionService) ListForUser(ctx context.Context, userID int64) ([]models.Collection, error) {
	return s.collectionRepo.ListByUser(ctx, userID)
}

// Save создаёт коллекцию с выдачей доступа создателю либо обновляет
// существующую; обновлять можно только коллекции со своим доступом
func (s *collectionService) Save(ctx context.Context, req SaveCollectionRequest, userID int64) (*models.Collection, error) {
	collection := &models.Collection{
		ID:        req.ID,
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}

	if req.ID == 0 {
		if err := s.collectionRepo.Create(ctx, collection, userID); err != nil {
			return nil, err
		}
		return collection, nil
	}

	ok, err := s.collectionRepo.HasAccess(ctx, userID, req.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnauthorized
	}

	if err := s.collectionRepo.Update(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

func (s *collectionService) Info(ctx context.Context, collectionID, userID int64) (*models.CollectionInfo, error) {
	ok, err := s.collectionRepo.HasAccess(ctx, userID, collectionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnauthorized
	}

	return s.collectionRepo.Info(ctx, collectionID, userID)
}
