package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"imagetinder/internal/models"
	"imagetinder/internal/service"
)

type MockCollectionService struct {
	mock.Mock
}

func (m *MockCollectionService) ListForUser(ctx context.Context, userID int64) ([]models.Collection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Collection), args.Error(1)
}

func (m *MockCollectionService) Save(ctx context.Context, req service.SaveCollectionRequest, userID int64) (*models.Collection, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collection), args.Error(1)
}

func (m *MockCollectionService) Info(ctx context.Context, collectionID, userID int64) (*models.CollectionInfo, error) {
	args := m.Called(ctx, collectionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CollectionInfo), args.Error(1)
}

// withCreateCollection выставляет в контексте право создания коллекций так
// же, как middleware авторизации
func withCreateCollection(r *http.Request, allowed bool) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), "createCollection", allowed))
}

func saveCollectionBody(t *testing.T, id int64) *bytes.Reader {
	t.Helper()

	body, err := json.Marshal(map[string]interface{}{
		"id":        id,
		"name":      "Отпуск",
		"startDate": "2024-01-01T00:00:00Z",
		"endDate":   "2024-01-31T00:00:00Z",
	})
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestSaveCollection(t *testing.T) {
	t.Run("Создание без права create_collection - 403", func(t *testing.T) {
		collectionService := new(MockCollectionService)
		h := &Handlers{CollectionService: collectionService, Validate: validator.New()}

		req := httptest.NewRequest(http.MethodPost, "/api/collections", saveCollectionBody(t, 0))
		req = withCreateCollection(withUser(req, 1), false)
		rec := httptest.NewRecorder()

		h.SaveCollection(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		collectionService.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Создание с правом create_collection", func(t *testing.T) {
		collectionService := new(MockCollectionService)
		collectionService.On("Save", mock.Anything, mock.MatchedBy(func(req service.SaveCollectionRequest) bool {
			return req.ID == 0 && req.Name == "Отпуск"
		}), int64(1)).Return(&models.Collection{ID: 7, Name: "Отпуск"}, nil)

		h := &Handlers{CollectionService: collectionService, Validate: validator.New()}

		req := httptest.NewRequest(http.MethodPost, "/api/collections", saveCollectionBody(t, 0))
		req = withCreateCollection(withUser(req, 1), true)
		rec := httptest.NewRecorder()

		h.SaveCollection(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		collectionService.AssertExpectations(t)
	})

	t.Run("Обновление существующей коллекции права не требует", func(t *testing.T) {
		// доступ к обновляемой коллекции проверяет сервисный слой
		collectionService := new(MockCollectionService)
		collectionService.On("Save", mock.Anything, mock.MatchedBy(func(req service.SaveCollectionRequest) bool {
			return req.ID == 7
		}), int64(1)).Return(&models.Collection{ID: 7, Name: "Отпуск"}, nil)

		h := &Handlers{CollectionService: collectionService, Validate: validator.New()}

		req := httptest.NewRequest(http.MethodPost, "/api/collections", saveCollectionBody(t, 7))
		req = withCreateCollection(withUser(req, 1), false)
		rec := httptest.NewRecorder()

		h.SaveCollection(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		collectionService.AssertExpectations(t)
	})

	t.Run("Дата конца раньше даты начала - 400", func(t *testing.T) {
		h := &Handlers{CollectionService: new(MockCollectionService), Validate: validator.New()}

		body, err := json.Marshal(map[string]interface{}{
			"name":      "Отпуск",
			"startDate": "2024-01-31T00:00:00Z",
			"endDate":   "2024-01-01T00:00:00Z",
		})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/collections", bytes.NewReader(body))
		req = withCreateCollection(withUser(req, 1), true)
		rec := httptest.NewRecorder()

		h.SaveCollection(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
