package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/promptvault/promptvault/internal/http/middlewarectx"
	"github.com/promptvault/promptvault/internal/models"
)

// MockPolicy implements read.Policy.
type MockPolicy struct {
	mock.Mock
}

func (m *MockPolicy) ItemIndex(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockPolicy) CanAccessItem(ctx context.Context, user *models.User, id int) bool {
	args := m.Called(ctx, user, id)
	return args.Bool(0)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	free := &models.User{ID: "u-1", Email: "free@example.com", SubscriptionStatus: models.SubscriptionFree}
	paid := &models.User{ID: "u-2", Email: "paid@example.com", SubscriptionStatus: models.SubscriptionPaid}

	tests := []struct {
		name           string
		id             string
		user           *models.User
		setupMock      func(*MockPolicy)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "free visitor reads a free-tier prompt",
			id:   "50",
			user: free,
			setupMock: func(m *MockPolicy) {
				m.On("ItemIndex", mock.Anything, 50).Return(0, nil)
				m.On("CanAccessItem", mock.Anything, free, 50).Return(true)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"position":0`,
		},
		{
			name: "free visitor is locked out past the free tier",
			id:   "20",
			user: free,
			setupMock: func(m *MockPolicy) {
				m.On("ItemIndex", mock.Anything, 20).Return(3, nil)
				m.On("CanAccessItem", mock.Anything, free, 20).Return(false)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `upgrade required`,
		},
		{
			name: "paid visitor reads a locked prompt",
			id:   "20",
			user: paid,
			setupMock: func(m *MockPolicy) {
				m.On("ItemIndex", mock.Anything, 20).Return(3, nil)
				m.On("CanAccessItem", mock.Anything, paid, 20).Return(true)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"position":3`,
		},
		{
			name: "unknown prompt",
			id:   "999",
			user: nil,
			setupMock: func(m *MockPolicy) {
				m.On("ItemIndex", mock.Anything, 999).Return(-1, nil)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `prompt not found`,
		},
		{
			name:           "malformed id",
			id:             "abc",
			user:           nil,
			setupMock:      func(*MockPolicy) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `failed to decode id from url`,
		},
		{
			name: "catalog unavailable",
			id:   "50",
			user: nil,
			setupMock: func(m *MockPolicy) {
				m.On("ItemIndex", mock.Anything, 50).Return(0, errors.New("cms is down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `failed to read prompt`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPolicy := new(MockPolicy)
			tt.setupMock(mockPolicy)

			handler := New(logger, mockPolicy)

			req := httptest.NewRequest(http.MethodGet, "/prompts/"+tt.id, nil)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.user != nil {
				ctx = context.WithValue(ctx, middlewarectx.UserKey, tt.user)
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockPolicy.AssertExpectations(t)
		})
	}
}
