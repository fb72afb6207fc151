package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/promptvault/promptvault/internal/http/middlewarectx"
	"github.com/promptvault/promptvault/internal/models"
)

// MockCatalog implements list.Catalog.
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) PublishedPromptIDs(ctx context.Context) ([]int, error) {
	args := m.Called(ctx)
	var ids []int
	if res := args.Get(0); res != nil {
		ids = res.([]int)
	}
	return ids, args.Error(1)
}

// MockPolicy implements list.Policy.
type MockPolicy struct {
	mock.Mock
}

func (m *MockPolicy) CanAccessPosition(user *models.User, index int) bool {
	args := m.Called(user, index)
	return args.Bool(0)
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	free := &models.User{ID: "u-1", Email: "free@example.com", SubscriptionStatus: models.SubscriptionFree}

	tests := []struct {
		name           string
		user           *models.User
		setupCatalog   func(*MockCatalog)
		setupPolicy    func(*MockPolicy)
		expectedStatus int
		expectedBody   []string
	}{
		{
			name: "free visitor sees locked cards past the free tier",
			user: free,
			setupCatalog: func(m *MockCatalog) {
				m.On("PublishedPromptIDs", mock.Anything).Return([]int{50, 40, 30, 20}, nil)
			},
			setupPolicy: func(m *MockPolicy) {
				m.On("CanAccessPosition", free, 0).Return(true)
				m.On("CanAccessPosition", free, 1).Return(true)
				m.On("CanAccessPosition", free, 2).Return(true)
				m.On("CanAccessPosition", free, 3).Return(false)
			},
			expectedStatus: http.StatusOK,
			expectedBody: []string{
				`"count":4`,
				`{"id":50,"accessible":true}`,
				`{"id":20,"accessible":false}`,
			},
		},
		{
			name: "empty catalog",
			user: nil,
			setupCatalog: func(m *MockCatalog) {
				m.On("PublishedPromptIDs", mock.Anything).Return([]int{}, nil)
			},
			setupPolicy:    func(*MockPolicy) {},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"count":0`},
		},
		{
			name: "catalog unavailable",
			user: nil,
			setupCatalog: func(m *MockCatalog) {
				m.On("PublishedPromptIDs", mock.Anything).Return(nil, errors.New("cms is down"))
			},
			setupPolicy:    func(*MockPolicy) {},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   []string{`failed to list prompts`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCatalog := new(MockCatalog)
			mockPolicy := new(MockPolicy)
			tt.setupCatalog(mockCatalog)
			tt.setupPolicy(mockPolicy)

			handler := New(logger, mockCatalog, mockPolicy)

			req := httptest.NewRequest(http.MethodGet, "/prompts", nil)
			if tt.user != nil {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserKey, tt.user))
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			for _, fragment := range tt.expectedBody {
				assert.Contains(t, w.Body.String(), fragment)
			}

			mockCatalog.AssertExpectations(t)
			mockCatalog.AssertNumberOfCalls(t, "PublishedPromptIDs", 1)
			mockPolicy.AssertExpectations(t)
		})
	}
}
