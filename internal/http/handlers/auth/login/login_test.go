package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/promptvault/promptvault/internal/cms"
	"github.com/promptvault/promptvault/internal/models"
)

// MockService implements login.Service.
type MockService struct {
	mock.Mock
}

func (m *MockService) Login(ctx context.Context, email, password string) (*models.User, []*http.Cookie, error) {
	args := m.Called(ctx, email, password)
	var user *models.User
	if res := args.Get(0); res != nil {
		user = res.(*models.User)
	}
	var effects []*http.Cookie
	if res := args.Get(1); res != nil {
		effects = res.([]*http.Cookie)
	}
	return user, effects, args.Error(2)
}

func TestLoginHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	sessionCookies := []*http.Cookie{
		{Name: "access_token", Value: "a", Path: "/"},
		{Name: "refresh_token", Value: "r", Path: "/"},
	}

	tests := []struct {
		name            string
		body            string
		setupMock       func(*MockService)
		expectedStatus  int
		expectedBody    string
		expectedCookies int
	}{
		{
			name: "successful login",
			body: `{"email":"user@example.com","password":"secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "user@example.com", "secret123").
					Return(&models.User{ID: "u-1", Email: "user@example.com"}, sessionCookies, nil)
			},
			expectedStatus:  http.StatusOK,
			expectedBody:    `"status":"OK"`,
			expectedCookies: 2,
		},
		{
			name:           "malformed json",
			body:           `{"email":`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid request body`,
		},
		{
			name:           "missing password",
			body:           `{"email":"user@example.com"}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field Password is a required field`,
		},
		{
			name: "invalid credentials",
			body: `{"email":"user@example.com","password":"wrong1234"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "user@example.com", "wrong1234").
					Return(nil, nil, cms.ErrInvalidCredentials)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `invalid credentials`,
		},
		{
			name: "cms unavailable",
			body: `{"email":"user@example.com","password":"secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "user@example.com", "secret123").
					Return(nil, nil, errors.New("cms unreachable"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `login failed`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			assert.Len(t, w.Result().Cookies(), tt.expectedCookies)

			mockService.AssertExpectations(t)
		})
	}
}
