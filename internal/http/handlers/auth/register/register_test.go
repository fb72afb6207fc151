package register

import (
	"context"
	"fmt"
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

// MockService implements register.Service.
type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, email, password string, firstName, lastName *string) (*models.User, []*http.Cookie, error) {
	args := m.Called(ctx, email, password, firstName, lastName)
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

func TestRegisterHandler(t *testing.T) {
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
			name: "successful registration with auto-login",
			body: `{"email":"new@example.com","password":"secret123","first_name":"Ada"}`,
			setupMock: func(m *MockService) {
				first := "Ada"
				m.On("Register", mock.Anything, "new@example.com", "secret123", &first, (*string)(nil)).
					Return(&models.User{ID: "u-new", Email: "new@example.com"}, sessionCookies, nil)
			},
			expectedStatus:  http.StatusOK,
			expectedBody:    `"id":"u-new"`,
			expectedCookies: 2,
		},
		{
			name:           "short password",
			body:           `{"email":"new@example.com","password":"short"}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field Password is too short`,
		},
		{
			name: "duplicate email surfaces the cms message",
			body: `{"email":"dup@example.com","password":"secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "dup@example.com", "secret123", (*string)(nil), (*string)(nil)).
					Return(nil, nil, fmt.Errorf("session.Register: %w", fmt.Errorf("%w: email already taken", cms.ErrRegistrationFailed)))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `email already taken`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			assert.Len(t, w.Result().Cookies(), tt.expectedCookies)

			mockService.AssertExpectations(t)
		})
	}
}
