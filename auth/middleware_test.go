package auth

import (
	"chatline/domain"
	"chatline/errors"
	"chatline/mocks"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newProtectedApp(tokens *TokenIssuer, users *mocks.MockIUserRepository) *fiber.App {
	app := fiber.New()
	app.Get("/me", Protect(tokens, users), func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return c.SendStatus(http.StatusTeapot)
		}
		return c.JSON(user)
	})
	return app
}

func TestProtect(t *testing.T) {
	tokens := NewTokenIssuer("test-secret", time.Hour)
	valid, err := tokens.GenerateToken("u1")
	require.NoError(t, err)

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		lookup     error
		wantStatus int
	}{
		{"no token", func(r *http.Request) {}, nil, http.StatusUnauthorized},
		{"invalid token", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
		}, nil, http.StatusUnauthorized},
		{"valid cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: CookieName, Value: valid})
		}, nil, http.StatusOK},
		{"valid bearer", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+valid)
		}, nil, http.StatusOK},
		{"user deleted", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: CookieName, Value: valid})
		}, errors.ErrUserNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			ctrl := gomock.NewController(t)
			users := mocks.NewMockIUserRepository(ctrl)
			users.EXPECT().
				GetUserByID(gomock.Any(), "u1").
				Return(domain.User{ID: "u1", FullName: "Ada"}, tt.lookup).
				AnyTimes()

			request := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(request)

			resp, err := newProtectedApp(tokens, users).Test(request)
			req.NoError(err)
			req.Equal(tt.wantStatus, resp.StatusCode)
		})
	}
}
