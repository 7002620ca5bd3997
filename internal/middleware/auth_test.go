package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

func TestAuthenticator_IssueAndParse(t *testing.T) {
	t.Parallel()

	auth := NewAuthenticator(testSecret, time.Hour)
	userID := uuid.NewString()

	token, err := auth.IssueToken(userID)
	require.NoError(t, err)

	sub, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, sub)
}

func TestAuthenticator_RejectsBadTokens(t *testing.T) {
	t.Parallel()

	auth := NewAuthenticator(testSecret, time.Hour)
	userID := uuid.NewString()

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		other := NewAuthenticator("another-secret-that-is-long-enough!!", time.Hour)
		token, err := other.IssueToken(userID)
		require.NoError(t, err)
		_, err = auth.ParseToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		past := NewAuthenticator(testSecret, time.Hour)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := past.IssueToken(userID)
		require.NoError(t, err)
		_, err = auth.ParseToken(token)
		assert.Error(t, err)
	})

	t.Run("non uuid subject", func(t *testing.T) {
		t.Parallel()
		token, err := auth.IssueToken("42")
		require.NoError(t, err)
		_, err = auth.ParseToken(token)
		assert.Error(t, err)
	})

	t.Run("wrong audience", func(t *testing.T) {
		t.Parallel()
		claims := jwt.MapClaims{
			"sub": userID,
			"iss": tokenIssuer,
			"aud": "someone-else",
			"exp": time.Now().Add(time.Hour).Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = auth.ParseToken(token)
		assert.Error(t, err)
	})
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()

	auth := NewAuthenticator(testSecret, time.Hour)
	userID := uuid.NewString()
	token, err := auth.IssueToken(userID)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/me", auth.AuthRequired(), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("userID").(string))
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, fiber.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", fiber.StatusUnauthorized},
		{"valid token", "Bearer " + token, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			if tt.wantStatus == fiber.StatusOK {
				assert.Equal(t, userID, string(body))
				return
			}
			var env map[string]any
			require.NoError(t, json.Unmarshal(body, &env))
			assert.Equal(t, false, env["success"])
		})
	}
}
