package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-board/internal/config"
	"github.com/jonathan/job-board/internal/server/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestAuthHandler creates an AuthHandler with test services.
func setupTestAuthHandler(_ *testing.T) *AuthHandler {
	passwordConfig := &config.PasswordConfig{
		BcryptCost: 10, // Lower cost for faster tests
		Pepper:     "",
	}
	jwtConfig := &config.JWTConfig{
		Secret:          "test-secret-key-for-jwt-signing-minimum-32-bytes",
		ExpirationHours: 24,
	}

	userSvc := NewUserService(newMemUsers(), passwordConfig)
	jwtSvc := NewJWTService(jwtConfig)
	return NewAuthHandler(userSvc, jwtSvc, zap.NewNop().Sugar())
}

func TestAuthHandler_Register_InvalidJSON(t *testing.T) {
	handler := setupTestAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Register(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
}

func TestAuthHandler_Register_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		reqBody map[string]string
		wantErr string
	}{
		{
			name:    "missing name",
			reqBody: map[string]string{"email": "ada@example.com", "password": "password123"},
			wantErr: "Validation failed: name: Name is required",
		},
		{
			name:    "whitespace name",
			reqBody: map[string]string{"name": "   ", "email": "ada@example.com", "password": "password123"},
			wantErr: "Validation failed: name: Name is required",
		},
		{
			name:    "invalid email",
			reqBody: map[string]string{"name": "Ada", "email": "ada-at-example", "password": "password123"},
			wantErr: "Validation failed: email: Invalid email address",
		},
		{
			name:    "password too short",
			reqBody: map[string]string{"name": "Ada", "email": "ada@example.com", "password": "short"},
			wantErr: "Validation failed: password: Password must be at least 8 characters",
		},
		{
			name: "confirmation mismatch",
			reqBody: map[string]string{
				"name": "Ada", "email": "ada@example.com",
				"password": "password123", "confirmPassword": "password321",
			},
			wantErr: "Validation failed: confirmPassword: Passwords do not match",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := setupTestAuthHandler(t)

			w := postJSON(t, handler.Register, "/auth/register", tt.reqBody)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			res := decodeAuth(t, w)
			assert.False(t, res.Success)
			assert.Equal(t, tt.wantErr, res.Error)
		})
	}
}

func TestAuthHandler_Login_InvalidJSON(t *testing.T) {
	handler := setupTestAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Login(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
}

func TestAuthHandler_Login_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		reqBody map[string]string
		wantErr string
	}{
		{
			name:    "missing email",
			reqBody: map[string]string{"password": "password123"},
			wantErr: "Validation failed: email: Email is required",
		},
		{
			name:    "invalid email format",
			reqBody: map[string]string{"email": "ada-at-example", "password": "password123"},
			wantErr: "Validation failed: email: Invalid email address",
		},
		{
			name:    "missing password",
			reqBody: map[string]string{"email": "ada@example.com"},
			wantErr: "Validation failed: password: Password is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := setupTestAuthHandler(t)

			w := postJSON(t, handler.Login, "/auth/login", tt.reqBody)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantErr, decodeAuth(t, w).Error)
		})
	}
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

type authResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
		Account   struct {
			ID    uuid.UUID `json:"id"`
			Name  string    `json:"name"`
			Email string    `json:"email"`
		} `json:"account"`
	} `json:"data"`
}

func decodeAuth(t *testing.T, w *httptest.ResponseRecorder) authResult {
	t.Helper()
	var res authResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	handler := setupTestAuthHandler(t)
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	handler.jwtService.now = func() time.Time { return now }

	w := postJSON(t, handler.Register, "/auth/register", map[string]string{
		"name": " Ada ", "email": "Ada@Example.com", "password": "password123", "confirmPassword": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reg := decodeAuth(t, w)
	assert.True(t, reg.Success)
	assert.NotEmpty(t, reg.Data.Token)
	assert.Equal(t, "Ada", reg.Data.Account.Name)
	assert.Equal(t, "ada@example.com", reg.Data.Account.Email)
	assert.True(t, now.Add(24*time.Hour).Equal(reg.Data.ExpiresAt))
	assert.NotContains(t, w.Body.String(), "password")

	claims, err := handler.jwtService.ValidateToken(reg.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.Data.Account.ID, claims.UserID)

	// Sign-in ignores the case of the email.
	w = postJSON(t, handler.Login, "/auth/login", map[string]string{"email": "ADA@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decodeAuth(t, w)
	assert.Equal(t, reg.Data.Account.ID, login.Data.Account.ID)
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	handler := setupTestAuthHandler(t)
	creds := map[string]string{"name": "Ada", "email": "ada@example.com", "password": "password123"}

	w := postJSON(t, handler.Register, "/auth/register", creds)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, handler.Register, "/auth/register", creds)
	assert.Equal(t, http.StatusConflict, w.Code)
	res := decodeAuth(t, w)
	assert.False(t, res.Success)
	assert.Equal(t, "An account with this email already exists", res.Error)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	handler := setupTestAuthHandler(t)
	w := postJSON(t, handler.Register, "/auth/register",
		map[string]string{"name": "Ada", "email": "ada@example.com", "password": "password123"})
	require.Equal(t, http.StatusCreated, w.Code)

	tests := []struct {
		name  string
		email string
		pass  string
	}{
		{name: "wrong password", email: "ada@example.com", pass: "password124"},
		{name: "unknown email", email: "bob@example.com", pass: "password123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, handler.Login, "/auth/login", map[string]string{"email": tt.email, "password": tt.pass})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Invalid email or password", decodeAuth(t, w).Error)
		})
	}
}

func TestAuthHandler_StoreFailureIsGeneric(t *testing.T) {
	handler := setupTestAuthHandler(t)
	handler.userService.db.(*memUsers).err = assert.AnError

	w := postJSON(t, handler.Login, "/auth/login", map[string]string{"email": "ada@example.com", "password": "password123"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decodeAuth(t, w).Error)
}

func TestAuthHandler_Me(t *testing.T) {
	handler := setupTestAuthHandler(t)
	w := postJSON(t, handler.Register, "/auth/register",
		map[string]string{"name": "Ada", "email": "ada@example.com", "password": "password123"})
	require.Equal(t, http.StatusCreated, w.Code)
	reg := decodeAuth(t, w)

	t.Run("known user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req = req.WithContext(middleware.WithUserID(req.Context(), reg.Data.Account.ID))
		w := httptest.NewRecorder()

		handler.Me(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ada@example.com")
	})

	t.Run("deleted user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req = req.WithContext(middleware.WithUserID(req.Context(), uuid.New()))
		w := httptest.NewRecorder()

		handler.Me(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Account not found", decodeAuth(t, w).Error)
	})

	t.Run("no identity", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Me(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRouter_AuthMeRequiresToken(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Unauthorized"}`, w.Body.String())

	w = ts.do(http.MethodPost, "/auth/register", `{"name":"Ada","email":"ada@example.com","password":"password123"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	reg := decodeAuth(t, w)

	w = ts.do(http.MethodGet, "/auth/me", "", reg.Data.Token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ada@example.com")
}
