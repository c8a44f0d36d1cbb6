package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/authkeeper/pkg/api"
)

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/api/v1/")

	assert.Equal(t, "http://localhost:8080/api/v1", client.baseURL)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

// TestClient_Register проверяет успешную регистрацию
func TestClient_Register(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/register", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req api.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@x.com", req.Email)
		assert.Equal(t, "password1", req.Password)

		_ = json.NewEncoder(w).Encode(api.TokenResponse{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 900})
	}))
	defer server.Close()

	client := NewClient(server.URL + "/api/v1")
	resp, err := client.Register(context.Background(), api.RegisterRequest{Name: "A", Email: "a@x.com", Password: "password1"})

	require.NoError(t, err)
	assert.Equal(t, "access", resp.AccessToken)
	assert.Equal(t, "refresh", resp.RefreshToken)
	assert.Equal(t, int64(900), resp.ExpiresIn)
}

// TestClient_Errors проверяет разбор ответов с ошибкой
func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		expectedMessage string
		status          int
		forbidden       bool
	}{
		{
			name:            "json error",
			status:          http.StatusConflict,
			body:            `{"error":"Conflict","message":"user already exists"}`,
			expectedMessage: "user already exists",
		},
		{
			name:            "forbidden",
			status:          http.StatusForbidden,
			body:            `{"error":"Forbidden","message":"access denied"}`,
			expectedMessage: "access denied",
			forbidden:       true,
		},
		{
			name:            "plain text",
			status:          http.StatusBadGateway,
			body:            "upstream down\n",
			expectedMessage: "upstream down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL)
			_, err := client.Authenticate(context.Background(), api.AuthenticateRequest{Email: "a@x.com", Password: "x"})

			require.Error(t, err)
			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.expectedMessage, se.Message)
			assert.Equal(t, tt.forbidden, IsForbidden(err))
		})
	}
}

// TestClient_BearerEndpoints проверяет передачу токена в заголовке
func TestClient_BearerEndpoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh-token":
			assert.Equal(t, "Bearer refresh", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(api.TokenResponse{AccessToken: "access2", RefreshToken: "refresh"})
		case "/auth/logout":
			assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusOK)
		case "/users/me":
			assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(api.UserResponse{ID: "u1", Email: "a@x.com", Role: "USER"})
		case "/playground":
			assert.Equal(t, http.MethodDelete, r.Method)
			_ = json.NewEncoder(w).Encode(api.MessageResponse{Message: "DELETE - playground"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	pair, err := client.Refresh(ctx, "refresh")
	require.NoError(t, err)
	assert.Equal(t, "access2", pair.AccessToken)

	require.NoError(t, client.Logout(ctx, "access"))

	me, err := client.Me(ctx, "access")
	require.NoError(t, err)
	assert.Equal(t, "u1", me.ID)

	body, err := client.Call(ctx, "delete", "playground", "access")
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"DELETE - playground"}`, string(body))

	_, err = client.Call(ctx, http.MethodGet, "/missing", "access")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}
