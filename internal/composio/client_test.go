package composio

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTools(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v2/actions", r.URL.Path)
		assert.Equal(t, "gmail", r.URL.Query().Get("apps"))
		assert.Equal(t, "0xABC", r.URL.Query().Get("entityId"))
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{
					"name":        "GMAIL_SEND_EMAIL",
					"description": "Send an email",
					"parameters":  map[string]any{"type": "object", "properties": map[string]any{"to": map[string]any{"type": "string"}}},
				},
				{
					"name":        "GMAIL_GET_PROFILE",
					"description": "Get the user's profile",
				},
			},
		})
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	specs, err := c.ListTools(context.Background(), "gmail", "0xABC")
	require.NoError(t, err)
	require.Len(t, specs, 2)

	assert.Equal(t, "GMAIL_SEND_EMAIL", specs[0].Name)
	assert.Equal(t, "Send an email", specs[0].Description)

	schema := specs[0].ParameterSchema()
	assert.Equal(t, "object", schema["type"])

	// Missing schema degrades to an empty object schema
	empty := specs[1].ParameterSchema()
	assert.Equal(t, "object", empty["type"])
}

func TestExecuteAction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/actions/GMAIL_GET_PROFILE/execute", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "0xABC", body["entityId"])
		assert.NotNil(t, body["input"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"successful": true,
			"data": map[string]any{
				"response_data": map[string]any{
					"emailAddress":  "a@b.com",
					"messagesTotal": 5,
					"threadsTotal":  2,
				},
			},
		})
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	result, err := c.ExecuteAction(context.Background(), "GMAIL_GET_PROFILE", "0xABC", nil)
	require.NoError(t, err)
	assert.True(t, result.Successful)

	data := result.ResponseData()
	require.NotNil(t, data)
	assert.Equal(t, "a@b.com", data["emailAddress"])
}

func TestExecuteActionBusinessFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"successful": false,
			"error":      "no connected account found",
		})
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	result, err := c.ExecuteAction(context.Background(), "GMAIL_GET_PROFILE", "nobody", nil)

	// Business-level failure is not a transport error
	require.NoError(t, err)
	assert.False(t, result.Successful)
	assert.Equal(t, "no connected account found", result.Error)
	assert.Nil(t, result.ResponseData())
}

func TestExecuteActionTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	result, err := c.ExecuteAction(context.Background(), "GMAIL_GET_PROFILE", "0xABC", nil)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "502")
}

func TestInitiateConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/connectedAccounts", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gmail", body["appName"])
		assert.Equal(t, "0xABC", body["entityId"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"redirectUrl":      "https://connect.example.com/oauth/abc",
			"connectionStatus": "INITIATED",
		})
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	conn, err := c.InitiateConnection(context.Background(), "gmail", "0xABC")
	require.NoError(t, err)
	assert.Equal(t, "https://connect.example.com/oauth/abc", conn.RedirectURL)
}
