package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "7", r.Header.Get("X-Cart-Seq"))
		assert.Equal(t, "/cart/sync", r.URL.Path)

		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, true, in["merge"])

		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success":false,"message":"nope"}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", WithToken("tok"))
	resp, err := c.Do(context.Background(), http.MethodPost, "/cart/sync", map[string]any{"merge": true}, map[string]string{"X-Cart-Seq": "7"})
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusConflict, resp.Status)

	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, resp.Decode(&out))
	assert.Equal(t, "nope", out.Message)
}

func TestDoUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, WithTimeout(time.Second)).Do(context.Background(), http.MethodGet, "/cart/load", nil, nil)
	require.Error(t, err)
}

func TestDecodeEmptyBody(t *testing.T) {
	var out map[string]any
	assert.NoError(t, Response{Status: 204}.Decode(&out))
	assert.Error(t, Response{Status: 200, Body: []byte("<html>")}.Decode(&out))
}
