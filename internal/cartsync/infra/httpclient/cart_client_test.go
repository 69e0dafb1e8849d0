package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	"github.com/dwikikusuma/storefront-cart/internal/cartsync/app"
	"github.com/dwikikusuma/storefront-cart/pkg/apiclient"
)

func newClient(t *testing.T, h http.HandlerFunc) *CartClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewCartClient(apiclient.New(srv.URL, apiclient.WithToken("secret")))
}

func TestLoad(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/cart/load", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"success":true,"items":[{"id":42,"productId":"P1","quantity":2,"unitPrice":"10","subtotal":"20","product":{"name":"Mug","price":"10","availableStock":5}}]}`))
	})

	items, err := c.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.ItemID("42"), items[0].ID)
	assert.Equal(t, 5, items[0].Product.AvailableStock)
}

func TestSync(t *testing.T) {
	t.Run("sends items, merge flag and sequence", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/cart/sync", r.URL.Path)
			assert.Equal(t, "3", r.Header.Get(SeqHeader))

			var body map[string]json.RawMessage
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.JSONEq(t, `true`, string(body["merge"]))
			assert.JSONEq(t, `[]`, string(body["items"]))

			_, _ = w.Write([]byte(`{"success":true,"items":[],"warnings":["cantidad ajustada por stock"]}`))
		})

		resp, err := c.Sync(context.Background(), app.SyncRequest{Merge: true, Seq: 3})
		require.NoError(t, err)
		assert.Equal(t, []string{"cantidad ajustada por stock"}, resp.Warnings)
	})

	t.Run("distinguishes zero from absent subtotals", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":true,"items":[` +
				`{"id":"s1","productId":"P1","quantity":1,"subtotal":"0"},` +
				`{"id":"s2","productId":"P2","quantity":2}]}`))
		})

		resp, err := c.Sync(context.Background(), app.SyncRequest{Merge: true, Seq: 1})
		require.NoError(t, err)
		require.Len(t, resp.Items, 2)
		require.Len(t, resp.Subtotals, 2)
		assert.True(t, resp.Subtotals[0].Valid)
		assert.True(t, resp.Subtotals[0].Decimal.IsZero())
		assert.False(t, resp.Subtotals[1].Valid)
		assert.Equal(t, domain.ItemID("s2"), resp.Items[1].ID)
	})

	t.Run("success false is a rejection", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":false,"message":"stock agotado"}`))
		})

		_, err := c.Sync(context.Background(), app.SyncRequest{Seq: 1})
		require.Error(t, err)
		assert.ErrorIs(t, err, app.ErrConflict)
		assert.Equal(t, "stock agotado", app.UserMessage(err))
	})

	t.Run("4xx envelope is a rejection", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"success":false,"message":"unknown product"}`))
		})

		_, err := c.Sync(context.Background(), app.SyncRequest{Seq: 1})
		assert.ErrorIs(t, err, app.ErrConflict)
	})

	t.Run("5xx without envelope is transport", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("bad gateway"))
		})

		_, err := c.Sync(context.Background(), app.SyncRequest{Seq: 1})
		assert.ErrorIs(t, err, app.ErrTransport)
	})
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewCartClient(apiclient.New(url))
	_, err := c.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, app.ErrTransport)

	var se *app.SyncError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "load", se.Op)
}

func TestClear(t *testing.T) {
	called := false
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cart/clear", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	require.NoError(t, c.Clear(context.Background()))
	assert.True(t, called)
}
