package blob

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/elfarodelsaber/storefront/internal/domain"
)

func TestHTTPStore_Upload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/objects/products%2Fprod-1", r.URL.RequestURI())
		require.Equal(t, "image/png", r.Header.Get("Content-Type"))
		require.Equal(t, "Bearer storage-key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.Equal(t, []byte("png-bytes"), body)

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	store := NewHTTPStore(server.URL, "storage-key", nil)
	err := store.Upload(context.Background(), "products/prod-1", []byte("png-bytes"), "image/png")
	require.NoError(t, err)
}

func TestHTTPStore_UploadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInsufficientStorage)
	}))
	defer server.Close()

	store := NewHTTPStore(server.URL, "", nil)
	err := store.Upload(context.Background(), "products/prod-1", []byte("x"), "image/png")
	require.ErrorIs(t, err, domain.ErrUpstream)
}

func TestHTTPStore_SignedURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/sign", r.URL.Path)
		require.Equal(t, "products/prod-1", r.URL.Query().Get("key"))
		require.Equal(t, "3600", r.URL.Query().Get("ttl_seconds"))

		_ = json.NewEncoder(w).Encode(map[string]string{
			"signed_url": "https://cdn.tienda.test/products/prod-1?sig=abc",
		})
	}))
	defer server.Close()

	store := NewHTTPStore(server.URL, "", nil)
	signed, err := store.SignedURL(context.Background(), "products/prod-1", time.Hour)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.tienda.test/products/prod-1?sig=abc", signed)
}

func TestHTTPStore_SignedURLFailures(t *testing.T) {
	t.Run("non-200", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		store := NewHTTPStore(server.URL, "", nil)
		_, err := store.SignedURL(context.Background(), "missing", time.Hour)
		require.ErrorIs(t, err, domain.ErrUpstream)
	})

	t.Run("empty signed_url", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{})
		}))
		defer server.Close()

		store := NewHTTPStore(server.URL, "", nil)
		_, err := store.SignedURL(context.Background(), "key", time.Hour)
		require.ErrorIs(t, err, domain.ErrUpstream)
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	err := store.Upload(context.Background(), "products/p-1", []byte("data"), "image/jpeg")
	require.NoError(t, err)

	data, contentType, ok := store.Object("products/p-1")
	require.True(t, ok)
	require.Equal(t, []byte("data"), data)
	require.Equal(t, "image/jpeg", contentType)

	_, _, ok = store.Object("products/missing")
	require.False(t, ok)

	signed, err := store.SignedURL(context.Background(), "products/p-1", time.Hour)
	require.NoError(t, err)
	require.Contains(t, signed, "products/p-1")
}
