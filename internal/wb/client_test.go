package wb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malinawb/malina-bot/types"
)

func TestVerifySeller(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/seller-info", r.URL.Path)
		assert.Equal(t, "valid-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"ООО Малина","sid":"abc","tradeMark":"Malina"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client()).WithBaseURLs(srv.URL, "")

	id, err := c.VerifySeller(context.Background(), "valid-key")
	require.NoError(t, err)
	assert.Equal(t, "ООО Малина", id.SellerName)
	assert.Equal(t, "Malina", id.TradeMark)
}

func TestVerifySeller_InvalidKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.Client()).WithBaseURLs(srv.URL, "")

	_, err := c.VerifySeller(context.Background(), "revoked-key")
	assert.ErrorIs(t, err, types.ErrVerificationFailed)
}

func TestVerifySeller_EmptyKey(t *testing.T) {
	c := NewClient(nil)
	_, err := c.VerifySeller(context.Background(), "   ")
	assert.ErrorIs(t, err, types.ErrVerificationFailed)
}

func TestVerifySeller_EmptyName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":""}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client()).WithBaseURLs(srv.URL, "")
	_, err := c.VerifySeller(context.Background(), "odd-key")
	assert.ErrorIs(t, err, types.ErrVerificationFailed)
}

func TestVerifySeller_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"name":"ООО Малина"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client()).WithBaseURLs(srv.URL, "")

	id, err := c.VerifySeller(context.Background(), "valid-key")
	require.NoError(t, err)
	assert.Equal(t, "ООО Малина", id.SellerName)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchWarehouses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/warehouses", r.URL.Path)
		w.Write([]byte(`[
			{"ID":218987,"name":"Коледино","address":"Подольск","workTime":"24/7","acceptsQR":true,"isActive":true},
			{"ID":206348,"name":"Тула","address":"Тула","workTime":"24/7","acceptsQR":false,"isActive":false}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client()).WithBaseURLs("", srv.URL)

	warehouses, err := c.FetchWarehouses(context.Background(), "valid-key")
	require.NoError(t, err)
	require.Len(t, warehouses, 2)
	assert.Equal(t, int64(218987), warehouses[0].ID)
	assert.Equal(t, "Коледино", warehouses[0].Name)
	assert.True(t, warehouses[0].AcceptsQR)
	assert.False(t, warehouses[1].IsActive)
}
