package cache_test

import (
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/sareemart/storefront/internal/cache"
	"github.com/sareemart/storefront/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedProduct struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func setupCacheTest(t *testing.T) (cache.Cache, redismock.ClientMock) {
	t.Helper()

	client, mock := redismock.NewClientMock()

	t.Cleanup(func() {
		client.Close()
	})

	cfg := &config.Cache{DefaultTTL: 5 * time.Minute}

	return cache.NewRedisCache(client, cfg), mock
}

func TestRedisCache_Get(t *testing.T) {
	c, mock := setupCacheTest(t)
	key := cache.Key(cache.ProductKeyPrefix, "42")

	t.Run("Success - Cache Hit", func(t *testing.T) {
		// Arrange
		mock.ExpectGet(key).SetVal(`{"name":"Kanjivaram Silk Saree","price":4500}`)

		// Act
		var got cachedProduct
		found, err := c.Get(t.Context(), key, &got)

		// Assert
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "Kanjivaram Silk Saree", got.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success - Cache Miss Is Not An Error", func(t *testing.T) {
		// Arrange
		mock.ExpectGet(key).RedisNil()

		// Act
		var got cachedProduct
		found, err := c.Get(t.Context(), key, &got)

		// Assert
		require.NoError(t, err)
		assert.False(t, found)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Corrupt Payload", func(t *testing.T) {
		// Arrange
		mock.ExpectGet(key).SetVal(`not-json`)

		// Act
		var got cachedProduct
		found, err := c.Get(t.Context(), key, &got)

		// Assert
		require.Error(t, err)
		assert.False(t, found)
	})
}

func TestRedisCache_Set(t *testing.T) {
	c, mock := setupCacheTest(t)
	key := cache.Key(cache.ProductKeyPrefix, "42")
	value := cachedProduct{Name: "Cotton Saree", Price: 900}
	payload := []byte(`{"name":"Cotton Saree","price":900}`)

	t.Run("Success - Explicit TTL", func(t *testing.T) {
		// Arrange
		mock.ExpectSet(key, payload, time.Minute).SetVal("OK")

		// Act
		err := c.Set(t.Context(), key, value, time.Minute)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success - Zero TTL Falls Back To Default", func(t *testing.T) {
		// Arrange
		mock.ExpectSet(key, payload, 5*time.Minute).SetVal("OK")

		// Act
		err := c.Set(t.Context(), key, value, 0)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisCache_Delete(t *testing.T) {
	c, mock := setupCacheTest(t)
	key := cache.Key(cache.ProductKeyPrefix, "42")

	t.Run("Success - Key Dropped", func(t *testing.T) {
		// Arrange
		mock.ExpectDel(key).SetVal(1)

		// Act
		err := c.Delete(t.Context(), key)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
