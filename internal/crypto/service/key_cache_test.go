package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLKeyCache_GetSet(t *testing.T) {
	cache := NewTTLKeyCache(time.Minute)

	t.Run("miss on unknown id", func(t *testing.T) {
		key, ok := cache.Get("enc:acme:v1")
		assert.False(t, ok)
		assert.Nil(t, key)
	})

	t.Run("hit after set", func(t *testing.T) {
		cache.Set("enc:acme:v1", []byte("key-material"))

		key, ok := cache.Get("enc:acme:v1")
		require.True(t, ok)
		assert.Equal(t, []byte("key-material"), key)
	})

	t.Run("returned slice does not alias the cached buffer", func(t *testing.T) {
		cache.Set("idx:acme", []byte("index-key"))

		key, ok := cache.Get("idx:acme")
		require.True(t, ok)
		key[0] = 'X'

		fresh, ok := cache.Get("idx:acme")
		require.True(t, ok)
		assert.Equal(t, []byte("index-key"), fresh)
	})

	t.Run("stored value is a copy of the input", func(t *testing.T) {
		input := []byte("mutable")
		cache.Set("enc:acme:v2", input)
		input[0] = 'X'

		key, ok := cache.Get("enc:acme:v2")
		require.True(t, ok)
		assert.Equal(t, []byte("mutable"), key)
	})
}

func TestTTLKeyCache_Expiry(t *testing.T) {
	cache := NewTTLKeyCache(10 * time.Millisecond)
	cache.Set("enc:acme:v1", []byte("key-material"))

	_, ok := cache.Get("enc:acme:v1")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	key, ok := cache.Get("enc:acme:v1")
	assert.False(t, ok)
	assert.Nil(t, key)
}

func TestTTLKeyCache_ZeroTTLDisablesCaching(t *testing.T) {
	cache := NewTTLKeyCache(0)
	cache.Set("enc:acme:v1", []byte("key-material"))

	key, ok := cache.Get("enc:acme:v1")
	assert.False(t, ok)
	assert.Nil(t, key)
}

func TestTTLKeyCache_Purge(t *testing.T) {
	cache := NewTTLKeyCache(time.Minute)
	cache.Set("enc:acme:v1", []byte("key-one"))
	cache.Set("idx:acme", []byte("key-two"))

	cache.Purge()

	_, ok := cache.Get("enc:acme:v1")
	assert.False(t, ok)
	_, ok = cache.Get("idx:acme")
	assert.False(t, ok)
}

func TestTTLKeyCache_ConcurrentAccess(t *testing.T) {
	cache := NewTTLKeyCache(time.Minute)

	done := make(chan struct{})
	for range 8 {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := range 100 {
				cache.Set("enc:acme:v1", []byte{byte(i)})
				cache.Get("enc:acme:v1")
			}
		}()
	}

	for range 8 {
		<-done
	}
}
