package memstore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/leadfunnel/pkg/types"
)

func TestStoreRoundTrip(t *testing.T) {
	s := New()

	_, ok, err := s.Get("formData")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("formData", "{}"))
	v, ok, err := s.Get("formData")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "{}", v)

	require.NoError(t, s.Set("a", "1"))
	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "formData"}, keys)

	require.NoError(t, s.Remove("formData"))
	require.NoError(t, s.Remove("formData"))
	assert.Equal(t, 1, s.Len())
}

func TestStoreRejectsEmptyKey(t *testing.T) {
	s := New()
	_, _, err := s.Get("")
	assert.ErrorIs(t, err, types.ErrInvalidKey)
	assert.ErrorIs(t, s.Set("", "x"), types.ErrInvalidKey)
	assert.ErrorIs(t, s.Remove(""), types.ErrInvalidKey)
}

func TestStoreConcurrentWrites(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Set("exitAttempts", "1")
			_, _, _ = s.Get("exitAttempts")
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, s.Len())
}
