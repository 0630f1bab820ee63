// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_Evict(t *testing.T) {
	var evicted []string
	c, err := NewLRUWithEvict(2, func(key string, _ int) { evicted = append(evicted, key) })
	require.NoError(t, err)

	c.Add("a", 1)
	c.Add("b", 2)
	_, ok := c.Get("a")
	assert.True(t, ok)

	c.Add("c", 3)
	assert.Equal(t, []string{"b"}, evicted)
	assert.Equal(t, 2, c.Len())

	c.Purge()
	assert.ElementsMatch(t, []string{"b", "a", "c"}, evicted)
	assert.Equal(t, 0, c.Len())

	_, err = NewLRU[string, int](0)
	assert.Error(t, err)
}

func TestLRU_GetOrLoad(t *testing.T) {
	c, err := NewLRU[int, string](4)
	require.NoError(t, err)

	loads := 0
	load := func(k int) (string, error) {
		loads++
		if k < 0 {
			return "", errors.New("negative")
		}
		return "v", nil
	}

	for range 3 {
		v, err := c.GetOrLoad(1, load)
		require.NoError(t, err)
		assert.Equal(t, "v", v)
	}
	assert.Equal(t, 1, loads)

	_, err = c.GetOrLoad(-1, load)
	assert.Error(t, err)
	_, ok := c.Get(-1)
	assert.False(t, ok)

	_, hit, miss := c.Stats().Stats()
	assert.Equal(t, int64(2), hit)
	assert.Equal(t, int64(3), miss)
}
