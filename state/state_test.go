// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plumestake/stakerd/kv"
	"github.com/plumestake/stakerd/lvldb"
	"github.com/plumestake/stakerd/plume"
)

func newStater(t *testing.T) (*Stater, kv.Store) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := kv.Bucket("v1/").NewStore(db)
	return NewStater(store, 1<<20), store
}

func TestStateReadWrite(t *testing.T) {
	stater, _ := newStater(t)
	st := stater.NewState()

	addr := plume.BytesToAddress([]byte("account"))
	key := plume.BytesToBytes32([]byte("key"))

	v, err := st.GetStorage(addr, key)
	assert.NoError(t, err)
	assert.True(t, v.IsZero())

	st.SetStorage(addr, key, plume.BytesToBytes32([]byte{1, 2}))
	v, err = st.GetStorage(addr, key)
	assert.NoError(t, err)
	assert.Equal(t, plume.BytesToBytes32([]byte{1, 2}), v)

	raw, err := st.GetRawStorage(addr, key)
	assert.NoError(t, err)
	expected, _ := rlp.EncodeToBytes([]byte{1, 2})
	assert.Equal(t, expected, raw)

	// zero word clears the slot
	st.SetStorage(addr, key, plume.Bytes32{})
	raw, err = st.GetRawStorage(addr, key)
	assert.NoError(t, err)
	assert.Empty(t, raw)
}

func TestStateRevert(t *testing.T) {
	stater, _ := newStater(t)
	st := stater.NewState()

	addr := plume.BytesToAddress([]byte("account"))
	key := plume.BytesToBytes32([]byte("key"))

	st.SetRawStorage(addr, key, []byte{1})
	chk := st.NewCheckpoint()
	st.SetRawStorage(addr, key, []byte{2})
	inner := st.NewCheckpoint()
	st.SetRawStorage(addr, key, []byte{3})

	st.RevertTo(inner)
	raw, _ := st.GetRawStorage(addr, key)
	assert.Equal(t, []byte{2}, raw)

	st.RevertTo(chk)
	raw, _ = st.GetRawStorage(addr, key)
	assert.Equal(t, []byte{1}, raw)

	assert.Panics(t, func() { st.RevertTo(0) })
}

func TestStageCommit(t *testing.T) {
	stater, store := newStater(t)
	require.NoError(t, stater.CheckSchema())

	addr := plume.BytesToAddress([]byte("account"))
	k1 := plume.BytesToBytes32([]byte("k1"))
	k2 := plume.BytesToBytes32([]byte("k2"))

	st := stater.NewState()
	st.SetRawStorage(addr, k1, []byte("a"))
	st.SetRawStorage(addr, k2, []byte("b"))
	st.SetRawStorage(addr, k2, nil)

	stage := st.Stage()
	assert.Equal(t, 2, stage.Len())
	require.NoError(t, stater.Commit(stage, func(p kv.Putter) error {
		return p.Put([]byte("extra"), []byte("1"))
	}))

	fresh := stater.NewState()
	raw, err := fresh.GetRawStorage(addr, k1)
	assert.NoError(t, err)
	assert.Equal(t, []byte("a"), raw)

	raw, err = fresh.GetRawStorage(addr, k2)
	assert.NoError(t, err)
	assert.Empty(t, raw)

	has, err := store.Has([]byte("extra"))
	assert.NoError(t, err)
	assert.True(t, has)

	// reopening without cache reads the committed values from disk
	cold := NewStater(store, 0).NewState()
	raw, err = cold.GetRawStorage(addr, k1)
	assert.NoError(t, err)
	assert.Equal(t, []byte("a"), raw)
}

func TestCheckSchema(t *testing.T) {
	stater, store := newStater(t)

	ok, err := stater.Initialized()
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, stater.CheckSchema())
	assert.NoError(t, stater.CheckSchema())

	ok, err = stater.Initialized()
	assert.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Put([]byte(schemaKey), []byte{0, 0, 0, 9}))
	assert.ErrorContains(t, stater.CheckSchema(), "incompatible schema version")
}
