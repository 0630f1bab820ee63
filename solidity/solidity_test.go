// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plumestake/stakerd/lvldb"
	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/state"
)

type record struct {
	Amount *big.Int
	Flag   bool
}

func newContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewContext(plume.BytesToAddress([]byte("owner")), state.New(db), 100, nil)
}

func TestMapping(t *testing.T) {
	ctx := newContext(t)
	m := NewMapping[CompositeKey, record](ctx, plume.BytesToBytes32([]byte("records")))

	key := NewKey(plume.BytesToAddress([]byte("user")), plume.ValidatorID(1))

	val, err := m.Get(key)
	assert.NoError(t, err)
	assert.Nil(t, val.Amount)

	exists, err := m.Exists(key)
	assert.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, m.Set(key, record{Amount: big.NewInt(42), Flag: true}))
	val, err = m.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(42), val.Amount)
	assert.True(t, val.Flag)

	// a different key does not collide
	other, err := m.Get(NewKey(plume.BytesToAddress([]byte("user")), plume.ValidatorID(2)))
	assert.NoError(t, err)
	assert.False(t, other.Flag)

	m.Delete(key)
	exists, err = m.Exists(key)
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestMapping_PointerValue(t *testing.T) {
	ctx := newContext(t)
	m := NewMapping[plume.Address, *record](ctx, plume.BytesToBytes32([]byte("ptr")))

	addr := plume.BytesToAddress([]byte("user"))
	val, err := m.Get(addr)
	assert.NoError(t, err)
	assert.NotNil(t, val)

	require.NoError(t, m.Set(addr, &record{Amount: big.NewInt(7)}))
	val, err = m.Get(addr)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(7), val.Amount)
}

func TestUint256(t *testing.T) {
	ctx := newContext(t)
	u := NewUint256(ctx, plume.BytesToBytes32([]byte("total")))

	assert.NoError(t, u.Add(big.NewInt(10)))
	assert.NoError(t, u.Sub(big.NewInt(3)))

	v, err := u.Get()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(7), v)

	assert.ErrorIs(t, u.Sub(big.NewInt(8)), ErrUint256Underflow)

	assert.NoError(t, u.SubFloor(big.NewInt(8)))
	v, _ = u.Get()
	assert.Equal(t, 0, v.Sign())
}

func TestAddressAndRaw(t *testing.T) {
	ctx := newContext(t)

	a := NewAddress(ctx, plume.BytesToBytes32([]byte("admin")))
	admin := plume.BytesToAddress([]byte("admin-account"))
	a.Set(admin)
	got, err := a.Get()
	assert.NoError(t, err)
	assert.Equal(t, admin, got)

	r := NewRaw[[]plume.Address](ctx, plume.BytesToBytes32([]byte("tokens")))
	list, err := r.Get()
	assert.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, r.Set([]plume.Address{admin}))
	list, err = r.Get()
	assert.NoError(t, err)
	assert.Equal(t, []plume.Address{admin}, list)

	// sibling context shares the state but not the storage
	sibling := ctx.WithAddress(plume.BytesToAddress([]byte("other")))
	got, err = NewAddress(sibling, plume.BytesToBytes32([]byte("admin"))).Get()
	assert.NoError(t, err)
	assert.True(t, got.IsZero())
}
