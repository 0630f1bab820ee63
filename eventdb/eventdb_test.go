// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
)

var (
	alice = plume.BytesToAddress([]byte("alice"))
	bob   = plume.BytesToAddress([]byte("bob"))
)

func newEvents(blocks int) []*Event {
	var events []*Event
	for n := 1; n <= blocks; n++ {
		id := plume.Blake2b(big.NewInt(int64(n)).Bytes())
		for i, name := range []string{"Staked", "Unstaked"} {
			account := alice
			if n%2 == 0 {
				account = bob
			}
			events = append(events, NewEvent(uint64(n), id, uint64(n*10), 0, uint32(i), &solidity.Event{
				Name:      name,
				Validator: plume.ValidatorID(n%3 + 1),
				Account:   account,
				Token:     plume.NativeToken,
				Amount:    big.NewInt(int64(n * 100)),
			}))
		}
	}
	return events
}

func TestEventDB(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	all := newEvents(10)
	require.NoError(t, db.Write(all))

	got, err := db.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, all, got)

	newest, ok, err := db.NewestBlockNumber()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(10), newest)

	name := "Staked"
	got, err = db.FilterEvents(context.Background(), &EventFilter{
		CriteriaSet: []*Criteria{{Name: &name, Account: &bob}},
		Range:       &Range{Unit: Block, From: 3, To: 8},
		Order:       DESC,
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, uint64(8), got[0].BlockNumber)
	assert.Equal(t, uint64(4), got[2].BlockNumber)
	assert.Equal(t, big.NewInt(800), got[0].Amount)

	v := plume.ValidatorID(1)
	got, err = db.FilterEvents(context.Background(), &EventFilter{
		CriteriaSet: []*Criteria{{Validator: &v}, {Name: &name, Account: &alice}},
		Range:       &Range{Unit: Time, From: 10, To: 60},
		Options:     &Options{Offset: 1, Limit: 3},
	})
	require.NoError(t, err)
	// validator 1 in blocks 3 and 6, alice stakes in 1, 3 and 5
	require.Len(t, got, 3)
	assert.Equal(t, []uint64{3, 3, 5}, []uint64{got[0].BlockNumber, got[1].BlockNumber, got[2].BlockNumber})

	require.NoError(t, db.Truncate(6))
	newest, _, err = db.NewestBlockNumber()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), newest)

	changed, hit, _ := db.Stats().Stats()
	assert.True(t, changed)
	assert.Positive(t, hit)
}

func TestEventDB_Persistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, db.Write(newEvents(2)))
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()

	_, ok, err := db.NewestBlockNumber()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, path, db.Path())
	assert.NotEmpty(t, db.DriverVersion())
}

func TestEventDB_Empty(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	_, ok, err := db.NewestBlockNumber()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, db.Write(nil))
}

func TestSequence(t *testing.T) {
	s := newSequence(123456, 789)
	assert.Equal(t, uint64(123456), s.BlockNumber())
	assert.Equal(t, uint32(789), s.Index())
	assert.Panics(t, func() { newSequence(1, maxIndex+1) })
}
