// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plumestake/stakerd/executor/testexec"
	"github.com/plumestake/stakerd/genesis"
	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
)

func initServer(t *testing.T) (*testexec.Chain, *Subscriptions, string) {
	chain := testexec.New(t)
	subs := New(chain.Executor, []string{"*"}, 2)
	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		subs.Close()
		ts.Close()
	})
	return chain, subs, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	conn, res, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	res.Body.Close()
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestSubscribeBlocks(t *testing.T) {
	chain, _, url := initServer(t)
	staker1 := genesis.DevAccountOf("staker-1")
	chain.MustMint(2, testexec.Stake(staker1, 1, 10))

	conn := dial(t, url+"/subscriptions/block?pos=0")

	for n := uint64(0); n <= 1; n++ {
		var msg BlockMessage
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, n, msg.Number)
	}

	chain.Mint(2, testexec.Stake(staker1, 9, 10))
	var msg BlockMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, uint64(2), msg.Number)
	assert.Equal(t, []string{"stake"}, msg.Ops)
	assert.Equal(t, 1, msg.Reverted)
	assert.Equal(t, chain.Best().ID(), msg.ID)
}

func TestSubscribeEvents(t *testing.T) {
	chain, _, url := initServer(t)
	staker1 := genesis.DevAccountOf("staker-1")
	staker2 := genesis.DevAccountOf("staker-2")

	conn := dial(t, url+"/subscriptions/event?account="+staker2.String())

	chain.MustMint(2, testexec.Stake(staker1, 1, 10), testexec.Stake(staker2, 2, 10))

	var msg EventMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "Staked", msg.Name)
	assert.Equal(t, staker2, msg.Account)
	assert.Equal(t, uint32(1), msg.CommandIndex)
	assert.Equal(t, uint64(1), msg.BlockNumber)
}

func TestParsePos(t *testing.T) {
	chain, _, url := initServer(t)
	for range 4 {
		chain.MustMint(1)
	}

	_, res, err := websocket.DefaultDialer.Dial(url+"/subscriptions/block?pos=1", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	_, res, err = websocket.DefaultDialer.Dial(url+"/subscriptions/block?pos=9", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	_, res, err = websocket.DefaultDialer.Dial(url+"/subscriptions/event?validator=0", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestEventFilterMatch(t *testing.T) {
	id := plume.ValidatorID(2)
	ev := &solidity.Event{Name: "Staked", Validator: 2, Account: plume.BytesToAddress([]byte("a"))}

	assert.True(t, (&EventFilter{}).Match(ev))
	assert.True(t, (&EventFilter{Name: "Staked", Validator: &id}).Match(ev))
	assert.False(t, (&EventFilter{Name: "Unstaked"}).Match(ev))

	other := plume.BytesToAddress([]byte("b"))
	assert.False(t, (&EventFilter{Account: &other}).Match(ev))
}
