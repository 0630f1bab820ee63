// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plumestake/stakerd/api/commands"
	"github.com/plumestake/stakerd/executor/testexec"
	"github.com/plumestake/stakerd/genesis"
)

func httpPost(t *testing.T, url string, body any, result any) int {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if res.StatusCode == http.StatusOK && result != nil {
		require.NoError(t, json.Unmarshal(raw, result), string(raw))
	}
	return res.StatusCode
}

func TestCommands(t *testing.T) {
	chain := testexec.New(t)
	router := mux.NewRouter()
	commands.New(chain.Executor, 5*time.Second).Mount(router, "/commands")
	ts := httptest.NewServer(router)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- chain.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	staker1 := genesis.DevAccountOf("staker-1")

	var result commands.Result
	assert.Equal(t, http.StatusOK, httpPost(t, ts.URL+"/commands", testexec.Stake(staker1, 1, 10), &result))
	assert.Equal(t, uint64(1), result.BlockNumber)
	assert.Equal(t, "stake", result.Op)
	assert.False(t, result.Reverted)
	require.Len(t, result.Events, 1)
	assert.Equal(t, staker1, result.Events[0].Account)

	var reverted commands.Result
	assert.Equal(t, http.StatusOK, httpPost(t, ts.URL+"/commands", testexec.Stake(staker1, 9, 10), &reverted))
	assert.True(t, reverted.Reverted)
	assert.NotEmpty(t, reverted.Error)

	assert.Equal(t, http.StatusBadRequest, httpPost(t, ts.URL+"/commands", testexec.Command("nope", staker1, nil), nil))
	assert.Equal(t, http.StatusBadRequest, httpPost(t, ts.URL+"/commands", map[string]any{"op": "stake", "bogus": 1}, nil))
	assert.Equal(t, http.StatusBadRequest, httpPost(t, ts.URL+"/commands", map[string]any{"op": "withdraw"}, nil))

	res, err := http.Get(ts.URL + "/commands/ops")
	require.NoError(t, err)
	defer res.Body.Close()
	var ops []string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&ops))
	assert.Contains(t, ops, "claimAll")
}
