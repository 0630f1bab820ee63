// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plumestake/stakerd/api/events"
	"github.com/plumestake/stakerd/executor/testexec"
	"github.com/plumestake/stakerd/genesis"
)

func httpPost(t *testing.T, url string, body string, result any) int {
	res, err := http.Post(url, "application/json", bytes.NewReader([]byte(body))) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if res.StatusCode == http.StatusOK && result != nil {
		require.NoError(t, json.Unmarshal(raw, result), string(raw))
	}
	return res.StatusCode
}

func TestEvents(t *testing.T) {
	chain := testexec.New(t)
	router := mux.NewRouter()
	events.New(chain.Events, 3).Mount(router, "/events")
	ts := httptest.NewServer(router)
	defer ts.Close()

	staker1 := genesis.DevAccountOf("staker-1")
	staker2 := genesis.DevAccountOf("staker-2")
	chain.MustMint(2, testexec.Stake(staker1, 1, 10), testexec.Stake(staker2, 2, 10))
	chain.MustMint(2, testexec.Stake(staker1, 3, 10))

	var list []*events.FilteredEvent
	assert.Equal(t, http.StatusOK, httpPost(t, ts.URL+"/events", `{}`, &list))
	require.Len(t, list, 3)
	assert.Equal(t, uint64(1), list[0].Meta.BlockNumber)
	assert.Equal(t, uint64(2), list[2].Meta.BlockNumber)
	assert.Equal(t, uint32(1), list[1].Meta.CommandIndex)

	body := `{"criteriaSet":[{"account":"` + staker1.String() + `"}],"order":"desc"}`
	assert.Equal(t, http.StatusOK, httpPost(t, ts.URL+"/events", body, &list))
	require.Len(t, list, 2)
	assert.Equal(t, uint64(2), list[0].Meta.BlockNumber)

	assert.Equal(t, http.StatusOK, httpPost(t, ts.URL+"/events", `{"range":{"unit":"block","from":2}}`, &list))
	require.Len(t, list, 1)
	assert.Equal(t, staker1, list[0].Account)

	assert.Equal(t, http.StatusOK, httpPost(t, ts.URL+"/events", `{"criteriaSet":[{"validator":2}],"options":{"offset":0,"limit":3}}`, &list))
	require.Len(t, list, 1)
	assert.Equal(t, staker2, list[0].Account)

	chain.MustMint(2, testexec.Stake(staker2, 3, 10))
	assert.Equal(t, http.StatusForbidden, httpPost(t, ts.URL+"/events", `{}`, nil))
	assert.Equal(t, http.StatusForbidden, httpPost(t, ts.URL+"/events", `{"options":{"limit":4}}`, nil))
	assert.Equal(t, http.StatusBadRequest, httpPost(t, ts.URL+"/events", `{"range":{"unit":"block","from":3,"to":1}}`, nil))
	assert.Equal(t, http.StatusBadRequest, httpPost(t, ts.URL+"/events", `{"range":{"unit":"epoch"}}`, nil))
	assert.Equal(t, http.StatusBadRequest, httpPost(t, ts.URL+"/events", `{"criteriaSet":[null]}`, nil))
	assert.Equal(t, http.StatusBadRequest, httpPost(t, ts.URL+"/events", `{"bogus":1}`, nil))
}
