// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validators_test

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plumestake/stakerd/api/validators"
	"github.com/plumestake/stakerd/executor/testexec"
	"github.com/plumestake/stakerd/genesis"
	"github.com/plumestake/stakerd/plume"
)

var (
	staker1 = genesis.DevAccountOf("staker-1")
	staker2 = genesis.DevAccountOf("staker-2")
)

func initServer(t *testing.T) (*testexec.Chain, *httptest.Server) {
	chain := testexec.New(t)
	router := mux.NewRouter()
	validators.New(chain.Executor, 2).Mount(router, "/validators")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return chain, ts
}

func httpGet(t *testing.T, url string, result any) int {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if res.StatusCode == http.StatusOK && result != nil {
		require.NoError(t, json.Unmarshal(body, result), string(body))
	}
	return res.StatusCode
}

func TestGetValidators(t *testing.T) {
	chain, ts := initServer(t)
	chain.MustMint(2, testexec.Stake(staker1, 1, 100))

	var list []*validators.Validator
	assert.Equal(t, http.StatusOK, httpGet(t, ts.URL+"/validators", &list))
	require.Len(t, list, 3)
	assert.Equal(t, plume.ValidatorID(1), list[0].ID)
	assert.True(t, list[0].Active)
	assert.Equal(t, testexec.Units(100), (*big.Int)(list[0].TotalDelegated))

	var one validators.Validator
	assert.Equal(t, http.StatusOK, httpGet(t, ts.URL+"/validators/2", &one))
	assert.Equal(t, genesis.DevAccountOf("validator-2"), one.AdminAddress)

	assert.Equal(t, http.StatusNotFound, httpGet(t, ts.URL+"/validators/9", nil))
	assert.Equal(t, http.StatusBadRequest, httpGet(t, ts.URL+"/validators/0", nil))

	var byAdmin map[string]plume.ValidatorID
	assert.Equal(t, http.StatusOK, httpGet(t, ts.URL+"/validators/admin/"+genesis.DevAccountOf("validator-3").String(), &byAdmin))
	assert.Equal(t, plume.ValidatorID(3), byAdmin["id"])
	assert.Equal(t, http.StatusNotFound, httpGet(t, ts.URL+"/validators/admin/"+staker1.String(), nil))
}

func TestGetStakers(t *testing.T) {
	chain, ts := initServer(t)
	third := genesis.DevAccountOf("validator-3")
	chain.MustMint(2,
		testexec.Stake(staker1, 1, 100),
		testexec.Stake(staker2, 1, 50),
		testexec.Stake(third, 1, 10),
	)

	var page validators.StakersPage
	assert.Equal(t, http.StatusOK, httpGet(t, ts.URL+"/validators/1/stakers", &page))
	require.Len(t, page.Stakers, 2)
	require.NotNil(t, page.Next)

	seen := map[plume.Address]bool{}
	for _, s := range page.Stakers {
		seen[s.Address] = true
	}
	var rest validators.StakersPage
	assert.Equal(t, http.StatusOK, httpGet(t, ts.URL+"/validators/1/stakers?cursor="+page.Next.String(), &rest))
	require.Len(t, rest.Stakers, 1)
	assert.Nil(t, rest.Next)
	seen[rest.Stakers[0].Address] = true
	assert.Len(t, seen, 3)

	assert.Equal(t, http.StatusBadRequest, httpGet(t, ts.URL+"/validators/1/stakers?limit=3", nil))
}

func TestGetRewardsAndCheckpoints(t *testing.T) {
	chain, ts := initServer(t)
	chain.MustMint(2, testexec.Stake(staker1, 1, 100))
	chain.MustMint(10)

	var list []*validators.Reward
	assert.Equal(t, http.StatusOK, httpGet(t, ts.URL+"/validators/1/rewards", &list))
	require.Len(t, list, 2)
	for _, r := range list {
		assert.Positive(t, (*big.Int)(r.CumulativeIndex).Sign())
		assert.Positive(t, (*big.Int)(r.AccruedCommission).Sign())
		assert.Nil(t, r.PendingClaim)
	}

	var cps []*validators.Checkpoint
	url := ts.URL + "/validators/1/checkpoints/reward-rate/" + plume.NativeToken.String()
	assert.Equal(t, http.StatusOK, httpGet(t, url, &cps))
	assert.NotEmpty(t, cps)

	assert.Equal(t, http.StatusBadRequest, httpGet(t, ts.URL+"/validators/1/checkpoints/nope/"+plume.NativeToken.String(), nil))
}

func TestGetVotes(t *testing.T) {
	chain, ts := initServer(t)
	chain.MustMint(2, testexec.Command("voteToSlash", genesis.DevAccountOf("validator-2"), map[string]any{
		"validatorId": 1,
		"expiration":  chain.Now() + 100,
	}))

	var votes []*validators.Vote
	assert.Equal(t, http.StatusOK, httpGet(t, ts.URL+"/validators/1/votes", &votes))
	require.Len(t, votes, 1)
	assert.Equal(t, plume.ValidatorID(2), votes[0].Voter)
}
