// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plumestake/stakerd/lvldb"
	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
	"github.com/plumestake/stakerd/state"
)

var (
	rewardToken = plume.BytesToAddress([]byte("reward-token"))
	alice       = plume.BytesToAddress([]byte("alice"))
	bob         = plume.BytesToAddress([]byte("bob"))
	carol       = plume.BytesToAddress([]byte("carol"))
)

// ToWei converts whole units to their 1e18 base amount.
func ToWei(units int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(units), plume.Precision)
}

// Percent returns p% of Precision.
func Percent(p int64) *big.Int {
	return new(big.Int).Div(new(big.Int).Mul(plume.Precision, big.NewInt(p)), big.NewInt(100))
}

func adminOf(id plume.ValidatorID) plume.Address {
	return plume.BytesToAddress(append([]byte("admin-"), id.Bytes()...))
}

func withdrawOf(id plume.ValidatorID) plume.Address {
	return plume.BytesToAddress(append([]byte("withdraw-"), id.Bytes()...))
}

// StakerTest drives a staker over one state, moving the block time forward.
type StakerTest struct {
	*Staker
	t      *testing.T
	st     *state.State
	now    uint64
	events []*solidity.Event
}

func newTest(t *testing.T) *StakerTest {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ts := &StakerTest{t: t, st: state.New(db)}
	return ts.At(1000)
}

// At moves the block time to now.
func (ts *StakerTest) At(now uint64) *StakerTest {
	ts.now = now
	ts.Staker = New(ts.st, now, func(ev *solidity.Event) {
		ts.events = append(ts.events, ev)
	})
	return ts
}

// Wait moves the block time forward by seconds.
func (ts *StakerTest) Wait(seconds uint64) *StakerTest {
	return ts.At(ts.now + seconds)
}

// Fund mints amount of token to account.
func (ts *StakerTest) Fund(token, account plume.Address, amount *big.Int) *StakerTest {
	require.NoError(ts.t, ts.Bank().Mint(token, account, amount))
	return ts
}

// AddValidator registers validator id with commission, funded staking accounts and an unbounded capacity.
func (ts *StakerTest) AddValidator(id plume.ValidatorID, commission *big.Int) *StakerTest {
	require.NoError(ts.t, ts.Staker.AddValidator(id, commission, adminOf(id), withdrawOf(id), nil))
	return ts
}

// AddRewardToken registers token with rate and funds the treasury.
func (ts *StakerTest) AddRewardToken(token plume.Address, rate *big.Int) *StakerTest {
	require.NoError(ts.t, ts.Staker.AddRewardToken(token, rate, new(big.Int).Mul(rate, big.NewInt(10))))
	return ts.Fund(token, plume.TreasuryAccount, ToWei(1_000_000_000))
}

// Stake funds user and stakes amount on validator id.
func (ts *StakerTest) Stake(user plume.Address, id plume.ValidatorID, amount *big.Int) *StakerTest {
	ts.Fund(plume.NativeToken, user, amount)
	require.NoError(ts.t, ts.Staker.Stake(user, id, amount))
	return ts
}

func (ts *StakerTest) balance(token, account plume.Address) *big.Int {
	b, err := ts.Bank().Balance(token, account)
	require.NoError(ts.t, err)
	return b
}

// assertDelegated checks the validator total against the stakes of users.
func (ts *StakerTest) assertDelegated(id plume.ValidatorID, users ...plume.Address) {
	v, err := ts.GetValidator(id)
	require.NoError(ts.t, err)
	sum := new(big.Int)
	for _, u := range users {
		staked, err := ts.UserStake(u, id)
		require.NoError(ts.t, err)
		sum.Add(sum, staked)
	}
	require.Equal(ts.t, sum.String(), v.TotalDelegated.String(), "validator %v delegated", id)
}

func errorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
