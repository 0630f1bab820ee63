// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plumestake/stakerd/bank"
	"github.com/plumestake/stakerd/lvldb"
	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
	"github.com/plumestake/stakerd/staker/checkpoints"
	"github.com/plumestake/stakerd/staker/globalstats"
	"github.com/plumestake/stakerd/staker/params"
	"github.com/plumestake/stakerd/staker/reverts"
	"github.com/plumestake/stakerd/staker/validation"
	"github.com/plumestake/stakerd/state"
)

var (
	stakerAddr = plume.BytesToAddress([]byte("staker"))
	token      = plume.BytesToAddress([]byte("reward"))
	admin      = plume.BytesToAddress([]byte("admin"))
	withdraw   = plume.BytesToAddress([]byte("withdraw"))
	alice      = plume.BytesToAddress([]byte("alice"))
	bob        = plume.BytesToAddress([]byte("bob"))
)

// rate of 1e15 per second, so 100 seconds pay 1e17 per validator.
var rate = big.NewInt(1e15)

type fixture struct {
	t  *testing.T
	st *state.State

	rewards     *Service
	validations *validation.Service
	checkpoints *checkpoints.Service
	stats       *globalstats.Service
	bank        *bank.Bank
}

func newFixture(t *testing.T) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{t: t, st: state.New(db)}
	f.at(0)
	require.NoError(t, f.bank.Mint(token, plume.TreasuryAccount, units(1000)))
	return f
}

// at rebinds every service to a clock reading of now.
func (f *fixture) at(now uint64) *fixture {
	sctx := solidity.NewContext(stakerAddr, f.st, now, nil)
	p := params.New(sctx)
	f.bank = bank.New(solidity.NewContext(plume.Address{}, f.st, now, nil))
	f.validations = validation.New(sctx, p)
	f.checkpoints = checkpoints.New(sctx)
	f.stats = globalstats.New(sctx)
	f.rewards = New(sctx, p, f.checkpoints, f.validations, f.stats, bank.NewTreasury(f.bank, plume.TreasuryAccount))
	return f
}

func (f *fixture) stake(user plume.Address, id plume.ValidatorID, amount *big.Int) {
	require.NoError(f.t, f.rewards.UpdateRewardsForValidator(user, id))
	require.NoError(f.t, f.validations.IncreaseStake(user, id, amount))
	require.NoError(f.t, f.validations.AddStakerToValidator(user, id))
}

func (f *fixture) pending(user plume.Address) *big.Int {
	rev := f.st.NewCheckpoint()
	defer f.st.RevertTo(rev)
	amount, err := f.rewards.PendingReward(user, token)
	require.NoError(f.t, err)
	return amount
}

func units(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), plume.Precision)
}

func percent(p int64) *big.Int {
	return new(big.Int).Div(new(big.Int).Mul(plume.Precision, big.NewInt(p)), big.NewInt(100))
}

func e(mantissa int64, exp int) *big.Int {
	return new(big.Int).Mul(big.NewInt(mantissa), new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil))
}

// setup registers validator 1 at 10% commission and the reward token, then alice stakes
// 100 units at t=100.
func setup(t *testing.T) *fixture {
	f := newFixture(t)
	f.at(10)
	_, err := f.validations.Add(1, percent(10), admin, withdraw, nil)
	require.NoError(t, err)
	require.NoError(t, f.rewards.InitValidator(1))
	require.NoError(t, f.rewards.AddRewardToken(token, rate, e(1, 16)))

	f.at(100).stake(alice, 1, units(100))
	return f
}

func TestAccrual(t *testing.T) {
	f := setup(t)

	vr, err := f.rewards.GetValidatorReward(1, token)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), vr.LastUpdate)
	assert.Zero(t, vr.CumulativeIndex.Sign(), "nothing accrues without stake")

	f.at(200)
	// 1e17 earned, 10% commission
	assert.Equal(t, e(9, 16), f.pending(alice))

	vr, err = f.rewards.UpdateRewardPerToken(1, token)
	require.NoError(t, err)
	assert.Equal(t, e(1, 15), vr.CumulativeIndex)
	assert.Equal(t, uint64(200), vr.LastUpdate)
}

func TestAccrual_ProportionalShares(t *testing.T) {
	f := setup(t)
	f.at(100).stake(bob, 1, units(300))

	f.at(200)
	assert.Equal(t, e(225, 14), f.pending(alice))
	assert.Equal(t, e(675, 14), f.pending(bob))
}

func TestCommissionCheckpoint(t *testing.T) {
	f := setup(t)

	f.at(200)
	require.NoError(t, f.validations.SetCommission(1, percent(20)))
	require.NoError(t, f.rewards.SetCommissionCheckpoint(1, percent(20)))

	count, err := f.checkpoints.Count(checkpoints.KindCommission, 1, token)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	// alice never settled since t=100: the first 100s pay 10%, the next 100s pay 20%
	f.at(300)
	require.NoError(t, f.rewards.UpdateRewardsForValidator(alice, 1))
	ur, err := f.rewards.GetUserReward(alice, 1, token)
	require.NoError(t, err)
	assert.Equal(t, e(17, 16), ur.Claimable)
	assert.Equal(t, count, ur.CommissionCursor)
	assert.Equal(t, uint64(300), ur.LastSettlement)

	vr, err := f.rewards.GetValidatorReward(1, token)
	require.NoError(t, err)
	assert.Equal(t, e(3, 16), vr.AccruedCommission)

	claimable, err := f.stats.TotalClaimable(token)
	require.NoError(t, err)
	assert.Equal(t, e(17, 16), claimable)
}

func TestSetRewardRate(t *testing.T) {
	f := setup(t)

	f.at(200)
	require.NoError(t, f.rewards.SetRewardRate(token, new(big.Int).Mul(rate, big.NewInt(2))))
	assert.ErrorIs(t, f.rewards.SetRewardRate(token, e(2, 16)), reverts.ErrRewardRateExceedsMax)
	assert.ErrorIs(t, f.rewards.SetMaxRewardRate(token, e(1, 15)), reverts.ErrRewardRateExceedsMax)

	count, err := f.checkpoints.Count(checkpoints.KindRewardRate, 1, token)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	latest, err := f.checkpoints.Latest(checkpoints.KindRewardRate, 1, token)
	require.NoError(t, err)
	assert.Equal(t, e(1, 15), latest.CumulativeIndex)
	assert.Equal(t, uint64(200), latest.Timestamp)

	// 1e17 at the old rate and 2e17 at the new one, less 10%
	f.at(300)
	assert.Equal(t, e(27, 16), f.pending(alice))
}

func TestRemoveRewardToken(t *testing.T) {
	f := setup(t)

	f.at(200)
	require.NoError(t, f.rewards.RemoveRewardToken(token))
	assert.ErrorIs(t, f.rewards.RemoveRewardToken(token), reverts.ErrTokenDoesNotExist)

	tk, err := f.rewards.GetToken(token)
	require.NoError(t, err)
	assert.False(t, tk.Active)
	assert.Zero(t, tk.RewardRate.Sign())

	f.at(1000)
	assert.Equal(t, e(9, 16), f.pending(alice), "accrued rewards survive removal")

	tokens, err := f.rewards.Tokens()
	require.NoError(t, err)
	assert.Equal(t, []plume.Address{token}, tokens)

	// reactivation resumes accrual from now
	require.NoError(t, f.rewards.AddRewardToken(token, rate, e(1, 16)))
	assert.ErrorIs(t, f.rewards.AddRewardToken(token, rate, e(1, 16)), reverts.ErrTokenAlreadyExists)
	f.at(1100)
	assert.Equal(t, e(18, 16), f.pending(alice))
}

func TestInactiveValidator(t *testing.T) {
	f := setup(t)

	f.at(200)
	require.NoError(t, f.rewards.AccrueValidator(1))
	require.NoError(t, f.validations.SetStatus(1, false))

	f.at(500)
	assert.Equal(t, e(9, 16), f.pending(alice))

	vr, err := f.rewards.UpdateRewardPerToken(1, token)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), vr.LastUpdate, "update time advances while inactive")
	assert.Equal(t, e(1, 15), vr.CumulativeIndex)
}

func TestClaim(t *testing.T) {
	f := setup(t)

	_, err := f.rewards.Claim(alice, token)
	assert.ErrorIs(t, err, reverts.ErrNoRewardsToClaim)
	_, err = f.rewards.Claim(alice, plume.BytesToAddress([]byte("unknown")))
	assert.ErrorIs(t, err, reverts.ErrTokenDoesNotExist)

	f.at(200)
	amount, err := f.rewards.Claim(alice, token)
	require.NoError(t, err)
	assert.Equal(t, e(9, 16), amount)

	balance, err := f.bank.Balance(token, alice)
	require.NoError(t, err)
	assert.Equal(t, e(9, 16), balance)

	claimable, err := f.stats.TotalClaimable(token)
	require.NoError(t, err)
	assert.Zero(t, claimable.Sign())

	has, err := f.rewards.HasPendingRewards(alice, 1)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestClaimAll(t *testing.T) {
	f := setup(t)

	other := plume.BytesToAddress([]byte("other"))
	require.NoError(t, f.bank.Mint(other, plume.TreasuryAccount, units(1)))
	f.at(100)
	require.NoError(t, f.rewards.AddRewardToken(other, rate, rate))

	f.at(200)
	claimed, err := f.rewards.ClaimAll(alice)
	require.NoError(t, err)
	assert.Equal(t, []Claimed{
		{Token: token, Amount: e(9, 16)},
		{Token: other, Amount: e(9, 16)},
	}, claimed)
}

func TestClaim_TreasuryShort(t *testing.T) {
	f := setup(t)

	poor := plume.BytesToAddress([]byte("poor"))
	f.at(100)
	require.NoError(t, f.rewards.AddRewardToken(poor, rate, rate))

	f.at(200)
	_, err := f.rewards.ClaimFromValidator(alice, poor, 1)
	assert.ErrorIs(t, err, bank.ErrTransferFailed)
}

func TestCommissionClaim(t *testing.T) {
	f := setup(t)

	f.at(200)
	_, err := f.rewards.RequestCommissionClaim(1, token)
	assert.ErrorIs(t, err, reverts.ErrNoRewardsToClaim, "commission is taken at settlement")

	require.NoError(t, f.rewards.UpdateRewardsForValidator(alice, 1))
	claim, err := f.rewards.RequestCommissionClaim(1, token)
	require.NoError(t, err)
	assert.Equal(t, e(1, 16), claim.Amount)
	assert.Equal(t, 200+plume.InitialCommissionClaimTimelock, claim.ReadyAt)

	_, err = f.rewards.RequestCommissionClaim(1, token)
	assert.ErrorIs(t, err, reverts.ErrPendingClaimExists)

	_, err = f.rewards.FinalizeCommissionClaim(1, token)
	assert.ErrorIs(t, err, reverts.ErrClaimNotReady)

	f.at(claim.ReadyAt)
	paid, err := f.rewards.FinalizeCommissionClaim(1, token)
	require.NoError(t, err)
	assert.Equal(t, e(1, 16), paid)

	balance, err := f.bank.Balance(token, withdraw)
	require.NoError(t, err)
	assert.Equal(t, e(1, 16), balance)

	_, err = f.rewards.FinalizeCommissionClaim(1, token)
	assert.ErrorIs(t, err, reverts.ErrNoPendingClaim)
}

func TestMath(t *testing.T) {
	got, err := mulDiv(big.NewInt(7), big.NewInt(3), big.NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), got)

	_, err = toU256(big.NewInt(-1))
	assert.ErrorIs(t, err, reverts.ErrArithmeticOverflow)

	huge := new(big.Int).Lsh(big.NewInt(1), 255)
	_, err = mulDiv(huge, big.NewInt(4), big.NewInt(1))
	assert.ErrorIs(t, err, reverts.ErrArithmeticOverflow)

	delta, err := indexDelta(100, rate, units(100))
	require.NoError(t, err)
	assert.Equal(t, e(1, 15), delta)

	fee, err := applyRate(e(1, 17), percent(10))
	require.NoError(t, err)
	assert.Equal(t, e(1, 16), fee)
}
