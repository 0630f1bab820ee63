// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validation

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plumestake/stakerd/lvldb"
	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
	"github.com/plumestake/stakerd/staker/params"
	"github.com/plumestake/stakerd/staker/reverts"
	"github.com/plumestake/stakerd/state"
)

func newService(t *testing.T, now uint64) (*Service, *state.State) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	sctx := solidity.NewContext(plume.BytesToAddress([]byte("staker")), st, now, nil)
	return New(sctx, params.New(sctx)), st
}

func withClock(st *state.State, now uint64) *Service {
	sctx := solidity.NewContext(plume.BytesToAddress([]byte("staker")), st, now, nil)
	return New(sctx, params.New(sctx))
}

func addr(s string) plume.Address {
	return plume.BytesToAddress([]byte(s))
}

func percent(p int64) *big.Int {
	return new(big.Int).Div(new(big.Int).Mul(plume.Precision, big.NewInt(p)), big.NewInt(100))
}

func TestAdd(t *testing.T) {
	s, _ := newService(t, 10)

	v, err := s.Add(1, percent(5), addr("admin1"), addr("withdraw1"), nil)
	require.NoError(t, err)
	assert.True(t, v.Active)
	assert.Equal(t, uint64(10), v.AddedAt)

	got, err := s.GetExistingValidator(1)
	require.NoError(t, err)
	assert.Equal(t, percent(5), got.Commission)
	assert.Equal(t, 0, got.MaxCapacity.Sign())

	id, err := s.ValidatorByAdmin(addr("admin1"))
	assert.NoError(t, err)
	assert.Equal(t, plume.ValidatorID(1), id)

	tests := []struct {
		name string
		id   plume.ValidatorID
		com  *big.Int
		adm  plume.Address
		err  error
	}{
		{"zero id", 0, percent(5), addr("admin2"), reverts.ErrInvalidValidatorID},
		{"duplicate", 1, percent(5), addr("admin2"), reverts.ErrValidatorAlreadyExists},
		{"zero admin", 2, percent(5), plume.Address{}, reverts.ErrZeroAddress},
		{"commission too high", 2, percent(51), addr("admin2"), reverts.ErrCommissionTooHigh},
		{"admin assigned", 2, percent(5), addr("admin1"), reverts.ErrAdminAlreadyAssigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Add(tt.id, tt.com, tt.adm, addr("withdraw"), nil)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	_, err = s.GetExistingValidator(9)
	assert.ErrorIs(t, err, reverts.ErrValidatorDoesNotExist)

	ids, err := s.Validators()
	assert.NoError(t, err)
	assert.Equal(t, []plume.ValidatorID{1}, ids)
}

func TestStatusAndSlash(t *testing.T) {
	s, _ := newService(t, 10)
	_, err := s.Add(1, percent(5), addr("admin1"), addr("withdraw1"), nil)
	require.NoError(t, err)

	require.NoError(t, s.SetStatus(1, false))
	v, _ := s.GetValidator(1)
	assert.False(t, v.Accruing())

	require.NoError(t, s.MarkSlashed(1))
	v, _ = s.GetValidator(1)
	assert.True(t, v.Slashed)
	assert.Equal(t, uint64(10), v.SlashedAt)
	assert.Equal(t, uint64(10), v.AccrualEnd(50))

	assert.ErrorIs(t, s.SetStatus(1, true), reverts.ErrValidatorAlreadySlashed)
	assert.ErrorIs(t, s.MarkSlashed(1), reverts.ErrValidatorAlreadySlashed)
}

func TestSetAddresses(t *testing.T) {
	s, _ := newService(t, 10)
	_, err := s.Add(1, percent(5), addr("admin1"), addr("withdraw1"), nil)
	require.NoError(t, err)
	_, err = s.Add(2, percent(5), addr("admin2"), addr("withdraw2"), nil)
	require.NoError(t, err)

	assert.ErrorIs(t, s.SetAddresses(1, addr("admin2"), plume.Address{}), reverts.ErrAdminAlreadyAssigned)

	require.NoError(t, s.SetAddresses(1, addr("admin3"), addr("withdraw3")))
	v, _ := s.GetValidator(1)
	assert.Equal(t, addr("admin3"), v.AdminAddress)
	assert.Equal(t, addr("withdraw3"), v.WithdrawAddress)

	id, _ := s.ValidatorByAdmin(addr("admin1"))
	assert.True(t, id.IsZero())
	id, _ = s.ValidatorByAdmin(addr("admin3"))
	assert.Equal(t, plume.ValidatorID(1), id)
}

func TestStakeBookkeeping(t *testing.T) {
	s, _ := newService(t, 10)
	_, err := s.Add(1, percent(5), addr("admin1"), addr("withdraw1"), big.NewInt(500))
	require.NoError(t, err)

	alice, bob := addr("alice"), addr("bob")
	require.NoError(t, s.IncreaseStake(alice, 1, big.NewInt(100)))
	require.NoError(t, s.IncreaseStake(bob, 1, big.NewInt(300)))
	require.NoError(t, s.DecreaseStake(bob, 1, big.NewInt(50)))
	assert.ErrorIs(t, s.DecreaseStake(alice, 1, big.NewInt(101)), reverts.ErrInsufficientFunds)

	v, _ := s.GetValidator(1)
	assert.Equal(t, big.NewInt(350), v.TotalDelegated)
	assert.True(t, v.HasCapacityFor(big.NewInt(150)))
	assert.False(t, v.HasCapacityFor(big.NewInt(151)))

	a, _ := s.UserStake(alice, 1)
	b, _ := s.UserStake(bob, 1)
	assert.Equal(t, v.TotalDelegated, new(big.Int).Add(a, b))

	require.NoError(t, s.AdjustCooling(1, big.NewInt(20)))
	require.NoError(t, s.AdjustCooling(1, big.NewInt(-30)))
	v, _ = s.GetValidator(1)
	assert.Equal(t, 0, v.TotalCooling.Sign())
}

func TestStakerIndices(t *testing.T) {
	s, _ := newService(t, 10)
	for i := 1; i <= 2; i++ {
		_, err := s.Add(plume.ValidatorID(i), percent(5), addr("admin"+string(rune('0'+i))), addr("withdraw"), nil)
		require.NoError(t, err)
	}

	alice, bob := addr("alice"), addr("bob")
	require.NoError(t, s.AddStakerToValidator(alice, 1))
	require.NoError(t, s.AddStakerToValidator(alice, 1))
	require.NoError(t, s.AddStakerToValidator(alice, 2))
	require.NoError(t, s.AddStakerToValidator(bob, 1))

	n, _ := s.StakerCount(1)
	assert.Equal(t, uint64(2), n)

	ids, _ := s.UserValidators(alice)
	assert.Equal(t, []plume.ValidatorID{1, 2}, ids)

	page, next, err := s.Stakers(1, plume.Address{}, 1)
	assert.NoError(t, err)
	assert.Equal(t, []plume.Address{alice}, page)
	assert.Equal(t, bob, next)

	require.NoError(t, s.RemoveStaker(alice, 1))
	require.NoError(t, s.RemoveUserValidator(alice, 1))
	ok, _ := s.IsStaker(alice, 1)
	assert.False(t, ok)

	all, _, _ := s.AllStakers(plume.Address{}, 10)
	assert.Equal(t, []plume.Address{alice, bob}, all)

	require.NoError(t, s.RemoveUserValidator(alice, 2))
	all, _, _ = s.AllStakers(plume.Address{}, 10)
	assert.Equal(t, []plume.Address{bob}, all)
}

func TestSlashVotes(t *testing.T) {
	s, st := newService(t, 100)
	for i := 1; i <= 3; i++ {
		_, err := s.Add(plume.ValidatorID(i), percent(5), addr("admin"+string(rune('0'+i))), addr("withdraw"), nil)
		require.NoError(t, err)
	}

	assert.ErrorIs(t, s.Vote(1, 1, 200), reverts.ErrCannotVoteForSelf)
	assert.ErrorIs(t, s.Vote(1, 3, 100), reverts.ErrInvalidExpiration)
	assert.ErrorIs(t, s.Vote(1, 3, 100+plume.InitialMaxSlashVoteDuration+1), reverts.ErrSlashVoteDurationTooLong)

	assert.ErrorIs(t, s.CheckUnanimity(3), reverts.ErrUnanimityNotReached)

	require.NoError(t, s.Vote(1, 3, 150))
	assert.ErrorIs(t, s.CheckUnanimity(3), reverts.ErrUnanimityNotReached)

	require.NoError(t, s.Vote(2, 3, 200))
	assert.NoError(t, s.CheckUnanimity(3))

	// vote of validator 1 expired
	later := withClock(st, 150)
	assert.ErrorIs(t, later.CheckUnanimity(3), reverts.ErrUnanimityNotReached)

	// inactive validators are not required to vote
	require.NoError(t, later.SetStatus(1, false))
	assert.NoError(t, later.CheckUnanimity(3))
	assert.ErrorIs(t, later.Vote(1, 3, 180), reverts.ErrValidatorInactive)
}
