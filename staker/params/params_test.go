// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plumestake/stakerd/lvldb"
	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
	"github.com/plumestake/stakerd/staker/reverts"
	"github.com/plumestake/stakerd/state"
)

func TestParams(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	p := New(solidity.NewContext(plume.Address{}, state.New(db), 0, nil))

	minStake, err := p.MinStakeAmount()
	assert.NoError(t, err)
	assert.Equal(t, plume.InitialMinStakeAmount, minStake)

	cooldown, err := p.CooldownInterval()
	assert.NoError(t, err)
	assert.Equal(t, plume.InitialCooldownInterval, cooldown)

	require.NoError(t, p.Set(KeyCooldownInterval, big.NewInt(60)))
	cooldown, err = p.CooldownInterval()
	assert.NoError(t, err)
	assert.Equal(t, uint64(60), cooldown)

	require.NoError(t, p.Set(KeyMinStakeAmount, big.NewInt(5)))
	minStake, err = p.MinStakeAmount()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(5), minStake)

	assert.ErrorIs(t, p.Set(plume.BytesToBytes32([]byte("unknown")), big.NewInt(1)), reverts.ErrInvalidParam)
	assert.ErrorIs(t, p.Set(KeyMinStakeAmount, big.NewInt(-1)), reverts.ErrInvalidParam)

	// defaults are never mutated through returned values
	minStake.SetInt64(100)
	def, _ := New(solidity.NewContext(plume.Address{}, state.New(db), 0, nil)).MinStakeAmount()
	assert.Equal(t, plume.InitialMinStakeAmount, def)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		key   plume.Bytes32
		value *big.Int
		want  error
	}{
		{"zero cooldown", KeyCooldownInterval, big.NewInt(0), reverts.ErrInvalidParam},
		{"zero vote duration", KeyMaxSlashVoteDuration, big.NewInt(0), reverts.ErrInvalidParam},
		{"cooldown overflow", KeyCooldownInterval, new(big.Int).Lsh(big.NewInt(1), 64), reverts.ErrInvalidParam},
		{"nil value", KeyMinStakeAmount, nil, reverts.ErrInvalidParam},
		{"commission above cap", KeyMaxValidatorCommission, new(big.Int).Add(plume.MaxCommission(), big.NewInt(1)), reverts.ErrInvalidMaxCommissionRate},
		{"commission at cap", KeyMaxValidatorCommission, plume.MaxCommission(), nil},
		{"zero timelock", KeyCommissionClaimTimelock, big.NewInt(0), nil},
		{"zero min stake", KeyMinStakeAmount, big.NewInt(0), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.key, tt.value)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}
