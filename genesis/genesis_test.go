// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plumestake/stakerd/acl"
	"github.com/plumestake/stakerd/lvldb"
	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
	"github.com/plumestake/stakerd/staker"
	"github.com/plumestake/stakerd/staker/reverts"
	"github.com/plumestake/stakerd/state"
)

const customGenesis = `
name: custom
timestamp: 1700000000
params:
  cooldownInterval: "3600"
  minStakeAmount: "0xde0b6b3a7640000"
roles:
  ADMIN_ROLE:
    - "0x0000000000000000000000000000000000000001"
balances:
  - token: "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"
    account: "0x0000000000000000000000000000000000000002"
    amount: "5000000000000000000"
rewardTokens:
  - token: "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"
    rate: "1000"
    maxRate: "10000"
validators:
  - id: 7
    commission: "100000000000000000"
    admin: "0x0000000000000000000000000000000000000003"
    withdraw: "0x0000000000000000000000000000000000000004"
    maxCapacity: "0"
`

func TestLoadAndBuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(customGenesis), 0o600))

	gen, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", gen.Name)
	assert.Equal(t, uint64(1700000000), gen.Timestamp)

	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	st := state.New(db)
	require.NoError(t, gen.Build(st))

	engine := staker.New(st, gen.Timestamp, nil)
	v, err := engine.GetValidator(7)
	require.NoError(t, err)
	assert.True(t, v.Active)
	assert.Equal(t, plume.MustParseAddress("0x0000000000000000000000000000000000000004"), v.WithdrawAddress)

	cooldown, err := engine.Params().CooldownInterval()
	require.NoError(t, err)
	assert.Equal(t, uint64(3600), cooldown)

	bal, err := engine.Bank().Balance(plume.NativeToken, plume.MustParseAddress("0x0000000000000000000000000000000000000002"))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5e18), bal)

	tokens, err := engine.RewardTokens()
	require.NoError(t, err)
	assert.Equal(t, []plume.Address{plume.NativeToken}, tokens)

	roles := acl.New(solidity.NewContext(plume.Address{}, st, gen.Timestamp, nil))
	ok, err := roles.HasRole(acl.AdminRole, plume.MustParseAddress("0x0000000000000000000000000000000000000001"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidate(t *testing.T) {
	gen := NewDevnet(0)
	assert.NoError(t, gen.Validate())

	gen.Params["noSuchParam"] = nil
	assert.ErrorContains(t, gen.Validate(), "unknown param")

	gen = NewDevnet(0)
	gen.Params["cooldownInterval"] = (*math.HexOrDecimal256)(big.NewInt(0))
	assert.ErrorIs(t, gen.Validate(), reverts.ErrInvalidParam)

	gen = NewDevnet(0)
	gen.Params["maxValidatorCommission"] = (*math.HexOrDecimal256)(big.NewInt(9e17))
	assert.ErrorIs(t, gen.Validate(), reverts.ErrInvalidMaxCommissionRate)

	gen = NewDevnet(0)
	gen.Roles["ROOT"] = nil
	assert.ErrorContains(t, gen.Validate(), "unknown role")

	gen = NewDevnet(0)
	gen.Validators = append(gen.Validators, gen.Validators[0])
	assert.ErrorContains(t, gen.Validate(), "duplicated id")
}

func TestDevnet(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	gen := NewDevnet(1000)
	assert.Equal(t, gen.ID(), NewDevnet(1000).ID())
	assert.NotEqual(t, gen.ID(), NewDevnet(1001).ID())

	st := state.New(db)
	require.NoError(t, gen.Build(st))

	engine := staker.New(st, gen.Timestamp, nil)
	ids, err := engine.Validators()
	require.NoError(t, err)
	assert.Equal(t, []plume.ValidatorID{1, 2, 3}, ids)

	id, err := engine.ValidatorByAdmin(DevAccountOf("validator-2"))
	require.NoError(t, err)
	assert.Equal(t, plume.ValidatorID(2), id)

	assert.Len(t, DevAccounts(), 8)
	assert.Panics(t, func() { DevAccountOf("nobody") })
}
