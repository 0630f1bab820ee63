// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/staker/reverts"
)

var precision = uint256.MustFromBig(plume.Precision)

func toU256(x *big.Int) (*uint256.Int, error) {
	v, overflow := uint256.FromBig(x)
	if overflow || x.Sign() < 0 {
		return nil, reverts.ErrArithmeticOverflow.Withf("%v out of range", x)
	}
	return v, nil
}

// mulDiv returns floor(x * y / d) with full 512 bit intermediate precision.
func mulDiv(x, y, d *big.Int) (*big.Int, error) {
	ux, err := toU256(x)
	if err != nil {
		return nil, err
	}
	uy, err := toU256(y)
	if err != nil {
		return nil, err
	}
	ud, err := toU256(d)
	if err != nil {
		return nil, err
	}
	z, overflow := new(uint256.Int).MulDivOverflow(ux, uy, ud)
	if overflow {
		return nil, reverts.ErrArithmeticOverflow.Withf("%v * %v / %v", x, y, d)
	}
	return z.ToBig(), nil
}

// indexDelta returns the growth of the cumulative reward index over elapsed seconds:
// elapsed * rate * 1e18 / totalStaked.
func indexDelta(elapsed uint64, rate, totalStaked *big.Int) (*big.Int, error) {
	urate, err := toU256(rate)
	if err != nil {
		return nil, err
	}
	reward, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(elapsed), urate)
	if overflow {
		return nil, reverts.ErrArithmeticOverflow.Withf("%d * %v", elapsed, rate)
	}
	return mulDiv(reward.ToBig(), precision.ToBig(), totalStaked)
}

// applyRate returns amount * rate / 1e18.
func applyRate(amount, rate *big.Int) (*big.Int, error) {
	return mulDiv(amount, rate, plume.Precision)
}
