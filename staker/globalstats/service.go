// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package globalstats

import (
	"math/big"

	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
)

var (
	slotTotalStaked       = plume.BytesToBytes32([]byte("total-staked"))
	slotTotalCooling      = plume.BytesToBytes32([]byte("total-cooling"))
	slotTotalWithdrawable = plume.BytesToBytes32([]byte("total-withdrawable"))
	slotTotalClaimable    = plume.BytesToBytes32([]byte("total-claimable"))
)

// Totals is a snapshot of the contract-wide principal totals.
type Totals struct {
	Staked       *big.Int
	Cooling      *big.Int
	Withdrawable *big.Int
}

// Service manages contract-wide staking totals.
// Principal moves between staked, cooling and withdrawable; claimable rewards are kept per token.
type Service struct {
	staked       *solidity.Uint256
	cooling      *solidity.Uint256
	withdrawable *solidity.Uint256
	claimable    *solidity.Mapping[plume.Address, *big.Int]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		staked:       solidity.NewUint256(sctx, slotTotalStaked),
		cooling:      solidity.NewUint256(sctx, slotTotalCooling),
		withdrawable: solidity.NewUint256(sctx, slotTotalWithdrawable),
		claimable:    solidity.NewMapping[plume.Address, *big.Int](sctx, slotTotalClaimable),
	}
}

// Totals returns the principal totals.
func (s *Service) Totals() (*Totals, error) {
	staked, err := s.staked.Get()
	if err != nil {
		return nil, err
	}
	cooling, err := s.cooling.Get()
	if err != nil {
		return nil, err
	}
	withdrawable, err := s.withdrawable.Get()
	if err != nil {
		return nil, err
	}
	return &Totals{Staked: staked, Cooling: cooling, Withdrawable: withdrawable}, nil
}

// AddStaked accounts for new principal entering the accrual pool.
func (s *Service) AddStaked(amount *big.Int) error {
	return s.staked.Add(amount)
}

// StartCooldown moves principal from staked to cooling.
func (s *Service) StartCooldown(amount *big.Int) error {
	if err := s.staked.Sub(amount); err != nil {
		return err
	}
	return s.cooling.Add(amount)
}

// Restake moves principal from cooling and withdrawable back to staked.
func (s *Service) Restake(fromCooling, fromWithdrawable *big.Int) error {
	if err := s.cooling.Sub(fromCooling); err != nil {
		return err
	}
	if err := s.withdrawable.Sub(fromWithdrawable); err != nil {
		return err
	}
	return s.staked.Add(new(big.Int).Add(fromCooling, fromWithdrawable))
}

// Mature moves principal from cooling to withdrawable.
func (s *Service) Mature(amount *big.Int) error {
	if err := s.cooling.Sub(amount); err != nil {
		return err
	}
	return s.withdrawable.Add(amount)
}

// Withdraw removes principal that left the pool.
func (s *Service) Withdraw(amount *big.Int) error {
	return s.withdrawable.Sub(amount)
}

// Forfeit removes slashed principal, clamping at zero since cleanups may run partially.
func (s *Service) Forfeit(staked, cooling *big.Int) error {
	if err := s.staked.SubFloor(staked); err != nil {
		return err
	}
	return s.cooling.SubFloor(cooling)
}

// TotalClaimable returns the rewards of token owed to users and not yet paid.
func (s *Service) TotalClaimable(token plume.Address) (*big.Int, error) {
	v, err := s.claimable.Get(token)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

func (s *Service) AddClaimable(token plume.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	total, err := s.TotalClaimable(token)
	if err != nil {
		return err
	}
	return s.claimable.Set(token, total.Add(total, amount))
}

// SubClaimable decrements the claimable total when rewards are paid, clamping at zero.
func (s *Service) SubClaimable(token plume.Address, amount *big.Int) error {
	total, err := s.TotalClaimable(token)
	if err != nil {
		return err
	}
	if total.Cmp(amount) <= 0 {
		total.SetInt64(0)
	} else {
		total.Sub(total, amount)
	}
	return s.claimable.Set(token, total)
}
