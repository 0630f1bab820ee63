// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package bank keeps token balances in state and moves them between accounts.
package bank

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/plumestake/stakerd/log"
	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
)

var (
	logger = log.WithContext("pkg", "bank")

	// Address owns the balances storage.
	Address = plume.BytesToAddress([]byte("bank"))

	// ErrTransferFailed is returned when the payer cannot cover a transfer.
	ErrTransferFailed = errors.New("TransferFailed")

	slotBalances = plume.BytesToBytes32([]byte("balances"))
	slotSupply   = plume.BytesToBytes32([]byte("supply"))
)

// Bank holds the balance of every (token, account) pair.
type Bank struct {
	balances *solidity.Mapping[solidity.CompositeKey, *big.Int]
	supply   *solidity.Mapping[plume.Address, *big.Int]
}

func New(sctx *solidity.Context) *Bank {
	sctx = sctx.WithAddress(Address)
	return &Bank{
		balances: solidity.NewMapping[solidity.CompositeKey, *big.Int](sctx, slotBalances),
		supply:   solidity.NewMapping[plume.Address, *big.Int](sctx, slotSupply),
	}
}

// Balance returns the balance of account in token.
func (b *Bank) Balance(token, account plume.Address) (*big.Int, error) {
	return b.balances.Get(solidity.NewKey(token, account))
}

// Supply returns the amount of token minted so far, net of burns.
func (b *Bank) Supply(token plume.Address) (*big.Int, error) {
	return b.supply.Get(token)
}

// Mint credits account with new units of token.
func (b *Bank) Mint(token, account plume.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("negative amount")
	}
	balance, err := b.Balance(token, account)
	if err != nil {
		return err
	}
	supply, err := b.Supply(token)
	if err != nil {
		return err
	}
	if err := b.balances.Set(solidity.NewKey(token, account), balance.Add(balance, amount)); err != nil {
		return err
	}
	return b.supply.Set(token, supply.Add(supply, amount))
}

// Transfer moves amount of token between accounts. It fails with ErrTransferFailed
// if from does not hold enough, leaving both balances unchanged.
func (b *Bank) Transfer(token, from, to plume.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("negative amount")
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}
	fromBalance, err := b.Balance(token, from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		logger.Debug("transfer failed", "token", token, "from", from, "balance", fromBalance, "amount", amount)
		return errors.Wrapf(ErrTransferFailed, "%v holds %v, needs %v", from, fromBalance, amount)
	}
	toBalance, err := b.Balance(token, to)
	if err != nil {
		return err
	}
	if err := b.balances.Set(solidity.NewKey(token, from), fromBalance.Sub(fromBalance, amount)); err != nil {
		return err
	}
	return b.balances.Set(solidity.NewKey(token, to), toBalance.Add(toBalance, amount))
}

// Treasury is the reward fund, backed by the balances of an account.
type Treasury struct {
	bank    *Bank
	account plume.Address
}

func NewTreasury(bank *Bank, account plume.Address) *Treasury {
	return &Treasury{bank: bank, account: account}
}

// Balance returns the funds of token held by the treasury.
func (t *Treasury) Balance(token plume.Address) (*big.Int, error) {
	return t.bank.Balance(token, t.account)
}

// DistributeReward pays amount of token to recipient.
func (t *Treasury) DistributeReward(token plume.Address, amount *big.Int, recipient plume.Address) error {
	return t.bank.Transfer(token, t.account, recipient, amount)
}
