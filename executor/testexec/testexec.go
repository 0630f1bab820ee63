// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testexec runs an in-memory executor over the dev network, for tests.
package testexec

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/plumestake/stakerd/eventdb"
	"github.com/plumestake/stakerd/executor"
	"github.com/plumestake/stakerd/genesis"
	"github.com/plumestake/stakerd/lvldb"
	"github.com/plumestake/stakerd/plume"
)

// LaunchTime is the genesis time of the test chain.
const LaunchTime = 1_700_000_000

// Chain is an executor whose clock only moves when told to.
type Chain struct {
	*executor.Executor
	Genesis *genesis.Genesis
	Events  *eventdb.EventDB

	t   *testing.T
	now atomic.Uint64
}

// New creates a chain at LaunchTime, closed when the test ends.
func New(t *testing.T) *Chain {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	events, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { events.Close() })

	c := &Chain{Genesis: genesis.NewDevnet(LaunchTime), Events: events, t: t}
	c.now.Store(LaunchTime)
	c.Executor = executor.New(store, events, executor.Options{
		BlockInterval: 10 * time.Millisecond,
		Clock:         c.now.Load,
	})
	_, err = c.Initialize(c.Genesis)
	require.NoError(t, err)
	return c
}

// Now returns the chain clock.
func (c *Chain) Now() uint64 {
	return c.now.Load()
}

// Mint seals a block of cmds, seconds after the previous clock reading.
func (c *Chain) Mint(seconds uint64, cmds ...*executor.Command) []*executor.Receipt {
	now := c.now.Add(seconds)
	_, receipts, err := c.ExecuteBlock(now, cmds)
	require.NoError(c.t, err)
	return receipts
}

// MustMint is Mint, failing the test on any reverted command.
func (c *Chain) MustMint(seconds uint64, cmds ...*executor.Command) []*executor.Receipt {
	receipts := c.Mint(seconds, cmds...)
	for _, r := range receipts {
		require.False(c.t, r.Reverted, "%s: %s", r.Op, r.Error)
	}
	return receipts
}

// Units converts whole units to their 1e18 base amount.
func Units(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), plume.Precision)
}

// Command builds a command, encoding args as JSON.
func Command(op string, sender plume.Address, args any) *executor.Command {
	cmd := &executor.Command{Op: op, Sender: sender}
	if args != nil {
		data, err := json.Marshal(args)
		if err != nil {
			panic(err)
		}
		cmd.Args = data
	}
	return cmd
}

// Stake builds a stake command of whole units.
func Stake(sender plume.Address, id plume.ValidatorID, amount int64) *executor.Command {
	return Command("stake", sender, map[string]any{
		"validatorId": id,
		"amount":      fmt.Sprint(Units(amount)),
	})
}
