// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/state"
)

// Event is a record emitted by a state changing operation.
type Event struct {
	Name      string
	Validator plume.ValidatorID
	Account   plume.Address
	Token     plume.Address
	Amount    *big.Int
}

// EmitFunc receives emitted events.
type EmitFunc func(ev *Event)

// Context is the storage handle shared by the services of one contract-like module.
type Context struct {
	address plume.Address
	state   *state.State
	now     uint64
	emit    EmitFunc
}

// NewContext creates a context for the storage owned by address, at block time now.
func NewContext(address plume.Address, state *state.State, now uint64, emit EmitFunc) *Context {
	return &Context{
		address: address,
		state:   state,
		now:     now,
		emit:    emit,
	}
}

// State returns the underlying state.
func (c *Context) State() *state.State {
	return c.state
}

// Address returns the owner of the storage.
func (c *Context) Address() plume.Address {
	return c.address
}

// Now returns the block timestamp, in seconds.
func (c *Context) Now() uint64 {
	return c.now
}

// Emit forwards an event to the sink, if any.
func (c *Context) Emit(ev *Event) {
	if c.emit != nil {
		c.emit(ev)
	}
}

// WithAddress returns a context sharing state and clock, owning the storage of another address.
func (c *Context) WithAddress(address plume.Address) *Context {
	return &Context{
		address: address,
		state:   c.state,
		now:     c.now,
		emit:    c.emit,
	}
}
