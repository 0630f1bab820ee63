// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/plumestake/stakerd/plume"
)

// Address is a wrapper for storage and retrieval of an address. Similar to storing an address in a smart contract.
type Address struct {
	context *Context
	pos     plume.Bytes32
}

func NewAddress(context *Context, pos plume.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (plume.Address, error) {
	storage, err := a.context.state.GetStorage(a.context.address, a.pos)
	if err != nil {
		return plume.Address{}, err
	}
	return plume.BytesToAddress(storage.Bytes()), nil
}

func (a *Address) Set(addr plume.Address) {
	a.context.state.SetStorage(a.context.address, a.pos, plume.BytesToBytes32(addr.Bytes()))
}
