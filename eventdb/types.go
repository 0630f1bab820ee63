// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"math/big"

	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
)

// Event is an engine event as stored in the db.
type Event struct {
	BlockNumber  uint64
	BlockID      plume.Bytes32
	BlockTime    uint64
	CommandIndex uint32
	Index        uint32 // position in block
	Name         string
	Validator    plume.ValidatorID
	Account      plume.Address
	Token        plume.Address
	Amount       *big.Int
}

// NewEvent converts an emitted engine event to Event.
func NewEvent(blockNumber uint64, blockID plume.Bytes32, blockTime uint64, commandIndex, index uint32, ev *solidity.Event) *Event {
	amount := new(big.Int)
	if ev.Amount != nil {
		amount.Set(ev.Amount)
	}
	return &Event{
		BlockNumber:  blockNumber,
		BlockID:      blockID,
		BlockTime:    blockTime,
		CommandIndex: commandIndex,
		Index:        index,
		Name:         ev.Name,
		Validator:    ev.Validator,
		Account:      ev.Account,
		Token:        ev.Token,
		Amount:       amount,
	}
}

type RangeType string

const (
	Block RangeType = "block"
	Time  RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range bounds a query by block number or block time, both ends included.
// To less than From leaves the upper end open.
type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// Criteria matches events on every non-nil field.
type Criteria struct {
	Name      *string
	Validator *plume.ValidatorID
	Account   *plume.Address
	Token     *plume.Address
}

// EventFilter selects events matching any of CriteriaSet, within Range.
type EventFilter struct {
	CriteriaSet []*Criteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
