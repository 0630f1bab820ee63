// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/plumestake/stakerd/api/blocks"
	"github.com/plumestake/stakerd/executor"
	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
)

// BlockMessage is pushed for every sealed block.
type BlockMessage struct {
	Number    uint64        `json:"number"`
	ID        plume.Bytes32 `json:"id"`
	ParentID  plume.Bytes32 `json:"parentID"`
	Timestamp uint64        `json:"timestamp"`
	Ops       []string      `json:"ops"`
	Reverted  int           `json:"reverted"`
}

func newBlockMessage(blk *executor.Block, receipts []*executor.Receipt) *BlockMessage {
	msg := &BlockMessage{
		Number:    blk.Header.Number,
		ID:        blk.Header.ID(),
		ParentID:  blk.Header.ParentID,
		Timestamp: blk.Header.Timestamp,
		Ops:       make([]string, 0, len(blk.Commands)),
	}
	for _, cmd := range blk.Commands {
		msg.Ops = append(msg.Ops, cmd.Op)
	}
	for _, r := range receipts {
		if r.Reverted {
			msg.Reverted++
		}
	}
	return msg
}

// EventMessage is pushed for every event matching the subscription.
type EventMessage struct {
	*blocks.JSONEvent
	BlockNumber  uint64        `json:"blockNumber"`
	BlockID      plume.Bytes32 `json:"blockID"`
	CommandIndex uint32        `json:"commandIndex"`
}

// EventFilter selects events by the fields set.
type EventFilter struct {
	Name      string
	Validator *plume.ValidatorID
	Account   *plume.Address
	Token     *plume.Address
}

func (f *EventFilter) Match(ev *solidity.Event) bool {
	if f.Name != "" && f.Name != ev.Name {
		return false
	}
	if f.Validator != nil && *f.Validator != ev.Validator {
		return false
	}
	if f.Account != nil && *f.Account != ev.Account {
		return false
	}
	if f.Token != nil && *f.Token != ev.Token {
		return false
	}
	return true
}
