// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/plumestake/stakerd/eventdb"
	"github.com/plumestake/stakerd/plume"
)

type Range struct {
	Unit eventdb.RangeType `json:"unit"`
	From *uint64           `json:"from,omitempty"`
	To   *uint64           `json:"to,omitempty"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type EventCriteria struct {
	Name      *string            `json:"name,omitempty"`
	Validator *plume.ValidatorID `json:"validator,omitempty"`
	Account   *plume.Address     `json:"account,omitempty"`
	Token     *plume.Address     `json:"token,omitempty"`
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	Range       *Range           `json:"range"`
	Options     *Options         `json:"options"`
	Order       eventdb.Order    `json:"order"`
}

type LogMeta struct {
	BlockID      plume.Bytes32 `json:"blockID"`
	BlockNumber  uint64        `json:"blockNumber"`
	BlockTime    uint64        `json:"blockTime"`
	CommandIndex uint32        `json:"commandIndex"`
	LogIndex     uint32        `json:"logIndex"`
}

type FilteredEvent struct {
	Name      string                `json:"name"`
	Validator plume.ValidatorID     `json:"validator,omitempty"`
	Account   plume.Address         `json:"account"`
	Token     plume.Address         `json:"token"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
	Meta      LogMeta               `json:"meta"`
}

func convertEvent(e *eventdb.Event) *FilteredEvent {
	return &FilteredEvent{
		Name:      e.Name,
		Validator: e.Validator,
		Account:   e.Account,
		Token:     e.Token,
		Amount:    (*math.HexOrDecimal256)(e.Amount),
		Meta: LogMeta{
			BlockID:      e.BlockID,
			BlockNumber:  e.BlockNumber,
			BlockTime:    e.BlockTime,
			CommandIndex: e.CommandIndex,
			LogIndex:     e.Index,
		},
	}
}

func convertFilter(f *EventFilter) *eventdb.EventFilter {
	filter := &eventdb.EventFilter{Order: f.Order}
	if f.Range != nil {
		r := &eventdb.Range{Unit: f.Range.Unit}
		if f.Range.From != nil {
			r.From = *f.Range.From
		}
		if f.Range.To != nil {
			r.To = *f.Range.To
		}
		filter.Range = r
	}
	if f.Options != nil {
		filter.Options = &eventdb.Options{Offset: f.Options.Offset, Limit: f.Options.Limit}
	}
	for _, c := range f.CriteriaSet {
		filter.CriteriaSet = append(filter.CriteriaSet, &eventdb.Criteria{
			Name:      c.Name,
			Validator: c.Validator,
			Account:   c.Account,
			Token:     c.Token,
		})
	}
	return filter
}
