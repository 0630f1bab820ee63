// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package checkpoints

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
)

var (
	// ErrInvalidRewardRateCheckpoint is raised when a checkpoint would be older than its predecessor.
	ErrInvalidRewardRateCheckpoint = errors.New("InvalidRewardRateCheckpoint")
	// ErrIndexOutOfRange is returned when reading past the last checkpoint.
	ErrIndexOutOfRange = errors.New("IndexOutOfRange")
)

// Kind separates the histories kept per (validator, token).
type Kind uint8

const (
	KindRewardRate Kind = iota + 1
	KindCommission
)

func (k Kind) String() string {
	switch k {
	case KindRewardRate:
		return "reward-rate"
	case KindCommission:
		return "commission"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k Kind) Bytes() []byte {
	return []byte{byte(k)}
}

// Checkpoint records a rate that took effect at Timestamp, together with the
// cumulative reward index of the validator at that moment.
type Checkpoint struct {
	Timestamp       uint64
	Rate            *big.Int
	CumulativeIndex *big.Int
}

var (
	slotCheckpoints = plume.BytesToBytes32([]byte("checkpoints"))
	slotCounts      = plume.BytesToBytes32([]byte("checkpoint-counts"))
)

// Service is the append-only store of rate checkpoints.
type Service struct {
	checkpoints *solidity.Mapping[solidity.CompositeKey, *Checkpoint]
	counts      *solidity.Mapping[solidity.CompositeKey, uint64]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		checkpoints: solidity.NewMapping[solidity.CompositeKey, *Checkpoint](sctx, slotCheckpoints),
		counts:      solidity.NewMapping[solidity.CompositeKey, uint64](sctx, slotCounts),
	}
}

func historyKey(kind Kind, validatorID plume.ValidatorID, token plume.Address) solidity.CompositeKey {
	return solidity.NewKey(kind, validatorID, token)
}

// Count returns the number of checkpoints of the history.
func (s *Service) Count(kind Kind, validatorID plume.ValidatorID, token plume.Address) (uint64, error) {
	return s.counts.Get(historyKey(kind, validatorID, token))
}

// Get returns the checkpoint at index.
func (s *Service) Get(kind Kind, validatorID plume.ValidatorID, token plume.Address, index uint64) (*Checkpoint, error) {
	count, err := s.Count(kind, validatorID, token)
	if err != nil {
		return nil, err
	}
	if index >= count {
		return nil, ErrIndexOutOfRange
	}
	return s.get(kind, validatorID, token, index)
}

func (s *Service) get(kind Kind, validatorID plume.ValidatorID, token plume.Address, index uint64) (*Checkpoint, error) {
	cp, err := s.checkpoints.Get(solidity.NewKey(historyKey(kind, validatorID, token), solidity.Uint64Key(index)))
	if err != nil {
		return nil, err
	}
	if cp.Rate == nil {
		cp.Rate = new(big.Int)
	}
	if cp.CumulativeIndex == nil {
		cp.CumulativeIndex = new(big.Int)
	}
	return cp, nil
}

// Latest returns the last checkpoint, or nil if the history is empty.
func (s *Service) Latest(kind Kind, validatorID plume.ValidatorID, token plume.Address) (*Checkpoint, error) {
	count, err := s.Count(kind, validatorID, token)
	if err != nil || count == 0 {
		return nil, err
	}
	return s.get(kind, validatorID, token, count-1)
}

// Append records a new checkpoint at time now. The caller computes cumulativeIndex
// as of now, using the rate in effect before this checkpoint.
// A checkpoint at the same time as the last one replaces it. A checkpoint older than
// the last one is a sequencing bug and panics.
func (s *Service) Append(
	kind Kind,
	validatorID plume.ValidatorID,
	token plume.Address,
	rate *big.Int,
	cumulativeIndex *big.Int,
	now uint64,
) (uint64, error) {
	key := historyKey(kind, validatorID, token)
	count, err := s.counts.Get(key)
	if err != nil {
		return 0, err
	}

	index := count
	if count > 0 {
		last, err := s.get(kind, validatorID, token, count-1)
		if err != nil {
			return 0, err
		}
		if now < last.Timestamp || cumulativeIndex.Cmp(last.CumulativeIndex) < 0 {
			panic(fmt.Errorf("%w: %v validator %v token %v at %d, last at %d",
				ErrInvalidRewardRateCheckpoint, kind, validatorID, token, now, last.Timestamp))
		}
		if now == last.Timestamp {
			index = count - 1
		}
	}

	cp := &Checkpoint{
		Timestamp:       now,
		Rate:            new(big.Int).Set(rate),
		CumulativeIndex: new(big.Int).Set(cumulativeIndex),
	}
	if err := s.checkpoints.Set(solidity.NewKey(key, solidity.Uint64Key(index)), cp); err != nil {
		return 0, err
	}
	if index == count {
		if err := s.counts.Set(key, count+1); err != nil {
			return 0, err
		}
	}
	return index, nil
}

// Find returns the index of the last checkpoint whose cumulative index is not greater than
// cumulativeIndex, and false if there is none.
func (s *Service) Find(
	kind Kind,
	validatorID plume.ValidatorID,
	token plume.Address,
	cumulativeIndex *big.Int,
) (uint64, bool, error) {
	count, err := s.Count(kind, validatorID, token)
	if err != nil {
		return 0, false, err
	}
	lo, hi := uint64(0), count
	for lo < hi {
		mid := lo + (hi-lo)/2
		cp, err := s.get(kind, validatorID, token, mid)
		if err != nil {
			return 0, false, err
		}
		if cp.CumulativeIndex.Cmp(cumulativeIndex) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return 0, false, nil
	}
	return lo - 1, true, nil
}
