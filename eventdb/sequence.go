// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import "math"

// sequence orders events by block number, then by position in block.
type sequence int64

const (
	indexBits = 24
	maxIndex  = 1<<indexBits - 1
	maxBlock  = math.MaxInt64 >> indexBits
)

func newSequence(blockNum uint64, index uint32) sequence {
	if index > maxIndex {
		panic("index too large")
	}
	if blockNum > maxBlock {
		panic("block number too large")
	}
	return sequence(blockNum)<<indexBits | sequence(index)
}

func (s sequence) BlockNumber() uint64 {
	return uint64(s >> indexBits)
}

func (s sequence) Index() uint32 {
	return uint32(s & maxIndex)
}
