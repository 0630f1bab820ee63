// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package executor

import (
	"encoding/binary"
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/plumestake/stakerd/kv"
	"github.com/plumestake/stakerd/plume"
)

var (
	blockBucket   = kv.Bucket("b")
	receiptBucket = kv.Bucket("r")
	bestKey       = []byte("best-block")
)

// Header summarizes a sealed block.
type Header struct {
	Number       uint64
	ParentID     plume.Bytes32
	Timestamp    uint64
	CommandsRoot plume.Bytes32
	ReceiptsRoot plume.Bytes32
	StateChanges uint64
}

// ID returns the hash of the header.
func (h *Header) ID() plume.Bytes32 {
	return plume.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, h)
	})
}

// Block is a header and the commands it executed, in order.
type Block struct {
	Header   *Header
	Commands []*Command
}

func rootOf(val any) plume.Bytes32 {
	return plume.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, val)
	})
}

func numberKey(n uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], n)
	return k[:]
}

func saveBlock(w kv.Putter, blk *Block, receipts []*Receipt) error {
	data, err := rlp.EncodeToBytes(blk)
	if err != nil {
		return err
	}
	if err := blockBucket.NewPutter(w).Put(numberKey(blk.Header.Number), data); err != nil {
		return errors.Wrap(err, "save block")
	}
	if data, err = rlp.EncodeToBytes(receipts); err != nil {
		return err
	}
	if err := receiptBucket.NewPutter(w).Put(numberKey(blk.Header.Number), data); err != nil {
		return errors.Wrap(err, "save receipts")
	}
	return w.Put(bestKey, numberKey(blk.Header.Number))
}

func loadBlock(r kv.Getter, n uint64) (*Block, error) {
	data, err := blockBucket.NewGetter(r).Get(numberKey(n))
	if err != nil {
		return nil, err
	}
	var blk Block
	if err := rlp.DecodeBytes(data, &blk); err != nil {
		return nil, errors.Wrap(err, "decode block")
	}
	return &blk, nil
}

func loadReceipts(r kv.Getter, n uint64) ([]*Receipt, error) {
	data, err := receiptBucket.NewGetter(r).Get(numberKey(n))
	if err != nil {
		return nil, err
	}
	var receipts []*Receipt
	if err := rlp.DecodeBytes(data, &receipts); err != nil {
		return nil, errors.Wrap(err, "decode receipts")
	}
	return receipts, nil
}

// loadBest returns the newest sealed block, nil if none.
func loadBest(r kv.Getter) (*Block, error) {
	val, err := kv.GetOrNil(r, bestKey)
	if err != nil || val == nil {
		return nil, err
	}
	if len(val) != 8 {
		return nil, errors.Errorf("corrupted best block key: %x", val)
	}
	return loadBlock(r, binary.BigEndian.Uint64(val))
}
