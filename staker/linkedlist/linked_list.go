// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package linkedlist

import (
	"github.com/pkg/errors"

	"github.com/plumestake/stakerd/plume"
	"github.com/plumestake/stakerd/solidity"
)

// ErrCursorNotFound is returned when a page cursor is no longer in the list.
var ErrCursorNotFound = errors.New("cursor not found")

// Node is an entry of a linked list. The zero value terminates the list.
type Node interface {
	comparable
	Bytes() []byte
	IsZero() bool
}

// LinkedList is a doubly linked list kept in storage, used for indices that must be paged through.
type LinkedList[T Node] struct {
	head  *solidity.Raw[T]
	tail  *solidity.Raw[T]
	count *solidity.Raw[uint64]
	next  *solidity.Mapping[T, T]
	prev  *solidity.Mapping[T, T]
}

// New creates a linked list named name. scope separates lists sharing one name,
// e.g. the stakers of each validator.
func New[T Node](sctx *solidity.Context, name string, scope []byte) *LinkedList[T] {
	pos := func(field string) plume.Bytes32 {
		return plume.Blake2b([]byte(name), scope, []byte(field))
	}
	return &LinkedList[T]{
		head:  solidity.NewRaw[T](sctx, pos("head")),
		tail:  solidity.NewRaw[T](sctx, pos("tail")),
		count: solidity.NewRaw[uint64](sctx, pos("count")),
		next:  solidity.NewMapping[T, T](sctx, pos("next")),
		prev:  solidity.NewMapping[T, T](sctx, pos("prev")),
	}
}

// Contains reports whether the item is in the list.
func (l *LinkedList[T]) Contains(item T) (bool, error) {
	if item.IsZero() {
		return false, nil
	}
	prev, err := l.prev.Get(item)
	if err != nil {
		return false, err
	}
	if !prev.IsZero() {
		return true, nil
	}
	head, err := l.head.Get()
	if err != nil {
		return false, err
	}
	return head == item, nil
}

// Add appends the item to the end of the list. It returns false if the item is already present.
func (l *LinkedList[T]) Add(item T) (bool, error) {
	if item.IsZero() {
		return false, nil
	}
	exists, err := l.Contains(item)
	if err != nil || exists {
		return false, err
	}

	oldTail, err := l.tail.Get()
	if err != nil {
		return false, err
	}
	if oldTail.IsZero() {
		// the list is currently empty, set this entry to head & tail
		if err := l.head.Set(item); err != nil {
			return false, err
		}
	} else {
		if err := l.next.Set(oldTail, item); err != nil {
			return false, err
		}
		if err := l.prev.Set(item, oldTail); err != nil {
			return false, err
		}
	}
	if err := l.tail.Set(item); err != nil {
		return false, err
	}
	return true, l.addCount(1)
}

// Remove unlinks the item from anywhere in the list. It returns false if the item is not present.
func (l *LinkedList[T]) Remove(item T) (bool, error) {
	exists, err := l.Contains(item)
	if err != nil || !exists {
		return false, err
	}

	prev, err := l.prev.Get(item)
	if err != nil {
		return false, err
	}
	next, err := l.next.Get(item)
	if err != nil {
		return false, err
	}

	if prev.IsZero() {
		err = l.head.Set(next)
	} else {
		err = l.next.Set(prev, next)
	}
	if err != nil {
		return false, err
	}

	if next.IsZero() {
		err = l.tail.Set(prev)
	} else {
		err = l.prev.Set(next, prev)
	}
	if err != nil {
		return false, err
	}

	l.next.Delete(item)
	l.prev.Delete(item)
	return true, l.addCount(-1)
}

func (l *LinkedList[T]) addCount(delta int) error {
	n, err := l.count.Get()
	if err != nil {
		return err
	}
	if delta < 0 {
		n--
	} else {
		n++
	}
	return l.count.Set(n)
}

// Len returns the number of items in the list.
func (l *LinkedList[T]) Len() (uint64, error) {
	return l.count.Get()
}

// Head returns the first item, or the zero value if the list is empty.
func (l *LinkedList[T]) Head() (T, error) {
	return l.head.Get()
}

// Next returns the successor of the item, or the zero value at the end of the list.
func (l *LinkedList[T]) Next(item T) (T, error) {
	return l.next.Get(item)
}

// Iter traverses the list in insertion order until completion or error.
func (l *LinkedList[T]) Iter(callback func(T) error) error {
	ptr, err := l.head.Get()
	if err != nil {
		return err
	}
	for !ptr.IsZero() {
		// read the successor first, so the callback may remove ptr
		next, err := l.next.Get(ptr)
		if err != nil {
			return err
		}
		if err := callback(ptr); err != nil {
			return err
		}
		ptr = next
	}
	return nil
}

// Page returns up to limit items starting at cursor (the head when cursor is zero),
// and the cursor of the following page, zero when the list is exhausted.
// A cursor removed since it was handed out fails with ErrCursorNotFound.
func (l *LinkedList[T]) Page(cursor T, limit int) ([]T, T, error) {
	var zero T
	ptr := cursor
	if ptr.IsZero() {
		head, err := l.head.Get()
		if err != nil {
			return nil, zero, err
		}
		ptr = head
	} else {
		exists, err := l.Contains(ptr)
		if err != nil {
			return nil, zero, err
		}
		if !exists {
			return nil, zero, errors.Wrapf(ErrCursorNotFound, "%x", ptr.Bytes())
		}
	}

	items := make([]T, 0, limit)
	for !ptr.IsZero() && len(items) < limit {
		items = append(items, ptr)
		next, err := l.next.Get(ptr)
		if err != nil {
			return nil, zero, err
		}
		ptr = next
	}
	return items, ptr, nil
}
