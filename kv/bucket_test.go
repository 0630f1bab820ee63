// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errNotFound = errors.New("not found")

type mem map[string]string

func (m mem) Get(k []byte) ([]byte, error) {
	if v, ok := m[string(k)]; ok {
		return []byte(v), nil
	}
	return nil, errNotFound
}

func (m mem) Has(k []byte) (bool, error) {
	_, ok := m[string(k)]
	return ok, nil
}

func (m mem) Put(k, v []byte) error {
	m[string(k)] = string(v)
	return nil
}

func (m mem) Delete(k []byte) error {
	delete(m, string(k))
	return nil
}

func (m mem) IsNotFound(err error) bool {
	return errors.Is(err, errNotFound)
}

func TestBucket_Getter(t *testing.T) {
	m := mem{"v1/a": "1", "v1/b": "2", "c": "3"}

	tests := []struct {
		b    Bucket
		key  string
		want string
		has  bool
	}{
		{Bucket(""), "c", "3", true},
		{Bucket("v1/"), "a", "1", true},
		{Bucket("v1/"), "b", "2", true},
		{Bucket("v1/"), "c", "", false},
		{Bucket("v1"), "/a", "1", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.b)+tt.key, func(t *testing.T) {
			g := tt.b.NewGetter(m)
			got, err := GetOrNil(g, []byte(tt.key))
			assert.NoError(t, err)
			assert.Equal(t, tt.want, string(got))

			has, err := g.Has([]byte(tt.key))
			assert.NoError(t, err)
			assert.Equal(t, tt.has, has)
		})
	}
}

func TestBucket_Putter(t *testing.T) {
	m := mem{}
	p := Bucket("v1/").NewPutter(m)

	assert.NoError(t, p.Put([]byte("k"), []byte("v")))
	assert.Equal(t, mem{"v1/k": "v"}, m)

	assert.NoError(t, p.Delete([]byte("k")))
	assert.Empty(t, m)
}

func TestGetOrNil_PropagatesErrors(t *testing.T) {
	failing := &struct {
		GetFunc
		HasFunc
		IsNotFoundFunc
	}{
		func([]byte) ([]byte, error) { return nil, errors.New("disk failure") },
		func([]byte) (bool, error) { return false, nil },
		func(error) bool { return false },
	}

	_, err := GetOrNil(failing, []byte("k"))
	assert.EqualError(t, err, "disk failure")
}
