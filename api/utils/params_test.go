// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plumestake/stakerd/plume"
)

func TestParseValidatorID(t *testing.T) {
	id, err := ParseValidatorID("7")
	assert.NoError(t, err)
	assert.Equal(t, plume.ValidatorID(7), id)

	id, err = ParseValidatorID("0x10")
	assert.NoError(t, err)
	assert.Equal(t, plume.ValidatorID(16), id)

	_, err = ParseValidatorID("0")
	assert.Error(t, err)
	_, err = ParseValidatorID("65536")
	assert.Error(t, err)
	_, err = ParseValidatorID("x")
	assert.Error(t, err)
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("", true)
	assert.NoError(t, err)
	assert.True(t, addr.IsZero())

	_, err = ParseAddress("", false)
	assert.Error(t, err)

	addr, err = ParseAddress("0x0000000000000000000000000000000000000001", false)
	assert.NoError(t, err)
	assert.Equal(t, plume.BytesToAddress([]byte{1}), addr)
}

func TestParseBlockNumber(t *testing.T) {
	_, ok, err := ParseBlockNumber("best")
	assert.NoError(t, err)
	assert.False(t, ok)

	n, ok, err := ParseBlockNumber("12")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(12), n)

	_, _, err = ParseBlockNumber("-1")
	assert.Error(t, err)
}

func TestParseLimit(t *testing.T) {
	n, err := ParseLimit("", 1000)
	assert.NoError(t, err)
	assert.Equal(t, DefaultPageLimit, n)

	n, err = ParseLimit("", 10)
	assert.NoError(t, err)
	assert.Equal(t, 10, n)

	_, err = ParseLimit("11", 10)
	assert.Error(t, err)
	_, err = ParseLimit("0", 10)
	assert.Error(t, err)
}

func TestWrapHandlerFunc(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{nil, http.StatusOK},
		{BadRequest(errors.New("bad")), http.StatusBadRequest},
		{NotFound(errors.New("gone")), http.StatusNotFound},
		{HTTPError(errors.New("teapot"), http.StatusTeapot), http.StatusTeapot},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error { return tt.err })(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, tt.status, rec.Code)
	}
}
