// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestFormatSlogValue(t *testing.T) {
	tests := []struct {
		name string
		val  slog.Value
		want string
	}{
		{"big", slog.AnyValue(big.NewInt(1234567)), "1,234,567"},
		{"nil big", slog.AnyValue((*big.Int)(nil)), "<nil>"},
		{"uint256", slog.AnyValue(uint256.NewInt(100000)), "100,000"},
		{"short int", slog.Int64Value(-1000), "-1000"},
		{"negative", slog.Int64Value(-123456), "-123,456"},
		{"quoted", slog.StringValue("a b"), `"a b"`},
		{"error", slog.AnyValue(errors.New("boom")), "boom"},
		{"bool", slog.BoolValue(true), "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSlogValue(tt.val))
		})
	}
}

func TestTerminalHandler(t *testing.T) {
	var buf bytes.Buffer
	var lvl slog.LevelVar
	lvl.Set(slog.LevelInfo)

	l := NewLogger(NewTerminalHandlerWithLevel(&buf, &lvl, false))
	l.Debug("hidden")
	l.Info("staked", "amount", big.NewInt(5000))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO ")
	assert.Contains(t, out, "staked")
	assert.Contains(t, out, "amount=5000")
}

func TestWithContextFollowsRoot(t *testing.T) {
	old := Root()
	defer SetDefault(old)

	pkgLogger := WithContext("pkg", "test")

	var buf bytes.Buffer
	var lvl slog.LevelVar
	SetDefault(NewLogger(NewHandler(&buf, &lvl, FormatLogfmt)))
	pkgLogger.Info("hello", "n", 1)

	assert.Contains(t, buf.String(), "pkg=test")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestFromLegacyLevel(t *testing.T) {
	assert.Equal(t, LevelCrit, FromLegacyLevel(0))
	assert.Equal(t, slog.LevelInfo, FromLegacyLevel(3))
	assert.Equal(t, LevelTrace, FromLegacyLevel(5))
	assert.Equal(t, LevelTrace-1, FromLegacyLevel(6))
}

func TestNewHandler(t *testing.T) {
	var lvl slog.LevelVar
	lvl.Set(slog.LevelWarn)

	var js bytes.Buffer
	l := NewLogger(NewHandler(&js, &lvl, FormatJSON))
	l.Info("hidden")
	l.Warn("treasury short", "amount", big.NewInt(7), "missing", (*big.Int)(nil))
	assert.NotContains(t, js.String(), "hidden")
	assert.Contains(t, js.String(), `"lvl":"warn"`)
	assert.Contains(t, js.String(), `"amount":"7"`)
	assert.Contains(t, js.String(), `"missing":"<nil>"`)

	var fmtBuf bytes.Buffer
	l = NewLogger(NewHandler(&fmtBuf, &lvl, FormatLogfmt))
	l.Error("claim failed", "amount", uint256.NewInt(12))
	assert.Contains(t, fmtBuf.String(), "lvl=error")
	assert.Contains(t, fmtBuf.String(), "amount=12")

	// lowering the shared level takes effect on existing handlers
	lvl.Set(slog.LevelInfo)
	l.Info("visible")
	assert.Contains(t, fmtBuf.String(), "msg=visible")

	assert.False(t, DiscardHandler().Enabled(context.Background(), LevelCrit))
}
