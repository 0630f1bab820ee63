// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plumestake/stakerd/log"
)

// mockLogger keeps the attributes passed to Info.
type mockLogger struct {
	loggedData []any
}

func (m *mockLogger) With(_ ...any) log.Logger                     { return m }
func (m *mockLogger) New(_ ...any) log.Logger                      { return m }
func (m *mockLogger) Log(_ slog.Level, _ string, _ ...any)         {}
func (m *mockLogger) Enabled(_ context.Context, _ slog.Level) bool { return true }
func (m *mockLogger) Handler() slog.Handler                        { return nil }
func (m *mockLogger) Trace(_ string, _ ...any)                     {}
func (m *mockLogger) Debug(_ string, _ ...any)                     {}
func (m *mockLogger) Error(_ string, _ ...any)                     {}
func (m *mockLogger) Crit(_ string, _ ...any)                      {}
func (m *mockLogger) Warn(_ string, _ ...any)                      {}

func (m *mockLogger) Info(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func (m *mockLogger) value(key string) any {
	for i := 0; i+1 < len(m.loggedData); i += 2 {
		if m.loggedData[i] == key {
			return m.loggedData[i+1]
		}
	}
	return nil
}

func TestRequestLoggerHandler(t *testing.T) {
	mockLog := &mockLogger{}

	var received string
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		received = string(b)
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte("OK"))
	})

	reqBody := `{"op":"stake"}`
	req := httptest.NewRequest(http.MethodPost, "http://example.com/commands", strings.NewReader(reqBody))
	rr := httptest.NewRecorder()
	RequestLoggerHandler(testHandler, mockLog).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
	assert.Equal(t, reqBody, received, "wrapped handler reads the full body")

	assert.Equal(t, "http://example.com/commands", mockLog.value("URI"))
	assert.Equal(t, http.MethodPost, mockLog.value("Method"))
	assert.Equal(t, reqBody, mockLog.value("Body"))
	assert.Equal(t, http.StatusAccepted, mockLog.value("Status"))
	_, ok := mockLog.value("timestamp").(int64)
	assert.True(t, ok, "timestamp should be an int64")
}

func TestRequestLoggerHandler_LongBody(t *testing.T) {
	mockLog := &mockLogger{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		assert.Len(t, b, maxLoggedBody*2)
	})

	req := httptest.NewRequest(http.MethodPost, "/commands", strings.NewReader(strings.Repeat("x", maxLoggedBody*2)))
	RequestLoggerHandler(handler, mockLog).ServeHTTP(httptest.NewRecorder(), req)

	assert.Len(t, mockLog.value("Body"), maxLoggedBody)
	assert.Equal(t, http.StatusOK, mockLog.value("Status"))
}
