package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thrustlabs/thrust-engine/internal/engine"
	"github.com/thrustlabs/thrust-engine/internal/events"
	"github.com/thrustlabs/thrust-engine/internal/state"
	"github.com/thrustlabs/thrust-engine/internal/vault"
)

type testServer struct {
	*Server
	owner solana.PublicKey
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	st := state.NewStore()
	v := vault.New(logger)
	eng := engine.New(st, v, events.NewBus(logger), logger)
	return &testServer{
		Server: New(eng, st, v, logger),
		owner:  solana.NewWallet().PublicKey(),
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) init(t *testing.T) {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/v1/admin/init", map[string]string{
		"owner":      ts.owner.String(),
		"signer_key": solana.NewWallet().PublicKey().String(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestInitEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.init(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/admin/init", map[string]string{
		"owner":      ts.owner.String(),
		"signer_key": solana.NewWallet().PublicKey().String(),
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateConfigRequiresOwner(t *testing.T) {
	ts := newTestServer(t)
	ts.init(t)

	intruder := solana.NewWallet().PublicKey()
	rec := ts.do(t, http.MethodPost, "/api/v1/admin/config", map[string]interface{}{
		"caller":        intruder.String(),
		"owner":         intruder.String(),
		"fee_recipient": intruder.String(),
		"signer_key":    intruder.String(),
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreatePoolAndTrade(t *testing.T) {
	ts := newTestServer(t)
	ts.init(t)

	mint := solana.NewWallet().PublicKey()
	rec := ts.do(t, http.MethodPost, "/api/v1/pools", map[string]interface{}{
		"creator": ts.owner.String(),
		"mint":    mint.String(),
		"symbol":  "TST",
		"tax": map[string]interface{}{
			"type":         "decay",
			"initial_rate": 20_000,
			"tiers":        []map[string]uint64{{"days_held": 0, "rate": 20_000}, {"days_held": 7, "rate": 10_000}},
			"min_rate":     1_000,
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	trader := solana.NewWallet().PublicKey()
	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/api/v1/accounts/%s/deposit", trader), map[string]uint64{
		"amount": 10_000_000_000,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/api/v1/pools/%s/buy", mint), map[string]interface{}{
		"buyer":  trader.String(),
		"amount": 1_000_000_000,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var buyResp struct {
		BaseOut uint64 `json:"base_out"`
		Fee     uint64 `json:"fee"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &buyResp))
	assert.NotZero(t, buyResp.BaseOut)
	assert.Equal(t, uint64(10_000_000), buyResp.Fee)

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/pools/%s", mint), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var poolResp struct {
		RealQuote uint64 `json:"real_quote"`
		Complete  bool   `json:"complete"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &poolResp))
	assert.Equal(t, uint64(990_000_000), poolResp.RealQuote)
	assert.False(t, poolResp.Complete)

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%s", trader), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var userResp struct {
		TradeCount uint64 `json:"trade_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &userResp))
	assert.Equal(t, uint64(1), userResp.TradeCount)
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t)
	ts.init(t)

	unknown := solana.NewWallet().PublicKey()
	rec := ts.do(t, http.MethodPost, fmt.Sprintf("/api/v1/pools/%s/buy", unknown), map[string]interface{}{
		"buyer":  solana.NewWallet().PublicKey().String(),
		"amount": 1,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/pools/%s", unknown), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/pools", map[string]interface{}{
		"creator": ts.owner.String(),
		"mint":    solana.NewWallet().PublicKey().String(),
		"tax":     map[string]interface{}{"type": "nope"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Penniless buyer on a real pool.
	mint := solana.NewWallet().PublicKey()
	rec = ts.do(t, http.MethodPost, "/api/v1/pools", map[string]interface{}{
		"creator": ts.owner.String(),
		"mint":    mint.String(),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/api/v1/pools/%s/buy", mint), map[string]interface{}{
		"buyer":  solana.NewWallet().PublicKey().String(),
		"amount": 1_000_000_000,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/api/v1/pools/%s/withdraw", mint), map[string]string{
		"caller": ts.owner.String(),
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}
