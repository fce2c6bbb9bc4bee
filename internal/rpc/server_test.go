package rpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LeJamon/goAMMd/internal/core/auth"
	"github.com/LeJamon/goAMMd/internal/core/ledger"
	"github.com/LeJamon/goAMMd/internal/logging"
	"github.com/LeJamon/goAMMd/internal/rpc/rpc_types"
	"github.com/LeJamon/goAMMd/internal/service"
	jtx "github.com/LeJamon/goAMMd/internal/testing"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	env *jtx.TestEnv
	hub *Hub
	url string
}

func newTestServer(t *testing.T, requireSignatures bool) *testServer {
	t.Helper()
	env := jtx.NewTestEnv(t)
	hub := NewHub(time.Second, logging.Discard())
	svc := service.New(env.Ledger(), service.Config{
		Authorizer: auth.NewPolicy([]ledger.AccountID{env.Operator.ID}),
		Publisher:  hub,
		Logger:     logging.Discard(),
	})
	srv := NewServer(svc, Options{
		RequireSignatures: requireSignatures,
		Timeout:           5 * time.Second,
		Logger:            logging.Discard(),
	})
	ts := httptest.NewServer(srv.Handler(hub))
	t.Cleanup(func() {
		hub.Close()
		ts.Close()
	})
	return &testServer{env: env, hub: hub, url: ts.URL}
}

// call posts method with params, signing with key when non-nil, and returns
// the result object. Signed calls carry the signer's current sequence unless
// params set one.
func (s *testServer) call(t *testing.T, key *auth.KeyPair, method string, params map[string]any) map[string]any {
	t.Helper()
	var raw json.RawMessage
	var err error
	if key != nil {
		if _, ok := params[rpc_types.FieldSequence]; !ok {
			params[rpc_types.FieldSequence] = s.sequence(t, key.AccountID())
		}
		raw, err = rpc_types.Sign(key, method, params)
	} else {
		raw, err = json.Marshal(params)
	}
	require.NoError(t, err)
	return s.post(t, rpc_types.Request{Method: method, Params: []json.RawMessage{raw}})
}

func (s *testServer) sequence(t *testing.T, id ledger.AccountID) uint64 {
	t.Helper()
	info := s.call(t, nil, "account_info", map[string]any{"account": id.String()})
	requireSuccess(t, info)
	return uint64(info["sequence"].(float64))
}

func (s *testServer) post(t *testing.T, req any) map[string]any {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(s.url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Result map[string]any `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Result
}

func poolParams(extra map[string]any) map[string]any {
	p := map[string]any{"amm_id": "amm-1", "a_mint": "USD", "b_mint": "EUR"}
	for k, v := range extra {
		p[k] = v
	}
	return p
}

func requireSuccess(t *testing.T, result map[string]any) {
	t.Helper()
	require.Equal(t, "success", result["status"], "error %v: %v", result["error"], result["error_message"])
}

func requireError(t *testing.T, result map[string]any, token string) {
	t.Helper()
	require.Equal(t, "error", result["status"])
	require.Equal(t, token, result["error"], "message: %v", result["error_message"])
}

// seed funds alice and creates a 10000/10000 pool with a 30 bps fee.
func (s *testServer) seed(t *testing.T, alice *jtx.Account) {
	t.Helper()
	op := s.env.Operator.Key
	for _, asset := range []string{"USD", "EUR"} {
		requireSuccess(t, s.call(t, op, "fund", map[string]any{
			"destination": alice.ID.String(), "asset": asset, "amount": 11_000,
		}))
	}
	requireSuccess(t, s.call(t, alice.Key, "create_amm", map[string]any{"amm_id": "amm-1", "fee": 30}))
	requireSuccess(t, s.call(t, alice.Key, "create_pool", poolParams(nil)))
	requireSuccess(t, s.call(t, alice.Key, "deposit_liquidity", poolParams(map[string]any{
		"amount_a": 10_000, "amount_b": 10_000,
	})))
}

func TestSignedFlow(t *testing.T) {
	s := newTestServer(t, true)
	alice := jtx.NewAccount("alice")
	s.seed(t, alice)

	quote := s.call(t, nil, "quote_swap", poolParams(map[string]any{"side": "a", "input": 1_000}))
	requireSuccess(t, quote)
	assert.EqualValues(t, 906, quote["quote"].(map[string]any)["output"])

	swap := s.call(t, alice.Key, "swap_exact_input", poolParams(map[string]any{
		"side": "a", "input": 1_000, "min_output": 906,
	}))
	requireSuccess(t, swap)
	assert.EqualValues(t, 906, swap["swap"].(map[string]any)["output"])

	info := s.call(t, nil, "pool_info", poolParams(nil))
	requireSuccess(t, info)
	pool := info["pool"].(map[string]any)
	assert.EqualValues(t, 11_000, pool["reserve_a"])
	assert.EqualValues(t, 9_094, pool["reserve_b"])
	assert.EqualValues(t, 9_000, pool["supply"])
	assert.EqualValues(t, 1_000, pool["locked"])

	bal := s.call(t, nil, "balance", map[string]any{"account": alice.ID.String(), "asset": "EUR"})
	requireSuccess(t, bal)
	assert.EqualValues(t, 1_906, bal["balance"])

	withdraw := s.call(t, alice.Key, "withdraw_liquidity", poolParams(map[string]any{"shares": 9_000}))
	requireSuccess(t, withdraw)
}

func TestErrorTokens(t *testing.T) {
	s := newTestServer(t, true)
	alice := jtx.NewAccount("alice")
	s.seed(t, alice)

	tests := []struct {
		name   string
		key    *auth.KeyPair
		method string
		params map[string]any
		token  string
	}{
		{name: "fee out of range", key: alice.Key, method: "create_amm", params: map[string]any{"amm_id": "amm-2", "fee": 10_000}, token: "invalidFee"},
		{name: "fee past 16 bits", key: alice.Key, method: "create_amm", params: map[string]any{"amm_id": "amm-2", "fee": 65_536}, token: "invalidFee"},
		{name: "fee wrapping to valid", key: alice.Key, method: "create_amm", params: map[string]any{"amm_id": "amm-2", "fee": 70_000}, token: "invalidFee"},
		{name: "duplicate amm", key: alice.Key, method: "create_amm", params: map[string]any{"amm_id": "amm-1"}, token: "alreadyExists"},
		{name: "unknown pool", key: alice.Key, method: "deposit_liquidity", params: map[string]any{"amm_id": "amm-1", "a_mint": "USD", "b_mint": "GBP"}, token: "notFound"},
		{name: "minimum not met", key: alice.Key, method: "swap_exact_input", params: poolParams(map[string]any{"side": "a", "input": 1_000, "min_output": 907}), token: "outputTooSmall"},
		{name: "bad side", key: alice.Key, method: "swap_exact_input", params: poolParams(map[string]any{"side": "c", "input": 1}), token: "invalidParams"},
		{name: "more shares than held", key: alice.Key, method: "withdraw_liquidity", params: poolParams(map[string]any{"shares": 9_001}), token: "insufficientBalance"},
		{name: "unsigned write", method: "create_amm", params: map[string]any{"amm_id": "amm-3"}, token: "unauthorized"},
		{name: "fund by non-operator", key: alice.Key, method: "fund", params: map[string]any{"destination": alice.ID.String(), "asset": "USD", "amount": 1}, token: "unauthorized"},
		{name: "bad account", method: "balance", params: map[string]any{"account": "zz", "asset": "USD"}, token: "invalidParams"},
		{name: "unknown method", method: "path_find", params: map[string]any{}, token: "unknownCmd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireError(t, s.call(t, tt.key, tt.method, tt.params), tt.token)
		})
	}
}

func TestTamperedSignatureRejected(t *testing.T) {
	s := newTestServer(t, true)
	alice := jtx.NewAccount("alice")
	s.seed(t, alice)

	raw, err := rpc_types.Sign(alice.Key, "withdraw_liquidity", poolParams(map[string]any{"shares": 1}))
	require.NoError(t, err)
	tampered := json.RawMessage(strings.Replace(string(raw), `"shares":1`, `"shares":9000`, 1))

	result := s.post(t, rpc_types.Request{Method: "withdraw_liquidity", Params: []json.RawMessage{tampered}})
	requireError(t, result, "unauthorized")

	// a signature is bound to its method
	result = s.post(t, rpc_types.Request{Method: "deposit_liquidity", Params: []json.RawMessage{raw}})
	requireError(t, result, "unauthorized")
}

func TestReplayedRequestRejected(t *testing.T) {
	s := newTestServer(t, true)
	alice := jtx.NewAccount("alice")
	s.seed(t, alice)

	seq := s.sequence(t, alice.ID)
	assert.Equal(t, uint64(3), seq, "create_amm, create_pool and deposit_liquidity")

	raw, err := rpc_types.Sign(alice.Key, "swap_exact_input", poolParams(map[string]any{
		"side": "a", "input": 100, "sequence": seq,
	}))
	require.NoError(t, err)
	req := rpc_types.Request{Method: "swap_exact_input", Params: []json.RawMessage{raw}}

	requireSuccess(t, s.post(t, req))
	requireError(t, s.post(t, req), "badSequence")
	assert.Equal(t, seq+1, s.sequence(t, alice.ID))

	bal := s.call(t, nil, "balance", map[string]any{"account": alice.ID.String(), "asset": "USD"})
	requireSuccess(t, bal)
	assert.EqualValues(t, 900, bal["balance"], "the swap ran once")

	raw, err = rpc_types.Sign(alice.Key, "swap_exact_input", poolParams(map[string]any{"side": "a", "input": 100}))
	require.NoError(t, err)
	result := s.post(t, rpc_types.Request{Method: "swap_exact_input", Params: []json.RawMessage{raw}})
	requireError(t, result, "invalidParams")
}

func TestUnsignedCallerWhenSignaturesOptional(t *testing.T) {
	s := newTestServer(t, false)
	alice := jtx.NewAccount("alice")

	result := s.call(t, nil, "create_amm", map[string]any{"amm_id": "amm-1", "account": alice.ID.String()})
	requireSuccess(t, result)
	assert.Equal(t, alice.ID.String(), result["amm"].(map[string]any)["admin"])
}

func TestMalformedRequests(t *testing.T) {
	s := newTestServer(t, true)

	resp, err := http.Post(s.url, "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out struct {
		Result map[string]any `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	requireError(t, out.Result, "jsonInvalid")

	requireError(t, s.post(t, map[string]any{"params": []any{}}), "missingCommand")
}

func TestHealthAndGet(t *testing.T) {
	s := newTestServer(t, true)

	resp, err := http.Get(s.url + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
	assert.EqualValues(t, 17, health["methods"])

	resp2, err := http.Get(s.url + "/?command=list_amms")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var out struct {
		Result map[string]any `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&out))
	requireSuccess(t, out.Result)
}

func TestWebsocketStream(t *testing.T) {
	s := newTestServer(t, true)
	alice := jtx.NewAccount("alice")
	s.seed(t, alice)

	ref := service.PoolRef{AMM: "amm-1", AMint: "USD", BMint: "EUR"}
	wsURL := "ws" + strings.TrimPrefix(s.url, "http") + "/ws?pool=" + ref.Keylet().String()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	// an event for another account's funding is filtered out
	requireSuccess(t, s.call(t, s.env.Operator.Key, "fund", map[string]any{
		"destination": alice.ID.String(), "asset": "GBP", "amount": 1,
	}))
	requireSuccess(t, s.call(t, alice.Key, "swap_exact_input", poolParams(map[string]any{
		"side": "b", "input": 500,
	})))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev service.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, service.EventSwap, ev.Type)
	assert.Equal(t, "b", ev.Side)
	assert.Equal(t, uint64(500), ev.Input)
	assert.Equal(t, alice.ID.String(), ev.Account)
}
