package rpc_types

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/LeJamon/goAMMd/internal/core/auth"
	"github.com/LeJamon/goAMMd/internal/core/ledger"
)

// SigningPayload returns the bytes a request signature covers: the params
// object without its signature field, plus the method name under "method",
// serialized as compact JSON with sorted keys. Numbers keep their exact
// textual form.
func SigningPayload(method string, params json.RawMessage) ([]byte, error) {
	fields := map[string]any{}
	if len(params) > 0 {
		dec := json.NewDecoder(bytes.NewReader(params))
		dec.UseNumber()
		if err := dec.Decode(&fields); err != nil {
			return nil, fmt.Errorf("decode params: %w", err)
		}
	}
	delete(fields, FieldSignature)
	fields["method"] = method
	return json.Marshal(fields)
}

// Sign adds public_key and signature fields to params, signing them with
// key for method.
func Sign(key *auth.KeyPair, method string, params map[string]any) (json.RawMessage, error) {
	params[FieldPublicKey] = hex.EncodeToString(key.PublicKey())
	delete(params, FieldSignature)

	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	payload, err := SigningPayload(method, raw)
	if err != nil {
		return nil, err
	}
	params[FieldSignature] = hex.EncodeToString(key.Sign(payload))
	return json.Marshal(params)
}

// Authenticate establishes the caller of a request. A request carrying a
// public key must carry a valid signature of SigningPayload. Without one,
// the "account" field is trusted only when requireSignatures is false;
// otherwise the caller is anonymous.
func Authenticate(method string, params json.RawMessage, requireSignatures bool) (ledger.AccountID, error) {
	var envelope struct {
		PublicKey string `json:"public_key"`
		Signature string `json:"signature"`
		Account   string `json:"account"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &envelope); err != nil {
			return ledger.AccountID{}, fmt.Errorf("%w: %v", auth.ErrInvalidSignature, err)
		}
	}

	if envelope.PublicKey == "" {
		if envelope.Account != "" && !requireSignatures {
			return ledger.ParseAccountID(envelope.Account)
		}
		return ledger.AccountID{}, nil
	}

	pub, err := hex.DecodeString(envelope.PublicKey)
	if err != nil {
		return ledger.AccountID{}, fmt.Errorf("%w: public key is not hex", auth.ErrInvalidPublicKey)
	}
	sig, err := hex.DecodeString(envelope.Signature)
	if err != nil || len(sig) == 0 {
		return ledger.AccountID{}, fmt.Errorf("%w: missing or malformed signature", auth.ErrInvalidSignature)
	}
	payload, err := SigningPayload(method, params)
	if err != nil {
		return ledger.AccountID{}, fmt.Errorf("%w: %v", auth.ErrInvalidSignature, err)
	}
	return auth.Verify(pub, payload, sig)
}

// RequestSequence returns the sequence of a signed request. sequenced is
// false for unsigned requests, and a signed one without a sequence is
// rejected.
func RequestSequence(params json.RawMessage) (seq uint64, sequenced bool, rpcErr *RpcError) {
	var envelope struct {
		PublicKey string  `json:"public_key"`
		Sequence  *uint64 `json:"sequence"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &envelope); err != nil {
			return 0, false, RpcErrorInvalidParams("Invalid parameters: " + err.Error())
		}
	}
	if envelope.PublicKey == "" {
		return 0, false, nil
	}
	if envelope.Sequence == nil {
		return 0, false, RpcErrorInvalidParams("Missing field '" + FieldSequence + "'")
	}
	return *envelope.Sequence, true, nil
}
