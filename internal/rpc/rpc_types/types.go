package rpc_types

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/LeJamon/goAMMd/internal/core/ledger"
	"github.com/LeJamon/goAMMd/internal/service"
)

// Role-based access control
type Role int

const (
	// RoleGuest may call read-only methods.
	RoleGuest Role = iota
	// RoleUser is an authenticated caller.
	RoleUser
)

// RpcContext contains request-specific information
type RpcContext struct {
	Context  context.Context
	Role     Role
	Caller   ledger.AccountID
	ClientIP string
}

// MethodHandler is implemented by every RPC method.
type MethodHandler interface {
	Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError)
	RequiredRole() Role
}

// MethodRegistry for dynamic method registration
type MethodRegistry struct {
	methods map[string]MethodHandler
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{
		methods: make(map[string]MethodHandler),
	}
}

func (r *MethodRegistry) Register(name string, handler MethodHandler) {
	r.methods[name] = handler
}

func (r *MethodRegistry) Get(name string) (MethodHandler, bool) {
	handler, exists := r.methods[name]
	return handler, exists
}

// List returns the registered method names in sorted order.
func (r *MethodRegistry) List() []string {
	methods := make([]string, 0, len(r.methods))
	for name := range r.methods {
		methods = append(methods, name)
	}
	sort.Strings(methods)
	return methods
}

// Request is the JSON-RPC request envelope.
// Format: {"method": "method_name", "params": [{...}]}
type Request struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// PoolParams names a pool in request parameters.
type PoolParams struct {
	AMM   string `json:"amm_id"`
	AMint string `json:"a_mint"`
	BMint string `json:"b_mint"`
}

// Ref converts p to a service.PoolRef.
func (p PoolParams) Ref() service.PoolRef {
	return service.PoolRef{
		AMM:   p.AMM,
		AMint: ledger.Asset(p.AMint),
		BMint: ledger.Asset(p.BMint),
	}
}

// Signature fields carried by signed requests.
const (
	FieldPublicKey = "public_key"
	FieldSignature = "signature"
	// FieldAccount names the caller of an unsigned request when signatures
	// are not required.
	FieldAccount = "account"
	// FieldSequence carries the signer's next sequence on signed calls of
	// state-changing methods.
	FieldSequence = "sequence"
)
