package rpc_types

import (
	"errors"

	"github.com/LeJamon/goAMMd/internal/core/amm"
	"github.com/LeJamon/goAMMd/internal/core/auth"
	"github.com/LeJamon/goAMMd/internal/core/ledger"
	"github.com/LeJamon/goAMMd/internal/service"
)

// RpcError is the error object of a failed call. It is rendered inside the
// result object with status "error".
type RpcError struct {
	Code        int    `json:"error_code"`
	ErrorString string `json:"error"`
	Message     string `json:"error_message,omitempty"`
}

func (e RpcError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorString
}

// Error codes
const (
	// Universal errors
	RpcUNKNOWN          = -1
	RpcMETHOD_NOT_FOUND = -32601
	RpcINVALID_PARAMS   = -32602
	RpcINTERNAL         = -32603
	RpcPARSE_ERROR      = -32700

	// General purpose errors
	RpcMISSING_COMMAND = 2
	RpcUNAUTHORIZED    = 3
	RpcNOT_FOUND       = 19
	RpcNOT_ENABLED     = 31

	// Engine errors
	RpcINVALID_FEE          = 60
	RpcALREADY_EXISTS       = 61
	RpcDEPOSIT_TOO_SMALL    = 62
	RpcOUTPUT_TOO_SMALL     = 63
	RpcINVARIANT_VIOLATED   = 64
	RpcARITHMETIC_OVERFLOW  = 65
	RpcDIVISION_BY_ZERO     = 66
	RpcINSUFFICIENT_BALANCE = 67
	RpcBAD_SEQUENCE         = 68
)

// NewRpcError creates an RpcError.
func NewRpcError(code int, errorString, message string) *RpcError {
	return &RpcError{
		Code:        code,
		ErrorString: errorString,
		Message:     message,
	}
}

func RpcErrorInvalidParams(message string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", message)
}

func RpcErrorMethodNotFound(method string) *RpcError {
	return NewRpcError(RpcMETHOD_NOT_FOUND, "unknownCmd", "Unknown method: "+method)
}

func RpcErrorUnauthorized(message string) *RpcError {
	return NewRpcError(RpcUNAUTHORIZED, "unauthorized", message)
}

func RpcErrorInternal(message string) *RpcError {
	return NewRpcError(RpcINTERNAL, "internal", message)
}

// errorTokens maps sentinel errors to their code and token, checked in
// order with errors.Is.
var errorTokens = []struct {
	err   error
	code  int
	token string
}{
	{amm.ErrInvalidFee, RpcINVALID_FEE, "invalidFee"},
	{amm.ErrAlreadyExists, RpcALREADY_EXISTS, "alreadyExists"},
	{amm.ErrDepositTooSmall, RpcDEPOSIT_TOO_SMALL, "depositTooSmall"},
	{amm.ErrOutputTooSmall, RpcOUTPUT_TOO_SMALL, "outputTooSmall"},
	{amm.ErrInvariantViolated, RpcINVARIANT_VIOLATED, "invariantViolated"},
	{amm.ErrOverflow, RpcARITHMETIC_OVERFLOW, "arithmeticOverflow"},
	{amm.ErrDivisionByZero, RpcDIVISION_BY_ZERO, "divisionByZero"},
	{ledger.ErrInsufficientBalance, RpcINSUFFICIENT_BALANCE, "insufficientBalance"},
	{amm.ErrNotFound, RpcNOT_FOUND, "notFound"},
	{auth.ErrUnauthorized, RpcUNAUTHORIZED, "unauthorized"},
	{auth.ErrInvalidSignature, RpcUNAUTHORIZED, "unauthorized"},
	{auth.ErrInvalidPublicKey, RpcUNAUTHORIZED, "unauthorized"},
	{service.ErrBadSequence, RpcBAD_SEQUENCE, "badSequence"},
	{service.ErrInvalidParams, RpcINVALID_PARAMS, "invalidParams"},
	{amm.ErrInvalidSide, RpcINVALID_PARAMS, "invalidParams"},
	{ledger.ErrInvalidAccountID, RpcINVALID_PARAMS, "invalidParams"},
	{service.ErrJournalDisabled, RpcNOT_ENABLED, "notEnabled"},
}

// FromError converts an error returned by the service into an RpcError.
// Unrecognised errors become "internal".
func FromError(err error) *RpcError {
	if err == nil {
		return nil
	}
	var rpcErr *RpcError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	for _, t := range errorTokens {
		if errors.Is(err, t.err) {
			return NewRpcError(t.code, t.token, err.Error())
		}
	}
	return RpcErrorInternal(err.Error())
}
