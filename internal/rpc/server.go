// Package rpc serves the JSON-RPC API, the websocket event stream and the
// health endpoint over HTTP.
package rpc

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/LeJamon/goAMMd/internal/rpc/rpc_handlers"
	"github.com/LeJamon/goAMMd/internal/rpc/rpc_types"
	"github.com/LeJamon/goAMMd/internal/service"
)

// maxBodyBytes bounds a request body.
const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	// RequireSignatures rejects unsigned callers of state-changing methods.
	RequireSignatures bool
	// Timeout bounds each call; zero means no limit beyond the request's.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Server handles HTTP JSON-RPC requests
type Server struct {
	registry          *rpc_types.MethodRegistry
	requireSignatures bool
	timeout           time.Duration
	logger            *slog.Logger
}

// NewServer creates a Server dispatching to svc.
func NewServer(svc *service.Service, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	server := &Server{
		registry:          rpc_types.NewMethodRegistry(),
		requireSignatures: opts.RequireSignatures,
		timeout:           opts.Timeout,
		logger:            opts.Logger.With("component", "rpc"),
	}

	// Register all RPC methods
	rpc_handlers.RegisterAll(server.registry, svc)

	return server
}

// Methods returns the registered method names.
func (s *Server) Methods() []string {
	return s.registry.List()
}

// Handler returns the HTTP routes: JSON-RPC at /, the health check at
// /health and, when hub is non-nil, the event stream at /ws.
func (s *Server) Handler(hub *Hub) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", s)
	mux.HandleFunc("/health", s.handleHealth)
	if hub != nil {
		mux.Handle("/ws", hub)
	}
	return mux
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	// Handle preflight requests
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetRequest(w, r)
	case http.MethodPost:
		s.handlePostRequest(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetRequest runs a parameterless read-only method named by the
// "command" query parameter, ping by default.
func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("command")
	if method == "" {
		method = "ping"
	}

	ctx := &rpc_types.RpcContext{
		Context:  r.Context(),
		Role:     rpc_types.RoleGuest,
		ClientIP: getClientIP(r),
	}
	result, rpcErr := s.executeMethod(method, nil, ctx)
	s.writeResponse(w, method, result, rpcErr)
}

// handlePostRequest processes POST requests with a JSON-RPC payload
func (s *Server) handlePostRequest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeResponse(w, "", nil, rpc_types.RpcErrorInternal("Failed to read request body"))
		return
	}
	defer r.Body.Close()

	var request rpc_types.Request
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeResponse(w, "", nil, rpc_types.NewRpcError(rpc_types.RpcPARSE_ERROR, "jsonInvalid", "Invalid JSON: "+err.Error()))
		return
	}
	if request.Method == "" {
		s.writeResponse(w, "", nil, rpc_types.NewRpcError(rpc_types.RpcMISSING_COMMAND, "missingCommand", "Missing method field"))
		return
	}

	// params is an array with one object
	var params json.RawMessage
	if len(request.Params) > 0 {
		params = request.Params[0]
	}

	caller, err := rpc_types.Authenticate(request.Method, params, s.requireSignatures)
	if err != nil {
		s.writeResponse(w, request.Method, nil, rpc_types.FromError(err))
		return
	}

	ctx := &rpc_types.RpcContext{
		Context:  r.Context(),
		Role:     rpc_types.RoleGuest,
		Caller:   caller,
		ClientIP: getClientIP(r),
	}
	if !caller.IsZero() {
		ctx.Role = rpc_types.RoleUser
	}

	result, rpcErr := s.executeMethod(request.Method, params, ctx)
	s.writeResponse(w, request.Method, result, rpcErr)
}

// executeMethod executes an RPC method with the given parameters
func (s *Server) executeMethod(method string, params json.RawMessage, ctx *rpc_types.RpcContext) (interface{}, *rpc_types.RpcError) {
	handler, exists := s.registry.Get(method)
	if !exists {
		return nil, rpc_types.RpcErrorMethodNotFound(method)
	}

	if ctx.Role < handler.RequiredRole() {
		return nil, rpc_types.RpcErrorUnauthorized("Method '" + method + "' requires a signed request")
	}

	if handler.RequiredRole() >= rpc_types.RoleUser {
		seq, sequenced, rpcErr := rpc_types.RequestSequence(params)
		if rpcErr != nil {
			return nil, rpcErr
		}
		if sequenced {
			ctx.Context = service.WithSequence(ctx.Context, seq)
		}
	}

	if s.timeout > 0 {
		c, cancel := context.WithTimeout(ctx.Context, s.timeout)
		defer cancel()
		ctx.Context = c
	}

	start := time.Now()
	result, rpcErr := handler.Handle(ctx, params)
	if rpcErr != nil {
		s.logger.Debug("rpc call failed",
			"method", method,
			"caller", ctx.Caller,
			"error", rpcErr.ErrorString,
			"message", rpcErr.Message,
		)
	} else {
		s.logger.Debug("rpc call", "method", method, "caller", ctx.Caller, "elapsed", time.Since(start))
	}
	return result, rpcErr
}

// writeResponse writes a JSON-RPC response: result.status is "success" or
// "error", and errors carry error, error_code and error_message inside the
// result object.
func (s *Server) writeResponse(w http.ResponseWriter, method string, result interface{}, rpcErr *rpc_types.RpcError) {
	response := make(map[string]interface{})

	if rpcErr != nil {
		resultObj := map[string]interface{}{
			"status":        "error",
			"error":         rpcErr.ErrorString,
			"error_code":    rpcErr.Code,
			"error_message": rpcErr.Message,
		}
		if method != "" {
			resultObj["request"] = map[string]interface{}{"command": method}
		}
		response["result"] = resultObj
	} else {
		// If result is already a map, add status to it
		if resultMap, ok := result.(map[string]interface{}); ok {
			resultMap["status"] = "success"
			response["result"] = resultMap
		} else {
			response["result"] = map[string]interface{}{
				"status": "success",
				"data":   result,
			}
		}
	}

	responseData, err := json.Marshal(response)
	if err != nil {
		s.logger.Error("failed to marshal response", "method", method, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(responseData)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"methods": len(s.registry.List()),
	})
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
