// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Error Payloads
//
// Every failed request answers with the same shape:
//
//	{"errors": ["Unauthorized."]}
//
//	httputil.WriteErrors(w, http.StatusBadRequest, httputil.MsgInvalidCredentials)
//	httputil.WriteUnauthorized(w)
//	httputil.WriteInternalError(w) // log the cause first, it is never sent
//
// # Request Parsing
//
//	var req LoginRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // Error response already written
//	}
//
// # Middleware
//
//	httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//	)
//
// # Related Packages
//
//   - pkg/middleware: Authentication and authorization middleware
package httputil
