package middleware

import "net/http"

// Stack combines multiple middleware into a single middleware.
//
// Middleware is applied in the order provided, meaning the first middleware
// in the slice is the outermost (runs first on request, last on response).
//
// Example:
//
//	stack := Stack(securityMw.Handler, loggingMw.Handler, metrics.Middleware)
//	server.Handler = stack(mux)
//
// This is equivalent to:
//
//	securityMw.Handler(loggingMw.Handler(metrics.Middleware(mux)))
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
