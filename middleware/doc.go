/*
Package middleware provides HTTP helpers shared by all handlers.

# Request Logging

WithLogging wraps a handler with structured start/completion logs:

	mux.HandleFunc("POST /memberships", middleware.WithLogging(h.Add))

Logs include method, path, client IP (via GetClientIP, which honors
X-Forwarded-For and X-Real-IP), and duration.

# JSON Helpers

  - JSONResponse: writes a JSON body with the given status code
  - ErrorResponse: writes a models.ErrorResponse envelope
  - ParseJSONBody: decodes a request body into a struct

# CORS

CORS allows cross-origin requests and answers OPTIONS preflights; wrap the
whole mux with it in main.
*/
package middleware
