/*
Package main provides the entry point for the committee roster API server.

The server administers political party committee memberships: which
registered voters hold which committee seats, whether a voter may be added
(eligibility rules with hard stops, warnings, and policy-permitted
overrides), numbered seat allocation under a per-jurisdiction cap, and the
designation-petition weight each committee contributes to primary ballot
access.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... go run main.go

Or with flags:

	go run main.go -p 3318 -d "postgres://..." -t postgres

A local .env file is loaded before flag parsing.

# Configuration

Required settings:

  - DATABASE_URL (-d): connection string

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): "postgres" (default) or "sqlite"

# Architecture

The server uses a handler-based architecture with dependency injection:

  - governance: active configuration and term lookup
  - eligibility: the multi-rule eligibility evaluator
  - seats: seat materialization, allocation, and weight recompute
  - weights: designation-weight aggregation
  - handlers: HTTP request handlers (voters, terms, committees, memberships)
  - router: route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: domain entities and request/response types
  - db: schema creation and the shared Queryer interface
  - cliparse: configuration parsing

The engine packages (governance, eligibility, seats, weights) take a
db.Queryer rather than a *sql.DB so handlers can compose them with their own
writes in a single transaction; seat allocation and eligibility are
re-checked at decision time inside that transaction.

See package documentation for each component.
*/
package main
