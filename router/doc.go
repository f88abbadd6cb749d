/*
Package router defines the HTTP route table.

# Routes

NewRouter wires all handlers onto a ServeMux using Go 1.22+ method routing:

	mux := router.NewRouter(db, cfg)

Reference data:

	POST /voters
	POST /terms
	POST /terms/{id}/activate

Committee administration:

	POST /committees
	PUT  /committees/{id}/weight
	PUT  /committees/{id}/seats/{n}/petitioned
	GET  /committees/{id}/designation-weight

Membership workflow:

	POST /memberships
	POST /memberships/{id}/confirm
	POST /memberships/{id}/reject
	POST /memberships/{id}/resubmit
	POST /memberships/{id}/resign
	POST /memberships/{id}/remove
	POST /memberships/petition-outcome
	POST /eligibility/check

Every route is wrapped with middleware.WithLogging. Authentication and
privilege checks are the deployment's concern (a reverse proxy or an outer
layer); handlers assume the caller is already authorized.
*/
package router
