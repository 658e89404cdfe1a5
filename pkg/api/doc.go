// Package api implements the HTTP surface of the bookshelf authentication service.
//
// # Routes
//
//	POST /login          email + password, returns a bearer token (rate limited per client IP)
//	GET  /logout         revokes the presenting token
//	POST /logout/all     revokes every session of the caller
//	GET  /check          200 while the session is live
//	GET  /user/me        caller with group and roles
//	GET  /user/sessions  caller's live sessions, tokens shown by prefix only
//	POST /user/register  creates a CONSUMER account (shares the login rate limit)
//	POST /user/root      creates a ROOT account, requires CREATE_ROOT_USER
//
// Every failure answers with {"errors": [...]}; any missing or dead session is
// reported as {"errors":["Unauthorized."]}.
//
// # Usage
//
//	server := api.NewServer(api.Options{
//		Store:  observability.InstrumentTokenStore(store, metrics),
//		Users:  users.NewRepository(db),
//		Logger: logger,
//	})
//	http.ListenAndServe(":8080", server)
//
// # Related Packages
//
//   - pkg/middleware: Authentication gate and rate limiting
//   - pkg/session: Token store
package api
