// Package auth provides session authentication and role authorization for the bookshelf API.
//
// # Overview
//
// Callers present an opaque bearer token issued at login. The Authenticator resolves the
// token through a session store, slides its expiry, and loads the owning user with the
// user's group and roles joined. Authorization is a pure function of those roles.
//
// # Authentication Flow
//
//	a := auth.NewAuthenticator(r, store, users)
//	res, err := a.Authenticate(r.Context())
//	if err != nil {
//		// store or repository failure: answer 500
//	}
//	if !res.Authenticated {
//		// res.Reason == auth.ReasonNoCredentials: answer 401
//	}
//
// The flow is:
//
//  1. Read "Authorization: Bearer <token>" (the prefix is case-sensitive)
//  2. Resolve the token to a user id
//  3. Drop the user's expired sessions, then slide this session's expiry
//  4. Load the user with roles
//
// Unknown, expired, and revoked tokens and deleted users are indistinguishable to the
// client. Result.Detail records which step failed for logging.
//
// Authenticate memoizes its outcome, so handlers further down the chain can ask again
// without repeating store calls.
//
// # Roles and Groups
//
// Two groups exist:
//
//	ROOT     - every role
//	CONSUMER - ADD_BOOK_TO_BOOKSHELF, UPDATE_BOOK_AT_BOOKSHELF,
//	           DELETE_BOOK_FROM_BOOKSHELF, UPDATE_CONSUMER_USER
//
// RootRoles lists the administrative subset (books and user management); ROOT is
// seeded with AllRoles.
//
// # Authorization
//
//	gate := auth.NewGate(res.User)
//	if !gate.CanCreateBook() {
//		// answer 403
//	}
//
// A Gate is built once per user and answers in constant time. A nil user yields an
// empty gate that denies everything.
//
// # Audit
//
// AuditLogger writes login, logout, and denial events through logrus with an
// "audit" field so they can be routed separately.
package auth
