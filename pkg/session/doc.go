// Package session issues and tracks login sessions in Redis.
//
// Each session is stored under two keys:
//
//	session_id:<token>   -> user id, with a native TTL
//	user_sessions:<uid>  -> sorted set of tokens scored by expiry (unix ms)
//
// The sorted set is authoritative for expiry. The lookup key only lets a token be
// resolved to its owner in a single round trip. Writes touching both keys run inside
// WATCH/MULTI/EXEC so a concurrent refresh and revoke cannot leave them out of step.
//
// Expired members of a user's set are swept opportunistically each time one of that
// user's tokens authenticates; there is no background job.
//
// Example:
//
//	client, err := session.NewRedisClient(session.RedisConfig{URL: "redis://localhost:6379/0"})
//	if err != nil {
//		return err
//	}
//	store, err := session.NewRedisStore(client, session.DefaultTTL)
//	if err != nil {
//		return err
//	}
//	rec, err := store.Issue(ctx, user.ID)
package session
