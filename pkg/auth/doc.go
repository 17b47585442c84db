// Package auth implements the session-backed authentication core: the signed
// bearer credential codec, the argon2id password hasher, the Redis session
// store, and the login/logout service that orchestrates them.
//
// A login issues a short-lived signed token whose subject is a fresh opaque
// session id, never the user's database id. The session store holds the
// authoritative UserContext snapshot for that subject; deleting the session
// revokes the login immediately even while the token itself is unexpired.
package auth
