// Package models defines the fixed-shape records the server persists and
// the session/relation state the services reason about.
package models

import "time"

// User is an approved identity. Created only by promoting a PendingUser.
type User struct {
	ID       int64
	Username string
	Passhash []byte
}

// PendingUser is a registration awaiting a moderator decision. It exists
// only until a moderator approves (promotes to User) or rejects (deletes).
type PendingUser struct {
	ID          int64
	Username    string
	Passhash    []byte
	RequestedBy string
	CreatedAt   time.Time
}
