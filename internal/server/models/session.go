package models

import "time"

// Session is a time-bounded proof that a chat actor is currently
// authenticated as a given identity. Sessions live only in process memory;
// expiry is fixed at login time and never slides.
type Session struct {
	Username  string
	ExpiresAt time.Time
}
