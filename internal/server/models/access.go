package models

import (
	"fmt"

	"github.com/ddanshin/guildvault/internal/common"
)

// AccessRequest is an owner-issued invitation: the uploader of an account
// has asked a specific user to receive it, and the user has not confirmed
// yet. At most one live row exists per (account, username) pair.
type AccessRequest struct {
	ID          int64
	AccountID   int64
	Username    string
	RequestedBy string
}

// AccessGrant is a confirmed authorization. It is created by consuming
// exactly one AccessRequest and is required before disclosure.
type AccessGrant struct {
	ID        int64
	AccountID int64
	Username  string
	GrantedBy string
}

// RelationState is the sharing state of one (account, username) pair.
type RelationState int

const (
	NoRelation RelationState = iota
	Requested
	Granted
)

func (s RelationState) String() string {
	switch s {
	case NoRelation:
		return "no relation"
	case Requested:
		return "requested"
	case Granted:
		return "granted"
	default:
		return fmt.Sprintf("relation state %d", int(s))
	}
}

// Transition validates a state change for a sharing pair. The only legal
// moves are NoRelation → Requested (owner invites) and Requested → Granted
// (grantee confirms). Granted is terminal: there is no revocation or
// re-request path.
func (s RelationState) Transition(to RelationState) error {
	switch {
	case s == NoRelation && to == Requested:
		return nil
	case s == Requested && to == Granted:
		return nil
	default:
		return fmt.Errorf("%w: cannot move from %s to %s", common.ErrorValidation, s, to)
	}
}
