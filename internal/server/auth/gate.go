// Package auth guards protected operations behind the session registry.
package auth

import (
	"github.com/ddanshin/guildvault/internal/common"
	"github.com/ddanshin/guildvault/internal/server/models"
	"github.com/ddanshin/guildvault/internal/server/sessions"
)

// Gate resolves a chat actor to an authenticated session. It holds no state
// of its own; everything delegates to the registry.
type Gate struct {
	registry *sessions.Registry
}

func NewGate(registry *sessions.Registry) *Gate {
	return &Gate{registry: registry}
}

// Require returns the actor's live session, or common.ErrorUnauthorized
// when there is none (never logged in, logged out, or expired). Callers
// short-circuit on the error instead of invoking the protected operation.
func (g *Gate) Require(actorID string) (models.Session, error) {
	s, ok := g.registry.Active(actorID)
	if !ok {
		return models.Session{}, common.ErrorUnauthorized
	}
	return s, nil
}
