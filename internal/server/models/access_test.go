package models

import (
	"testing"

	"github.com/ddanshin/guildvault/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestRelationState_Transition(t *testing.T) {
	tests := []struct {
		name string
		from RelationState
		to   RelationState
		ok   bool
	}{
		{"invite", NoRelation, Requested, true},
		{"confirm", Requested, Granted, true},
		{"grant without request", NoRelation, Granted, false},
		{"re-invite while requested", Requested, Requested, false},
		{"granted is terminal for re-request", Granted, Requested, false},
		{"granted is terminal for re-grant", Granted, Granted, false},
		{"no backwards move", Granted, NoRelation, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.from.Transition(tc.to)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, common.ErrorValidation)
			}
		})
	}
}

func TestRelationState_String(t *testing.T) {
	assert.Equal(t, "no relation", NoRelation.String())
	assert.Equal(t, "requested", Requested.String())
	assert.Equal(t, "granted", Granted.String())
}
