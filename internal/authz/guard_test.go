package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	tests := []struct {
		name    string
		subject Subject
		action  Action
		want    Decision
	}{
		{"anonymous read", Anonymous(), ActionRead, Allow},
		{"anonymous write", Anonymous(), ActionWrite, Deny},
		{"non-owner read", Authenticated(other), ActionRead, Allow},
		{"non-owner write", Authenticated(other), ActionWrite, Deny},
		{"owner read", Authenticated(owner), ActionRead, Allow},
		{"owner write", Authenticated(owner), ActionWrite, Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.subject, tt.action, owner))
		})
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	owner := uuid.New()
	subject := Authenticated(uuid.New())

	first := Decide(subject, ActionWrite, owner)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Decide(subject, ActionWrite, owner))
	}
}

func TestUnauthenticatedIDNeverMatches(t *testing.T) {
	// A forged subject carrying the owner's id but not authenticated must
	// still be denied.
	owner := uuid.New()
	forged := Subject{ID: owner, Authenticated: false}
	assert.Equal(t, Deny, Decide(forged, ActionWrite, owner))
}
