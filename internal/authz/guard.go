// Package authz decides whether a subject may act on an owned resource.
//
// The rules are deliberately minimal: anyone may read, only a resource's
// owner may write. Decisions are pure functions of their inputs so they can
// be evaluated before any mutation is applied.
package authz

import "github.com/google/uuid"

type Action int

const (
	ActionRead Action = iota
	ActionWrite
)

func (a Action) String() string {
	if a == ActionWrite {
		return "write"
	}
	return "read"
}

type Decision int

const (
	Deny Decision = iota
	Allow
)

// Subject identifies the caller. The zero value is anonymous.
type Subject struct {
	ID            uuid.UUID
	Authenticated bool
}

func Anonymous() Subject {
	return Subject{}
}

func Authenticated(id uuid.UUID) Subject {
	return Subject{ID: id, Authenticated: true}
}

// Decide applies the ownership rule table:
//
//	read   -> Allow for everyone, authenticated or not
//	write  -> Allow only when the subject is the resource owner
func Decide(subject Subject, action Action, owner uuid.UUID) Decision {
	if action == ActionRead {
		return Allow
	}
	if subject.Authenticated && subject.ID == owner {
		return Allow
	}
	return Deny
}
