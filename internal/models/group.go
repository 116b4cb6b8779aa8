package models

import (
	"errors"
	"fmt"
)

// ErrInvalidGroup is returned by Validate for malformed groups.
var ErrInvalidGroup = errors.New("invalid group")

// Group represents a set of members who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string `json:"name"`

	// Members are the current members of the group, in join order.
	// Every expense of the group is split equally among all of them.
	Members []Member `json:"members"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"createdAt,omitempty"`
}

// Member is one participant of a group.
type Member struct {
	// UserID identifies the member; unique within a group.
	UserID string `json:"userId"`

	// DisplayName is the human-readable name shown for the member.
	DisplayName string `json:"displayName"`
}

// HasMember reports whether userID is a current member of the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// Validate checks that every member has a user ID and that no user ID
// appears twice.
func (g *Group) Validate() error {
	seen := make(map[string]struct{}, len(g.Members))
	for _, m := range g.Members {
		if m.UserID == "" {
			return fmt.Errorf("%w: member without user ID", ErrInvalidGroup)
		}
		if _, dup := seen[m.UserID]; dup {
			return fmt.Errorf("%w: duplicate member %s", ErrInvalidGroup, m.UserID)
		}
		seen[m.UserID] = struct{}{}
	}
	return nil
}
