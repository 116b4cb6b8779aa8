package service

import "errors"

var (
	// ErrGroupNotFound is returned when the requested group does not exist.
	ErrGroupNotFound = errors.New("group not found")

	// ErrMemberNotFound is returned when a user is not a member of the group.
	ErrMemberNotFound = errors.New("user not found in group")

	// ErrInvalidArgument is returned for malformed requests.
	ErrInvalidArgument = errors.New("invalid argument")
)
