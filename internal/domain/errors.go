package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already in use")
	ErrCircleNotFound     = errors.New("circle not found")
	ErrJoinCodeTaken      = errors.New("join code already in use")
	ErrMembershipExists   = errors.New("user is already a member of this circle")
	ErrNoMembership       = errors.New("user is not a member of any circle")
	ErrDuplicateDrop      = errors.New("user already submitted for this cycle")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrSnapshotNotFound   = errors.New("snapshot not found")
)
