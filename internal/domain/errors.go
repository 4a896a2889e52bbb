package domain

import "errors"

var (
	ErrInvalidGroup    = errors.New("invalid lbas group")
	ErrInvalidNode     = errors.New("invalid node")
	ErrProfileNotFound = errors.New("profile not found")
)
