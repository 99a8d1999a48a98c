package store

import "errors"

var (
	ErrIdentityExists   = errors.New("identity already registered")
	ErrIdentityNotFound = errors.New("identity not found")
	ErrUnauthorized     = errors.New("caller is not the identity owner")
	ErrNullifierSpent   = errors.New("nullifier already spent")
	ErrSessionExpired   = errors.New("session expired or unknown")
)
