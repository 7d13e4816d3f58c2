package domain

import "errors"

var (
	ErrMalformedIndexSet     = errors.New("malformed index set")
	ErrMalformedIdentifier   = errors.New("malformed identifier")
	ErrMalformedAmount       = errors.New("malformed amount")
	ErrEmptyPartition        = errors.New("empty partition")
	ErrPreconditionViolation = errors.New("precondition violated")
	ErrUnknownToken          = errors.New("unknown token")
)
