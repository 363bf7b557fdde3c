package domain

import "errors"

var (
	ErrRunAlreadySealed       = errors.New("normalization run is already sealed")
	ErrRunNotFound            = errors.New("normalization run not found")
	ErrUnknownSelectionPolicy = errors.New("unknown backlog selection policy")
	ErrUnknownConflictKey     = errors.New("unknown conflict key strategy")
	ErrUnknownMergePolicy     = errors.New("unknown merge policy")
	ErrEmptyPayload           = errors.New("raw record payload is empty")
	ErrContractViolation      = errors.New("normalized record violates the storage contract")
	ErrMissingCoreFields      = errors.New("normalized record is missing start, end or starting price")
)
