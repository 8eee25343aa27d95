package errors

import "errors"

var (
	ErrInvalidOrganizationID = errors.New("invalid organization id")
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrUnknownQuotaType      = errors.New("unknown quota type")
	ErrUnknownOperation      = errors.New("unknown quota operation")
	ErrQuotaExceeded         = errors.New("quota exceeded")
	ErrQuotaWriteFailed      = errors.New("quota update affected no rows")
)
