package errors

import "errors"

var (
	ErrInvalidOrganizationID        = errors.New("invalid organization id")
	ErrInvalidFeatureKey            = errors.New("invalid feature key")
	ErrOrganizationNotFound         = errors.New("organization not found")
	ErrFeatureDisabledByParent      = errors.New("feature disabled by parent organization")
	ErrFeatureNotConfiguredByParent = errors.New("feature not configured by parent organization")
	ErrGlobalAccessQuotaExceeded    = errors.New("global access feature quota exceeded")
	ErrToggleWriteFailed            = errors.New("feature toggle write affected no rows")
)
