package errors

import "errors"

var (
	ErrInvalidOrganizationID = errors.New("organization id is required")
	ErrInvalidFeatureKey     = errors.New("feature key is required")
	ErrInvalidItemID         = errors.New("item id is required")
	ErrInvalidSharingID      = errors.New("sharing request id is required")
	ErrInvalidActorID        = errors.New("acting user id is required")

	ErrOrganizationNotFound   = errors.New("organization not found")
	ErrSharingRequestNotFound = errors.New("sharing request not found")

	ErrSharingRequestExists   = errors.New("sharing request already exists for this item and target organization")
	ErrRequestAlreadyResolved = errors.New("sharing request is already resolved")
	ErrNoParentOrganization   = errors.New("organization has no parent organization")
	ErrSharingQuotaExceeded   = errors.New("sharing request quota exceeded")
)
