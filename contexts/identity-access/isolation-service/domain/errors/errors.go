package errors

import "errors"

var (
	ErrInvalidUserID            = errors.New("invalid user id")
	ErrInvalidOrganizationID    = errors.New("invalid organization id")
	ErrInvalidResourceType      = errors.New("invalid resource type")
	ErrUserOrganizationNotFound = errors.New("user organization not found")
	ErrPolicyRulesRequired      = errors.New("policy rules are required")
	ErrInvalidPolicy            = errors.New("invalid policy")
	ErrInvalidGrant             = errors.New("invalid grant")
)
