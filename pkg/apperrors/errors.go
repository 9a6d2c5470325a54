package apperrors

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrValidation           = errors.New("validation failed")
	ErrDuplicateAssignment  = errors.New("person already holds a role on this service date")
	ErrRoleCapacityExceeded = errors.New("role is already filled for this service date")
	ErrConflictOnDelete     = errors.New("record is still referenced and cannot be deleted")
	ErrUnauthorized         = errors.New("not authorized")
	ErrDeadlinePassed       = errors.New("availability deadline for this month has passed")
	ErrLastAdmin            = errors.New("cannot remove last admin")
	ErrInvalidCredentials   = errors.New("invalid initials or PIN")
)
