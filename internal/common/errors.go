// Package common defines shared sentinel errors used across GuildVault
// components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrorNotOwner means the caller acted on an account it did not upload.
	ErrorNotOwner = errors.New("not owned by caller")

	// ErrorDuplicate means a username or pending row already exists.
	ErrorDuplicate = errors.New("already exists")

	// ErrorValidation covers malformed input, e.g. overlapping
	// approve/reject id sets or an empty grantee list.
	ErrorValidation = errors.New("validation error")
)
