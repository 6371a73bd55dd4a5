// Package errs holds the sentinel errors shared by the repository, security and service
// layers. Handlers map them to HTTP statuses with errors.Is.
package errs

import "errors"

var (
	// ErrInvalidInput means the caller broke a precondition (missing argument, id already set).
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound means the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrBadCredentials means the submitted password did not match.
	ErrBadCredentials = errors.New("bad credentials")

	// ErrRecipientNotFound means no user owns the recipient email of a composed message.
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrAccessDenied means the caller is authenticated but may not see the target.
	ErrAccessDenied = errors.New("access denied")

	// ErrAlreadyExists means a user with the same email is already registered.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized means the request carries no usable authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSessionExpired means the token refers to a session that was expired or removed.
	ErrSessionExpired = errors.New("session expired")
)
