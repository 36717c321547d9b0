package types

import "github.com/m-mizutani/goerr/v2"

var (
	ErrInvalidOption = goerr.New("invalid option")

	// ErrCredential means the App private key or a locally minted assertion
	// is malformed. Never retried.
	ErrCredential = goerr.New("credential malformed")

	// ErrAuth means GitHub rejected the App credentials or the installation
	// is unknown. Definitive for the call; carries the platform status and
	// body for diagnostics.
	ErrAuth = goerr.New("platform rejected credentials")

	// ErrPayload means a webhook payload is missing required fields.
	// Handled at the HTTP boundary as a 400, never reaches business logic.
	ErrPayload = goerr.New("malformed webhook payload")

	// ErrTransient covers network failures and timeouts on outbound calls.
	// Retried once at the call boundary, then surfaced.
	ErrTransient = goerr.New("transient failure")

	// ErrConflict means a conditional content write lost the race against a
	// concurrent writer. The caller may retry the whole read-check-write
	// cycle once.
	ErrConflict = goerr.New("optimistic write conflict")

	// ErrNoPermission means GitHub denied an operation the installation
	// token does not cover. Non-fatal for batch badge operations.
	ErrNoPermission = goerr.New("operation not permitted")

	ErrNotFound = goerr.New("not found")
)
