package ledger

import "errors"

var (
	// ErrInvalidTransaction rejects a malformed posting before storage is touched.
	ErrInvalidTransaction = errors.New("invalid transaction")
	// ErrInvalidFilter rejects a malformed history query.
	ErrInvalidFilter = errors.New("invalid transaction filter")
	// ErrInsufficientFunds is returned when a debit exceeds the balance. Nothing is written.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAccountNotFound is returned when the account does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountInactive is returned when posting to a deactivated account.
	ErrAccountInactive = errors.New("account is deactivated")
	// ErrStorageFailure means the posting did not commit. No partial write
	// remains and the call is safe to retry.
	ErrStorageFailure = errors.New("ledger storage failure")
)
