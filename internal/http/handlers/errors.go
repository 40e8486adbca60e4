package handlers

import (
	"errors"
	"net/http"

	"github.com/hongminglow/ledger-be/internal/accounts"
	"github.com/hongminglow/ledger-be/internal/http/respond"
	"github.com/hongminglow/ledger-be/internal/ledger"
	"go.uber.org/zap"
)

// statusFor maps domain errors to an HTTP status and a client-safe message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ledger.ErrInvalidTransaction),
		errors.Is(err, ledger.ErrInvalidFilter),
		errors.Is(err, accounts.ErrInvalidAccount),
		errors.Is(err, accounts.ErrInvalidAccountNumber):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusBadRequest, "insufficient funds"
	case errors.Is(err, accounts.ErrForbidden):
		return http.StatusForbidden, "account belongs to another user"
	case errors.Is(err, ledger.ErrAccountNotFound):
		return http.StatusNotFound, "account not found"
	case errors.Is(err, accounts.ErrDuplicateName):
		return http.StatusConflict, "account name already exists"
	case errors.Is(err, ledger.ErrAccountInactive):
		return http.StatusConflict, "account is deactivated"
	case errors.Is(err, accounts.ErrDuplicateIdentifier):
		return http.StatusServiceUnavailable, "could not allocate an account number, try again"
	case errors.Is(err, ledger.ErrStorageFailure):
		return http.StatusServiceUnavailable, "ledger temporarily unavailable, try again"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(op+" failed", zap.Int("status", status), zap.Error(err))
	}
	respond.Error(w, status, msg)
}
