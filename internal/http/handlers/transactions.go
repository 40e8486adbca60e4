package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/ledger-be/internal/accounts"
	"github.com/hongminglow/ledger-be/internal/http/respond"
	"github.com/hongminglow/ledger-be/internal/ledger"
	"github.com/hongminglow/ledger-be/internal/models"
	"github.com/hongminglow/ledger-be/internal/models/dto"
)

const dateLayout = "2006-01-02"

// TransactionHandler posts and lists ledger entries for the caller's accounts.
type TransactionHandler struct {
	accounts *accounts.Service
	engine   *ledger.Engine
	logger   *zap.Logger
}

// NewTransactionHandler constructs the handler.
func NewTransactionHandler(svc *accounts.Service, engine *ledger.Engine, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{accounts: svc, engine: engine, logger: logger}
}

// Register attaches routes. authn wraps both; throttle wraps only postings.
func (h *TransactionHandler) Register(mux *http.ServeMux, authn, throttle func(http.Handler) http.Handler) {
	mux.Handle("POST /accounts/{id}/transactions", authn(throttle(http.HandlerFunc(h.handlePost))))
	mux.Handle("GET /accounts/{id}/transactions", authn(http.HandlerFunc(h.handleList)))
}

func (h *TransactionHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	owner, ok := caller(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	id, err := accountID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var req dto.PostTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.accounts.Get(r.Context(), owner, id); err != nil {
		writeError(w, h.logger, "resolve account", err)
		return
	}

	res, err := h.engine.Post(r.Context(), ledger.PostRequest{
		AccountID: id,
		Direction: models.Direction(req.Direction),
		Amount:    req.Amount,
		Memo:      req.Memo,
	})
	if err != nil {
		writeError(w, h.logger, "post transaction", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "transaction posted", dto.PostTransactionResponse{
		Transaction: res.Entry,
		Balance:     res.Balance,
	})
}

func (h *TransactionHandler) handleList(w http.ResponseWriter, r *http.Request) {
	owner, ok := caller(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	id, err := accountID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.accounts.Get(r.Context(), owner, id); err != nil {
		writeError(w, h.logger, "resolve account", err)
		return
	}

	entries, err := h.engine.List(r.Context(), id, filter)
	if err != nil {
		writeError(w, h.logger, "list transactions", err)
		return
	}
	page := dto.TransactionPage{Transactions: entries, PageSize: filter.PageSize}
	if filter.PageSize > 0 {
		page.Page = max(filter.Page, 1)
	}
	respond.JSON(w, http.StatusOK, "ok", page)
}

func parseFilter(r *http.Request) (ledger.Filter, error) {
	q := r.URL.Query()
	var f ledger.Filter
	var err error
	if v := q.Get("from"); v != "" {
		if f.From, err = time.Parse(dateLayout, v); err != nil {
			return f, errors.New("from must be a date in YYYY-MM-DD format")
		}
	}
	if v := q.Get("to"); v != "" {
		if f.To, err = time.Parse(dateLayout, v); err != nil {
			return f, errors.New("to must be a date in YYYY-MM-DD format")
		}
	}
	if v := q.Get("page"); v != "" {
		if f.Page, err = strconv.Atoi(v); err != nil {
			return f, errors.New("page must be an integer")
		}
	}
	if v := q.Get("page_size"); v != "" {
		if f.PageSize, err = strconv.Atoi(v); err != nil {
			return f, errors.New("page_size must be an integer")
		}
	}
	return f, nil
}
