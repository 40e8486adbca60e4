package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hongminglow/ledger-be/internal/accounts"
	"github.com/hongminglow/ledger-be/internal/http/respond"
	"github.com/hongminglow/ledger-be/internal/models"
	"github.com/hongminglow/ledger-be/internal/models/dto"
)

// AccountHandler exposes account lifecycle endpoints for the caller's own accounts.
type AccountHandler struct {
	svc    *accounts.Service
	logger *zap.Logger
}

// NewAccountHandler constructs the handler.
func NewAccountHandler(svc *accounts.Service, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{svc: svc, logger: logger}
}

// Register attaches account routes; authn wraps each one.
func (h *AccountHandler) Register(mux *http.ServeMux, authn func(http.Handler) http.Handler) {
	mux.Handle("POST /accounts", authn(http.HandlerFunc(h.handleCreate)))
	mux.Handle("GET /accounts", authn(http.HandlerFunc(h.handleList)))
	mux.Handle("GET /accounts/{id}", authn(http.HandlerFunc(h.handleGet)))
	mux.Handle("GET /account-numbers/{number}", authn(http.HandlerFunc(h.handleByNumber)))
	mux.Handle("PATCH /accounts/{id}", authn(http.HandlerFunc(h.handleRename)))
	mux.Handle("DELETE /accounts/{id}", authn(http.HandlerFunc(h.handleDeactivate)))
}

func (h *AccountHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	owner, ok := caller(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	var req dto.CreateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	initial := decimal.Zero
	if req.InitialBalance != nil {
		initial = *req.InitialBalance
	}
	account, err := h.svc.Create(r.Context(), owner, accounts.CreateInput{
		Name:           req.Name,
		Category:       models.Category(req.Category),
		Currency:       models.Currency(req.Currency),
		InitialBalance: initial,
	})
	if err != nil {
		writeError(w, h.logger, "create account", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "account created", account)
}

func (h *AccountHandler) handleList(w http.ResponseWriter, r *http.Request) {
	owner, ok := caller(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	list, err := h.svc.List(r.Context(), owner)
	if err != nil {
		writeError(w, h.logger, "list accounts", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", list)
}

func (h *AccountHandler) handleGet(w http.ResponseWriter, r *http.Request) {
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
	account, err := h.svc.Get(r.Context(), owner, id)
	if err != nil {
		writeError(w, h.logger, "get account", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", account)
}

func (h *AccountHandler) handleByNumber(w http.ResponseWriter, r *http.Request) {
	owner, ok := caller(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	account, err := h.svc.FindByNumber(r.Context(), owner, r.PathValue("number"))
	if err != nil {
		writeError(w, h.logger, "find account by number", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", account)
}

func (h *AccountHandler) handleRename(w http.ResponseWriter, r *http.Request) {
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
	var req dto.RenameAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	account, err := h.svc.Rename(r.Context(), owner, id, req.Name)
	if err != nil {
		writeError(w, h.logger, "rename account", err)
		return
	}
	respond.JSON(w, http.StatusOK, "account renamed", account)
}

func (h *AccountHandler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
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
	account, err := h.svc.Deactivate(r.Context(), owner, id)
	if err != nil {
		writeError(w, h.logger, "deactivate account", err)
		return
	}
	respond.JSON(w, http.StatusOK, "account deactivated", account)
}
