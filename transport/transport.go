// Package transport exposes bank-account commands and queries over a
// hand-written JSON/HTTP surface. This module has no protoc/buf step
// available to generate a gRPC or Connect-RPC service, so the unary
// network surface is a thin net/http handler instead — every request
// and response is a JSON envelope and every status code maps from the
// same bankaccount error taxonomy the use case already returns.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/bankledger/eventbank/bankaccount"
	"github.com/bankledger/eventbank/usecase"
)

// errorStatus maps a domain or use-case error to the HTTP status code
// that reports it, falling back to 500 for anything unrecognized.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, usecase.ErrBankAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, bankaccount.ErrInvalidID),
		errors.Is(err, bankaccount.ErrInvalidName),
		errors.Is(err, bankaccount.ErrDepositZero),
		errors.Is(err, bankaccount.ErrNegativeBalance),
		errors.Is(err, bankaccount.ErrAlreadyOpened),
		errors.Is(err, bankaccount.ErrAlreadyClosed),
		errors.Is(err, bankaccount.ErrNotYetOpened),
		errors.Is(err, bankaccount.ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Handler is the HTTP command/query surface for one bank account use
// case.
type Handler struct {
	mux    *http.ServeMux
	uc     *usecase.BankAccount
	logger zerolog.Logger
}

// NewHandler builds the routed handler. Routes:
//
//	POST /accounts             open an account
//	POST /accounts/{id}/update update an account's name
//	POST /accounts/{id}/deposit
//	POST /accounts/{id}/withdraw
//	POST /accounts/{id}/close
//	GET  /accounts/{id}        current state
func NewHandler(uc *usecase.BankAccount, logger zerolog.Logger) *Handler {
	h := &Handler{uc: uc, logger: logger}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /accounts", h.handleOpen)
	mux.HandleFunc("POST /accounts/{id}/update", h.handleUpdate)
	mux.HandleFunc("POST /accounts/{id}/deposit", h.handleDeposit)
	mux.HandleFunc("POST /accounts/{id}/withdraw", h.handleWithdraw)
	mux.HandleFunc("POST /accounts/{id}/close", h.handleClose)
	mux.HandleFunc("GET /accounts/{id}", h.handleGet)
	h.mux = mux
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type accountView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Balance   int32     `json:"balance"`
	Closed    bool      `json:"closed"`
	Version   uint64    `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toView(agg bankaccount.Aggregate) accountView {
	if agg.State == nil {
		return accountView{Version: agg.Version}
	}
	return accountView{
		ID:        agg.State.ID.String(),
		Name:      agg.State.Name.String(),
		Balance:   agg.State.Balance,
		Closed:    agg.State.Closed,
		Version:   agg.Version,
		UpdatedAt: agg.State.UpdatedAt,
	}
}

type openRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type amountRequest struct {
	Amount int32 `json:"amount"`
}

type updateRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := bankaccount.ParseID(req.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	name, err := bankaccount.ParseName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.handle(w, r.Context(), bankaccount.NewOpen(id, name))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name, err := bankaccount.ParseName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.handle(w, r.Context(), bankaccount.NewUpdate(id, name))
}

func (h *Handler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.handle(w, r.Context(), bankaccount.NewDeposit(id, req.Amount))
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.handle(w, r.Context(), bankaccount.NewWithdraw(id, req.Amount))
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	h.handle(w, r.Context(), bankaccount.NewClose(id))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	agg, err := h.uc.Get(r.Context(), id)
	if err != nil {
		h.writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toView(agg))
}

func (h *Handler) handle(w http.ResponseWriter, ctx context.Context, cmd bankaccount.Command) {
	agg, err := h.uc.Handle(ctx, cmd)
	if err != nil {
		h.writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toView(agg))
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (bankaccount.ID, bool) {
	id, err := bankaccount.ParseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return bankaccount.ID{}, false
	}
	return id, true
}

func (h *Handler) writeUseCaseError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Msg("bank account command failed")
	}
	writeError(w, status, err)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
