// Package transport exposes the escrow engine over HTTP. Callers identify
// themselves with the X-Account header; the engine decides what the account
// is allowed to do.
package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/engine"
	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/model"
	"go.uber.org/zap"
)

const accountHeader = "X-Account"

// Handler routes escrow API requests to the service.
type Handler struct {
	logger  *zap.Logger
	service EscrowService
	events  EventHistory
}

// NewHandler builds a Handler. events may be nil, in which case the event
// history endpoint is not registered.
func NewHandler(logger *zap.Logger, service EscrowService, events EventHistory) *Handler {
	return &Handler{logger: logger.Named("http"), service: service, events: events}
}

// Router builds the API route table.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logRequests)

	r.HandleFunc("/v1/raise", h.getRaise).Methods(http.MethodGet)
	r.HandleFunc("/v1/raise/parameters", h.configure).Methods(http.MethodPut)
	r.HandleFunc("/v1/raise/price", h.updatePrice).Methods(http.MethodPatch)
	r.HandleFunc("/v1/raise/caps", h.updateCaps).Methods(http.MethodPatch)
	r.HandleFunc("/v1/raise/schedule", h.updateSchedule).Methods(http.MethodPatch)
	r.HandleFunc("/v1/raise/open", h.open).Methods(http.MethodPost)
	r.HandleFunc("/v1/raise/close", h.close).Methods(http.MethodPost)
	r.HandleFunc("/v1/raise/refund-override", h.forceRefund).Methods(http.MethodPost)
	r.HandleFunc("/v1/raise/refund-override", h.cancelForceRefund).Methods(http.MethodDelete)
	r.HandleFunc("/v1/operator", h.transferOperator).Methods(http.MethodPost)
	r.HandleFunc("/v1/contributions", h.contribute).Methods(http.MethodPost)
	r.HandleFunc("/v1/refund-claims", h.claimRefund).Methods(http.MethodPost)
	r.HandleFunc("/v1/token-claims", h.claimTokens).Methods(http.MethodPost)
	r.HandleFunc("/v1/positions/{depositor}", h.getPosition).Methods(http.MethodGet)
	if h.events != nil {
		r.HandleFunc("/v1/positions/{depositor}/events", h.getEvents).Methods(http.MethodGet)
	}

	return r
}

type (
	configureRequest struct {
		OpenTime  time.Time `json:"open_time"`
		CloseTime time.Time `json:"close_time"`
		UnitPrice uint64    `json:"unit_price"`
		SoftCap   uint64    `json:"soft_cap"`
		HardCap   uint64    `json:"hard_cap"`
	}

	updatePriceRequest struct {
		UnitPrice uint64 `json:"unit_price"`
	}

	updateCapsRequest struct {
		SoftCap uint64 `json:"soft_cap"`
		HardCap uint64 `json:"hard_cap"`
	}

	updateScheduleRequest struct {
		OpenTime  time.Time `json:"open_time"`
		CloseTime time.Time `json:"close_time"`
	}

	transferOperatorRequest struct {
		Successor string `json:"successor"`
	}

	contributeRequest struct {
		Amount uint64 `json:"amount"`
	}

	refundClaimResponse struct {
		Depositor      string `json:"depositor"`
		RefundedAmount uint64 `json:"refunded_amount"`
	}

	tokenClaimResponse struct {
		Depositor    string `json:"depositor"`
		ClaimedUnits uint64 `json:"claimed_units"`
	}

	raiseResponse struct {
		Parameters model.RaiseParameters `json:"parameters"`
		State      model.RaiseState      `json:"state"`
		Positions  int                   `json:"positions"`
	}

	errorBody struct {
		Error string `json:"error"`
	}
)

func (h *Handler) configure(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.account(w, r)
	if !ok {
		return
	}

	var req configureRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.service.Configure(r.Context(), caller, model.RaiseParameters{
		OpenTime:  req.OpenTime,
		CloseTime: req.CloseTime,
		UnitPrice: req.UnitPrice,
		SoftCap:   req.SoftCap,
		HardCap:   req.HardCap,
	})
	h.respond(w, r, err, http.StatusNoContent, nil)
}

func (h *Handler) updatePrice(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.account(w, r)
	if !ok {
		return
	}

	var req updatePriceRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.service.UpdatePrice(r.Context(), caller, req.UnitPrice)
	h.respond(w, r, err, http.StatusNoContent, nil)
}

func (h *Handler) updateCaps(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.account(w, r)
	if !ok {
		return
	}

	var req updateCapsRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.service.UpdateCaps(r.Context(), caller, req.SoftCap, req.HardCap)
	h.respond(w, r, err, http.StatusNoContent, nil)
}

func (h *Handler) updateSchedule(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.account(w, r)
	if !ok {
		return
	}

	var req updateScheduleRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.service.UpdateSchedule(r.Context(), caller, req.OpenTime, req.CloseTime)
	h.respond(w, r, err, http.StatusNoContent, nil)
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.account(w, r)
	if !ok {
		return
	}
	h.respond(w, r, h.service.Open(r.Context(), caller), http.StatusNoContent, nil)
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.account(w, r)
	if !ok {
		return
	}
	h.respond(w, r, h.service.Close(r.Context(), caller), http.StatusNoContent, nil)
}

func (h *Handler) forceRefund(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.account(w, r)
	if !ok {
		return
	}
	h.respond(w, r, h.service.ForceRefund(r.Context(), caller), http.StatusNoContent, nil)
}

func (h *Handler) cancelForceRefund(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.account(w, r)
	if !ok {
		return
	}
	h.respond(w, r, h.service.CancelForceRefund(r.Context(), caller), http.StatusNoContent, nil)
}

func (h *Handler) transferOperator(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.account(w, r)
	if !ok {
		return
	}

	var req transferOperatorRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.service.TransferOperator(r.Context(), caller, req.Successor)
	h.respond(w, r, err, http.StatusNoContent, nil)
}

func (h *Handler) contribute(w http.ResponseWriter, r *http.Request) {
	depositor, ok := h.account(w, r)
	if !ok {
		return
	}

	var req contributeRequest
	if !h.decode(w, r, &req) {
		return
	}

	pos, err := h.service.Contribute(r.Context(), depositor, req.Amount)
	h.respond(w, r, err, http.StatusCreated, pos)
}

func (h *Handler) claimRefund(w http.ResponseWriter, r *http.Request) {
	depositor, ok := h.account(w, r)
	if !ok {
		return
	}

	amount, err := h.service.ClaimRefund(r.Context(), depositor)
	h.respond(w, r, err, http.StatusOK, refundClaimResponse{Depositor: depositor, RefundedAmount: amount})
}

func (h *Handler) claimTokens(w http.ResponseWriter, r *http.Request) {
	depositor, ok := h.account(w, r)
	if !ok {
		return
	}

	units, err := h.service.ClaimTokens(r.Context(), depositor)
	h.respond(w, r, err, http.StatusOK, tokenClaimResponse{Depositor: depositor, ClaimedUnits: units})
}

func (h *Handler) getRaise(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.respond(w, r, err, 0, nil)
		return
	}

	h.respond(w, r, nil, http.StatusOK, raiseResponse{
		Parameters: snapshot.Parameters,
		State:      snapshot.State,
		Positions:  len(snapshot.Positions),
	})
}

func (h *Handler) getPosition(w http.ResponseWriter, r *http.Request) {
	depositor := mux.Vars(r)["depositor"]

	pos, found, err := h.service.Position(r.Context(), depositor)
	if err != nil {
		h.respond(w, r, err, 0, nil)
		return
	}
	if !found {
		h.writeError(w, http.StatusNotFound, "position not found")
		return
	}

	h.respond(w, r, nil, http.StatusOK, pos)
}

const defaultEventLimit = 100

func (h *Handler) getEvents(w http.ResponseWriter, r *http.Request) {
	depositor := mux.Vars(r)["depositor"]

	limit := uint64(defaultEventLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed == 0 {
			h.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	events, err := h.events.EventsByDepositor(r.Context(), depositor, limit)
	if err != nil {
		h.respond(w, r, err, 0, nil)
		return
	}
	if events == nil {
		events = []model.Event{}
	}

	h.respond(w, r, nil, http.StatusOK, events)
}

func (h *Handler) account(w http.ResponseWriter, r *http.Request) (string, bool) {
	account := r.Header.Get(accountHeader)
	if account == "" {
		h.writeError(w, http.StatusUnauthorized, "missing "+accountHeader+" header")
		return "", false
	}
	return account, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, err error, okStatus int, body any) {
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err))
		}
		h.writeError(w, status, err.Error())
		return
	}

	if body == nil || okStatus == http.StatusNoContent {
		w.WriteHeader(okStatus)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(okStatus)
	if encodeErr := json.NewEncoder(w).Encode(body); encodeErr != nil {
		h.logger.Error("encode response failed", zap.Error(encodeErr))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: message})
}

// statusFor maps domain errors onto HTTP statuses: authorization failures
// are 403, lifecycle conflicts 409, rejected inputs 422, the rest 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrNotOperator):
		return http.StatusForbidden

	case errors.Is(err, engine.ErrInvalidSchedule),
		errors.Is(err, engine.ErrInvalidPricing),
		errors.Is(err, engine.ErrInvalidCaps),
		errors.Is(err, engine.ErrExceedsHardCap),
		errors.Is(err, engine.ErrAmountTooSmall),
		errors.Is(err, engine.ErrInvalidSuccessor),
		errors.Is(err, engine.ErrNothingToRefund),
		errors.Is(err, engine.ErrNothingToClaim):
		return http.StatusUnprocessableEntity

	case errors.Is(err, engine.ErrNotDormant),
		errors.Is(err, engine.ErrNotReady),
		errors.Is(err, engine.ErrWindowPassed),
		errors.Is(err, engine.ErrNotOpen),
		errors.Is(err, engine.ErrWindowClosed),
		errors.Is(err, engine.ErrAlreadyRefunding),
		errors.Is(err, engine.ErrNotRefunding),
		errors.Is(err, engine.ErrSettlementStarted),
		errors.Is(err, engine.ErrRefundsNotActive),
		errors.Is(err, engine.ErrRefundsActive),
		errors.Is(err, engine.ErrNotSuccessful),
		errors.Is(err, engine.ErrAlreadyRefunded),
		errors.Is(err, engine.ErrAlreadyClaimed):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		h.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.status),
			zap.Duration("duration", time.Since(started)))
	})
}
