/*
handlers.go - HTTP handlers for the bill-tracking engine

PURPOSE:
  Exposes the billing and worklog services over REST. Handlers parse and
  validate input, delegate to the services, and map domain errors onto
  HTTP statuses. No business rule lives here.

ENDPOINTS:
  Payables:
    GET    /api/payables?filter=         pending|overdue|upcoming|paid
    POST   /api/payables                 Add a manual bill
    PUT    /api/payables/{id}            Edit (collection query param)
    DELETE /api/payables/{id}            Delete (collection query param)
    POST   /api/payables/{id}/pay        Mark paid
    GET    /api/payables/summary         Dashboard totals

  Templates:
    GET    /api/templates
    POST   /api/templates
    PUT    /api/templates/{id}
    DELETE /api/templates/{id}
    POST   /api/templates/generate       Materialize due templates now
    GET    /api/templates/forecast?until=YYYY-MM-DD

  Worklog:
    GET    /api/worklog
    POST   /api/worklog/services
    POST   /api/worklog/purchase-orders
    POST   /api/worklog/delete           Batch delete by ids

  Reports:
    GET    /api/reports/{payables|historical|worklog}.csv

ERROR HANDLING:
  - 400: validation errors, invalid input
  - 404: unknown id
  - 409: paying an already-paid entry
  - 500: internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/contafacil/bill-engine/billing"
	"github.com/contafacil/bill-engine/report"
	"github.com/contafacil/bill-engine/worklog"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Billing *billing.Service
	Worklog *worklog.Service
	Log     zerolog.Logger
}

func NewHandler(billingSvc *billing.Service, worklogSvc *worklog.Service, log zerolog.Logger) *Handler {
	return &Handler{
		Billing: billingSvc,
		Worklog: worklogSvc,
		Log:     log.With().Str("component", "api").Logger(),
	}
}

// =============================================================================
// PAYABLE HANDLERS
// =============================================================================

// ListPayables returns entries matching ?filter=, default pending.
func (h *Handler) ListPayables(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("filter")
	if raw == "" {
		raw = string(billing.FilterPending)
	}
	filter, err := billing.ParseFilter(raw)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayableDTOs(h.Billing.QueryPayables(filter)))
}

// CreatePayable adds a manual bill to the outstanding collection.
func (h *Handler) CreatePayable(w http.ResponseWriter, r *http.Request) {
	var req CreatePayableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	due, err := billing.ParseDate(req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid due_date (use YYYY-MM-DD)", err)
		return
	}

	id, err := h.Billing.AddPayable(r.Context(), req.Description, decimal.NewFromFloat(req.Amount), due)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": string(id)})
}

// UpdatePayable edits an entry in place. ?collection= picks the partition,
// default outstanding.
func (h *Handler) UpdatePayable(w http.ResponseWriter, r *http.Request) {
	id := billing.EntryID(chi.URLParam(r, "id"))
	col := collectionParam(r)

	var req UpdatePayableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	update := billing.EntryUpdate{Description: req.Description}
	if req.Amount != nil {
		amount := decimal.NewFromFloat(*req.Amount)
		update.Amount = &amount
	}
	if req.DueDate != nil {
		due, err := billing.ParseDate(*req.DueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid due_date (use YYYY-MM-DD)", err)
			return
		}
		update.DueDate = &due
	}
	if req.PaymentDate != nil {
		paid, err := billing.ParseDate(*req.PaymentDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid payment_date (use YYYY-MM-DD)", err)
			return
		}
		update.PaymentDate = &paid
	}

	if err := h.Billing.EditPayable(r.Context(), col, id, update); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeletePayable permanently removes an entry. The client is responsible
// for confirming with the user first.
func (h *Handler) DeletePayable(w http.ResponseWriter, r *http.Request) {
	id := billing.EntryID(chi.URLParam(r, "id"))
	if err := h.Billing.DeletePayable(r.Context(), collectionParam(r), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// PayPayable marks an entry paid, moving it to the historical collection.
func (h *Handler) PayPayable(w http.ResponseWriter, r *http.Request) {
	id := billing.EntryID(chi.URLParam(r, "id"))

	var req PayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	paidOn, err := billing.ParseDate(req.PaidOn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid paid_on (use YYYY-MM-DD)", err)
		return
	}
	if paidOn.IsZero() {
		paidOn = billing.Today()
	}

	if err := h.Billing.MarkPaid(r.Context(), id, paidOn); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "paid", "paid_on": paidOn.String()})
}

// GetSummary returns the dashboard totals.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sum := h.Billing.Summarize()
	writeJSON(w, http.StatusOK, SummaryDTO{
		TotalDebt:    toFloat(sum.TotalDebt),
		DueThisMonth: toFloat(sum.DueThisMonth),
		DueThisWeek:  toFloat(sum.DueThisWeek),
		Overdue:      sum.Overdue,
		Upcoming:     sum.Upcoming,
	})
}

// =============================================================================
// TEMPLATE HANDLERS
// =============================================================================

func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates := h.Billing.Templates()
	dtos := make([]TemplateDTO, len(templates))
	for i, t := range templates {
		dtos[i] = toTemplateDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	freq, err := billing.ParseFrequency(req.Frequency)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	id, err := h.Billing.AddTemplate(r.Context(), req.Description, decimal.NewFromFloat(req.Amount), freq, req.DueDay)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": string(id)})
}

func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id := billing.TemplateID(chi.URLParam(r, "id"))

	var req UpdateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	update := billing.TemplateUpdate{
		Description: req.Description,
		DueDay:      req.DueDay,
		Active:      req.Active,
	}
	if req.Amount != nil {
		amount := decimal.NewFromFloat(*req.Amount)
		update.Amount = &amount
	}
	if req.Frequency != nil {
		freq, err := billing.ParseFrequency(*req.Frequency)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		update.Frequency = &freq
	}
	if req.NextDue != nil {
		next, err := billing.ParseDate(*req.NextDue)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid next_due (use YYYY-MM-DD)", err)
			return
		}
		update.NextDue = &next
	}

	if err := h.Billing.EditTemplate(r.Context(), id, update); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := billing.TemplateID(chi.URLParam(r, "id"))
	if err := h.Billing.DeleteTemplate(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GenerateTemplates materializes every due template now. Same contract as
// the scheduled catch-up, so clicking it twice cannot duplicate entries.
func (h *Handler) GenerateTemplates(w http.ResponseWriter, r *http.Request) {
	count, err := h.Billing.GenerateDue(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate entries", err)
		return
	}
	writeJSON(w, http.StatusOK, GenerateResultDTO{Generated: count})
}

// ForecastTemplates sums unmaterialized recurring amounts due by ?until=.
func (h *Handler) ForecastTemplates(w http.ResponseWriter, r *http.Request) {
	until, err := billing.ParseDate(r.URL.Query().Get("until"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid until (use YYYY-MM-DD)", err)
		return
	}
	if until.IsZero() {
		until = billing.Today().EndOfMonth()
	}
	writeJSON(w, http.StatusOK, ForecastDTO{
		WindowEnd: until.String(),
		Total:     toFloat(h.Billing.Forecast(until)),
	})
}

// =============================================================================
// WORKLOG HANDLERS
// =============================================================================

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events := h.Worklog.Events()
	dtos := make([]EventDTO, len(events))
	for i, e := range events {
		dtos[i] = toEventDTO(e)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events":  dtos,
		"balance": toFloat(h.Worklog.Balance()),
	})
}

// CreateService logs a rendered service. The daily rate defaults by
// equipment when omitted.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := billing.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	rate := worklog.DefaultDailyRate(req.Equipment)
	if req.DailyRate != nil {
		rate = decimal.NewFromFloat(*req.DailyRate)
	}

	e, err := h.Worklog.AppendService(r.Context(), date, req.Worker, req.Equipment, rate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventDTO(e))
}

func (h *Handler) CreatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req CreatePurchaseOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := billing.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	e, err := h.Worklog.AppendPurchaseOrder(r.Context(), date, req.Reference, decimal.NewFromFloat(req.Amount))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventDTO(e))
}

// DeleteEvents removes a batch of events and returns the recomputed
// balance.
func (h *Handler) DeleteEvents(w http.ResponseWriter, r *http.Request) {
	var req DeleteEventsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	ids := make([]worklog.EventID, len(req.IDs))
	for i, id := range req.IDs {
		ids[i] = worklog.EventID(id)
	}

	removed, err := h.Worklog.Delete(r.Context(), ids)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete events", err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteEventsResultDTO{
		Removed: removed,
		Balance: toFloat(h.Worklog.Balance()),
	})
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// ExportPayablesCSV streams the pending payables as CSV, built purely from
// the query snapshot.
func (h *Handler) ExportPayablesCSV(w http.ResponseWriter, r *http.Request) {
	writeCSV(w, "contas.csv", report.PayablesCSV(h.Billing.QueryPayables(billing.FilterPending)))
}

func (h *Handler) ExportHistoricalCSV(w http.ResponseWriter, r *http.Request) {
	writeCSV(w, "historico.csv", report.PayablesCSV(h.Billing.QueryPayables(billing.FilterPaid)))
}

func (h *Handler) ExportWorklogCSV(w http.ResponseWriter, r *http.Request) {
	writeCSV(w, "servicos.csv", report.WorklogCSV(h.Worklog.Events()))
}

// =============================================================================
// HELPERS
// =============================================================================

func collectionParam(r *http.Request) billing.Collection {
	if billing.Collection(r.URL.Query().Get("collection")) == billing.CollectionHistorical {
		return billing.CollectionHistorical
	}
	return billing.CollectionOutstanding
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeCSV(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps billing/worklog error kinds onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, billing.ErrNotFound), errors.Is(err, worklog.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, billing.ErrAlreadyPaid):
		writeError(w, http.StatusConflict, "Entry already paid", err)
	case errors.Is(err, billing.ErrValidation):
		writeError(w, http.StatusBadRequest, "Validation failed", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
