/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures decoupling the domain model from the API contract.
  Amounts cross the boundary as float64 for client convenience; inside the
  engine they are always decimals. Dates cross as "YYYY-MM-DD" strings,
  empty for "no date".

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/contafacil/bill-engine/billing"
	"github.com/contafacil/bill-engine/worklog"
)

// =============================================================================
// PAYABLES
// =============================================================================

// PayableDTO represents a payable entry in API responses. Synthetic rows
// (projections of unmaterialized recurring templates) carry an empty id.
type PayableDTO struct {
	ID          string  `json:"id,omitempty"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	DueDate     string  `json:"due_date"`
	Status      string  `json:"status"`
	PaymentDate string  `json:"payment_date,omitempty"`
	Origin      string  `json:"origin"`
	Synthetic   bool    `json:"synthetic,omitempty"`
}

type CreatePayableRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	DueDate     string  `json:"due_date"`
}

type UpdatePayableRequest struct {
	Description *string  `json:"description,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	DueDate     *string  `json:"due_date,omitempty"`
	PaymentDate *string  `json:"payment_date,omitempty"`
}

type PayRequest struct {
	PaidOn string `json:"paid_on"`
}

// SummaryDTO is the dashboard aggregate.
type SummaryDTO struct {
	TotalDebt    float64 `json:"total_debt"`
	DueThisMonth float64 `json:"due_this_month"`
	DueThisWeek  float64 `json:"due_this_week"`
	Overdue      int     `json:"overdue"`
	Upcoming     int     `json:"upcoming"`
}

// =============================================================================
// TEMPLATES
// =============================================================================

type TemplateDTO struct {
	ID            string  `json:"id"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
	Frequency     string  `json:"frequency"`
	DueDay        int     `json:"due_day"`
	NextDue       string  `json:"next_due,omitempty"`
	LastGenerated string  `json:"last_generated,omitempty"`
	Active        bool    `json:"active"`
}

type CreateTemplateRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Frequency   string  `json:"frequency"`
	DueDay      int     `json:"due_day"`
}

type UpdateTemplateRequest struct {
	Description *string  `json:"description,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Frequency   *string  `json:"frequency,omitempty"`
	DueDay      *int     `json:"due_day,omitempty"`
	NextDue     *string  `json:"next_due,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}

type GenerateResultDTO struct {
	Generated int `json:"generated"`
}

type ForecastDTO struct {
	WindowEnd string  `json:"window_end"`
	Total     float64 `json:"total"`
}

// =============================================================================
// WORKLOG
// =============================================================================

type EventDTO struct {
	ID             string  `json:"id"`
	Date           string  `json:"date"`
	Kind           string  `json:"kind"`
	Worker         string  `json:"worker,omitempty"`
	Equipment      string  `json:"equipment,omitempty"`
	Reference      string  `json:"reference,omitempty"`
	Amount         float64 `json:"amount"`
	RunningBalance float64 `json:"running_balance"`
}

type CreateServiceRequest struct {
	Date      string   `json:"date"`
	Worker    string   `json:"worker"`
	Equipment string   `json:"equipment"`
	DailyRate *float64 `json:"daily_rate,omitempty"` // defaults by equipment when omitted
}

type CreatePurchaseOrderRequest struct {
	Date      string  `json:"date"`
	Reference string  `json:"reference"`
	Amount    float64 `json:"amount"`
}

type DeleteEventsRequest struct {
	IDs []string `json:"ids"`
}

type DeleteEventsResultDTO struct {
	Removed int     `json:"removed"`
	Balance float64 `json:"balance"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func toPayableDTO(e billing.PayableEntry) PayableDTO {
	return PayableDTO{
		ID:          string(e.ID),
		Description: e.Description,
		Amount:      toFloat(e.Amount),
		DueDate:     e.DueDate.String(),
		Status:      string(e.Status),
		PaymentDate: e.PaymentDate.String(),
		Origin:      string(e.Origin),
		Synthetic:   e.Synthetic,
	}
}

func toPayableDTOs(entries []billing.PayableEntry) []PayableDTO {
	dtos := make([]PayableDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toPayableDTO(e)
	}
	return dtos
}

func toTemplateDTO(t billing.RecurringTemplate) TemplateDTO {
	return TemplateDTO{
		ID:            string(t.ID),
		Description:   t.Description,
		Amount:        toFloat(t.Amount),
		Frequency:     string(t.Frequency),
		DueDay:        t.DueDay,
		NextDue:       t.NextDue.String(),
		LastGenerated: t.LastGenerated.String(),
		Active:        t.Active,
	}
}

func toEventDTO(e worklog.Event) EventDTO {
	return EventDTO{
		ID:             string(e.ID),
		Date:           e.Date.String(),
		Kind:           string(e.Kind),
		Worker:         e.Worker,
		Equipment:      e.Equipment,
		Reference:      e.Reference,
		Amount:         toFloat(e.Amount),
		RunningBalance: toFloat(e.RunningBalance),
	}
}
