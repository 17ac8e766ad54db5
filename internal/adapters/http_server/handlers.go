package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"hotelos/internal/app"
	"hotelos/internal/domain"
)

type CheckInAPI interface {
	CheckIn(ctx context.Context, id domain.Identity, req app.CheckInRequest) (app.CheckInResult, error)
}

type CheckOutAPI interface {
	SearchActiveStay(ctx context.Context, id domain.Identity, q app.StayQuery) (app.StayQuote, error)
	CheckOut(ctx context.Context, id domain.Identity, req app.CheckOutRequest) (app.CheckOutResult, error)
}

type QueryAPI interface {
	AvailableRooms(ctx context.Context, id domain.Identity) ([]domain.Room, error)
	GuestByMobile(ctx context.Context, id domain.Identity, mobile string) (domain.Guest, error)
}

type Handlers struct {
	CheckIn  CheckInAPI
	CheckOut CheckOutAPI
	Q        QueryAPI

	validate *validator.Validate
}

func NewHandlers(ci CheckInAPI, co CheckOutAPI, q QueryAPI) *Handlers {
	return &Handlers{CheckIn: ci, CheckOut: co, Q: q, validate: validator.New()}
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeError maps the domain taxonomy onto HTTP statuses. Validation and
// conflict problems carry specific messages; invariant and persistence
// failures get a generic body with the detail only in logs.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeProblem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, domain.ErrRoomUnavailable):
		writeProblem(w, http.StatusConflict, "Room Unavailable", "the selected room is no longer available")
	case errors.Is(err, domain.ErrNoActiveStay):
		writeProblem(w, http.StatusNotFound, "No Active Stay", "no active stay matches the request")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Operation Failed", "operation failed, please retry")
	}
}

func mustIdentity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "missing session identity")
	}
	return id, ok
}

// ---- check-in ----

type checkInPayload struct {
	GuestName      string `json:"guest_name" validate:"required"`
	Mobile         string `json:"mobile" validate:"required,min=10"`
	Email          string `json:"email" validate:"omitempty,email"`
	CompanyName    string `json:"company_name"`
	GSTNumber      string `json:"gst_number"`
	Address        string `json:"address"`
	IDType         string `json:"id_type"`
	IDNumber       string `json:"id_number"`
	City           string `json:"city"`
	State          string `json:"state"`
	RoomID         int64  `json:"room_id" validate:"required,gt=0"`
	Nights         int    `json:"nights" validate:"omitempty,gte=1,lte=30"`
	AdvancePayment int64  `json:"advance_payment" validate:"gte=0"`
	PaymentMode    string `json:"payment_mode" validate:"omitempty,oneof=cash upi card"`
}

type checkInResponse struct {
	StayCode    string `json:"stay_code"`
	GuestID     int64  `json:"guest_id"`
	QuotedTotal int64  `json:"quoted_total"`
	PendingDue  int64  `json:"pending_due"`
}

func (h *Handlers) checkIn(w http.ResponseWriter, r *http.Request) {
	id, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	var p checkInPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(p); err != nil {
		writeProblem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	res, err := h.CheckIn.CheckIn(r.Context(), id, app.CheckInRequest{
		GuestName:      p.GuestName,
		Mobile:         p.Mobile,
		Email:          p.Email,
		CompanyName:    p.CompanyName,
		GSTNumber:      p.GSTNumber,
		Address:        p.Address,
		IDType:         p.IDType,
		IDNumber:       p.IDNumber,
		City:           p.City,
		State:          p.State,
		RoomID:         p.RoomID,
		Nights:         p.Nights,
		AdvancePayment: domain.Money(p.AdvancePayment),
		PaymentMode:    p.PaymentMode,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, checkInResponse{
		StayCode:    res.StayCode,
		GuestID:     res.GuestID,
		QuotedTotal: int64(res.QuotedTotal),
		PendingDue:  int64(res.PendingDue),
	})
}

// ---- active-stay search / settlement quote ----

type billResponse struct {
	Nights      int   `json:"nights"`
	BaseRate    int64 `json:"base_rate"`
	RoomCharge  int64 `json:"room_charge"`
	TaxRate     int   `json:"tax_rate"`
	TaxAmount   int64 `json:"tax_amount"`
	GrandTotal  int64 `json:"grand_total"`
	AlreadyPaid int64 `json:"already_paid"`
	PendingDue  int64 `json:"pending_due"`
}

type stayQuoteResponse struct {
	StayID       int64        `json:"stay_id"`
	StayCode     string       `json:"stay_code"`
	GuestName    string       `json:"guest_name"`
	GuestMobile  string       `json:"guest_mobile"`
	RoomNumber   string       `json:"room_number"`
	RoomCategory string       `json:"room_category"`
	CheckIn      time.Time    `json:"check_in"`
	Bill         billResponse `json:"bill"`
}

func toBillResponse(b domain.Bill) billResponse {
	return billResponse{
		Nights:      b.Nights,
		BaseRate:    int64(b.BaseRate),
		RoomCharge:  int64(b.RoomCharge),
		TaxRate:     b.TaxRate,
		TaxAmount:   int64(b.TaxAmount),
		GrandTotal:  int64(b.GrandTotal),
		AlreadyPaid: int64(b.AlreadyPaid),
		PendingDue:  int64(b.PendingDue),
	}
}

func (h *Handlers) searchActiveStay(w http.ResponseWriter, r *http.Request) {
	id, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	q := app.StayQuery{
		RoomNumber: r.URL.Query().Get("room_number"),
		StayCode:   r.URL.Query().Get("stay_code"),
	}
	quote, err := h.CheckOut.SearchActiveStay(r.Context(), id, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stayQuoteResponse{
		StayID:       quote.StayID,
		StayCode:     quote.StayCode,
		GuestName:    quote.GuestName,
		GuestMobile:  quote.GuestMobile,
		RoomNumber:   quote.RoomNumber,
		RoomCategory: quote.RoomCategory,
		CheckIn:      quote.CheckIn,
		Bill:         toBillResponse(quote.Bill),
	})
}

// ---- checkout ----

type checkOutPayload struct {
	Discount    int64  `json:"discount" validate:"gte=0"`
	PaymentMode string `json:"payment_mode" validate:"omitempty,oneof=cash upi card"`
}

type checkOutResponse struct {
	StayCode      string       `json:"stay_code"`
	FinalPayable  int64        `json:"final_payable"`
	Discount      int64        `json:"discount"`
	CreditCarried int64        `json:"credit_carried,omitempty"`
	NewRoomStatus string       `json:"new_room_status"`
	Bill          billResponse `json:"bill"`
}

func (h *Handlers) checkOut(w http.ResponseWriter, r *http.Request) {
	id, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	stayID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || stayID <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "stay id must be a positive number")
		return
	}
	// Both fields are optional, so a body-less request is legal.
	var p checkOutPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(p); err != nil {
		writeProblem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	res, err := h.CheckOut.CheckOut(r.Context(), id, app.CheckOutRequest{
		StayID:      stayID,
		Discount:    domain.Money(p.Discount),
		PaymentMode: p.PaymentMode,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, checkOutResponse{
		StayCode:      res.StayCode,
		FinalPayable:  int64(res.FinalPayable),
		Discount:      int64(res.Discount),
		CreditCarried: int64(res.CreditCarried),
		NewRoomStatus: string(res.NewRoomStatus),
		Bill:          toBillResponse(res.Bill),
	})
}

// ---- lookups ----

type roomResponse struct {
	ID         int64  `json:"id"`
	RoomNumber string `json:"room_number"`
	Floor      int    `json:"floor"`
	Category   string `json:"category"`
	BaseRate   int64  `json:"base_rate"`
}

func (h *Handlers) availableRooms(w http.ResponseWriter, r *http.Request) {
	id, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	rooms, err := h.Q.AvailableRooms(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]roomResponse, 0, len(rooms))
	for _, rm := range rooms {
		out = append(out, roomResponse{
			ID:         rm.ID,
			RoomNumber: rm.RoomNumber,
			Floor:      rm.Floor,
			Category:   rm.Category,
			BaseRate:   int64(rm.BaseRate),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": out})
}

type guestResponse struct {
	ID          int64  `json:"id"`
	FullName    string `json:"full_name"`
	Mobile      string `json:"mobile"`
	Email       string `json:"email,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	GSTNumber   string `json:"gst_number,omitempty"`
	Address     string `json:"address,omitempty"`
	IDType      string `json:"id_type,omitempty"`
	IDNumber    string `json:"id_number,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
}

func (h *Handlers) guestLookup(w http.ResponseWriter, r *http.Request) {
	id, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	mobile := r.URL.Query().Get("mobile")
	if mobile == "" {
		writeProblem(w, http.StatusBadRequest, "Validation Failed", "mobile query parameter is required")
		return
	}
	g, err := h.Q.GuestByMobile(r.Context(), id, mobile)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, guestResponse{
		ID:          g.ID,
		FullName:    g.FullName,
		Mobile:      g.Mobile,
		Email:       g.Email,
		CompanyName: g.CompanyName,
		GSTNumber:   g.GSTNumber,
		Address:     g.Address,
		IDType:      g.IDType,
		IDNumber:    g.IDNumber,
		City:        g.City,
		State:       g.State,
	})
}
