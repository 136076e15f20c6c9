package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campusride/internal/domain"
	"campusride/internal/middleware"
	"campusride/internal/service"
)

// PaymentHandler handles HTTP requests for payment settlement.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// PaymentResponse is the HTTP representation of a ledger entry.
type PaymentResponse struct {
	BookingID string  `json:"booking_id"`
	Method    string  `json:"method"`
	Status    string  `json:"status"`
	Fare      float64 `json:"fare"`
	PaidAt    string  `json:"paid_at,omitempty"`
	CreatedAt string  `json:"created_at"`
}

func paymentResponse(e *domain.PaymentLedgerEntry) PaymentResponse {
	return PaymentResponse{
		BookingID: e.BookingID,
		Method:    string(e.Method),
		Status:    string(e.Status),
		Fare:      e.Fare,
		PaidAt:    formatTime(e.PaidAt),
		CreatedAt: formatTime(e.CreatedAt),
	}
}

// ConfirmUpi handles POST /v1/payments/:bookingId/upi
func (h *PaymentHandler) ConfirmUpi(c *gin.Context) {
	entry, err := h.paymentService.ConfirmUpi(c.Request.Context(), c.Param("bookingId"), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, paymentResponse(entry))
}

// ConfirmCash handles POST /v1/payments/:bookingId/cash
func (h *PaymentHandler) ConfirmCash(c *gin.Context) {
	entry, err := h.paymentService.ConfirmCash(c.Request.Context(), c.Param("bookingId"), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, paymentResponse(entry))
}

// GetPayment handles GET /v1/payments/:bookingId
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	entry, err := h.paymentService.Entry(c.Request.Context(), c.Param("bookingId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, paymentResponse(entry))
}
