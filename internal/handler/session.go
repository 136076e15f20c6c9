package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campusride/internal/domain"
	"campusride/internal/middleware"
	"campusride/internal/service"
)

// SessionHandler handles HTTP requests for ride sessions.
type SessionHandler struct {
	coordinator *service.Coordinator
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(coordinator *service.Coordinator) *SessionHandler {
	return &SessionHandler{coordinator: coordinator}
}

// RequestRideRequest is the HTTP request body for requesting a ride.
type RequestRideRequest struct {
	PickupLat      float64 `json:"pickup_lat"`
	PickupLng      float64 `json:"pickup_lng"`
	DestinationLat float64 `json:"destination_lat"`
	DestinationLng float64 `json:"destination_lng"`
}

// AcceptRequest is the HTTP request body for accepting a ride.
type AcceptRequest struct {
	DriverID string `json:"driver_id"`
}

// CancelRequest is the HTTP request body for cancelling a ride.
type CancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// SessionResponse is the HTTP representation of a ride session.
type SessionResponse struct {
	BookingID      string  `json:"booking_id"`
	StudentID      string  `json:"student_id"`
	DriverID       string  `json:"driver_id,omitempty"`
	Phase          string  `json:"phase"`
	Fare           float64 `json:"fare"`
	PickupLat      float64 `json:"pickup_lat"`
	PickupLng      float64 `json:"pickup_lng"`
	DestinationLat float64 `json:"destination_lat"`
	DestinationLng float64 `json:"destination_lng"`
	RequestedAt    string  `json:"requested_at,omitempty"`
	AcceptedAt     string  `json:"accepted_at,omitempty"`
	StartedAt      string  `json:"started_at,omitempty"`
	CompletedAt    string  `json:"completed_at,omitempty"`
	CancelledAt    string  `json:"cancelled_at,omitempty"`
	CancelReason   string  `json:"cancel_reason,omitempty"`
}

func sessionResponse(s *domain.RideSession) SessionResponse {
	return SessionResponse{
		BookingID:      s.BookingID,
		StudentID:      s.StudentID,
		DriverID:       s.DriverID,
		Phase:          string(s.Phase),
		Fare:           s.Fare,
		PickupLat:      s.PickupLat,
		PickupLng:      s.PickupLng,
		DestinationLat: s.DestinationLat,
		DestinationLng: s.DestinationLng,
		RequestedAt:    formatTime(s.RequestedAt),
		AcceptedAt:     formatTime(s.AcceptedAt),
		StartedAt:      formatTime(s.StartedAt),
		CompletedAt:    formatTime(s.CompletedAt),
		CancelledAt:    formatTime(s.CancelledAt),
		CancelReason:   s.CancelReason,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// RequestRide handles POST /v1/sessions
func (h *SessionHandler) RequestRide(c *gin.Context) {
	var req RequestRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	caller := middleware.CallerFrom(c)

	session, err := h.coordinator.RequestRide(c.Request.Context(), service.RequestRideRequest{
		StudentID:      caller.ID,
		PickupLat:      req.PickupLat,
		PickupLng:      req.PickupLng,
		DestinationLat: req.DestinationLat,
		DestinationLng: req.DestinationLng,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, sessionResponse(session))
}

// Accept handles POST /v1/sessions/:bookingId/accept
func (h *SessionHandler) Accept(c *gin.Context) {
	var req AcceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	session, err := h.coordinator.Accept(c.Request.Context(), service.AcceptRequest{
		BookingID: c.Param("bookingId"),
		DriverID:  req.DriverID,
		Caller:    middleware.CallerFrom(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, sessionResponse(session))
}

// Start handles POST /v1/sessions/:bookingId/start
func (h *SessionHandler) Start(c *gin.Context) {
	session, err := h.coordinator.Start(c.Request.Context(), service.TransitionRequest{
		BookingID: c.Param("bookingId"),
		Caller:    middleware.CallerFrom(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, sessionResponse(session))
}

// Complete handles POST /v1/sessions/:bookingId/complete
func (h *SessionHandler) Complete(c *gin.Context) {
	session, err := h.coordinator.Complete(c.Request.Context(), service.TransitionRequest{
		BookingID: c.Param("bookingId"),
		Caller:    middleware.CallerFrom(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, sessionResponse(session))
}

// Cancel handles POST /v1/sessions/:bookingId/cancel
func (h *SessionHandler) Cancel(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	session, err := h.coordinator.Cancel(c.Request.Context(), service.CancelRequest{
		BookingID: c.Param("bookingId"),
		Caller:    middleware.CallerFrom(c),
		Reason:    req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, sessionResponse(session))
}

// GetSession handles GET /v1/sessions/:bookingId
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.coordinator.Session(c.Request.Context(), c.Param("bookingId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, sessionResponse(session))
}

// GetAll handles GET /v1/sessions. With ?participant_id= it returns
// only that student's or driver's sessions.
func (h *SessionHandler) GetAll(c *gin.Context) {
	var (
		sessions []*domain.RideSession
		err      error
	)

	if participantID := c.Query("participant_id"); participantID != "" {
		sessions, err = h.coordinator.SessionsByParticipant(c.Request.Context(), participantID)
	} else {
		sessions, err = h.coordinator.Sessions(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		response = append(response, sessionResponse(s))
	}

	respondJSON(c, http.StatusOK, response)
}
