package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campusride/internal/domain"
	"campusride/internal/middleware"
	"campusride/internal/service"
)

// ChatHandler handles HTTP requests for chat rooms and messages.
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// SendMessageRequest is the HTTP request body for sending a message.
type SendMessageRequest struct {
	SenderType string `json:"sender_type"` // STUDENT or DRIVER
	Text       string `json:"text"`
}

// MessageResponse is the HTTP representation of a chat message.
type MessageResponse struct {
	ID         string `json:"id"`
	BookingID  string `json:"booking_id"`
	SenderType string `json:"sender_type"`
	SenderID   string `json:"sender_id"`
	Text       string `json:"text"`
	Status     string `json:"status"`
	SentAt     string `json:"sent_at"`
}

// RoomResponse is the HTTP representation of a chat room.
type RoomResponse struct {
	BookingID       string `json:"booking_id"`
	StudentID       string `json:"student_id"`
	DriverID        string `json:"driver_id"`
	IsActive        bool   `json:"is_active"`
	LastMessage     string `json:"last_message,omitempty"`
	LastMessageTime string `json:"last_message_time,omitempty"`
	CreatedAt       string `json:"created_at"`
	DeactivatedAt   string `json:"deactivated_at,omitempty"`
}

func messageResponse(m *domain.ChatMessage) MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		BookingID:  m.BookingID,
		SenderType: string(m.SenderType),
		SenderID:   m.SenderID,
		Text:       m.Text,
		Status:     string(m.Status),
		SentAt:     m.SentAt.Format("2006-01-02T15:04:05.000000Z07:00"),
	}
}

func roomResponse(r *domain.ChatRoom) RoomResponse {
	return RoomResponse{
		BookingID:       r.BookingID,
		StudentID:       r.StudentID,
		DriverID:        r.DriverID,
		IsActive:        r.IsActive,
		LastMessage:     r.LastMessage,
		LastMessageTime: formatTime(r.LastMessageTime),
		CreatedAt:       formatTime(r.CreatedAt),
		DeactivatedAt:   formatTime(r.DeactivatedAt),
	}
}

// SendMessage handles POST /v1/rooms/:bookingId/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	caller := middleware.CallerFrom(c)

	msg, err := h.chatService.SendMessage(c.Request.Context(), service.SendMessageRequest{
		BookingID:  c.Param("bookingId"),
		SenderType: domain.SenderType(req.SenderType),
		SenderID:   caller.ID,
		Text:       req.Text,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, messageResponse(msg))
}

// GetMessages handles GET /v1/rooms/:bookingId/messages
func (h *ChatHandler) GetMessages(c *gin.Context) {
	messages, err := h.chatService.Messages(c.Request.Context(), c.Param("bookingId"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		response = append(response, messageResponse(m))
	}

	respondJSON(c, http.StatusOK, response)
}

// GetRoom handles GET /v1/rooms/:bookingId
func (h *ChatHandler) GetRoom(c *gin.Context) {
	room, err := h.chatService.Room(c.Request.Context(), c.Param("bookingId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, roomResponse(room))
}

// GetRooms handles GET /v1/rooms?participant_id=
func (h *ChatHandler) GetRooms(c *gin.Context) {
	participantID := c.Query("participant_id")

	rooms, err := h.chatService.RoomsByParticipant(c.Request.Context(), participantID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		response = append(response, roomResponse(r))
	}

	respondJSON(c, http.StatusOK, response)
}

// MarkDelivered handles POST /v1/messages/:id/delivered
func (h *ChatHandler) MarkDelivered(c *gin.Context) {
	msg, err := h.chatService.MarkDelivered(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, messageResponse(msg))
}

// MarkRead handles POST /v1/messages/:id/read
func (h *ChatHandler) MarkRead(c *gin.Context) {
	msg, err := h.chatService.MarkRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, messageResponse(msg))
}

// Heartbeat handles POST /v1/rooms/:bookingId/heartbeat
func (h *ChatHandler) Heartbeat(c *gin.Context) {
	caller := middleware.CallerFrom(c)

	if err := h.chatService.Heartbeat(c.Request.Context(), c.Param("bookingId"), caller.ID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
