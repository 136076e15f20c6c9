package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campusride/internal/domain"
	"campusride/internal/repository"
	"campusride/internal/service"
)

// DriverHandler handles HTTP requests for driver profiles.
type DriverHandler struct {
	driverRepo repository.DriverRepository
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverRepo repository.DriverRepository) *DriverHandler {
	return &DriverHandler{driverRepo: driverRepo}
}

// CreateDriverRequest is the HTTP request body for registering a driver.
type CreateDriverRequest struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	PaymentMethod string `json:"payment_method"` // CASH_ONLY, UPI, CASH_AND_UPI
}

// DriverResponse is the HTTP representation of a driver profile.
type DriverResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	PaymentMethod string `json:"payment_method"`
	CreatedAt     string `json:"created_at"`
}

func driverResponse(d *domain.DriverProfile) DriverResponse {
	return DriverResponse{
		ID:            d.ID,
		Name:          d.Name,
		Phone:         d.Phone,
		PaymentMethod: string(d.PaymentMethod),
		CreatedAt:     formatTime(d.CreatedAt),
	}
}

// CreateDriver handles POST /v1/drivers
func (h *DriverHandler) CreateDriver(c *gin.Context) {
	var req CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name is required"})
		return
	}

	method, err := service.ValidatePaymentMethod(req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}

	driver := &domain.DriverProfile{
		ID:            uuid.New().String(),
		Name:          req.Name,
		Phone:         req.Phone,
		PaymentMethod: method,
		CreatedAt:     time.Now(),
	}

	if err := h.driverRepo.Create(c.Request.Context(), driver); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, driverResponse(driver))
}

// GetDriver handles GET /v1/drivers/:id
func (h *DriverHandler) GetDriver(c *gin.Context) {
	driver, err := h.driverRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, driverResponse(driver))
}

// GetAll handles GET /v1/drivers
func (h *DriverHandler) GetAll(c *gin.Context) {
	drivers, err := h.driverRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		response = append(response, driverResponse(d))
	}

	respondJSON(c, http.StatusOK, response)
}
