package handlers

import (
	"net/http"

	"github.com/cleanbook/scheduler-backend/internal/middleware"
	"github.com/cleanbook/scheduler-backend/internal/models"
	"github.com/cleanbook/scheduler-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// BookingHandler handles booking HTTP requests
type BookingHandler struct {
	bookingService    *services.BookingService
	assignmentService *services.AssignmentService
	visibilityService *services.VisibilityService
	logger            *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(
	bookingService *services.BookingService,
	assignmentService *services.AssignmentService,
	visibilityService *services.VisibilityService,
	logger *logrus.Logger,
) *BookingHandler {
	return &BookingHandler{
		bookingService:    bookingService,
		assignmentService: assignmentService,
		visibilityService: visibilityService,
		logger:            logger,
	}
}

// ListBookings handles GET /api/v1/bookings. Administrators get the full
// projection, everyone else only their assigned bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	caller := middleware.MustGetCaller(c)

	listing, err := h.visibilityService.ListVisibleBookings(c.Request.Context(), &caller)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var bookings interface{} = listing.Admin
	if listing.Scope == models.ScopeCleaner {
		bookings = listing.Cleaner
	}

	c.JSON(http.StatusOK, gin.H{
		"scope":    listing.Scope,
		"bookings": bookings,
	})
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	caller := middleware.MustGetCaller(c)

	detail, err := h.visibilityService.GetBooking(c.Request.Context(), &caller, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var booking interface{} = detail.Admin
	if detail.Scope == models.ScopeCleaner {
		booking = detail.Cleaner
	}

	c.JSON(http.StatusOK, gin.H{
		"scope":   detail.Scope,
		"booking": booking,
	})
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	result, err := h.bookingService.CreateBooking(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// UpdateBooking handles PUT /api/v1/bookings/:id
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	result, err := h.bookingService.UpdateBooking(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteBooking handles DELETE /api/v1/bookings/:id
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.bookingService.DeleteBooking(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Booking deleted successfully"})
}

// SyncCleaners handles PUT /api/v1/bookings/:id/cleaners. A null or absent
// cleaner_ids leaves the assignments unchanged; [] removes all of them.
func (h *BookingHandler) SyncCleaners(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.SyncAssignmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	var target []int64
	if req.CleanerIDs != nil {
		target = *req.CleanerIDs
		if target == nil {
			target = []int64{}
		}
	}

	diff, err := h.assignmentService.SyncAssignments(c.Request.Context(), id, target)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, diff)
}
