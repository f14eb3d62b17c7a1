package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/stayescrow/internal/domain"
	"github.com/Domenick1991/stayescrow/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	SlotID    int64 `json:"slot_id" binding:"required"`
	PaidCents int64 `json:"paid_cents"`
}

type bookingResponse struct {
	ID          int64  `json:"id"`
	SlotID      int64  `json:"slot_id"`
	Host        string `json:"host"`
	Guest       string `json:"guest"`
	AmountCents int64  `json:"amount_cents"`
	CheckedIn   bool   `json:"checked_in"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:          b.ID,
		SlotID:      b.SlotID,
		Host:        string(b.Host),
		Guest:       string(b.Guest),
		AmountCents: b.AmountCents,
		CheckedIn:   b.CheckedIn,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
	}
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.POST("/:id/guest-cancel", h.cancelByGuest)
	router.POST("/:id/host-cancel", h.cancelByHost)
	router.POST("/:id/check-in", h.confirmCheckIn)
	router.POST("/:id/no-show-refund", h.refundNoShow)
	router.POST("/:id/payout", h.releasePayout)
	router.POST("/:id/finalize", h.finalizePayout)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.Book(c.Request.Context(), caller(c), req.SlotID, req.PaidCents)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(b))
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) cancelByGuest(c *gin.Context) {
	h.transition(c, func(id int64) (*domain.Booking, error) {
		return h.service.CancelByGuest(c.Request.Context(), caller(c), id)
	})
}

func (h *BookingHandler) cancelByHost(c *gin.Context) {
	h.transition(c, func(id int64) (*domain.Booking, error) {
		return h.service.CancelByHost(c.Request.Context(), caller(c), id)
	})
}

func (h *BookingHandler) confirmCheckIn(c *gin.Context) {
	h.transition(c, func(id int64) (*domain.Booking, error) {
		return h.service.ConfirmCheckIn(c.Request.Context(), caller(c), id)
	})
}

// refundNoShow and finalizePayout have no caller precondition: any
// authenticated identity may trigger them once the deadline has passed.
func (h *BookingHandler) refundNoShow(c *gin.Context) {
	h.transition(c, func(id int64) (*domain.Booking, error) {
		return h.service.RefundNoShow(c.Request.Context(), id)
	})
}

func (h *BookingHandler) releasePayout(c *gin.Context) {
	h.transition(c, func(id int64) (*domain.Booking, error) {
		return h.service.ReleasePayout(c.Request.Context(), caller(c), id)
	})
}

func (h *BookingHandler) finalizePayout(c *gin.Context) {
	h.transition(c, func(id int64) (*domain.Booking, error) {
		return h.service.FinalizePayoutIfIdle(c.Request.Context(), id)
	})
}

func (h *BookingHandler) transition(c *gin.Context, op func(id int64) (*domain.Booking, error)) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := op(id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(b))
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return 0, false
	}
	return id, true
}
