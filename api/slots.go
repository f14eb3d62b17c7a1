package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/stayescrow/internal/domain"
	"github.com/Domenick1991/stayescrow/internal/service/slots"
	"github.com/gin-gonic/gin"
)

type SlotHandler struct {
	service slots.SlotUseCase
}

type createSlotRequest struct {
	CheckIn      time.Time `json:"check_in" binding:"required"`
	CheckOut     time.Time `json:"check_out" binding:"required"`
	CancelBefore time.Time `json:"cancel_before" binding:"required"`
	PriceCents   int64     `json:"price_cents"`
}

type slotResponse struct {
	ID           int64  `json:"id"`
	Host         string `json:"host"`
	CheckIn      string `json:"check_in"`
	CheckOut     string `json:"check_out"`
	CancelBefore string `json:"cancel_before"`
	PriceCents   int64  `json:"price_cents"`
	Active       bool   `json:"active"`
	Booked       bool   `json:"booked"`
}

func toSlotResponse(s *domain.StaySlot) slotResponse {
	return slotResponse{
		ID:           s.ID,
		Host:         string(s.Host),
		CheckIn:      s.CheckIn.Format(time.RFC3339),
		CheckOut:     s.CheckOut.Format(time.RFC3339),
		CancelBefore: s.CancelBefore.Format(time.RFC3339),
		PriceCents:   s.PriceCents,
		Active:       s.Active,
		Booked:       s.Booked,
	}
}

func NewSlotHandler(service slots.SlotUseCase) *SlotHandler {
	return &SlotHandler{service: service}
}

func (h *SlotHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.DELETE("/:id", h.deactivate)
}

func (h *SlotHandler) create(c *gin.Context) {
	var req createSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot, err := h.service.CreateSlot(c.Request.Context(), slots.CreateSlotInput{
		Host:         caller(c),
		CheckIn:      req.CheckIn,
		CheckOut:     req.CheckOut,
		CancelBefore: req.CancelBefore,
		PriceCents:   req.PriceCents,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toSlotResponse(slot))
}

func (h *SlotHandler) list(c *gin.Context) {
	open, err := h.service.ListOpen(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]slotResponse, 0, len(open))
	for i := range open {
		resp = append(resp, toSlotResponse(&open[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SlotHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot id"})
		return
	}

	slot, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSlotResponse(slot))
}

func (h *SlotHandler) deactivate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot id"})
		return
	}

	slot, err := h.service.DeactivateSlot(c.Request.Context(), caller(c), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSlotResponse(slot))
}
