package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Domenick1991/stayescrow/internal/domain"
	"github.com/Domenick1991/stayescrow/internal/service/params"
	"github.com/gin-gonic/gin"
)

type ParamHandler struct {
	service params.ParamsUseCase
}

type setWindowRequest struct {
	Seconds int64 `json:"seconds" binding:"required"`
}

type windowsResponse struct {
	NoShowWindowSeconds    int64 `json:"no_show_window_seconds"`
	CompletionGraceSeconds int64 `json:"completion_grace_seconds"`
}

func NewParamHandler(service params.ParamsUseCase) *ParamHandler {
	return &ParamHandler{service: service}
}

func (h *ParamHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.get)
	router.PUT("/no-show-window", h.setNoShowWindow)
	router.PUT("/completion-grace", h.setCompletionGrace)
}

func (h *ParamHandler) get(c *gin.Context) {
	noShow, grace, err := h.service.Windows(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, windowsResponse{
		NoShowWindowSeconds:    int64(noShow / time.Second),
		CompletionGraceSeconds: int64(grace / time.Second),
	})
}

func (h *ParamHandler) setNoShowWindow(c *gin.Context) {
	h.set(c, h.service.SetNoShowWindow)
}

func (h *ParamHandler) setCompletionGrace(c *gin.Context) {
	h.set(c, h.service.SetCompletionGrace)
}

func (h *ParamHandler) set(c *gin.Context, op func(ctx context.Context, caller domain.Identity, d time.Duration) error) {
	var req setWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := op(c.Request.Context(), caller(c), time.Duration(req.Seconds)*time.Second); err != nil {
		writeError(c, err)
		return
	}

	h.get(c)
}
