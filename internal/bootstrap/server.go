package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/stayescrow/api"
	"github.com/Domenick1991/stayescrow/config"
	"github.com/Domenick1991/stayescrow/internal/service/booking"
	"github.com/Domenick1991/stayescrow/internal/service/params"
	"github.com/Domenick1991/stayescrow/internal/service/slots"
	"github.com/gin-gonic/gin"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, slotSvc slots.SlotUseCase, bookingSvc booking.BookingUseCase, paramSvc params.ParamsUseCase) error {
	router := NewRouter(slotSvc, bookingSvc, paramSvc)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func NewRouter(slotSvc slots.SlotUseCase, bookingSvc booking.BookingUseCase, paramSvc params.ParamsUseCase) *gin.Engine {
	router := gin.Default()
	router.Use(api.CallerIdentity())

	api.NewSlotHandler(slotSvc).Register(router.Group("/slots"))
	api.NewBookingHandler(bookingSvc).Register(router.Group("/bookings"))
	api.NewParamHandler(paramSvc).Register(router.Group("/params"))

	return router
}
