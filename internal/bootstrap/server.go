package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/flightbooking/api"
	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/service/inventory"
	"github.com/Domenick1991/flightbooking/internal/service/ledger"
	"github.com/Domenick1991/flightbooking/internal/service/orchestrator"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, inventorySvc inventory.InventoryUseCase, bookingSvc orchestrator.BookingUseCase, ledgerSvc ledger.LedgerUseCase) error {
	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newRouter(cfg, inventorySvc, bookingSvc, ledgerSvc),
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

func newRouter(cfg *config.Config, inventorySvc inventory.InventoryUseCase, bookingSvc orchestrator.BookingUseCase, ledgerSvc ledger.LedgerUseCase) *gin.Engine {
	router := gin.Default()

	api.NewFlightHandler(inventorySvc).Register(router.Group("/flights"))
	bookings := router.Group("/bookings")
	api.NewBookingHandler(bookingSvc).Register(bookings)
	api.NewLedgerHandler(ledgerSvc).Register(bookings)

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFS("/swagger", http.Dir(cfg.HTTP.SwaggerDir))
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/flightbooking.swagger.json"),
		)))
	}

	return router
}
