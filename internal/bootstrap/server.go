package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/siddardh-293001/Flight-Booker-Simulator/api"
	"github.com/siddardh-293001/Flight-Booker-Simulator/config"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/metrics"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/pkg/logger"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/service/checkout"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/service/flights"
)

const shutdownTimeout = 10 * time.Second

type Deps struct {
	Flights  flights.FlightUseCase
	Checkout checkout.UseCase
	Metrics  *metrics.Metrics
	// Gatherer backs /metrics; nil means the default registry.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// Run serves the HTTP API and blocks until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	log := logger.OrNop(deps.Logger)
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           NewRouter(cfg.HTTP, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("address", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func NewRouter(cfg config.HTTPConfig, deps Deps) *gin.Engine {
	log := logger.OrNop(deps.Logger)

	router := gin.New()
	router.Use(recoverer(log), requestID(), requestLogger(log), prometheusMiddleware(deps.Metrics))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	if cfg.SwaggerDir != "" {
		router.Static("/swagger", cfg.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/checkout.swagger.json"))))
	}

	v1 := router.Group("/api/v1")
	if deps.Flights != nil {
		api.NewFlightHandler(deps.Flights).Register(v1.Group("/flights"))
	}
	if deps.Checkout != nil {
		api.NewCheckoutHandler(deps.Checkout).Register(v1)
	}
	return router
}
