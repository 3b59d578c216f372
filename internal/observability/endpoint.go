package observability

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/lvacfs-go/internal/errors"
	"github.com/tphakala/lvacfs-go/internal/logger"
	"github.com/tphakala/lvacfs-go/internal/observability/metrics"
)

// StatusFunc returns a JSON-serializable snapshot of the binding state.
type StatusFunc func() any

// Endpoint serves /metrics and /status over HTTP.
type Endpoint struct {
	echo          *echo.Echo
	listenAddress string
	metrics       *Metrics
	status        StatusFunc
}

// NewEndpoint creates a new Endpoint. status may be nil, in which case /status is not registered.
func NewEndpoint(listenAddress string, m *Metrics, status StatusFunc) (*Endpoint, error) {
	if listenAddress == "" {
		return nil, errors.Newf("telemetry listen address is empty").
			Component("observability").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if m == nil {
		return nil, errors.Newf("metrics instance is nil").
			Component("observability").
			Category(errors.CategoryValidation).
			Build()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetOutput(io.Discard)

	ep := &Endpoint{
		echo:          e,
		listenAddress: listenAddress,
		metrics:       m,
		status:        status,
	}
	ep.initRoutes()
	return ep, nil
}

func (ep *Endpoint) initRoutes() {
	ep.echo.GET("/metrics", echo.WrapHandler(ep.metrics.Handler()))
	if ep.status != nil {
		ep.echo.GET("/status", ep.statusHandler)
	}
}

func (ep *Endpoint) statusHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, ep.status())
}

// Handler exposes the routed handler, mainly for tests.
func (ep *Endpoint) Handler() http.Handler {
	return ep.echo
}

// Run starts the HTTP server and blocks until ctx is cancelled or the server fails.
func (ep *Endpoint) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("telemetry endpoint starting", logger.String("address", ep.listenAddress))
		errCh <- ep.echo.Start(ep.listenAddress)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.New(err).
			Component("observability").
			Category(errors.CategoryNetwork).
			Context("address", ep.listenAddress).
			Build()
	case <-ctx.Done():
	}

	log.Info("stopping telemetry endpoint")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), metrics.ShutdownTimeout)
	defer cancel()
	if err := ep.echo.Shutdown(shutdownCtx); err != nil {
		log.Error("telemetry endpoint shutdown error", logger.Error(err))
		return err
	}
	<-errCh
	return nil
}
