package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	apicontract "github.com/namjco/sales-tracker/api-contract"
	"github.com/namjco/sales-tracker/internal/config"
	"github.com/namjco/sales-tracker/internal/http/apierr"
	"github.com/namjco/sales-tracker/internal/http/metric"
	"github.com/namjco/sales-tracker/internal/http/middleware"
	"github.com/namjco/sales-tracker/internal/http/swagger"
	"github.com/namjco/sales-tracker/internal/service"
	"github.com/namjco/sales-tracker/internal/storage/db"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg     config.HTTP
	logger  *slog.Logger
	metrics *metric.Metrics

	healthChecker db.HealthChecker
	catalogSvc    service.CatalogService
	ledgerSvc     service.LedgerService
	dashboardSvc  service.DashboardService
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	healthChecker db.HealthChecker,
	catalogSvc service.CatalogService,
	ledgerSvc service.LedgerService,
	dashboardSvc service.DashboardService,
) *Service {
	return &Service{
		cfg:           cfg,
		logger:        log.With(slog.String("service", "http")),
		metrics:       metric.New(),
		healthChecker: healthChecker,
		catalogSvc:    catalogSvc,
		ledgerSvc:     ledgerSvc,
		dashboardSvc:  dashboardSvc,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	r, err := s.Router(ctx)
	if err != nil {
		return nil, err
	}

	return s.RunWithServer(ctx, r)
}

// Router builds the complete handler: middlewares, docs, API and ops routes.
func (s *Service) Router(ctx context.Context) (chi.Router, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		doc, err := apicontract.Load(ctx)
		if err != nil {
			return nil, err
		}
		if err := swagger.Register(r, doc); err != nil {
			return nil, fmt.Errorf("register swagger: %w", err)
		}
	}

	s.RegisterHandlers(r)

	return r, nil
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.ErrorContext(ctx, "http server stopped unexpectedly", slog.Any("error", err))
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(s.cfg.CorsOrigins),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	products := newProductHandler(s.catalogSvc, s.metrics)
	sales := newSaleHandler(s.ledgerSvc, s.metrics)
	dashboard := newDashboardHandler(s.dashboardSvc)

	r.Get("/products", s.handle(products.ListProducts))
	r.Post("/products", s.handle(products.CreateProduct))

	r.Get("/sales", s.handle(sales.ListSales))
	r.Post("/sales", s.handle(sales.CreateSale))

	r.Get("/dashboard", s.handle(dashboard.GetDashboard))
	r.Get("/dashboard/sales", s.handle(dashboard.ListSaleLines))
	r.Get("/dashboard/products", s.handle(dashboard.ListProductTotals))

	r.Get("/healthz", s.healthz)

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{
		ErrorLog: slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}))
}

// handlerFunc is an endpoint that writes its own success response and leaves
// error rendering to handle.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Service) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.handleResponseError(w, r, err)
		}
	}
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Service) healthz(w http.ResponseWriter, r *http.Request) {
	ok, err := s.healthChecker.IsHealthy(r.Context())
	if err != nil || !ok {
		s.logger.WarnContext(r.Context(), "health check failed", slog.Any("error", err))
		//nolint:errcheck
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}

	//nolint:errcheck
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
