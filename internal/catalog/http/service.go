package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/lunamart/eshop/internal/catalog/service"
	"github.com/lunamart/eshop/internal/config"
	"github.com/lunamart/eshop/internal/http/apierr"
	"github.com/lunamart/eshop/internal/http/metric"
	"github.com/lunamart/eshop/internal/http/middleware"
	"github.com/lunamart/eshop/internal/http/swagger"
	"github.com/lunamart/eshop/pkg/validator"
)

var tracer = otel.Tracer("internal/catalog/http")

// Service represents the catalog HTTP service.
type Service struct {
	cfg       config.HTTP
	logger    *slog.Logger
	metrics   *metric.Metrics
	validator validator.Validator

	catalogSvc service.CatalogService
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	logger *slog.Logger,
	catalogSvc service.CatalogService,
) *Service {
	return &Service{
		cfg:        cfg,
		logger:     logger.With(slog.String("service", "http")),
		metrics:    metric.New("catalog"),
		validator:  validator.NewDefaultValidator(),
		catalogSvc: catalogSvc,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	s.RegisterHandlers(r)

	return s.RunWithServer(ctx, r)
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

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
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
		middleware.Cors(),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	h := newCatalogHandler(s)

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/items", h.listItems)
		r.Post("/items", h.createItem)
		r.Put("/items", h.updateItem)
		r.Get("/items/{id}", h.getItem)
		r.Delete("/items/{id}", h.deleteItem)

		r.Get("/brands", h.listBrands)
		r.Post("/brands", h.createBrand)
		r.Put("/brands", h.updateBrand)
		r.Get("/brands/{id}", h.getBrand)
		r.Delete("/brands/{id}", h.deleteBrand)

		r.Get("/types", h.listTypes)
		r.Post("/types", h.createType)
		r.Put("/types", h.updateType)
		r.Get("/types/{id}", h.getType)
		r.Delete("/types/{id}", h.deleteType)
	})

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

func (s *Service) writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WarnContext(r.Context(), "error encoding response", slog.Any("error", err))
	}
}

func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
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
		s.logger.ErrorContext(r.Context(), "error encoding error response", slog.Any("error", err))
	}
}
