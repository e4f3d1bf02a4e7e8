// Package server is the web dashboard: the card page, the transaction table
// and a small JSON API over the same data.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/exp/slog"

	"github.com/cardview-dev/cardview/internal/cardview"
	"github.com/cardview-dev/cardview/internal/config"
	"github.com/cardview-dev/cardview/internal/cvv"
	"github.com/cardview-dev/cardview/internal/export"
	"github.com/cardview-dev/cardview/internal/notify"
	"github.com/cardview-dev/cardview/internal/source"
)

const shutdownTimeout = 5 * time.Second

// App is the dashboard server. It owns the card view, whose CVV reveal
// state lives for the lifetime of the process.
type App struct {
	srv      *http.Server
	wg       *sync.WaitGroup
	Addr     string
	logger   *slog.Logger
	config   *config.Config
	handlers *handlers
}

// NewApp wires the dashboard from cfg. A nil cfg means config.Default().
func NewApp(logger *slog.Logger, cfg *config.Config) *App {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("app", "cardview"))

	if cfg == nil {
		cfg = config.Default()
	}

	flashes := notify.NewQueue()
	h := &handlers{
		logger:  logger,
		client:  source.NewClient(logger, cfg.Endpoints.Card, cfg.Endpoints.Transactions, cfg.HTTP.Timeout.Std()),
		view:    cardview.New(nil, flashes, cvv.WithTimeout(cfg.CVV.RevealTimeout.Std())),
		flashes: flashes,
		exports: export.DefaultRegistry(),
	}

	return &App{
		wg:       &sync.WaitGroup{},
		logger:   logger,
		config:   cfg,
		handlers: h,
	}
}

// Handler returns the dashboard's routes.
func (a *App) Handler() http.Handler {
	h := a.handlers

	router := chi.NewRouter()
	router.Use(RequestID)
	router.Use(middleware.RealIP)
	router.Use(NewStructuredLogger(a.logger))
	router.Use(middleware.Recoverer)

	router.Get("/-/live", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	router.Get("/", h.cardPage)
	router.Post("/card/cvv", h.toggleCVV)
	router.Post("/card/{action}", h.cardAction)

	router.Get("/transactions", h.transactionsPage)
	router.Get("/transactions/export.{format}", h.exportTransactions)

	router.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
			ExposedHeaders: []string{RequestIDHeader},
			MaxAge:         300,
		}))
		r.Get("/card", h.apiCard)
		r.Get("/transactions", h.apiTransactions)
	})

	router.NotFound(h.notFound)
	return router
}

// Start listens on the configured address and serves in the background.
// Addr holds the bound address once Start returns.
func (a *App) Start() error {
	a.logger.Info("starting app...")

	l, err := net.Listen("tcp", a.config.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening tcp port: %w", err)
	}
	a.Addr = l.Addr().String()

	a.srv = &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.logger.Info("http server started", slog.String("addr", a.Addr))

		if err := a.srv.Serve(l); err != nil && err != http.ErrServerClosed {
			a.logger.Error("serving http", slog.Any("err", err))
		}
		a.logger.Info("http server stopped")
	}()

	return nil
}

// Shutdown stops the server and cancels a pending CVV timer.
func (a *App) Shutdown() {
	a.logger.Info("shutting down app...")

	if a.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.srv.Shutdown(ctx); err != nil {
			a.logger.Error("shutting down http server", slog.Any("err", err))
		}
	}
	a.handlers.view.Close()
	a.wg.Wait()

	a.logger.Info("app stopped")
}
