// Package sandbox serves a local stand-in for the PaySuite API. It accepts
// the same requests as the real service, keeps payments in memory, and
// completes a payment when its checkout URL is visited.
package sandbox

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/paysuite/pkg/logger"
	"github.com/frahmantamala/paysuite/pkg/paysuite"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

const APIPrefix = "/api/v1"

type Config struct {
	Token string
	// PublicURL is the scheme and host checkout URLs point at. When empty the
	// request's Host is used.
	PublicURL string
}

type Server struct {
	store   *Store
	handler *Handler
	router  *chi.Mux
}

func NewServer(cfg Config, lg *slog.Logger) *Server {
	if lg == nil {
		lg = logger.L()
	}

	store := NewStore()
	s := &Server{
		store:   store,
		handler: NewHandler(store, cfg.PublicURL, lg),
		router:  chi.NewRouter(),
	}
	s.registerRoutes(cfg.Token, lg)
	return s
}

func (s *Server) registerRoutes(token string, lg *slog.Logger) {
	s.router.Use(chiMiddleware.RequestID)
	s.router.Use(TraceID)
	s.router.Use(RequestLogger(lg))
	s.router.Use(Recovery(lg))

	s.router.Get("/health", s.handler.Health)
	s.router.Get("/checkout/{id}", s.handler.Checkout)

	s.router.Route(APIPrefix, func(r chi.Router) {
		r.Use(BearerAuth(token))
		r.Post("/payments", s.handler.CreatePayment)
		r.Get("/payments/{id}", s.handler.GetPayment)
	})
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// MarkPaid completes a payment without going through the checkout page.
func (s *Server) MarkPaid(id, transactionID string) (*paysuite.Payment, error) {
	return s.store.MarkPaid(id, transactionID, time.Now())
}

func (s *Server) Payment(id string) (*paysuite.Payment, error) {
	return s.store.Get(id)
}
