// Package api exposes the HTTP surface of the outreach sender: SMTP
// configuration, recipient list parsing, campaign dispatch, and status
// polling.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/outreach/internal/config"
	"github.com/ignite/outreach/internal/dispatch"
	"github.com/ignite/outreach/internal/mailer"
	"github.com/ignite/outreach/internal/registry"
	"github.com/ignite/outreach/internal/resolver"
)

// Server wires the pipeline components behind the HTTP API.
type Server struct {
	resolver *resolver.Resolver
	engine   *dispatch.Engine
	registry *registry.Registry
	switcher *mailer.Switcher
	smtpCfg  config.SMTPConfig
	httpCfg  config.ServerConfig
}

// NewServer creates the API server over the given components.
func NewServer(cfg *config.Config, res *resolver.Resolver, eng *dispatch.Engine, reg *registry.Registry, sw *mailer.Switcher) *Server {
	return &Server{
		resolver: res,
		engine:   eng,
		registry: reg,
		switcher: sw,
		smtpCfg:  cfg.SMTP,
		httpCfg:  cfg.Server,
	}
}

// Router builds the chi mux with all routes and middleware.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("Email Sender API is running"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.HandleHealth)
		r.Post("/config", s.HandleConfigureSMTP)
		r.Post("/parse-emails", s.HandleParseEmails)
		r.Post("/send-campaign", s.HandleSendCampaign)
		r.Get("/campaign-status/{id}", s.HandleCampaignStatus)
	})

	return r
}

// Addr returns the listen address from config.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.httpCfg.GetHost(), s.httpCfg.Port)
}
