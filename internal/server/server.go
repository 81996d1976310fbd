// Package server wires the router and owns the HTTP lifecycle. All
// dependency assembly happens here; main stays a thin entrypoint.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dichenko/myshadow/internal/app"
	"github.com/dichenko/myshadow/internal/auth"
	"github.com/dichenko/myshadow/internal/config"
	"github.com/dichenko/myshadow/internal/handler"
	"github.com/dichenko/myshadow/internal/service/match"
	"github.com/dichenko/myshadow/internal/service/pairing"
	"github.com/dichenko/myshadow/internal/service/quiz"
)

const shutdownTimeout = 30 * time.Second

type Server struct {
	appCtx *app.AppContext
	cfg    *config.Config
	router *chi.Mux
}

// New assembles the full dependency chain: services from AppContext,
// handlers from services, routes from handlers.
func New(appCtx *app.AppContext, cfg *config.Config) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	s := &Server{
		appCtx: appCtx,
		cfg:    cfg,
		router: chi.NewRouter(),
	}
	s.routes(tokens)
	return s, nil
}

func (s *Server) routes(tokens *auth.TokenService) {
	r := s.router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.appCtx.Logger))

	pairingSvc := pairing.NewService(s.appCtx)
	quizSvc := quiz.NewService(s.appCtx)
	matchSvc := match.NewService(s.appCtx)

	authH := handler.NewAuthHandler(s.appCtx, s.cfg, tokens)
	meH := handler.NewMeHandler(s.appCtx, pairingSvc)
	pairH := handler.NewPairHandler(pairingSvc)
	quizH := handler.NewQuizHandler(quizSvc)
	matchH := handler.NewMatchHandler(matchSvc)
	adminH := handler.NewAdminHandler(s.appCtx)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/telegram", authH.TelegramLogin)

		r.Group(func(r chi.Router) {
			r.Use(tokens.RequireUser)

			r.Get("/me", meH.Get)
			r.Delete("/me", meH.Delete)

			r.Get("/pair/code", pairH.GetCode)
			r.Post("/pair", pairH.Create)
			r.Delete("/pair", pairH.Delete)

			r.Get("/blocks", quizH.ListBlocks)
			r.Put("/answers", quizH.SubmitAnswer)
			r.Delete("/answers", quizH.ResetAnswers)

			r.Get("/matches", matchH.List)
			r.Get("/matches/count", matchH.Count)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", authH.AdminLogin)

			r.Group(func(r chi.Router) {
				r.Use(tokens.RequireAdmin)

				r.Get("/blocks", adminH.ListBlocks)
				r.Post("/blocks", adminH.CreateBlock)
				r.Delete("/blocks/{id}", adminH.DeleteBlock)

				r.Get("/practices", adminH.ListPractices)
				r.Post("/practices", adminH.CreatePractice)
				r.Delete("/practices/{id}", adminH.DeletePractice)

				r.Get("/questions", adminH.ListQuestions)
				r.Post("/questions", adminH.CreateQuestion)
				r.Delete("/questions/{id}", adminH.DeleteQuestion)
			})
		})
	})
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         net.JoinHostPort(s.cfg.HTTP.Host, s.cfg.HTTP.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.appCtx.Logger.Info("http server starting", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server: %w", err)
		}
	case sig := <-quit:
		s.appCtx.Logger.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("server: graceful shutdown: %w", err)
		}
		s.appCtx.Logger.Info("server stopped")
	}
	return nil
}
