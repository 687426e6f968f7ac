package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/propchat/propchat/internal/chat"
	"github.com/propchat/propchat/internal/config"
	"github.com/propchat/propchat/internal/database"
	"github.com/propchat/propchat/internal/server"
)

type PropChatApp struct {
	log            *log.Logger
	db             database.ChatRepository
	svc            chat.Service
	gw             *server.Gateway
	mux            *http.Server
	signingKey     []byte
	allowedOrigins []string
}

func NewPropChatApp(mux *http.ServeMux, logger *log.Logger, gw *server.Gateway, db database.ChatRepository, svc chat.Service, cfg *config.Config) *PropChatApp {
	s := &PropChatApp{
		log:            logger,
		db:             db,
		svc:            svc,
		gw:             gw,
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
	}

	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.Handle("GET /api/auth/session", s.authMiddleware(s.session))
	mux.Handle("GET /api/auth/logout", s.authMiddleware(s.logout))
	mux.Handle("GET /api/conversations", s.authMiddleware(s.listConversations))
	mux.Handle("POST /api/conversations", s.authMiddleware(s.startConversation))
	mux.Handle("GET /api/conversations/{id}", s.authMiddleware(s.getConversation))
	mux.Handle("GET /api/conversations/{id}/messages", s.authMiddleware(s.getMessages))
	mux.Handle("POST /api/conversations/{id}/messages", s.authMiddleware(s.sendMessage))
	mux.Handle("GET /api/unread-count", s.authMiddleware(s.unreadCount))
	mux.Handle("GET /api/presence", s.authMiddleware(s.presence))
	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.Handle("GET /ws", s.authMiddleware(s.serveWs))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept", "Authorization"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *PropChatApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *PropChatApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
