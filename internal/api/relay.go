// Package api is the HTTP boundary of the relay: entry forms post
// here, chat views and history reads are served here, and websocket
// connections are upgraded here before being handed to the engine.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/mpruett/chatrelay/internal/config"
	"github.com/mpruett/chatrelay/internal/registry"
	"github.com/mpruett/chatrelay/internal/server"
)

type RelayApp struct {
	log            *log.Logger
	registry       *registry.Registry
	cs             *server.ChatServer
	mux            *http.Server
	signingKey     []byte
	allowedOrigins []string
}

func NewRelayApp(mux *http.ServeMux, logger *log.Logger, cs *server.ChatServer, reg *registry.Registry, cfg *config.Config) *RelayApp {
	s := &RelayApp{
		log:            logger,
		registry:       reg,
		cs:             cs,
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
	}

	mux.HandleFunc("POST /create-room", s.createRoom)
	mux.HandleFunc("POST /join-room", s.joinRoom)
	mux.HandleFunc("GET /chat/{room_code}", s.chatView)
	mux.HandleFunc("GET /get-messages/{room_code}", s.getMessages)
	mux.HandleFunc("GET /ws", s.serveWs)

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
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

func (s *RelayApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *RelayApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
