package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vidhi28vaghela05/lms-project-sub000/config"
	"github.com/vidhi28vaghela05/lms-project-sub000/db"
	"github.com/vidhi28vaghela05/lms-project-sub000/realtime"
	"github.com/vidhi28vaghela05/lms-project-sub000/services"
)

type Server struct {
	Config         *config.Config
	UserRepository db.UserRepository
	ChatService    services.ChatService
	PartnerService services.PartnerService
	Hub            *realtime.Hub
	Presence       realtime.Registry
	DB             db.GormDB
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests and
// clears the presence registry.
func (s *Server) Start() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := s.Config.Port
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.setupRouter(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("listening on :%d", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Hub.Shutdown(shutdownCtx); err != nil {
			log.Printf("hub shutdown: %v", err)
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
