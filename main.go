package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeloom/internal/events"
	"codeloom/internal/utils"
)

func main() {
	if err := utils.LoadEnv(); err != nil {
		log.Printf("load env: %v", err)
	}
	events.EnableLogEmitter()

	app := NewApp()
	if err := app.Startup(context.Background()); err != nil {
		log.Fatalf("startup: %v", err)
	}

	addr := ":" + utils.Getenv("PORT", "8080")
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Serve(addr)
	}()
	log.Printf("codeloom listening on %s", addr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		app.Shutdown(ctx)
	}
}
