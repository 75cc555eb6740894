package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/harborfs/file-manager/cmd/middleware"
	"github.com/harborfs/file-manager/internal/api"
	"github.com/harborfs/file-manager/internal/api/handlers"
	"github.com/harborfs/file-manager/internal/configuration"
	"github.com/harborfs/file-manager/internal/records"
	"github.com/harborfs/file-manager/internal/services"
	"github.com/harborfs/file-manager/internal/storage"
)

func main() {
	cfg := configuration.Load()

	tracer.Start(tracer.WithService("file-manager"))
	defer tracer.Stop()

	// Metadata store: Postgres, with an in-memory fallback so the service
	// still comes up without a database.
	var store records.Store
	pg, err := records.ConnectPostgres(cfg.Database.ConnectionString())
	if err != nil {
		log.Printf("Warning: failed to connect to PostgreSQL: %v", err)
		log.Println("Falling back to in-memory metadata store...")
		store = records.NewMemory()
	} else {
		defer pg.Close()
		store = pg
	}

	local, err := storage.NewLocal(cfg.Storage.Root)
	if err != nil {
		log.Fatalf("Failed to initialize local storage: %v", err)
	}

	// Remote backend is opt-in; records written while it is configured
	// are tagged remote and stay bound to it.
	var remote storage.Backend
	if cfg.MinIO.Enabled {
		m, err := storage.NewMinio(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.BucketName, cfg.MinIO.UseSSL)
		if err != nil {
			log.Fatalf("Failed to initialize MinIO: %v", err)
		}
		remote = m
	}

	var events *services.EventPublisher
	if cfg.NATSURL != "" {
		events, err = services.ConnectEvents(cfg.NATSURL)
		if err != nil {
			log.Printf("Warning: failed to connect to NATS: %v", err)
		} else {
			defer events.Close()
		}
	}

	svc := services.New(store, local, remote, events, services.Config{
		Namespace: cfg.Storage.Namespace,
		URLPrefix: cfg.Storage.URLPrefix,
	})

	var scanner *services.Scanner
	if cfg.CLAMAVURL != "" {
		scanner = services.NewScanner(cfg.CLAMAVURL, svc)
	}

	var auth gin.HandlerFunc
	if cfg.OIDCURL != "" {
		auth, err = middleware.NewAuth(cfg.OIDCURL)
		if err != nil {
			log.Fatalf("Failed to initialize OIDC auth: %v", err)
		}
	}

	r := gin.Default()
	r.Use(gintrace.Middleware("file-manager"))
	api.RegisterRoutes(r, handlers.NewFileHandler(svc, scanner), auth)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}
	go func() {
		log.Printf("Server starting on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Warning: forced shutdown: %v", err)
	}
}
