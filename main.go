package main

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"vigil/alert"
	"vigil/config"
	"vigil/handler"
	"vigil/hub"
	"vigil/probe"
	"vigil/report"
	"vigil/scheduler"
	"vigil/seed"
	"vigil/store"
)

func main() {
	cfg := config.Load()

	// Database
	db, err := store.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := store.Migrate(db); err != nil {
		log.Fatalf("migration: %v", err)
	}

	// Optional YAML fleet definition
	if cfg.SeedFile != "" {
		if err := seed.Load(context.Background(), db, cfg.SeedFile); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	// WebSocket hub
	allowedOrigins := []string{"http://localhost:5173", "http://localhost:3000"}
	if cfg.AllowedOrigins != "" {
		for _, o := range strings.Split(cfg.AllowedOrigins, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	ws := hub.New(allowedOrigins)
	go ws.Run()

	// Check engine
	executor := probe.NewExecutor(db)
	dispatcher := alert.NewDispatcher(db, cfg)
	sched := scheduler.New(db, executor, dispatcher, ws, cfg.ScanInterval, cfg.MaxConcurrency)
	sweeper := scheduler.NewSweeper(db, cfg.Retention())

	sched.Start()
	sweeper.Start()

	// Read side
	reports := report.NewService(db)

	// Handler
	h := handler.New(db, reports, cfg)

	// Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	if cfg.APIToken != "" {
		r.Use(bearerAuth(cfg.APIToken))
		log.Println("API token auth enabled")
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/version", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"version":"` + Version + `"}`))
		})

		r.Get("/overview", h.Overview)
		r.Get("/incidents", h.AllIncidents)

		r.Get("/channels", h.ListChannels)
		r.Post("/channels", h.CreateChannel)

		r.Get("/monitors", h.ListMonitors)
		r.Post("/monitors", h.CreateMonitor)
		r.Route("/monitors/{id}", func(r chi.Router) {
			r.Get("/", h.GetMonitor)
			r.Post("/pause", h.PauseMonitor)
			r.Post("/resume", h.ResumeMonitor)
			r.Post("/check", h.TriggerCheck)
			r.Post("/channels/{channelId}", h.AttachChannel)
			r.Get("/analytics", h.MonitorAnalytics)
			r.Get("/uptime", h.MonitorUptime)
			r.Get("/incidents", h.MonitorIncidents)
		})
	})

	r.Get("/ws", ws.HandleConnect)

	srv := &http.Server{
		Addr:    cfg.BindAddr + ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("vigil %s listening on %s:%s", Version, cfg.BindAddr, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	sched.Stop()
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}

func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/ws" || r.URL.Path == "/api/health" || r.URL.Path == "/api/version" {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if subtle.ConstantTimeCompare([]byte(auth[7:]), []byte(token)) != 1 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
