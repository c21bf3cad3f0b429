package main

import (
	"context"
	"expvar"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/danielsct56bm/cerro-service/internal/config"
	"github.com/danielsct56bm/cerro-service/internal/httpapi"
	"github.com/danielsct56bm/cerro-service/internal/hub"
	"github.com/danielsct56bm/cerro-service/internal/realtime"
	"github.com/danielsct56bm/cerro-service/internal/store/postgres"
	"github.com/danielsct56bm/cerro-service/internal/telemetry"
)

func main() {
	cfg := config.Load()

	shutdownTracing := telemetry.Setup("cerro-service")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	st := postgres.NewStore(pool, cfg.SessionTTL)
	h := hub.New()
	events := realtime.NewEvents(h)
	channels := realtime.NewChannels(h, st)
	handler := httpapi.NewHandler(st, events, httpapi.Options{
		KioskTokenTTL: cfg.KioskTokenTTL,
	})
	limiter := httpapi.NewRateLimiter(httpapi.RateLimitConfig{
		PerMinute: cfg.RateLimitPerMinute,
		Burst:     cfg.RateLimitBurst,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", expvar.Handler())
	mux.Handle("/ws/kiosk/", channels.KioskHandler())
	mux.Handle("/ws/technicians/", channels.TechniciansHandler())
	mux.Handle("/ws/display/", channels.DisplayHandler())
	mux.Handle("/", httpapi.AuthMiddleware(st, handler.Routes()))

	chain := otelhttp.NewHandler(httpapi.LoggingMiddleware(limiter.Middleware(mux)), "http.server")

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      chain,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("cerro-service listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	go func() {
		if cfg.CleanupInterval <= 0 {
			return
		}
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			count, err := st.CleanupExpired(ctx, time.Now().UTC())
			cancel()
			if err != nil {
				log.Printf("cleanup error: %v", err)
				continue
			}
			if count > 0 {
				log.Printf("cleanup removed %d expired rows", count)
			}
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
