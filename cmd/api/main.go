package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/yangonmaps/citymap/internal/adapters/http"
	natsadapter "github.com/yangonmaps/citymap/internal/adapters/nats"
	"github.com/yangonmaps/citymap/internal/adapters/postgres"
	"github.com/yangonmaps/citymap/internal/adapters/valkey"
	"github.com/yangonmaps/citymap/internal/core/domain"
	"github.com/yangonmaps/citymap/internal/core/ports"
	"github.com/yangonmaps/citymap/internal/core/usecases"
	"github.com/yangonmaps/citymap/internal/pkg/config"
	"github.com/yangonmaps/citymap/internal/pkg/logging"
	"github.com/yangonmaps/citymap/internal/pkg/metrics"
	"github.com/yangonmaps/citymap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("citymap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format, "citymap-api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go db.ReportPoolStats(ctx, 15*time.Second)

	// Cache. The services take an interface, so only assign it on success.
	var cache ports.CacheService
	valkeyCache, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.KeyPrefix)
	if err != nil {
		slog.Warn("valkey unavailable, caching disabled", "error", err)
	} else {
		cache = valkeyCache
		defer valkeyCache.Close()
	}

	// NATS
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, content events disabled", "error", err)
	} else {
		publisher = pub
		defer pub.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
	}

	// Repos
	cityRepo := postgres.NewCityRepo(db)
	detailRepo := postgres.NewCityDetailRepo(db)
	locationRepo := postgres.NewLocationRepo(db)
	roadRepo := postgres.NewRoadRepo(db)

	// Use cases
	deps := &http.Dependencies{
		Cities:      usecases.NewCityService(cityRepo, cache, publisher),
		CityDetails: usecases.NewCityDetailService(detailRepo, publisher),
		Locations:   usecases.NewLocationService(locationRepo, cache, publisher),
		Roads:       usecases.NewRoadService(roadRepo, cache, publisher),
		Geometry:    usecases.NewGeometryService(),
		Routes:      usecases.NewRouteService(postgres.NewRouteGraphRepo(db), locationRepo),
		NATS:        natsConn,
		DB:          db,
		Cache:       valkeyCache,
	}

	// Every instance caches keys and the road graph; drop ours on any write.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, "")
	if err != nil {
		slog.Warn("nats subscriber unavailable, cross-instance invalidation disabled", "error", err)
	} else {
		defer sub.Close()
		if err := subscribeInvalidations(ctx, sub, deps); err != nil {
			slog.Warn("subscribe content events", "error", err)
		}
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    4 * 1024 * 1024, // long roads carry large coordinate lists
		AppName:      "citymap API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-User-ID",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "version", http.Version)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// subscribeInvalidations drops cached entries named by content events. Road
// events also reset the route graph.
func subscribeInvalidations(ctx context.Context, sub ports.EventSubscriber, deps *http.Dependencies) error {
	return sub.SubscribeContentEvents(ctx, func(ctx context.Context, event *domain.ContentEvent) error {
		metrics.ContentEventsReceived.WithLabelValues(string(event.Kind)).Inc()

		switch event.Kind {
		case domain.KindCity:
			deps.Cities.Invalidate(ctx, event.ID)
		case domain.KindLocation:
			deps.Locations.Invalidate(ctx, event.ID)
		case domain.KindRoad:
			deps.Roads.Invalidate(ctx, event.ID)
			deps.Routes.Invalidate()
		default:
			slog.Debug("content event ignored", "kind", event.Kind, "id", event.ID)
		}
		return nil
	})
}
