// Package main provides the game server binary that runs the quiz game
// backend with a WebSocket endpoint for client connections.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/oxquiz/oxquiz/internal/config"
	"github.com/oxquiz/oxquiz/internal/game/referee"
	"github.com/oxquiz/oxquiz/internal/game/room"
	"github.com/oxquiz/oxquiz/internal/gateway"
	"github.com/oxquiz/oxquiz/internal/observability"
	"github.com/oxquiz/oxquiz/internal/server"
	"github.com/oxquiz/oxquiz/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting game server",
		zap.String("http_addr", cfg.Server.Addr()),
	)

	// Connect to PostgreSQL for quiz and nickname content.
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	quizRepo := postgres.NewQuizRepository(pool.DB(), cfg.Game.QuizBatchSize)
	nicknameRepo := postgres.NewNicknameRepository(pool.DB())

	// The gateway is the event sink for every room, and the room manager is
	// the command target for every client, so wiring happens in two steps.
	gw := gateway.New(logger)
	coordinator := room.NewManager(
		room.Config{
			Columns:      cfg.Game.GridColumns,
			Rows:         cfg.Game.GridRows,
			TimeLimit:    cfg.Game.TimeLimit,
			TickInterval: cfg.Game.TickInterval,
			MaxUsers:     cfg.Game.MaxUsers,
			MaxRounds:    cfg.Game.MaxRounds,
		},
		quizRepo,
		nicknameRepo,
		referee.NewSideReferee(cfg.Game.GridColumns),
		gw,
		logger,
	)
	gw.SetCoordinator(coordinator)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.ServeWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Health(r.Context(), 5*time.Second); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("http", &server.FuncService{
		StartFn: func() error {
			logger.Info("http server listening",
				zap.String("addr", httpServer.Addr),
			)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("serving http on %s: %w", httpServer.Addr, err)
			}
			return nil
		},
		StopFn: func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = httpServer.Shutdown(shutdownCtx)
			coordinator.CloseAll()
		},
	})

	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			for {
				time.Sleep(30 * time.Second)
				if err := pool.Health(ctx, 5*time.Second); err != nil {
					logger.Warn("database health check failed", zap.Error(err))
				}
			}
		},
		StopFn: func() {
			pool.Close()
		},
	})

	logger.Info("game server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("http_addr", cfg.Server.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
