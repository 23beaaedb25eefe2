package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/watchroom/server/internal/controller"
	mediacache "github.com/watchroom/server/internal/repository/mediacache/redis"
	roomgorm "github.com/watchroom/server/internal/repository/room/gorm"
	"github.com/watchroom/server/internal/service/media"
	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/ctxlogger"
)

type AppConfig struct {
	Host           string   `json:"host"`
	Port           int      `json:"port"`
	LogLevel       string   `json:"log_level"`
	DatabaseURL    string   `json:"database_url"`
	RedisAddr      string   `json:"redis_addr"`
	RedisPassword  string   `json:"-"`
	MediaProviders []string `json:"media_providers"`
	PlaylistLimit  int      `json:"playlist_limit"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database url must be set")
	}
	if cfg.PlaylistLimit < 1 {
		return fmt.Errorf("playlist limit must be greater than 0")
	}
	return nil
}

func openDatabase(databaseURL string) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	if strings.HasPrefix(databaseURL, "postgres://") || strings.Contains(databaseURL, "host=") {
		return gorm.Open(postgres.Open(databaseURL), gormConfig)
	}

	return gorm.Open(sqlite.Open(databaseURL), gormConfig)
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		}),
	}
	logger := slog.New(&h)

	db, err := openDatabase(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	roomRepo, err := roomgorm.NewRepo(db)
	if err != nil {
		return fmt.Errorf("failed to create room repository: %w", err)
	}

	var cache media.Cache
	if cfg.RedisAddr != "" {
		rc := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rc.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("redis unreachable, media cache disabled", "error", err)
		} else {
			cache = mediacache.NewRepo(rc, logger)
			defer rc.Close()
		}
	}

	roomService := room.NewService(roomRepo, &room.Config{
		PlaylistLimit:     cfg.PlaylistLimit,
		PlayPauseCooldown: 3 * time.Second,
		PersistInterval:   5 * time.Second,
	}, logger)
	mediaService := media.NewService(cfg.MediaProviders, cache, logger)

	controller := controller.NewController(roomService, mediaService, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
