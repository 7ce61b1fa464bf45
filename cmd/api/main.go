package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomdesk/internal/api"
	"roomdesk/internal/backend"
	"roomdesk/internal/cart"
	"roomdesk/internal/config"
	"roomdesk/internal/domain"
	"roomdesk/internal/events"
	"roomdesk/internal/google"
	"roomdesk/internal/journal"
	"roomdesk/internal/logging"
	"roomdesk/internal/metrics"
	"roomdesk/internal/models"
	"roomdesk/internal/notify"
	"roomdesk/internal/precheck"
	"roomdesk/internal/repository"
	"roomdesk/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	if !cfg.API.Enabled {
		logger.Warn().Msg("API is disabled in config, but starting API application. Check your config.")
	}

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}

	cartRepo := initCartRepo(cfg, redisClient, &logger)

	backendClient := backend.NewClient(cfg.Backend, &logger)
	if redisClient != nil {
		backendClient.UseRedisCache(redisClient, time.Duration(cfg.Backend.RoomsCacheTTL)*time.Second)
	}
	if rooms, err := loadRooms(&logger, cfg.RoomsFile); err == nil {
		backendClient.SetFallbackRooms(rooms)
	}

	subJournal, err := initJournal(cfg, &logger)
	if err != nil {
		return err
	}
	if subJournal != nil {
		defer subJournal.Close()
	}

	bus := events.NewEventBus()

	cartService := cart.NewService(cartRepo, backendClient, &logger, cart.Options{
		Events:                 bus,
		Journal:                journalOrNil(subJournal),
		DropSucceededOnPartial: cfg.Cart.DropSucceededOnPartial,
	})

	checker := precheck.NewChecker(
		backendClient,
		time.Duration(cfg.Cart.PrecheckDebounceMS)*time.Millisecond,
		&logger,
	)

	initTelegram(cfg, bus, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	initMirror(ctx, cfg, redisClient, bus, &logger)

	httpServer := api.NewHTTPServer(cfg.API, api.Deps{
		Carts:           cartService,
		Check:           checker,
		Backend:         backendClient,
		Journal:         journalOrNil(subJournal),
		Events:          bus,
		Exports:         cfg.Exports,
		DefaultCustomer: cfg.Backend.DefaultCustomer,
	}, &logger)

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// loadRooms reads the seed room catalog used when the backend directory
// cannot be fetched.
func loadRooms(logger *zerolog.Logger, path string) ([]models.Room, error) {
	if path == "" {
		path = "configs/rooms.yaml"
	}
	roomsData, err := os.ReadFile(path)
	if err != nil {
		logger.Warn().Err(err).Str("rooms_path", path).Msg("read rooms seed")
		return nil, err
	}

	var roomsConfig struct {
		Rooms []models.Room `yaml:"rooms"`
	}
	if err := yaml.Unmarshal(roomsData, &roomsConfig); err != nil {
		logger.Error().Err(err).Str("rooms_path", path).Msg("parse rooms seed")
		return nil, err
	}

	if err := config.ValidateRooms(roomsConfig.Rooms); err != nil {
		logger.Error().Err(err).Msg("invalid rooms seed")
		return nil, err
	}

	return roomsConfig.Rooms, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initCartRepo(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.CartRepository {
	ttl := time.Duration(cfg.Cart.TTLSeconds) * time.Second
	memory := repository.NewMemoryCartRepository(ttl)
	if redisClient == nil {
		return memory
	}

	primary := repository.NewRedisCartRepository(redisClient, ttl)
	return repository.NewFailoverCartRepository(primary, memory, logger)
}

func initJournal(cfg *config.Config, logger *zerolog.Logger) (*journal.Journal, error) {
	if cfg.Journal.Path == "" {
		return nil, nil
	}

	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		logger.Error().Err(err).Str("journal_path", cfg.Journal.Path).Msg("init submission journal")
		return nil, err
	}
	return j, nil
}

// journalOrNil keeps a typed-nil *Journal out of the interface fields.
func journalOrNil(j *journal.Journal) domain.SubmissionJournal {
	if j == nil {
		return nil
	}
	return j
}

func initTelegram(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) {
	if !cfg.Telegram.Enabled || cfg.Telegram.BotToken == "" || len(cfg.Telegram.AdminChatIDs) == 0 {
		return
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return
	}
	bot.Debug = cfg.Telegram.Debug

	notifier := notify.NewTelegramNotifier(bot, cfg.Telegram.AdminChatIDs, logger)
	notifier.Subscribe(bus)
	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram notifier connected")
}

// initMirror wires the spreadsheet mirror: submitted carts are queued and a
// worker appends them to the configured sheet with retries.
func initMirror(ctx context.Context, cfg *config.Config, redisClient *redis.Client, bus *events.EventBus, logger *zerolog.Logger) {
	if !cfg.Google.Enabled || cfg.Google.GoogleCredentialsFile == "" || cfg.Google.MirrorSpreadsheetID == "" {
		return
	}

	mirror, err := google.NewSheetsMirror(cfg.Google.GoogleCredentialsFile, cfg.Google.MirrorSpreadsheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without mirror")
		return
	}
	if err := mirror.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("google sheets unreachable, continuing without mirror")
		return
	}

	mirrorWorker := worker.NewMirrorWorker(mirror, redisClient, worker.RetryPolicy{
		MaxRetries: 5,
		BaseDelay:  2 * time.Second,
		MaxDelay:   time.Minute,
	}, logger)

	bus.Subscribe(events.EventCartSubmitted, func(event *events.Event) error {
		var payload events.CartEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return err
		}
		return mirrorWorker.EnqueueSubmission(ctx, models.SubmissionRecord{
			SessionID:  payload.SessionID,
			CustomerID: payload.CustomerID,
			GroupCount: payload.GroupCount,
			Accepted:   payload.Accepted,
			Failed:     payload.Failed,
			Outcome:    models.SubmissionAccepted,
			CreatedAt:  payload.Submitted,
		})
	})

	go mirrorWorker.Start(ctx)
	logger.Info().Msg("google sheets mirror connected")
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if !cfg.API.HTTP.Enabled {
			return
		}
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
