package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Dosada05/esports-arena/changefeed"
	"github.com/Dosada05/esports-arena/config"
	"github.com/Dosada05/esports-arena/db"
	"github.com/Dosada05/esports-arena/handlers"
	"github.com/Dosada05/esports-arena/realtime"
	"github.com/Dosada05/esports-arena/repositories"
	api "github.com/Dosada05/esports-arena/routes"
	"github.com/Dosada05/esports-arena/services"
	"github.com/Dosada05/esports-arena/storage"
	"github.com/Dosada05/esports-arena/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		return 1
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("changefeed_mode", cfg.ChangefeedMode))

	// Суммы в JSON числами, а не строками
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		return 1
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	if err := db.EnsureSchema(ctx, dbConn); err != nil {
		logger.Error("failed to apply database schema", slog.Any("error", err))
		return 1
	}
	logger.Info("database connection established")

	// Лента изменений
	bus := changefeed.NewBus(logger)
	var publisher changefeed.Publisher = bus
	switch cfg.ChangefeedMode {
	case config.ChangefeedPostgres:
		// Источник событий - триггеры БД; сервисы ничего не публикуют.
		publisher = changefeed.Discard
		listener := changefeed.NewPGListener(cfg.DatabaseURL, bus, logger)
		go func() {
			if err := listener.Run(ctx); err != nil {
				logger.Error("change feed listener stopped", slog.Any("error", err))
			}
		}()
	case config.ChangefeedNATS:
		natsConn, err := changefeed.ConnectNATS(cfg.NATSURL, cfg.NATSToken)
		if err != nil {
			logger.Error("failed to connect to NATS", slog.Any("error", err))
			return 1
		}
		defer natsConn.Close()
		bridge := changefeed.NewNATSBridge(natsConn, bus, cfg.NATSSubject, logger)
		if err := bridge.Start(); err != nil {
			logger.Error("failed to start NATS bridge", slog.Any("error", err))
			return 1
		}
		defer func() {
			if err := bridge.Close(); err != nil {
				logger.Error("failed to close NATS bridge", slog.Any("error", err))
			}
		}()
	}
	logger.Info("change feed initialized", slog.String("mode", cfg.ChangefeedMode))

	// Инициализация загрузчика файлов (Cloudflare R2)
	var uploader storage.FileUploader
	if cfg.R2.Enabled() {
		uploader, err = storage.NewR2Uploader(ctx, cfg.R2)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			return 1
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2.BucketName))
	} else {
		logger.Warn("R2 storage is not configured, uploads are disabled")
	}

	// Инициализация репозиториев
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	roomRepo := repositories.NewPostgresRoomRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	sponsorRepo := repositories.NewPostgresSponsorRepository(dbConn)
	liveMatchRepo := repositories.NewPostgresLiveMatchRepository(dbConn)
	walletRepo := repositories.NewPostgresWalletRepository(dbConn)

	// Инициализация сервисов
	tournamentService := services.NewTournamentService(dbConn, tournamentRepo, publisher, logger)
	registrationService := services.NewRegistrationService(registrationRepo, roomRepo, publisher, logger)
	playerService := services.NewPlayerService(playerRepo, publisher, logger)
	profileService := services.NewProfileService(playerRepo, logger)
	matchService := services.NewMatchService(matchRepo, publisher, logger)
	sponsorService := services.NewSponsorService(sponsorRepo, publisher, logger)
	liveMatchService := services.NewLiveMatchService(liveMatchRepo, publisher, logger)
	walletService := services.NewWalletService(walletRepo, publisher, logger)
	logger.Info("services initialized")

	// Кэш: подписка до загрузки, чтобы не потерять изменения между ними
	cache := store.New(tournamentService, playerService, matchService, liveMatchService, logger)
	detachStore := cache.Attach(ctx, bus)
	defer detachStore()
	if err := cache.Load(ctx); err != nil {
		logger.Error("initial store load failed", slog.Any("error", err))
	}

	// WebSocket hub
	hub := realtime.NewHub(logger)
	go hub.Run(ctx)
	stopForward := realtime.Forward(hub, bus, logger)
	defer stopForward()

	// Обратный отсчёт турниров для комнат WebSocket
	timers := realtime.NewTimers(hub, tournamentService, nil, logger)
	detachTimers := timers.Attach(ctx, bus)
	defer func() {
		detachTimers()
		timers.Close()
	}()
	timers.Seed(cache.Tournaments())
	logger.Info("WebSocket hub started")

	// Планировщик статусов и таймеров турниров
	scheduler, err := services.NewScheduler(tournamentService, logger, cfg.SchedulerInterval)
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		return 1
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logger.Error("scheduler shutdown failed", slog.Any("error", err))
		}
	}()

	// Инициализация обработчиков HTTP
	registrationHandler := handlers.NewRegistrationHandler(tournamentService, registrationService, profileService, logger)
	h := api.Handlers{
		Tournament:   handlers.NewTournamentHandler(tournamentService, cache),
		Registration: registrationHandler,
		Player:       handlers.NewPlayerHandler(playerService, profileService, cache),
		Match:        handlers.NewMatchHandler(matchService, cache),
		Sponsor:      handlers.NewSponsorHandler(sponsorService),
		LiveMatch:    handlers.NewLiveMatchHandler(liveMatchService, cache),
		Wallet:       handlers.NewWalletHandler(walletService),
		Upload:       handlers.NewUploadHandler(uploader),
		WebSocket:    handlers.NewWebSocketHandler(hub, bus, registrationHandler, cfg.CORSAllowedOrigins, logger),
	}

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, h, api.Options{
		JWTSecret:          cfg.JWTSecretKey,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RegisterRateLimit:  cfg.RegisterRateLimit,
	})
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			exitCode = 1
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			exitCode = 1
		} else {
			logger.Info("server shutdown complete")
		}
	}

	// Останавливаем фоновые горутины до закрытия БД
	stop()
	logger.Info("application exited")
	return exitCode
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
