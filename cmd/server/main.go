package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"arbitrage/internal/ai"
	"arbitrage/internal/analytics"
	"arbitrage/internal/api"
	"arbitrage/internal/api/stream"
	"arbitrage/internal/config"
	"arbitrage/internal/discovery"
	"arbitrage/internal/marketplace"
	"arbitrage/internal/notifier"
	"arbitrage/internal/reconcile"
	"arbitrage/internal/repository"
	"arbitrage/internal/scanner"
	"arbitrage/internal/scheduler"
	"arbitrage/internal/scraper"
	"arbitrage/internal/service"
	"arbitrage/internal/webhook"
	"arbitrage/pkg/utils"

	_ "github.com/lib/pq"
)

const (
	jobMonitorLoop   = "monitor_loop"
	jobAlertCleanup  = "alert_cleanup"
	jobDealScanner   = "deal_scanner"
	jobDiscovery     = "discovery_cycle"
	jobListingSync   = "listing_sync"
	jobOrderMonitor  = "order_monitor"
	jobHeartbeat     = "health_heartbeat"
	jobItemPurge     = "item_purge"
	heartbeatInterval = 24 * time.Hour
	purgeInterval     = 6 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := utils.InitGlobalLogger(utils.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	defer log.Sync()

	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	log.Info("connected to database")

	// ============================================================
	// Репозитории
	// ============================================================
	dealRepo := repository.NewDealAlertRepository(db)
	itemRepo := repository.NewMonitoredItemRepository(db)
	keywordRepo := repository.NewWatchedKeywordRepository(db)
	candidateRepo := repository.NewKeywordCandidateRepository(db)
	rejectionRepo := repository.NewRejectionPatternRepository(db)
	presetRepo := repository.NewListingPresetRepository(db)
	templateRepo := repository.NewConditionTemplateRepository(db)
	historyRepo := repository.NewStatusHistoryRepository(db)
	logRepo := repository.NewDiscoveryLogRepository(db)

	// ============================================================
	// Внешние клиенты
	// ============================================================
	auctionClient := scraper.New(scraper.Config{
		UserAgent:      os.Getenv("SCRAPER_USER_AGENT"),
		RequestTimeout: 30 * time.Second,
		RateLimitRPS:   2,
		RateLimitBurst: 4,
	})

	analyticsClient := analytics.NewClient(cfg.Analytics.APIKey, cfg.Analytics.BaseURL)

	marketplaceClient := marketplace.NewClient(marketplace.Config{
		BaseURL:       cfg.Marketplace.BaseURL,
		SellerID:      cfg.Marketplace.SellerID,
		RefreshToken:  cfg.Marketplace.RefreshToken,
		LWAAppID:      cfg.Marketplace.ClientID,
		LWASecret:     cfg.Marketplace.ClientSecret,
		MarketplaceID: cfg.Marketplace.MarketplaceID,
	})

	var llmClient ai.LLMClient
	if cfg.Discovery.LLMEnabled {
		llmClient = ai.NewLLMClient(cfg.Discovery.LLMEndpoint, cfg.Discovery.LLMAPIKey, cfg.Discovery.LLMModel)
	}

	// ============================================================
	// Сервисы
	// ============================================================
	keywordService := service.NewKeywordService(keywordRepo, candidateRepo)
	dealService := service.NewDealAlertService(dealRepo, keywordRepo)
	rejectionService := service.NewRejectionService(rejectionRepo)
	itemService := service.NewMonitoredItemService(itemRepo)
	listingService := service.NewListingService(marketplaceClient, cfg.Marketplace.SellerID, itemService, presetRepo)

	// ============================================================
	// WebSocket hub — push DealAlert/прогресс обнаружения оператору
	// ============================================================
	hub := stream.NewHub(log.Logger)
	go hub.Run()

	// ============================================================
	// Webhook-канал и диспетчер уведомлений
	// ============================================================
	sender := webhook.NewSender(webhook.Config{
		Type:      cfg.Webhooks.Type,
		URL:       cfg.Webhooks.URL,
		LineToken: cfg.Webhooks.LineToken,
		LineTo:    cfg.Webhooks.LineTo,
	}, log.Logger)

	dispatcher := notifier.NewDispatcher(sender, hub, log.Logger)
	healthTracker := notifier.NewHealthTracker(sender, log.Logger)

	// ============================================================
	// Сканер сделок и движок обнаружения ключевых слов
	// ============================================================
	dealScanner := scanner.New(
		cfg.Scanner,
		analyticsClient,
		auctionClient,
		marketplaceClient,
		cfg.Marketplace.SellerID,
		keywordService,
		dealService,
		rejectionService,
		dispatcher,
		log.Logger,
	)

	discoveryEngine := discovery.New(
		cfg.Discovery,
		cfg.Scanner,
		analyticsClient,
		auctionClient,
		marketplaceClient,
		llmClient,
		keywordService,
		dealService,
		rejectionService,
		logRepo,
		log.Logger,
	)

	// ============================================================
	// Reconcile: цикл мониторинга лотов, проверка листингов, заказы
	// ============================================================
	monitorLoop := reconcile.New(
		auctionClient,
		itemService,
		dealService,
		historyRepo,
		cfg.Scheduler.MinCheckInterval,
		[]reconcile.Notifier{dispatcher, reconcile.NewAmazonNotifier(marketplaceClient, itemService, cfg.Marketplace.SellerID, log.Logger)},
		log.Logger,
	)

	listingSyncChecker := reconcile.NewListingSyncChecker(marketplaceClient, itemService, historyRepo, cfg.Marketplace.SellerID, log.Logger)
	orderMonitor := reconcile.NewOrderMonitor(marketplaceClient, sender, log.Logger)

	// ============================================================
	// Планировщик фоновых задач (§4.J)
	// ============================================================
	sched := scheduler.New(log.Logger)

	registerJob := func(name string, interval time.Duration, fn scheduler.JobFunc) {
		if err := sched.Register(name, interval, healthTracker.Wrap(name, fn)); err != nil {
			log.Fatal("failed to register job", zap.String("job", name), zap.Error(err))
		}
	}

	registerJob(jobMonitorLoop, cfg.Scheduler.MinCheckInterval, func(ctx context.Context) error {
		_, err := monitorLoop.Tick(ctx)
		return err
	})
	registerJob(jobAlertCleanup, cfg.Scheduler.AlertCleanupInterval, func(ctx context.Context) error {
		_, err := dealService.ExpireStale(7 * 24 * time.Hour)
		return err
	})
	registerJob(jobDealScanner, cfg.Scanner.ScanInterval, func(ctx context.Context) error {
		_, err := dealScanner.RunCycle(ctx)
		return err
	})
	registerJob(jobDiscovery, cfg.Discovery.Interval, func(ctx context.Context) error {
		_, err := discoveryEngine.RunCycle(ctx)
		return err
	})
	registerJob(jobListingSync, cfg.Scheduler.ListingSyncInterval, listingSyncChecker.Run)
	registerJob(jobOrderMonitor, cfg.Scheduler.OrderMonitorInterval, orderMonitor.Run)
	registerJob(jobHeartbeat, heartbeatInterval, healthTracker.Heartbeat)
	registerJob(jobItemPurge, purgeInterval, func(ctx context.Context) error {
		items, err := itemService.PurgeEligible()
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := itemService.Purge(item.ID); err != nil {
				log.Warn("failed to purge item", zap.Int("item_id", item.ID), zap.Error(err))
			}
		}
		return nil
	})

	sched.Start()

	// ============================================================
	// HTTP сервер
	// ============================================================
	deps := &api.Dependencies{
		DealAlerts:     dealService,
		Items:          itemService,
		Keywords:       keywordService,
		Rejections:     rejectionService,
		Listings:       listingService,
		Presets:        presetRepo,
		Templates:      templateRepo,
		DB:             db,
		Hub:            hub,
		HealthReporter: healthTracker,
		APIKey:         cfg.Security.APIKey,
		Log:            log.Logger,
	}

	router := api.SetupRoutes(deps)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("addr", server.Addr))
		var serveErr error
		if cfg.Server.UseHTTPS {
			serveErr = server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		} else {
			serveErr = server.ListenAndServe()
		}
		if serveErr != nil && serveErr != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(serveErr))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sched.Shutdown(shutdownCtx); err != nil {
		log.Error("scheduler shutdown error", zap.Error(err))
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exited")
}

// initDatabase открывает пул соединений с БД и проверяет доступность.
func initDatabase(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	db, err := sql.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
