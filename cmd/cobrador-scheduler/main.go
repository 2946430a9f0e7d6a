// Cobrador Scheduler — ядро бота управления подписками.
//
// Один процесс держит:
//   - цикл планировщика с тремя каденциями (окна напоминаний и отчётов,
//     зачистка просроченных клиентов, сверка платежей);
//   - consumer payments.updated (при доступном RabbitMQ);
//   - ops API (/healthz, /metrics, /api/v1).
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/cobrador/internal/api"
	"github.com/shaiso/cobrador/internal/config"
	"github.com/shaiso/cobrador/internal/domain"
	"github.com/shaiso/cobrador/internal/gateway/mercadopago"
	"github.com/shaiso/cobrador/internal/gateway/telegram"
	"github.com/shaiso/cobrador/internal/gateway/whatsapp"
	"github.com/shaiso/cobrador/internal/mq"
	"github.com/shaiso/cobrador/internal/notifier"
	"github.com/shaiso/cobrador/internal/payments"
	"github.com/shaiso/cobrador/internal/repo"
	"github.com/shaiso/cobrador/internal/scheduler"
	"github.com/shaiso/cobrador/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting cobrador-scheduler")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	loc := cfg.Location()

	// DB pool
	pool, err := repo.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	// Создаём репозитории
	userRepo := repo.NewUserRepo(pool)
	settingsRepo := repo.NewSettingsRepo(pool)
	clientRepo := repo.NewClientRepo(pool)
	templateRepo := repo.NewTemplateRepo(pool)
	logRepo := repo.NewMessageLogRepo(pool)
	subRepo := repo.NewSubscriptionRepo(pool)

	// Внешние шлюзы
	waClient := whatsapp.NewClient(whatsapp.Config{
		BaseURL: cfg.WhatsAppURL,
		Token:   cfg.WhatsAppToken,
		Short:   cfg.WhatsAppShortTimeout,
		Long:    cfg.WhatsAppLongTimeout,
		Logger:  logger,
	})
	tgClient := telegram.NewClient(cfg.TelegramToken)
	mpClient := mercadopago.NewClient(cfg.MercadoPagoToken)

	// RabbitMQ — опционально, без него чистый polling
	var mqConn *mq.Connection
	var publisher *mq.Publisher
	if cfg.RabbitURL != "" {
		mqConn, err = mq.NewConnection(cfg.RabbitURL, logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, running in polling-only mode", "error", err)
			mqConn = nil
		} else {
			defer mqConn.Close()
			logger.Info("RabbitMQ connected")

			// Создаём топологию
			if err := mq.SetupTopology(ctx, mqConn); err != nil {
				logger.Warn("failed to setup topology", "error", err)
			}

			publisher = mq.NewPublisher(mqConn, logger)
		}
	} else {
		logger.Info("RABBITMQ_URL not set, running in polling-only mode")
	}

	// Диспетчер напоминаний
	dispatcherCfg := notifier.Config{
		Templates: templateRepo,
		Logs:      logRepo,
		Sender:    waClient,
		Logger:    logger,
	}
	if publisher != nil {
		dispatcherCfg.Events = publisher
	}
	dispatcher := notifier.New(dispatcherCfg)

	// Мост и уведомление об оплате через него
	bridge := scheduler.NewBridge(logger)
	notify := func(ctx context.Context, user *domain.User, text string) error {
		return bridge.Run(ctx, "approval-notice", scheduler.NotifyTimeout, func(ctx context.Context) error {
			return tgClient.SendNotification(ctx, user.TelegramID, text)
		})
	}

	// Сверка платежей
	reconcilerCfg := payments.Config{
		Subscriptions: subRepo,
		Users:         userRepo,
		Gateway:       mpClient,
		Notify:        notify,
		Logger:        logger,
	}
	if publisher != nil {
		reconcilerCfg.Events = publisher
	}
	reconciler := payments.New(reconcilerCfg)

	// Зачистка просроченных клиентов
	var sweepEvents scheduler.SweepEvents
	if publisher != nil {
		sweepEvents = publisher
	}
	sweeper := scheduler.NewSweeper(clientRepo, sweepEvents, logger)

	// Планировщик
	svc := scheduler.New(scheduler.Config{
		Users:       userRepo,
		Settings:    settingsRepo,
		Clients:     clientRepo,
		Dispatcher:  dispatcher,
		BuildReport: notifier.BuildDailyReport,
		Chat:        tgClient,
		Reconciler:  reconciler,
		Sweeper:     sweeper,
		Bridge:      bridge,
		Conn:        mqConn,
		Location:    loc,
		Logger:      logger,
	})

	if err := svc.Start(ctx); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics + ops API
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	handler := api.NewHandler(api.Config{
		Clients:   clientRepo,
		Logs:      logRepo,
		Users:     userRepo,
		Sender:    dispatcher,
		Scheduler: svc,
		WhatsApp:  waClient,
		Location:  loc,
		Logger:    logger,
	})
	handler.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	svc.Stop()
	logger.Info("cobrador-scheduler stopped")
}
