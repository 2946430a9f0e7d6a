package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/cobrador/internal/domain"
	"github.com/shaiso/cobrador/internal/mq"
)

// pollResolution — шаг опроса каденций. Окна заданы с точностью до
// минуты, секундный шаг даёт запас на дрожание часов.
const pollResolution = time.Second

// Имена каденций.
const (
	CadenceReminders = "reminders"
	CadenceSweep     = "sweep"
	CadencePayments  = "payments"
)

// UserStore — доступ к пользователям, нужный планировщику.
type UserStore interface {
	ListActive(ctx context.Context) ([]domain.User, error)
}

// SettingsStore — настройки расписания и маркеры последних запусков.
type SettingsStore interface {
	GetOrCreate(ctx context.Context, userID int64) (*domain.ScheduleSettings, error)
	SetLastMorningRun(ctx context.Context, userID int64, day time.Time) error
	SetLastReportRun(ctx context.Context, userID int64, day time.Time) error
}

// ClientStore — доступ к клиентам для напоминаний и отчёта.
type ClientStore interface {
	ListDueOn(ctx context.Context, userID int64, day time.Time) ([]domain.Client, error)
	ListActiveByUser(ctx context.Context, userID int64) ([]domain.Client, error)
}

// ReminderDispatcher — пакетная отправка напоминаний одного вида.
type ReminderDispatcher interface {
	SendReminders(ctx context.Context, user *domain.User, clients []domain.Client, tplType domain.TemplateType, now time.Time) (int, error)
}

// ReportBuilder — построение текста дневного отчёта.
type ReportBuilder func(today time.Time, clients []domain.Client) string

// ChatSender — доставка отчёта владельцу в Telegram.
type ChatSender interface {
	SendNotification(ctx context.Context, chatID int64, text string) error
}

// Reconciler — сверка платежей, каденция и consumer payments.updated.
type Reconciler interface {
	Reconcile(ctx context.Context, now time.Time) error
	ReconcileOne(ctx context.Context, paymentID string, now time.Time) error
}

// CadenceStatus — состояние каденции для ops-API.
type CadenceStatus struct {
	Name    string    `json:"name"`
	NextDue time.Time `json:"next_due"`
}

// Service — ядро планировщика.
//
// Один цикл с секундным шагом кооперативно обслуживает три каденции:
//   - reminders (1 мин): окна напоминаний и отчётов по каждому пользователю
//   - sweep     (1 час): деактивация просроченных клиентов
//   - payments  (2 мин): сверка pending-платежей со шлюзом
//
// Тяжёлые отправки уходят через Bridge с жёсткими таймаутами, чтобы
// зависший шлюз не останавливал цикл навсегда.
type Service struct {
	users    UserStore
	settings SettingsStore
	clients  ClientStore

	dispatcher  ReminderDispatcher
	buildReport ReportBuilder
	chat        ChatSender
	reconciler  Reconciler
	sweeper     *Sweeper
	bridge      *Bridge

	// MQ (опционально: nil — чистый polling)
	conn     *mq.Connection
	consumer *mq.Consumer

	loc      *time.Location
	logger   *slog.Logger
	cadences []*cadence

	// Lifecycle
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	running    bool
	runningMu  sync.RWMutex
}

// Config — конфигурация Service.
type Config struct {
	Users    UserStore
	Settings SettingsStore
	Clients  ClientStore

	Dispatcher  ReminderDispatcher
	BuildReport ReportBuilder
	Chat        ChatSender
	Reconciler  Reconciler
	Sweeper     *Sweeper
	Bridge      *Bridge

	// Conn — подключение к RabbitMQ (опционально).
	// При nil consumer payments.updated не поднимается.
	Conn *mq.Connection

	Location *time.Location
	Logger   *slog.Logger
}

// New создаёт новый Service.
func New(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	bridge := cfg.Bridge
	if bridge == nil {
		bridge = NewBridge(logger)
	}

	return &Service{
		users:       cfg.Users,
		settings:    cfg.Settings,
		clients:     cfg.Clients,
		dispatcher:  cfg.Dispatcher,
		buildReport: cfg.BuildReport,
		chat:        cfg.Chat,
		reconciler:  cfg.Reconciler,
		sweeper:     cfg.Sweeper,
		bridge:      bridge,
		conn:        cfg.Conn,
		loc:         loc,
		logger:      logger,
	}
}

// Bridge возвращает мост планировщика — для переиспользования в
// best-effort уведомлениях вне каденций (approved из consumer'а).
func (s *Service) Bridge() *Bridge {
	return s.bridge
}

// Start запускает цикл планировщика.
// Повторный Start работающего сервиса — no-op с предупреждением.
func (s *Service) Start(ctx context.Context) error {
	s.runningMu.Lock()
	if s.running {
		s.runningMu.Unlock()
		s.logger.Warn("scheduler already running, start ignored")
		return nil
	}
	s.running = true
	s.runningMu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancelFunc = cancel

	now := time.Now().In(s.loc)
	cadences, err := s.buildCadences(now)
	if err != nil {
		cancel()
		return fmt.Errorf("build cadences: %w", err)
	}
	s.cadences = cadences

	s.bridge.Start(ctx)

	// Consumer payments.updated — ускоритель между polling-тиками
	if s.conn != nil {
		s.consumer = mq.NewConsumer(s.conn, s.logger, mq.ConsumerConfig{
			Queue:   string(mq.QueuePaymentsUpdated),
			Handler: s.handlePaymentUpdated,
		})

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("payments consumer error", "error", err)
			}
		}()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()

	s.logger.Info("scheduler started",
		"timezone", s.loc.String(),
		"cadences", len(s.cadences),
	)
	return nil
}

// Stop останавливает цикл и ждёт завершения текущего тика.
func (s *Service) Stop() {
	s.runningMu.Lock()
	if !s.running {
		s.runningMu.Unlock()
		return
	}
	s.running = false
	s.runningMu.Unlock()

	s.logger.Info("stopping scheduler...")

	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	if s.consumer != nil {
		s.consumer.Stop()
	}
	s.wg.Wait()
	s.bridge.Stop()

	s.logger.Info("scheduler stopped")
}

// IsRunning сообщает, работает ли цикл.
func (s *Service) IsRunning() bool {
	s.runningMu.RLock()
	defer s.runningMu.RUnlock()
	return s.running
}

// Status возвращает состояние каденций для ops-API.
func (s *Service) Status() []CadenceStatus {
	out := make([]CadenceStatus, 0, len(s.cadences))
	for _, c := range s.cadences {
		out = append(out, CadenceStatus{Name: c.name, NextDue: c.nextDue()})
	}
	return out
}

func (s *Service) buildCadences(now time.Time) ([]*cadence, error) {
	reminders, err := newCadence(CadenceReminders, reminderCadenceExpr, now, s.checkWindows)
	if err != nil {
		return nil, err
	}
	sweep, err := newCadence(CadenceSweep, sweepCadenceExpr, now, func(ctx context.Context) error {
		return s.sweeper.Sweep(ctx, time.Now().In(s.loc))
	})
	if err != nil {
		return nil, err
	}
	payments, err := newCadence(CadencePayments, paymentsCadenceExpr, now, func(ctx context.Context) error {
		return s.reconciler.Reconcile(ctx, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	return []*cadence{reminders, sweep, payments}, nil
}

// loop — основной цикл. Каденции выполняются последовательно в одной
// горутине: долгий тик задерживает соседей, но никогда не накладывается.
func (s *Service) loop(ctx context.Context) {
	ticker := time.NewTicker(pollResolution)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now().In(s.loc)
			for _, c := range s.cadences {
				c.maybeRun(ctx, now, s.logger)
			}
		}
	}
}

// checkWindows — минутная каденция: обходит активных пользователей и
// решает по каждому, пора ли выполнить утренние напоминания и отчёт.
func (s *Service) checkWindows(ctx context.Context) error {
	now := time.Now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	users, err := s.users.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active users: %w", err)
	}

	for i := range users {
		user := &users[i]

		settings, err := s.settings.GetOrCreate(ctx, user.ID)
		if err != nil {
			s.logger.Error("failed to load schedule settings",
				"user_id", user.ID,
				"error", err,
			)
			// Продолжаем обработку остальных
			continue
		}

		s.maybeRunReminders(ctx, user, settings, now, today)
		s.maybeRunReport(ctx, user, settings, now, today)
	}
	return nil
}

// maybeRunReminders выполняет утреннюю рассылку, если окно открыто.
// Маркер продвигается только после успеха: при ошибке следующая минута
// повторит попытку, дедупликация журнала защищает от дублей.
func (s *Service) maybeRunReminders(ctx context.Context, user *domain.User, settings *domain.ScheduleSettings, now, today time.Time) {
	// auto_send выключает только напоминания, отчёт живёт своей жизнью
	if !settings.AutoSendEnabled {
		return
	}
	if !ShouldFire(settings.MorningReminderTime, DefaultReminderClock, settings.LastMorningRun, now, s.logger) {
		return
	}

	s.logger.Info("morning reminder window open", "user_id", user.ID)

	err := s.bridge.Run(ctx, "daily-reminders", BatchTimeout, func(ctx context.Context) error {
		return s.runDailyReminders(ctx, user, now, today)
	})
	if err != nil {
		s.logger.Error("daily reminders failed, will retry next minute",
			"user_id", user.ID,
			"error", err,
		)
		return
	}

	if err := s.settings.SetLastMorningRun(ctx, user.ID, today); err != nil {
		s.logger.Error("failed to advance morning marker",
			"user_id", user.ID,
			"error", err,
		)
	}
}

// runDailyReminders проходит четыре смещения срока платежа и отправляет
// соответствующий вид напоминания каждой группе клиентов.
func (s *Service) runDailyReminders(ctx context.Context, user *domain.User, now, today time.Time) error {
	var firstErr error
	for _, offset := range domain.ReminderOffsets {
		day := today.AddDate(0, 0, offset.Days)

		clients, err := s.clients.ListDueOn(ctx, user.ID, day)
		if err != nil {
			s.logger.Error("failed to list due clients",
				"user_id", user.ID,
				"template_type", offset.Type,
				"error", err,
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if len(clients) == 0 {
			continue
		}

		sent, err := s.dispatcher.SendReminders(ctx, user, clients, offset.Type, now)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.logger.Info("reminder batch processed",
			"user_id", user.ID,
			"template_type", offset.Type,
			"clients", len(clients),
			"sent", sent,
		)
	}
	return firstErr
}

// maybeRunReport отправляет дневной отчёт, если окно открыто.
func (s *Service) maybeRunReport(ctx context.Context, user *domain.User, settings *domain.ScheduleSettings, now, today time.Time) {
	if !ShouldFire(settings.DailyReportTime, DefaultReportClock, settings.LastReportRun, now, s.logger) {
		return
	}

	err := s.bridge.Run(ctx, "daily-report", NotifyTimeout, func(ctx context.Context) error {
		return s.runDailyReport(ctx, user, today)
	})
	if err != nil {
		s.logger.Error("daily report failed, will retry next minute",
			"user_id", user.ID,
			"error", err,
		)
		return
	}

	if err := s.settings.SetLastReportRun(ctx, user.ID, today); err != nil {
		s.logger.Error("failed to advance report marker",
			"user_id", user.ID,
			"error", err,
		)
	}
}

func (s *Service) runDailyReport(ctx context.Context, user *domain.User, today time.Time) error {
	clients, err := s.clients.ListActiveByUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("list active clients: %w", err)
	}

	text := s.buildReport(today, clients)
	if text == "" {
		// Нет ни одного клиента в секциях — отчёт не шлём
		return nil
	}

	if err := s.chat.SendNotification(ctx, user.TelegramID, text); err != nil {
		return fmt.Errorf("send daily report: %w", err)
	}

	s.logger.Info("daily report sent", "user_id", user.ID)
	return nil
}

// handlePaymentUpdated — consumer payments.updated. Сверяет одну
// подписку немедленно, не дожидаясь двухминутного тика.
func (s *Service) handlePaymentUpdated(ctx context.Context, msg *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.PaymentUpdatedPayload](&msg.Message)
	if err != nil {
		return fmt.Errorf("parse payment.updated payload: %w", err)
	}

	if err := s.reconciler.ReconcileOne(ctx, payload.PaymentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("reconcile payment %s: %w", payload.PaymentID, err)
	}
	return nil
}
