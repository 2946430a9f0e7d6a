package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/shaiso/cobrador/internal/domain"
	"github.com/shaiso/cobrador/internal/gateway/whatsapp"
	"github.com/shaiso/cobrador/internal/repo"
	"github.com/shaiso/cobrador/internal/scheduler"
)

// ClientStore — доступ к клиентам для ops API.
type ClientStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	List(ctx context.Context, filter repo.ClientFilter) ([]domain.Client, error)
}

// LogStore — доступ к журналу доставки.
type LogStore interface {
	List(ctx context.Context, filter repo.LogFilter) ([]domain.MessageLog, error)
}

// UserStore — доступ к пользователям.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// ReminderSender — ручная отправка напоминания через диспетчер.
type ReminderSender interface {
	SendReminders(ctx context.Context, user *domain.User, clients []domain.Client, tplType domain.TemplateType, now time.Time) (int, error)
}

// SchedulerInfo — состояние планировщика для /status.
type SchedulerInfo interface {
	IsRunning() bool
	Status() []scheduler.CadenceStatus
}

// WhatsAppGateway — прокси к WhatsApp-шлюзу.
type WhatsAppGateway interface {
	Status(ctx context.Context, sessionID int64) (*whatsapp.InstanceStatus, error)
	Reconnect(ctx context.Context, sessionID int64) (bool, error)
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	clients ClientStore
	logs    LogStore
	users   UserStore
	sender  ReminderSender
	sched   SchedulerInfo
	wa      WhatsAppGateway
	loc     *time.Location
	logger  *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Clients   ClientStore
	Logs      LogStore
	Users     UserStore
	Sender    ReminderSender
	Scheduler SchedulerInfo
	WhatsApp  WhatsAppGateway
	Location  *time.Location
	Logger    *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		clients: cfg.Clients,
		logs:    cfg.Logs,
		users:   cfg.Users,
		sender:  cfg.Sender,
		sched:   cfg.Scheduler,
		wa:      cfg.WhatsApp,
		loc:     loc,
		logger:  cfg.Logger,
	}
}
