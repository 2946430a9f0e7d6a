package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/cobrador/internal/domain"
	"github.com/shaiso/cobrador/internal/gateway/whatsapp"
	"github.com/shaiso/cobrador/internal/repo"
	"github.com/shaiso/cobrador/internal/telemetry"
)

// TemplateStore — доступ к шаблонам, нужный диспетчеру.
type TemplateStore interface {
	GetActive(ctx context.Context, userID int64, t domain.TemplateType) (*domain.MessageTemplate, error)
}

// LogStore — журнал доставки: запись результата и проверка дедупликации.
type LogStore interface {
	Create(ctx context.Context, log *domain.MessageLog) error
	SentExists(ctx context.Context, userID, clientID, templateID int64, dayStart time.Time) (bool, error)
}

// Sender — канал отправки (WhatsApp-шлюз).
type Sender interface {
	SendMessage(ctx context.Context, phone, content string, sessionID int64) (*whatsapp.SendResult, error)
}

// Events — событийная шина. Nil-безопасный опциональный коллаборатор.
type Events interface {
	PublishMessageSent(ctx context.Context, log *domain.MessageLog) error
}

// Dispatcher рендерит шаблон по клиенту и выполняет отправку,
// фиксируя результат в журнале.
//
// Контракты:
//   - не больше одной успешной отправки на (user, client, template, день);
//   - каждая попытка отправки даёт ровно одну запись журнала;
//   - ошибка по одному клиенту не прерывает пачку.
type Dispatcher struct {
	templates TemplateStore
	logs      LogStore
	sender    Sender
	events    Events
	logger    *slog.Logger
}

// Config — конфигурация Dispatcher.
type Config struct {
	Templates TemplateStore
	Logs      LogStore
	Sender    Sender
	Events    Events // опционально
	Logger    *slog.Logger
}

// New создаёт новый Dispatcher.
func New(cfg Config) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		templates: cfg.Templates,
		logs:      cfg.Logs,
		sender:    cfg.Sender,
		events:    cfg.Events,
		logger:    logger,
	}
}

// SendReminders отправляет напоминания одного вида пачке клиентов.
//
// Возвращает количество фактически отправленных сообщений (пропуски
// дедупликации не считаются). Отсутствие активного шаблона — штатный
// пропуск, не ошибка.
func (d *Dispatcher) SendReminders(ctx context.Context, user *domain.User, clients []domain.Client, tplType domain.TemplateType, now time.Time) (int, error) {
	template, err := d.templates.GetActive(ctx, user.ID, tplType)
	if errors.Is(err, repo.ErrNotFound) {
		d.logger.Info("no active template, skipping",
			"user_id", user.ID,
			"template_type", tplType,
		)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get template %s: %w", tplType, err)
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var sent int
	for i := range clients {
		client := &clients[i]

		ok, err := d.sendOne(ctx, user, client, template, dayStart, now)
		if err != nil {
			d.logger.Error("failed to process reminder",
				"user_id", user.ID,
				"client_id", client.ID,
				"template_type", tplType,
				"error", err,
			)
			// Продолжаем обработку остальных клиентов
			continue
		}
		if ok {
			sent++
		}
	}
	return sent, nil
}

// sendOne обрабатывает одного клиента. Возвращает true, если сообщение
// было отправлено (не дубликат).
func (d *Dispatcher) sendOne(ctx context.Context, user *domain.User, client *domain.Client, template *domain.MessageTemplate, dayStart, now time.Time) (bool, error) {
	// Дедупликация: одна успешная отправка в календарный день
	exists, err := d.logs.SentExists(ctx, user.ID, client.ID, template.ID, dayStart)
	if err != nil {
		return false, fmt.Errorf("check dedup: %w", err)
	}
	if exists {
		d.logger.Debug("already sent today, skipping",
			"user_id", user.ID,
			"client_id", client.ID,
			"template_id", template.ID,
		)
		return false, nil
	}

	content := FillTemplate(template.Content, client)

	res, err := d.sender.SendMessage(ctx, client.PhoneNumber, content, user.ID)

	log := &domain.MessageLog{
		UserID:         user.ID,
		ClientID:       client.ID,
		TemplateID:     template.ID,
		Content:        content,
		RecipientPhone: client.PhoneNumber,
		SentAt:         now,
	}
	switch {
	case err != nil:
		log.Status = domain.DeliveryFailed
		log.Error = err.Error()
	case !res.Success:
		log.Status = domain.DeliveryFailed
		log.Error = res.Error
		if log.Error == "" {
			log.Error = "send failed"
		}
	default:
		log.Status = domain.DeliverySent
	}

	// Запись журнала обязательна при любом исходе отправки
	if lerr := d.logs.Create(ctx, log); lerr != nil {
		return false, fmt.Errorf("write message log: %w", lerr)
	}

	telemetry.MessagesSent.WithLabelValues("whatsapp", string(log.Status)).Inc()

	if d.events != nil {
		if perr := d.events.PublishMessageSent(ctx, log); perr != nil {
			// Событие best-effort: журнал уже записан
			d.logger.Warn("failed to publish message.sent",
				"client_id", client.ID,
				"error", perr,
			)
		}
	}

	return log.Status == domain.DeliverySent, nil
}
