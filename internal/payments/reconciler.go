package payments

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/cobrador/internal/domain"
	"github.com/shaiso/cobrador/internal/gateway/mercadopago"
	"github.com/shaiso/cobrador/internal/notifier"
	"github.com/shaiso/cobrador/internal/telemetry"
)

// SubscriptionStore — доступ к подпискам, нужный воркеру сверки.
type SubscriptionStore interface {
	ListPendingSince(ctx context.Context, since time.Time) ([]domain.Subscription, error)
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)
	Update(ctx context.Context, s *domain.Subscription) error
	GetByPaymentID(ctx context.Context, paymentID string) (*domain.Subscription, error)
}

// UserStore — доступ к пользователям для активации при оплате.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

// Gateway — платёжный шлюз. Ошибки приходят внутри PaymentStatus,
// per-item обработка не прерывает пачку.
type Gateway interface {
	CheckPaymentStatus(ctx context.Context, paymentID string) *mercadopago.PaymentStatus
}

// Notify — доставка уведомления об оплате владельцу. Best-effort:
// ошибка логируется и не откатывает approved.
type Notify func(ctx context.Context, user *domain.User, text string) error

// Events — событийная шина. Опциональна.
type Events interface {
	PublishSubscriptionApproved(ctx context.Context, s *domain.Subscription) error
}

// Reconciler выравнивает статусы подписок со взглядом платёжного шлюза.
//
// Работает строго в 24-часовом окне свежести: свежие pending опрашиваются
// у шлюза, более старые переводятся в expired без опроса.
type Reconciler struct {
	subs    SubscriptionStore
	users   UserStore
	gateway Gateway
	notify  Notify
	events  Events
	logger  *slog.Logger
}

// Config — конфигурация Reconciler.
type Config struct {
	Subscriptions SubscriptionStore
	Users         UserStore
	Gateway       Gateway
	Notify        Notify // опционально
	Events        Events // опционально
	Logger        *slog.Logger
}

// New создаёт новый Reconciler.
func New(cfg Config) *Reconciler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		subs:    cfg.Subscriptions,
		users:   cfg.Users,
		gateway: cfg.Gateway,
		notify:  cfg.Notify,
		events:  cfg.Events,
		logger:  logger,
	}
}

// Reconcile выполняет один проход сверки.
//
// 1. Pending моложе 24 часов — опрос шлюза, per-item изоляция ошибок.
// 2. Pending старше 24 часов — expired независимо от ответа шлюза.
func (r *Reconciler) Reconcile(ctx context.Context, now time.Time) error {
	since := now.Add(-domain.PendingWindow)

	pendings, err := r.subs.ListPendingSince(ctx, since)
	if err != nil {
		return fmt.Errorf("list pending subscriptions: %w", err)
	}

	var approved int
	for i := range pendings {
		sub := &pendings[i]

		ok, err := r.reconcileSub(ctx, sub, now)
		if err != nil {
			r.logger.Error("failed to reconcile subscription",
				"subscription_id", sub.ID,
				"payment_id", sub.PaymentID,
				"error", err,
			)
			// Продолжаем обработку остальных
			continue
		}
		if ok {
			approved++
		}
	}

	expired, err := r.subs.ExpireStale(ctx, since)
	if err != nil {
		return fmt.Errorf("expire stale subscriptions: %w", err)
	}
	if expired > 0 {
		telemetry.PaymentsReconciled.WithLabelValues("expired").Add(float64(expired))
	}

	r.logger.Info("payment reconciliation completed",
		"pending", len(pendings),
		"approved", approved,
		"expired", expired,
	)
	return nil
}

// ReconcileOne сверяет одну подписку по payment_id.
// Вызывается из consumer'а payments.updated между polling-тиками;
// polling остаётся источником истины.
func (r *Reconciler) ReconcileOne(ctx context.Context, paymentID string, now time.Time) error {
	sub, err := r.subs.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("get subscription by payment: %w", err)
	}
	if sub.Status.IsTerminal() {
		return nil
	}
	if sub.IsStale(now) {
		sub.Status = domain.SubscriptionExpired
		if err := r.subs.Update(ctx, sub); err != nil {
			return fmt.Errorf("expire subscription: %w", err)
		}
		telemetry.PaymentsReconciled.WithLabelValues("expired").Inc()
		return nil
	}
	_, err = r.reconcileSub(ctx, sub, now)
	return err
}

// reconcileSub опрашивает шлюз и применяет переход статуса.
// Возвращает true при approved.
func (r *Reconciler) reconcileSub(ctx context.Context, sub *domain.Subscription, now time.Time) (bool, error) {
	st := r.gateway.CheckPaymentStatus(ctx, sub.PaymentID)
	if !st.Success {
		return false, fmt.Errorf("gateway check failed: %s", st.Error)
	}

	switch domain.ParseGatewayStatus(st.Status) {
	case domain.SubscriptionApproved:
		if err := r.approve(ctx, sub, now); err != nil {
			return false, err
		}
		return true, nil

	case domain.SubscriptionRejected, domain.SubscriptionCancelled:
		sub.Status = domain.ParseGatewayStatus(st.Status)
		if err := r.subs.Update(ctx, sub); err != nil {
			return false, fmt.Errorf("update subscription: %w", err)
		}
		telemetry.PaymentsReconciled.WithLabelValues(string(sub.Status)).Inc()
		return false, nil

	default:
		// pending — без изменений, только наблюдаемость
		r.logger.Debug("payment still pending",
			"payment_id", sub.PaymentID,
			"status_detail", st.StatusDetail,
		)
		return false, nil
	}
}

// approve применяет терминальный переход approved: подписка, владелец,
// событие, уведомление. Ошибка уведомления не откатывает approved.
func (r *Reconciler) approve(ctx context.Context, sub *domain.Subscription, now time.Time) error {
	sub.MarkApproved(now)
	if err := r.subs.Update(ctx, sub); err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}

	user, err := r.users.GetByID(ctx, sub.UserID)
	if err != nil {
		return fmt.Errorf("get subscription owner: %w", err)
	}
	user.Activate(now, *sub.ExpiresAt)
	if err := r.users.Update(ctx, user); err != nil {
		return fmt.Errorf("activate user: %w", err)
	}

	telemetry.PaymentsReconciled.WithLabelValues("approved").Inc()
	r.logger.Info("subscription approved",
		"subscription_id", sub.ID,
		"user_id", user.ID,
		"expires_at", sub.ExpiresAt,
	)

	if r.events != nil {
		if err := r.events.PublishSubscriptionApproved(ctx, sub); err != nil {
			r.logger.Warn("failed to publish subscription.approved",
				"subscription_id", sub.ID,
				"error", err,
			)
		}
	}

	if r.notify != nil {
		text := ApprovalNotice(sub)
		if err := r.notify(ctx, user, text); err != nil {
			r.logger.Error("approval notification failed",
				"user_id", user.ID,
				"error", err,
			)
		}
	}
	return nil
}

// ApprovalNotice — текст уведомления об оплате для владельца.
func ApprovalNotice(sub *domain.Subscription) string {
	return fmt.Sprintf(
		"✅ *Pagamento aprovado!*\n\nValor: R$ %s\nPróximo vencimento: %s",
		notifier.FormatMoney(sub.Amount),
		notifier.FormatDate(*sub.ExpiresAt),
	)
}
