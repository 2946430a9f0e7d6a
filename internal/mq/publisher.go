package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/cobrador/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeMessageSent          MessageType = "message.sent"
	MessageTypePaymentUpdated       MessageType = "payment.updated"
	MessageTypeSubscriptionApproved MessageType = "subscription.approved"
	MessageTypeClientsOverdue       MessageType = "clients.overdue"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// MessageSentPayload — payload события о попытке доставки напоминания.
type MessageSentPayload struct {
	LogID    int64  `json:"log_id"`
	UserID   int64  `json:"user_id"`
	ClientID int64  `json:"client_id"`
	Status   string `json:"status"`
}

// PaymentUpdatedPayload — payload ретранслированного webhook'а шлюза.
type PaymentUpdatedPayload struct {
	PaymentID string `json:"payment_id"`
}

// SubscriptionApprovedPayload — payload подтверждённой оплаты.
type SubscriptionApprovedPayload struct {
	SubscriptionID int64     `json:"subscription_id"`
	UserID         int64     `json:"user_id"`
	PaymentID      string    `json:"payment_id"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// ClientsOverduePayload — payload итогов часовой зачистки.
type ClientsOverduePayload struct {
	Count int64 `json:"count"`
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// PublishMessageSent публикует событие о попытке доставки напоминания.
// Потребитель: внешняя аналитика.
func (p *Publisher) PublishMessageSent(ctx context.Context, log *domain.MessageLog) error {
	msg := &Message{
		ID:   uuid.New().String(),
		Type: MessageTypeMessageSent,
		Payload: MessageSentPayload{
			LogID:    log.ID,
			UserID:   log.UserID,
			ClientID: log.ClientID,
			Status:   string(log.Status),
		},
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeMessages, RoutingKeySent, msg)
}

// PublishSubscriptionApproved публикует событие о подтверждённой оплате.
func (p *Publisher) PublishSubscriptionApproved(ctx context.Context, sub *domain.Subscription) error {
	msg := &Message{
		ID:   uuid.New().String(),
		Type: MessageTypeSubscriptionApproved,
		Payload: SubscriptionApprovedPayload{
			SubscriptionID: sub.ID,
			UserID:         sub.UserID,
			PaymentID:      sub.PaymentID,
			ExpiresAt:      *sub.ExpiresAt,
		},
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangePayments, RoutingKeyApproved, msg)
}

// PublishClientsOverdue публикует итоги часовой зачистки.
func (p *Publisher) PublishClientsOverdue(ctx context.Context, count int64) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeClientsOverdue,
		Payload:   ClientsOverduePayload{Count: count},
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeClients, RoutingKeyOverdue, msg)
}

// PublishJSON публикует произвольный JSON payload.
func (p *Publisher) PublishJSON(ctx context.Context, exchange Exchange, routingKey RoutingKey, msgType MessageType, payload any) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, exchange, routingKey, msg)
}
