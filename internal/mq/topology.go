package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeMessages Exchange = "cobrador.messages"
	ExchangePayments Exchange = "cobrador.payments"
	ExchangeClients  Exchange = "cobrador.clients"
)

// Queues — имена очередей.
const (
	QueueMessagesSent    Queue = "messages.sent"
	QueuePaymentsUpdated Queue = "payments.updated"
	QueueClientsOverdue  Queue = "clients.overdue"
)

// Routing keys.
const (
	RoutingKeySent     RoutingKey = "sent"
	RoutingKeyUpdated  RoutingKey = "updated"
	RoutingKeyApproved RoutingKey = "approved"
	RoutingKeyOverdue  RoutingKey = "overdue"
)

func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		// 1. Создаём exchanges
		if err := declareExchanges(ch); err != nil {
			return err
		}

		// 2. Создаём queues
		if err := declareQueues(ch); err != nil {
			return err
		}

		// 3. Привязываем queues к exchanges
		if err := bindQueues(ch); err != nil {
			return err
		}

		return nil
	})
}

// declareExchanges создаёт обменники.
func declareExchanges(ch *amqp.Channel) error {
	exchanges := []struct {
		name Exchange
		kind string
	}{
		{ExchangeMessages, "direct"},
		{ExchangePayments, "direct"},
		{ExchangeClients, "direct"},
	}

	for _, ex := range exchanges {
		err := ch.ExchangeDeclare(
			string(ex.name), // name
			ex.kind,         // type
			true,            // durable
			false,           // auto-deleted
			false,           // internal
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	return nil
}

// declareQueues создаёт очереди.
func declareQueues(ch *amqp.Channel) error {
	queues := []Queue{
		// messages.sent — зеркало журнала доставки для внешних потребителей
		QueueMessagesSent,

		// payments.updated — ретрансляция webhook'ов шлюза; consumer — планировщик
		QueuePaymentsUpdated,

		// clients.overdue — итоги часовой зачистки
		QueueClientsOverdue,
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q), // name
			true,      // durable
			false,     // delete when unused
			false,     // exclusive
			false,     // no-wait
			nil,       // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
	}

	return nil
}

// bindQueues привязывает очереди к обменникам.
func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueueMessagesSent, RoutingKeySent, ExchangeMessages},
		{QueuePaymentsUpdated, RoutingKeyUpdated, ExchangePayments},
		{QueueClientsOverdue, RoutingKeyOverdue, ExchangeClients},
	}

	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),      // queue name
			string(b.routingKey), // routing key
			string(b.exchange),   // exchange
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Cobrador RabbitMQ Topology:

    cobrador.messages (direct)
    └── messages.sent [routing: sent]
            Consumer: external analytics

    cobrador.payments (direct)
    └── payments.updated [routing: updated]
            Consumer: Scheduler (accelerated reconciliation)
            Producer: gateway webhook relay

    cobrador.clients (direct)
    └── clients.overdue [routing: overdue]
            Consumer: external analytics
  `
}
