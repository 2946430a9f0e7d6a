// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений в очереди
//   - consumer.go   — потребление сообщений из очередей
//
// Типы сообщений:
//   - message.sent          — попытка доставки напоминания зафиксирована в журнале
//   - payment.updated       — webhook шлюза ретранслирован во внутреннюю шину
//   - subscription.approved — оплата подтверждена, владелец активирован
//   - clients.overdue       — часовая зачистка деактивировала клиентов
//
// Exchanges:
//   - cobrador.messages — события доставки
//   - cobrador.payments — события платежей
//   - cobrador.clients  — события жизненного цикла клиентов
//
// Шина опциональна: при недоступном RabbitMQ бот работает в режиме
// чистого polling'а без потери корректности.
package mq
