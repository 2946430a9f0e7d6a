// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go          — Handler с DI (хранилища, планировщик, шлюз, logger)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (logging, recovery)
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - dto.go              — Data Transfer Objects (request/response)
//   - status_handler.go   — состояние планировщика
//   - client_handler.go   — клиенты и ручная отправка напоминаний
//   - log_handler.go      — журнал доставки
//   - whatsapp_handler.go — прокси к WhatsApp-шлюзу
//
// API — операторская поверхность: наблюдение за планировщиком и ручные
// действия, не публичный продуктовый интерфейс.
package api
