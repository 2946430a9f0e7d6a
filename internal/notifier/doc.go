// Package notifier отвечает за доставку сообщений клиентам и владельцам.
//
// Структура:
//   - template.go   — подстановка плейсхолдеров в пользовательские шаблоны
//   - report.go     — дневной отчёт по платежам клиентов (Telegram)
//   - dispatcher.go — отправка напоминаний с дедупликацией и журналом
//
// Dispatcher гарантирует ровно одну запись MessageLog на попытку
// отправки и не больше одной успешной отправки на
// (user, client, template, календарный день).
package notifier
