// Package payments сверяет статусы подписок с платёжным шлюзом.
//
// Reconciler выполняется каждые две минуты из планировщика и держит
// два прохода в одном тике:
//   - свежие pending (моложе 24 часов) опрашиваются у шлюза;
//   - устаревшие pending переводятся в expired без опроса.
//
// Ошибка по одной подписке не прерывает пачку. Approved — терминальный
// переход: подписка фиксирует paid_at/expires_at, владелец
// активируется, уведомление в Telegram отправляется best-effort.
package payments
