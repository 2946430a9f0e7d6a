// Package scheduler — ядро бота: единый цикл с секундным шагом,
// обслуживающий три каденции (минутные окна напоминаний и отчётов,
// часовую зачистку просроченных клиентов, двухминутную сверку платежей).
//
// Свойства цикла:
//   - каденции выполняются последовательно, single-flight: тик, чьё
//     предыдущее выполнение не завершилось, пропускается, не ставится
//     в очередь;
//   - дневные действия управляются окнами "HH:MM" per-user с catch-up
//     семантикой и маркерами идемпотентности (раз в календарный день);
//   - отправки идут через Bridge с таймаутами 120s (пачка) / 15s
//     (одиночное уведомление) — зависший шлюз не убивает цикл.
package scheduler
