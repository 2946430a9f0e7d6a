// Package cli реализует инструмент командной строки Cobrador.
//
// # Обзор
//
// CLI — операторская утилита для взаимодействия с Cobrador API.
// Работает через HTTP, не импортирует внутренние пакеты системы.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Cobrador API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	st, err := client.GetStatus()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: cobrador clients list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - status: состояние планировщика и каденций
//   - clients: list, show, remind
//   - logs: list
//   - whatsapp: status, reconnect
//
// Каждая группа создаётся через фабричную функцию (NewClientsCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
