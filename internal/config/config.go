package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config — конфигурация сервиса, загружается из окружения.
//
// Локально поддерживается .env (godotenv); в production переменные
// приходят из платформы деплоя.
type Config struct {
	// DatabaseURL — строка подключения Postgres.
	DatabaseURL string

	// TelegramToken — токен Bot API для уведомлений владельцам.
	TelegramToken string

	// WhatsAppURL — адрес Baileys-шлюза.
	WhatsAppURL string

	// WhatsAppToken — bearer-токен шлюза (опционально).
	WhatsAppToken string

	// WhatsAppShortTimeout / WhatsAppLongTimeout — таймауты HTTP-вызовов
	// шлюза: короткий для статусов, длинный для отправки и reconnect.
	WhatsAppShortTimeout time.Duration
	WhatsAppLongTimeout  time.Duration

	// MercadoPagoToken — access token платёжного шлюза.
	MercadoPagoToken string

	// RabbitURL — адрес RabbitMQ. Пустой — событийная шина выключена,
	// сервис работает в polling-only режиме.
	RabbitURL string

	// Timezone — бизнес-таймзона для окон рассылки.
	Timezone string

	// APIPort — порт ops API (/healthz, /metrics, /api/v1).
	APIPort string
}

// FromEnv загружает конфигурацию из переменных окружения.
// DATABASE_URL и TELEGRAM_BOT_TOKEN обязательны.
func FromEnv() (*Config, error) {
	// .env — best effort, отсутствие файла не ошибка
	_ = godotenv.Load()

	c := &Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		TelegramToken:        os.Getenv("TELEGRAM_BOT_TOKEN"),
		WhatsAppURL:          getenv("WHATSAPP_SERVICE_URL", "http://localhost:3001"),
		WhatsAppToken:        os.Getenv("WHATSAPP_API_TOKEN"),
		WhatsAppShortTimeout: seconds("WHATSAPP_HTTP_TIMEOUT_SHORT", 20),
		WhatsAppLongTimeout:  seconds("WHATSAPP_HTTP_TIMEOUT_LONG", 45),
		MercadoPagoToken:     os.Getenv("MERCADO_PAGO_ACCESS_TOKEN"),
		RabbitURL:            os.Getenv("RABBITMQ_URL"),
		Timezone:             getenv("TIMEZONE", "America/Sao_Paulo"),
		APIPort:              getenv("API_PORT", "8080"),
	}

	if c.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	if c.TelegramToken == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN is not set")
	}
	return c, nil
}

// Location возвращает бизнес-таймзону. Невалидная — fallback на UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func seconds(key string, def int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(def) * time.Second
}
