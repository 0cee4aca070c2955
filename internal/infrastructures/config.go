package infrastructures

import (
	"os"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	PORT               string
	DATABASE_URL       string
	REDIS_ADDRESS      string
	REDIS_PASSWORD     string
	NOTIFY_WEBHOOK_URL string
	QR_SERVICE_URL     string
}

var Config *AppConfig

func LoadConfig() *AppConfig {
	godotenv.Load()

	Config = &AppConfig{
		PORT:               os.Getenv("PORT"),
		DATABASE_URL:       os.Getenv("DATABASE_URL"),
		REDIS_ADDRESS:      os.Getenv("REDIS_ADDRESS"),
		REDIS_PASSWORD:     os.Getenv("REDIS_PASSWORD"),
		NOTIFY_WEBHOOK_URL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		QR_SERVICE_URL:     os.Getenv("QR_SERVICE_URL"),
	}

	if Config.PORT == "" {
		Config.PORT = "8080"
	}

	return Config
}
