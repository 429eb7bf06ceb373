package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type PaymentConfig struct {
	Env          string `yaml:"env"`
	HTTPServer   `yaml:"http_server"`
	PaymentDB    `yaml:"payment_db"`
	RedisService `yaml:"redis-service"`
	KafkaService `yaml:"kafka-service"`
	OrdersAPI    `yaml:"orders-service"`
	Expay        `yaml:"expay"`
	MercadoPago  `yaml:"mercadopago"`
	Dispatch     `yaml:"dispatch"`
	LogConfig    `yaml:"log_config"`
}

type HTTPServer struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type PaymentDB struct {
	Dsn            string `yaml:"dsn" env:"DATABASE_URL"`
	MigrationsPath string `yaml:"migrations_path"`
}

type RedisService struct {
	Addr     string `yaml:"addr" env:"REDIS_URL"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
}

type KafkaService struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Topic string `yaml:"topic" env-default:"payment-events"`
}

type OrdersAPI struct {
	BaseURL    string `yaml:"base_url" env:"ORDERS_SERVICE_URL"`
	CreatePath string `yaml:"create_path" env-default:"/api/orders/create"`
	StatusPath string `yaml:"status_path" env-default:"/api/orders/status"`
	APIKey     string `yaml:"api_key" env:"ORDERS_API_KEY"`
	JWTSecret  string `yaml:"jwt_secret" env:"JWT_SECRET"`
}

type Expay struct {
	BaseURL     string `yaml:"base_url" env-default:"https://expaybrasil.com"`
	MerchantKey string `yaml:"merchant_key" env:"EXPAY_MERCHANT_KEY"`
	WebhookURL  string `yaml:"webhook_url"`
}

type MercadoPago struct {
	AccessToken string `yaml:"access_token" env:"MERCADOPAGO_ACCESS_TOKEN"`
}

type Dispatch struct {
	RetryInterval  time.Duration `yaml:"retry_interval" env-default:"30s"`
	RetryDelay     time.Duration `yaml:"retry_delay" env-default:"5m"`
	ExpiryInterval time.Duration `yaml:"expiry_interval" env-default:"1m"`
	RequestTTL     time.Duration `yaml:"request_ttl" env-default:"30m"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogOutput string `yaml:"log_output"`
}

func MustLoad() *PaymentConfig {

	// Processing env config variable and file
	configPath := os.Getenv("PAYMENT_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("PAYMENT_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg PaymentConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
