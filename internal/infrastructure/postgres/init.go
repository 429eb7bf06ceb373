package postgres

import (
	"log"

	"github.com/viralizamos/payment-service/internal/config"
	"github.com/viralizamos/payment-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.PaymentConfig) *gorm.DB {
	dsn := cfg.PaymentDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	db.AutoMigrate(
		&models.PaymentRequestModel{},
		&models.TransactionModel{},
		&models.QueueItemModel{},
		&models.WebhookLogModel{},
		&models.NotificationLogModel{},
		&models.ProviderResponseLogModel{},
		&models.CustomerModel{},
	)

	return db
}
