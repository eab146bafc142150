package postgres

import (
	"log"

	"github.com/tradeoverflow/trade-service/internal/config"
	"github.com/tradeoverflow/trade-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.TradeConfig) *gorm.DB {
	dsn := cfg.MarketDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	db.AutoMigrate(&models.OrderRowModel{})

	return db
}
