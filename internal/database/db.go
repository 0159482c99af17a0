package database

import (
	"log"

	"exchange-backend/internal/config"
	"exchange-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.ExchangeTransaction{},
		&models.CreditTransaction{},
		&models.ExpenseCategory{},
		&models.Expense{},
		&models.MoneyReceiving{},
		&models.CashCountRecord{},
		&models.ShopSetting{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	// AutoMigrate does not always create composite unique indexes on
	// existing tables, enforce the one-record-per-staff-per-day rule here.
	if DB.Migrator().HasTable(&models.CashCountRecord{}) {
		DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_cash_count_staff_date ON cash_count_records(staff_id, date)")
	}

	// Seed the single settings row so handlers can always read it.
	var count int64
	DB.Model(&models.ShopSetting{}).Count(&count)
	if count == 0 {
		setting := models.ShopSetting{
			DayCutoffHour:   cfg.DefaultDayCutoffHour,
			DayCutoffMinute: cfg.DefaultDayCutoffMinute,
		}
		if err := DB.Create(&setting).Error; err != nil {
			log.Fatalf("Could not seed shop settings: %v", err)
		}
		log.Printf("Seeded shop settings with day cutoff %02d:%02d", setting.DayCutoffHour, setting.DayCutoffMinute)
	}

	log.Println("Database connected, migration complete.")
}

// Setting returns the single shop settings row, falling back to midnight
// cutoff if the row cannot be read.
func Setting() models.ShopSetting {
	var s models.ShopSetting
	if err := DB.First(&s).Error; err != nil {
		return models.ShopSetting{DayCutoffHour: 0, DayCutoffMinute: 0}
	}
	return s
}
